package engine

import "strings"

// transportEscaper escapes backslash first so the later escapes are not
// doubled.
var transportEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// EscapeForTransport encodes s so it can travel as a single quoted text
// literal to the engine host.
func EscapeForTransport(s string) string {
	return transportEscaper.Replace(s)
}

// UnescapeTransport reverses EscapeForTransport. Unknown escape sequences
// are kept as written.
func UnescapeTransport(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
