package engine

import (
	"embed"
	stderrors "errors"
	"fmt"
	"io/fs"
	"strings"

	"mdclip/pkg/errors"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"gopkg.in/yaml.v3"
)

// RulesPath is the location of the rule asset inside Assets.
const RulesPath = "assets/rules.yaml"

//go:embed assets/rules.yaml
var Assets embed.FS

// Rules configures the HTML to Markdown translation.
type Rules struct {
	StrongDelimiter  string   `yaml:"strong_delimiter"`
	EmDelimiter      string   `yaml:"em_delimiter"`
	BulletListMarker string   `yaml:"bullet_list_marker"`
	RemoveTags       []string `yaml:"remove_tags"`
	Cleanup          Cleanup  `yaml:"cleanup"`
}

// Cleanup toggles the pre-conversion passes for office-suite markup.
type Cleanup struct {
	GoogleDocs bool `yaml:"google_docs"`
	Office     bool `yaml:"office"`
	EmptySpans bool `yaml:"empty_spans"`
}

func (c Cleanup) any() bool {
	return c.GoogleDocs || c.Office || c.EmptySpans
}

// LoadRules reads and parses the rule asset at path in fsys.
// A missing asset is a MissingResource error.
func LoadRules(fsys fs.FS, path string) (Rules, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return Rules{}, errors.MissingResource(path, err)
		}
		return Rules{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if rules.StrongDelimiter == "" {
		rules.StrongDelimiter = "**"
	}
	if rules.EmDelimiter == "" {
		rules.EmDelimiter = "*"
	}
	if rules.BulletListMarker == "" {
		rules.BulletListMarker = "-"
	}
	return rules, nil
}

// translator turns clipboard HTML into Markdown according to a rule set.
type translator struct {
	rules Rules
	conv  *converter.Converter
}

func newTranslator(rules Rules) *translator {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithStrongDelimiter(rules.StrongDelimiter),
				commonmark.WithEmDelimiter(rules.EmDelimiter),
				commonmark.WithBulletListMarker(rules.BulletListMarker),
			),
			strikethrough.NewStrikethroughPlugin(),
			table.NewTablePlugin(),
		),
	)

	for _, tag := range rules.RemoveTags {
		conv.Register.TagType(tag, converter.TagTypeRemove, converter.PriorityStandard)
	}

	return &translator{rules: rules, conv: conv}
}

func (t *translator) translate(html string) (string, error) {
	cleaned, err := preclean(html, t.rules.Cleanup)
	if err != nil {
		return "", err
	}

	markdown, err := t.conv.ConvertString(cleaned)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}

// preclean strips the wrappers office suites add to copied HTML.
func preclean(html string, c Cleanup) (string, error) {
	if !c.any() {
		return html, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	if c.GoogleDocs {
		doc.Find(`b[id^="docs-internal-guid"]`).Each(func(_ int, s *goquery.Selection) {
			s.ReplaceWithSelection(s.Contents())
		})
	}

	if c.Office {
		doc.Find("*").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return goquery.NodeName(s) == "o:p"
		}).Remove()
	}

	if c.EmptySpans {
		doc.Find("span").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.Contents().Length() == 0
		}).Remove()
	}

	return doc.Html()
}
