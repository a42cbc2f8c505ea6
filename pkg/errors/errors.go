package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mdclip/pkg/logger"

	"github.com/fatih/color"
)

type ExitCode int

const (
	ExitCodeSuccess       ExitCode = 0
	ExitCodeGeneral       ExitCode = 1
	ExitCodeConfig        ExitCode = 2
	ExitCodeValidation    ExitCode = 6
	ExitCodeFileOperation ExitCode = 7

	// Conversion failure kinds.
	ExitCodeNoSupportedContent    ExitCode = 10
	ExitCodeClipboardRead         ExitCode = 11
	ExitCodeConversionFailed      ExitCode = 12
	ExitCodeEngineNotReady        ExitCode = 13
	ExitCodeMissingResource       ExitCode = 14
	ExitCodeClipboardWriteFailure ExitCode = 15
)

// Standardized user-facing messages
const (
	ErrMsgNoSupportedContent = "The clipboard has no HTML, RTF or plain text content"
	ErrMsgClipboardRead      = "Could not read the clipboard"
	ErrMsgClipboardWrite     = "Could not write the clipboard"
	ErrMsgConversionFailed   = "Conversion failed"
	ErrMsgEngineNotReady     = "The Markdown conversion engine is not ready"
	ErrMsgMissingResource    = "A required conversion resource could not be loaded"
)

var titles = map[ExitCode]string{
	ExitCodeGeneral:               "Error",
	ExitCodeConfig:                "Configuration Error",
	ExitCodeValidation:            "Invalid Input",
	ExitCodeFileOperation:         "File Error",
	ExitCodeNoSupportedContent:    "Nothing to Convert",
	ExitCodeClipboardRead:         "Clipboard Error",
	ExitCodeConversionFailed:      "Conversion Failed",
	ExitCodeEngineNotReady:        "Engine Not Ready",
	ExitCodeMissingResource:       "Missing Resource",
	ExitCodeClipboardWriteFailure: "Clipboard Error",
}

type Error struct {
	Code       ExitCode
	Message    string
	Underlying error
	Suggestion string
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Underlying)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

func New(code ExitCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

func NewWithError(code ExitCode, message string, err error) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Underlying: err,
	}
}

func NewWithSuggestion(code ExitCode, message string, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	if wrapped, ok := err.(*Error); ok {
		return &Error{
			Code:       wrapped.Code,
			Message:    message + ": " + wrapped.Message,
			Underlying: wrapped.Underlying,
			Suggestion: wrapped.Suggestion,
		}
	}

	return &Error{
		Code:       ExitCodeGeneral,
		Message:    message,
		Underlying: err,
	}
}

// KindOf returns the exit code of the first *Error in err's chain, or
// ExitCodeGeneral when there is none.
func KindOf(err error) ExitCode {
	if err == nil {
		return ExitCodeSuccess
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ExitCodeGeneral
}

func IsKind(err error, code ExitCode) bool {
	if err == nil {
		return false
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// Title is the short heading shown above the message of a failed conversion.
func Title(err error) string {
	if t, ok := titles[KindOf(err)]; ok {
		return t
	}
	return titles[ExitCodeGeneral]
}

// HandleReturn prints err to stderr and returns the exit code the caller
// should terminate with.
func HandleReturn(err error) ExitCode {
	return handle(os.Stderr, err)
}

func handle(w io.Writer, err error) ExitCode {
	if err == nil {
		return ExitCodeSuccess
	}

	exitCode := ExitCodeGeneral
	var message string
	var suggestion string

	var e *Error
	if stderrors.As(err, &e) {
		exitCode = e.Code
		message = e.Message
		suggestion = e.Suggestion

		if e.Underlying != nil {
			logger.Debug().Err(e.Underlying).Int("code", int(e.Code)).Msg(e.Message)
			message = e.Error()
		}
	} else {
		message = err.Error()
	}

	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow)

	fmt.Fprintln(w)
	red.Fprintf(w, "%s: ", Title(err))
	fmt.Fprintln(w, message)

	if suggestion != "" {
		yellow.Fprint(w, "Suggestion: ")
		lines := strings.Split(suggestion, "\n")
		for i, line := range lines {
			if i == 0 {
				fmt.Fprintln(w, line)
			} else {
				fmt.Fprintln(w, "            "+line)
			}
		}
	}

	fmt.Fprintln(w)

	return exitCode
}

func NoSupportedContent() *Error {
	return &Error{
		Code:       ExitCodeNoSupportedContent,
		Message:    ErrMsgNoSupportedContent,
		Suggestion: "Copy some text or formatted content and try again.",
	}
}

func ClipboardReadFailure(err error) *Error {
	return &Error{
		Code:       ExitCodeClipboardRead,
		Message:    ErrMsgClipboardRead,
		Underlying: err,
		Suggestion: "On Linux, install wl-clipboard (Wayland) or xclip (X11).",
	}
}

func ClipboardWriteFailure(err error) *Error {
	return &Error{
		Code:       ExitCodeClipboardWriteFailure,
		Message:    ErrMsgClipboardWrite,
		Underlying: err,
	}
}

func ConversionFailed(reason string) *Error {
	msg := ErrMsgConversionFailed
	if reason != "" {
		msg += ": " + reason
	}
	return &Error{
		Code:    ExitCodeConversionFailed,
		Message: msg,
	}
}

func ConversionFailedWithError(err error) *Error {
	return &Error{
		Code:       ExitCodeConversionFailed,
		Message:    ErrMsgConversionFailed,
		Underlying: err,
	}
}

func EngineNotReady(reason string) *Error {
	msg := ErrMsgEngineNotReady
	if reason != "" {
		msg += " (" + reason + ")"
	}
	return &Error{
		Code:       ExitCodeEngineNotReady,
		Message:    msg,
		Suggestion: "Wait a moment and try again, or set engine.mode to native in the config file.",
	}
}

func MissingResource(name string, err error) *Error {
	return &Error{
		Code:       ExitCodeMissingResource,
		Message:    fmt.Sprintf("%s: %s", ErrMsgMissingResource, name),
		Underlying: err,
		Suggestion: "The binary may be damaged; reinstall mdclip.",
	}
}

func ConfigError(message string) *Error {
	return &Error{
		Code:       ExitCodeConfig,
		Message:    message,
		Suggestion: "Check your configuration file or the MDCLIP_* environment variables.",
	}
}

func ValidationError(message string) *Error {
	return &Error{
		Code:    ExitCodeValidation,
		Message: message,
	}
}
