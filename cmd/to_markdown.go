package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var toMarkdownCmd = NewCommand(
	"to-markdown",
	"Replace rich clipboard content with Markdown",
	`Read the clipboard, pick its richest representation and replace it with
Markdown, published as both plain text and text/markdown.

HTML is preferred, then RTF (decoded with textutil or pandoc), then plain
text. Comments, scripts, styles and meta tags are stripped before the HTML is
handed to the conversion engine. Plain text is copied back unchanged.`,
).WithAliases("md").
	WithExample(`  # Convert whatever was copied from a browser or Google Docs
  mdclip to-markdown

  # Show the Markdown without touching the clipboard
  mdclip md --dry-run`).
	WithNoArgs().
	WithApp(appNeeds{clipboard: true, engine: true, history: true}, runToMarkdown).
	Build()

func runToMarkdown(ctx context.Context, cmd *cobra.Command, a *App) error {
	a.WaitForEngine(ctx)

	res, err := a.Orchestrator().ToMarkdown(ctx)
	if err != nil {
		return err
	}
	return writeConversion(cmd.OutOrStdout(), outputFormat, res, a.Preview != nil)
}
