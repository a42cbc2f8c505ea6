package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var toRichCmd = NewCommand(
	"to-rich",
	"Render clipboard Markdown as rich text",
	`Read Markdown from the clipboard's plain text, render it to HTML and publish
RTF, HTML and plain text together so it pastes formatted.

RTF needs textutil (macOS) or pandoc. Without either, HTML and plain text are
written.`,
).WithAliases("rich").
	WithExample(`  # Paste formatted Markdown into a mail client
  mdclip to-rich

  # Preview the generated HTML
  mdclip rich --dry-run`).
	WithNoArgs().
	WithApp(appNeeds{clipboard: true, history: true}, runToRich).
	Build()

func runToRich(ctx context.Context, cmd *cobra.Command, a *App) error {
	res, err := a.Orchestrator().ToRichText(ctx)
	if err != nil {
		return err
	}
	return writeConversion(cmd.OutOrStdout(), outputFormat, res, a.Preview != nil)
}
