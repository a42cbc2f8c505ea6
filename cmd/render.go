package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"mdclip/pkg/errors"
	"mdclip/pkg/sanitize"

	"github.com/spf13/cobra"
)

var renderCmd = NewCommand(
	"render [file]",
	"Render Markdown to an HTML document",
	`Render Markdown from a file or stdin to a complete HTML document on stdout,
using the renderer selected by render.mode.`,
).WithExample(`  # Render a file
  mdclip render notes.md > notes.html

  # Render from a pipe with the CommonMark renderer
  echo '# Title' | MDCLIP_RENDERER=commonmark mdclip render`).
	WithMaxArgs(1).
	WithApp(appNeeds{}, func(_ context.Context, cmd *cobra.Command, a *App) error {
		markdown, err := readInput(cmd, cmd.Flags().Args())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), a.Renderer.Render(markdown))
		return err
	}).
	Build()

var sanitizeCmd = NewCommand(
	"sanitize [file]",
	"Strip comments, scripts, styles and meta tags from HTML",
	`Remove HTML comments, <script> and <style> elements and <meta> tags from a
file or stdin and print the result. This is the cleaning pass to-markdown runs
before conversion.`,
).WithExample(`  mdclip sanitize page.html`).
	WithMaxArgs(1).
	WithRunE(func(cmd *cobra.Command, args []string) error {
		html, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), sanitize.HTML(html))
		return err
	}).
	Build()

var convertHTMLCmd = NewCommand(
	"convert-html [file]",
	"Convert HTML to Markdown",
	`Sanitize HTML from a file or stdin and convert it to Markdown with the
configured engine, printing the result. The clipboard is not used.`,
).WithExample(`  curl -s https://example.com | mdclip convert-html`).
	WithMaxArgs(1).
	WithApp(appNeeds{engine: true}, func(ctx context.Context, cmd *cobra.Command, a *App) error {
		html, err := readInput(cmd, cmd.Flags().Args())
		if err != nil {
			return err
		}
		if err := a.Engine.Wait(ctx); err != nil {
			return err
		}
		markdown, err := a.Engine.Convert(ctx, sanitize.HTML(html))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), markdown)
		return err
	}).
	Build()

// readInput reads the file named by args[0], or stdin when there is none.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", errors.NewWithError(errors.ExitCodeFileOperation, fmt.Sprintf("failed to read %s", args[0]), err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", errors.NewWithError(errors.ExitCodeFileOperation, "failed to read stdin", err)
	}
	return string(data), nil
}
