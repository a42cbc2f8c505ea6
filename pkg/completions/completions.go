package completions

import (
	"strings"

	"mdclip/pkg/history"

	"github.com/spf13/cobra"
)

type Completer struct{}

func NewCompleter() *Completer {
	return &Completer{}
}

func (c *Completer) CompleteFormat(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	formats := []string{
		"table\tHuman readable summary",
		"json\tJSON document",
		"yaml\tYAML document",
	}
	return c.filterPrefix(formats, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func (c *Completer) CompleteDirection(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	directions := []string{
		history.DirectionToMarkdown + "\tRich text converted to Markdown",
		history.DirectionToRich + "\tMarkdown rendered as rich text",
	}
	return c.filterPrefix(directions, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func (c *Completer) CompleteLogLevel(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	levels := []string{"trace", "debug", "info", "warn", "error"}
	return c.filterPrefix(levels, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func (c *Completer) filterPrefix(items []string, prefix string) []string {
	var result []string
	for _, item := range items {
		itemName := strings.Split(item, "\t")[0]
		if strings.HasPrefix(strings.ToLower(itemName), strings.ToLower(prefix)) {
			result = append(result, item)
		}
	}
	return result
}

func RegisterCompletions(rootCmd *cobra.Command) {
	completer := NewCompleter()

	_ = rootCmd.RegisterFlagCompletionFunc("format", completer.CompleteFormat)
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", completer.CompleteLogLevel)

	historyListCmd, _, _ := rootCmd.Find([]string{"history", "list"})
	if historyListCmd != nil && historyListCmd != rootCmd {
		_ = historyListCmd.RegisterFlagCompletionFunc("direction", completer.CompleteDirection)
	}
}
