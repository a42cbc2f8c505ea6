package cmd

import "github.com/spf13/cobra"

func RegisterCommands(root *cobra.Command) {
	root.AddCommand(versionCmd)
	root.AddCommand(clipboardServeCmd)

	root.AddCommand(toMarkdownCmd)
	root.AddCommand(toRichCmd)
	root.AddCommand(renderCmd)
	root.AddCommand(sanitizeCmd)
	root.AddCommand(convertHTMLCmd)
	root.AddCommand(historyCmd)
	root.AddCommand(configCmd)

	historyCmd.AddCommand(
		historyListCmd,
		historyClearCmd,
	)

	configCmd.AddCommand(
		configShowCmd,
		configInitCmd,
		configPathCmd,
	)
}
