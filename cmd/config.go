package cmd

import (
	"fmt"
	"os"

	"mdclip/pkg/config"
	"mdclip/pkg/errors"
	"mdclip/pkg/hostcmd"
	"mdclip/pkg/richtext"

	"github.com/spf13/cobra"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage mdclip configuration",
	Long:  `Show the effective configuration or write a default configuration file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after environment overrides.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		output := NewOutputWriter(outputFormat)
		output.SetWriter(cmd.OutOrStdout())
		if output.IsStructured() {
			return output.Write(cfg)
		}

		codec := "(unavailable)"
		if c, err := richtext.Detect(cfg.Codec, hostRunner); err == nil {
			codec = c.Name()
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Current Configuration:")
		fmt.Fprintln(out, "======================")
		fmt.Fprintf(out, "Engine Mode: %s\n", cfg.Engine.Mode)
		fmt.Fprintf(out, "Engine Attempts: %d\n", cfg.Engine.Attempts)
		fmt.Fprintf(out, "Engine Delay: %s\n", cfg.Engine.Delay)
		fmt.Fprintf(out, "Renderer: %s\n", cfg.Render.Mode)
		fmt.Fprintf(out, "Codec: %s (using %s)\n", cfg.Codec, codec)
		fmt.Fprintln(out)
		fmt.Fprintf(out, "History: %s\n", func() string {
			if cfg.History.Enabled {
				return "enabled"
			}
			return "disabled"
		}())
		fmt.Fprintf(out, "History Path: %s\n", cfg.HistoryPath())
		fmt.Fprintf(out, "History Retention: %s\n", cfg.History.Retention)
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Clipboard Tools: %s\n", clipboardTools())

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return errors.NewWithError(errors.ExitCodeConfig, "failed to get config path", err)
		}

		if _, err := os.Stat(path); err == nil && !configForce {
			return errors.NewWithSuggestion(errors.ExitCodeConfig,
				fmt.Sprintf("config file already exists: %s", path),
				"Use --force to overwrite it.")
		}

		if dryRunFlag {
			PrintDryRun(cmd.OutOrStdout(), "Would write %s", path)
			return nil
		}

		if err := config.Save(config.Default()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

// clipboardTools lists the clipboard helpers found on PATH.
func clipboardTools() string {
	var found []string
	for _, tool := range []string{"wl-paste", "wl-copy", "xclip", "pbpaste", "pbcopy"} {
		if hostcmd.Available(hostRunner, tool) {
			found = append(found, tool)
		}
	}
	if len(found) == 0 {
		return "(none, plain text only)"
	}
	return fmt.Sprint(found)
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
}
