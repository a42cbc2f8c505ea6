package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const (
	responseYes = "yes"
	responseY   = "y"
)

var assumeYesFlag bool

// PrintDryRun prints what would happen in dry-run mode.
func PrintDryRun(w io.Writer, format string, args ...interface{}) {
	yellow := color.New(color.FgYellow, color.Bold)
	_, _ = yellow.Fprint(w, "[DRY-RUN] ")
	fmt.Fprintf(w, format+"\n", args...)
}

// ConfirmPrompt asks on stderr and reads the answer from the command's
// stdin. --yes answers for the user.
func ConfirmPrompt(cmd *cobra.Command, message string) (bool, error) {
	if assumeYesFlag {
		return true, nil
	}

	yellow := color.New(color.FgYellow)
	_, _ = yellow.Fprintf(cmd.ErrOrStderr(), "%s [y/N]: ", message)

	response, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == responseY || response == responseYes, nil
}

// RequireConfirmation fails unless the user agrees to action.
func RequireConfirmation(cmd *cobra.Command, action string) error {
	red := color.New(color.FgRed, color.Bold)
	_, _ = red.Fprintf(cmd.ErrOrStderr(), "Warning: You are about to %s\n", action)

	confirmed, err := ConfirmPrompt(cmd, "Do you want to continue")
	if err != nil {
		return err
	}
	if !confirmed {
		return fmt.Errorf("operation canceled by user")
	}
	return nil
}
