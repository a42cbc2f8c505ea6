package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

type CommandBuilder struct {
	cmd *cobra.Command
}

func NewCommand(name, short, long string) *CommandBuilder {
	return &CommandBuilder{
		cmd: &cobra.Command{
			Use:     name,
			Short:   short,
			Long:    long,
			Example: "",
		},
	}
}

func (b *CommandBuilder) WithExample(example string) *CommandBuilder {
	b.cmd.Example = example
	return b
}

func (b *CommandBuilder) WithAliases(aliases ...string) *CommandBuilder {
	b.cmd.Aliases = append(b.cmd.Aliases, aliases...)
	return b
}

// WithApp wires the runtime dependencies the command needs and releases
// them when fn returns. The context carries the --timeout deadline.
func (b *CommandBuilder) WithApp(needs appNeeds, fn func(ctx context.Context, cmd *cobra.Command, a *App) error) *CommandBuilder {
	b.cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx, cancel := GetContext()
		defer cancel()

		a, err := newApp(ctx, needs)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(ctx, cmd, a)
	}
	return b
}

func (b *CommandBuilder) WithRunE(fn func(cmd *cobra.Command, args []string) error) *CommandBuilder {
	b.cmd.RunE = fn
	return b
}

func (b *CommandBuilder) WithNoArgs() *CommandBuilder {
	b.cmd.Args = cobra.NoArgs
	return b
}

func (b *CommandBuilder) WithMaxArgs(maxArgs int) *CommandBuilder {
	b.cmd.Args = func(cmd *cobra.Command, args []string) error {
		if len(args) > maxArgs {
			return fmt.Errorf("accepts at most %d argument(s), received %d", maxArgs, len(args))
		}
		return nil
	}
	return b
}

func (b *CommandBuilder) Build() *cobra.Command {
	return b.cmd
}
