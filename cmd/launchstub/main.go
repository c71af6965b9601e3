package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/loykin/launchstub"
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// execute is the single place where a setup failure turns into the
// diagnostic line and exit status 1.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var code int
	root := buildRoot(&code, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}
	return code
}

// buildRoot creates a command that forwards every argument, flags
// included, to the wrapped program.
func buildRoot(code *int, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:                "launchstub [args...]",
		Short:              "Run the sibling -orig executable in a prepared environment",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		CompletionOptions:  cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := launchstub.Launch(cmd.Context(), args, stderr)
			*code = c
			return err
		},
	}
}
