// Package cli holds the spynners commands.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "spynners",
		Short:         "Play beats from a Spynners catalog in the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("log-level", "", "override log level (debug, info, warn, error)")

	root.AddCommand(
		newPlayCmd(),
		newResumeCmd(),
		newInspectCmd(),
	)
	return root
}

// Execute runs the root command until it returns or the process is
// interrupted.
func Execute(version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd(version).ExecuteContext(ctx)
}
