package main

import (
	"github.com/spf13/cobra"

	"github.com/conn-castle/release-train/internal/messages"
	"github.com/conn-castle/release-train/internal/shell"
)

// rootFlags are the persistent options shared by every subcommand.
type rootFlags struct {
	verbose int
	quiet   bool
}

func (f *rootFlags) newShell(cmd *cobra.Command) *shell.Shell {
	verbosity := shell.VerbosityNormal
	switch {
	case f.quiet:
		verbosity = shell.VerbosityQuiet
	case f.verbose == 1:
		verbosity = shell.VerbosityDebug
	case f.verbose > 1:
		verbosity = shell.VerbosityTrace
	}
	return shell.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), verbosity)
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate(messages.VersionTemplate)
	cmd.PersistentFlags().CountVarP(&flags.verbose, "verbose", "v", "increase diagnostic output (repeatable)")
	cmd.PersistentFlags().BoolVarP(&flags.quiet, "quiet", "q", false, "suppress status output")

	cmd.AddCommand(newPlanCmd(flags))
	cmd.AddCommand(newPublishCmd(flags))
	cmd.AddCommand(newVersionCmd())
	return cmd
}
