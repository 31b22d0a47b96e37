package main

import (
	"github.com/spf13/cobra"

	"github.com/conn-castle/release-train/internal/config"
	"github.com/conn-castle/release-train/internal/gitutil"
	"github.com/conn-castle/release-train/internal/messages"
	"github.com/conn-castle/release-train/internal/publish"
	"github.com/conn-castle/release-train/internal/registry"
	"github.com/conn-castle/release-train/internal/workspace"
)

func newPublishCmd(flags *rootFlags) *cobra.Command {
	step := &publish.Step{ConfigArgs: &config.Args{}}
	var dryRun bool

	cmd := &cobra.Command{
		Use:   messages.PublishUse,
		Short: messages.PublishShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := flags.newShell(cmd)
			if dryRun {
				out.Warn("`--dry-run` is superfluous, dry-run is done by default")
			}

			meta, err := workspace.Load(".", nil)
			if err != nil {
				return err
			}

			step.Shell = out
			step.Meta = meta
			step.Repo = &gitutil.ExecRepo{}
			step.Index = registry.NewIndex()
			step.Publisher = &publish.ExecPublisher{}
			return step.Run()
		},
	}

	cmd.Flags().BoolVarP(&step.Execute, "execute", "x", false, "actually perform the release (dry-run is the default)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "")
	_ = cmd.Flags().MarkHidden("dry-run")
	cmd.Flags().BoolVar(&step.NoConfirm, "no-confirm", false, "skip release confirmation and version preview")
	cmd.Flags().StringVarP(&step.ConfigArgs.CustomConfig, "config", "c", "", "custom config file path")
	cmd.Flags().BoolVar(&step.ConfigArgs.Isolated, "isolated", false, "ignore implicit configuration files")
	cmd.Flags().StringSliceVarP(&step.Packages, "package", "p", nil, "package to release (repeatable; default all)")
	cmd.Flags().StringSliceVar(&step.Exclude, "exclude", nil, "package to exclude (repeatable)")
	cmd.Flags().StringSliceVar(&step.ConfigArgs.AllowBranch, "allow-branch", nil, "comma-separated globs of branch names a release can happen from")
	cmd.Flags().BoolVar(&step.ConfigArgs.NoVerify, "no-verify", false, "skip the verification build before publishing")
	cmd.Flags().StringVar(&step.ConfigArgs.Registry, "registry", "", "registry to publish to")
	cmd.Flags().StringVar(&step.ConfigArgs.Target, "target", "", "build target for verification")
	return cmd
}
