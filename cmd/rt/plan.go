package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conn-castle/release-train/internal/config"
	"github.com/conn-castle/release-train/internal/gitutil"
	"github.com/conn-castle/release-train/internal/messages"
	"github.com/conn-castle/release-train/internal/plan"
	"github.com/conn-castle/release-train/internal/version"
	"github.com/conn-castle/release-train/internal/workspace"
)

func newPlanCmd(flags *rootFlags) *cobra.Command {
	var (
		customConfig string
		isolated     bool
		metadata     string
	)
	cmd := &cobra.Command{
		Use:   messages.PlanUse + " [LEVEL|VERSION]",
		Short: messages.PlanShort,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := flags.newShell(cmd)

			var target version.Target
			if len(args) == 1 {
				parsed, err := parseTarget(args[0])
				if err != nil {
					return err
				}
				target = parsed
			}

			meta, err := workspace.Load(".", nil)
			if err != nil {
				return err
			}
			resolver, err := config.NewResolver(&config.Args{CustomConfig: customConfig, Isolated: isolated}, meta.WorkspaceRoot)
			if err != nil {
				return err
			}
			repo := &gitutil.ExecRepo{}
			pkgs, err := plan.Load(out, resolver, meta, repo)
			if err != nil {
				return err
			}
			if target.Explicit != nil || target.Level != "" {
				for _, pkg := range pkgs.Releases() {
					if !pkg.Config.ReleaseEnabled() {
						continue
					}
					if err := pkg.Bump(out, target, metadata); err != nil {
						return err
					}
				}
			}
			if err := plan.Plan(out, pkgs); err != nil {
				return err
			}

			for _, pkg := range pkgs.Releases() {
				if !pkg.Config.ReleaseEnabled() {
					continue
				}
				line := fmt.Sprintf("%s %s", pkg.Meta.Name, pkg.InitialVersion.FullText)
				if pkg.PlannedVersion != nil {
					line = fmt.Sprintf("%s %s -> %s", pkg.Meta.Name, pkg.InitialVersion.FullText, pkg.PlannedVersion.FullText)
				}
				if pkg.PriorTag != "" {
					line += fmt.Sprintf(" (prior tag %s)", pkg.PriorTag)
				}
				if pkg.PlannedTag != nil {
					line += fmt.Sprintf(" tag %s", *pkg.PlannedTag)
				}
				_, _ = fmt.Fprintln(out.Out(), line)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&customConfig, "config", "c", "", "custom config file path")
	cmd.Flags().BoolVar(&isolated, "isolated", false, "ignore implicit configuration files")
	cmd.Flags().StringVarP(&metadata, "metadata", "m", "", "build metadata override")
	return cmd
}

// parseTarget interprets the positional argument as a bump level name or,
// failing that, an explicit version.
func parseTarget(arg string) (version.Target, error) {
	if level, err := version.ParseLevel(arg); err == nil {
		return version.Target{Level: level}, nil
	}
	explicit, err := version.Parse(arg)
	if err != nil {
		return version.Target{}, err
	}
	return version.Target{Explicit: &explicit}, nil
}
