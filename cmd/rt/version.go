package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conn-castle/release-train/internal/messages"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.VersionUse,
		Short: messages.VersionShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), versionString())
			return err
		},
	}
}
