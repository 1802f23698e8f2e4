package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eslreporter/warnlog/pkg/warnlog/event"
)

var kindsCmd = &cobra.Command{
	Use:         "kinds",
	Short:       "List the log line kinds warnlog recognizes",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipSetup: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, name := range event.KindNames() {
			if _, err := fmt.Fprintln(out, name); err != nil {
				return err
			}
		}
		return nil
	},
}
