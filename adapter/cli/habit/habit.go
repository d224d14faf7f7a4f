// Package habit holds the cadence commands that manage and report on habits.
package habit

import (
	"io"

	"github.com/spf13/cobra"
)

// Commands returns the habit commands in listing order.
func Commands() []*cobra.Command {
	return []*cobra.Command{
		addCmd,
		deleteCmd,
		completeCmd,
		listCmd,
		listByPeriodCmd,
		streakCmd,
		checkCmd,
		seedCmd,
	}
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
