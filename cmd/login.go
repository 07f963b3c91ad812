package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newLoginCmd creates the command that verifies the configured credentials
// by opening a session and printing its id.
func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Verify credentials by creating a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), client.SessionID())
			return nil
		},
	}
}
