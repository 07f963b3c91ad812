package cmd

import (
	"github.com/spf13/cobra"
)

func newRoleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Inspect access roles",
	}
	cmd.AddCommand(
		newRoleListCmd(),
		newRoleGetCmd(),
		newRoleDeleteCmd(),
	)
	return cmd
}

func newRoleListCmd() *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List roles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			records, err := client.Roles.List(cmd.Context())
			if err != nil {
				return err
			}
			return renderList(cmd, client.Roles.Type(), records, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func newRoleGetCmd() *cobra.Command {
	var flags getFlags
	cmd := &cobra.Command{
		Use:   "get ID",
		Short: "Get a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			record, err := client.Roles.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderRecord(cmd, record, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func newRoleDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			return client.Roles.Delete(cmd.Context(), args[0])
		},
	}
}
