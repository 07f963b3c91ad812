package cmd

import (
	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage catalog images",
	}
	cmd.AddCommand(
		newCatalogListCmd(),
		newCatalogGetCmd(),
		newCatalogInstallCmd(),
		newCatalogRefreshCmd(),
	)
	return cmd
}

func newCatalogListCmd() *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			records, err := client.Catalog.List(cmd.Context())
			if err != nil {
				return err
			}
			return renderList(cmd, client.Catalog.Type(), records, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func newCatalogGetCmd() *cobra.Command {
	var flags getFlags
	cmd := &cobra.Command{
		Use:   "get ID",
		Short: "Get a catalog image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			record, err := client.Catalog.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderRecord(cmd, record, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func newCatalogInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install ID",
		Short: "Install a catalog image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			return client.Catalog.Install(cmd.Context(), args[0])
		},
	}
}

func newCatalogRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh ID",
		Short: "Refresh a catalog image's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			return client.Catalog.Refresh(cmd.Context(), args[0])
		},
	}
}
