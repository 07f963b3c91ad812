package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coreplane-io/coreplane/internal/output"
)

func newLicenseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "license",
		Short: "Manage platform licenses",
	}
	cmd.AddCommand(
		newLicensePlatformIDCmd(),
		newLicenseListCmd(),
		newLicenseRegisterCmd(),
		newLicenseDeleteCmd(),
	)
	return cmd
}

func newLicensePlatformIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "platform-id",
		Short: "Print the platform id used when requesting licenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			id, err := client.Licenses.PlatformID(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func newLicenseListCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show installed licenses and capacity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			summary, err := client.Licenses.List(cmd.Context())
			if err != nil {
				return err
			}
			parsed, err := output.ParseFormat(format)
			if err != nil {
				return err
			}
			return output.RenderRecord(cmd.OutOrStdout(), summary, parsed)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "json-pp", "output format: json, json-pp or yaml")
	return cmd
}

func newLicenseRegisterCmd() *cobra.Command {
	var serverFilename string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a license previously uploaded to the controller",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			id, err := client.Licenses.Register(cmd.Context(), serverFilename)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&serverFilename, "server-filename", "",
		"license file path on the controller, e.g. /srv/license/LICENSE-1.txt (required)")
	_ = cmd.MarkFlagRequired("server-filename")
	return cmd
}

func newLicenseDeleteCmd() *cobra.Command {
	var licenseKey string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a license by key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			return client.Licenses.Delete(cmd.Context(), licenseKey)
		},
	}
	cmd.Flags().StringVar(&licenseKey, "license-key", "", "license key to delete (required)")
	_ = cmd.MarkFlagRequired("license-key")
	return cmd
}
