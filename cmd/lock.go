package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coreplane-io/coreplane/internal/output"
	"github.com/coreplane-io/coreplane/internal/platform"
	"github.com/coreplane-io/coreplane/internal/wait"
)

func newLockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Manage platform locks",
	}
	cmd.AddCommand(
		newLockListCmd(),
		newLockCreateCmd(),
		newLockDeleteCmd(),
		newLockDeleteAllCmd(),
	)
	return cmd
}

var lockColumns = []output.Column{
	{Name: "id", Path: "_links.self.href"},
	{Name: "kind", Path: "kind"},
	{Name: "reason", Path: "reason"},
}

func newLockListCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List internal and external locks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			locks, err := client.Locks.List(cmd.Context())
			if err != nil {
				return err
			}
			parsed, err := output.ParseFormat(format)
			if err != nil {
				return err
			}
			records := make([]map[string]any, 0, len(locks.Internal)+len(locks.External))
			appendKind := func(kind string, items []platform.Record) {
				for _, r := range items {
					record := map[string]any{"kind": kind}
					for k, v := range r {
						record[k] = v
					}
					records = append(records, record)
				}
			}
			appendKind("internal", locks.Internal)
			appendKind("external", locks.External)
			return output.RenderList(cmd.OutOrStdout(), records, output.ListOptions{
				Format:  parsed,
				Columns: lockColumns,
			})
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "table", "output format: table, text, json or json-pp")
	return cmd
}

func newLockCreateCmd() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Place an external lock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			id, err := client.Locks.Create(cmd.Context(), reason)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "why the platform is being locked")
	return cmd
}

func newLockDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an external lock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			return client.Locks.Delete(cmd.Context(), args[0])
		},
	}
}

func newLockDeleteAllCmd() *cobra.Command {
	var timeoutSec int
	cmd := &cobra.Command{
		Use:   "delete-all",
		Short: "Delete all external locks",
		Long: `Delete every external lock. Internal locks cannot be deleted, so the
command first waits for them to clear, bounded by --timeout-sec.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			result, err := client.Locks.DeleteAll(cmd.Context(), waitSeconds(timeoutSec))
			if err != nil {
				return err
			}
			if result.Outcome != wait.ReachedTarget {
				return fmt.Errorf("internal locks did not clear within %ds", timeoutSec)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&timeoutSec, "timeout-sec", 300, "how long to wait for internal locks to clear")
	return cmd
}
