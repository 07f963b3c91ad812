package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coreplane-io/coreplane/internal/platform"
)

func newK8sWorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "k8sworker",
		Short: "Manage kubernetes host workers",
	}
	cmd.AddCommand(
		newK8sWorkerListCmd(),
		newK8sWorkerGetCmd(),
		newK8sWorkerCreateCmd(),
		newK8sWorkerDeleteCmd(),
		newK8sWorkerSetStorageCmd(),
		newK8sWorkerWaitForStatusCmd(),
	)
	return cmd
}

func newK8sWorkerListCmd() *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List kubernetes host workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			records, err := client.Workers.List(cmd.Context())
			if err != nil {
				return err
			}
			return renderList(cmd, client.Workers.Type(), records, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func newK8sWorkerGetCmd() *cobra.Command {
	var flags getFlags
	var setupLog bool
	cmd := &cobra.Command{
		Use:   "get ID",
		Short: "Get a kubernetes host worker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			var record platform.Record
			if setupLog {
				record, err = client.Workers.GetWithSetupLog(cmd.Context(), args[0])
			} else {
				record, err = client.Workers.Get(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			return renderRecord(cmd, record, flags)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&setupLog, "setup-log", false, "include the worker setup log")
	return cmd
}

// readSSHKey loads key material from a file, for the create commands.
func readSSHKey(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading ssh key %q: %w", path, err)
	}
	return string(data), nil
}

func newK8sWorkerCreateCmd() *cobra.Command {
	var ip, sshKeyFile string
	var waitForStatusSec int
	cmd := &cobra.Command{
		Use:   "create-with-ssh-key",
		Short: "Register a host as a kubernetes worker using an SSH key",
		RunE: func(cmd *cobra.Command, args []string) error {
			sshKey, err := readSSHKey(sshKeyFile)
			if err != nil {
				return err
			}
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			id, err := client.Workers.CreateWithSSHKey(cmd.Context(), ip, sshKey, nil)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)

			if waitForStatusSec > 0 {
				result, err := client.Workers.WaitForStatus(cmd.Context(), id,
					[]string{"ready"}, waitSeconds(waitForStatusSec))
				if err != nil {
					return err
				}
				return reportWait(result, "worker "+id)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&ip, "ip", "", "IP address of the host (required)")
	cmd.Flags().StringVar(&sshKeyFile, "ssh-key-file", "", "path to the SSH private key (required)")
	cmd.Flags().IntVar(&waitForStatusSec, "wait-for-ready-sec", 0, "wait up to this many seconds for the worker to become ready")
	_ = cmd.MarkFlagRequired("ip")
	_ = cmd.MarkFlagRequired("ssh-key-file")
	return cmd
}

func newK8sWorkerDeleteCmd() *cobra.Command {
	var waitForDeleteSec int
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a kubernetes host worker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			if err := client.Workers.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			if waitForDeleteSec > 0 {
				result, err := client.Workers.WaitForDelete(cmd.Context(), args[0], waitSeconds(waitForDeleteSec))
				if err != nil {
					return err
				}
				return reportWait(result, "deletion of worker "+args[0])
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&waitForDeleteSec, "wait-for-delete-sec", 0, "wait up to this many seconds for the deletion to finish")
	return cmd
}

func newK8sWorkerSetStorageCmd() *cobra.Command {
	var ephemeralDisks, persistentDisks []string
	cmd := &cobra.Command{
		Use:   "set-storage ID",
		Short: "Assign disks to a worker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			return client.Workers.SetStorage(cmd.Context(), args[0], ephemeralDisks, persistentDisks)
		},
	}
	cmd.Flags().StringSliceVar(&ephemeralDisks, "ephemeral-disks", nil, "ephemeral disk device, repeatable (required)")
	cmd.Flags().StringSliceVar(&persistentDisks, "persistent-disks", nil, "persistent disk device, repeatable")
	_ = cmd.MarkFlagRequired("ephemeral-disks")
	return cmd
}

func newK8sWorkerWaitForStatusCmd() *cobra.Command {
	var statuses []string
	var timeoutSec int
	cmd := &cobra.Command{
		Use:   "wait-for-status ID",
		Short: "Wait for a worker to reach a status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			result, err := client.Workers.WaitForStatus(cmd.Context(), args[0], statuses, waitSeconds(timeoutSec))
			if err != nil {
				return err
			}
			return reportWait(result, "worker "+args[0])
		},
	}
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "target status, repeatable (required)")
	cmd.Flags().IntVar(&timeoutSec, "timeout-sec", 1200, "how long to wait")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}
