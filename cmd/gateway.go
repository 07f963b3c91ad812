package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGatewayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gateway",
		Short: "Manage gateways",
	}
	cmd.AddCommand(
		newGatewayListCmd(),
		newGatewayGetCmd(),
		newGatewayCreateCmd(),
		newGatewayDeleteCmd(),
		newGatewayWaitForStateCmd(),
	)
	return cmd
}

func newGatewayListCmd() *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List gateways",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			records, err := client.Gateways.List(cmd.Context())
			if err != nil {
				return err
			}
			return renderList(cmd, client.Gateways.Type(), records, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func newGatewayGetCmd() *cobra.Command {
	var flags getFlags
	cmd := &cobra.Command{
		Use:   "get ID",
		Short: "Get a gateway",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			record, err := client.Gateways.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderRecord(cmd, record, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func newGatewayCreateCmd() *cobra.Command {
	var ip, proxyNodeHostname, sshKeyFile string
	var waitForStateSec int
	cmd := &cobra.Command{
		Use:   "create-with-ssh-key",
		Short: "Register a host as a gateway using an SSH key",
		RunE: func(cmd *cobra.Command, args []string) error {
			sshKey, err := readSSHKey(sshKeyFile)
			if err != nil {
				return err
			}
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			id, err := client.Gateways.CreateWithSSHKey(cmd.Context(), ip, proxyNodeHostname, sshKey, nil)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)

			if waitForStateSec > 0 {
				result, err := client.Gateways.WaitForState(cmd.Context(), id,
					[]string{"installed"}, waitSeconds(waitForStateSec))
				if err != nil {
					return err
				}
				return reportWait(result, "gateway "+id)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&ip, "ip", "", "IP address of the proxy host (required)")
	cmd.Flags().StringVar(&proxyNodeHostname, "proxy-node-hostname", "", "hostname clients will use to reach cluster services (required)")
	cmd.Flags().StringVar(&sshKeyFile, "ssh-key-file", "", "path to the SSH private key (required)")
	cmd.Flags().IntVar(&waitForStateSec, "wait-for-installed-sec", 0, "wait up to this many seconds for the gateway to be installed")
	_ = cmd.MarkFlagRequired("ip")
	_ = cmd.MarkFlagRequired("proxy-node-hostname")
	_ = cmd.MarkFlagRequired("ssh-key-file")
	return cmd
}

func newGatewayDeleteCmd() *cobra.Command {
	var waitForDeleteSec int
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a gateway",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			if err := client.Gateways.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			if waitForDeleteSec > 0 {
				result, err := client.Gateways.WaitForDelete(cmd.Context(), args[0], waitSeconds(waitForDeleteSec))
				if err != nil {
					return err
				}
				return reportWait(result, "deletion of gateway "+args[0])
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&waitForDeleteSec, "wait-for-delete-sec", 0, "wait up to this many seconds for the deletion to finish")
	return cmd
}

func newGatewayWaitForStateCmd() *cobra.Command {
	var states []string
	var timeoutSec int
	cmd := &cobra.Command{
		Use:   "wait-for-state ID",
		Short: "Wait for a gateway to reach a state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			result, err := client.Gateways.WaitForState(cmd.Context(), args[0], states, waitSeconds(timeoutSec))
			if err != nil {
				return err
			}
			return reportWait(result, "gateway "+args[0])
		},
	}
	cmd.Flags().StringSliceVar(&states, "state", nil, "target state, repeatable (required)")
	cmd.Flags().IntVar(&timeoutSec, "timeout-sec", 1200, "how long to wait")
	_ = cmd.MarkFlagRequired("state")
	return cmd
}
