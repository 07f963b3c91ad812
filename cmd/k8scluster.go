package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coreplane-io/coreplane/internal/kubeconfig"
	"github.com/coreplane-io/coreplane/internal/platform"
)

func newK8sClusterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "k8scluster",
		Short: "Manage kubernetes clusters",
	}
	cmd.AddCommand(
		newK8sClusterListCmd(),
		newK8sClusterGetCmd(),
		newK8sClusterCreateCmd(),
		newK8sClusterDeleteCmd(),
		newK8sClusterAdminKubeConfigCmd(),
		newK8sClusterDashboardURLCmd(),
		newK8sClusterDashboardTokenCmd(),
		newK8sClusterSupportedVersionsCmd(),
		newK8sClusterAvailableAddonsCmd(),
		newK8sClusterAddAddonsCmd(),
		newK8sClusterUpgradeCmd(),
		newK8sClusterWaitForStatusCmd(),
	)
	return cmd
}

func newK8sClusterListCmd() *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List kubernetes clusters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			records, err := client.Clusters.List(cmd.Context())
			if err != nil {
				return err
			}
			return renderList(cmd, client.Clusters.Type(), records, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func newK8sClusterGetCmd() *cobra.Command {
	var flags getFlags
	var setupLog bool
	cmd := &cobra.Command{
		Use:   "get ID",
		Short: "Get a kubernetes cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			var record platform.Record
			if setupLog {
				record, err = client.Clusters.GetWithSetupLog(cmd.Context(), args[0])
			} else {
				record, err = client.Clusters.Get(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			return renderRecord(cmd, record, flags)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&setupLog, "setup-log", false, "include the cluster setup log")
	return cmd
}

func newK8sClusterCreateCmd() *cobra.Command {
	var req platform.K8sClusterCreateRequest
	var hostConfigs []string
	var waitForReadySec int
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a kubernetes cluster",
		Long: `Create a kubernetes cluster from registered hosts.

Each --node pairs a worker id with a role, e.g.
--node /api/v2/worker/k8shost/1:master --node /api/v2/worker/k8shost/2:worker`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hosts, err := parseHostConfigs(hostConfigs)
			if err != nil {
				return err
			}
			req.Hosts = hosts

			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			id, err := client.Clusters.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)

			if waitForReadySec > 0 {
				result, err := client.Clusters.WaitForStatus(cmd.Context(), id,
					[]string{"ready"}, waitSeconds(waitForReadySec))
				if err != nil {
					return err
				}
				return reportWait(result, "cluster "+id)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "cluster name (required)")
	cmd.Flags().StringVar(&req.Description, "description", "", "cluster description")
	cmd.Flags().StringVar(&req.K8sVersion, "k8s-version", "", "kubernetes version (default: latest supported)")
	cmd.Flags().StringVar(&req.PodNetworkRange, "pod-network-range", "", "pod network CIDR (default 10.192.0.0/12)")
	cmd.Flags().StringVar(&req.ServiceNetworkRange, "service-network-range", "", "service network CIDR (default 10.96.0.0/12)")
	cmd.Flags().StringVar(&req.PodDNSDomain, "pod-dns-domain", "", "pod DNS domain (default cluster.local)")
	cmd.Flags().BoolVar(&req.PersistentStorageLocal, "persistent-storage-local", false, "enable local host storage")
	cmd.Flags().BoolVar(&req.PersistentStorageNimbleCSI, "persistent-storage-nimble-csi", false, "install the Nimble CSI plugin")
	cmd.Flags().StringArrayVar(&hostConfigs, "node", nil, "worker id and role as ID:ROLE, repeatable (required)")
	cmd.Flags().StringSliceVar(&req.Addons, "addon", nil, "addon to enable, repeatable")
	cmd.Flags().IntVar(&waitForReadySec, "wait-for-ready-sec", 0, "wait up to this many seconds for the cluster to become ready")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("node")
	return cmd
}

// parseHostConfigs splits ID:ROLE pairs. The worker id itself contains
// slashes but no colon, so the last colon separates the role.
func parseHostConfigs(specs []string) ([]platform.K8sHostConfig, error) {
	hosts := make([]platform.K8sHostConfig, 0, len(specs))
	for _, spec := range specs {
		idx := strings.LastIndex(spec, ":")
		if idx <= 0 || idx == len(spec)-1 {
			return nil, fmt.Errorf("invalid --node value %q, expected ID:ROLE", spec)
		}
		hosts = append(hosts, platform.K8sHostConfig{Node: spec[:idx], Role: spec[idx+1:]})
	}
	return hosts, nil
}

func newK8sClusterDeleteCmd() *cobra.Command {
	var waitForDeleteSec int
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a kubernetes cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			if err := client.Clusters.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			if waitForDeleteSec > 0 {
				result, err := client.Clusters.WaitForDelete(cmd.Context(), args[0], waitSeconds(waitForDeleteSec))
				if err != nil {
					return err
				}
				return reportWait(result, "deletion of cluster "+args[0])
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&waitForDeleteSec, "wait-for-delete-sec", 0, "wait up to this many seconds for the deletion to finish")
	return cmd
}

func newK8sClusterAdminKubeConfigCmd() *cobra.Command {
	var filePath string
	var merge bool
	cmd := &cobra.Command{
		Use:   "admin-kubeconfig ID",
		Short: "Retrieve the cluster admin kubeconfig",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			raw, err := client.Clusters.AdminKubeConfig(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return deliverKubeConfig(cmd, []byte(raw), filePath, merge)
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "write the kubeconfig to this path instead of stdout")
	cmd.Flags().BoolVar(&merge, "merge", false, "merge into the kubeconfig at --file (or the default kubeconfig)")
	return cmd
}

// deliverKubeConfig prints, writes or merges a validated kubeconfig payload.
func deliverKubeConfig(cmd *cobra.Command, raw []byte, filePath string, merge bool) error {
	if merge {
		target := filePath
		if target == "" {
			target = kubeconfig.DefaultPath()
		}
		if err := kubeconfig.Merge(raw, target); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "merged into %s\n", target)
		return nil
	}
	if filePath != "" {
		return kubeconfig.Write(raw, filePath)
	}
	if _, err := kubeconfig.Parse(raw); err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(raw))
	return nil
}

func newK8sClusterDashboardURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard-url ID",
		Short: "Retrieve the cluster dashboard URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			url, err := client.Clusters.DashboardURL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
}

func newK8sClusterDashboardTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard-token ID",
		Short: "Retrieve the cluster dashboard bearer token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			token, err := client.Clusters.DashboardToken(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

func newK8sClusterSupportedVersionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "supported-versions",
		Short: "List the kubernetes versions the controller supports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			versions, err := client.Clusters.SupportedVersions(cmd.Context())
			if err != nil {
				return err
			}
			for _, v := range versions {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}
}

func newK8sClusterAvailableAddonsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "available-addons ID",
		Short: "List the addons available for a cluster's kubernetes version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			addons, err := client.Clusters.AvailableAddons(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, a := range addons {
				fmt.Fprintln(cmd.OutOrStdout(), a)
			}
			return nil
		},
	}
}

func newK8sClusterAddAddonsCmd() *cobra.Command {
	var addons []string
	var waitForReadySec int
	cmd := &cobra.Command{
		Use:   "add-addons ID",
		Short: "Add addons to a cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			if err := client.Clusters.AddAddons(cmd.Context(), args[0], addons); err != nil {
				return err
			}
			if waitForReadySec > 0 {
				result, err := client.Clusters.WaitForStatus(cmd.Context(), args[0],
					[]string{"ready"}, waitSeconds(waitForReadySec))
				if err != nil {
					return err
				}
				return reportWait(result, "cluster "+args[0])
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&addons, "addon", nil, "addon to add, repeatable (required)")
	cmd.Flags().IntVar(&waitForReadySec, "wait-for-ready-sec", 0, "wait up to this many seconds for the cluster to return to ready")
	_ = cmd.MarkFlagRequired("addon")
	return cmd
}

func newK8sClusterUpgradeCmd() *cobra.Command {
	var version string
	var workerUpgradePercent int
	var waitForReadySec int
	cmd := &cobra.Command{
		Use:   "upgrade ID",
		Short: "Upgrade a cluster to a newer kubernetes version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			if err := client.Clusters.Upgrade(cmd.Context(), args[0], version, workerUpgradePercent); err != nil {
				return err
			}
			if waitForReadySec > 0 {
				result, err := client.Clusters.WaitForStatus(cmd.Context(), args[0],
					[]string{"ready"}, waitSeconds(waitForReadySec))
				if err != nil {
					return err
				}
				return reportWait(result, "cluster "+args[0])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&version, "k8s-version", "", "target kubernetes version (required)")
	cmd.Flags().IntVar(&workerUpgradePercent, "worker-upgrade-percent", 20, "percentage of workers upgraded at a time")
	cmd.Flags().IntVar(&waitForReadySec, "wait-for-ready-sec", 0, "wait up to this many seconds for the upgrade to finish")
	_ = cmd.MarkFlagRequired("k8s-version")
	return cmd
}

func newK8sClusterWaitForStatusCmd() *cobra.Command {
	var statuses []string
	var timeoutSec int
	cmd := &cobra.Command{
		Use:   "wait-for-status ID",
		Short: "Wait for a cluster to reach a status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			result, err := client.Clusters.WaitForStatus(cmd.Context(), args[0], statuses, waitSeconds(timeoutSec))
			if err != nil {
				return err
			}
			return reportWait(result, "cluster "+args[0])
		},
	}
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "target status, repeatable (required)")
	cmd.Flags().IntVar(&timeoutSec, "timeout-sec", 1200, "how long to wait")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}
