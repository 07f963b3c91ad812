package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coreplane-io/coreplane/internal/output"
	"github.com/coreplane-io/coreplane/internal/platform"
)

func newTenantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants",
	}
	cmd.AddCommand(
		newTenantListCmd(),
		newTenantGetCmd(),
		newTenantCreateCmd(),
		newTenantDeleteCmd(),
		newTenantUsersCmd(),
		newTenantAssignUserToRoleCmd(),
		newTenantRevokeUserFromRoleCmd(),
		newTenantExternalUserGroupsCmd(),
		newTenantAddExternalUserGroupCmd(),
		newTenantDeleteExternalUserGroupCmd(),
		newTenantKubeConfigCmd(),
		newTenantWaitForStatusCmd(),
	)
	return cmd
}

func newTenantListCmd() *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tenants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			records, err := client.Tenants.List(cmd.Context())
			if err != nil {
				return err
			}
			return renderList(cmd, client.Tenants.Type(), records, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func newTenantGetCmd() *cobra.Command {
	var flags getFlags
	cmd := &cobra.Command{
		Use:   "get ID",
		Short: "Get a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			record, err := client.Tenants.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderRecord(cmd, record, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func newTenantCreateCmd() *cobra.Command {
	var name, description, tenantType, k8sClusterID string
	var waitForReadySec int
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a tenant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			id, err := client.Tenants.Create(cmd.Context(), name, description, tenantType, k8sClusterID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)

			if waitForReadySec > 0 {
				result, err := client.Tenants.WaitForStatus(cmd.Context(), id,
					[]string{"ready"}, waitSeconds(waitForReadySec))
				if err != nil {
					return err
				}
				return reportWait(result, "tenant "+id)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "tenant name (required)")
	cmd.Flags().StringVar(&description, "description", "", "tenant description")
	cmd.Flags().StringVar(&tenantType, "tenant-type", "", "tenant type, e.g. k8s")
	cmd.Flags().StringVar(&k8sClusterID, "k8s-cluster", "", "kubernetes cluster id to bind the tenant to")
	cmd.Flags().IntVar(&waitForReadySec, "wait-for-ready-sec", 0, "wait up to this many seconds for the tenant to become ready")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newTenantDeleteCmd() *cobra.Command {
	var waitForDeleteSec int
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			if err := client.Tenants.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			if waitForDeleteSec > 0 {
				result, err := client.Tenants.WaitForDelete(cmd.Context(), args[0], waitSeconds(waitForDeleteSec))
				if err != nil {
					return err
				}
				return reportWait(result, "deletion of tenant "+args[0])
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&waitForDeleteSec, "wait-for-delete-sec", 0, "wait up to this many seconds for the deletion to finish")
	return cmd
}

func newTenantUsersCmd() *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "users ID",
		Short: "List the users assigned to a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			records, err := client.Tenants.Users(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderList(cmd, platform.UserType, records, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func newTenantAssignUserToRoleCmd() *cobra.Command {
	var roleID, userID string
	cmd := &cobra.Command{
		Use:   "assign-user-to-role TENANT_ID",
		Short: "Grant a user a role within a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			return client.Tenants.AssignUserToRole(cmd.Context(), args[0], roleID, userID)
		},
	}
	cmd.Flags().StringVar(&roleID, "role-id", "", "role id, format /api/v1/role/<id> (required)")
	cmd.Flags().StringVar(&userID, "user-id", "", "user id, format /api/v1/user/<id> (required)")
	_ = cmd.MarkFlagRequired("role-id")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}

func newTenantRevokeUserFromRoleCmd() *cobra.Command {
	var roleID, userID string
	cmd := &cobra.Command{
		Use:   "revoke-user-from-role TENANT_ID",
		Short: "Remove a user's role within a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			return client.Tenants.RevokeUserFromRole(cmd.Context(), args[0], roleID, userID)
		},
	}
	cmd.Flags().StringVar(&roleID, "role-id", "", "role id, format /api/v1/role/<id> (required)")
	cmd.Flags().StringVar(&userID, "user-id", "", "user id, format /api/v1/user/<id> (required)")
	_ = cmd.MarkFlagRequired("role-id")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}

func newTenantExternalUserGroupsCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "get-external-user-groups ID",
		Short: "List a tenant's external user group mappings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			groups, err := client.Tenants.ExternalUserGroups(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			records := make([]map[string]any, len(groups))
			for i, g := range groups {
				records[i] = map[string]any{"group": g.Group, "role": g.Role}
			}
			parsed, err := output.ParseFormat(format)
			if err != nil {
				return err
			}
			return output.RenderList(cmd.OutOrStdout(), records, output.ListOptions{
				Format: parsed,
				Columns: []output.Column{
					{Name: "group", Path: "group"},
					{Name: "role", Path: "role"},
				},
			})
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "table", "output format: table, text, json or json-pp")
	return cmd
}

func newTenantAddExternalUserGroupCmd() *cobra.Command {
	var group, roleID string
	cmd := &cobra.Command{
		Use:   "add-external-user-group ID",
		Short: "Map an external directory group to a tenant role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			return client.Tenants.AddExternalUserGroup(cmd.Context(), args[0], group, roleID)
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "external group DN (required)")
	cmd.Flags().StringVar(&roleID, "role-id", "", "role id, format /api/v1/role/<id> (required)")
	_ = cmd.MarkFlagRequired("group")
	_ = cmd.MarkFlagRequired("role-id")
	return cmd
}

func newTenantDeleteExternalUserGroupCmd() *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "delete-external-user-group ID",
		Short: "Remove an external directory group mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			return client.Tenants.DeleteExternalUserGroup(cmd.Context(), args[0], group)
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "external group DN (required)")
	_ = cmd.MarkFlagRequired("group")
	return cmd
}

func newTenantKubeConfigCmd() *cobra.Command {
	var filePath string
	var merge bool
	cmd := &cobra.Command{
		Use:   "kubeconfig",
		Short: "Retrieve the kubeconfig for the session tenant",
		Long: `Retrieve the kubeconfig scoped to the tenant of the current session.
The selected profile must set a tenant.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			raw, err := client.Tenants.KubeConfig(cmd.Context())
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

func newTenantWaitForStatusCmd() *cobra.Command {
	var statuses []string
	var timeoutSec int
	cmd := &cobra.Command{
		Use:   "wait-for-status ID",
		Short: "Wait for a tenant to reach a status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			result, err := client.Tenants.WaitForStatus(cmd.Context(), args[0], statuses, waitSeconds(timeoutSec))
			if err != nil {
				return err
			}
			return reportWait(result, "tenant "+args[0])
		},
	}
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "target status, repeatable (required)")
	cmd.Flags().IntVar(&timeoutSec, "timeout-sec", 1200, "how long to wait")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}
