package platform

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coreplane-io/coreplane/internal/wait"
)

const tenantKubeConfigPath = "/api/v2/k8skubeconfig/"

// TenantService manages tenants, their user-role assignments and external
// user groups.
type TenantService struct {
	c   *Client
	svc *resourceService
}

func (s *TenantService) Type() ResourceType { return s.svc.Type() }

func (s *TenantService) List(ctx context.Context) ([]Record, error) {
	return s.svc.List(ctx)
}

func (s *TenantService) Get(ctx context.Context, id string) (Record, error) {
	return s.svc.Get(ctx, id)
}

func (s *TenantService) Delete(ctx context.Context, id string) error {
	return s.svc.Delete(ctx, id)
}

func (s *TenantService) WaitForStatus(ctx context.Context, id string, targets []string, timeout time.Duration) (wait.Result, error) {
	return s.svc.WaitForStatus(ctx, id, targets, timeout)
}

func (s *TenantService) WaitForDelete(ctx context.Context, id string, timeout time.Duration) (wait.Result, error) {
	return s.svc.WaitForDelete(ctx, id, timeout)
}

// Create makes a new tenant, optionally bound to a kubernetes cluster.
// Returns the tenant id.
func (s *TenantService) Create(ctx context.Context, name, description, tenantType, k8sClusterID string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("tenant name must not be empty")
	}
	label := map[string]any{"name": name}
	if description != "" {
		label["description"] = description
	}
	data := map[string]any{
		"label":                label,
		"member_key_available": "all_admins",
	}
	if tenantType != "" {
		data["tenant_type"] = tenantType
	}
	if k8sClusterID != "" {
		data["k8s_cluster"] = k8sClusterID
	}
	return s.c.PostForLocation(ctx, s.svc.typ.Path, data)
}

// Users lists the users assigned to the tenant.
func (s *TenantService) Users(ctx context.Context, id string) ([]Record, error) {
	body, err := s.c.Do(ctx, http.MethodGet, id+"?user", nil)
	if err != nil {
		return nil, err
	}
	return embeddedRecords(body, "users", id+"?user")
}

// AssignUserToRole grants a user a role within the tenant. All three ids
// are validated with a fetch first so a bad id fails with ErrNotFound
// before anything mutates.
func (s *TenantService) AssignUserToRole(ctx context.Context, tenantID, roleID, userID string) error {
	return s.changeUserRole(ctx, "assign", tenantID, roleID, userID)
}

// RevokeUserFromRole removes a user's role within the tenant.
func (s *TenantService) RevokeUserFromRole(ctx context.Context, tenantID, roleID, userID string) error {
	return s.changeUserRole(ctx, "revoke", tenantID, roleID, userID)
}

func (s *TenantService) changeUserRole(ctx context.Context, operation, tenantID, roleID, userID string) error {
	if _, err := s.Get(ctx, tenantID); err != nil {
		return err
	}
	if _, err := s.c.Roles.Get(ctx, roleID); err != nil {
		return err
	}
	if _, err := s.c.Users.Get(ctx, userID); err != nil {
		return err
	}
	data := map[string]any{"operation": operation, "role": roleID, "user": userID}
	_, err := s.c.Do(ctx, http.MethodPut, tenantID+"?user", data)
	return err
}

// ExternalUserGroup maps an external directory group to a tenant role.
type ExternalUserGroup struct {
	Group string `json:"group"`
	Role  string `json:"role"`
}

// ExternalUserGroups returns the tenant's external group mappings.
func (s *TenantService) ExternalUserGroups(ctx context.Context, id string) ([]ExternalUserGroup, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	raw, _ := record["external_user_groups"].([]any)
	groups := make([]ExternalUserGroup, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		g := ExternalUserGroup{}
		g.Group, _ = m["group"].(string)
		g.Role, _ = m["role"].(string)
		groups = append(groups, g)
	}
	return groups, nil
}

// AddExternalUserGroup maps group to roleID, replacing any existing mapping
// for the same group.
func (s *TenantService) AddExternalUserGroup(ctx context.Context, id, group, roleID string) error {
	groups, err := s.ExternalUserGroups(ctx, id)
	if err != nil {
		return err
	}
	kept := make([]ExternalUserGroup, 0, len(groups)+1)
	for _, g := range groups {
		if g.Group != group {
			kept = append(kept, g)
		}
	}
	kept = append(kept, ExternalUserGroup{Group: group, Role: roleID})
	return s.putExternalUserGroups(ctx, id, kept)
}

// DeleteExternalUserGroup removes the mapping for group, matched case
// insensitively.
func (s *TenantService) DeleteExternalUserGroup(ctx context.Context, id, group string) error {
	groups, err := s.ExternalUserGroups(ctx, id)
	if err != nil {
		return err
	}
	kept := make([]ExternalUserGroup, 0, len(groups))
	for _, g := range groups {
		if !strings.EqualFold(g.Group, group) {
			kept = append(kept, g)
		}
	}
	return s.putExternalUserGroups(ctx, id, kept)
}

func (s *TenantService) putExternalUserGroups(ctx context.Context, id string, groups []ExternalUserGroup) error {
	data := map[string]any{"external_user_groups": groups}
	_, err := s.c.Do(ctx, http.MethodPut, id+"?external_user_groups", data)
	return err
}

// KubeConfig returns the kubeconfig for the session's tenant. The endpoint
// derives the tenant from the session, so the client must have been logged
// in with a tenant.
func (s *TenantService) KubeConfig(ctx context.Context) (string, error) {
	if !s.c.HasTenant() {
		return "", ErrTenantRequired
	}
	raw, _, err := s.c.DoRaw(ctx, http.MethodGet, tenantKubeConfigPath, nil)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
