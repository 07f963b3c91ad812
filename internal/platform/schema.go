package platform

import (
	"github.com/coreplane-io/coreplane/internal/output"
)

// Record is one decoded API object. Field access goes through dotted paths
// so nested values like _links.self.href address cleanly.
type Record map[string]any

// ID returns the record's canonical id, its _links.self.href, or "" when
// the record carries no links.
func (r Record) ID() string {
	v, _ := output.Lookup(map[string]any(r), "_links.self.href").(string)
	return v
}

// Status returns the record value at the schema's status field.
func (r Record) Status(t ResourceType) string {
	v, _ := output.Lookup(map[string]any(r), t.StatusField).(string)
	return v
}

// ResourceType describes one API resource declaratively: where it lives,
// how list responses nest, which fields it exposes for display and which
// field carries lifecycle status.
type ResourceType struct {
	// Name is the resource noun used in logs and CLI command names.
	Name string

	// Path is the collection endpoint, e.g. /api/v2/k8scluster.
	Path string

	// ListKey is the key under _embedded holding list items.
	ListKey string

	// Fields maps display column names to dotted record paths, in
	// declaration order.
	Fields []output.Column

	// DefaultFields are the column names shown when none are requested.
	DefaultFields []string

	// StatusField is the dotted path of the lifecycle status, empty for
	// resources without one.
	StatusField string

	// Statuses enumerates the valid status values.
	Statuses []string

	// FailureStatuses are statuses that mean the resource will never reach
	// a target state on its own.
	FailureStatuses []string
}

// ValidStatus reports whether s is one of the schema's statuses.
func (t ResourceType) ValidStatus(s string) bool {
	for _, v := range t.Statuses {
		if v == s {
			return true
		}
	}
	return false
}

var hostStatuses = []string{
	"bundle", "installing", "installed", "ready", "unlicensed",
	"configuring", "configured", "error", "sysinfo", "unconfiguring",
	"deleting", "storage_pending", "storage_configuring", "storage_error",
}

// K8sClusterType describes kubernetes clusters.
var K8sClusterType = ResourceType{
	Name:    "k8scluster",
	Path:    "/api/v2/k8scluster",
	ListKey: "k8sclusters",
	Fields: []output.Column{
		{Name: "id", Path: "_links.self.href"},
		{Name: "name", Path: "label.name"},
		{Name: "description", Path: "label.description"},
		{Name: "k8s_version", Path: "k8s_version"},
		{Name: "addons", Path: "addons"},
		{Name: "created_by_user_id", Path: "created_by_user_id"},
		{Name: "created_by_user_name", Path: "created_by_user_name"},
		{Name: "created_time", Path: "created_time"},
		{Name: "k8shosts_config", Path: "k8shosts_config"},
		{Name: "admin_kube_config", Path: "admin_kube_config"},
		{Name: "dashboard_token", Path: "dashboard_token"},
		{Name: "api_endpoint_access", Path: "api_endpoint_access"},
		{Name: "dashboard_endpoint_access", Path: "dashboard_endpoint_access"},
		{Name: "cert_data", Path: "cert_data"},
		{Name: "status", Path: "status"},
		{Name: "status_message", Path: "status_message"},
		{Name: "_links", Path: "_links"},
	},
	DefaultFields: []string{"id", "name", "description", "k8s_version", "status"},
	StatusField:   "status",
	Statuses: []string{
		"ready", "creating", "updating", "upgrading", "deleting", "error", "warning",
	},
	FailureStatuses: []string{"error"},
}

// K8sWorkerType describes kubernetes host workers.
var K8sWorkerType = ResourceType{
	Name:    "k8sworker",
	Path:    "/api/v2/worker/k8shost",
	ListKey: "k8shosts",
	Fields: []output.Column{
		{Name: "id", Path: "_links.self.href"},
		{Name: "status", Path: "status"},
		{Name: "hostname", Path: "hostname"},
		{Name: "ipaddr", Path: "ipaddr"},
		{Name: "href", Path: "_links.self.href"},
		{Name: "_links", Path: "_links"},
	},
	DefaultFields:   []string{"id", "status", "hostname", "ipaddr"},
	StatusField:     "status",
	Statuses:        hostStatuses,
	FailureStatuses: []string{"error", "storage_error"},
}

// GatewayType describes proxy-purpose workers. Lifecycle lives in `state`,
// not `status`.
var GatewayType = ResourceType{
	Name:    "gateway",
	Path:    "/api/v1/workers",
	ListKey: "workers",
	Fields: []output.Column{
		{Name: "id", Path: "_links.self.href"},
		{Name: "hacapable", Path: "hacapable"},
		{Name: "propinfo", Path: "propinfo"},
		{Name: "approved_worker_pubkey", Path: "approved_worker_pubkey"},
		{Name: "schedule", Path: "schedule"},
		{Name: "ip", Path: "ip"},
		{Name: "proxy_nodes_hostname", Path: "proxy_nodes_hostname"},
		{Name: "hostname", Path: "hostname"},
		{Name: "state", Path: "state"},
		{Name: "status_info", Path: "status_info"},
		{Name: "purpose", Path: "purpose"},
		{Name: "sysinfo", Path: "sysinfo"},
		{Name: "tags", Path: "tags"},
	},
	DefaultFields: []string{
		"id", "ip", "proxy_nodes_hostname", "hostname", "state",
		"status_info", "purpose", "tags",
	},
	StatusField: "state",
	Statuses: append(append([]string{}, hostStatuses...),
		"decommission_in_progress", "delete_in_progress"),
	FailureStatuses: []string{"error", "storage_error"},
}

// TenantType describes tenants.
var TenantType = ResourceType{
	Name:    "tenant",
	Path:    "/api/v1/tenant",
	ListKey: "tenants",
	Fields: []output.Column{
		{Name: "id", Path: "_links.self.href"},
		{Name: "name", Path: "label.name"},
		{Name: "description", Path: "label.description"},
		{Name: "status", Path: "status"},
		{Name: "tenant_type", Path: "tenant_type"},
		{Name: "external_user_groups", Path: "external_user_groups"},
	},
	DefaultFields: []string{"id", "name", "description", "status", "tenant_type"},
	StatusField:   "status",
	Statuses: []string{
		"ready", "creating", "updating", "upgrading", "deleting", "error", "warning",
	},
	FailureStatuses: []string{"error"},
}

// UserType describes platform users.
var UserType = ResourceType{
	Name:    "user",
	Path:    "/api/v1/user",
	ListKey: "users",
	Fields: []output.Column{
		{Name: "id", Path: "_links.self.href"},
		{Name: "name", Path: "label.name"},
		{Name: "description", Path: "label.description"},
		{Name: "is_group_added_user", Path: "is_group_added_user"},
		{Name: "is_external", Path: "is_external"},
		{Name: "is_service_account", Path: "is_service_account"},
		{Name: "default_tenant", Path: "default_tenant"},
		{Name: "is_siteadmin", Path: "is_siteadmin"},
	},
	DefaultFields: []string{
		"id", "name", "description", "is_group_added_user", "is_external",
		"is_service_account", "default_tenant", "is_siteadmin",
	},
}

// RoleType describes access roles.
var RoleType = ResourceType{
	Name:    "role",
	Path:    "/api/v1/role",
	ListKey: "roles",
	Fields: []output.Column{
		{Name: "id", Path: "_links.self.href"},
		{Name: "name", Path: "label.name"},
		{Name: "description", Path: "label.description"},
	},
	DefaultFields: []string{"id", "name", "description"},
}

// CatalogType describes catalog images.
var CatalogType = ResourceType{
	Name:    "catalog",
	Path:    "/api/v1/catalog",
	ListKey: "independent_catalog_entries",
	Fields: []output.Column{
		{Name: "id", Path: "_links.self.href"},
		{Name: "label_name", Path: "label.name"},
		{Name: "label_description", Path: "label.description"},
		{Name: "distro_id", Path: "distro_id"},
		{Name: "version", Path: "version"},
		{Name: "timestamp", Path: "timestamp"},
		{Name: "isdebug", Path: "isdebug"},
		{Name: "osclass", Path: "osclass"},
		{Name: "logo_url", Path: "logo.url"},
		{Name: "documentation_file", Path: "documentation.file"},
		{Name: "state", Path: "state"},
		{Name: "state_info", Path: "state_info"},
	},
	DefaultFields: []string{"id", "label_name", "label_description", "state"},
	StatusField:   "state",
}
