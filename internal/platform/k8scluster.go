package platform

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/coreplane-io/coreplane/internal/wait"
)

const k8sManifestPath = "/api/v2/k8smanifest"

var workerIDPattern = regexp.MustCompile(`^/api/v2/worker/k8shost/[0-9]+$`)

// K8sHostConfig assigns one registered host to a cluster role.
type K8sHostConfig struct {
	// Node is a worker id, format /api/v2/worker/k8shost/<n>.
	Node string `json:"node"`

	// Role is "master" or "worker".
	Role string `json:"role"`
}

func (h K8sHostConfig) validate() error {
	if !workerIDPattern.MatchString(h.Node) {
		return fmt.Errorf("node %q must have format '/api/v2/worker/k8shost/<id>'", h.Node)
	}
	if h.Role != "master" && h.Role != "worker" {
		return fmt.Errorf("role %q must be 'master' or 'worker'", h.Role)
	}
	return nil
}

// K8sClusterCreateRequest holds the parameters for cluster creation.
// Network defaults match the controller's own.
type K8sClusterCreateRequest struct {
	Name                       string
	Description                string
	K8sVersion                 string
	PodNetworkRange            string
	ServiceNetworkRange        string
	PodDNSDomain               string
	PersistentStorageLocal     bool
	PersistentStorageNimbleCSI bool
	Hosts                      []K8sHostConfig
	Addons                     []string
}

// K8sClusterService manages kubernetes clusters.
type K8sClusterService struct {
	c   *Client
	svc *resourceService
}

func (s *K8sClusterService) Type() ResourceType { return s.svc.Type() }

func (s *K8sClusterService) List(ctx context.Context) ([]Record, error) {
	return s.svc.List(ctx)
}

func (s *K8sClusterService) Get(ctx context.Context, id string) (Record, error) {
	return s.svc.Get(ctx, id)
}

// GetWithSetupLog fetches a cluster including its setup log output.
func (s *K8sClusterService) GetWithSetupLog(ctx context.Context, id string) (Record, error) {
	return s.svc.Get(ctx, id+"?setup_log=true")
}

func (s *K8sClusterService) Delete(ctx context.Context, id string) error {
	return s.svc.Delete(ctx, id)
}

func (s *K8sClusterService) WaitForStatus(ctx context.Context, id string, targets []string, timeout time.Duration) (wait.Result, error) {
	return s.svc.WaitForStatus(ctx, id, targets, timeout)
}

func (s *K8sClusterService) WaitForDelete(ctx context.Context, id string, timeout time.Duration) (wait.Result, error) {
	return s.svc.WaitForDelete(ctx, id, timeout)
}

// Create submits an asynchronous cluster creation and returns the new
// cluster id. Use WaitForStatus to wait for it to become ready.
func (s *K8sClusterService) Create(ctx context.Context, req K8sClusterCreateRequest) (string, error) {
	if req.Name == "" {
		return "", fmt.Errorf("cluster name must not be empty")
	}
	if len(req.Hosts) == 0 {
		return "", fmt.Errorf("at least one host config is required")
	}
	for i, h := range req.Hosts {
		if err := h.validate(); err != nil {
			return "", fmt.Errorf("host config %d: %w", i, err)
		}
	}

	if req.PodNetworkRange == "" {
		req.PodNetworkRange = "10.192.0.0/12"
	}
	if req.ServiceNetworkRange == "" {
		req.ServiceNetworkRange = "10.96.0.0/12"
	}
	if req.PodDNSDomain == "" {
		req.PodDNSDomain = "cluster.local"
	}
	addons := req.Addons
	if addons == nil {
		addons = []string{}
	}

	label := map[string]any{"name": req.Name}
	if req.Description != "" {
		label["description"] = req.Description
	}
	data := map[string]any{
		"label":                 label,
		"pod_network_range":     req.PodNetworkRange,
		"service_network_range": req.ServiceNetworkRange,
		"pod_dns_domain":        req.PodDNSDomain,
		"addons":                addons,
		"persistent_storage": map[string]any{
			"local":      req.PersistentStorageLocal,
			"nimble_csi": req.PersistentStorageNimbleCSI,
		},
		"k8shosts_config": req.Hosts,
	}
	if req.K8sVersion != "" {
		data["k8s_version"] = req.K8sVersion
	}

	return s.c.PostForLocation(ctx, s.svc.typ.Path, data)
}

// AdminKubeConfig returns the cluster's admin kubeconfig. The controller
// embeds it in the cluster record with escaped newlines.
func (s *K8sClusterService) AdminKubeConfig(ctx context.Context, id string) (string, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	raw, _ := record["admin_kube_config"].(string)
	if raw == "" {
		return "", fmt.Errorf("cluster %s has no admin kubeconfig yet", id)
	}
	return strings.ReplaceAll(raw, `\n`, "\n"), nil
}

// DashboardURL returns the cluster dashboard endpoint.
func (s *K8sClusterService) DashboardURL(ctx context.Context, id string) (string, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	url, _ := record["dashboard_endpoint_access"].(string)
	if url == "" {
		return "", fmt.Errorf("cluster %s has no dashboard endpoint yet", id)
	}
	return url, nil
}

// DashboardToken returns the dashboard bearer token, decoded from the
// base64 form the record carries.
func (s *K8sClusterService) DashboardToken(ctx context.Context, id string) (string, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	encoded, _ := record["dashboard_token"].(string)
	if encoded == "" {
		return "", fmt.Errorf("cluster %s has no dashboard token yet", id)
	}
	token, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decoding dashboard token for %s: %w", id, err)
	}
	return string(token), nil
}

// Manifest fetches the controller's kubernetes manifest, which enumerates
// supported versions and per-version addons.
func (s *K8sClusterService) Manifest(ctx context.Context) (map[string]any, error) {
	body, err := s.c.Do(ctx, http.MethodGet, k8sManifestPath, nil)
	if err != nil {
		return nil, err
	}
	manifest, ok := body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("GET %s: response is not a JSON object", k8sManifestPath)
	}
	return manifest, nil
}

// SupportedVersions returns the kubernetes versions the controller can
// deploy.
func (s *K8sClusterService) SupportedVersions(ctx context.Context) ([]string, error) {
	manifest, err := s.Manifest(ctx)
	if err != nil {
		return nil, err
	}
	raw, ok := manifest["supported_versions"].([]any)
	if !ok {
		return nil, fmt.Errorf("manifest has no supported_versions list")
	}
	versions := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			versions = append(versions, s)
		}
	}
	return versions, nil
}

// AvailableAddons returns the addons available for a cluster's kubernetes
// version.
func (s *K8sClusterService) AvailableAddons(ctx context.Context, id string) ([]string, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	version, _ := record["k8s_version"].(string)

	manifest, err := s.Manifest(ctx)
	if err != nil {
		return nil, err
	}
	info, _ := manifest["version_info"].(map[string]any)
	versionInfo, _ := info[version].(map[string]any)
	raw, ok := versionInfo["addons"].([]any)
	if !ok {
		return nil, fmt.Errorf("manifest has no addons for version %q", version)
	}
	addons := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			addons = append(addons, s)
		}
	}
	return addons, nil
}

// AddAddons reconfigures the cluster with additional addons, merged with
// the ones already installed.
func (s *K8sClusterService) AddAddons(ctx context.Context, id string, addons []string) error {
	if len(addons) == 0 {
		return fmt.Errorf("at least one addon is required")
	}
	record, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	merged := []string{}
	seen := map[string]bool{}
	appendUnique := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			merged = append(merged, name)
		}
	}
	if current, ok := record["addons"].([]any); ok {
		for _, v := range current {
			name, _ := v.(string)
			appendUnique(name)
		}
	}
	for _, name := range addons {
		appendUnique(name)
	}

	data := map[string]any{
		"change_spec": map[string]any{"addons": merged},
		"operation":   "reconfigure",
		"reason":      "",
	}
	_, err = s.c.Do(ctx, http.MethodPost, id+"/change_task", data)
	return err
}

// Upgrade moves the cluster to a newer kubernetes version, upgrading
// workers in batches of workerUpgradePercent (default 20).
func (s *K8sClusterService) Upgrade(ctx context.Context, id, k8sVersion string, workerUpgradePercent int) error {
	if k8sVersion == "" {
		return fmt.Errorf("target kubernetes version must not be empty")
	}
	if workerUpgradePercent <= 0 {
		workerUpgradePercent = 20
	}
	data := map[string]any{
		"change_spec": map[string]any{
			"k8s_upgrade": map[string]any{
				"worker_upgrade_percent": workerUpgradePercent,
				"k8s_upgrade_version":    k8sVersion,
			},
		},
		"operation": "reconfigure",
		"reason":    "Kubernetes upgrade",
	}
	_, err := s.c.Do(ctx, http.MethodPost, id+"/change_task", data)
	return err
}
