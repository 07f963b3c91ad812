package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/coreplane-io/coreplane/internal/wait"
)

// GatewayService manages gateways. Gateways share the workers endpoint with
// other host kinds and are distinguished by purpose "proxy"; list and get
// filter accordingly so non-proxy workers never leak through.
type GatewayService struct {
	c   *Client
	svc *resourceService
}

func (s *GatewayService) Type() ResourceType { return s.svc.Type() }

// List returns only workers whose purpose is proxy.
func (s *GatewayService) List(ctx context.Context) ([]Record, error) {
	records, err := s.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	gateways := make([]Record, 0, len(records))
	for _, r := range records {
		if purpose, _ := r["purpose"].(string); purpose == "proxy" {
			gateways = append(gateways, r)
		}
	}
	return gateways, nil
}

// Get returns the gateway with the given id. A worker that exists but is
// not a proxy reports ErrNotFound.
func (s *GatewayService) Get(ctx context.Context, id string) (Record, error) {
	record, err := s.svc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if purpose, _ := record["purpose"].(string); purpose != "proxy" {
		return nil, fmt.Errorf("%w: gateway %s", ErrNotFound, id)
	}
	return record, nil
}

func (s *GatewayService) Delete(ctx context.Context, id string) error {
	// Only proxies are deletable through this service.
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.svc.Delete(ctx, id)
}

// WaitForState polls the gateway's state field.
func (s *GatewayService) WaitForState(ctx context.Context, id string, targets []string, timeout time.Duration) (wait.Result, error) {
	return s.svc.WaitForStatus(ctx, id, targets, timeout)
}

func (s *GatewayService) WaitForDelete(ctx context.Context, id string, timeout time.Duration) (wait.Result, error) {
	probe := func(ctx context.Context) (bool, error) {
		_, err := s.Get(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return false, nil
			}
			return false, err
		}
		return true, nil
	}
	return wait.ForGone(ctx, probe, timeout, s.c.pollInterval)
}

// CreateWithSSHKey registers a host as a gateway, authenticating over SSH
// with the given private key material. Returns the gateway id.
func (s *GatewayService) CreateWithSSHKey(ctx context.Context, ip, proxyNodeHostname, sshKeyData string, tags []map[string]any) (string, error) {
	if ip == "" {
		return "", fmt.Errorf("gateway ip must not be empty")
	}
	if proxyNodeHostname == "" {
		return "", fmt.Errorf("proxy node hostname must not be empty")
	}
	if sshKeyData == "" {
		return "", fmt.Errorf("ssh key data must not be empty")
	}
	if tags == nil {
		tags = []map[string]any{}
	}
	data := map[string]any{
		"ip": ip,
		"credentials": map[string]any{
			"type":         "ssh_key_access",
			"ssh_key_data": sshKeyData,
		},
		"tags":                 tags,
		"proxy_nodes_hostname": proxyNodeHostname,
		"purpose":              "proxy",
	}
	return s.c.PostForLocation(ctx, s.svc.typ.Path+"/", data)
}
