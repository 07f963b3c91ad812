package platform

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/coreplane-io/coreplane/internal/wait"
)

// K8sWorkerService manages kubernetes host workers.
type K8sWorkerService struct {
	c   *Client
	svc *resourceService
}

func (s *K8sWorkerService) Type() ResourceType { return s.svc.Type() }

func (s *K8sWorkerService) List(ctx context.Context) ([]Record, error) {
	return s.svc.List(ctx)
}

func (s *K8sWorkerService) Get(ctx context.Context, id string) (Record, error) {
	return s.svc.Get(ctx, id)
}

// GetWithSetupLog fetches a worker including its setup log output.
func (s *K8sWorkerService) GetWithSetupLog(ctx context.Context, id string) (Record, error) {
	return s.svc.Get(ctx, id+"?setup_log=true")
}

func (s *K8sWorkerService) Delete(ctx context.Context, id string) error {
	return s.svc.Delete(ctx, id)
}

func (s *K8sWorkerService) WaitForStatus(ctx context.Context, id string, targets []string, timeout time.Duration) (wait.Result, error) {
	return s.svc.WaitForStatus(ctx, id, targets, timeout)
}

func (s *K8sWorkerService) WaitForDelete(ctx context.Context, id string, timeout time.Duration) (wait.Result, error) {
	return s.svc.WaitForDelete(ctx, id, timeout)
}

// CreateWithSSHKey registers a host as a kubernetes worker, authenticating
// over SSH with the given private key material. Returns the worker id.
func (s *K8sWorkerService) CreateWithSSHKey(ctx context.Context, ip, sshKeyData string, tags []map[string]any) (string, error) {
	if ip == "" {
		return "", fmt.Errorf("worker ip must not be empty")
	}
	if sshKeyData == "" {
		return "", fmt.Errorf("ssh key data must not be empty")
	}
	if tags == nil {
		tags = []map[string]any{}
	}
	data := map[string]any{
		"ipaddr": ip,
		"credentials": map[string]any{
			"type":         "ssh_key_access",
			"ssh_key_data": sshKeyData,
		},
		"tags": tags,
	}
	return s.c.PostForLocation(ctx, s.svc.typ.Path+"/", data)
}

// SetStorage assigns ephemeral and persistent disks to a worker. The
// controller treats this as an operation on the worker record itself.
func (s *K8sWorkerService) SetStorage(ctx context.Context, id string, ephemeralDisks, persistentDisks []string) error {
	if len(ephemeralDisks) == 0 {
		return fmt.Errorf("at least one ephemeral disk is required")
	}
	if persistentDisks == nil {
		persistentDisks = []string{}
	}

	// Surfaces ErrNotFound for a bad id before mutating anything.
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	data := map[string]any{
		"op_spec": map[string]any{
			"ephemeral_disks":  ephemeralDisks,
			"persistent_disks": persistentDisks,
		},
		"op": "storage",
	}
	_, err := s.c.Do(ctx, http.MethodPost, id, data)
	return err
}
