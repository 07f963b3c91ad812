package platform

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/coreplane-io/coreplane/internal/wait"
)

const lockPath = "/api/v1/lock"

var lockIDPattern = regexp.MustCompile(`^/api/v1/lock/[0-9]+$`)

// Locks holds both kinds of platform locks. Internal locks are placed by
// the controller itself and clear on their own; external locks were placed
// by users and must be deleted explicitly.
type Locks struct {
	Internal []Record
	External []Record
}

// LockService manages platform locks. Locks block mutating operations
// platform-wide, e.g. during maintenance.
type LockService struct {
	c *Client
}

// List returns the current internal and external locks.
func (s *LockService) List(ctx context.Context) (Locks, error) {
	body, err := s.c.Do(ctx, http.MethodGet, lockPath, nil)
	if err != nil {
		return Locks{}, err
	}
	internal, err := embeddedRecords(body, "internal_locks", lockPath)
	if err != nil {
		return Locks{}, err
	}
	external, err := embeddedRecords(body, "external_locks", lockPath)
	if err != nil {
		return Locks{}, err
	}
	return Locks{Internal: internal, External: external}, nil
}

// Create places an external lock and returns its id.
func (s *LockService) Create(ctx context.Context, reason string) (string, error) {
	data := map[string]any{"reason": reason}
	return s.c.PostForLocation(ctx, lockPath, data)
}

// Delete removes one external lock by id.
func (s *LockService) Delete(ctx context.Context, id string) error {
	if !lockIDPattern.MatchString(id) {
		return fmt.Errorf("lock id %q must have format '/api/v1/lock/<id>'", id)
	}
	_, err := s.c.Do(ctx, http.MethodDelete, id, nil)
	return err
}

// DeleteAll removes every external lock. Internal locks cannot be deleted,
// so it first waits for them to clear, bounded by timeout, then deletes the
// external locks one by one.
func (s *LockService) DeleteAll(ctx context.Context, timeout time.Duration) (wait.Result, error) {
	probe := func(ctx context.Context) (bool, error) {
		locks, err := s.List(ctx)
		if err != nil {
			return false, err
		}
		return len(locks.Internal) > 0, nil
	}
	result, err := wait.ForGone(ctx, probe, timeout, s.c.pollInterval)
	if err != nil || result.Outcome != wait.ReachedTarget {
		return result, err
	}

	locks, err := s.List(ctx)
	if err != nil {
		return result, err
	}
	for _, lock := range locks.External {
		id := lock.ID()
		if id == "" {
			continue
		}
		if err := s.Delete(ctx, id); err != nil {
			return result, fmt.Errorf("deleting lock %s: %w", id, err)
		}
	}
	return result, nil
}
