package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coreplane-io/coreplane/internal/wait"
)

// resourceService implements the list/get/delete/wait core shared by every
// resource, driven by its ResourceType schema.
type resourceService struct {
	c   *Client
	typ ResourceType
}

func newResourceService(c *Client, typ ResourceType) *resourceService {
	return &resourceService{c: c, typ: typ}
}

// Type exposes the schema, for column validation in the CLI layer.
func (s *resourceService) Type() ResourceType { return s.typ }

// List fetches the collection and unwraps _embedded.<listKey>.
func (s *resourceService) List(ctx context.Context) ([]Record, error) {
	body, err := s.c.Do(ctx, http.MethodGet, s.typ.Path, nil)
	if err != nil {
		return nil, err
	}
	return embeddedRecords(body, s.typ.ListKey, s.typ.Path)
}

// Get fetches one record by its id path, e.g. /api/v2/k8scluster/123.
func (s *resourceService) Get(ctx context.Context, id string) (Record, error) {
	body, err := s.c.Do(ctx, http.MethodGet, id, nil)
	if err != nil {
		return nil, err
	}
	record, ok := body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("GET %s: response is not a JSON object", id)
	}
	return Record(record), nil
}

// Delete removes one record by id.
func (s *resourceService) Delete(ctx context.Context, id string) error {
	_, err := s.c.Do(ctx, http.MethodDelete, id, nil)
	return err
}

// WaitForStatus polls the record until its status reaches one of targets,
// enters a failure status, or the timeout elapses.
func (s *resourceService) WaitForStatus(ctx context.Context, id string, targets []string, timeout time.Duration) (wait.Result, error) {
	for _, t := range targets {
		if !s.typ.ValidStatus(t) {
			return wait.Result{}, fmt.Errorf("unknown %s status %q, expected one of %v", s.typ.Name, t, s.typ.Statuses)
		}
	}
	fetch := func(ctx context.Context) (string, error) {
		record, err := s.Get(ctx, id)
		if err != nil {
			return "", err
		}
		return record.Status(s.typ), nil
	}
	return wait.ForStatus(ctx, fetch, wait.Options{
		Targets:  targets,
		Failures: s.typ.FailureStatuses,
		Timeout:  timeout,
		Interval: s.c.pollInterval,
	})
}

// WaitForDelete polls until Get reports the record gone.
func (s *resourceService) WaitForDelete(ctx context.Context, id string, timeout time.Duration) (wait.Result, error) {
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

// embeddedRecords unwraps the _embedded.<key> list nesting of collection
// responses. An absent list yields an empty slice, not an error.
func embeddedRecords(body any, key, path string) ([]Record, error) {
	top, ok := body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("GET %s: response is not a JSON object", path)
	}
	embedded, ok := top["_embedded"].(map[string]any)
	if !ok {
		return []Record{}, nil
	}
	items, ok := embedded[key].([]any)
	if !ok {
		return []Record{}, nil
	}
	records := make([]Record, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("GET %s: _embedded.%s[%d] is not a JSON object", path, key, i)
		}
		records = append(records, Record(m))
	}
	return records, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
