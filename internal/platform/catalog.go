package platform

import (
	"context"
	"net/http"
)

// CatalogService manages catalog images.
type CatalogService struct {
	c   *Client
	svc *resourceService
}

func (s *CatalogService) Type() ResourceType { return s.svc.Type() }

func (s *CatalogService) List(ctx context.Context) ([]Record, error) {
	return s.svc.List(ctx)
}

func (s *CatalogService) Get(ctx context.Context, id string) (Record, error) {
	return s.svc.Get(ctx, id)
}

// Install installs a catalog image. The id is checked with a fetch first so
// an unknown catalog reports ErrNotFound.
func (s *CatalogService) Install(ctx context.Context, id string) error {
	return s.action(ctx, id, "install")
}

// Refresh re-pulls a catalog image's metadata.
func (s *CatalogService) Refresh(ctx context.Context, id string) error {
	return s.action(ctx, id, "refresh")
}

func (s *CatalogService) action(ctx context.Context, id, action string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	_, err := s.c.Do(ctx, http.MethodPost, id, map[string]any{"action": action})
	return err
}
