package platform

import (
	"context"
	"fmt"
)

// UserService manages platform users.
type UserService struct {
	c   *Client
	svc *resourceService
}

func (s *UserService) Type() ResourceType { return s.svc.Type() }

func (s *UserService) List(ctx context.Context) ([]Record, error) {
	return s.svc.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (Record, error) {
	return s.svc.Get(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.svc.Delete(ctx, id)
}

// Create adds a user. External users authenticate against the configured
// directory and need no password. Returns the user id.
func (s *UserService) Create(ctx context.Context, name, password, description string, isExternal bool) (string, error) {
	if name == "" {
		return "", fmt.Errorf("user name must not be empty")
	}
	data := map[string]any{
		"label": map[string]any{
			"name":        name,
			"description": description,
		},
		"is_external": isExternal,
	}
	if password != "" {
		data["password"] = password
	}
	return s.c.PostForLocation(ctx, s.svc.typ.Path, data)
}

// RoleService reads access roles. Roles are predefined on the controller;
// the API offers no create.
type RoleService struct {
	svc *resourceService
}

func (s *RoleService) Type() ResourceType { return s.svc.Type() }

func (s *RoleService) List(ctx context.Context) ([]Record, error) {
	return s.svc.List(ctx)
}

func (s *RoleService) Get(ctx context.Context, id string) (Record, error) {
	return s.svc.Get(ctx, id)
}

func (s *RoleService) Delete(ctx context.Context, id string) error {
	return s.svc.Delete(ctx, id)
}
