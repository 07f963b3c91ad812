package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

const (
	platformIDPath = "/api/v1/license"
	licensePath    = "/api/v2/hpelicense"
)

// LicenseService manages platform licenses.
type LicenseService struct {
	c *Client
}

// PlatformID returns the installation's unique id, needed when requesting
// a license.
func (s *LicenseService) PlatformID(ctx context.Context) (string, error) {
	body, err := s.c.Do(ctx, http.MethodGet, platformIDPath, nil)
	if err != nil {
		return "", err
	}
	payload, ok := body.(map[string]any)
	if !ok {
		return "", fmt.Errorf("GET %s: response is not a JSON object", platformIDPath)
	}
	uuid, _ := payload["uuid"].(string)
	if uuid == "" {
		return "", fmt.Errorf("GET %s: response has no uuid", platformIDPath)
	}
	return uuid, nil
}

// List returns the license summary: installed licenses plus capacity and
// usage totals. The shape varies across controller versions, so the raw
// object is returned for the output layer to render.
func (s *LicenseService) List(ctx context.Context) (map[string]any, error) {
	body, err := s.c.Do(ctx, http.MethodGet, licensePath, nil)
	if err != nil {
		return nil, err
	}
	payload, ok := body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("GET %s: response is not a JSON object", licensePath)
	}
	return payload, nil
}

// Register activates a license file previously uploaded to the controller
// host. Returns the license id.
func (s *LicenseService) Register(ctx context.Context, serverFilename string) (string, error) {
	if serverFilename == "" {
		return "", fmt.Errorf("license file path on the controller must not be empty")
	}
	data := map[string]any{"hpelicense_file": serverFilename}
	return s.c.PostForLocation(ctx, licensePath, data)
}

// Delete removes a license by key. Keys contain spaces and quotes, so the
// key is path-escaped into the URL.
func (s *LicenseService) Delete(ctx context.Context, licenseKey string) error {
	if licenseKey == "" {
		return fmt.Errorf("license key must not be empty")
	}
	_, err := s.c.Do(ctx, http.MethodDelete, fmt.Sprintf("%s/%s/", licensePath, url.PathEscape(licenseKey)), nil)
	return err
}
