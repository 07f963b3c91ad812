package platform

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/coreplane-io/coreplane/internal/config"
	"github.com/coreplane-io/coreplane/internal/logging"
)

// sessionHeader carries the session id on every authenticated request.
const sessionHeader = "X-BDS-SESSION"

const loginPath = "/api/v1/login"

// Client talks to one controller. It is built per invocation from a resolved
// profile and holds the session id after Login. Not safe for concurrent
// mutation of the session; the CLI logs in once and then only reads it.
type Client struct {
	baseURL  string
	http     *http.Client
	username string
	password string
	tenant   string

	sessionID string

	// pollInterval spaces wait polls. Zero means wait.DefaultInterval;
	// tests shrink it.
	pollInterval time.Duration

	Clusters *K8sClusterService
	Workers  *K8sWorkerService
	Gateways *GatewayService
	Tenants  *TenantService
	Users    *UserService
	Roles    *RoleService
	Locks    *LockService
	Licenses *LicenseService
	Catalog  *CatalogService
}

// New builds a Client from a resolved profile, including TLS settings.
func New(cfg *config.Config) (*Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.UseSSL {
		tlsConfig := &tls.Config{}
		switch {
		case cfg.CACertPath != "":
			pem, err := os.ReadFile(cfg.CACertPath)
			if err != nil {
				return nil, fmt.Errorf("reading CA bundle %q: %w", cfg.CACertPath, err)
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(pem) {
				return nil, fmt.Errorf("CA bundle %q contains no usable certificates", cfg.CACertPath)
			}
			tlsConfig.RootCAs = pool
		case !cfg.VerifySSL:
			tlsConfig.InsecureSkipVerify = true
		}
		transport.TLSClientConfig = tlsConfig
	}

	c := &Client{
		baseURL:  cfg.BaseURL(),
		http:     &http.Client{Transport: transport, Timeout: 60 * time.Second},
		username: cfg.Username,
		password: cfg.Password,
		tenant:   cfg.Tenant,
	}
	c.Clusters = &K8sClusterService{c: c, svc: newResourceService(c, K8sClusterType)}
	c.Workers = &K8sWorkerService{c: c, svc: newResourceService(c, K8sWorkerType)}
	c.Gateways = &GatewayService{c: c, svc: newResourceService(c, GatewayType)}
	c.Tenants = &TenantService{c: c, svc: newResourceService(c, TenantType)}
	c.Users = &UserService{c: c, svc: newResourceService(c, UserType)}
	c.Roles = &RoleService{svc: newResourceService(c, RoleType)}
	c.Locks = &LockService{c: c}
	c.Licenses = &LicenseService{c: c}
	c.Catalog = &CatalogService{c: c, svc: newResourceService(c, CatalogType)}
	return c, nil
}

// SessionID returns the current session id, empty before Login.
func (c *Client) SessionID() string { return c.sessionID }

// HasTenant reports whether the session is tenant-scoped.
func (c *Client) HasTenant() bool { return c.tenant != "" }

// Login creates a session. The controller communicates the session id via
// the Location response header rather than the body.
func (c *Client) Login(ctx context.Context) error {
	payload := map[string]string{"name": c.username, "password": c.password}
	if c.tenant != "" {
		payload["tenant"] = c.tenant
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("login request to %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := readErrorMessage(resp.Body)
		if resp.StatusCode == 403 {
			return fmt.Errorf("%w: login rejected for user %q", ErrForbidden, c.username)
		}
		return &APIError{StatusCode: resp.StatusCode, Method: http.MethodPost, Path: loginPath, Message: msg}
	}

	session := resp.Header.Get("Location")
	if session == "" {
		return &APIError{StatusCode: resp.StatusCode, Method: http.MethodPost, Path: loginPath,
			Message: "login response missing Location header"}
	}
	c.sessionID = session

	slog.Debug("session created",
		logging.Operation("login"),
		slog.String("session", logging.SanitizeToken(session)),
		slog.Duration(logging.KeyDuration, time.Since(start)))
	return nil
}

// Do performs an authenticated request and decodes the JSON response.
// A 204 or empty body yields a nil value.
func (c *Client) Do(ctx context.Context, method, path string, body any) (any, error) {
	raw, _, err := c.DoRaw(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return out, nil
}

// DoRaw performs an authenticated request and returns the raw body and the
// response headers, for endpoints that return non-JSON payloads or signal
// results via headers.
func (c *Client) DoRaw(ctx context.Context, method, path string, body any) ([]byte, http.Header, error) {
	if c.sessionID == "" {
		return nil, nil, ErrNoSession
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("encoding %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("building %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(sessionHeader, c.sessionID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s %s response: %w", method, path, err)
	}

	slog.Debug("api request",
		logging.Method(method),
		logging.Path(path),
		logging.StatusCode(resp.StatusCode),
		slog.Duration(logging.KeyDuration, time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, statusError(resp.StatusCode, method, path, errorMessageFrom(raw))
	}
	return raw, resp.Header, nil
}

// PostForLocation issues a create request and returns the new record's id
// from the Location response header.
func (c *Client) PostForLocation(ctx context.Context, path string, body any) (string, error) {
	_, header, err := c.DoRaw(ctx, http.MethodPost, path, body)
	if err != nil {
		return "", err
	}
	location := header.Get("Location")
	if location == "" {
		return "", &APIError{StatusCode: 200, Method: http.MethodPost, Path: path,
			Message: "response missing Location header"}
	}
	return location, nil
}

func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	return errorMessageFrom(raw)
}

// errorMessageFrom pulls a human message out of an error body. Controllers
// return {"result": ..., "_error_message": ...} shapes inconsistently, so
// fall back to the raw text.
func errorMessageFrom(raw []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err == nil {
		for _, key := range []string{"_error_message", "message", "result"} {
			if v, ok := payload[key].(string); ok && v != "" {
				return v
			}
		}
	}
	return strings.TrimSpace(string(raw))
}
