// Package config loads the CLI configuration file and resolves connection
// profiles.
//
// The file is YAML, by default at ~/.coreplane/config.yaml, with one section
// per profile. Any key missing from the selected profile falls back to the
// value in the default profile, so shared connection settings live in default
// and per-environment credentials in named profiles:
//
//	profiles:
//	  default:
//	    api_host: 127.0.0.1
//	    api_port: 8080
//	    use_ssl: true
//	    verify_ssl: "false"
//	  demoserver:
//	    username: admin
//	    password: admin123
//	    tenant: /api/v1/tenant/2
//
// Environment variables override file values: COREPLANE_USERNAME,
// COREPLANE_PASSWORD, COREPLANE_API_HOST, COREPLANE_API_PORT,
// COREPLANE_USE_SSL, COREPLANE_VERIFY_SSL and COREPLANE_TENANT. The file
// path and profile come from COREPLANE_CONFIG_FILE and COREPLANE_PROFILE
// unless set by flag.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"sigs.k8s.io/yaml"
)

// DefaultProfileName is the fallback section every profile inherits from.
const DefaultProfileName = "default"

// ErrNotFound indicates the configuration file does not exist.
var ErrNotFound = errors.New("configuration file not found")

var tenantPattern = regexp.MustCompile(`^/api/v1/tenant/[0-9]+$`)

// file is the on-disk shape of the configuration file.
type file struct {
	Profiles map[string]profile `json:"profiles"`
}

// profile holds the raw values of one section. Strings distinguish "unset"
// from explicit false, which the default-profile fallback needs.
type profile struct {
	APIHost   string `json:"api_host"`
	APIPort   string `json:"api_port"`
	UseSSL    string `json:"use_ssl"`
	VerifySSL string `json:"verify_ssl"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Tenant    string `json:"tenant"`
}

// Config is a fully resolved connection profile, constructed once per
// invocation and passed explicitly to the API client.
type Config struct {
	APIHost  string
	APIPort  int
	UseSSL   bool
	Username string
	Password string

	// Tenant optionally scopes the session, format /api/v1/tenant/<n>.
	Tenant string

	// VerifySSL controls TLS verification. CACertPath, when set, points at
	// a bundle to verify against instead of the system roots.
	VerifySSL  bool
	CACertPath string

	// Profile records which section produced this config, for logging.
	Profile string
}

// BaseURL returns the controller address, e.g. "https://127.0.0.1:8080".
func (c *Config) BaseURL() string {
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.APIHost, c.APIPort)
}

// DefaultPath returns the config file location: COREPLANE_CONFIG_FILE if
// set, otherwise ~/.coreplane/config.yaml.
func DefaultPath() string {
	if p := os.Getenv("COREPLANE_CONFIG_FILE"); p != "" {
		return os.ExpandEnv(p)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".coreplane", "config.yaml")
	}
	return filepath.Join(home, ".coreplane", "config.yaml")
}

// DefaultProfile returns COREPLANE_PROFILE or "default".
func DefaultProfile() string {
	if p := os.Getenv("COREPLANE_PROFILE"); p != "" {
		return p
	}
	return DefaultProfileName
}

// Load reads the file at path and resolves the named profile, applying the
// default-profile fallback, environment overrides and validation.
func Load(path, profileName string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}

	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parsing config file %q: %w", path, err)
	}

	selected, ok := f.Profiles[profileName]
	if !ok && profileName != DefaultProfileName {
		return nil, fmt.Errorf("profile %q not found in %q", profileName, path)
	}
	fallback := f.Profiles[DefaultProfileName]

	merged := profile{
		APIHost:   firstOf(os.Getenv("COREPLANE_API_HOST"), selected.APIHost, fallback.APIHost),
		APIPort:   firstOf(os.Getenv("COREPLANE_API_PORT"), selected.APIPort, fallback.APIPort),
		UseSSL:    firstOf(os.Getenv("COREPLANE_USE_SSL"), selected.UseSSL, fallback.UseSSL),
		VerifySSL: firstOf(os.Getenv("COREPLANE_VERIFY_SSL"), selected.VerifySSL, fallback.VerifySSL),
		Username:  firstOf(os.Getenv("COREPLANE_USERNAME"), selected.Username, fallback.Username),
		Password:  firstOf(os.Getenv("COREPLANE_PASSWORD"), selected.Password, fallback.Password),
		Tenant:    firstOf(os.Getenv("COREPLANE_TENANT"), selected.Tenant, fallback.Tenant),
	}

	return resolve(merged, path, profileName)
}

func resolve(p profile, path, profileName string) (*Config, error) {
	requireValue := func(key, value string) error {
		if value == "" {
			return fmt.Errorf("%q not found in profile %q or the default profile of %q", key, profileName, path)
		}
		return nil
	}
	if err := requireValue("username", p.Username); err != nil {
		return nil, err
	}
	if err := requireValue("password", p.Password); err != nil {
		return nil, err
	}
	if err := requireValue("api_host", p.APIHost); err != nil {
		return nil, err
	}
	if err := requireValue("api_port", p.APIPort); err != nil {
		return nil, err
	}

	port, err := strconv.Atoi(p.APIPort)
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("'api_port' must be a port number, got %q", p.APIPort)
	}

	if p.Tenant != "" && !tenantPattern.MatchString(p.Tenant) {
		return nil, fmt.Errorf("'tenant' must have format '/api/v1/tenant/<id>', got %q", p.Tenant)
	}

	cfg := &Config{
		APIHost:  p.APIHost,
		APIPort:  port,
		UseSSL:   true,
		Username: p.Username,
		Password: p.Password,
		Tenant:   p.Tenant,
		Profile:  profileName,
	}

	// use_ssl defaults to true; anything other than an explicit false keeps
	// TLS on, matching the conservative reading of ambiguous values.
	if p.UseSSL != "" {
		v, err := strconv.ParseBool(p.UseSSL)
		if err != nil {
			return nil, fmt.Errorf("'use_ssl' must be true or false, got %q", p.UseSSL)
		}
		cfg.UseSSL = v
	}

	// verify_ssl is true, false, or a path to a CA bundle.
	cfg.VerifySSL = true
	if p.VerifySSL != "" {
		if v, err := strconv.ParseBool(p.VerifySSL); err == nil {
			cfg.VerifySSL = v
		} else {
			if _, statErr := os.Stat(p.VerifySSL); statErr != nil {
				return nil, fmt.Errorf("'verify_ssl' must be true, false, or a readable CA bundle path: %q", p.VerifySSL)
			}
			cfg.CACertPath = p.VerifySSL
		}
	}

	return cfg, nil
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
