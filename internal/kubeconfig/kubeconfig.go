// Package kubeconfig validates and places kubeconfig payloads returned by
// the controller. Payloads are parsed with client-go's clientcmd before
// anything is printed or written, so a half-provisioned cluster never
// produces a broken file.
package kubeconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

// Parse decodes raw kubeconfig data and checks it for structural validity.
func Parse(raw []byte) (*clientcmdapi.Config, error) {
	cfg, err := clientcmd.Load(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing kubeconfig: %w", err)
	}
	if err := clientcmd.Validate(*cfg); err != nil {
		return nil, fmt.Errorf("invalid kubeconfig: %w", err)
	}
	return cfg, nil
}

// Write validates raw and writes it to path, creating parent directories.
// The file is written 0600 since kubeconfigs carry credentials.
func Write(raw []byte, path string) error {
	if _, err := Parse(raw); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory for %q: %w", path, err)
		}
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("writing kubeconfig %q: %w", path, err)
	}
	return nil
}

// Merge validates raw and merges its clusters, contexts and users into the
// kubeconfig at path. Entries from raw win on name collisions and raw's
// current context becomes the merged file's current context. A missing
// destination file behaves like an empty one.
func Merge(raw []byte, path string) error {
	incoming, err := Parse(raw)
	if err != nil {
		return err
	}

	existing := clientcmdapi.NewConfig()
	if data, err := os.ReadFile(path); err == nil {
		existing, err = clientcmd.Load(data)
		if err != nil {
			return fmt.Errorf("parsing existing kubeconfig %q: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("reading existing kubeconfig %q: %w", path, err)
	}

	for name, cluster := range incoming.Clusters {
		existing.Clusters[name] = cluster
	}
	for name, authInfo := range incoming.AuthInfos {
		existing.AuthInfos[name] = authInfo
	}
	for name, context := range incoming.Contexts {
		existing.Contexts[name] = context
	}
	if incoming.CurrentContext != "" {
		existing.CurrentContext = incoming.CurrentContext
	}

	if err := clientcmd.Validate(*existing); err != nil {
		return fmt.Errorf("merged kubeconfig is invalid: %w", err)
	}
	return clientcmd.WriteToFile(*existing, path)
}

// DefaultPath returns the standard kubeconfig location, honoring KUBECONFIG.
func DefaultPath() string {
	if p := os.Getenv("KUBECONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "kubeconfig"
	}
	return filepath.Join(home, ".kube", "config")
}
