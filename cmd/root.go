package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/coreplane-io/coreplane/internal/config"
	"github.com/coreplane-io/coreplane/internal/logging"
	"github.com/coreplane-io/coreplane/internal/platform"
)

var (
	flagConfigFile string
	flagProfile    string
	flagLogLevel   string
)

// rootCmd is the base command; every resource hangs off it as a subcommand.
var rootCmd = &cobra.Command{
	Use:   "coreplane",
	Short: "CLI for the coreplane container-platform controller",
	Long: `coreplane manages a container-platform controller through its REST API:
kubernetes clusters and their hosts, gateways, tenants, users, roles,
locks, licenses and catalog images.

Connection settings are read from ~/.coreplane/config.yaml; use --profile
to select a profile section and COREPLANE_* environment variables to
override individual values.`,
	// SilenceUsage keeps runtime errors from dumping the usage text; the
	// one-line error on stderr is enough.
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(flagLogLevel)
	},
}

// getClient builds a logged-in API client for a command. Declared as a
// variable so tests can inject a client bound to a fake server.
var getClient = func(cmd *cobra.Command) (*platform.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	client, err := platform.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := client.Login(cmd.Context()); err != nil {
		return nil, err
	}
	slog.Debug("client ready", logging.Profile(cfg.Profile))
	return client, nil
}

func loadConfig() (*config.Config, error) {
	path := flagConfigFile
	if path == "" {
		path = config.DefaultPath()
	}
	profile := flagProfile
	if profile == "" {
		profile = config.DefaultProfile()
	}
	return config.Load(path, profile)
}

// SetVersion sets the version shown by `coreplane version` and --version.
// Called from main with the build-time value.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the CLI and exits non-zero on error. Cobra prints the error
// itself.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "coreplane version %s\n" .Version}}`)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "",
		fmt.Sprintf("config file (default %s)", config.DefaultPath()))
	rootCmd.PersistentFlags().StringVar(&flagProfile, "profile", "",
		"config profile to use (default \"default\")")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn",
		"log level: debug, info, warn or error")

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newK8sClusterCmd())
	rootCmd.AddCommand(newK8sWorkerCmd())
	rootCmd.AddCommand(newGatewayCmd())
	rootCmd.AddCommand(newTenantCmd())
	rootCmd.AddCommand(newUserCmd())
	rootCmd.AddCommand(newRoleCmd())
	rootCmd.AddCommand(newLockCmd())
	rootCmd.AddCommand(newLicenseCmd())
	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newHTTPClientCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
