package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cephmedic/cephmedic/pkg/logging"
)

const (
	name           = "cephmedic"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"

	cfgFile  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   name,
	Short: "cephmedic - ceph cluster diagnostics",
	Long: fmt.Sprintf(`cephmedic - ceph cluster diagnostics

Version: %s
Commit:  %s
Built:   %s

Collects filesystem and runtime metadata from every node of a ceph cluster
over SSH and evaluates it against known failure patterns:

collect - connects to every node in the inventory, captures the state of the
          ceph paths of interest, and writes the aggregate snapshot.
check   - runs collection and then evaluates the built-in checks against it.`,
		version, commit, date),
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once from main.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down gracefully...")
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.cephmedic.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)

		// Fail fast if user-specified config doesn't exist
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", cfgFile, err)
			os.Exit(1)
		}
		return
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}

	viper.AddConfigPath(home)
	viper.AddConfigPath(".")
	viper.SetConfigType("yaml")
	viper.SetConfigName(".cephmedic")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("CEPHMEDIC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	_ = viper.ReadInConfig()
}

// initLogger configures slog after Cobra parses flags/config so overrides
// like --log-level take effect before any command executes.
func initLogger() {
	logging.SetDefaultStructuredLoggerWithLevel(name, version, logLevel)
	slog.Debug("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
		"logLevel", logLevel)
}
