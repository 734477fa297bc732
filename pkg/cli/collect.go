package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cephmedic/cephmedic/pkg/collector"
	"github.com/cephmedic/cephmedic/pkg/defaults"
	"github.com/cephmedic/cephmedic/pkg/inventory"
	"github.com/cephmedic/cephmedic/pkg/remote"
	"github.com/cephmedic/cephmedic/pkg/serializer"
)

var (
	inventoryPath string
	sshUser       string
	sshKey        string
	knownHosts    string
	strictHostKey bool
	workers       int
	clusterName   string
	runTimeout    time.Duration
	localMode     bool

	output      string
	format      string
	metricsFile string
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect metadata from every node in the inventory",
	Long: `Connect to every node in the inventory, capture the state of the ceph
paths of interest (/etc/ceph, /var/lib/ceph, /var/run/ceph), and write the
aggregate cluster snapshot.

Unreachable nodes do not stop the run; they are reported and left out of the
snapshot. The command fails only when no node at all could be collected.

Examples:

  Collect over SSH with an explicit key:
    cephmedic collect --inventory hosts.yaml --ssh-user cephadm --ssh-key ~/.ssh/id_ed25519

  Collect from the local machine only:
    cephmedic collect --inventory hosts.yaml --local

  Write the snapshot to a file as YAML:
    cephmedic collect -i hosts.yaml -o snapshot.yaml -f yaml`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		outcome, err := runCollection(cmd.Context())
		if err != nil {
			return err
		}
		return writeResult(cmd.Context(), map[string]any{
			"outcome":  outcome.Kind(),
			"failed":   outcome.Failed,
			"snapshot": outcome.Store.Export(),
		})
	},
}

func init() {
	rootCmd.AddCommand(collectCmd)
	addCollectionFlags(collectCmd)
}

func addCollectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&inventoryPath, "inventory", "i", "", "inventory file mapping roles to node lists (required)")
	_ = cmd.MarkFlagRequired("inventory")

	cmd.Flags().StringVar(&sshUser, "ssh-user", "", "SSH login user (default: current user)")
	cmd.Flags().StringVar(&sshKey, "ssh-key", "", "SSH private key file")
	cmd.Flags().StringVar(&knownHosts, "known-hosts", "", "known_hosts file for host key verification")
	cmd.Flags().BoolVar(&strictHostKey, "strict-host-key", false, "fail when the peer host key cannot be verified")
	cmd.Flags().IntVar(&workers, "workers", defaults.Workers, "number of nodes collected concurrently")
	cmd.Flags().StringVar(&clusterName, "cluster-name", "", "cluster name (default: inferred from node conf files)")
	cmd.Flags().DurationVar(&runTimeout, "timeout", defaults.RunTimeout, "overall run time limit")
	cmd.Flags().BoolVar(&localMode, "local", false, "collect from the local machine instead of dialing SSH")

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", string(serializer.FormatJSON),
		fmt.Sprintf("output format, one of %v", serializer.SupportedFormats()))
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write run metrics to this file in Prometheus text format")

	_ = viper.BindPFlag("ssh-user", cmd.Flags().Lookup("ssh-user"))
	_ = viper.BindPFlag("ssh-key", cmd.Flags().Lookup("ssh-key"))
}

// runCollection builds the collector from the parsed flags and runs it over
// the inventory.
func runCollection(ctx context.Context) (*collector.Outcome, error) {
	inv, err := inventory.Load(inventoryPath)
	if err != nil {
		return nil, err
	}

	var dialer remote.Dialer
	if localMode {
		dialer = remote.LocalDialer{}
	} else {
		dialer = remote.NewSSHDialer(remote.SSHConfig{
			User:           stringOr(viper.GetString("ssh-user"), sshUser),
			KeyPath:        stringOr(viper.GetString("ssh-key"), sshKey),
			KnownHostsPath: knownHosts,
			StrictHostKey:  strictHostKey,
		})
	}

	c, err := collector.New(dialer,
		collector.WithWorkers(workers),
		collector.WithClusterName(clusterName),
		collector.WithNotifier(terminalNotifier()),
	)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	outcome, runErr := c.Run(ctx, inv)
	if outcome != nil {
		dumpMetrics()
	}
	return outcome, runErr
}

// dumpMetrics writes the run metrics to the configured file, when requested.
// The run outcome never depends on the metrics artifact.
func dumpMetrics() {
	if metricsFile == "" {
		return
	}
	f, err := os.Create(metricsFile)
	if err != nil {
		slog.Error("failed to create metrics file", "path", metricsFile, "error", err.Error())
		return
	}
	defer f.Close()
	if err := collector.WriteMetrics(f); err != nil {
		slog.Error("failed to write metrics", "path", metricsFile, "error", err.Error())
	}
}

// writeResult serializes v to the configured output destination.
func writeResult(ctx context.Context, v any) error {
	w := serializer.NewFileWriterOrStdout(serializer.Format(format), output)
	defer w.Close()
	return w.Serialize(ctx, v)
}

// terminalNotifier renders connection progress on stderr, one line per host
// transition, matching the operator-facing progress of an interactive run.
func terminalNotifier() collector.Notifier {
	return collector.NotifierFunc(func(host string, phase collector.Phase, status collector.Status) {
		if phase != collector.PhaseConnecting || status == collector.StatusPending {
			return
		}
		mark := "ok"
		if status == collector.StatusFailure {
			mark = "failed"
		}
		fmt.Fprintf(os.Stderr, "--> %s connecting: %s\n", host, mark)
	})
}

func stringOr(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
