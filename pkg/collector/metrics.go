package collector

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

var (
	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cephmedic_run_duration_seconds",
		Help:    "Duration of full collection runs.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
	})

	nodeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cephmedic_node_duration_seconds",
		Help:    "Duration of per-node collection.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	nodeOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cephmedic_node_outcomes_total",
		Help: "Per-node collection outcomes.",
	}, []string{"status"})

	collectedNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cephmedic_collected_nodes",
		Help: "Nodes collected in the most recent run.",
	})
)

// WriteMetrics dumps the current state of the process metrics to w in the
// Prometheus text exposition format. The process is run-scoped, so metrics
// are exported as a post-run artifact rather than scraped.
func WriteMetrics(w io.Writer) error {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode metric family %q: %w", mf.GetName(), err)
		}
	}
	return nil
}
