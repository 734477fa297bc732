package collector

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/cephmedic/cephmedic/pkg/defaults"
	"github.com/cephmedic/cephmedic/pkg/errors"
	"github.com/cephmedic/cephmedic/pkg/inventory"
	"github.com/cephmedic/cephmedic/pkg/metadata"
	"github.com/cephmedic/cephmedic/pkg/remote"
)

// Collector runs a full cluster collection: one channel per node, a bounded
// worker pool, and a shared store that only ever receives complete node
// records.
type Collector struct {
	dialer   remote.Dialer
	builder  Builder
	notifier Notifier
	workers  int
	limiter  *rate.Limiter

	// clusterName, when set, overrides the name inferred from node conf
	// files.
	clusterName string
}

// Option mutates a Collector during construction.
type Option func(*Collector)

// WithBuilder overrides the default node builder.
func WithBuilder(b Builder) Option {
	return func(c *Collector) {
		if b != nil {
			c.builder = b
		}
	}
}

// WithNotifier attaches a progress sink.
func WithNotifier(n Notifier) Option {
	return func(c *Collector) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithWorkers bounds the number of nodes collected concurrently.
func WithWorkers(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithDialPacing replaces the default dial rate limit.
func WithDialPacing(l *rate.Limiter) Option {
	return func(c *Collector) {
		if l != nil {
			c.limiter = l
		}
	}
}

// WithClusterName pins the cluster name instead of inferring it.
func WithClusterName(name string) Option {
	return func(c *Collector) {
		c.clusterName = name
	}
}

// New creates a Collector around the given dialer.
func New(dialer remote.Dialer, opts ...Option) (*Collector, error) {
	if dialer == nil {
		return nil, errors.New(errors.ErrCodeInternal, "dialer is required")
	}

	c := &Collector{
		dialer:   dialer,
		notifier: slogNotifier(),
		workers:  defaults.Workers,
		limiter:  rate.NewLimiter(rate.Every(defaults.DialInterval), defaults.DialBurst),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.builder == nil {
		c.builder = NewNodeBuilder(WithBuildNotifier(c.notifier))
	}
	return c, nil
}

// Run collects every node in the inventory. Individual node failures do not
// stop the run; the failed nodes are listed on the outcome and absent from
// the store. When every node fails, Run returns both the outcome and an
// ALL_NODES_UNREACHABLE error so callers can stop before running checks.
func (c *Collector) Run(ctx context.Context, inv *inventory.Inventory) (*Outcome, error) {
	if inv == nil || inv.Total() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInventory, "inventory has no nodes")
	}

	runID := uuid.NewString()
	store := metadata.NewStore(runID)
	// The store keeps the first non-empty name, so a configured name must
	// land before any worker can commit an inferred one.
	store.SetClusterName(c.clusterName)
	start := time.Now()

	slog.Info("starting collection run",
		"run_id", runID,
		"nodes", inv.Total(),
		"workers", c.workers)

	var (
		mu       sync.Mutex
		failures []NodeFailure
	)

	g := &errgroup.Group{}
	g.SetLimit(c.workers)

	for _, rg := range inv.Roles {
		for _, n := range rg.Nodes {
			role, node := rg.Name, n
			g.Go(func() error {
				if err := c.collectNode(ctx, store, role, node); err != nil {
					mu.Lock()
					failures = append(failures, NodeFailure{
						Role:   role,
						Host:   node.Host,
						Reason: err.Error(),
					})
					mu.Unlock()
					nodeOutcomes.WithLabelValues("failure").Inc()
					return nil
				}
				nodeOutcomes.WithLabelValues("success").Inc()
				return nil
			})
		}
	}

	// workers never return errors, Wait only joins them
	_ = g.Wait()

	store.Finish()

	out := &Outcome{
		RunID:    runID,
		Store:    store,
		Total:    inv.Total(),
		Failed:   failures,
		Duration: time.Since(start),
	}

	runDuration.Observe(out.Duration.Seconds())
	collectedNodes.Set(float64(store.Len()))

	slog.Info("collection run finished",
		"run_id", runID,
		"outcome", string(out.Kind()),
		"collected", store.Len(),
		"failed", len(failures),
		"duration", out.Duration.String())

	// A cancelled run is reported as such; its per-node failures say nothing
	// about the cluster's reachability.
	if cerr := ctx.Err(); cerr != nil {
		return out, errors.WrapWithContext(errors.ErrCodeRunCancelled,
			"collection run cancelled", cerr,
			map[string]any{"run_id": runID, "collected": store.Len()})
	}

	if out.Kind() == OutcomeAllNodesUnreachable {
		return out, errors.NewWithContext(errors.ErrCodeAllNodesUnreachable,
			"no node could be collected",
			map[string]any{"run_id": runID, "nodes": inv.Total()})
	}
	return out, nil
}

// collectNode dials one node, builds its metadata, and commits the result.
// The commit happens only after a fully successful build, so a cancelled or
// failed node leaves no partial record behind.
func (c *Collector) collectNode(ctx context.Context, store *metadata.Store, role string, node inventory.Node) error {
	start := time.Now()
	defer func() {
		nodeDuration.Observe(time.Since(start).Seconds())
	}()

	c.notifier.Notify(node.Host, PhaseConnecting, StatusPending)

	if err := c.limiter.Wait(ctx); err != nil {
		c.notifier.Notify(node.Host, PhaseConnecting, StatusFailure)
		return err
	}

	ch, err := c.dialer.Dial(ctx, remote.Target{
		Host: node.Host,
		User: node.User,
		Port: node.Port,
	})
	if err != nil {
		c.notifier.Notify(node.Host, PhaseConnecting, StatusFailure)
		slog.Warn("node unreachable", "host", node.Host, "role", role, "error", err.Error())
		return err
	}
	defer closeChannel(ch, node.Host)
	c.notifier.Notify(node.Host, PhaseConnecting, StatusSuccess)

	md, err := c.builder.Build(ctx, ch)
	if err != nil {
		slog.Warn("node collection failed", "host", node.Host, "role", role, "error", err.Error())
		return err
	}

	if name := md.Ceph.ClusterConfName; name != "" {
		store.SetClusterName(name)
	}
	return store.Commit(role, node.Host, md)
}

// closeChannel tears the channel down with a bound, so a wedged peer cannot
// stall the worker that owns it.
func closeChannel(ch remote.Channel, host string) {
	done := make(chan error, 1)
	go func() { done <- ch.Close() }()
	select {
	case err := <-done:
		if err != nil {
			slog.Debug("channel close failed", "host", host, "error", err.Error())
		}
	case <-time.After(defaults.CloseTimeout):
		slog.Debug("channel close timed out", "host", host)
	}
}
