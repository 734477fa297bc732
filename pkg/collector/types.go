package collector

import (
	"log/slog"
	"time"

	"github.com/cephmedic/cephmedic/pkg/metadata"
)

// Phase identifies a collection step for the progress stream.
type Phase string

const (
	PhaseConnecting Phase = "connecting"
	PhasePaths      Phase = "paths"
	PhaseNetwork    Phase = "network"
	PhaseDevices    Phase = "devices"
	PhaseCeph       Phase = "ceph"
)

// Status is the progress state of one phase on one host.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Notifier receives one progress notification per node per collection phase.
// Notifications are purely observational; the terminal renderer consumes
// them, the engine never reads them back. Implementations must be safe for
// concurrent use when the collector runs with more than one worker.
type Notifier interface {
	Notify(host string, phase Phase, status Status)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(host string, phase Phase, status Status)

// Notify implements Notifier.
func (f NotifierFunc) Notify(host string, phase Phase, status Status) {
	f(host, phase, status)
}

// slogNotifier is the default progress sink when no renderer is attached.
func slogNotifier() Notifier {
	return NotifierFunc(func(host string, phase Phase, status Status) {
		slog.Debug("collection progress",
			"host", host,
			"phase", string(phase),
			"status", string(status))
	})
}

// OutcomeKind classifies how a collection run ended.
type OutcomeKind string

const (
	// OutcomeCompleted means every node was collected.
	OutcomeCompleted OutcomeKind = "completed"
	// OutcomeCompletedWithFailures means at least one node was collected
	// and at least one failed; failed nodes are simply absent from the
	// store.
	OutcomeCompletedWithFailures OutcomeKind = "completed_with_failures"
	// OutcomeAllNodesUnreachable means no node could be collected. Fatal:
	// no checks can run.
	OutcomeAllNodesUnreachable OutcomeKind = "all_nodes_unreachable"
)

// NodeFailure records one node that could not be collected.
type NodeFailure struct {
	Role string `json:"role" yaml:"role"`
	Host string `json:"host" yaml:"host"`
	// Reason is the failure as shown to operators.
	Reason string `json:"reason" yaml:"reason"`
}

// Outcome is the aggregate result of one collection run.
type Outcome struct {
	RunID    string          `json:"run_id" yaml:"run_id"`
	Store    *metadata.Store `json:"-" yaml:"-"`
	Total    int             `json:"total" yaml:"total"`
	Failed   []NodeFailure   `json:"failed,omitempty" yaml:"failed,omitempty"`
	Duration time.Duration   `json:"duration" yaml:"duration"`
}

// Kind classifies the outcome.
func (o *Outcome) Kind() OutcomeKind {
	switch {
	case o.Total > 0 && len(o.Failed) == o.Total:
		return OutcomeAllNodesUnreachable
	case len(o.Failed) > 0:
		return OutcomeCompletedWithFailures
	default:
		return OutcomeCompleted
	}
}

// FailedHosts returns the hosts that could not be collected.
func (o *Outcome) FailedHosts() []string {
	hosts := make([]string, 0, len(o.Failed))
	for _, f := range o.Failed {
		hosts = append(hosts, f.Host)
	}
	return hosts
}
