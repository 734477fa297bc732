package metadata

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Store is the run-scoped cluster metadata snapshot, keyed by role group then
// host. It is populated incrementally and monotonically during a collection
// run: a (role, host) pair is committed at most once, and writes finish
// before any reader is handed the store. A new run gets a new Store.
type Store struct {
	mu sync.RWMutex

	runID       string
	startedAt   time.Time
	finishedAt  time.Time
	clusterName string
	nodes       map[string]map[string]*NodeMetadata
}

// NewStore creates an empty store for one collection run.
func NewStore(runID string) *Store {
	return &Store{
		runID:     runID,
		startedAt: time.Now().UTC(),
		nodes:     make(map[string]map[string]*NodeMetadata),
	}
}

// RunID returns the identity of the run that owns this store.
func (s *Store) RunID() string { return s.runID }

// Commit records node metadata under (role, host). Committing the same pair
// twice in one run is a programming error and is rejected.
func (s *Store) Commit(role, host string, nm *NodeMetadata) error {
	if nm == nil {
		return fmt.Errorf("nil metadata for %s/%s", role, host)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	hosts, ok := s.nodes[role]
	if !ok {
		hosts = make(map[string]*NodeMetadata)
		s.nodes[role] = hosts
	}
	if _, exists := hosts[host]; exists {
		return fmt.Errorf("metadata for %s/%s already committed", role, host)
	}
	hosts[host] = nm
	return nil
}

// SetClusterName records the cluster name; the first non-empty value wins.
func (s *Store) SetClusterName(name string) {
	if name == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clusterName == "" {
		s.clusterName = name
	}
}

// ClusterName returns the recorded cluster name, if any.
func (s *Store) ClusterName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clusterName
}

// Finish stamps the store as complete. Readers should only be handed the
// store after Finish.
func (s *Store) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishedAt = time.Now().UTC()
}

// Node returns the metadata committed for (role, host), or false when the
// node was unreachable or never attempted. Checks must treat a missing node
// as unknown, not as an error.
func (s *Store) Node(role, host string) (*NodeMetadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	nm, ok := s.nodes[role][host]
	return nm, ok
}

// Roles returns the role groups with at least one committed node, sorted.
func (s *Store) Roles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	roles := make([]string, 0, len(s.nodes))
	for r := range s.nodes {
		roles = append(roles, r)
	}
	sort.Strings(roles)
	return roles
}

// Hosts returns the hosts committed under a role, sorted.
func (s *Store) Hosts(role string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hosts := make([]string, 0, len(s.nodes[role]))
	for h := range s.nodes[role] {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}

// Len returns the number of committed nodes across all roles.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, hosts := range s.nodes {
		n += len(hosts)
	}
	return n
}

// Snapshot is the serializable form of a completed store.
type Snapshot struct {
	RunID       string                              `json:"run_id" yaml:"run_id"`
	ClusterName string                              `json:"cluster_name,omitempty" yaml:"cluster_name,omitempty"`
	StartedAt   time.Time                           `json:"started_at" yaml:"started_at"`
	FinishedAt  time.Time                           `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Nodes       map[string]map[string]*NodeMetadata `json:"nodes" yaml:"nodes"`
}

// Export returns a serializable snapshot of the store. The node metadata is
// shared, not copied; callers must only export after the run completes.
func (s *Store) Export() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	nodes := make(map[string]map[string]*NodeMetadata, len(s.nodes))
	for role, hosts := range s.nodes {
		m := make(map[string]*NodeMetadata, len(hosts))
		for h, nm := range hosts {
			m[h] = nm
		}
		nodes[role] = m
	}
	return &Snapshot{
		RunID:       s.runID,
		ClusterName: s.clusterName,
		StartedAt:   s.startedAt,
		FinishedAt:  s.finishedAt,
		Nodes:       nodes,
	}
}
