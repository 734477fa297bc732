package collector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cephmedic/cephmedic/pkg/errors"
	"github.com/cephmedic/cephmedic/pkg/inventory"
)

func monInventory(hosts ...string) *inventory.Inventory {
	nodes := make([]inventory.Node, 0, len(hosts))
	for _, h := range hosts {
		nodes = append(nodes, inventory.Node{Host: h})
	}
	return &inventory.Inventory{
		Roles: []inventory.RoleGroup{{Name: "mons", Nodes: nodes}},
	}
}

func TestCollectorRun(t *testing.T) {
	mon0 := monChannel("mon0")
	mon1 := monChannel("mon1")
	dialer := &fakeDialer{channels: map[string]*fakeChannel{
		"mon0": mon0,
		"mon1": mon1,
	}}

	c, err := New(dialer)
	require.NoError(t, err)

	out, err := c.Run(context.Background(), monInventory("mon0", "mon1"))
	require.NoError(t, err)

	assert.Equal(t, OutcomeCompleted, out.Kind())
	assert.Equal(t, 2, out.Total)
	assert.Empty(t, out.Failed)
	assert.NotEmpty(t, out.RunID)

	require.NotNil(t, out.Store)
	assert.Equal(t, 2, out.Store.Len())
	assert.Equal(t, []string{"mons"}, out.Store.Roles())
	assert.Equal(t, []string{"mon0", "mon1"}, out.Store.Hosts("mons"))
	assert.Equal(t, "ceph", out.Store.ClusterName(), "name inferred from node conf files")

	nm, ok := out.Store.Node("mons", "mon0")
	require.True(t, ok)
	assert.True(t, nm.Ceph.Installed)

	assert.True(t, mon0.closed, "channels are closed when the node is done")
	assert.True(t, mon1.closed)
}

func TestCollectorRunPartialFailure(t *testing.T) {
	dialer := &fakeDialer{channels: map[string]*fakeChannel{
		"mon0": monChannel("mon0"),
	}}
	notifier := &recordingNotifier{}

	c, err := New(dialer, WithNotifier(notifier), WithWorkers(2))
	require.NoError(t, err)

	out, err := c.Run(context.Background(), monInventory("mon0", "mon1"))
	require.NoError(t, err, "one reachable node keeps the run alive")

	assert.Equal(t, OutcomeCompletedWithFailures, out.Kind())
	require.Len(t, out.Failed, 1)
	assert.Equal(t, "mon1", out.Failed[0].Host)
	assert.Equal(t, "mons", out.Failed[0].Role)
	assert.NotEmpty(t, out.Failed[0].Reason)
	assert.Equal(t, []string{"mon1"}, out.FailedHosts())

	assert.Equal(t, 1, out.Store.Len())
	_, ok := out.Store.Node("mons", "mon1")
	assert.False(t, ok, "failed nodes leave no partial record")

	assert.True(t, notifier.has("mon1/connecting/pending"))
	assert.True(t, notifier.has("mon1/connecting/failure"))
	assert.True(t, notifier.has("mon0/connecting/success"))
}

func TestCollectorRunAllUnreachable(t *testing.T) {
	c, err := New(&fakeDialer{channels: map[string]*fakeChannel{}})
	require.NoError(t, err)

	out, err := c.Run(context.Background(), monInventory("mon0", "mon1"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAllNodesUnreachable))

	require.NotNil(t, out, "the outcome still reports per-node reasons")
	assert.Equal(t, OutcomeAllNodesUnreachable, out.Kind())
	assert.Len(t, out.Failed, 2)
	assert.Zero(t, out.Store.Len())
}

func TestCollectorRunCancelled(t *testing.T) {
	dialer := &fakeDialer{channels: map[string]*fakeChannel{
		"mon0": monChannel("mon0"),
		"mon1": monChannel("mon1"),
	}}
	c, err := New(dialer)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := c.Run(ctx, monInventory("mon0", "mon1"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeRunCancelled),
		"an interrupted run must not classify as a dead cluster")
	assert.False(t, errors.HasCode(err, errors.ErrCodeAllNodesUnreachable))
	require.NotNil(t, out)
}

func TestCollectorRunEmptyInventory(t *testing.T) {
	c, err := New(&fakeDialer{})
	require.NoError(t, err)

	_, err = c.Run(context.Background(), &inventory.Inventory{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInventory))
}

func TestCollectorClusterNameOverride(t *testing.T) {
	dialer := &fakeDialer{channels: map[string]*fakeChannel{
		"mon0": monChannel("mon0"),
	}}

	c, err := New(dialer, WithClusterName("prod"))
	require.NoError(t, err)

	out, err := c.Run(context.Background(), monInventory("mon0"))
	require.NoError(t, err)
	assert.Equal(t, "prod", out.Store.ClusterName(),
		"inferred names never override the configured one")
}

func TestNewRequiresDialer(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}
