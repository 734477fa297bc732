package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cephmedic/cephmedic/pkg/metadata"
)

func nodeWithKeyring(contents string) *metadata.NodeMetadata {
	nm := metadata.NewNodeMetadata()
	pm := metadata.NewPathMetadata()
	pm.Files["/var/lib/ceph/mon/ceph-mon-0/keyring"] = &metadata.FileEntry{
		Contents: contents,
		Captured: true,
	}
	nm.Paths["/var/lib/ceph"] = pm
	return nm
}

func TestGetSecret(t *testing.T) {
	contents := "\n[mon.]\n    key = AQBvaBFZAAAAABAA9VHgwCg3rWn8fMaX8KL01A==\n        caps mon = \"allow *\"\n"
	secret := GetSecret(nodeWithKeyring(contents))
	assert.Equal(t, "AQBvaBFZAAAAABAA9VHgwCg3rWn8fMaX8KL01A==", secret)
}

func TestGetSecretEmptyFile(t *testing.T) {
	assert.Empty(t, GetSecret(nodeWithKeyring("")))
}

func TestGetSecretNoKeyLine(t *testing.T) {
	contents := "\n[mon.]\n    caps mon = \"allow *\"\n"
	assert.Empty(t, GetSecret(nodeWithKeyring(contents)))
}

func TestGetSecretNoLibPath(t *testing.T) {
	assert.Empty(t, GetSecret(metadata.NewNodeMetadata()))
}

func TestGetMonitorDirs(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{
			"single",
			[]string{"/var/lib/ceph/mon/ceph-mon-1", "/var/lib/ceph/something"},
			[]string{"ceph-mon-1"},
		},
		{
			"none",
			[]string{"/var/lib/ceph/osd/ceph-osd-1", "/var/lib/ceph/something"},
			nil,
		},
		{
			"multiple",
			[]string{
				"/var/lib/ceph/mon/ceph-mon-1",
				"/var/lib/ceph/mon/ceph-mon-3",
				"/var/lib/ceph/mon/ceph-mon-2",
				"/var/lib/ceph/something",
			},
			[]string{"ceph-mon-1", "ceph-mon-2", "ceph-mon-3"},
		},
		{
			"nested collapse to the top segment",
			[]string{
				"/var/lib/ceph/mon/ceph-mon-1",
				"/var/lib/ceph/mon/ceph-mon-1/nested/dir",
				"/var/lib/ceph/mon/ceph-mon-1/other/nested",
				"/var/lib/ceph/mon/ceph-mon-2",
				"/var/lib/ceph/something",
			},
			[]string{"ceph-mon-1", "ceph-mon-2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetMonitorDirs(tt.paths)
			assert.Len(t, got, len(tt.want))
			for _, name := range tt.want {
				assert.Contains(t, got, name)
			}
		})
	}
}

func monStore(t *testing.T, secrets map[string]string) *metadata.Store {
	t.Helper()
	store := metadata.NewStore("test")
	for host, secret := range secrets {
		keyring := ""
		if secret != "" {
			keyring = "[mon.]\n\tkey = " + secret + "\n"
		}
		require.NoError(t, store.Commit(monRole, host, nodeWithKeyring(keyring)))
	}
	store.Finish()
	return store
}

func TestCheckMonSecretParityHealthy(t *testing.T) {
	store := monStore(t, map[string]string{
		"mon0": "AQBvaBFZAAAAABAA9VHgwCg3rWn8fMaX8KL01A==",
		"mon1": "AQBvaBFZAAAAABAA9VHgwCg3rWn8fMaX8KL01A==",
	})
	assert.Empty(t, CheckMonSecretParity(store))
}

func TestCheckMonSecretParityMismatch(t *testing.T) {
	store := monStore(t, map[string]string{
		"mon0": "AQBvaBFZAAAAABAA9VHgwCg3rWn8fMaX8KL01A==",
		"mon1": "AQBvaBFZAAAAABAA9VHgwCg3rWn8fMaX8KL02B==",
	})

	findings := CheckMonSecretParity(store)
	require.Len(t, findings, 2)
	for _, f := range findings {
		assert.Equal(t, "EMON1", f.Code)
		assert.Equal(t, SeverityError, f.Severity)
		assert.NotContains(t, f.Message, "AQBvaBFZAAAAABAA9VHgwCg3rWn8fMaX8KL01A==",
			"full secrets never appear in findings")
	}
}

func TestCheckMonSecretParityUnknownSkipped(t *testing.T) {
	store := monStore(t, map[string]string{
		"mon0": "AQBvaBFZAAAAABAA9VHgwCg3rWn8fMaX8KL01A==",
		"mon1": "",
	})
	assert.Empty(t, CheckMonSecretParity(store),
		"an unreadable keyring is unknown, not a mismatch")
}

func TestCheckMonDirCount(t *testing.T) {
	nm := metadata.NewNodeMetadata()
	pm := metadata.NewPathMetadata()
	pm.Dirs["/var/lib/ceph/mon/ceph-mon-1"] = &metadata.DirEntry{}
	pm.Dirs["/var/lib/ceph/mon/ceph-mon-9"] = &metadata.DirEntry{}
	nm.Paths["/var/lib/ceph"] = pm

	store := metadata.NewStore("test")
	require.NoError(t, store.Commit(monRole, "mon0", nm))
	store.Finish()

	findings := CheckMonDirCount(store)
	require.Len(t, findings, 1)
	assert.Equal(t, "WMON1", findings[0].Code)
	assert.Equal(t, SeverityWarning, findings[0].Severity)
	assert.Contains(t, findings[0].Message, "ceph-mon-1, ceph-mon-9")
}

func TestCheckMonDirCountSingle(t *testing.T) {
	nm := metadata.NewNodeMetadata()
	pm := metadata.NewPathMetadata()
	pm.Dirs["/var/lib/ceph/mon/ceph-mon-1"] = &metadata.DirEntry{}
	pm.Dirs["/var/lib/ceph/mon/ceph-mon-1/store"] = &metadata.DirEntry{}
	nm.Paths["/var/lib/ceph"] = pm

	store := metadata.NewStore("test")
	require.NoError(t, store.Commit(monRole, "mon0", nm))
	store.Finish()

	assert.Empty(t, CheckMonDirCount(store))
}
