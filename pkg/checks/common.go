package checks

import (
	"fmt"
	"path"
	"strings"

	"github.com/cephmedic/cephmedic/pkg/metadata"
)

// CheckConfPresent reports ECOM1 for every node without a configuration
// file under /etc/ceph.
func CheckConfPresent(store *metadata.Store) []Finding {
	var findings []Finding
	forEachNode(store, func(role, host string, nm *metadata.NodeMetadata) {
		pm := nm.Path("/etc/ceph")
		if pm != nil {
			for p := range pm.Files {
				if strings.HasSuffix(path.Base(p), ".conf") {
					return
				}
			}
		}
		findings = append(findings, Finding{
			Code:     "ECOM1",
			Severity: SeverityError,
			Role:     role,
			Host:     host,
			Message:  "no ceph configuration file found under /etc/ceph",
		})
	})
	return findings
}

// CheckCephInstalled reports ECOM2 for every node without a ceph executable.
func CheckCephInstalled(store *metadata.Store) []Finding {
	var findings []Finding
	forEachNode(store, func(role, host string, nm *metadata.NodeMetadata) {
		if nm.Ceph.Installed {
			return
		}
		findings = append(findings, Finding{
			Code:     "ECOM2",
			Severity: SeverityError,
			Role:     role,
			Host:     host,
			Message:  "ceph executable not found",
		})
	})
	return findings
}

// CheckVersionParity reports ECOM5 on every node whose installed ceph
// version differs from the rest of the cluster.
func CheckVersionParity(store *metadata.Store) []Finding {
	banners := map[string][]string{}
	forEachNode(store, func(role, host string, nm *metadata.NodeMetadata) {
		if nm.Ceph.Banner == "" {
			return
		}
		banners[nm.Ceph.Banner] = append(banners[nm.Ceph.Banner], host)
	})
	if len(banners) <= 1 {
		return nil
	}

	var findings []Finding
	forEachNode(store, func(role, host string, nm *metadata.NodeMetadata) {
		if nm.Ceph.Banner == "" {
			return
		}
		findings = append(findings, Finding{
			Code:     "ECOM5",
			Severity: SeverityError,
			Role:     role,
			Host:     host,
			Message:  fmt.Sprintf("ceph version differs across the cluster: %s", nm.Ceph.Banner),
		})
	})
	return findings
}

// forEachNode visits every committed node in deterministic role, host order.
func forEachNode(store *metadata.Store, fn func(role, host string, nm *metadata.NodeMetadata)) {
	for _, role := range store.Roles() {
		for _, host := range store.Hosts(role) {
			if nm, ok := store.Node(role, host); ok {
				fn(role, host, nm)
			}
		}
	}
}
