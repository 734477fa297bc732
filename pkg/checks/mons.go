package checks

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cephmedic/cephmedic/pkg/metadata"
)

const monRole = "mons"

// GetSecret extracts the monitor secret key from the node's keyring files
// under /var/lib/ceph. Returns the empty string when no key can be found.
func GetSecret(nm *metadata.NodeMetadata) string {
	pm := nm.Path("/var/lib/ceph")
	if pm == nil {
		return ""
	}
	for p, entry := range pm.Files {
		if !strings.Contains(p, "/mon/") || !strings.HasSuffix(p, "keyring") {
			continue
		}
		if secret := parseSecret(entry.Contents); secret != "" {
			return secret
		}
	}
	return ""
}

// parseSecret pulls the value of the first "key = ..." line out of a keyring
// document.
func parseSecret(contents string) string {
	for _, line := range strings.Split(contents, "\n") {
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if strings.TrimSpace(k) == "key" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// GetMonitorDirs returns the monitor data directory names found among the
// collected directory paths, i.e. the first path segment below
// /var/lib/ceph/mon.
func GetMonitorDirs(paths []string) map[string]struct{} {
	const prefix = "/var/lib/ceph/mon/"
	dirs := map[string]struct{}{}
	for _, p := range paths {
		rest, ok := strings.CutPrefix(p, prefix)
		if !ok {
			continue
		}
		if name, _, _ := strings.Cut(rest, "/"); name != "" {
			dirs[name] = struct{}{}
		}
	}
	return dirs
}

// CheckMonSecretParity reports EMON1 on every monitor whose secret key
// differs from the other monitors. A cluster with a single secret across
// all mons is healthy; monitors without a readable keyring are unknown and
// skipped.
func CheckMonSecretParity(store *metadata.Store) []Finding {
	secrets := map[string][]string{}
	for _, host := range store.Hosts(monRole) {
		nm, ok := store.Node(monRole, host)
		if !ok {
			continue
		}
		if secret := GetSecret(nm); secret != "" {
			secrets[secret] = append(secrets[secret], host)
		}
	}
	if len(secrets) <= 1 {
		return nil
	}

	var findings []Finding
	for secret, hosts := range secrets {
		for _, host := range hosts {
			findings = append(findings, Finding{
				Code:     "EMON1",
				Severity: SeverityError,
				Role:     monRole,
				Host:     host,
				Message:  fmt.Sprintf("monitor secret key does not match the other monitors: %s", redactSecret(secret)),
			})
		}
	}
	sort.Slice(findings, func(i, j int) bool { return findings[i].Host < findings[j].Host })
	return findings
}

// CheckMonDirCount reports WMON1 on every monitor host carrying more than
// one monitor data directory.
func CheckMonDirCount(store *metadata.Store) []Finding {
	var findings []Finding
	for _, host := range store.Hosts(monRole) {
		nm, ok := store.Node(monRole, host)
		if !ok {
			continue
		}
		dirs := GetMonitorDirs(nm.DirPaths())
		if len(dirs) <= 1 {
			continue
		}
		names := make([]string, 0, len(dirs))
		for d := range dirs {
			names = append(names, d)
		}
		sort.Strings(names)
		findings = append(findings, Finding{
			Code:     "WMON1",
			Severity: SeverityWarning,
			Role:     monRole,
			Host:     host,
			Message:  fmt.Sprintf("multiple monitor directories found: %s", strings.Join(names, ", ")),
		})
	}
	return findings
}

// redactSecret keeps enough of a key to correlate findings without logging
// the full credential.
func redactSecret(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "****" + secret[len(secret)-4:]
}
