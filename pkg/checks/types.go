package checks

import (
	"sort"

	"github.com/cephmedic/cephmedic/pkg/metadata"
)

// Severity ranks a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one problem detected in the collected cluster metadata.
type Finding struct {
	// Code is the stable finding identifier, e.g. ECOM1 or WMON1. E codes
	// are errors, W codes are warnings.
	Code     string   `json:"code" yaml:"code"`
	Severity Severity `json:"severity" yaml:"severity"`
	Role     string   `json:"role,omitempty" yaml:"role,omitempty"`
	Host     string   `json:"host,omitempty" yaml:"host,omitempty"`
	Message  string   `json:"message" yaml:"message"`
}

// Check inspects a completed store and reports findings. Checks never
// mutate the store and must treat missing nodes or paths as unknown rather
// than as failures.
type Check func(store *metadata.Store) []Finding

// Run executes all registered checks against the store and returns the
// combined findings sorted by code, then host.
func Run(store *metadata.Store) []Finding {
	var findings []Finding
	for _, c := range All() {
		findings = append(findings, c(store)...)
	}
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Code != findings[j].Code {
			return findings[i].Code < findings[j].Code
		}
		return findings[i].Host < findings[j].Host
	})
	return findings
}

// All returns the registered checks in execution order.
func All() []Check {
	return []Check{
		CheckConfPresent,
		CheckCephInstalled,
		CheckVersionParity,
		CheckMonSecretParity,
		CheckMonDirCount,
	}
}
