package inventory

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cephmedic/cephmedic/pkg/errors"
)

// KnownRoles are the role group names the check subsystem understands.
// Unknown roles are collected anyway; they just have no checks attached.
var KnownRoles = []string{"mons", "osds", "mgrs", "mdss", "rgws", "clients"}

// Node is one machine in the cluster inventory.
type Node struct {
	Host string `yaml:"host"`
	// User optionally overrides the SSH user for this node.
	User string `yaml:"user,omitempty"`
	// Port optionally overrides the SSH port for this node.
	Port int `yaml:"port,omitempty"`
}

// RoleGroup is an ordered list of nodes under one role name.
type RoleGroup struct {
	Name  string
	Nodes []Node
}

// Inventory is the role-grouped node list driving a collection run. Role
// order follows the document order of the source file, so runs over the same
// inventory visit nodes in a stable order.
type Inventory struct {
	Roles []RoleGroup
}

// Total returns the number of nodes across all role groups.
func (inv *Inventory) Total() int {
	n := 0
	for _, rg := range inv.Roles {
		n += len(rg.Nodes)
	}
	return n
}

// Role returns the group with the given name, or nil.
func (inv *Inventory) Role(name string) *RoleGroup {
	for i := range inv.Roles {
		if inv.Roles[i].Name == name {
			return &inv.Roles[i]
		}
	}
	return nil
}

// Load reads and parses an inventory file.
func Load(path string) (*Inventory, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInventory,
			fmt.Sprintf("failed to read inventory %q", path), err)
	}
	return Parse(b)
}

// Parse parses a YAML inventory document of the form:
//
//	mons:
//	  - host: mon0
//	  - host: mon1
//	osds:
//	  - host: osd0
//	    user: cephadm
//
// Document order of the role keys is preserved.
func Parse(b []byte) (*Inventory, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInventory, "failed to parse inventory", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInventory, "inventory is empty")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New(errors.ErrCodeInvalidInventory, "inventory must be a mapping of role to node list")
	}

	inv := &Inventory{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode := root.Content[i]
		valNode := root.Content[i+1]

		role := keyNode.Value
		if !isKnownRole(role) {
			slog.Warn("unknown role in inventory, collecting anyway", "role", role)
		}

		var nodes []Node
		if err := valNode.Decode(&nodes); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInventory,
				fmt.Sprintf("role %q is not a node list", role), err)
		}
		for j, n := range nodes {
			if n.Host == "" {
				return nil, errors.NewWithContext(errors.ErrCodeInvalidInventory,
					"node without host", map[string]any{"role": role, "index": j})
			}
		}
		inv.Roles = append(inv.Roles, RoleGroup{Name: role, Nodes: nodes})
	}

	if inv.Total() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInventory, "inventory has no nodes")
	}
	return inv, nil
}

func isKnownRole(role string) bool {
	for _, r := range KnownRoles {
		if r == role {
			return true
		}
	}
	return false
}
