// Package workspace models the package graph of a multi-package repository
// as produced by the workspace metadata tool, and provides dependency-order
// traversal over it.
package workspace

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/conn-castle/release-train/internal/messages"
)

// Metadata is the parsed workspace metadata document.
type Metadata struct {
	WorkspaceRoot string    `json:"workspace_root"`
	Members       []string  `json:"workspace_members"`
	Packages      []Package `json:"packages"`
}

// Package describes one package in the workspace graph.
type Package struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Version      string `json:"version"`
	ManifestPath string `json:"manifest_path"`
	// Publish restricts the registries the package may be published to.
	// Nil means any registry; an empty list forbids publishing.
	Publish      []string     `json:"publish"`
	Targets      []Target     `json:"targets"`
	Dependencies []Dependency `json:"dependencies"`
	ContentFiles []string     `json:"content_files"`

	publishSet bool
}

// Target is one build target of a package.
type Target struct {
	Name string   `json:"name"`
	Kind []string `json:"kind"`
}

// Dependency is a declared dependency edge.
type Dependency struct {
	Name string `json:"name"`
	Req  string `json:"req"`
	Kind string `json:"kind"`
}

// UnmarshalJSON tracks whether the publish field was present so a JSON null
// (publish anywhere) can be told apart from an empty list (publish nowhere).
func (p *Package) UnmarshalJSON(data []byte) error {
	type alias Package
	var decoded struct {
		alias
		Publish *[]string `json:"publish"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*p = Package(decoded.alias)
	if decoded.Publish != nil {
		p.Publish = *decoded.Publish
		p.publishSet = true
	} else {
		p.Publish = nil
		p.publishSet = false
	}
	return nil
}

// PublishAllowed reports whether the manifest permits publishing at all.
func (p *Package) PublishAllowed() bool {
	if !p.publishSet {
		return true
	}
	return len(p.Publish) > 0
}

// HasBinTarget reports whether any target of the package is a binary.
func (p *Package) HasBinTarget() bool {
	for _, target := range p.Targets {
		for _, kind := range target.Kind {
			if kind == "bin" {
				return true
			}
		}
	}
	return false
}

// Parse decodes a workspace metadata document.
func Parse(data []byte) (*Metadata, error) {
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf(messages.WorkspaceInvalidMetadataFmt, err)
	}
	return &meta, nil
}

// PackageByID returns the package with the given id, or nil.
func (m *Metadata) PackageByID(id string) *Package {
	for i := range m.Packages {
		if m.Packages[i].ID == id {
			return &m.Packages[i]
		}
	}
	return nil
}

// IsMember reports whether the package id is a workspace member.
func (m *Metadata) IsMember(id string) bool {
	for _, member := range m.Members {
		if member == id {
			return true
		}
	}
	return false
}

// DependentRef names an in-workspace package that depends on another,
// together with the dependency edge carrying the version requirement.
type DependentRef struct {
	Package    *Package
	Dependency *Dependency
}

// Dependents returns the workspace members that declare a dependency on pkg.
func (m *Metadata) Dependents(pkg *Package) []DependentRef {
	var out []DependentRef
	for i := range m.Packages {
		member := &m.Packages[i]
		if !m.IsMember(member.ID) {
			continue
		}
		for j := range member.Dependencies {
			if member.Dependencies[j].Name == pkg.Name {
				out = append(out, DependentRef{Package: member, Dependency: &member.Dependencies[j]})
				break
			}
		}
	}
	return out
}

// SortedMemberIDs returns the workspace member ids in dependency order:
// dependencies before dependents, ties broken by package name so the result
// is stable under input permutation. Members left over by dependency cycles
// are appended in name order.
func (m *Metadata) SortedMemberIDs() []string {
	members := make([]*Package, 0, len(m.Members))
	byName := make(map[string]*Package, len(m.Members))
	for _, id := range m.Members {
		pkg := m.PackageByID(id)
		if pkg == nil {
			continue
		}
		members = append(members, pkg)
		byName[pkg.Name] = pkg
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })

	// In-workspace dependency counts for Kahn's algorithm.
	inDegree := make(map[string]int, len(members))
	dependentsOf := make(map[string][]string, len(members))
	for _, pkg := range members {
		if _, tracked := inDegree[pkg.ID]; !tracked {
			inDegree[pkg.ID] = 0
		}
		for _, dep := range pkg.Dependencies {
			depPkg, inWorkspace := byName[dep.Name]
			if !inWorkspace || depPkg.ID == pkg.ID {
				continue
			}
			inDegree[pkg.ID]++
			dependentsOf[depPkg.ID] = append(dependentsOf[depPkg.ID], pkg.ID)
		}
	}

	ordered := make([]string, 0, len(members))
	for {
		progressed := false
		for _, pkg := range members {
			if degree, pending := inDegree[pkg.ID]; pending && degree == 0 {
				ordered = append(ordered, pkg.ID)
				delete(inDegree, pkg.ID)
				for _, dependent := range dependentsOf[pkg.ID] {
					if _, still := inDegree[dependent]; still {
						inDegree[dependent]--
					}
				}
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}

	// Cyclic remainder (legal with dev-dependency loops) in name order.
	for _, pkg := range members {
		if _, pending := inDegree[pkg.ID]; pending {
			ordered = append(ordered, pkg.ID)
		}
	}
	return ordered
}
