package composer

import (
	"slices"
	"strings"
)

// DefaultType is the package type Composer assumes when a manifest omits it.
const DefaultType = "library"

// RootName is the name given to a root package whose manifest has no "name".
const RootName = "__root__"

// LinkKind distinguishes where a link was declared.
type LinkKind string

const (
	// Requires marks a link declared in "require".
	Requires LinkKind = "requires"
	// DevRequires marks a link declared in "require-dev".
	DevRequires LinkKind = "devRequires"
	// Replaces marks a link declared in "replace".
	Replaces LinkKind = "replaces"
)

// Link records that Source requires Target to satisfy Constraint.
// Source and Target are lower-cased package names; Constraint is kept exactly
// as written in the manifest.
type Link struct {
	Source     string
	Target     string
	Constraint string
	Kind       LinkKind
}

// Package is a single Composer package: either the root project or one entry
// of the local installed repository. Packages are immutable once loaded.
type Package struct {
	Name          string // Lower-cased identity
	PrettyName    string // Name as written
	Version       string // Normalized version when known, else the pretty version
	PrettyVersion string // Version as written
	Type          string // Type tag, "library" when unset
	Description   string
	Require       []Link
	RequireDev    []Link
	Replace       []Link
	Root          bool // Whether this package came from the project manifest
}

// String returns the pretty name and version.
func (p *Package) String() string {
	if p.PrettyVersion == "" {
		return p.PrettyName
	}
	return p.PrettyName + " " + p.PrettyVersion
}

// LinkTo returns the link p declares on target, looking at "require", then
// "replace", then for the root package only "require-dev". The first section
// naming target wins.
func (p *Package) LinkTo(target string) (Link, bool) {
	target = strings.ToLower(target)
	for _, section := range p.sections() {
		if l, ok := findLink(section, target); ok {
			return l, true
		}
	}
	return Link{}, false
}

// Links returns every link p contributes to dependents lookups, one per
// target, in the same precedence order LinkTo applies.
func (p *Package) Links() []Link {
	var links []Link
	seen := make(map[string]bool)
	for _, section := range p.sections() {
		for _, l := range section {
			if seen[l.Target] {
				continue
			}
			seen[l.Target] = true
			links = append(links, l)
		}
	}
	return links
}

func (p *Package) sections() [][]Link {
	if p.Root {
		return [][]Link{p.Require, p.Replace, p.RequireDev}
	}
	return [][]Link{p.Require, p.Replace}
}

func findLink(links []Link, target string) (Link, bool) {
	for _, l := range links {
		if l.Target == target {
			return l, true
		}
	}
	return Link{}, false
}

// newLinks converts a manifest require map into links sorted by target so
// that loading the same file twice yields identical packages.
func newLinks(source string, require map[string]string, kind LinkKind) []Link {
	if len(require) == 0 {
		return nil
	}
	links := make([]Link, 0, len(require))
	for target, constraint := range require {
		links = append(links, Link{
			Source:     source,
			Target:     strings.ToLower(target),
			Constraint: constraint,
			Kind:       kind,
		})
	}
	slices.SortFunc(links, func(a, b Link) int { return strings.Compare(a.Target, b.Target) })
	return links
}
