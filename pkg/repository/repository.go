// Package repository provides the read-only package views the update
// checker queries: a fixed array of packages, an ordered union of
// repositories, and the root-plus-installed view of a loaded project.
package repository

import (
	"slices"
	"strings"

	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/composer"
)

// Repository answers the two queries the constraint aggregator needs.
type Repository interface {
	// Packages returns every package in enumeration order.
	Packages() []*composer.Package
	// Dependents returns every package that declares a link on name,
	// paired with that link, in enumeration order.
	Dependents(name string) []Dependent
}

// Dependent pairs a package with the link it declares on another package.
type Dependent struct {
	Package *composer.Package
	Link    composer.Link
}

// Array is a repository over a fixed list of packages.
// The zero value is an empty repository.
type Array struct {
	packages []*composer.Package
	incoming map[string][]Dependent // target name -> dependents
}

// NewArray creates a repository holding pkgs in the given order.
func NewArray(pkgs ...*composer.Package) *Array {
	return &Array{
		packages: slices.Clone(pkgs),
		incoming: indexDependents(pkgs),
	}
}

// Packages implements [Repository].
func (a *Array) Packages() []*composer.Package {
	return slices.Clone(a.packages)
}

// Dependents implements [Repository].
func (a *Array) Dependents(name string) []Dependent {
	return slices.Clone(a.incoming[strings.ToLower(name)])
}

// Composite is the ordered union of several repositories.
type Composite struct {
	union *Array
}

// NewComposite creates the union of repos. Packages are enumerated
// repository by repository; a name already seen in an earlier repository
// shadows later duplicates.
func NewComposite(repos ...Repository) *Composite {
	var pkgs []*composer.Package
	seen := make(map[string]bool)
	for _, r := range repos {
		for _, p := range r.Packages() {
			if seen[p.Name] {
				continue
			}
			seen[p.Name] = true
			pkgs = append(pkgs, p)
		}
	}
	return &Composite{union: NewArray(pkgs...)}
}

// Packages implements [Repository].
func (c *Composite) Packages() []*composer.Package {
	return c.union.Packages()
}

// Dependents implements [Repository]. Links are looked up across the whole
// union, so a package in one member can depend on a package in another.
func (c *Composite) Dependents(name string) []Dependent {
	return c.union.Dependents(name)
}

// FromComposer returns the unified view of a loaded project: the root
// package followed by every locally installed package.
func FromComposer(c *composer.Composer) *Composite {
	return NewComposite(
		NewArray(c.Package()),
		NewArray(c.LocalPackages()...),
	)
}

func indexDependents(pkgs []*composer.Package) map[string][]Dependent {
	incoming := make(map[string][]Dependent)
	for _, p := range pkgs {
		for _, l := range p.Links() {
			incoming[l.Target] = append(incoming[l.Target], Dependent{Package: p, Link: l})
		}
	}
	return incoming
}
