// Package checker lists a project's packages together with the strictest
// version constraint their dependents impose.
//
// # Strictest Constraint
//
// For a package name, every dependent link's constraint string is collected
// (duplicates kept), sorted with [version.Compare], and the last element is
// taken. This picks the constraint naming the highest version, which is not
// always the most restrictive range: "<2.0" beats "^1.5". Callers should
// read the value as "the highest version asked for".
//
// A package nothing depends on is unconstrained. That is a normal result,
// reported through [Entry.Constrained], never an error.
package checker

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/composer"
	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/repository"
	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/version"
)

// Entry is one listed package and the constraint placed on it.
type Entry struct {
	Package     *composer.Package
	Constraint  string // Strictest constraint; empty when Constrained is false
	Constrained bool   // False when no dependent declares a constraint
}

// MarshalJSON encodes the entry as {"constraint": ..., "package": {...}},
// with a null constraint for unconstrained packages.
func (e Entry) MarshalJSON() ([]byte, error) {
	var constraint *string
	if e.Constrained {
		constraint = &e.Constraint
	}
	return json.Marshal(struct {
		Constraint *string     `json:"constraint"`
		Package    packageJSON `json:"package"`
	}{constraint, newPackageJSON(e.Package)})
}

type packageJSON struct {
	Name        string `json:"name"`
	Version     string `json:"version,omitempty"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

func newPackageJSON(p *composer.Package) packageJSON {
	if p == nil {
		return packageJSON{}
	}
	return packageJSON{
		Name:        p.PrettyName,
		Version:     p.PrettyVersion,
		Type:        p.Type,
		Description: p.Description,
	}
}

// Listing maps package names to entries and remembers insertion order.
// The zero value is an empty listing.
type Listing struct {
	names   []string
	entries map[string]Entry
}

// Len returns the number of entries.
func (l *Listing) Len() int { return len(l.names) }

// Names returns package names in insertion order.
func (l *Listing) Names() []string { return slices.Clone(l.names) }

// Get returns the entry for name.
func (l *Listing) Get(name string) (Entry, bool) {
	e, ok := l.entries[name]
	return e, ok
}

// Entries returns the entries in insertion order.
func (l *Listing) Entries() []Entry {
	out := make([]Entry, 0, len(l.names))
	for _, n := range l.names {
		out = append(out, l.entries[n])
	}
	return out
}

// set stores e under name. Re-setting an existing name replaces its entry
// but keeps its original position.
func (l *Listing) set(name string, e Entry) {
	if l.entries == nil {
		l.entries = make(map[string]Entry)
	}
	if _, ok := l.entries[name]; !ok {
		l.names = append(l.names, name)
	}
	l.entries[name] = e
}

// MarshalJSON encodes the listing as a JSON object keyed by package name,
// preserving insertion order.
func (l *Listing) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range l.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(l.entries[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ListPackages lists the packages of repo whose type is in allowedTypes,
// each with its strictest constraint. A nil allowedTypes disables filtering;
// a non-nil empty slice allows nothing.
func ListPackages(repo repository.Repository, allowedTypes []string) *Listing {
	listing := &Listing{}
	for _, p := range repo.Packages() {
		if allowedTypes != nil && !slices.Contains(allowedTypes, p.Type) {
			continue
		}
		constraint, ok := StrictestConstraint(repo, p.Name)
		listing.set(p.Name, Entry{Package: p, Constraint: constraint, Constrained: ok})
	}
	return listing
}

// StrictestConstraint returns the highest-sorting constraint any dependent of
// name declares, or false when nothing depends on name.
func StrictestConstraint(repo repository.Repository, name string) (string, bool) {
	return version.Max(Constraints(repo, name))
}

// Constraints returns the constraint strings of every dependent link on name,
// in dependents order, duplicates included.
func Constraints(repo repository.Repository, name string) []string {
	deps := repo.Dependents(name)
	if len(deps) == 0 {
		return nil
	}
	out := make([]string, 0, len(deps))
	for _, d := range deps {
		out = append(out, d.Link.Constraint)
	}
	return out
}
