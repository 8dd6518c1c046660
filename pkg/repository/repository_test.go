package repository

import (
	"testing"

	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/composer"
)

func pkg(name, typ string, root bool, require map[string]string) *composer.Package {
	p := &composer.Package{Name: name, PrettyName: name, Type: typ, Root: root}
	for target, constraint := range require {
		p.Require = append(p.Require, composer.Link{
			Source: name, Target: target, Constraint: constraint, Kind: composer.Requires,
		})
	}
	return p
}

func names(pkgs []*composer.Package) []string {
	out := make([]string, len(pkgs))
	for i, p := range pkgs {
		out[i] = p.Name
	}
	return out
}

func TestArray(t *testing.T) {
	lib := pkg("acme/lib", "library", false, nil)
	mod := pkg("acme/module", "module", false, map[string]string{"acme/lib": "^1.1"})
	repo := NewArray(lib, mod)

	got := names(repo.Packages())
	if len(got) != 2 || got[0] != "acme/lib" || got[1] != "acme/module" {
		t.Errorf("Packages() = %v, want [acme/lib acme/module]", got)
	}

	deps := repo.Dependents("acme/lib")
	if len(deps) != 1 {
		t.Fatalf("len(Dependents) = %d, want 1", len(deps))
	}
	if deps[0].Package != mod || deps[0].Link.Constraint != "^1.1" {
		t.Errorf("Dependents()[0] = %+v, want acme/module ^1.1", deps[0])
	}

	if deps := repo.Dependents("ACME/LIB"); len(deps) != 1 {
		t.Errorf("Dependents is case-sensitive: got %d results", len(deps))
	}
	if deps := repo.Dependents("acme/module"); len(deps) != 0 {
		t.Errorf("Dependents(acme/module) = %v, want none", deps)
	}
}

func TestArrayPackagesIsCopy(t *testing.T) {
	repo := NewArray(pkg("acme/lib", "library", false, nil))
	pkgs := repo.Packages()
	pkgs[0] = nil
	if repo.Packages()[0] == nil {
		t.Error("mutating Packages() result changed the repository")
	}
}

func TestZeroArray(t *testing.T) {
	var repo Array
	if len(repo.Packages()) != 0 || len(repo.Dependents("acme/lib")) != 0 {
		t.Error("zero Array is not empty")
	}
}

func TestComposite(t *testing.T) {
	root := pkg("acme/site", "project", true, map[string]string{"acme/lib": "^1.0"})
	lib := pkg("acme/lib", "library", false, nil)
	mod := pkg("acme/module", "module", false, map[string]string{"acme/lib": "^1.1"})

	repo := NewComposite(NewArray(root), NewArray(lib, mod))

	got := names(repo.Packages())
	want := []string{"acme/site", "acme/lib", "acme/module"}
	if len(got) != len(want) {
		t.Fatalf("Packages() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Packages()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	deps := repo.Dependents("acme/lib")
	if len(deps) != 2 {
		t.Fatalf("len(Dependents) = %d, want 2", len(deps))
	}
	if deps[0].Package != root || deps[1].Package != mod {
		t.Errorf("Dependents order = [%s %s], want [acme/site acme/module]", deps[0].Package.Name, deps[1].Package.Name)
	}
}

func TestCompositeShadowsDuplicates(t *testing.T) {
	first := pkg("acme/lib", "library", false, nil)
	second := pkg("acme/lib", "module", false, map[string]string{"acme/other": "^1.0"})

	repo := NewComposite(NewArray(first), NewArray(second))
	pkgs := repo.Packages()
	if len(pkgs) != 1 || pkgs[0] != first {
		t.Errorf("Packages() = %v, want only the first acme/lib", names(pkgs))
	}
	if deps := repo.Dependents("acme/other"); len(deps) != 0 {
		t.Errorf("shadowed package still contributes dependents: %v", deps)
	}
}

func TestFromComposer(t *testing.T) {
	root := &composer.Package{
		Name: "acme/site",
		Type: "project",
		RequireDev: []composer.Link{
			{Source: "acme/site", Target: "acme/tools", Constraint: "^2.0", Kind: composer.DevRequires},
		},
	}
	tools := pkg("acme/tools", "library", false, nil)

	repo := FromComposer(composer.New(root, []*composer.Package{tools}))

	got := names(repo.Packages())
	if len(got) != 2 || got[0] != "acme/site" || got[1] != "acme/tools" {
		t.Errorf("Packages() = %v, want [acme/site acme/tools]", got)
	}

	// composer.New marks the root, so its require-dev links count.
	deps := repo.Dependents("acme/tools")
	if len(deps) != 1 || deps[0].Link.Kind != composer.DevRequires {
		t.Errorf("Dependents(acme/tools) = %+v, want the root's require-dev link", deps)
	}
}

func TestDependentsIncludeReplacers(t *testing.T) {
	lib := pkg("acme/lib", "library", false, nil)
	fork := &composer.Package{
		Name: "acme/fork",
		Type: "library",
		Replace: []composer.Link{
			{Source: "acme/fork", Target: "acme/lib", Constraint: "3.1.0", Kind: composer.Replaces},
		},
	}
	mod := pkg("acme/module", "module", false, map[string]string{"acme/lib": "^1.1"})

	deps := NewArray(lib, fork, mod).Dependents("acme/lib")
	if len(deps) != 2 {
		t.Fatalf("len(Dependents) = %d, want 2: %+v", len(deps), deps)
	}
	if deps[0].Package != fork || deps[0].Link.Kind != composer.Replaces {
		t.Errorf("Dependents()[0] = %+v, want acme/fork replaces", deps[0])
	}
	if deps[1].Package != mod {
		t.Errorf("Dependents()[1] = %s, want acme/module", deps[1].Package.Name)
	}
}
