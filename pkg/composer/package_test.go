package composer

import (
	"testing"
)

func TestPackageLinkTo(t *testing.T) {
	root := &Package{
		Name:       "acme/site",
		Root:       true,
		Require:    newLinks("acme/site", map[string]string{"acme/lib": "^1.0"}, Requires),
		RequireDev: newLinks("acme/site", map[string]string{"acme/lib": "^1.1", "acme/tools": "^2.0"}, DevRequires),
	}

	tests := []struct {
		name       string
		pkg        *Package
		target     string
		wantOK     bool
		wantConstr string
		wantKind   LinkKind
	}{
		{"require wins over require-dev", root, "acme/lib", true, "^1.0", Requires},
		{"root require-dev", root, "acme/tools", true, "^2.0", DevRequires},
		{"case insensitive", root, "ACME/Lib", true, "^1.0", Requires},
		{"absent", root, "acme/other", false, "", ""},
		{
			"non-root ignores require-dev",
			&Package{
				Name:       "acme/module",
				RequireDev: newLinks("acme/module", map[string]string{"acme/tools": "^2.0"}, DevRequires),
			},
			"acme/tools", false, "", "",
		},
		{
			"replace link",
			&Package{
				Name:    "acme/fork",
				Replace: newLinks("acme/fork", map[string]string{"acme/lib": "self.version"}, Replaces),
			},
			"acme/lib", true, "self.version", Replaces,
		},
		{
			"require wins over replace",
			&Package{
				Name:    "acme/fork",
				Require: newLinks("acme/fork", map[string]string{"acme/lib": "^1.0"}, Requires),
				Replace: newLinks("acme/fork", map[string]string{"acme/lib": "3.1.0"}, Replaces),
			},
			"acme/lib", true, "^1.0", Requires,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, ok := tt.pkg.LinkTo(tt.target)
			if ok != tt.wantOK {
				t.Fatalf("LinkTo(%q) ok = %v, want %v", tt.target, ok, tt.wantOK)
			}
			if l.Constraint != tt.wantConstr || l.Kind != tt.wantKind {
				t.Errorf("LinkTo(%q) = %+v, want constraint %q kind %q", tt.target, l, tt.wantConstr, tt.wantKind)
			}
		})
	}
}

func TestPackageLinks(t *testing.T) {
	root := &Package{
		Name:       "acme/site",
		Root:       true,
		Require:    newLinks("acme/site", map[string]string{"acme/lib": "^1.0"}, Requires),
		RequireDev: newLinks("acme/site", map[string]string{"acme/lib": "^1.1", "acme/tools": "^2.0"}, DevRequires),
	}

	links := root.Links()
	if len(links) != 2 {
		t.Fatalf("len(Links()) = %d, want 2: %v", len(links), links)
	}
	if links[0].Target != "acme/lib" || links[0].Constraint != "^1.0" {
		t.Errorf("links[0] = %+v, want acme/lib ^1.0", links[0])
	}
	if links[1].Target != "acme/tools" || links[1].Kind != DevRequires {
		t.Errorf("links[1] = %+v, want acme/tools devRequires", links[1])
	}
}

func TestPackageLinksPrecedence(t *testing.T) {
	root := &Package{
		Name:       "acme/site",
		Root:       true,
		Require:    newLinks("acme/site", map[string]string{"acme/lib": "^1.0"}, Requires),
		Replace:    newLinks("acme/site", map[string]string{"acme/lib": "2.0.0", "acme/legacy": "self.version"}, Replaces),
		RequireDev: newLinks("acme/site", map[string]string{"acme/legacy": "^0.9", "acme/tools": "^2.0"}, DevRequires),
	}

	want := []struct {
		target string
		kind   LinkKind
	}{
		{"acme/lib", Requires},
		{"acme/legacy", Replaces},
		{"acme/tools", DevRequires},
	}
	links := root.Links()
	if len(links) != len(want) {
		t.Fatalf("Links() = %v, want %d links", links, len(want))
	}
	for i, w := range want {
		if links[i].Target != w.target || links[i].Kind != w.kind {
			t.Errorf("links[%d] = %s %s, want %s %s", i, links[i].Target, links[i].Kind, w.target, w.kind)
		}
	}

	module := &Package{
		Name:       "acme/module",
		Replace:    newLinks("acme/module", map[string]string{"acme/old": "1.0.0"}, Replaces),
		RequireDev: newLinks("acme/module", map[string]string{"acme/tools": "^2.0"}, DevRequires),
	}
	if links := module.Links(); len(links) != 1 || links[0].Kind != Replaces {
		t.Errorf("non-root Links() = %v, want only the replace link", links)
	}
}

func TestNewLinksSortedAndLowercased(t *testing.T) {
	links := newLinks("acme/site", map[string]string{"Zeta/Pkg": "1.0", "alpha/pkg": "2.0"}, Requires)
	if len(links) != 2 {
		t.Fatalf("len = %d, want 2", len(links))
	}
	if links[0].Target != "alpha/pkg" || links[1].Target != "zeta/pkg" {
		t.Errorf("targets = %q, %q, want alpha/pkg, zeta/pkg", links[0].Target, links[1].Target)
	}
	if links[0].Source != "acme/site" {
		t.Errorf("Source = %q, want acme/site", links[0].Source)
	}
}

func TestPackageString(t *testing.T) {
	p := &Package{PrettyName: "Acme/Lib", PrettyVersion: "1.2.0"}
	if got := p.String(); got != "Acme/Lib 1.2.0" {
		t.Errorf("String() = %q", got)
	}
	p.PrettyVersion = ""
	if got := p.String(); got != "Acme/Lib" {
		t.Errorf("String() = %q", got)
	}
}
