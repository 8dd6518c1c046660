package composer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/errors"
)

const testManifest = `{
  "name": "acme/site",
  "type": "project",
  "description": "Example site",
  "require": {
    "php": "^8.1",
    "acme/lib": "^1.0"
  },
  "require-dev": {
    "phpunit/phpunit": "^10.0"
  }
}`

const testLock = `{
  "content-hash": "abc123",
  "packages": [
    {
      "name": "acme/lib",
      "version": "1.2.0",
      "version_normalized": "1.2.0.0",
      "type": "library",
      "require": {"php": ">=8.0"}
    },
    {
      "name": "Acme/Module",
      "version": "2.0.1",
      "type": "module",
      "require": {"acme/lib": "^1.1"}
    }
  ],
  "packages-dev": [
    {
      "name": "phpunit/phpunit",
      "version": "10.5.0",
      "require": []
    }
  ]
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromLock(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "composer.json", testManifest)
	lockPath := writeFile(t, dir, "composer.lock", testLock)

	c, err := Load(context.Background(), Options{Dir: dir})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	root := c.Package()
	if root.Name != "acme/site" || root.Type != "project" || !root.Root {
		t.Errorf("root = %+v, want acme/site project root", root)
	}
	if got := len(root.Require); got != 2 {
		t.Errorf("len(root.Require) = %d, want 2", got)
	}

	local := c.LocalPackages()
	if got := len(local); got != 3 {
		t.Fatalf("len(LocalPackages) = %d, want 3", got)
	}

	wantNames := []string{"acme/lib", "acme/module", "phpunit/phpunit"}
	for i, want := range wantNames {
		if local[i].Name != want {
			t.Errorf("local[%d].Name = %q, want %q", i, local[i].Name, want)
		}
	}

	if local[1].PrettyName != "Acme/Module" {
		t.Errorf("PrettyName = %q, want %q", local[1].PrettyName, "Acme/Module")
	}
	if local[0].Version != "1.2.0.0" || local[0].PrettyVersion != "1.2.0" {
		t.Errorf("version = %q/%q, want 1.2.0.0/1.2.0", local[0].Version, local[0].PrettyVersion)
	}
	if local[2].Type != DefaultType {
		t.Errorf("Type = %q, want default %q", local[2].Type, DefaultType)
	}
	if local[2].Require != nil {
		t.Errorf("Require = %v, want nil for empty array", local[2].Require)
	}

	if c.LocalPath() != lockPath {
		t.Errorf("LocalPath() = %q, want %q", c.LocalPath(), lockPath)
	}
	if c.LockHash() != "abc123" {
		t.Errorf("LockHash() = %q, want %q", c.LockHash(), "abc123")
	}
	if c.FromInstalled() {
		t.Error("FromInstalled() = true, want false")
	}
}

func TestLoadPrefersInstalledJSON(t *testing.T) {
	tests := []struct {
		name      string
		installed string
	}{
		{
			name:      "composer 1 array",
			installed: `[{"name": "acme/lib", "version": "1.3.0", "type": "library"}]`,
		},
		{
			name:      "composer 2 object",
			installed: `{"packages": [{"name": "acme/lib", "version": "1.3.0", "type": "library"}], "dev": true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "composer.json", testManifest)
			writeFile(t, dir, "composer.lock", testLock)
			writeFile(t, dir, "vendor/composer/installed.json", tt.installed)

			c, err := Load(context.Background(), Options{Dir: dir})
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if !c.FromInstalled() {
				t.Error("FromInstalled() = false, want true")
			}
			local := c.LocalPackages()
			if len(local) != 1 || local[0].Name != "acme/lib" || local[0].PrettyVersion != "1.3.0" {
				t.Errorf("LocalPackages() = %v, want [acme/lib 1.3.0]", local)
			}
		})
	}
}

func TestLoadVendorDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "composer.json", `{"name": "acme/site", "config": {"vendor-dir": "lib"}}`)
	writeFile(t, dir, "lib/composer/installed.json", `[{"name": "acme/a", "version": "1.0.0"}]`)
	writeFile(t, dir, "other/composer/installed.json", `[{"name": "acme/b", "version": "1.0.0"}]`)

	c, err := Load(context.Background(), Options{Dir: dir})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := c.LocalPackages()[0].Name; got != "acme/a" {
		t.Errorf("manifest vendor-dir: got %q, want acme/a", got)
	}

	c, err = Load(context.Background(), Options{Dir: dir, VendorDir: "other"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := c.LocalPackages()[0].Name; got != "acme/b" {
		t.Errorf("vendor override: got %q, want acme/b", got)
	}
}

func TestLoadCustomManifestName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "site.json", `{"name": "acme/custom"}`)
	writeFile(t, dir, "site.lock", `{"packages": []}`)

	c, err := Load(context.Background(), Options{Dir: dir, ManifestFile: "site.json"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Package().Name != "acme/custom" {
		t.Errorf("root = %q, want acme/custom", c.Package().Name)
	}
	if filepath.Base(c.LocalPath()) != "site.lock" {
		t.Errorf("LocalPath() = %q, want site.lock", c.LocalPath())
	}
}

func TestLoadUnnamedRoot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "composer.json", `{"require": []}`)
	writeFile(t, dir, "composer.lock", `{"packages": []}`)

	c, err := Load(context.Background(), Options{Dir: dir})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	root := c.Package()
	if root.Name != RootName || root.Type != DefaultType {
		t.Errorf("root = %q (%s), want %q (%s)", root.Name, root.Type, RootName, DefaultType)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{
			name:  "missing manifest",
			files: map[string]string{"composer.lock": testLock},
		},
		{
			name:  "missing lock and installed",
			files: map[string]string{"composer.json": testManifest},
		},
		{
			name:  "malformed manifest",
			files: map[string]string{"composer.json": `{"name": `, "composer.lock": testLock},
		},
		{
			name:  "malformed lock",
			files: map[string]string{"composer.json": testManifest, "composer.lock": `{"packages": {}}`},
		},
		{
			name: "malformed installed",
			files: map[string]string{
				"composer.json":                  testManifest,
				"vendor/composer/installed.json": `not json`,
			},
		},
		{
			name:  "non-empty array require",
			files: map[string]string{"composer.json": `{"require": ["acme/lib"]}`, "composer.lock": testLock},
		},
		{
			name:  "nameless lock entry",
			files: map[string]string{"composer.json": testManifest, "composer.lock": `{"packages": [{"version": "1.0"}]}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				writeFile(t, dir, name, content)
			}

			c, err := Load(context.Background(), Options{Dir: dir})
			if err == nil {
				t.Fatalf("Load() = %v, want error", c)
			}
			if !errors.IsManifestLoad(err) {
				t.Errorf("error code = %q, want %q (%v)", errors.GetCode(err), errors.ErrCodeManifestLoad, err)
			}
			if c != nil {
				t.Error("Load() returned a partial result alongside an error")
			}
		})
	}
}

func TestLoadCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Load(ctx, Options{Dir: t.TempDir()}); !errors.IsManifestLoad(err) {
		t.Errorf("Load() error = %v, want MANIFEST_LOAD", err)
	}
}

func TestLockPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"composer.json", "composer.lock"},
		{"/srv/site/custom.json", "/srv/site/custom.lock"},
		{"manifest", "manifest.lock"},
	}
	for _, tt := range tests {
		if got := LockPath(tt.in); got != tt.want {
			t.Errorf("LockPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
