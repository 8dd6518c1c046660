package composer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/errors"
)

const (
	// DefaultManifest is the manifest file name used when COMPOSER is unset.
	DefaultManifest = "composer.json"
	// DefaultVendorDir is the vendor directory used when neither the manifest
	// nor COMPOSER_VENDOR_DIR configures one.
	DefaultVendorDir = "vendor"

	installedFileName = "installed.json"
)

// Options selects where Load finds the project files.
type Options struct {
	Dir          string // Project directory (default ".")
	ManifestFile string // Manifest file name, relative to Dir (default composer.json)
	VendorDir    string // Vendor directory override, relative to Dir
}

// Composer is the loaded view of one project: its root package and the
// packages of its local installed repository.
type Composer struct {
	root          *Package
	local         []*Package
	manifestPath  string
	localPath     string
	lockHash      string
	fromInstalled bool
}

// New builds a Composer from already-loaded packages. The root package is
// marked as such.
func New(root *Package, local []*Package) *Composer {
	r := *root
	r.Root = true
	return &Composer{root: &r, local: local}
}

// Package returns the root package declared by the manifest.
func (c *Composer) Package() *Package { return c.root }

// LocalPackages returns the installed packages in file order.
func (c *Composer) LocalPackages() []*Package { return c.local }

// ManifestPath returns the absolute path of the manifest that was read.
func (c *Composer) ManifestPath() string { return c.manifestPath }

// LocalPath returns the file the local repository was read from, either
// vendor/composer/installed.json or the lock file.
func (c *Composer) LocalPath() string { return c.localPath }

// LockHash returns the lock file's content-hash, or "" when the local
// repository came from installed.json.
func (c *Composer) LockHash() string { return c.lockHash }

// FromInstalled reports whether the local repository came from
// installed.json rather than the lock file.
func (c *Composer) FromInstalled() bool { return c.fromInstalled }

// LockPath returns the lock file that belongs to manifest: the same name with
// a .lock extension.
func LockPath(manifest string) string {
	if ext := filepath.Ext(manifest); ext == ".json" {
		return strings.TrimSuffix(manifest, ext) + ".lock"
	}
	return manifest + ".lock"
}

// Load reads the manifest and the local repository of the project in
// opts.Dir. The local repository is vendor/composer/installed.json when it
// exists and the lock file otherwise.
//
// Every failure is reported as an [errors.ErrCodeManifestLoad] error; there
// is no partial result.
func Load(ctx context.Context, opts Options) (*Composer, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeManifestLoad, err, "load canceled")
	}
	logger := log.FromContext(ctx)

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeManifestLoad, err, "resolve project directory")
	}

	manifestName := strings.TrimSpace(opts.ManifestFile)
	if manifestName == "" {
		manifestName = DefaultManifest
	}
	manifestPath := joinIfRelative(dir, manifestName)

	var manifest manifestFile
	if err := readJSON(manifestPath, &manifest); err != nil {
		return nil, err
	}
	logger.Debug("Read manifest", "path", manifestPath, "name", manifest.Name)

	c := &Composer{
		root:         manifest.toPackage(),
		manifestPath: manifestPath,
	}

	vendorDir := firstNonEmpty(opts.VendorDir, manifest.Config.VendorDir, DefaultVendorDir)
	installedPath := filepath.Join(joinIfRelative(dir, vendorDir), "composer", installedFileName)

	switch _, err := os.Stat(installedPath); {
	case err == nil:
		var installed installedFile
		if err := readJSON(installedPath, &installed); err != nil {
			return nil, err
		}
		if c.local, err = toPackages(installedPath, installed.Packages); err != nil {
			return nil, err
		}
		c.localPath = installedPath
		c.fromInstalled = true
	case os.IsNotExist(err):
		lockPath := LockPath(manifestPath)
		var lock lockFile
		if err := readJSON(lockPath, &lock); err != nil {
			return nil, err
		}
		entries := append(lock.Packages, lock.PackagesDev...)
		if c.local, err = toPackages(lockPath, entries); err != nil {
			return nil, err
		}
		c.localPath = lockPath
		c.lockHash = lock.ContentHash
	default:
		return nil, errors.Wrap(errors.ErrCodeManifestLoad, err, "stat %s", installedPath)
	}

	logger.Debug("Read local repository", "path", c.localPath, "packages", len(c.local))
	return c, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeManifestLoad, err, "%s not found", filepath.Base(path))
		}
		return errors.Wrap(errors.ErrCodeManifestLoad, err, "read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(errors.ErrCodeManifestLoad,
			errors.Wrap(errors.ErrCodeInvalidManifest, err, "malformed JSON"), "parse %s", path)
	}
	return nil
}

func toPackages(path string, entries []packageEntry) ([]*Package, error) {
	pkgs := make([]*Package, 0, len(entries))
	for i, e := range entries {
		p, err := e.toPackage()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeManifestLoad, err, "%s: package #%d", path, i)
		}
		pkgs = append(pkgs, p)
	}
	return pkgs, nil
}

func joinIfRelative(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Summary describes where c was loaded from, for log lines.
func (c *Composer) Summary() string {
	return fmt.Sprintf("%s (%d installed packages from %s)", c.root, len(c.local), filepath.Base(c.localPath))
}
