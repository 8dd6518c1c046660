// Package bootstrap wires the update checker into a host application.
//
// A [Loader] plays the part of an after-build hook: once the host has its
// own configuration, [Loader.OnAfterBuild] prepares the environment
// Composer expects, switches into the project directory, loads the project
// and restores the directory. Afterwards [Loader.GetPackages] answers
// listing queries from the loaded, read-only view.
//
// # Usage
//
//	l := bootstrap.New(bootstrap.Options{BasePath: "/var/www/site"})
//	if err := l.OnAfterBuild(ctx); err != nil {
//	    return err
//	}
//	listing, err := l.GetPackages([]string{"silverstripe-vendormodule"})
package bootstrap

import (
	"context"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/checker"
	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/composer"
	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/environment"
	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/errors"
	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/observability"
	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/repository"
)

// Options configures a Loader.
type Options struct {
	BasePath    string                        // Project directory holding composer.json
	Environment environment.Snapshot          // Environment to plan from (default: process environment)
	Defaults    environment.Defaults          // Values the plan injects when missing
	Setenv      func(key, value string) error // Applies the plan (default: os.Setenv)
	Logger      *log.Logger                   // Default: log.Default()
}

// Loader builds the Composer view of one project and serves package
// listings from it. It is not safe for concurrent OnAfterBuild calls; once
// built, the read methods may be called from any goroutine.
type Loader struct {
	opts     Options
	logger   *log.Logger
	composer *composer.Composer
	repo     repository.Repository
}

// New creates a Loader. Nothing is read until OnAfterBuild.
func New(opts Options) *Loader {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{opts: opts, logger: logger}
}

func (l *Loader) snapshot() environment.Snapshot {
	if l.opts.Environment != nil {
		return l.opts.Environment
	}
	return environment.FromOS()
}

// Plan returns the environment changes OnAfterBuild would apply.
func (l *Loader) Plan() map[string]string {
	return environment.Plan(l.snapshot(), l.opts.Defaults)
}

// OnAfterBuild applies the environment plan and loads the project at
// BasePath. The working directory is switched to BasePath for the duration
// of the load and restored afterwards, whether or not loading succeeds.
//
// A missing or malformed manifest or lock file yields an
// [errors.ErrCodeManifestLoad] error and leaves the Loader unbuilt.
func (l *Loader) OnAfterBuild(ctx context.Context) error {
	if err := errors.ValidatePath(l.opts.BasePath); err != nil {
		return err
	}

	env := l.snapshot()
	plan := environment.Plan(env, l.opts.Defaults)
	for _, k := range slices.Sorted(maps.Keys(plan)) {
		l.logger.Debug("Setting environment", "key", k, "value", plan[k])
	}
	if err := environment.Apply(plan, l.opts.Setenv); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "apply environment")
	}

	opts := composer.Options{
		Dir:          ".",
		ManifestFile: strings.TrimSpace(env.Get(environment.ComposerManifest)),
		VendorDir:    strings.TrimSpace(env.Get(environment.ComposerVendorDir)),
	}

	ctx = log.WithContext(ctx, l.logger)
	hooks := observability.Load()
	hooks.OnLoadStart(ctx, l.opts.BasePath)
	start := time.Now()

	var c *composer.Composer
	err := environment.InDir(l.opts.BasePath, func() error {
		var err error
		c, err = composer.Load(ctx, opts)
		return err
	})
	if err != nil {
		hooks.OnLoadComplete(ctx, l.opts.BasePath, 0, time.Since(start), err)
		return err
	}

	l.SetComposer(c)
	count := len(c.LocalPackages()) + 1
	hooks.OnLoadComplete(ctx, l.opts.BasePath, count, time.Since(start), nil)
	l.logger.Debug("Loaded project",
		"path", c.ManifestPath(),
		"source", c.LocalPath(),
		"installed", c.FromInstalled(),
		"lock_hash", c.LockHash(),
		"packages", count)
	return nil
}

// SetComposer replaces the loaded project, for hosts that build the
// Composer view themselves.
func (l *Loader) SetComposer(c *composer.Composer) {
	l.composer = c
	if c == nil {
		l.repo = nil
		return
	}
	l.repo = repository.FromComposer(c)
}

// Composer returns the loaded project, or nil before OnAfterBuild.
func (l *Loader) Composer() *composer.Composer { return l.composer }

// Repository returns the root-plus-installed view of the loaded project.
func (l *Loader) Repository() (repository.Repository, error) {
	if l.repo == nil {
		return nil, errors.New(errors.ErrCodeInternal, "project not loaded")
	}
	return l.repo, nil
}

// GetPackages lists the loaded packages whose type is in allowedTypes (all
// packages when allowedTypes is nil) with their strictest constraints.
func (l *Loader) GetPackages(allowedTypes []string) (*checker.Listing, error) {
	repo, err := l.Repository()
	if err != nil {
		return nil, err
	}
	return checker.ListPackages(repo, allowedTypes), nil
}

// Package returns the loaded package called name.
func (l *Loader) Package(name string) (*composer.Package, error) {
	if err := errors.ValidatePackageName(name); err != nil {
		return nil, err
	}
	repo, err := l.Repository()
	if err != nil {
		return nil, err
	}
	name = strings.ToLower(name)
	for _, p := range repo.Packages() {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, errors.New(errors.ErrCodeNotFound, "package %s is not installed", name)
}

// Dependents returns the packages that declare a link on name. The package
// itself does not need to be installed.
func (l *Loader) Dependents(name string) ([]repository.Dependent, error) {
	if err := errors.ValidatePackageName(name); err != nil {
		return nil, err
	}
	repo, err := l.Repository()
	if err != nil {
		return nil, err
	}
	return repo.Dependents(name), nil
}
