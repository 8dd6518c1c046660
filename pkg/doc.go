// Package pkg provides the libraries behind the Composer update checker.
//
// # Overview
//
// The update checker reads a Composer project from disk and reports, for the
// root package and every installed package, the strictest version
// constraint any dependent declares on it. It does not resolve dependencies
// or contact a package registry.
//
// # Architecture
//
// The typical data flow:
//
//	composer.json + vendor/composer/installed.json (or composer.lock)
//	         ↓
//	    [composer] package (load root and installed packages)
//	         ↓
//	    [repository] package (root-plus-installed view, dependents index)
//	         ↓
//	    [checker] package (filter by type, strictest constraint per package)
//	         ↓
//	    table, JSON or HTTP output
//
// [bootstrap] drives the flow for a host: it applies the [environment] plan,
// switches into the project directory for the load and restores it.
//
// # Quick Start
//
//	l := bootstrap.New(bootstrap.Options{BasePath: "/var/www/site"})
//	if err := l.OnAfterBuild(ctx); err != nil {
//	    return err // errors.IsManifestLoad(err) for missing or broken files
//	}
//	listing, _ := l.GetPackages([]string{"silverstripe-vendormodule"})
//	for _, e := range listing.Entries() {
//	    fmt.Println(e.Package.PrettyName, e.Constraint)
//	}
//
// # Main Packages
//
//   - [version]: version_compare ordering for constraint strings
//   - [composer]: manifest, lock and installed.json loading
//   - [repository]: array and composite repositories
//   - [checker]: package listings and strictest constraints
//   - [environment]: environment plan and scoped working directory
//   - [bootstrap]: host integration
//   - [config]: TOML and environment configuration
//   - [server]: HTTP JSON surface
//   - [errors]: structured error codes
//   - [observability]: load and request hooks
//   - [buildinfo]: version information
package pkg
