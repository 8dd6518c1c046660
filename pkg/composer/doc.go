// Package composer loads the Composer view of a PHP project from disk.
//
// # Overview
//
// [Load] plays the part of Composer's own factory, restricted to what the
// update checker needs: it reads the project manifest (composer.json) as
// the root [Package], and the local installed repository as a list of
// packages. Nothing is resolved or fetched; the files on disk are the only
// source of truth.
//
// # Local Repository
//
// The installed repository is read from vendor/composer/installed.json when
// it exists (both the Composer 1 array layout and the Composer 2 object
// layout are accepted) and from the lock file otherwise:
//
//	c, err := composer.Load(ctx, composer.Options{Dir: "/var/www/site"})
//	if errors.IsManifestLoad(err) {
//	    // composer.json or its lock data is missing or malformed
//	}
//	root := c.Package()
//	installed := c.LocalPackages()
//
// # File Selection
//
// As with Composer, the manifest name can be overridden (the COMPOSER
// environment variable, passed in as [Options.ManifestFile]); the lock file
// is always the manifest name with a .lock extension. The vendor directory
// comes from [Options.VendorDir] (COMPOSER_VENDOR_DIR), then the manifest's
// config.vendor-dir, then "vendor".
package composer
