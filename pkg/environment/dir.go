package environment

import (
	"os"

	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/errors"
)

// InDir runs fn with the process working directory set to dir and restores
// the previous directory afterwards, including when fn returns an error or
// panics. A panic in fn is re-raised after the restore.
//
// The working directory is process-wide, so InDir must not be used from
// concurrent goroutines.
func InDir(dir string, fn func() error) (err error) {
	if err := errors.ValidatePath(dir); err != nil {
		return err
	}

	prev, err := os.Getwd()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "get working directory")
	}
	if err := os.Chdir(dir); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "change directory to %s", dir)
	}

	defer func() {
		restoreErr := os.Chdir(prev)
		if r := recover(); r != nil {
			panic(r)
		}
		if restoreErr != nil && err == nil {
			err = errors.Wrap(errors.ErrCodeInternal, restoreErr, "restore working directory %s", prev)
		}
	}()

	return fn()
}
