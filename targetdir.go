//go:build linux

package featurecheck

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// checkTargetDir verifies the scratch directory can be created or written by
// this process. The directory may not exist yet, so the nearest existing
// ancestor is checked instead.
func checkTargetDir(dir string) error {
	p := existingAncestor(filepath.Clean(dir))

	info, err := os.Stat(p)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTargetDir, p, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrTargetDir, p)
	}
	if err := unix.Access(p, unix.W_OK|unix.X_OK); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTargetDir, p, err)
	}
	return nil
}

// existingAncestor returns p itself if it exists, otherwise the closest
// parent that does.
func existingAncestor(p string) string {
	for {
		if _, err := os.Lstat(p); err == nil {
			return p
		}
		parent := filepath.Dir(p)
		if parent == p {
			return p
		}
		p = parent
	}
}
