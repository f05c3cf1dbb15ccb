// Package fsutil provides the small filesystem checks the session layer and
// the encoder sink need before committing to a resource.
package fsutil

import (
	"fmt"
	"os"
)

// Exists reports whether the named file or directory exists.
func Exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

// EnsureDir creates the directory and any missing parents.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	return nil
}

// DirWritable reports whether dir exists, is a directory, and accepts new
// files. The check creates and removes a probe file; permission bits alone
// are not trustworthy across filesystems.
func DirWritable(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	probe, err := os.CreateTemp(dir, ".radarview-probe-*")
	if err != nil {
		return fmt.Errorf("%s is not writable: %w", dir, err)
	}
	name := probe.Name()
	probe.Close()
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("remove probe file %s: %w", name, err)
	}
	return nil
}
