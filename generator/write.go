package generator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// rename is os.Rename, swapped in tests to fail a chosen move.
var rename = os.Rename

// file is one rendered output waiting to be written.
type file struct {
	path string
	data []byte

	tmp    string // staged contents, removed once placed
	backup string // previous destination contents while placing
	placed bool
}

// writeAll stages every file as a temp file next to its destination, then moves
// them into place one by one. A staging failure leaves every destination
// untouched. A failed move puts back the files already replaced, newest first.
// Only if restoring fails too can a backup remain next to its destination; the
// returned error names it.
func writeAll(files []*file) error {
	defer func() {
		for _, f := range files {
			if f.tmp != "" {
				_ = os.Remove(f.tmp)
				f.tmp = ""
			}
		}
	}()

	for _, f := range files {
		if err := stage(f); err != nil {
			return err
		}
	}

	for _, f := range files {
		if err := place(f); err != nil {
			return errors.Join(err, rollback(files))
		}
	}

	for _, f := range files {
		if f.backup != "" {
			_ = os.Remove(f.backup)
			f.backup = ""
		}
	}
	return nil
}

func stage(f *file) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("staging %s: %w", f.path, err)
	}
	f.tmp = tmp.Name()
	if _, err := tmp.Write(f.data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("staging %s: %w", f.path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("staging %s: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("staging %s: %w", f.path, err)
	}
	return nil
}

// place moves the current destination aside, then the staged file in.
func place(f *file) error {
	if _, err := os.Lstat(f.path); err == nil {
		backup := f.tmp + ".bak"
		if err := rename(f.path, backup); err != nil {
			return fmt.Errorf("backing up %s: %w", f.path, err)
		}
		f.backup = backup
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("replacing %s: %w", f.path, err)
	}
	if err := rename(f.tmp, f.path); err != nil {
		return fmt.Errorf("replacing %s: %w", f.path, err)
	}
	f.tmp = ""
	f.placed = true
	return nil
}

// rollback undoes place for every file, newest first.
func rollback(files []*file) error {
	var errs []error
	for i := len(files) - 1; i >= 0; i-- {
		f := files[i]
		if f.placed {
			if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, fmt.Errorf("removing new %s: %w", f.path, err))
				continue
			}
			f.placed = false
		}
		if f.backup == "" {
			continue
		}
		if err := rename(f.backup, f.path); err != nil {
			errs = append(errs, fmt.Errorf("restoring %s (previous contents kept in %s): %w", f.path, f.backup, err))
			continue
		}
		f.backup = ""
	}
	return errors.Join(errs...)
}
