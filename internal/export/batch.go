// Package export writes the generated topology to its output formats. Every file is
// staged next to its destination and only renamed into place when the whole batch
// commits, so a failed run leaves no partial output behind.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrUnwritable is returned when an output destination cannot be written.
var ErrUnwritable = errors.New("output destination not writable")

// CheckWritable verifies that each destination's directory exists and accepts new
// files, and that no destination is an existing directory.
func CheckWritable(paths ...string) error {
	checked := make(map[string]bool)
	for _, p := range paths {
		if p == "" {
			continue
		}
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return fmt.Errorf("%w: %s is a directory", ErrUnwritable, p)
		}
		dir := filepath.Dir(p)
		if checked[dir] {
			continue
		}
		f, err := os.CreateTemp(dir, ".topogen-writecheck-*")
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrUnwritable, p, err)
		}
		f.Close()
		os.Remove(f.Name())
		checked[dir] = true
	}
	return nil
}

type staged struct {
	tmp  string
	dest string
}

// Batch collects staged output files.
type Batch struct {
	files []staged
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Reserve creates an empty temporary file next to dest and returns its path. The
// caller fills it; Commit moves it to dest.
func (b *Batch) Reserve(dest string) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*")
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnwritable, dest, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("%w: %s: %v", ErrUnwritable, dest, err)
	}
	b.files = append(b.files, staged{tmp: f.Name(), dest: dest})
	return f.Name(), nil
}

// Write stages dest with the content produced by fn.
func (b *Batch) Write(dest string, fn func(w io.Writer) error) error {
	tmp, err := b.Reserve(dest)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnwritable, dest, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnwritable, dest, err)
	}
	return nil
}

// Pending lists the destinations staged so far.
func (b *Batch) Pending() []string {
	out := make([]string, len(b.files))
	for i, s := range b.files {
		out[i] = s.dest
	}
	return out
}

// Commit moves every staged file into place. Files are committed in staging order;
// the first failure aborts the rest.
func (b *Batch) Commit() error {
	for i, s := range b.files {
		if err := os.Chmod(s.tmp, 0644); err != nil {
			b.files = b.files[i:]
			b.Abort()
			return fmt.Errorf("%w: %s: %v", ErrUnwritable, s.dest, err)
		}
		if err := os.Rename(s.tmp, s.dest); err != nil {
			b.files = b.files[i:]
			b.Abort()
			return fmt.Errorf("%w: %s: %v", ErrUnwritable, s.dest, err)
		}
	}
	b.files = nil
	return nil
}

// Abort removes every staged file.
func (b *Batch) Abort() {
	for _, s := range b.files {
		os.Remove(s.tmp)
	}
	b.files = nil
}
