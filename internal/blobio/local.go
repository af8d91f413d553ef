package blobio

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

func openLocal(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, nil
}

// createLocal writes into a temp file in the destination directory and
// renames it into place on Close. A file lock next to the destination
// serializes concurrent creators of the same path.
func createLocal(path string) (io.WriteCloser, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", dir, err)
	}
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		unlock(lock)
		return nil, fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	return &atomicFile{tmp: tmp, path: path, lock: lock}, nil
}

type atomicFile struct {
	tmp  *os.File
	path string
	lock *flock.Flock
	done bool
}

func (a *atomicFile) Write(p []byte) (int, error) {
	return a.tmp.Write(p)
}

func (a *atomicFile) Close() error {
	if a.done {
		return nil
	}
	a.done = true
	defer unlock(a.lock)
	if err := a.tmp.Sync(); err != nil {
		a.discard()
		return fmt.Errorf("syncing %s: %w", a.tmp.Name(), err)
	}
	if err := a.tmp.Close(); err != nil {
		os.Remove(a.tmp.Name())
		return fmt.Errorf("closing %s: %w", a.tmp.Name(), err)
	}
	if err := os.Rename(a.tmp.Name(), a.path); err != nil {
		os.Remove(a.tmp.Name())
		return fmt.Errorf("renaming into %s: %w", a.path, err)
	}
	return nil
}

func (a *atomicFile) discard() {
	a.tmp.Close()
	os.Remove(a.tmp.Name())
}

func unlock(lock *flock.Flock) {
	lock.Unlock()
	os.Remove(lock.Path())
}

func listLocal(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", path, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, filepath.Join(path, e.Name()))
	}
	return names, nil
}
