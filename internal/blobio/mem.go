package blobio

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
)

func (f *FS) openMem(name string) (io.ReadCloser, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	data, ok := f.mem[name]
	if !ok {
		return nil, fmt.Errorf("%w: mem://%s", ErrNotFound, name)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *FS) listMem(prefix string) []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var names []string
	for name := range f.mem {
		if strings.HasPrefix(name, prefix) {
			names = append(names, "mem://"+name)
		}
	}
	sort.Strings(names)
	return names
}

type memWriter struct {
	fs   *FS
	name string
	buf  bytes.Buffer
	done bool
}

func (w *memWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *memWriter) Close() error {
	if w.done {
		return nil
	}
	w.done = true
	w.fs.mu.Lock()
	defer w.fs.mu.Unlock()
	w.fs.mem[w.name] = bytes.Clone(w.buf.Bytes())
	return nil
}
