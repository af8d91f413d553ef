package dict

import (
	"bytes"
	"hash/adler32"
	"testing"
)

func TestRegistry_AddLookup(t *testing.T) {
	r, err := New(4)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	d := []byte("the quick brown fox")
	id := r.Add(d)
	if want := adler32.Checksum(d); id != want {
		t.Errorf("Add() = %#x, want %#x", id, want)
	}

	got, ok := r.Lookup(id)
	if !ok {
		t.Fatal("Lookup() ok = false, want true")
	}
	if !bytes.Equal(got, d) {
		t.Errorf("Lookup() = %q, want %q", got, d)
	}
}

func TestRegistry_Lookup_Unknown(t *testing.T) {
	r, err := New(4)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := r.Lookup(0xdeadbeef); ok {
		t.Error("Lookup() ok = true for unknown id, want false")
	}
}

func TestRegistry_CopiesDictionary(t *testing.T) {
	r, err := New(4)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	d := []byte("mutable")
	id := r.Add(d)
	d[0] = 'X'

	got, _ := r.Lookup(id)
	if !bytes.Equal(got, []byte("mutable")) {
		t.Errorf("Lookup() = %q, want %q", got, "mutable")
	}
}

func TestRegistry_Eviction(t *testing.T) {
	r, err := New(2)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	first := r.Add([]byte("first dictionary"))
	r.Add([]byte("second dictionary"))
	r.Add([]byte("third dictionary"))

	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
	if _, ok := r.Lookup(first); ok {
		t.Error("Lookup(first) ok = true after eviction, want false")
	}
}

func TestNew_InvalidCapacity(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Error("New(0) error = nil, want error")
	}
}
