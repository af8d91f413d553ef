// Package corpus generates deterministic payloads for compression
// benchmarks, covering the compressibility range from all-zero input
// to incompressible noise.
package corpus

import (
	"bytes"
	"fmt"
	"math/rand"
)

// Generation is seeded per corpus so repeated runs and separate
// processes benchmark identical bytes.
const seed = 421

// Names returns the available corpus names, from most to least
// compressible.
func Names() []string {
	return []string{"zeroes", "repetitive", "text", "random"}
}

// Generate returns size bytes of the named corpus.
func Generate(name string, size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("corpus: negative size %d", size)
	}
	switch name {
	case "zeroes":
		return make([]byte, size), nil
	case "repetitive":
		return repetitive(size), nil
	case "text":
		return text(size), nil
	case "random":
		return random(size), nil
	default:
		return nil, fmt.Errorf("corpus: unknown corpus %q", name)
	}
}

func repetitive(size int) []byte {
	phrase := []byte("the quick brown fox jumps over the lazy dog 0123456789\n")
	buf := make([]byte, 0, size+len(phrase))
	for len(buf) < size {
		buf = append(buf, phrase...)
	}
	return buf[:size]
}

// text builds word-salad prose from a small vocabulary. It compresses
// like natural language: repeated tokens with varied ordering.
func text(size int) []byte {
	words := []string{
		"stream", "deflate", "window", "symbol", "huffman", "block",
		"match", "literal", "distance", "length", "encoder", "buffer",
		"the", "a", "of", "and", "with", "into", "over", "under",
	}
	rng := rand.New(rand.NewSource(seed))
	var buf bytes.Buffer
	buf.Grow(size + 16)
	col := 0
	for buf.Len() < size {
		w := words[rng.Intn(len(words))]
		buf.WriteString(w)
		col += len(w) + 1
		if col > 72 {
			buf.WriteByte('\n')
			col = 0
		} else {
			buf.WriteByte(' ')
		}
	}
	return buf.Bytes()[:size]
}

func random(size int) []byte {
	rng := rand.New(rand.NewSource(seed))
	buf := make([]byte, size)
	rng.Read(buf)
	return buf
}
