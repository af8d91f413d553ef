package zstream

import (
	"bytes"
	stdgzip "compress/gzip"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/zstreamio/zstream/internal/codec/codectest"
	"github.com/zstreamio/zstream/internal/stats"
)

// errSink is an io.Writer whose every Write fails.
type errSink struct{ err error }

func (s errSink) Write(p []byte) (int, error) { return 0, s.err }

// memCollector records counter and histogram traffic for assertions.
type memCollector struct {
	counters   map[string]int64
	histograms map[string][]float64
}

func newMemCollector() *memCollector {
	return &memCollector{
		counters:   make(map[string]int64),
		histograms: make(map[string][]float64),
	}
}

func (c *memCollector) IncCounter(name string, delta int64) { c.counters[name] += delta }
func (c *memCollector) SetGauge(name string, value int64)   {}
func (c *memCollector) ObserveHistogram(name string, value float64) {
	c.histograms[name] = append(c.histograms[name], value)
}

func TestNewWriter_InvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		opts   []Option
	}{
		{"bad_format", Format(9), nil},
		{"bad_level", Gzip, []Option{WithLevel(10)}},
		{"bad_backend", Gzip, []Option{WithBackend("zstd")}},
		{"dict_with_gzip", Gzip, []Option{WithDictionary([]byte("dict"))}},
		{"name_with_zlib", Zlib, []Option{WithName("file.txt")}},
		{"mtime_with_raw", Raw, []Option{WithModTime(time.Unix(1, 0))}},
		{"member_size_with_zlib", Zlib, []Option{WithMemberSize(1 << 20)}},
		{"negative_member_size", Gzip, []Option{WithMemberSize(-4)}},
		{"nul_in_comment", Gzip, []Option{WithComment("a\x00b")}},
		{"oversized_extra", Gzip, []Option{WithExtra(make([]byte, 1<<17))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewWriter(io.Discard, tt.format, tt.opts...); err == nil {
				t.Error("NewWriter() error = nil, want non-nil")
			}
		})
	}
}

// TestWriter_LazyHeader checks that nothing reaches the sink until the
// first write, and that the header is in place once it does.
func TestWriter_LazyHeader(t *testing.T) {
	var buf bytes.Buffer
	zw, err := NewWriter(&buf, Gzip)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("sink holds %d bytes before first write, want 0", buf.Len())
	}
	if _, err := zw.Write([]byte("x")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if buf.Len() < 10 {
		t.Fatalf("sink holds %d bytes after first write, want at least the 10 byte header", buf.Len())
	}
	hdr := buf.Bytes()
	if hdr[0] != 0x1f || hdr[1] != 0x8b {
		t.Errorf("stream starts %#02x %#02x, want 0x1f 0x8b", hdr[0], hdr[1])
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

// TestWriter_EmptyInput closes a writer that never received a byte and
// checks the result is a complete, decodable container.
func TestWriter_EmptyInput(t *testing.T) {
	for _, format := range []Format{Raw, Zlib, Gzip} {
		t.Run(format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			zw, err := NewWriter(&buf, format)
			if err != nil {
				t.Fatalf("NewWriter() error = %v", err)
			}
			if err := zw.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}
			if buf.Len() == 0 {
				t.Fatal("Close() on empty stream emitted nothing")
			}
			got := decompressBytes(t, format, buf.Bytes())
			if len(got) != 0 {
				t.Errorf("empty stream decoded to %d bytes, want 0", len(got))
			}
		})
	}
}

// TestWriter_EmptyGzip_StdlibReads double-checks the empty container
// against an independent decoder.
func TestWriter_EmptyGzip_StdlibReads(t *testing.T) {
	var buf bytes.Buffer
	zw, err := NewWriter(&buf, Gzip)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	zr, err := stdgzip.NewReader(&buf)
	if err != nil {
		t.Fatalf("gzip.NewReader() error = %v", err)
	}
	defer zr.Close()
	got, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("empty stream decoded to %d bytes, want 0", len(got))
	}
}

func TestWriter_CloseTwice(t *testing.T) {
	zw, err := NewWriter(io.Discard, Gzip)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := zw.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("Close() second call error = %v, want ErrClosed", err)
	}
}

func TestWriter_WriteAfterClose(t *testing.T) {
	zw, err := NewWriter(io.Discard, Gzip)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := zw.Write([]byte("late")); !errors.Is(err, ErrClosed) {
		t.Errorf("Write() after close error = %v, want ErrClosed", err)
	}
	if err := zw.Flush(); !errors.Is(err, ErrClosed) {
		t.Errorf("Flush() after close error = %v, want ErrClosed", err)
	}
}

// TestWriter_FlushPrefix flushes mid-stream and checks the flushed
// prefix already decodes to everything written.
func TestWriter_FlushPrefix(t *testing.T) {
	var buf bytes.Buffer
	zw, err := NewWriter(&buf, Gzip)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if _, err := zw.Write([]byte("hello")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := zw.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	prefix := append([]byte(nil), buf.Bytes()...)
	zr, err := NewReader(bytes.NewReader(prefix), Gzip)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	defer zr.Close()
	got := make([]byte, 5)
	if _, err := io.ReadFull(zr, got); err != nil {
		t.Fatalf("ReadFull() error = %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("flushed prefix decoded to %q, want %q", got, "hello")
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

// TestWriter_FlushEmpty flushes before any data and checks the header
// materializes.
func TestWriter_FlushEmpty(t *testing.T) {
	var buf bytes.Buffer
	zw, err := NewWriter(&buf, Gzip)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if err := zw.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if buf.Len() < 10 {
		t.Errorf("sink holds %d bytes after Flush, want at least the header", buf.Len())
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestWriter_Reset(t *testing.T) {
	var first, second bytes.Buffer
	zw, err := NewWriter(&first, Zlib)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if _, err := zw.Write([]byte("first stream")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	zw.Reset(&second)
	if got := zw.TotalIn(); got != 0 {
		t.Errorf("TotalIn() after Reset = %d, want 0", got)
	}
	if _, err := zw.Write([]byte("second stream")); err != nil {
		t.Fatalf("Write() after Reset error = %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close() after Reset error = %v", err)
	}

	if got := decompressBytes(t, Zlib, first.Bytes()); string(got) != "first stream" {
		t.Errorf("first stream decoded to %q", got)
	}
	if got := decompressBytes(t, Zlib, second.Bytes()); string(got) != "second stream" {
		t.Errorf("second stream decoded to %q", got)
	}
}

func TestWriter_SinkError(t *testing.T) {
	boom := errors.New("disk full")
	zw, err := NewWriter(errSink{err: boom}, Gzip)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if _, err := zw.Write([]byte("data")); !errors.Is(err, boom) {
		t.Fatalf("Write() error = %v, want %v", err, boom)
	}
	// The failure sticks.
	if _, err := zw.Write([]byte("more")); !errors.Is(err, boom) {
		t.Errorf("Write() after failure error = %v, want %v", err, boom)
	}
	if err := zw.Close(); !errors.Is(err, boom) {
		t.Errorf("Close() after failure error = %v, want %v", err, boom)
	}
	if err := zw.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("Close() second call error = %v, want ErrClosed", err)
	}
}

// TestWriter_FakeBackend drives the adapter over the scripted engine
// and checks the calls the adapter makes.
func TestWriter_FakeBackend(t *testing.T) {
	fake := codectest.New()
	var buf bytes.Buffer
	zw, err := NewWriter(&buf, Gzip, withBackend(fake), WithLevel(BestSpeed))
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if len(fake.Compressors) != 1 {
		t.Fatalf("backend opened %d sessions, want 1", len(fake.Compressors))
	}
	sess := fake.Compressors[0]
	if sess.Level != int(BestSpeed) {
		t.Errorf("session level = %d, want %d", sess.Level, BestSpeed)
	}

	if _, err := zw.Write([]byte("payload")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := zw.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if sess.Writes != 1 {
		t.Errorf("session writes = %d, want 1", sess.Writes)
	}
	if sess.Flushes != 1 {
		t.Errorf("session flushes = %d, want 1", sess.Flushes)
	}
	if !sess.Closed {
		t.Error("session not closed by Close")
	}

	blob := buf.Bytes()
	if blob[0] != 0x1f || blob[1] != 0x8b {
		t.Errorf("stream starts %#02x %#02x, want gzip magic", blob[0], blob[1])
	}
}

func TestWriter_Stats(t *testing.T) {
	collector := newMemCollector()
	var buf bytes.Buffer
	zw, err := NewWriter(&buf, Gzip, WithStats(collector))
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if _, err := zw.Write([]byte("observable payload")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if got := collector.counters[stats.MetricCompressStreams]; got != 1 {
		t.Errorf("compress streams counter = %d, want 1", got)
	}
	if got := collector.counters[stats.MetricCompressBytesIn]; got != 18 {
		t.Errorf("compress bytes in counter = %d, want 18", got)
	}
	if got := collector.counters[stats.MetricCompressBytesOut]; got != int64(buf.Len()) {
		t.Errorf("compress bytes out counter = %d, want %d", got, buf.Len())
	}
	if got := len(collector.histograms[stats.MetricCompressionRatio]); got != 1 {
		t.Errorf("compression ratio observations = %d, want 1", got)
	}
}

func TestWriter_MemberRotation(t *testing.T) {
	data := make([]byte, 100)
	for i := range data {
		data[i] = byte(i)
	}

	var buf bytes.Buffer
	zw, err := NewWriter(&buf, Gzip, WithMemberSize(32))
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	members := zw.Members()
	if len(members) != 4 {
		t.Fatalf("Members() returned %d entries, want 4", len(members))
	}
	wantUncomp := []int64{0, 32, 64, 96}
	blob := buf.Bytes()
	for i, m := range members {
		if m.UncompOff != wantUncomp[i] {
			t.Errorf("member %d UncompOff = %d, want %d", i, m.UncompOff, wantUncomp[i])
		}
		if blob[m.CompOff] != 0x1f || blob[m.CompOff+1] != 0x8b {
			t.Errorf("member %d CompOff %d does not point at a gzip header", i, m.CompOff)
		}
	}

	got := decompressBytes(t, Gzip, blob, WithMultistream(true))
	if !bytes.Equal(got, data) {
		t.Errorf("multistream decode of rotated stream corrupted data")
	}

	// Without multistream only the first member surfaces.
	first := decompressBytes(t, Gzip, blob)
	if !bytes.Equal(first, data[:32]) {
		t.Errorf("single-member decode = %d bytes, want the first 32", len(first))
	}
}

// TestWriter_MemberRotation_ExactFit writes a payload that is a whole
// number of members and checks no empty member trails it.
func TestWriter_MemberRotation_ExactFit(t *testing.T) {
	data := bytes.Repeat([]byte{7}, 64)
	var buf bytes.Buffer
	zw, err := NewWriter(&buf, Gzip, WithMemberSize(32))
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := len(zw.Members()); got != 2 {
		t.Errorf("Members() returned %d entries, want 2", got)
	}
	got := decompressBytes(t, Gzip, buf.Bytes(), WithMultistream(true))
	if !bytes.Equal(got, data) {
		t.Errorf("round trip corrupted data")
	}
}

func TestWriter_HeaderMetadata(t *testing.T) {
	mtime := time.Unix(1700000000, 0)
	var buf bytes.Buffer
	zw, err := NewWriter(&buf, Gzip,
		WithName("report.txt"),
		WithComment("nightly export"),
		WithExtra([]byte{0x01, 0x02}),
		WithModTime(mtime),
		WithOS(3),
	)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if _, err := zw.Write([]byte("content")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	zr, err := NewReader(&buf, Gzip)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	defer zr.Close()
	hdr := zr.Header()
	if hdr.Name != "report.txt" {
		t.Errorf("Header().Name = %q, want %q", hdr.Name, "report.txt")
	}
	if hdr.Comment != "nightly export" {
		t.Errorf("Header().Comment = %q, want %q", hdr.Comment, "nightly export")
	}
	if !bytes.Equal(hdr.Extra, []byte{0x01, 0x02}) {
		t.Errorf("Header().Extra = %v, want [1 2]", hdr.Extra)
	}
	if !hdr.ModTime.Equal(mtime) {
		t.Errorf("Header().ModTime = %v, want %v", hdr.ModTime, mtime)
	}
	if hdr.OS != 3 {
		t.Errorf("Header().OS = %d, want 3", hdr.OS)
	}
}
