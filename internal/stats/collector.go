// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Stream lifecycle metrics, counted when an adapter finishes a
	// stream cleanly.
	MetricCompressStreams   = "zstream_compress_streams_total"
	MetricDecompressStreams = "zstream_decompress_streams_total"

	// Byte flow metrics. "in" and "out" are from the adapter's point
	// of view: a compressor's in is uncompressed, a decompressor's in
	// is compressed.
	MetricCompressBytesIn    = "zstream_compress_bytes_in_total"
	MetricCompressBytesOut   = "zstream_compress_bytes_out_total"
	MetricDecompressBytesIn  = "zstream_decompress_bytes_in_total"
	MetricDecompressBytesOut = "zstream_decompress_bytes_out_total"

	// Failure metrics.
	MetricHeaderErrors   = "zstream_header_errors_total"
	MetricChecksumErrors = "zstream_checksum_errors_total"
	MetricCodecErrors    = "zstream_codec_errors_total"

	// MetricCompressionRatio observes compressed size over uncompressed
	// size for each finished compress stream.
	MetricCompressionRatio = "zstream_compression_ratio"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
