// Package zstreamfx provides an fx module wiring a shared zstream
// factory into an application.
package zstreamfx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/zstreamio/zstream"
	"github.com/zstreamio/zstream/internal/stats"
	"github.com/zstreamio/zstream/internal/stats/logger"
)

// Config holds configuration for the shared factory.
type Config struct {
	// Backend selects the compression engine by name.
	// Default is the first entry of zstream.Backends().
	Backend string

	// Level is the compression level, 1 through 9, or -2 for
	// Huffman-only encoding. The zero value selects the backend's
	// default level.
	Level int

	// Multistream makes readers decode concatenated gzip members as
	// one stream.
	Multistream bool

	// MemberSize, when positive, makes gzip writers start a new
	// member after this many uncompressed bytes.
	MemberSize int64
}

// Module provides a *zstream.Factory built from a Config.
// Requires a *zap.Logger to be provided.
var Module = fx.Module("zstream",
	fx.Provide(
		newStatsCollector,
		newFactory,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("zstream.stats"))
}

// Params holds dependencies for creating the factory.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
}

// Result holds the provided factory.
type Result struct {
	fx.Out

	Factory *zstream.Factory
}

func newFactory(p Params) (Result, error) {
	level := zstream.Level(p.Config.Level)
	if p.Config.Level == 0 {
		level = zstream.DefaultCompression
	}

	opts := []zstream.Option{
		zstream.WithLevel(level),
		zstream.WithStats(p.Collector),
		zstream.WithLogger(p.Logger.Named("zstream")),
	}
	if p.Config.Backend != "" {
		opts = append(opts, zstream.WithBackend(p.Config.Backend))
	}
	if p.Config.Multistream {
		opts = append(opts, zstream.WithMultistream(true))
	}
	if p.Config.MemberSize > 0 {
		opts = append(opts, zstream.WithMemberSize(p.Config.MemberSize))
	}

	factory, err := zstream.NewFactory(opts...)
	if err != nil {
		return Result{}, err
	}
	return Result{Factory: factory}, nil
}
