// Package logger provides a stats collector that writes metric updates
// to a zap logger. It is meant for debugging stream behavior; use the
// prometheus collector when the numbers need to be scraped.
package logger

import (
	"go.uber.org/zap"

	"github.com/zstreamio/zstream/internal/stats"
)

// Collector logs every metric update at debug level.
type Collector struct {
	log *zap.Logger
}

// Compile-time check that Collector implements stats.Collector.
var _ stats.Collector = (*Collector)(nil)

// New returns a collector that writes metrics to logger.
// A nil logger disables output.
func New(logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{log: logger}
}

// IncCounter logs a counter increment.
func (c *Collector) IncCounter(name string, delta int64) {
	c.log.Debug("counter", zap.String("metric", name), zap.Int64("delta", delta))
}

// SetGauge logs a gauge update.
func (c *Collector) SetGauge(name string, value int64) {
	c.log.Debug("gauge", zap.String("metric", name), zap.Int64("value", value))
}

// ObserveHistogram logs a histogram observation.
func (c *Collector) ObserveHistogram(name string, value float64) {
	c.log.Debug("histogram", zap.String("metric", name), zap.Float64("value", value))
}
