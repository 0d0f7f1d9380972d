package writer

import (
	"github.com/quantfold/backtest/internal/types"
)

// MarketDataWriter defines the interface for writing downloaded candles to
// a destination the backtest datasource can read.
type MarketDataWriter interface {
	// Initialize sets up the writer, potentially creating tables or files.
	Initialize() error
	// Write persists a single candle.
	Write(candle types.MarketData) error
	// Finalize completes the writing process and returns the output path.
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
}
