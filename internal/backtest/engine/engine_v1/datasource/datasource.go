package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/quantfold/backtest/internal/types"
)

// DataSource supplies the time-ordered candle series a backtest consumes.
// The engine never reads files or the network itself; everything flows
// through this interface.
type DataSource interface {
	// Initialize points the data source at the given market data file.
	// Parquet and CSV files are supported by the DuckDB implementation.
	Initialize(path string) error
	// GetRange returns the candles inside the optional time window in
	// ascending timestamp order.
	GetRange(start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.MarketData, error)
	// Count returns the number of candles inside the optional time window.
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// Close releases any resources held by the data source.
	Close() error
}

// InMemoryDataSource serves candles from a slice. It backs library callers
// that already hold the series and most engine tests.
type InMemoryDataSource struct {
	candles []types.MarketData
}

// NewInMemoryDataSource creates a data source over the given candles. The
// slice must already be in ascending timestamp order.
func NewInMemoryDataSource(candles []types.MarketData) *InMemoryDataSource {
	return &InMemoryDataSource{candles: candles}
}

// Initialize implements DataSource. It is a no-op for the in-memory source.
func (s *InMemoryDataSource) Initialize(path string) error {
	return nil
}

// GetRange implements DataSource.
func (s *InMemoryDataSource) GetRange(start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.MarketData, error) {
	result := make([]types.MarketData, 0, len(s.candles))

	for _, candle := range s.candles {
		if start.IsSome() && candle.Time.Before(start.Unwrap()) {
			continue
		}

		if end.IsSome() && candle.Time.After(end.Unwrap()) {
			continue
		}

		result = append(result, candle)
	}

	return result, nil
}

// Count implements DataSource.
func (s *InMemoryDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	candles, err := s.GetRange(start, end)
	if err != nil {
		return 0, err
	}

	return len(candles), nil
}

// Close implements DataSource.
func (s *InMemoryDataSource) Close() error {
	return nil
}
