package types

import (
	"time"

	"github.com/quantfold/backtest/pkg/errors"
)

// MarketData represents a single OHLCV candle for one symbol/timeframe.
// Candles are immutable once produced by the data source.
type MarketData struct {
	Time   time.Time `csv:"time" yaml:"time"`
	Open   float64   `csv:"open" yaml:"open"`
	High   float64   `csv:"high" yaml:"high"`
	Low    float64   `csv:"low" yaml:"low"`
	Close  float64   `csv:"close" yaml:"close"`
	Volume float64   `csv:"volume" yaml:"volume"`
}

// Validate checks the internal consistency of a single candle.
func (m MarketData) Validate() error {
	if m.Time.IsZero() {
		return errors.New(errors.ErrCodeInvalidCandle, "candle has zero timestamp")
	}

	if m.High < m.Open || m.High < m.Close {
		return errors.Newf(errors.ErrCodeInvalidCandle, "candle high %f below open/close at %s", m.High, m.Time)
	}

	if m.Low > m.Open || m.Low > m.Close {
		return errors.Newf(errors.ErrCodeInvalidCandle, "candle low %f above open/close at %s", m.Low, m.Time)
	}

	if m.Volume < 0 {
		return errors.Newf(errors.ErrCodeInvalidCandle, "candle volume %f is negative at %s", m.Volume, m.Time)
	}

	return nil
}

// ValidateSeries checks a full candle series before a run starts.
// Timestamps must be strictly increasing. An empty series is valid;
// the engine produces an empty result for it.
func ValidateSeries(candles []MarketData) error {
	for i, candle := range candles {
		if err := candle.Validate(); err != nil {
			return err
		}

		if i > 0 && !candle.Time.After(candles[i-1].Time) {
			return errors.Newf(errors.ErrCodeNonMonotonicSeries,
				"candle timestamps not strictly increasing: %s followed by %s",
				candles[i-1].Time, candle.Time)
		}
	}

	return nil
}
