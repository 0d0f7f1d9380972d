package indicator

import (
	"github.com/quantfold/backtest/internal/types"
	"github.com/quantfold/backtest/pkg/errors"
)

// SMA implements an incremental Simple Moving Average over a fixed-size
// ring buffer of closes.
type SMA struct {
	period int
	buffer []float64
	head   int
	count  int
	sum    float64
}

// NewSMA creates an SMA calculator for the given period.
func NewSMA(period int) (Indicator, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "SMA period must be a positive integer, got %d", period)
	}

	return &SMA{
		period: period,
		buffer: make([]float64, period),
		head:   0,
		count:  0,
		sum:    0,
	}, nil
}

// Name returns the name of the indicator.
func (s *SMA) Name() types.IndicatorType {
	return types.IndicatorTypeSMA
}

// Update implements the Indicator interface.
func (s *SMA) Update(candle types.MarketData) types.IndicatorSnapshot {
	if s.count == s.period {
		s.sum -= s.buffer[s.head]
	} else {
		s.count++
	}

	s.buffer[s.head] = candle.Close
	s.sum += candle.Close
	s.head = (s.head + 1) % s.period

	if s.count < s.period {
		return types.IndicatorSnapshot{Valid: false, Value: 0, Aux: nil}
	}

	return types.IndicatorSnapshot{Valid: true, Value: s.sum / float64(s.period), Aux: nil}
}

// Reset implements the Indicator interface.
func (s *SMA) Reset() {
	s.buffer = make([]float64, s.period)
	s.head = 0
	s.count = 0
	s.sum = 0
}
