package indicator

import (
	"github.com/quantfold/backtest/internal/types"
	"github.com/quantfold/backtest/pkg/errors"
)

// EMA implements an incremental Exponential Moving Average. The first value
// is seeded with the simple average of the first period closes; until then
// the snapshot is invalid (warming up). Subsequent updates apply
// ema = close*k + ema*(1-k) with k = 2/(period+1).
type EMA struct {
	period int
	alpha  float64
	count  int
	sum    float64
	ema    float64
}

// NewEMA creates an EMA calculator for the given period.
func NewEMA(period int) (Indicator, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "EMA period must be a positive integer, got %d", period)
	}

	return &EMA{
		period: period,
		alpha:  2.0 / float64(period+1),
		count:  0,
		sum:    0,
		ema:    0,
	}, nil
}

// Name returns the name of the indicator.
func (e *EMA) Name() types.IndicatorType {
	return types.IndicatorTypeEMA
}

// Update implements the Indicator interface.
func (e *EMA) Update(candle types.MarketData) types.IndicatorSnapshot {
	e.count++

	if e.count < e.period {
		e.sum += candle.Close

		return types.IndicatorSnapshot{Valid: false, Value: 0, Aux: nil}
	}

	if e.count == e.period {
		// Seed with SMA to match pandas ewm with adjust=false
		e.sum += candle.Close
		e.ema = e.sum / float64(e.period)
	} else {
		e.ema = candle.Close*e.alpha + e.ema*(1-e.alpha)
	}

	return types.IndicatorSnapshot{Valid: true, Value: e.ema, Aux: nil}
}

// Reset implements the Indicator interface.
func (e *EMA) Reset() {
	e.count = 0
	e.sum = 0
	e.ema = 0
}
