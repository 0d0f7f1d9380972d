package indicator

import (
	"github.com/quantfold/backtest/internal/types"
	"github.com/quantfold/backtest/pkg/errors"
)

// RSI implements an incremental Relative Strength Index using Wilder's
// smoothing. The first average gain/loss is seeded from the first period
// price changes, which requires period+1 candles; until then the snapshot
// is invalid. When the average loss is zero the RSI is defined as 100
// rather than propagating a division error.
type RSI struct {
	period    int
	count     int
	prevClose float64
	gainSum   float64
	lossSum   float64
	avgGain   float64
	avgLoss   float64
}

// NewRSI creates an RSI calculator for the given period.
func NewRSI(period int) (Indicator, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "RSI period must be a positive integer, got %d", period)
	}

	return &RSI{
		period:    period,
		count:     0,
		prevClose: 0,
		gainSum:   0,
		lossSum:   0,
		avgGain:   0,
		avgLoss:   0,
	}, nil
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Update implements the Indicator interface.
func (r *RSI) Update(candle types.MarketData) types.IndicatorSnapshot {
	r.count++

	if r.count == 1 {
		r.prevClose = candle.Close

		return types.IndicatorSnapshot{Valid: false, Value: 0, Aux: nil}
	}

	change := candle.Close - r.prevClose
	r.prevClose = candle.Close

	gain := 0.0
	loss := 0.0

	if change > 0 {
		gain = change
	} else {
		loss = -change
	}

	changes := r.count - 1

	switch {
	case changes < r.period:
		r.gainSum += gain
		r.lossSum += loss

		return types.IndicatorSnapshot{Valid: false, Value: 0, Aux: nil}
	case changes == r.period:
		r.gainSum += gain
		r.lossSum += loss
		r.avgGain = r.gainSum / float64(r.period)
		r.avgLoss = r.lossSum / float64(r.period)
	default:
		// Wilder's smoothing
		r.avgGain = (r.avgGain*float64(r.period-1) + gain) / float64(r.period)
		r.avgLoss = (r.avgLoss*float64(r.period-1) + loss) / float64(r.period)
	}

	if r.avgLoss == 0 {
		return types.IndicatorSnapshot{Valid: true, Value: 100, Aux: nil}
	}

	rs := r.avgGain / r.avgLoss
	rsi := 100 - (100 / (1 + rs))

	return types.IndicatorSnapshot{Valid: true, Value: rsi, Aux: nil}
}

// Reset implements the Indicator interface.
func (r *RSI) Reset() {
	r.count = 0
	r.prevClose = 0
	r.gainSum = 0
	r.lossSum = 0
	r.avgGain = 0
	r.avgLoss = 0
}
