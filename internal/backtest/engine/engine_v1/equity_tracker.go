package engine

import (
	"time"

	"github.com/quantfold/backtest/internal/types"
)

// EquityTracker records the mark-to-market account value after every candle
// and maintains the running peak and maximum drawdown incrementally. The
// maximum drawdown is non-decreasing across a run and is always computed
// against the current peak, never a stale one.
type EquityTracker struct {
	curve              []types.EquityPoint
	peak               float64
	maxDrawdownPercent float64
}

// NewEquityTracker creates a tracker with capacity for the expected number
// of candles.
func NewEquityTracker(capacity int) *EquityTracker {
	return &EquityTracker{
		curve:              make([]types.EquityPoint, 0, capacity),
		peak:               0,
		maxDrawdownPercent: 0,
	}
}

// Record appends one equity point and updates peak and drawdown.
func (t *EquityTracker) Record(timestamp time.Time, equity float64) {
	t.curve = append(t.curve, types.EquityPoint{Time: timestamp, Equity: equity})

	if equity > t.peak {
		t.peak = equity
	}

	if t.peak > 0 {
		drawdown := (t.peak - equity) / t.peak * 100
		if drawdown > t.maxDrawdownPercent {
			t.maxDrawdownPercent = drawdown
		}
	}
}

// Curve returns the recorded equity curve.
func (t *EquityTracker) Curve() []types.EquityPoint {
	return t.curve
}

// PeakEquity returns the running peak.
func (t *EquityTracker) PeakEquity() float64 {
	return t.peak
}

// MaxDrawdownPercent returns the maximum drawdown observed so far.
func (t *EquityTracker) MaxDrawdownPercent() float64 {
	return t.maxDrawdownPercent
}
