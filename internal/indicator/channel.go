package indicator

import (
	"github.com/quantfold/backtest/internal/types"
	"github.com/quantfold/backtest/pkg/errors"
)

// AuxChannelLow is the Aux key carrying the channel low next to the
// primary channel-high value.
const AuxChannelLow = "low"

// Channel implements an incremental price channel: the highest high and
// lowest low over the trailing period candles, current candle included.
// Breakout strategies compare the close against the previous candle's
// snapshot so a fresh high does not trivially break its own channel.
type Channel struct {
	period int
	highs  []float64
	lows   []float64
	head   int
	count  int
}

// NewChannel creates a channel calculator for the given period.
func NewChannel(period int) (Indicator, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "channel period must be a positive integer, got %d", period)
	}

	return &Channel{
		period: period,
		highs:  make([]float64, period),
		lows:   make([]float64, period),
		head:   0,
		count:  0,
	}, nil
}

// Name returns the name of the indicator.
func (c *Channel) Name() types.IndicatorType {
	return types.IndicatorTypeChannel
}

// Update implements the Indicator interface.
func (c *Channel) Update(candle types.MarketData) types.IndicatorSnapshot {
	c.highs[c.head] = candle.High
	c.lows[c.head] = candle.Low
	c.head = (c.head + 1) % c.period

	if c.count < c.period {
		c.count++
	}

	if c.count < c.period {
		return types.IndicatorSnapshot{Valid: false, Value: 0, Aux: nil}
	}

	high := c.highs[0]
	low := c.lows[0]

	for i := 1; i < c.period; i++ {
		if c.highs[i] > high {
			high = c.highs[i]
		}

		if c.lows[i] < low {
			low = c.lows[i]
		}
	}

	return types.IndicatorSnapshot{
		Valid: true,
		Value: high,
		Aux:   map[string]float64{AuxChannelLow: low},
	}
}

// Reset implements the Indicator interface.
func (c *Channel) Reset() {
	c.highs = make([]float64, c.period)
	c.lows = make([]float64, c.period)
	c.head = 0
	c.count = 0
}
