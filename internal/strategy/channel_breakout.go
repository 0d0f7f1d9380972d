package strategy

import (
	"fmt"

	"github.com/moznion/go-optional"
	"github.com/quantfold/backtest/internal/indicator"
	"github.com/quantfold/backtest/internal/types"
	"github.com/quantfold/backtest/pkg/errors"
)

const channelBreakoutKey = "channel"

// ChannelBreakout enters long when the close breaks above the trailing
// N-bar high and exits when the close falls below the trailing N-bar low.
// It replaces the non-functional randomized breakout placeholder of the
// original dashboard with a real rule.
type ChannelBreakout struct {
	period int
}

// NewChannelBreakout creates the strategy. Parameters: period (default 20).
func NewChannelBreakout(params map[string]any) (Strategy, error) {
	period, err := intParam(params, "period", 20)
	if err != nil {
		return nil, err
	}

	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "channel period must be positive, got %d", period)
	}

	return &ChannelBreakout{period: period}, nil
}

// Name implements the Strategy interface.
func (s *ChannelBreakout) Name() string {
	return fmt.Sprintf("ChannelBreakout(%d)", s.period)
}

// Indicators implements the Strategy interface.
func (s *ChannelBreakout) Indicators() []indicator.Spec {
	return []indicator.Spec{
		{Key: channelBreakoutKey, Type: types.IndicatorTypeChannel, Period: s.period},
	}
}

// Evaluate implements the Strategy interface.
func (s *ChannelBreakout) Evaluate(candle types.MarketData, view indicator.View, position optional.Option[types.Position]) (Intent, error) {
	// Compare against the previous candle's channel so a fresh high does
	// not break the channel it just extended.
	snapshot, ok := view.PreviousSnapshot(channelBreakoutKey)
	if !ok || !snapshot.Valid {
		return NoAction(), nil
	}

	if position.IsNone() {
		if candle.Close > snapshot.Value {
			return Intent{
				Enter:  true,
				Exit:   false,
				Side:   types.PositionSideLong,
				Reason: fmt.Sprintf("close %.4f broke above %d-bar high %.4f", candle.Close, s.period, snapshot.Value),
			}, nil
		}

		return NoAction(), nil
	}

	low, ok := snapshot.Aux[indicator.AuxChannelLow]
	if ok && candle.Close < low {
		return Intent{
			Enter:  false,
			Exit:   true,
			Side:   types.PositionSideLong,
			Reason: fmt.Sprintf("close %.4f fell below %d-bar low %.4f", candle.Close, s.period, low),
		}, nil
	}

	return NoAction(), nil
}
