package strategy

import (
	"fmt"

	"github.com/moznion/go-optional"
	"github.com/quantfold/backtest/internal/indicator"
	"github.com/quantfold/backtest/internal/types"
	"github.com/quantfold/backtest/pkg/errors"
)

const (
	emaCrossKeyFast = "ema_fast"
	emaCrossKeySlow = "ema_slow"
)

// EMACross enters long when the fast EMA first exceeds the slow EMA and
// exits when the fast EMA falls back below it.
type EMACross struct {
	fastPeriod int
	slowPeriod int
}

// NewEMACross creates the strategy. Parameters: fast_period (default 9),
// slow_period (default 21).
func NewEMACross(params map[string]any) (Strategy, error) {
	fastPeriod, err := intParam(params, "fast_period", 9)
	if err != nil {
		return nil, err
	}

	slowPeriod, err := intParam(params, "slow_period", 21)
	if err != nil {
		return nil, err
	}

	if fastPeriod <= 0 || slowPeriod <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "EMA periods must be positive, got fast=%d slow=%d", fastPeriod, slowPeriod)
	}

	if fastPeriod >= slowPeriod {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "fast period %d must be below slow period %d", fastPeriod, slowPeriod)
	}

	return &EMACross{
		fastPeriod: fastPeriod,
		slowPeriod: slowPeriod,
	}, nil
}

// Name implements the Strategy interface.
func (s *EMACross) Name() string {
	return fmt.Sprintf("EMACross(%d/%d)", s.fastPeriod, s.slowPeriod)
}

// Indicators implements the Strategy interface.
func (s *EMACross) Indicators() []indicator.Spec {
	return []indicator.Spec{
		{Key: emaCrossKeyFast, Type: types.IndicatorTypeEMA, Period: s.fastPeriod},
		{Key: emaCrossKeySlow, Type: types.IndicatorTypeEMA, Period: s.slowPeriod},
	}
}

// Evaluate implements the Strategy interface.
func (s *EMACross) Evaluate(candle types.MarketData, view indicator.View, position optional.Option[types.Position]) (Intent, error) {
	fast := view.Current(emaCrossKeyFast)
	slow := view.Current(emaCrossKeySlow)

	// Warming up means no signal.
	if fast.IsNone() || slow.IsNone() {
		return NoAction(), nil
	}

	fastValue := fast.Unwrap()
	slowValue := slow.Unwrap()

	if position.IsNone() {
		// "First exceeds": the previous candle must not already have the
		// fast EMA above the slow one. A missing previous snapshot counts
		// as not-above, so the first valid candle can trigger an entry.
		prevAbove := false

		prevFast := view.Previous(emaCrossKeyFast)
		prevSlow := view.Previous(emaCrossKeySlow)

		if prevFast.IsSome() && prevSlow.IsSome() {
			prevAbove = prevFast.Unwrap() > prevSlow.Unwrap()
		}

		if fastValue > slowValue && !prevAbove {
			return Intent{
				Enter:  true,
				Exit:   false,
				Side:   types.PositionSideLong,
				Reason: fmt.Sprintf("fast EMA %.4f crossed above slow EMA %.4f", fastValue, slowValue),
			}, nil
		}

		return NoAction(), nil
	}

	if fastValue < slowValue {
		return Intent{
			Enter:  false,
			Exit:   true,
			Side:   types.PositionSideLong,
			Reason: fmt.Sprintf("fast EMA %.4f crossed below slow EMA %.4f", fastValue, slowValue),
		}, nil
	}

	return NoAction(), nil
}
