package strategy

import (
	"fmt"

	"github.com/moznion/go-optional"
	"github.com/quantfold/backtest/internal/indicator"
	"github.com/quantfold/backtest/internal/types"
	"github.com/quantfold/backtest/pkg/errors"
)

const rsiReversionKey = "rsi"

// RSIReversion is a mean-reversion strategy: it enters long when the RSI
// drops below the oversold threshold and exits when the RSI recovers above
// the overbought threshold.
type RSIReversion struct {
	period     int
	oversold   float64
	overbought float64
}

// NewRSIReversion creates the strategy. Parameters: period (default 14),
// oversold (default 30), overbought (default 70).
func NewRSIReversion(params map[string]any) (Strategy, error) {
	period, err := intParam(params, "period", 14)
	if err != nil {
		return nil, err
	}

	oversold, err := floatParam(params, "oversold", 30)
	if err != nil {
		return nil, err
	}

	overbought, err := floatParam(params, "overbought", 70)
	if err != nil {
		return nil, err
	}

	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "RSI period must be positive, got %d", period)
	}

	if oversold >= overbought {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "oversold threshold %.2f must be below overbought %.2f", oversold, overbought)
	}

	return &RSIReversion{
		period:     period,
		oversold:   oversold,
		overbought: overbought,
	}, nil
}

// Name implements the Strategy interface.
func (s *RSIReversion) Name() string {
	return fmt.Sprintf("RSIReversion(%d)", s.period)
}

// Indicators implements the Strategy interface.
func (s *RSIReversion) Indicators() []indicator.Spec {
	return []indicator.Spec{
		{Key: rsiReversionKey, Type: types.IndicatorTypeRSI, Period: s.period},
	}
}

// Evaluate implements the Strategy interface.
func (s *RSIReversion) Evaluate(candle types.MarketData, view indicator.View, position optional.Option[types.Position]) (Intent, error) {
	rsi := view.Current(rsiReversionKey)
	if rsi.IsNone() {
		return NoAction(), nil
	}

	value := rsi.Unwrap()

	if position.IsNone() {
		if value < s.oversold {
			return Intent{
				Enter:  true,
				Exit:   false,
				Side:   types.PositionSideLong,
				Reason: fmt.Sprintf("RSI oversold (value=%.2f)", value),
			}, nil
		}

		return NoAction(), nil
	}

	if value > s.overbought {
		return Intent{
			Enter:  false,
			Exit:   true,
			Side:   types.PositionSideLong,
			Reason: fmt.Sprintf("RSI overbought (value=%.2f)", value),
		}, nil
	}

	return NoAction(), nil
}
