package engine

import (
	"github.com/moznion/go-optional"
	"github.com/quantfold/backtest/internal/types"
)

// ForcedExit is a risk-triggered exit instruction. The fill happens at the
// exact protective level, not at the candle close, so simulated fills
// reflect the protective order price.
type ForcedExit struct {
	Price  float64
	Reason types.ExitReason
}

// RiskController evaluates the candle extremes against the open position's
// protective levels. It runs before the strategy on every candle with an
// open position and its exit takes precedence over any strategy exit.
type RiskController struct{}

// Check returns the forced exit for the candle, if any. The stop-loss is
// checked against the adverse extreme first, so when both levels are
// breachable within one candle the exit reason is always stop_loss.
func (RiskController) Check(position types.Position, candle types.MarketData) optional.Option[ForcedExit] {
	if position.Side == types.PositionSideShort {
		if candle.High >= position.StopPrice {
			return optional.Some(ForcedExit{Price: position.StopPrice, Reason: types.ExitReasonStopLoss})
		}

		if candle.Low <= position.TakeProfitPrice {
			return optional.Some(ForcedExit{Price: position.TakeProfitPrice, Reason: types.ExitReasonTakeProfit})
		}

		return optional.None[ForcedExit]()
	}

	if candle.Low <= position.StopPrice {
		return optional.Some(ForcedExit{Price: position.StopPrice, Reason: types.ExitReasonStopLoss})
	}

	if candle.High >= position.TakeProfitPrice {
		return optional.Some(ForcedExit{Price: position.TakeProfitPrice, Reason: types.ExitReasonTakeProfit})
	}

	return optional.None[ForcedExit]()
}
