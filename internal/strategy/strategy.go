// Package strategy defines the pluggable decision layer of the backtest
// engine. A strategy is a pure function of the current candle, the
// indicator view, and the open position; the runner owns all state.
package strategy

import (
	"github.com/moznion/go-optional"
	"github.com/quantfold/backtest/internal/indicator"
	"github.com/quantfold/backtest/internal/types"
)

// Intent is the decision a strategy emits for one candle. Enter is ignored
// while a position is open, Exit while flat.
type Intent struct {
	Enter  bool
	Exit   bool
	Side   types.PositionSide
	Reason string
}

// NoAction is the empty intent.
func NoAction() Intent {
	return Intent{Enter: false, Exit: false, Side: "", Reason: ""}
}

// Strategy is implemented by every trading strategy. Evaluate must be pure:
// crossings are detected from the previous snapshots the view carries, not
// from state kept inside the strategy. A warming-up indicator reads as None
// and must be treated as "no signal", never as zero. New strategies are
// added through the registry without touching the runner.
type Strategy interface {
	// Name returns the human-readable strategy name.
	Name() string
	// Indicators returns the calculator specs the runner must maintain for
	// this strategy.
	Indicators() []indicator.Spec
	// Evaluate emits the intent for the current candle.
	Evaluate(candle types.MarketData, view indicator.View, position optional.Option[types.Position]) (Intent, error)
}
