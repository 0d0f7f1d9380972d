package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExitReason records why a position was closed.
type ExitReason string

const (
	ExitReasonSignal     ExitReason = "signal"
	ExitReasonStopLoss   ExitReason = "stop_loss"
	ExitReasonTakeProfit ExitReason = "take_profit"
	// ExitReasonEndOfData is only produced by an explicit force-close at the
	// end of the series; the runner never auto-closes.
	ExitReasonEndOfData ExitReason = "end_of_data"
)

// Trade is the immutable record of a closed position. It is appended to the
// trade ledger and never mutated afterwards.
type Trade struct {
	ID              string       `yaml:"id" csv:"id"`
	Symbol          string       `yaml:"symbol" csv:"symbol"`
	Side            PositionSide `yaml:"side" csv:"side"`
	EntryTime       time.Time    `yaml:"entry_time" csv:"entry_time"`
	ExitTime        time.Time    `yaml:"exit_time" csv:"exit_time"`
	EntryPrice      float64      `yaml:"entry_price" csv:"entry_price"`
	ExitPrice       float64      `yaml:"exit_price" csv:"exit_price"`
	Quantity        float64      `yaml:"quantity" csv:"quantity"`
	PnL             float64      `yaml:"pnl" csv:"pnl"`
	PnLPercent      float64      `yaml:"pnl_percent" csv:"pnl_percent"`
	ExitReason      ExitReason   `yaml:"exit_reason" csv:"exit_reason"`
	DurationSeconds int64        `yaml:"duration_seconds" csv:"duration_seconds"`
}

// CalculatePnL computes the signed profit of a round trip using decimal
// arithmetic so repeated runs are bit-identical.
func CalculatePnL(side PositionSide, entryPrice, exitPrice, quantity float64) float64 {
	diff := decimal.NewFromFloat(exitPrice).Sub(decimal.NewFromFloat(entryPrice))
	if side == PositionSideShort {
		diff = diff.Neg()
	}

	pnl, _ := diff.Mul(decimal.NewFromFloat(quantity)).Float64()

	return pnl
}
