package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// PositionSide is the direction of an open position.
type PositionSide string

const (
	PositionSideLong  PositionSide = "long"
	PositionSideShort PositionSide = "short"
)

// Position represents the single open position of a run. It exists only
// while a trade is open; the position manager converts it into a Trade on
// exit.
type Position struct {
	Symbol          string       `yaml:"symbol"`
	Side            PositionSide `yaml:"side"`
	EntryPrice      float64      `yaml:"entry_price"`
	Quantity        float64      `yaml:"quantity"`
	EntryTime       time.Time    `yaml:"entry_time"`
	StopPrice       float64      `yaml:"stop_price"`
	TakeProfitPrice float64      `yaml:"take_profit_price"`
}

// UnrealizedPnL returns the open profit at the given mark price.
func (p Position) UnrealizedPnL(price float64) float64 {
	qty := decimal.NewFromFloat(p.Quantity)
	diff := decimal.NewFromFloat(price).Sub(decimal.NewFromFloat(p.EntryPrice))

	if p.Side == PositionSideShort {
		diff = diff.Neg()
	}

	pnl, _ := qty.Mul(diff).Float64()

	return pnl
}

// MarketValue returns the liquidation value of the position at the given
// mark price. Entry deducts quantity*entryPrice from cash, so the value
// that flows back on exit is quantity*entryPrice plus the signed PnL. For
// a long position this reduces to quantity*price.
func (p Position) MarketValue(price float64) float64 {
	entry := decimal.NewFromFloat(p.Quantity).Mul(decimal.NewFromFloat(p.EntryPrice))
	value, _ := entry.Add(decimal.NewFromFloat(p.UnrealizedPnL(price))).Float64()

	return value
}
