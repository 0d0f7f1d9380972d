package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/quantfold/backtest/internal/logger"
	"github.com/quantfold/backtest/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PositionManager is the per-run state machine tracking cash and at most
// one open position. All accounting runs on decimals so that replaying the
// same input reproduces bit-identical results. Transitions:
//
//	FLAT --(enter intent)--> OPEN
//	OPEN --(exit intent | stop breached | take-profit breached)--> FLAT
type PositionManager struct {
	log    *logger.Logger
	symbol string

	sizeFraction       decimal.Decimal
	stopFraction       decimal.Decimal
	takeProfitFraction decimal.Decimal

	cash     decimal.Decimal
	position optional.Option[types.Position]
	trades   []types.Trade
}

// NewPositionManager creates the state machine for one run.
func NewPositionManager(config BacktestConfig, log *logger.Logger) *PositionManager {
	hundred := decimal.NewFromInt(100)

	return &PositionManager{
		log:                log,
		symbol:             config.Symbol,
		sizeFraction:       decimal.NewFromFloat(config.PositionSizePercent).Div(hundred),
		stopFraction:       decimal.NewFromFloat(config.StopLossPercent).Div(hundred),
		takeProfitFraction: decimal.NewFromFloat(config.TakeProfitPercent).Div(hundred),
		cash:               decimal.NewFromFloat(config.InitialBalance),
		position:           optional.None[types.Position](),
		trades:             nil,
	}
}

// Position returns the open position, if any.
func (m *PositionManager) Position() optional.Option[types.Position] {
	return m.position
}

// CashBalance returns the free cash balance.
func (m *PositionManager) CashBalance() float64 {
	cash, _ := m.cash.Float64()

	return cash
}

// Trades returns the ledger of closed trades.
func (m *PositionManager) Trades() []types.Trade {
	return m.trades
}

// Equity returns the mark-to-market account value at the given close:
// cash plus the liquidation value of the open position, if any.
func (m *PositionManager) Equity(closePrice float64) float64 {
	equity := m.cash

	if m.position.IsSome() {
		equity = equity.Add(decimal.NewFromFloat(m.position.Unwrap().MarketValue(closePrice)))
	}

	value, _ := equity.Float64()

	return value
}

// OpenPosition enters at the candle close and arms the protective levels.
// A zero or negative entry price is a degenerate candle: the entry is
// skipped rather than failing the run.
func (m *PositionManager) OpenPosition(candle types.MarketData, side types.PositionSide) {
	if m.position.IsSome() {
		return
	}

	if candle.Close <= 0 {
		m.log.Warn("Skipping entry on non-positive price",
			zap.Float64("close", candle.Close),
			zap.Time("time", candle.Time),
		)

		return
	}

	entryPrice := decimal.NewFromFloat(candle.Close)
	quantity := m.cash.Mul(m.sizeFraction).Div(entryPrice)

	if quantity.IsZero() {
		return
	}

	cost := quantity.Mul(entryPrice)
	m.cash = m.cash.Sub(cost)

	one := decimal.NewFromInt(1)

	var stopPrice, takeProfitPrice decimal.Decimal

	if side == types.PositionSideShort {
		stopPrice = entryPrice.Mul(one.Add(m.stopFraction))
		takeProfitPrice = entryPrice.Mul(one.Sub(m.takeProfitFraction))
	} else {
		stopPrice = entryPrice.Mul(one.Sub(m.stopFraction))
		takeProfitPrice = entryPrice.Mul(one.Add(m.takeProfitFraction))
	}

	quantityValue, _ := quantity.Float64()
	stopValue, _ := stopPrice.Float64()
	takeProfitValue, _ := takeProfitPrice.Float64()

	m.position = optional.Some(types.Position{
		Symbol:          m.symbol,
		Side:            side,
		EntryPrice:      candle.Close,
		Quantity:        quantityValue,
		EntryTime:       candle.Time,
		StopPrice:       stopValue,
		TakeProfitPrice: takeProfitValue,
	})

	m.log.Debug("Position opened",
		zap.String("symbol", m.symbol),
		zap.String("side", string(side)),
		zap.Float64("entry_price", candle.Close),
		zap.Float64("quantity", quantityValue),
		zap.Float64("stop_price", stopValue),
		zap.Float64("take_profit_price", takeProfitValue),
	)
}

// ClosePosition exits at the given price, credits the proceeds back to
// cash, and appends the trade to the ledger. The exit price is the exact
// stop/take-profit level for risk-triggered exits and the candle close for
// signal exits.
func (m *PositionManager) ClosePosition(exitPrice float64, exitTime time.Time, reason types.ExitReason) {
	if m.position.IsNone() {
		return
	}

	position := m.position.Unwrap()

	pnl := types.CalculatePnL(position.Side, position.EntryPrice, exitPrice, position.Quantity)
	entryCost := decimal.NewFromFloat(position.Quantity).Mul(decimal.NewFromFloat(position.EntryPrice))

	// Exit credits the entry cost plus the signed PnL; for a long position
	// this reduces to quantity * exitPrice.
	m.cash = m.cash.Add(entryCost).Add(decimal.NewFromFloat(pnl))

	pnlPercent := 0.0
	if !entryCost.IsZero() {
		pnlPercent, _ = decimal.NewFromFloat(pnl).Div(entryCost).Mul(decimal.NewFromInt(100)).Float64()
	}

	trade := types.Trade{
		ID:              uuid.New().String(),
		Symbol:          position.Symbol,
		Side:            position.Side,
		EntryTime:       position.EntryTime,
		ExitTime:        exitTime,
		EntryPrice:      position.EntryPrice,
		ExitPrice:       exitPrice,
		Quantity:        position.Quantity,
		PnL:             pnl,
		PnLPercent:      pnlPercent,
		ExitReason:      reason,
		DurationSeconds: int64(exitTime.Sub(position.EntryTime).Seconds()),
	}

	m.trades = append(m.trades, trade)
	m.position = optional.None[types.Position]()

	m.log.Debug("Position closed",
		zap.String("symbol", trade.Symbol),
		zap.String("exit_reason", string(reason)),
		zap.Float64("exit_price", exitPrice),
		zap.Float64("pnl", pnl),
	)
}
