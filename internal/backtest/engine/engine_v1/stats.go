package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantfold/backtest/internal/types"
)

// aggregateInput carries everything the results aggregator reduces.
type aggregateInput struct {
	config           BacktestConfig
	strategyName     string
	trades           []types.Trade
	equityCurve      []types.EquityPoint
	maxDrawdown      float64
	finalBalance     float64
	openPosition     *types.Position
	processedCandles int
	incomplete       bool
}

// aggregateResult reduces the trade ledger and equity curve into the
// summary statistics of a BacktestResult. Every statistic has a defined
// zero value for an empty ledger; nothing is ever NaN.
func aggregateResult(input aggregateInput) types.BacktestResult {
	result := types.BacktestResult{
		Timestamp:        time.Now(),
		StrategyName:     input.strategyName,
		Symbol:           input.config.Symbol,
		Timeframe:        input.config.Timeframe,
		InitialBalance:   input.config.InitialBalance,
		FinalBalance:     input.finalBalance,
		Trades:           input.trades,
		EquityCurve:      input.equityCurve,
		TotalTrades:      len(input.trades),
		OpenPosition:     input.openPosition,
		ProcessedCandles: input.processedCandles,
		Incomplete:       input.incomplete,
	}

	if input.config.InitialBalance > 0 {
		initial := decimal.NewFromFloat(input.config.InitialBalance)
		returnPercent := decimal.NewFromFloat(input.finalBalance).
			Sub(initial).
			Div(initial).
			Mul(decimal.NewFromInt(100))
		result.TotalReturnPercent, _ = returnPercent.Float64()
	}

	result.MaxDrawdownPercent = input.maxDrawdown

	if len(input.trades) == 0 {
		return result
	}

	pnlSum := decimal.Zero
	best := input.trades[0].PnL
	worst := input.trades[0].PnL

	for _, trade := range input.trades {
		pnlSum = pnlSum.Add(decimal.NewFromFloat(trade.PnL))

		switch {
		case trade.PnL > 0:
			result.WinningTrades++
		case trade.PnL < 0:
			result.LosingTrades++
		}

		if trade.PnL > best {
			best = trade.PnL
		}

		if trade.PnL < worst {
			worst = trade.PnL
		}
	}

	result.BestTrade = best
	result.WorstTrade = worst
	result.WinRate = float64(result.WinningTrades) / float64(result.TotalTrades) * 100
	result.AverageTrade, _ = pnlSum.Div(decimal.NewFromInt(int64(result.TotalTrades))).Float64()

	return result
}
