package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EquityPoint is one sample of the mark-to-market account value; one is
// recorded per processed candle.
type EquityPoint struct {
	Time   time.Time `yaml:"time"`
	Equity float64   `yaml:"equity"`
}

// BacktestResult is the single output value of a run. The field set and
// semantics are the contract the display and persistence collaborators
// render and store.
type BacktestResult struct {
	// ID is the unique identifier of the run.
	ID string `yaml:"id"`
	// Timestamp is when the run was executed.
	Timestamp    time.Time `yaml:"timestamp"`
	StrategyName string    `yaml:"strategy_name"`
	Symbol       string    `yaml:"symbol"`
	Timeframe    string    `yaml:"timeframe"`

	InitialBalance float64 `yaml:"initial_balance"`
	// FinalBalance includes the mark-to-market value of a position still
	// open at the final candle.
	FinalBalance       float64 `yaml:"final_balance"`
	TotalReturnPercent float64 `yaml:"total_return_percent"`

	Trades      []Trade       `yaml:"trades"`
	EquityCurve []EquityPoint `yaml:"equity_curve"`

	TotalTrades        int     `yaml:"total_trades"`
	WinningTrades      int     `yaml:"winning_trades"`
	LosingTrades       int     `yaml:"losing_trades"`
	WinRate            float64 `yaml:"win_rate"`
	MaxDrawdownPercent float64 `yaml:"max_drawdown_percent"`
	AverageTrade       float64 `yaml:"average_trade"`
	BestTrade          float64 `yaml:"best_trade"`
	WorstTrade         float64 `yaml:"worst_trade"`

	// OpenPosition holds the position left open at the end of the series,
	// if any. It is valued inside FinalBalance but absent from Trades.
	OpenPosition *Position `yaml:"open_position,omitempty"`

	// ProcessedCandles counts the candles the pipeline completed. On a
	// cancelled run this is lower than the series length.
	ProcessedCandles int `yaml:"processed_candles"`
	// Incomplete flags a result produced by a cancelled run. Cancellation
	// is not an error; the partial result is returned as-is.
	Incomplete bool `yaml:"incomplete"`
}

// WriteResult serializes a result to a YAML file for downstream consumers.
func WriteResult(path string, result BacktestResult) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal backtest result to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backtest result to file: %w", err)
	}

	return nil
}
