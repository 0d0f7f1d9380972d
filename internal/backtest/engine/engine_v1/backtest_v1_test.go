package engine

import (
	"context"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	enginecore "github.com/quantfold/backtest/internal/backtest/engine"
	"github.com/quantfold/backtest/internal/indicator"
	"github.com/quantfold/backtest/internal/logger"
	"github.com/quantfold/backtest/internal/strategy"
	"github.com/quantfold/backtest/internal/types"
	"github.com/quantfold/backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// scriptedStrategy lets tests drive the engine with hand-written decisions
// instead of indicator math.
type scriptedStrategy struct {
	name     string
	specs    []indicator.Spec
	evaluate func(candle types.MarketData, view indicator.View, position optional.Option[types.Position]) (strategy.Intent, error)
}

func (s *scriptedStrategy) Name() string {
	return s.name
}

func (s *scriptedStrategy) Indicators() []indicator.Spec {
	return s.specs
}

func (s *scriptedStrategy) Evaluate(candle types.MarketData, view indicator.View, position optional.Option[types.Position]) (strategy.Intent, error) {
	return s.evaluate(candle, view, position)
}

// enterOnFirstCandle always wants to be long and never exits on signal.
func enterOnFirstCandle() strategy.Strategy {
	return &scriptedStrategy{
		name: "scripted",
		evaluate: func(candle types.MarketData, view indicator.View, position optional.Option[types.Position]) (strategy.Intent, error) {
			if position.IsNone() {
				return strategy.Intent{Enter: true, Side: types.PositionSideLong, Reason: "scripted entry"}, nil
			}

			return strategy.NoAction(), nil
		},
	}
}

type BacktestRunTestSuite struct {
	suite.Suite
	config BacktestConfig
	log    *logger.Logger
}

func TestBacktestRunSuite(t *testing.T) {
	suite.Run(t, new(BacktestRunTestSuite))
}

func (suite *BacktestRunTestSuite) SetupTest() {
	suite.config = BacktestConfig{
		Symbol:              "AAPL",
		Timeframe:           "1h",
		InitialBalance:      10000,
		Strategy:            StrategyConfig{ID: strategy.IDEMACross},
		PositionSizePercent: 10,
		StopLossPercent:     5,
		TakeProfitPercent:   10,
	}
	suite.log = logger.NewNopLogger()
}

// candle builds a flat candle at the given close, one hour apart.
func (suite *BacktestRunTestSuite) candle(index int, close float64) types.MarketData {
	return suite.fullCandle(index, close, close, close, close)
}

func (suite *BacktestRunTestSuite) fullCandle(index int, open, high, low, close float64) types.MarketData {
	return types.MarketData{
		Time:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(index) * time.Hour),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: 1000,
	}
}

func (suite *BacktestRunTestSuite) run(candles []types.MarketData, strat strategy.Strategy) types.BacktestResult {
	result, err := RunBacktest(context.Background(), suite.config, strat, candles, suite.log,
		optional.None[enginecore.OnProcessDataCallback]())
	suite.Require().NoError(err)

	return result
}

func (suite *BacktestRunTestSuite) TestEmptySeries() {
	result := suite.run(nil, enterOnFirstCandle())

	suite.Zero(result.ProcessedCandles)
	suite.Empty(result.Trades)
	suite.Empty(result.EquityCurve)
	suite.False(result.Incomplete)
	suite.InDelta(10000.0, result.FinalBalance, 1e-9)
	suite.Zero(result.TotalReturnPercent)
}

func (suite *BacktestRunTestSuite) TestEntryFillsAtCloseWithExactSizing() {
	candles := []types.MarketData{
		suite.candle(0, 100),
		suite.candle(1, 100),
	}

	result := suite.run(candles, enterOnFirstCandle())

	suite.Require().NotNil(result.OpenPosition)
	// 10000 * 10% / 100 = exactly 10 units at the candle close.
	suite.InDelta(10.0, result.OpenPosition.Quantity, 1e-12)
	suite.InDelta(100.0, result.OpenPosition.EntryPrice, 1e-12)
	suite.Equal(candles[0].Time, result.OpenPosition.EntryTime)
	suite.InDelta(95.0, result.OpenPosition.StopPrice, 1e-12)
	suite.InDelta(110.0, result.OpenPosition.TakeProfitPrice, 1e-12)
}

func (suite *BacktestRunTestSuite) TestStopLossFillsAtExactLevel() {
	// Tight stop: 0.25% below the 100 entry puts the stop at 99.75.
	suite.config.StopLossPercent = 0.25
	suite.config.TakeProfitPercent = 90

	candles := []types.MarketData{
		suite.fullCandle(0, 100, 100, 100, 100),
		suite.fullCandle(1, 100, 106, 100, 105),
		suite.fullCandle(2, 105, 105, 95, 95),
		suite.fullCandle(3, 95, 110, 95, 110),
		suite.fullCandle(4, 110, 110, 90, 90),
	}

	strat := &scriptedStrategy{
		name: "scripted",
		evaluate: func(candle types.MarketData, view indicator.View, position optional.Option[types.Position]) (strategy.Intent, error) {
			// Enter exactly once, on the first candle.
			if position.IsNone() && candle.Time.Equal(candles[0].Time) {
				return strategy.Intent{Enter: true, Side: types.PositionSideLong}, nil
			}

			return strategy.NoAction(), nil
		},
	}

	result := suite.run(candles, strat)

	suite.Require().Len(result.Trades, 1)

	trade := result.Trades[0]
	suite.Equal(types.ExitReasonStopLoss, trade.ExitReason)
	// The fill is the exact stop level, not the candle close.
	suite.InDelta(99.75, trade.ExitPrice, 1e-12)
	suite.Equal(candles[2].Time, trade.ExitTime)
	suite.InDelta(-2.5, trade.PnL, 1e-9)

	// Accounting identity: flat at the end, so the final balance is the
	// initial balance plus the ledger PnL.
	suite.InDelta(9997.5, result.FinalBalance, 1e-9)
	suite.Nil(result.OpenPosition)
}

func (suite *BacktestRunTestSuite) TestTakeProfitFillsAtExactLevel() {
	candles := []types.MarketData{
		suite.fullCandle(0, 100, 100, 100, 100),
		suite.fullCandle(1, 100, 115, 100, 114),
	}

	result := suite.run(candles, enterOnFirstCandle())

	// Risk exit on candle 1, and the riskExited gate keeps the scripted
	// strategy from re-entering on the same candle.
	suite.Require().Len(result.Trades, 1)

	trade := result.Trades[0]
	suite.Equal(types.ExitReasonTakeProfit, trade.ExitReason)
	suite.InDelta(110.0, trade.ExitPrice, 1e-12)
	suite.InDelta(100.0, trade.PnL, 1e-9)
	suite.Nil(result.OpenPosition)
}

func (suite *BacktestRunTestSuite) TestNoReEntryOnRiskExitCandle() {
	candles := []types.MarketData{
		suite.fullCandle(0, 100, 100, 100, 100),
		suite.fullCandle(1, 100, 100, 90, 92),
		suite.fullCandle(2, 92, 92, 92, 92),
	}

	result := suite.run(candles, enterOnFirstCandle())

	suite.Require().Len(result.Trades, 1)
	suite.Equal(types.ExitReasonStopLoss, result.Trades[0].ExitReason)
	suite.Equal(candles[1].Time, result.Trades[0].ExitTime)

	// The always-enter strategy re-enters on the next candle, not the one
	// that stopped it out.
	suite.Require().NotNil(result.OpenPosition)
	suite.Equal(candles[2].Time, result.OpenPosition.EntryTime)
}

func (suite *BacktestRunTestSuite) TestSignalExitFillsAtClose() {
	exitTime := time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC)

	strat := &scriptedStrategy{
		name: "scripted",
		evaluate: func(candle types.MarketData, view indicator.View, position optional.Option[types.Position]) (strategy.Intent, error) {
			if position.IsNone() {
				return strategy.Intent{Enter: true, Side: types.PositionSideLong}, nil
			}

			if candle.Time.Equal(exitTime) {
				return strategy.Intent{Exit: true}, nil
			}

			return strategy.NoAction(), nil
		},
	}

	candles := []types.MarketData{
		suite.candle(0, 100),
		suite.candle(1, 102),
		suite.candle(2, 104),
		suite.candle(3, 104),
	}

	result := suite.run(candles, strat)

	// Closed on signal at candle 2, re-entered on candle 3.
	suite.Require().NotEmpty(result.Trades)

	trade := result.Trades[0]
	suite.Equal(types.ExitReasonSignal, trade.ExitReason)
	suite.InDelta(104.0, trade.ExitPrice, 1e-12)
	suite.Equal(exitTime, trade.ExitTime)
	suite.InDelta(40.0, trade.PnL, 1e-9)
}

func (suite *BacktestRunTestSuite) TestForceCloseAtEnd() {
	suite.config.ForceCloseAtEnd = true

	candles := []types.MarketData{
		suite.candle(0, 100),
		suite.candle(1, 104),
	}

	result := suite.run(candles, enterOnFirstCandle())

	suite.Require().Len(result.Trades, 1)
	suite.Equal(types.ExitReasonEndOfData, result.Trades[0].ExitReason)
	suite.InDelta(104.0, result.Trades[0].ExitPrice, 1e-12)
	suite.Nil(result.OpenPosition)
	suite.InDelta(10040.0, result.FinalBalance, 1e-9)
}

func (suite *BacktestRunTestSuite) TestOpenPositionValuedInFinalBalance() {
	candles := []types.MarketData{
		suite.candle(0, 100),
		suite.candle(1, 104),
	}

	result := suite.run(candles, enterOnFirstCandle())

	// No force close: the ledger stays empty and the position is marked to
	// market inside the final balance.
	suite.Empty(result.Trades)
	suite.Require().NotNil(result.OpenPosition)
	suite.InDelta(10040.0, result.FinalBalance, 1e-9)
	suite.InDelta(0.4, result.TotalReturnPercent, 1e-9)
}

func (suite *BacktestRunTestSuite) TestCancellationYieldsPartialResult() {
	candles := []types.MarketData{
		suite.candle(0, 100),
		suite.candle(1, 101),
		suite.candle(2, 102),
		suite.candle(3, 103),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	onProgress := enginecore.OnProcessDataCallback(func(current, total int) error {
		if current == 2 {
			cancel()
		}

		return nil
	})

	result, err := RunBacktest(ctx, suite.config, enterOnFirstCandle(), candles, suite.log, optional.Some(onProgress))
	suite.Require().NoError(err)

	suite.True(result.Incomplete)
	suite.Equal(2, result.ProcessedCandles)
	suite.Len(result.EquityCurve, 2)
}

func (suite *BacktestRunTestSuite) TestProgressCallbackErrorAbortsRun() {
	candles := []types.MarketData{suite.candle(0, 100)}

	onProgress := enginecore.OnProcessDataCallback(func(current, total int) error {
		return errors.New(errors.ErrCodeUnknown, "stop")
	})

	_, err := RunBacktest(context.Background(), suite.config, enterOnFirstCandle(), candles, suite.log, optional.Some(onProgress))
	suite.Error(err)
}

func (suite *BacktestRunTestSuite) TestStrategyErrorIsFatal() {
	strat := &scriptedStrategy{
		name: "failing",
		evaluate: func(candle types.MarketData, view indicator.View, position optional.Option[types.Position]) (strategy.Intent, error) {
			return strategy.Intent{}, errors.New(errors.ErrCodeUnknown, "boom")
		},
	}

	candles := []types.MarketData{suite.candle(0, 100)}

	_, err := RunBacktest(context.Background(), suite.config, strat, candles, suite.log,
		optional.None[enginecore.OnProcessDataCallback]())
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyEvaluation))
}

func (suite *BacktestRunTestSuite) TestNonMonotonicSeriesRejected() {
	candles := []types.MarketData{
		suite.candle(1, 100),
		suite.candle(0, 101),
	}

	_, err := RunBacktest(context.Background(), suite.config, enterOnFirstCandle(), candles, suite.log,
		optional.None[enginecore.OnProcessDataCallback]())
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeNonMonotonicSeries))
}

func (suite *BacktestRunTestSuite) TestInvalidConfigRejected() {
	suite.config.PositionSizePercent = 0

	_, err := RunBacktest(context.Background(), suite.config, enterOnFirstCandle(), nil, suite.log,
		optional.None[enginecore.OnProcessDataCallback]())
	suite.Error(err)
}

func (suite *BacktestRunTestSuite) TestDeterministicReplay() {
	registry := strategy.NewRegistry()

	candles := make([]types.MarketData, 0, 64)
	price := 100.0

	for i := 0; i < 64; i++ {
		// Deterministic sawtooth with drift.
		if i%5 == 0 {
			price -= 3
		} else {
			price += 1.25
		}

		candles = append(candles, suite.fullCandle(i, price, price+0.5, price-0.5, price))
	}

	runOnce := func() types.BacktestResult {
		strat, err := registry.New(strategy.IDEMACross, map[string]any{
			"fast_period": 3,
			"slow_period": 8,
		})
		suite.Require().NoError(err)

		result, err := RunBacktest(context.Background(), suite.config, strat, candles, suite.log,
			optional.None[enginecore.OnProcessDataCallback]())
		suite.Require().NoError(err)

		// Run metadata differs between runs and is not part of the
		// deterministic contract.
		result.ID = ""
		result.Timestamp = time.Time{}

		for i := range result.Trades {
			result.Trades[i].ID = ""
		}

		return result
	}

	first := runOnce()
	second := runOnce()

	suite.Equal(first, second)
}

func (suite *BacktestRunTestSuite) TestWinRateWithinBounds() {
	suite.config.ForceCloseAtEnd = true

	candles := []types.MarketData{
		suite.fullCandle(0, 100, 100, 100, 100),
		suite.fullCandle(1, 100, 115, 100, 114),
		suite.fullCandle(2, 114, 114, 114, 114),
		suite.fullCandle(3, 114, 114, 100, 104),
	}

	result := suite.run(candles, enterOnFirstCandle())

	suite.GreaterOrEqual(result.WinRate, 0.0)
	suite.LessOrEqual(result.WinRate, 100.0)
	suite.Equal(result.TotalTrades, len(result.Trades))
}
