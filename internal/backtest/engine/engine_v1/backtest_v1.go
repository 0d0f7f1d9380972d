package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/quantfold/backtest/internal/backtest/engine"
	"github.com/quantfold/backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/quantfold/backtest/internal/indicator"
	"github.com/quantfold/backtest/internal/logger"
	"github.com/quantfold/backtest/internal/strategy"
	"github.com/quantfold/backtest/internal/types"
	"github.com/quantfold/backtest/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// RunBacktest replays the candle series through the strategy and returns
// the aggregated result. It is a pure function of (config, strategy,
// candles) apart from the progress callback and the cancellation context:
// no file or network I/O happens inside. The loop is strictly sequential;
// per candle the pipeline is indicators, risk controller, strategy,
// position manager, equity tracker. Cancellation is checked at each candle
// boundary and yields the partial result flagged incomplete, not an error.
func RunBacktest(
	ctx context.Context,
	config BacktestConfig,
	strat strategy.Strategy,
	candles []types.MarketData,
	log *logger.Logger,
	onProgress optional.Option[engine.OnProcessDataCallback],
) (types.BacktestResult, error) {
	if err := config.Validate(); err != nil {
		return types.BacktestResult{}, err
	}

	if err := types.ValidateSeries(candles); err != nil {
		return types.BacktestResult{}, err
	}

	indicators, err := indicator.NewSet(indicator.NewRegistry(), strat.Indicators())
	if err != nil {
		return types.BacktestResult{}, err
	}

	manager := NewPositionManager(config, log)
	risk := RiskController{}
	equity := NewEquityTracker(len(candles))

	processed := 0
	incomplete := false

loop:
	for _, candle := range candles {
		select {
		case <-ctx.Done():
			incomplete = true

			break loop
		default:
		}

		view := indicators.Update(candle)

		// Risk controller runs first; its exit takes precedence over any
		// strategy exit and suppresses re-entry for the rest of the candle.
		riskExited := false

		if position := manager.Position(); position.IsSome() {
			if forced := risk.Check(position.Unwrap(), candle); forced.IsSome() {
				exit := forced.Unwrap()
				manager.ClosePosition(exit.Price, candle.Time, exit.Reason)

				riskExited = true
			}
		}

		if !riskExited {
			intent, err := strat.Evaluate(candle, view, manager.Position())
			if err != nil {
				return types.BacktestResult{}, errors.Wrapf(errors.ErrCodeStrategyEvaluation, err,
					"strategy %s failed at %s", strat.Name(), candle.Time)
			}

			if manager.Position().IsSome() {
				if intent.Exit {
					manager.ClosePosition(candle.Close, candle.Time, types.ExitReasonSignal)
				}
			} else if intent.Enter {
				side := intent.Side
				if side == "" {
					side = types.PositionSideLong
				}

				manager.OpenPosition(candle, side)
			}
		}

		equity.Record(candle.Time, manager.Equity(candle.Close))

		processed++

		if onProgress.IsSome() {
			if err := onProgress.Unwrap()(processed, len(candles)); err != nil {
				return types.BacktestResult{}, errors.Wrap(errors.ErrCodeUnknown, "progress callback aborted the run", err)
			}
		}
	}

	finalBalance := config.InitialBalance

	if processed > 0 {
		lastClose := candles[processed-1].Close

		if config.ForceCloseAtEnd && manager.Position().IsSome() {
			last := candles[processed-1]
			manager.ClosePosition(last.Close, last.Time, types.ExitReasonEndOfData)
		}

		finalBalance = manager.Equity(lastClose)
	}

	var openPosition *types.Position

	if position := manager.Position(); position.IsSome() {
		value := position.Unwrap()
		openPosition = &value
	}

	result := aggregateResult(aggregateInput{
		config:           config,
		strategyName:     strat.Name(),
		trades:           manager.Trades(),
		equityCurve:      equity.Curve(),
		maxDrawdown:      equity.MaxDrawdownPercent(),
		finalBalance:     finalBalance,
		openPosition:     openPosition,
		processedCandles: processed,
		incomplete:       incomplete,
	})

	return result, nil
}

// BacktestEngineV1 is the datasource-backed Engine implementation. It owns
// the state of exactly one run; parameter sweeps must construct one engine
// per run.
type BacktestEngineV1 struct {
	config           BacktestConfig
	log              *logger.Logger
	strategyRegistry strategy.Registry
	strat            strategy.Strategy
	source           datasource.DataSource
}

// NewBacktestEngineV1 creates an uninitialized engine.
func NewBacktestEngineV1() engine.Engine {
	return &BacktestEngineV1{
		config:           BacktestConfig{},
		log:              logger.NewNopLogger(),
		strategyRegistry: strategy.NewRegistry(),
		strat:            nil,
		source:           nil,
	}
}

// Initialize implements engine.Engine.
func (b *BacktestEngineV1) Initialize(config string) error {
	if err := yaml.Unmarshal([]byte(config), &b.config); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse configuration", err)
	}

	if err := b.config.Validate(); err != nil {
		return err
	}

	log, err := logger.NewLogger()
	if err != nil {
		return err
	}

	b.log = log

	strat, err := b.strategyRegistry.New(b.config.Strategy.ID, b.config.Strategy.Params)
	if err != nil {
		return err
	}

	b.strat = strat
	b.log.Debug("Backtest engine initialized",
		zap.String("symbol", b.config.Symbol),
		zap.String("strategy", strat.Name()),
	)

	return nil
}

// SetDataSource implements engine.Engine.
func (b *BacktestEngineV1) SetDataSource(source datasource.DataSource) error {
	b.source = source

	return nil
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(ctx context.Context, callbacks engine.LifecycleCallbacks) (types.BacktestResult, error) {
	if err := b.preRunCheck(); err != nil {
		return types.BacktestResult{}, err
	}

	candles, err := b.source.GetRange(b.config.StartTime, b.config.EndTime)
	if err != nil {
		return types.BacktestResult{}, err
	}

	runID := uuid.New().String()

	b.log.Debug("Running backtest",
		zap.String("run_id", runID),
		zap.String("strategy", b.strat.Name()),
		zap.Int("candles", len(candles)),
	)

	if callbacks.OnRunStart != nil {
		if err := (*callbacks.OnRunStart)(runID, b.strat.Name(), len(candles)); err != nil {
			return types.BacktestResult{}, errors.Wrap(errors.ErrCodeUnknown, "run start callback aborted the run", err)
		}
	}

	var onProgress optional.Option[engine.OnProcessDataCallback]

	if callbacks.OnProcessData != nil {
		onProgress = optional.Some(*callbacks.OnProcessData)
	}

	result, err := RunBacktest(ctx, b.config, b.strat, candles, b.log, onProgress)
	if err != nil {
		return types.BacktestResult{}, err
	}

	result.ID = runID

	if callbacks.OnRunEnd != nil {
		(*callbacks.OnRunEnd)(runID, result)
	}

	return result, nil
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	return b.config.GenerateSchemaJSON()
}

func (b *BacktestEngineV1) preRunCheck() error {
	if b.strat == nil {
		return errors.New(errors.ErrCodeNoStrategyLoaded, "engine not initialized: no strategy loaded")
	}

	if b.source == nil {
		return errors.New(errors.ErrCodeNoDataSourceSet, "no datasource set")
	}

	return nil
}
