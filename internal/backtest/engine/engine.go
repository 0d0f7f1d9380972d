package engine

import (
	"context"

	"github.com/quantfold/backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/quantfold/backtest/internal/types"
)

// Lifecycle callback types for backtest phases.
// Callbacks with an error return can abort execution if they return an error.

// OnRunStartCallback is called once before the candle loop starts.
// runID is a unique identifier for this run, generated before processing.
type OnRunStartCallback func(runID string, strategyName string, totalCandles int) error

// OnProcessDataCallback is called for each candle processed. Returning an
// error aborts the run.
type OnProcessDataCallback func(current int, total int) error

// OnRunEndCallback is called when the run ends, with the final result.
type OnRunEndCallback func(runID string, result types.BacktestResult)

// LifecycleCallbacks holds all lifecycle callback functions for the engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnRunStart    *OnRunStartCallback
	OnProcessData *OnProcessDataCallback
	OnRunEnd      *OnRunEndCallback
}

// Engine replays a historical candle series through a trading strategy and
// produces a BacktestResult. A single engine instance owns one run's state;
// concurrent runs must use independent instances.
type Engine interface {
	// Initialize parses and validates the YAML run configuration and
	// constructs the configured strategy.
	Initialize(config string) error
	// SetDataSource sets the candle source for the engine.
	SetDataSource(source datasource.DataSource) error
	// Run executes the backtest. The context can be used to cancel the run
	// at a candle boundary; a cancelled run returns the partial result
	// flagged as incomplete, not an error.
	Run(ctx context.Context, callbacks LifecycleCallbacks) (types.BacktestResult, error)
	// GetConfigSchema returns the JSON schema of the run configuration.
	GetConfigSchema() (string, error)
}
