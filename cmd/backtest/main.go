package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/quantfold/backtest/internal/backtest/engine"
	engine_v1 "github.com/quantfold/backtest/internal/backtest/engine/engine_v1"
	"github.com/quantfold/backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/quantfold/backtest/internal/logger"
	"github.com/quantfold/backtest/internal/types"
)

// backtestAction loads the config, wires a datasource, runs the backtest and
// writes the result as YAML.
func backtestAction(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	dataPath := cmd.String("data")
	outputPath := cmd.String("output")

	configBytes, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	backtester := engine_v1.NewBacktestEngineV1()
	if err := backtester.Initialize(string(configBytes)); err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}

	dataLog, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer dataLog.Sync()

	source, err := datasource.NewDuckDBDataSource(":memory:", dataLog)
	if err != nil {
		return fmt.Errorf("failed to create data source: %w", err)
	}
	defer source.Close()

	if err := source.Initialize(dataPath); err != nil {
		return fmt.Errorf("failed to open data source: %w", err)
	}

	if err := backtester.SetDataSource(source); err != nil {
		return fmt.Errorf("failed to set data source: %w", err)
	}

	var bar *progressbar.ProgressBar

	onRunStart := engine.OnRunStartCallback(func(runID string, strategyName string, totalCandles int) error {
		bar = progressbar.Default(int64(totalCandles))
		bar.Describe(fmt.Sprintf("Running %s on %s", strategyName, filepath.Base(dataPath)))

		return nil
	})

	onProgress := engine.OnProcessDataCallback(func(current int, total int) error {
		if bar != nil {
			return bar.Set(current)
		}

		return nil
	})

	result, err := backtester.Run(ctx, engine.LifecycleCallbacks{
		OnRunStart:    &onRunStart,
		OnProcessData: &onProgress,
		OnRunEnd:      nil,
	})
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	if bar != nil {
		bar.Finish()
	}

	if err := types.WriteResult(outputPath, result); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	status := "complete"
	if result.Incomplete {
		status = "incomplete (cancelled)"
	}

	log.Printf("Backtest %s: %d candles, %d trades, final balance %.2f, result written to %s",
		status, result.ProcessedCandles, result.TotalTrades, result.FinalBalance, outputPath)

	return nil
}

// schemaAction prints the JSON schema of the backtest configuration.
func schemaAction(ctx context.Context, cmd *cli.Command) error {
	schema, err := engine_v1.NewBacktestEngineV1().GetConfigSchema()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	fmt.Println(schema)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Run a strategy backtest over historical candle data",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Execute a backtest and write the result as YAML",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to the backtest YAML config",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "Path to the candle data file (Parquet or CSV)",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path the YAML result is written to",
						Value:   "result.yaml",
					},
				},
				Action: backtestAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the backtest config",
				Action: schemaAction,
			},
		},
	}

	// Ctrl-C cancels at the next candle boundary and yields a partial result.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
