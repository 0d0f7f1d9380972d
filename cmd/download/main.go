package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/quantfold/backtest/pkg/marketdata"
	"github.com/quantfold/backtest/pkg/marketdata/provider"
)

// downloadAction parses the flags, sets up the market data client, and
// downloads the requested range into a Parquet file.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	ticker := cmd.String("ticker")
	startDate := cmd.Timestamp("start")
	endDate := cmd.Timestamp("end")
	timespan := marketdata.Timespan(cmd.String("timespan"))
	dataDir := cmd.String("data")

	client, err := marketdata.NewClient(marketdata.ClientConfig{
		Provider: provider.ProviderType(cmd.String("provider")),
		APIKey:   os.Getenv("POLYGON_API_KEY"),
	})
	if err != nil {
		return fmt.Errorf("failed to create market data client: %w", err)
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	outputPath := filepath.Join(dataDir, fmt.Sprintf("%s_%s_%s_%s.parquet",
		ticker, timespan, startDate.Format("20060102"), endDate.Format("20060102")))

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", ticker)),
		progressbar.OptionShowCount(),
	)

	path, err := client.Download(ctx, marketdata.DownloadParams{
		Ticker:     ticker,
		StartDate:  startDate,
		EndDate:    endDate,
		Timespan:   timespan,
		OutputPath: outputPath,
	}, func(current float64, total float64, message string) {
		if total > 0 {
			bar.Set(int(current / total * 100))
		}

		bar.Describe(message)
	})
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	bar.Finish()
	log.Printf("Downloaded %s data to %s", ticker, path)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "download",
		Usage: "Download historical market data into Parquet files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "ticker",
				Aliases:  []string{"t"},
				Usage:    "Ticker symbol",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.StringFlag{
				Name:    "timespan",
				Aliases: []string{"i"},
				Usage:   "Candle interval (1m, 5m, 15m, 30m, 1h, 4h, 1d, 1w)",
				Value:   string(marketdata.TimespanOneMinute),
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Data provider to use (e.g., %s)", provider.ProviderPolygon),
				Value:   string(provider.ProviderPolygon),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the data output directory",
				Value:   "data",
			},
		},
		Action: downloadAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
