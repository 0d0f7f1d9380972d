package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/quantfold/backtest/pkg/marketdata/provider"
	"github.com/quantfold/backtest/pkg/marketdata/writer"
)

// ClientConfig configures the market data download client.
type ClientConfig struct {
	Provider provider.ProviderType `validate:"required,oneof=polygon"`
	APIKey   string                `validate:"required"`
}

// DownloadParams describes a single download request.
type DownloadParams struct {
	Ticker     string    `validate:"required"`
	StartDate  time.Time `validate:"required"`
	EndDate    time.Time `validate:"required,gtfield=StartDate"`
	Timespan   Timespan  `validate:"required"`
	OutputPath string    `validate:"required"`
}

// Client downloads historical candles through a provider and persists them
// as Parquet files the backtest datasource can read directly.
type Client struct {
	provider provider.Provider
	validate *validator.Validate
}

// NewClient creates a download client from the given configuration.
func NewClient(config ClientConfig) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}

	p, err := provider.NewMarketDataProvider(config.Provider, config.APIKey)
	if err != nil {
		return nil, err
	}

	return &Client{
		provider: p,
		validate: validate,
	}, nil
}

// Download downloads the requested range and returns the path of the
// written Parquet file.
func (c *Client) Download(ctx context.Context, params DownloadParams, onProgress provider.OnDownloadProgress) (string, error) {
	if err := c.validate.Struct(params); err != nil {
		return "", fmt.Errorf("invalid download params: %w", err)
	}

	validTimespan := false

	for _, t := range AllTimespans {
		if t == params.Timespan {
			validTimespan = true

			break
		}
	}

	if !validTimespan {
		return "", fmt.Errorf("unsupported timespan: %s", params.Timespan)
	}

	c.provider.ConfigWriter(writer.NewDuckDBWriter(params.OutputPath))

	return c.provider.Download(
		ctx,
		params.Ticker,
		params.StartDate,
		params.EndDate,
		params.Timespan.Multiplier(),
		params.Timespan.Timespan(),
		onProgress,
	)
}
