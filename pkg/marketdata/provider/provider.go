package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/quantfold/backtest/pkg/marketdata/writer"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
)

// OnDownloadProgress reports download progress to the caller.
type OnDownloadProgress = func(current float64, total float64, message string)

// Provider downloads historical candles and hands them to a configured
// writer. It is the market-data collaborator of the backtest engine; the
// engine itself never touches the network.
type Provider interface {
	// ConfigWriter configures the writer the downloaded candles are
	// persisted through.
	ConfigWriter(writer writer.MarketDataWriter)
	// Download downloads the data for the given ticker and date range and
	// returns the path of the written file. The context cancels the
	// download.
	Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, multiplier int, timespan models.Timespan, onProgress OnDownloadProgress) (path string, err error)
}

// NewMarketDataProvider creates a provider based on the provider type.
func NewMarketDataProvider(providerType ProviderType, apiKey string) (Provider, error) {
	switch providerType {
	case ProviderPolygon:
		return NewPolygonClient(apiKey)
	default:
		return nil, fmt.Errorf("unsupported market data provider: %s", providerType)
	}
}
