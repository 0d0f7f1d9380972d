package engine

import (
	"context"
	"testing"
	"time"

	enginecore "github.com/quantfold/backtest/internal/backtest/engine"
	"github.com/quantfold/backtest/internal/types"
	"github.com/quantfold/backtest/mocks"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

const engineTestConfig = `
symbol: AAPL
timeframe: 1h
initial_balance: 10000
strategy:
  id: ema_cross
  params:
    fast_period: 2
    slow_period: 3
position_size_percent: 10
stop_loss_percent: 5
take_profit_percent: 10
`

type BacktestEngineV1TestSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	source *mocks.MockDataSource
}

func TestBacktestEngineV1Suite(t *testing.T) {
	suite.Run(t, new(BacktestEngineV1TestSuite))
}

func (suite *BacktestEngineV1TestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.source = mocks.NewMockDataSource(suite.ctrl)
}

func (suite *BacktestEngineV1TestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *BacktestEngineV1TestSuite) candles(count int) []types.MarketData {
	result := make([]types.MarketData, 0, count)

	for i := 0; i < count; i++ {
		price := 100.0 + float64(i)
		result = append(result, types.MarketData{
			Time:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour),
			Open:   price,
			High:   price + 1,
			Low:    price - 1,
			Close:  price,
			Volume: 1000,
		})
	}

	return result
}

func (suite *BacktestEngineV1TestSuite) TestInitializeRejectsInvalidYAML() {
	backtester := NewBacktestEngineV1()
	suite.Error(backtester.Initialize("symbol: [unclosed"))
}

func (suite *BacktestEngineV1TestSuite) TestInitializeRejectsInvalidConfig() {
	backtester := NewBacktestEngineV1()
	suite.Error(backtester.Initialize("symbol: AAPL"))
}

func (suite *BacktestEngineV1TestSuite) TestInitializeRejectsUnknownStrategy() {
	config := `
symbol: AAPL
initial_balance: 10000
strategy:
  id: does_not_exist
position_size_percent: 10
stop_loss_percent: 5
take_profit_percent: 10
`

	backtester := NewBacktestEngineV1()
	suite.Error(backtester.Initialize(config))
}

func (suite *BacktestEngineV1TestSuite) TestRunWithoutInitialize() {
	backtester := NewBacktestEngineV1()

	_, err := backtester.Run(context.Background(), enginecore.LifecycleCallbacks{})
	suite.Error(err)
}

func (suite *BacktestEngineV1TestSuite) TestRunWithoutDataSource() {
	backtester := NewBacktestEngineV1()
	suite.Require().NoError(backtester.Initialize(engineTestConfig))

	_, err := backtester.Run(context.Background(), enginecore.LifecycleCallbacks{})
	suite.Error(err)
}

func (suite *BacktestEngineV1TestSuite) TestRunLifecycle() {
	candles := suite.candles(16)
	suite.source.EXPECT().GetRange(gomock.Any(), gomock.Any()).Return(candles, nil)

	backtester := NewBacktestEngineV1()
	suite.Require().NoError(backtester.Initialize(engineTestConfig))
	suite.Require().NoError(backtester.SetDataSource(suite.source))

	var (
		startRunID   string
		startTotal   int
		progressCall int
		endRunID     string
		endResult    types.BacktestResult
	)

	onRunStart := enginecore.OnRunStartCallback(func(runID string, strategyName string, totalCandles int) error {
		startRunID = runID
		startTotal = totalCandles

		return nil
	})

	onProgress := enginecore.OnProcessDataCallback(func(current, total int) error {
		progressCall++
		suite.Equal(len(candles), total)

		return nil
	})

	onRunEnd := enginecore.OnRunEndCallback(func(runID string, result types.BacktestResult) {
		endRunID = runID
		endResult = result
	})

	result, err := backtester.Run(context.Background(), enginecore.LifecycleCallbacks{
		OnRunStart:    &onRunStart,
		OnProcessData: &onProgress,
		OnRunEnd:      &onRunEnd,
	})
	suite.Require().NoError(err)

	suite.NotEmpty(result.ID)
	suite.Equal(startRunID, result.ID)
	suite.Equal(endRunID, result.ID)
	suite.Equal(len(candles), startTotal)
	suite.Equal(len(candles), progressCall)
	suite.Equal(result.ID, endResult.ID)
	suite.Equal(len(candles), result.ProcessedCandles)
	suite.False(result.Incomplete)
}

func (suite *BacktestEngineV1TestSuite) TestRunPropagatesDataSourceError() {
	suite.source.EXPECT().GetRange(gomock.Any(), gomock.Any()).
		Return(nil, context.DeadlineExceeded)

	backtester := NewBacktestEngineV1()
	suite.Require().NoError(backtester.Initialize(engineTestConfig))
	suite.Require().NoError(backtester.SetDataSource(suite.source))

	_, err := backtester.Run(context.Background(), enginecore.LifecycleCallbacks{})
	suite.Error(err)
}

func (suite *BacktestEngineV1TestSuite) TestRunStartCallbackAbortsRun() {
	suite.source.EXPECT().GetRange(gomock.Any(), gomock.Any()).Return(suite.candles(4), nil)

	backtester := NewBacktestEngineV1()
	suite.Require().NoError(backtester.Initialize(engineTestConfig))
	suite.Require().NoError(backtester.SetDataSource(suite.source))

	onRunStart := enginecore.OnRunStartCallback(func(runID string, strategyName string, totalCandles int) error {
		return context.Canceled
	})

	_, err := backtester.Run(context.Background(), enginecore.LifecycleCallbacks{OnRunStart: &onRunStart})
	suite.Error(err)
}

func (suite *BacktestEngineV1TestSuite) TestGetConfigSchema() {
	backtester := NewBacktestEngineV1()

	schema, err := backtester.GetConfigSchema()
	suite.Require().NoError(err)
	suite.Contains(schema, "backtest-config")
	suite.Contains(schema, "position_size_percent")
}
