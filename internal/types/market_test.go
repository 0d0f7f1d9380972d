package types

import (
	"testing"
	"time"

	"github.com/quantfold/backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type MarketDataTestSuite struct {
	suite.Suite
}

func TestMarketDataSuite(t *testing.T) {
	suite.Run(t, new(MarketDataTestSuite))
}

func (suite *MarketDataTestSuite) validCandle(hour int) MarketData {
	return MarketData{
		Time:   time.Date(2024, 1, 1, hour, 0, 0, 0, time.UTC),
		Open:   100,
		High:   102,
		Low:    99,
		Close:  101,
		Volume: 1000,
	}
}

func (suite *MarketDataTestSuite) TestValidCandle() {
	suite.NoError(suite.validCandle(0).Validate())
}

func (suite *MarketDataTestSuite) TestZeroTimestamp() {
	candle := suite.validCandle(0)
	candle.Time = time.Time{}

	err := candle.Validate()
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidCandle))
}

func (suite *MarketDataTestSuite) TestHighBelowBody() {
	candle := suite.validCandle(0)
	candle.High = 100.5

	suite.Error(candle.Validate())
}

func (suite *MarketDataTestSuite) TestLowAboveBody() {
	candle := suite.validCandle(0)
	candle.Low = 100.5

	suite.Error(candle.Validate())
}

func (suite *MarketDataTestSuite) TestNegativeVolume() {
	candle := suite.validCandle(0)
	candle.Volume = -1

	suite.Error(candle.Validate())
}

func (suite *MarketDataTestSuite) TestSeriesEmptyIsValid() {
	suite.NoError(ValidateSeries(nil))
	suite.NoError(ValidateSeries([]MarketData{}))
}

func (suite *MarketDataTestSuite) TestSeriesStrictOrdering() {
	suite.NoError(ValidateSeries([]MarketData{suite.validCandle(0), suite.validCandle(1)}))

	// Duplicate timestamps are rejected.
	err := ValidateSeries([]MarketData{suite.validCandle(0), suite.validCandle(0)})
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeNonMonotonicSeries))

	// Out-of-order timestamps are rejected.
	err = ValidateSeries([]MarketData{suite.validCandle(1), suite.validCandle(0)})
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeNonMonotonicSeries))
}
