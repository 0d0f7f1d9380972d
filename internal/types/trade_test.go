package types

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type TradeTestSuite struct {
	suite.Suite
}

func TestTradeSuite(t *testing.T) {
	suite.Run(t, new(TradeTestSuite))
}

func (suite *TradeTestSuite) TestCalculatePnLLong() {
	suite.InDelta(100.0, CalculatePnL(PositionSideLong, 100, 110, 10), 1e-9)
	suite.InDelta(-100.0, CalculatePnL(PositionSideLong, 100, 90, 10), 1e-9)
	suite.InDelta(0.0, CalculatePnL(PositionSideLong, 100, 100, 10), 1e-9)
}

func (suite *TradeTestSuite) TestCalculatePnLShortIsSignFlipped() {
	suite.InDelta(-100.0, CalculatePnL(PositionSideShort, 100, 110, 10), 1e-9)
	suite.InDelta(100.0, CalculatePnL(PositionSideShort, 100, 90, 10), 1e-9)
}

func (suite *TradeTestSuite) TestCalculatePnLAvoidsFloatDrift() {
	// 0.1 + 0.2 style inputs stay exact under decimal arithmetic.
	suite.Equal(1.0, CalculatePnL(PositionSideLong, 0.1, 0.2, 10))
}
