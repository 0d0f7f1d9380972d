package indicator

import (
	"testing"

	"github.com/quantfold/backtest/internal/types"
	"github.com/stretchr/testify/suite"
)

type RegistryTestSuite struct {
	suite.Suite
	registry Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (suite *RegistryTestSuite) SetupTest() {
	suite.registry = NewRegistry()
}

func (suite *RegistryTestSuite) TestBuiltinsRegistered() {
	names := suite.registry.List()
	suite.ElementsMatch([]types.IndicatorType{
		types.IndicatorTypeEMA,
		types.IndicatorTypeSMA,
		types.IndicatorTypeRSI,
		types.IndicatorTypeChannel,
	}, names)
}

func (suite *RegistryTestSuite) TestNew() {
	ema, err := suite.registry.New(types.IndicatorTypeEMA, 9)
	suite.NoError(err)
	suite.Equal(types.IndicatorTypeEMA, ema.Name())
}

func (suite *RegistryTestSuite) TestNewUnknownType() {
	_, err := suite.registry.New(types.IndicatorType("vwap"), 9)
	suite.Error(err)
}

func (suite *RegistryTestSuite) TestNewPropagatesConstructorError() {
	_, err := suite.registry.New(types.IndicatorTypeRSI, 0)
	suite.Error(err)
}

func (suite *RegistryTestSuite) TestRegisterDuplicate() {
	err := suite.registry.Register(types.IndicatorTypeEMA, NewEMA)
	suite.Error(err)
}
