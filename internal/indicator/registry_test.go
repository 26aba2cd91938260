package indicator

import (
	"testing"

	"github.com/rxtech-lab/forest/internal/types"
	"github.com/rxtech-lab/forest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type RegistryTestSuite struct {
	suite.Suite
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (suite *RegistryTestSuite) TestNewIndicatorRegistry() {
	registry := NewIndicatorRegistry()
	suite.NotNil(registry)
	suite.Empty(registry.ListIndicators())
}

func (suite *RegistryTestSuite) TestDefaultRegistry() {
	registry := NewDefaultRegistry()

	suite.Equal([]types.IndicatorType{
		types.IndicatorTypeATR,
		types.IndicatorTypeEMA,
		types.IndicatorTypeMA,
		types.IndicatorTypeTrueRangeSMA,
	}, registry.ListIndicators())
}

func (suite *RegistryTestSuite) TestGetIndicatorReturnsFreshInstances() {
	registry := NewDefaultRegistry()

	first, err := registry.GetIndicator(types.IndicatorTypeMA, 2)
	suite.Require().NoError(err)

	second, err := registry.GetIndicator(types.IndicatorTypeMA, 2)
	suite.Require().NoError(err)

	suite.NotSame(first, second)

	bars := closes(1, 3)
	first.Update(bars[0])
	first.Update(bars[1])

	suite.True(first.Value().IsSome())
	suite.True(second.Value().IsNone())
}

func (suite *RegistryTestSuite) TestGetIndicatorErrors() {
	registry := NewDefaultRegistry()

	_, err := registry.GetIndicator("unknown")
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))

	_, err = registry.GetIndicator(types.IndicatorTypeATR, -1)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
}

func (suite *RegistryTestSuite) TestRegisterDuplicate() {
	registry := NewIndicatorRegistry()

	suite.NoError(registry.RegisterIndicator(types.IndicatorTypeEMA, NewEMA))

	err := registry.RegisterIndicator(types.IndicatorTypeEMA, NewEMA)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorAlreadyExists))

	err = registry.RegisterIndicator(types.IndicatorTypeMA, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *RegistryTestSuite) TestRemoveIndicator() {
	registry := NewDefaultRegistry()

	suite.NoError(registry.RemoveIndicator(types.IndicatorTypeEMA))
	suite.NotContains(registry.ListIndicators(), types.IndicatorTypeEMA)

	err := registry.RemoveIndicator(types.IndicatorTypeEMA)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))
}
