package indicator

import (
	"testing"
	"time"

	"github.com/rxtech-lab/forest/internal/types"
	"github.com/rxtech-lab/forest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type IndicatorTestSuite struct {
	suite.Suite
}

func TestIndicatorSuite(t *testing.T) {
	suite.Run(t, new(IndicatorTestSuite))
}

func closes(values ...float64) []types.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, len(values))

	for i, v := range values {
		bars[i] = types.Bar{
			Time:  start.Add(time.Duration(i) * time.Minute),
			Open:  v,
			High:  v + 1,
			Low:   v - 1,
			Close: v,
		}
	}

	return bars
}

func (suite *IndicatorTestSuite) TestConfigErrors() {
	factories := []Factory{NewATR, NewTrueRangeSMA, NewEMA, NewMA}

	for _, factory := range factories {
		ind := factory()
		suite.Run(string(ind.Name()), func() {
			err := ind.Config()
			suite.Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeMissingParameter))

			err = ind.Config("invalid")
			suite.True(errors.HasCode(err, errors.ErrCodeInvalidType))

			err = ind.Config(0)
			suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
			suite.Contains(err.Error(), "must be a positive integer")

			suite.NoError(ind.Config(3))
		})
	}
}

func (suite *IndicatorTestSuite) TestMA() {
	ma := NewMA()
	suite.Require().NoError(ma.Config(3))

	bars := closes(1, 2, 3, 4, 5)

	suite.True(ma.Update(bars[0]).IsNone())
	suite.True(ma.Update(bars[1]).IsNone())
	suite.InDelta(2.0, ma.Update(bars[2]).Unwrap(), 1e-9)
	suite.InDelta(3.0, ma.Update(bars[3]).Unwrap(), 1e-9)
	suite.InDelta(4.0, ma.Update(bars[4]).Unwrap(), 1e-9)
	suite.InDelta(4.0, ma.Value().Unwrap(), 1e-9)

	ma.Reset()
	suite.True(ma.Value().IsNone())
}

func (suite *IndicatorTestSuite) TestEMA() {
	ema := NewEMA()
	suite.Require().NoError(ema.Config(3))

	bars := closes(2, 4, 6, 8)

	suite.True(ema.Update(bars[0]).IsNone())
	suite.True(ema.Update(bars[1]).IsNone())
	// seed is the mean of the first three closes
	suite.InDelta(4.0, ema.Update(bars[2]).Unwrap(), 1e-9)
	// alpha = 0.5
	suite.InDelta(6.0, ema.Update(bars[3]).Unwrap(), 1e-9)

	ema.Reset()
	suite.True(ema.Value().IsNone())
}

func (suite *IndicatorTestSuite) TestATRWilder() {
	atr := NewATR()
	suite.Require().NoError(atr.Config(2))

	bars := []types.Bar{
		{High: 11, Low: 9, Close: 10},  // tr 2
		{High: 12, Low: 10, Close: 11}, // tr 2
		{High: 15, Low: 11, Close: 14}, // tr 4
	}

	suite.True(atr.Update(bars[0]).IsNone())
	suite.InDelta(2.0, atr.Update(bars[1]).Unwrap(), 1e-9)
	suite.InDelta(3.0, atr.Update(bars[2]).Unwrap(), 1e-9)

	atr.Reset()
	suite.True(atr.Value().IsNone())
	suite.True(atr.Update(bars[0]).IsNone())
}

func (suite *IndicatorTestSuite) TestTrueRangeSMA() {
	tr := NewTrueRangeSMA()
	suite.Require().NoError(tr.Config(2))

	bars := []types.Bar{
		{High: 11, Low: 9, Close: 10},  // tr 2
		{High: 12, Low: 10, Close: 11}, // tr 2
		{High: 15, Low: 11, Close: 14}, // tr 4
		{High: 14, Low: 14, Close: 14}, // tr 0
	}

	suite.True(tr.Update(bars[0]).IsNone())
	suite.InDelta(2.0, tr.Update(bars[1]).Unwrap(), 1e-9)
	suite.InDelta(3.0, tr.Update(bars[2]).Unwrap(), 1e-9)
	suite.InDelta(2.0, tr.Update(bars[3]).Unwrap(), 1e-9)
}

func (suite *IndicatorTestSuite) TestConstantPricesGiveZeroVolatility() {
	atr := NewATR()
	suite.Require().NoError(atr.Config(3))

	var last float64

	for _, bar := range closes(100, 100, 100, 100, 100) {
		bar.High = bar.Close
		bar.Low = bar.Close

		if v := atr.Update(bar); v.IsSome() {
			last = v.Unwrap()
		}
	}

	suite.Equal(0.0, last)
}
