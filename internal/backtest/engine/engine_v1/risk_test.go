package engine

import (
	"math"
	"testing"

	"github.com/rxtech-lab/forest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/forest/internal/types"
	"github.com/stretchr/testify/suite"
)

type RiskEngineTestSuite struct {
	suite.Suite
	risk *RiskEngine
}

func TestRiskEngineSuite(t *testing.T) {
	suite.Run(t, new(RiskEngineTestSuite))
}

func (suite *RiskEngineTestSuite) SetupTest() {
	suite.risk = NewRiskEngine(10000, 0.10, nil)
}

func (suite *RiskEngineTestSuite) TestPositionSize() {
	suite.InDelta(66.6667, suite.risk.PositionSize(0.75, 0.01, 2), 1e-4)
	suite.InDelta(50.0, suite.risk.PositionSize(1, 0.01, 2), 1e-9)

	// equity 10000, risk 2%, volatility 1.5, ATR multiple 2
	suite.InDelta(66.667, suite.risk.PositionSize(1.5, 0.02, 2.0), 1e-3)
	suite.InDelta(200.0/3.0, suite.risk.PositionSize(1.5, 0.02, 2.0), 1e-9)
}

func (suite *RiskEngineTestSuite) TestPositionSizeUsesRealizedEquity() {
	suite.risk.RecordRealized(10000)
	suite.InDelta(100.0, suite.risk.PositionSize(1, 0.01, 2), 1e-9)
}

func (suite *RiskEngineTestSuite) TestPositionSizeDegenerate() {
	tests := []struct {
		name       string
		volatility float64
		fraction   float64
		multiple   float64
	}{
		{"zero volatility", 0, 0.01, 2},
		{"negative volatility", -1, 0.01, 2},
		{"nan volatility", math.NaN(), 0.01, 2},
		{"inf volatility", math.Inf(1), 0.01, 2},
		{"zero multiple", 1, 0.01, 0},
		{"zero fraction", 1, 0, 2},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(0.0, suite.risk.PositionSize(tc.volatility, tc.fraction, tc.multiple))
		})
	}
}

func (suite *RiskEngineTestSuite) TestPositionSizeNonPositiveEquity() {
	suite.risk.RecordRealized(-10000)
	suite.Equal(0.0, suite.risk.PositionSize(1, 0.01, 2))
}

func (suite *RiskEngineTestSuite) TestTrailingStopLong() {
	suite.True(suite.risk.TrailingStop().IsNone())
	suite.False(suite.risk.TrailingStopHit(types.SideLong, 1))

	suite.risk.UpdateTrailingStop(types.SideLong, 100, 1, 3)
	suite.InDelta(97.0, suite.risk.TrailingStop().Unwrap(), 1e-9)

	// lower proposal keeps the stop
	suite.risk.UpdateTrailingStop(types.SideLong, 99, 1, 3)
	suite.InDelta(97.0, suite.risk.TrailingStop().Unwrap(), 1e-9)

	suite.risk.UpdateTrailingStop(types.SideLong, 105, 1, 3)
	suite.InDelta(102.0, suite.risk.TrailingStop().Unwrap(), 1e-9)

	suite.False(suite.risk.TrailingStopHit(types.SideLong, 102))
	suite.True(suite.risk.TrailingStopHit(types.SideLong, 101.99))
}

func (suite *RiskEngineTestSuite) TestTrailingStopShort() {
	suite.risk.UpdateTrailingStop(types.SideShort, 100, 1, 3)
	suite.InDelta(103.0, suite.risk.TrailingStop().Unwrap(), 1e-9)

	suite.risk.UpdateTrailingStop(types.SideShort, 101, 1, 3)
	suite.InDelta(103.0, suite.risk.TrailingStop().Unwrap(), 1e-9)

	suite.risk.UpdateTrailingStop(types.SideShort, 95, 1, 3)
	suite.InDelta(98.0, suite.risk.TrailingStop().Unwrap(), 1e-9)

	suite.False(suite.risk.TrailingStopHit(types.SideShort, 98))
	suite.True(suite.risk.TrailingStopHit(types.SideShort, 98.01))
}

func (suite *RiskEngineTestSuite) TestTrailingStopMonotonic() {
	prices := []float64{100, 103, 101, 99, 104, 102, 110, 90}
	vols := []float64{1, 2, 0.5, 3, 1, 1, 4, 10}

	previous := math.Inf(-1)

	for i, price := range prices {
		suite.risk.UpdateTrailingStop(types.SideLong, price, vols[i], 3)
		stop := suite.risk.TrailingStop().Unwrap()
		suite.GreaterOrEqual(stop, previous)
		previous = stop
	}
}

func (suite *RiskEngineTestSuite) TestTrailingStopIgnoresNonFinite() {
	suite.risk.UpdateTrailingStop(types.SideLong, 100, math.NaN(), 3)
	suite.True(suite.risk.TrailingStop().IsNone())

	suite.risk.UpdateTrailingStop(types.SideLong, 100, 1, 3)
	suite.False(suite.risk.TrailingStopHit(types.SideLong, math.NaN()))

	suite.risk.ResetTrailingStop()
	suite.True(suite.risk.TrailingStop().IsNone())
}

func (suite *RiskEngineTestSuite) TestTransactionCost() {
	suite.Equal(0.0, suite.risk.TransactionCost(10, 100))

	risk := NewRiskEngine(10000, 0.1, commission_fee.NewRateCommissionFee(commission_fee.DefaultRates))
	suite.InDelta(0.8, risk.TransactionCost(10, 100), 1e-9)
	suite.InDelta(0.8, risk.TransactionCost(-10, 100), 1e-9)
	suite.Equal(0.0, risk.TransactionCost(math.NaN(), 100))
}

func (suite *RiskEngineTestSuite) TestDrawdownGuard() {
	for range 3 {
		suite.risk.RecordRealized(-1000)
	}

	suite.InDelta(7000.0, suite.risk.Equity(), 1e-9)
	suite.InDelta(10000.0, suite.risk.Peak(), 1e-9)
	suite.InDelta(0.3, suite.risk.Drawdown(), 1e-9)
	suite.True(suite.risk.DrawdownExceeded())
	suite.Equal([]float64{9000, 8000, 7000}, suite.risk.RealizedCurve())
}

func (suite *RiskEngineTestSuite) TestDrawdownBoundary() {
	suite.risk.RecordRealized(-999.99)
	suite.False(suite.risk.DrawdownExceeded())

	suite.risk.RecordRealized(-0.01)
	suite.True(suite.risk.DrawdownExceeded())
}

func (suite *RiskEngineTestSuite) TestDrawdownFromNewPeak() {
	suite.risk.RecordRealized(10000)
	suite.InDelta(20000.0, suite.risk.Peak(), 1e-9)

	suite.risk.RecordRealized(-1500)
	suite.InDelta(0.075, suite.risk.Drawdown(), 1e-9)
	suite.False(suite.risk.DrawdownExceeded())

	suite.risk.RecordRealized(-600)
	suite.True(suite.risk.DrawdownExceeded())
	suite.InDelta(20000.0, suite.risk.Peak(), 1e-9)
}
