package engine

import (
	"testing"
	"time"

	"github.com/rxtech-lab/forest/internal/types"
	"github.com/rxtech-lab/forest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type TradeLedgerTestSuite struct {
	suite.Suite
	start time.Time
}

func TestTradeLedgerSuite(t *testing.T) {
	suite.Run(t, new(TradeLedgerTestSuite))
}

func (suite *TradeLedgerTestSuite) SetupTest() {
	suite.start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func (suite *TradeLedgerTestSuite) trade(minute int, action types.TradeAction, gross, cost float64) types.Trade {
	return types.Trade{
		Time:     suite.start.Add(time.Duration(minute) * time.Minute),
		Price:    100,
		Quantity: 1,
		Side:     types.SideLong,
		Action:   action,
		Reason:   types.TradeReasonSignal,
		Cost:     cost,
		GrossPnL: gross,
		PnL:      gross - cost,
	}
}

func (suite *TradeLedgerTestSuite) TestEmpty() {
	ledger := NewTradeLedger(10000, LedgerModeNet)

	suite.Equal(0, ledger.Len())
	suite.Empty(ledger.Trades())
	suite.Empty(ledger.RealizedEquitySeries())
	suite.Equal(0.0, ledger.MaxDrawdown())
}

func (suite *TradeLedgerTestSuite) TestAppendOrder() {
	ledger := NewTradeLedger(10000, "")

	suite.NoError(ledger.Append(suite.trade(1, types.TradeActionOpen, 0, 1)))
	suite.NoError(ledger.Append(suite.trade(1, types.TradeActionClose, 5, 1)))

	err := ledger.Append(suite.trade(0, types.TradeActionOpen, 0, 1))
	suite.True(errors.HasCode(err, errors.ErrCodeLedgerOutOfOrder))
	suite.Equal(2, ledger.Len())
}

func (suite *TradeLedgerTestSuite) TestTradesIsCopy() {
	ledger := NewTradeLedger(10000, LedgerModeNet)
	suite.Require().NoError(ledger.Append(suite.trade(0, types.TradeActionOpen, 0, 1)))

	trades := ledger.Trades()
	trades[0].Price = 1

	suite.Equal(100.0, ledger.Trades()[0].Price)
}

func (suite *TradeLedgerTestSuite) TestRealizedEquitySeriesNet() {
	ledger := NewTradeLedger(10000, LedgerModeNet)

	suite.Require().NoError(ledger.Append(suite.trade(0, types.TradeActionOpen, 0, 1)))
	suite.Require().NoError(ledger.Append(suite.trade(2, types.TradeActionClose, 100, 1)))
	suite.Require().NoError(ledger.Append(suite.trade(2, types.TradeActionOpen, 0, 1)))
	suite.Require().NoError(ledger.Append(suite.trade(5, types.TradeActionClose, -300, 1)))

	series := ledger.RealizedEquitySeries()

	// the two fills at minute 2 collapse into one point
	suite.Require().Len(series, 3)
	suite.InDelta(9999.0, series[0].Realized, 1e-9)
	suite.InDelta(10097.0, series[1].Realized, 1e-9)
	suite.InDelta(9796.0, series[2].Realized, 1e-9)
	suite.True(series[2].Time.Equal(suite.start.Add(5 * time.Minute)))

	suite.InDelta(301.0, ledger.MaxDrawdown(), 1e-9)
	suite.InDelta(types.MaxDrawdown(10000, types.RealizedValues(series)), ledger.MaxDrawdown(), 1e-9)
}

func (suite *TradeLedgerTestSuite) TestRealizedEquitySeriesGross() {
	ledger := NewTradeLedger(10000, LedgerModeGross)

	suite.Require().NoError(ledger.Append(suite.trade(0, types.TradeActionOpen, 0, 1)))
	suite.Require().NoError(ledger.Append(suite.trade(1, types.TradeActionClose, -50, 1)))

	series := ledger.RealizedEquitySeries()

	suite.Require().Len(series, 2)
	suite.InDelta(10000.0, series[0].Realized, 1e-9)
	suite.InDelta(9950.0, series[1].Realized, 1e-9)
	suite.InDelta(50.0, ledger.MaxDrawdown(), 1e-9)
}

func (suite *TradeLedgerTestSuite) TestMaxDrawdownMeasuredFromBase() {
	ledger := NewTradeLedger(10000, LedgerModeNet)

	suite.Require().NoError(ledger.Append(suite.trade(0, types.TradeActionClose, -200, 0)))
	suite.Require().NoError(ledger.Append(suite.trade(1, types.TradeActionClose, 500, 0)))
	suite.Require().NoError(ledger.Append(suite.trade(2, types.TradeActionClose, -100, 0)))

	suite.InDelta(200.0, ledger.MaxDrawdown(), 1e-9)
}
