package engine

import (
	"github.com/rxtech-lab/forest/internal/types"
	"github.com/rxtech-lab/forest/pkg/errors"
	"github.com/shopspring/decimal"
)

// TradeLedger is the append-only record of fills for one run.
type TradeLedger struct {
	baseCapital float64
	mode        LedgerMode
	trades      []types.Trade
}

func NewTradeLedger(baseCapital float64, mode LedgerMode) *TradeLedger {
	if mode == "" {
		mode = LedgerModeNet
	}

	return &TradeLedger{
		baseCapital: baseCapital,
		mode:        mode,
		trades:      nil,
	}
}

// Append records a trade. Trades must arrive in non-decreasing time order.
func (l *TradeLedger) Append(trade types.Trade) error {
	if n := len(l.trades); n > 0 && trade.Time.Before(l.trades[n-1].Time) {
		return errors.Newf(errors.ErrCodeLedgerOutOfOrder,
			"trade at %s is older than the last recorded trade at %s",
			trade.Time, l.trades[n-1].Time)
	}

	l.trades = append(l.trades, trade)

	return nil
}

// Trades returns a copy of the recorded trades in insertion order.
func (l *TradeLedger) Trades() []types.Trade {
	out := make([]types.Trade, len(l.trades))
	copy(out, l.trades)

	return out
}

func (l *TradeLedger) booked(trade types.Trade) decimal.Decimal {
	if l.mode == LedgerModeGross {
		return decimal.NewFromFloat(trade.GrossPnL)
	}

	return decimal.NewFromFloat(trade.PnL)
}

// RealizedEquitySeries is base capital plus cumulative booked PnL, one point per
// distinct trade time. Trades sharing a timestamp collapse into the last value.
func (l *TradeLedger) RealizedEquitySeries() []types.EquityPoint {
	series := make([]types.EquityPoint, 0, len(l.trades))
	running := decimal.NewFromFloat(l.baseCapital)

	for _, trade := range l.trades {
		running = running.Add(l.booked(trade))
		value, _ := running.Float64()

		if n := len(series); n > 0 && series[n-1].Time.Equal(trade.Time) {
			series[n-1].Equity = value
			series[n-1].Realized = value

			continue
		}

		series = append(series, types.EquityPoint{
			Index:    len(series),
			Time:     trade.Time,
			Equity:   value,
			Realized: value,
		})
	}

	return series
}

// MaxDrawdown is the largest peak-to-trough distance of the realized series,
// measured from the base capital. It is 0 without any trade.
func (l *TradeLedger) MaxDrawdown() float64 {
	series := l.RealizedEquitySeries()
	if len(series) == 0 {
		return 0
	}

	peak := decimal.NewFromFloat(l.baseCapital)
	worst := decimal.Zero

	for _, point := range series {
		value := decimal.NewFromFloat(point.Realized)
		if value.GreaterThan(peak) {
			peak = value
		}

		if dd := peak.Sub(value); dd.GreaterThan(worst) {
			worst = dd
		}
	}

	result, _ := worst.Float64()

	return result
}

// Len returns the number of recorded trades.
func (l *TradeLedger) Len() int {
	return len(l.trades)
}
