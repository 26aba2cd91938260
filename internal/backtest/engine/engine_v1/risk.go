package engine

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/forest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/forest/internal/types"
)

// drawdownTolerance absorbs float noise at the exact drawdown boundary.
const drawdownTolerance = 1e-12

// RiskEngine owns the risk state of one run: realized capital, the realized
// equity curve with its running peak, the trailing stop and the cost model.
// It is not safe for concurrent use and must not be shared across runs.
type RiskEngine struct {
	initialCapital float64
	maxDrawdown    float64
	fee            commission_fee.CommissionFee

	curve        []float64
	peak         float64
	trailingStop optional.Option[float64]
}

// NewRiskEngine creates a risk engine seeded with the initial capital.
func NewRiskEngine(initialCapital, maxDrawdown float64, fee commission_fee.CommissionFee) *RiskEngine {
	if fee == nil {
		fee = commission_fee.NewZeroCommissionFee()
	}

	return &RiskEngine{
		initialCapital: initialCapital,
		maxDrawdown:    maxDrawdown,
		fee:            fee,
		curve:          nil,
		peak:           initialCapital,
		trailingStop:   optional.None[float64](),
	}
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}

// PositionSize returns (equity * riskFraction) / (volatility * atrMultiple).
// Degenerate inputs size to 0, which the caller treats as "do not trade".
func (r *RiskEngine) PositionSize(volatility, riskFraction, atrMultiple float64) float64 {
	if !finite(volatility, riskFraction, atrMultiple) || volatility <= 0 || atrMultiple <= 0 {
		return 0
	}

	size := (r.Equity() * riskFraction) / (volatility * atrMultiple)
	if !finite(size) || size <= 0 {
		return 0
	}

	return size
}

// UpdateTrailingStop proposes price - k*vol for a long and price + k*vol for a
// short. A long stop only moves up and a short stop only moves down.
func (r *RiskEngine) UpdateTrailingStop(side types.Side, price, volatility, k float64) {
	if !finite(price, volatility, k) {
		return
	}

	var proposal float64

	switch side {
	case types.SideLong:
		proposal = price - k*volatility
		if r.trailingStop.IsSome() && proposal <= r.trailingStop.Unwrap() {
			return
		}
	case types.SideShort:
		proposal = price + k*volatility
		if r.trailingStop.IsSome() && proposal >= r.trailingStop.Unwrap() {
			return
		}
	default:
		return
	}

	r.trailingStop = optional.Some(proposal)
}

// TrailingStopHit reports whether price has crossed the stop against the position.
func (r *RiskEngine) TrailingStopHit(side types.Side, price float64) bool {
	if r.trailingStop.IsNone() || !finite(price) {
		return false
	}

	stop := r.trailingStop.Unwrap()

	switch side {
	case types.SideLong:
		return price < stop
	case types.SideShort:
		return price > stop
	default:
		return false
	}
}

func (r *RiskEngine) TrailingStop() optional.Option[float64] {
	return r.trailingStop
}

// ResetTrailingStop clears the stop. Called whenever a position closes.
func (r *RiskEngine) ResetTrailingStop() {
	r.trailingStop = optional.None[float64]()
}

// TransactionCost is the cost of filling quantity at price.
func (r *RiskEngine) TransactionCost(quantity, price float64) float64 {
	if !finite(quantity, price) {
		return 0
	}

	cost := r.fee.Calculate(quantity, price)
	if !finite(cost) || cost < 0 {
		return 0
	}

	return cost
}

// RecordRealized appends the previous realized value plus delta to the curve.
func (r *RiskEngine) RecordRealized(delta float64) {
	next := r.Equity() + delta
	r.curve = append(r.curve, next)

	if next > r.peak {
		r.peak = next
	}
}

// Equity is the last realized value, or the initial capital before any fill.
func (r *RiskEngine) Equity() float64 {
	if len(r.curve) == 0 {
		return r.initialCapital
	}

	return r.curve[len(r.curve)-1]
}

func (r *RiskEngine) InitialCapital() float64 {
	return r.initialCapital
}

// Peak is the running maximum of realized equity, starting at initial capital.
func (r *RiskEngine) Peak() float64 {
	return r.peak
}

// Drawdown is (peak - equity) / peak, or 0 when the peak is not positive.
func (r *RiskEngine) Drawdown() float64 {
	if r.peak <= 0 {
		return 0
	}

	return (r.peak - r.Equity()) / r.peak
}

// DrawdownExceeded reports whether realized drawdown reached the configured limit.
func (r *RiskEngine) DrawdownExceeded() bool {
	if r.peak <= 0 {
		return r.Equity() < r.peak
	}

	return r.Drawdown() >= r.maxDrawdown-drawdownTolerance
}

// RealizedCurve returns a copy of the realized equity values.
func (r *RiskEngine) RealizedCurve() []float64 {
	out := make([]float64, len(r.curve))
	copy(out, r.curve)

	return out
}
