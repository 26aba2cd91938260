package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// Side is the side of an open position.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// SideFor returns the position side for a directional signal.
func SideFor(d Direction) Side {
	if d == DirectionShort {
		return SideShort
	}

	return SideLong
}

// Sign returns +1 for a long and -1 for a short.
func (s Side) Sign() float64 {
	if s == SideShort {
		return -1
	}

	return 1
}

// Direction returns the engine state that holds this side.
func (s Side) Direction() Direction {
	if s == SideShort {
		return DirectionShort
	}

	return DirectionLong
}

// TradeAction tells whether a fill opened or closed the position.
type TradeAction string

const (
	TradeActionOpen  TradeAction = "open"
	TradeActionClose TradeAction = "close"
)

// TradeReason is the trigger of a fill.
type TradeReason string

const (
	TradeReasonSignal       TradeReason = "signal"
	TradeReasonFlatSignal   TradeReason = "flat_signal"
	TradeReasonTrailingStop TradeReason = "trailing_stop"
	TradeReasonDrawdownHalt TradeReason = "drawdown_halt"
	TradeReasonEndOfData    TradeReason = "end_of_data"
)

// Trade is an immutable fill record.
type Trade struct {
	Time     time.Time   `yaml:"time" json:"time"`
	Price    float64     `yaml:"price" json:"price"`
	Quantity float64     `yaml:"quantity" json:"quantity"`
	Side     Side        `yaml:"side" json:"side"`
	Action   TradeAction `yaml:"action" json:"action"`
	Reason   TradeReason `yaml:"reason" json:"reason"`
	// Cost is the transaction cost charged on this fill.
	Cost float64 `yaml:"cost" json:"cost"`
	// GrossPnL is (exit - entry) * sign * quantity for a close, 0 for an open.
	GrossPnL float64 `yaml:"gross_pnl" json:"gross_pnl"`
	// PnL is the realized equity change booked by this fill net of its cost.
	// An open books -Cost, a close books GrossPnL - Cost.
	PnL float64 `yaml:"pnl" json:"pnl"`
}

// IsClose reports whether the trade closed a position.
func (t Trade) IsClose() bool {
	return t.Action == TradeActionClose
}

// Position is the single open position held by the engine.
type Position struct {
	Side       Side
	Quantity   float64
	EntryPrice float64
	EntryTime  time.Time
	// StopLevel is the trailing stop; None until a volatility reading anchors it.
	StopLevel optional.Option[float64]
}

// Unrealized is the mark-to-market value of the position at price.
func (p Position) Unrealized(price float64) float64 {
	return (price - p.EntryPrice) * p.Side.Sign() * p.Quantity
}
