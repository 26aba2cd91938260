package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// Trace filter keys.
const (
	FilterVolatilityReady = "atr_ok"
	FilterStopHit         = "trailing_hit"
	FilterSizeOK          = "size_ok"
	FilterDrawdown        = "drawdown_exceeded"
	FilterHalted          = "halted"
)

// DecisionTrace is the structured record of what the engine did on one bar.
type DecisionTrace struct {
	Index  int
	Time   time.Time
	Symbol string
	// Signal is the strategy vote for the bar. It is FLAT on bars the engine did not evaluate.
	Signal Direction
	// StateBefore and StateAfter are the engine states around the bar.
	StateBefore Direction
	StateAfter  Direction
	Volatility  optional.Option[float64]
	StopLevel   optional.Option[float64]
	Filters     map[string]bool
	Final       Decision
	Fills       []Trade
	Equity      float64
	Realized    float64
}
