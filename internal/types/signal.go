package types

import "fmt"

// Direction is the directional vote a strategy produces for a bar.
type Direction int

const (
	// DirectionShort asks the engine to hold a short position.
	DirectionShort Direction = -1
	// DirectionFlat carries no directional opinion.
	DirectionFlat Direction = 0
	// DirectionLong asks the engine to hold a long position.
	DirectionLong Direction = 1
)

// Sign returns the -1/0/+1 encoding of the direction.
func (d Direction) Sign() float64 {
	return float64(d)
}

// IsDirectional reports whether the direction is LONG or SHORT.
func (d Direction) IsDirectional() bool {
	return d == DirectionLong || d == DirectionShort
}

func (d Direction) String() string {
	switch d {
	case DirectionLong:
		return "LONG"
	case DirectionShort:
		return "SHORT"
	case DirectionFlat:
		return "FLAT"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Decision is the final action recorded in a decision trace.
type Decision string

const (
	DecisionBuy  Decision = "BUY"
	DecisionSell Decision = "SELL"
	DecisionWait Decision = "WAIT"
)

// DecisionFor maps a signal to the BUY/SELL/WAIT vocabulary of the decision trace.
func DecisionFor(d Direction) Decision {
	switch d {
	case DirectionLong:
		return DecisionBuy
	case DirectionShort:
		return DecisionSell
	default:
		return DecisionWait
	}
}
