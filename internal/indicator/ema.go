package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/forest/internal/types"
)

// EMA indicator implements Exponential Moving Average calculation on the close.
// It is seeded with the simple mean of the first period closes and uses
// alpha = 2 / (period + 1) afterwards.
type EMA struct {
	period int
	count  int
	sum    float64
	value  optional.Option[float64]
}

// NewEMA creates a new EMA indicator with default configuration.
func NewEMA() Indicator {
	return &EMA{
		period: 20, // Default period
	}
}

// Name returns the name of the indicator.
func (e *EMA) Name() types.IndicatorType {
	return types.IndicatorTypeEMA
}

// Config configures the EMA indicator. Expected parameters: period (int).
func (e *EMA) Config(params ...any) error {
	period, err := parsePeriod(params)
	if err != nil {
		return err
	}

	e.period = period
	e.Reset()

	return nil
}

func (e *EMA) Update(bar types.Bar) optional.Option[float64] {
	if e.value.IsSome() {
		alpha := 2.0 / float64(e.period+1)
		prev := e.value.Unwrap()
		e.value = optional.Some(alpha*bar.Close + (1-alpha)*prev)

		return e.value
	}

	e.count++
	e.sum += bar.Close

	if e.count == e.period {
		e.value = optional.Some(e.sum / float64(e.period))
	}

	return e.value
}

func (e *EMA) Value() optional.Option[float64] {
	return e.value
}

func (e *EMA) Reset() {
	e.count = 0
	e.sum = 0
	e.value = optional.None[float64]()
}
