package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/forest/internal/types"
)

// ATR is the Average True Range with Wilder smoothing. The first value is the
// simple mean of the first period true ranges; later values follow
// atr = (prev*(period-1) + tr) / period.
type ATR struct {
	period    int
	count     int
	sum       float64
	value     optional.Option[float64]
	prevClose float64
	hasPrev   bool
}

// NewATR creates a new ATR indicator with default configuration.
func NewATR() Indicator {
	return &ATR{
		period: 14, // Default period
	}
}

// Name returns the name of the indicator.
func (a *ATR) Name() types.IndicatorType {
	return types.IndicatorTypeATR
}

// Config configures the ATR indicator. Expected parameters: period (int).
func (a *ATR) Config(params ...any) error {
	period, err := parsePeriod(params)
	if err != nil {
		return err
	}

	a.period = period
	a.Reset()

	return nil
}

func (a *ATR) Update(bar types.Bar) optional.Option[float64] {
	tr := bar.TrueRange(a.prevClose, a.hasPrev)
	a.prevClose = bar.Close
	a.hasPrev = true

	if a.value.IsSome() {
		prev := a.value.Unwrap()
		a.value = optional.Some((prev*float64(a.period-1) + tr) / float64(a.period))

		return a.value
	}

	a.count++
	a.sum += tr

	if a.count == a.period {
		a.value = optional.Some(a.sum / float64(a.period))
	}

	return a.value
}

func (a *ATR) Value() optional.Option[float64] {
	return a.value
}

func (a *ATR) Reset() {
	a.count = 0
	a.sum = 0
	a.value = optional.None[float64]()
	a.prevClose = 0
	a.hasPrev = false
}
