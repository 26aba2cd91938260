package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/forest/internal/types"
)

// TrueRangeSMA is the rolling simple mean of the true range over period bars.
type TrueRangeSMA struct {
	period    int
	window    *rolling
	prevClose float64
	hasPrev   bool
}

func NewTrueRangeSMA() Indicator {
	return &TrueRangeSMA{
		period: 14,
		window: newRolling(14),
	}
}

func (t *TrueRangeSMA) Name() types.IndicatorType {
	return types.IndicatorTypeTrueRangeSMA
}

// Config configures the indicator. Expected parameters: period (int).
func (t *TrueRangeSMA) Config(params ...any) error {
	period, err := parsePeriod(params)
	if err != nil {
		return err
	}

	t.period = period
	t.window = newRolling(period)
	t.Reset()

	return nil
}

func (t *TrueRangeSMA) Update(bar types.Bar) optional.Option[float64] {
	t.window.push(bar.TrueRange(t.prevClose, t.hasPrev))
	t.prevClose = bar.Close
	t.hasPrev = true

	return t.window.mean()
}

func (t *TrueRangeSMA) Value() optional.Option[float64] {
	return t.window.mean()
}

func (t *TrueRangeSMA) Reset() {
	t.window.reset()
	t.prevClose = 0
	t.hasPrev = false
}
