package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/forest/internal/types"
)

// MA is the simple moving average of the close.
type MA struct {
	period int
	window *rolling
}

// NewMA creates a new MA indicator with default configuration.
func NewMA() Indicator {
	return &MA{
		period: 20,
		window: newRolling(20),
	}
}

func (m *MA) Name() types.IndicatorType {
	return types.IndicatorTypeMA
}

// Config configures the MA indicator. Expected parameters: period (int).
func (m *MA) Config(params ...any) error {
	period, err := parsePeriod(params)
	if err != nil {
		return err
	}

	m.period = period
	m.window = newRolling(period)

	return nil
}

func (m *MA) Update(bar types.Bar) optional.Option[float64] {
	m.window.push(bar.Close)

	return m.window.mean()
}

func (m *MA) Value() optional.Option[float64] {
	return m.window.mean()
}

func (m *MA) Reset() {
	m.window.reset()
}
