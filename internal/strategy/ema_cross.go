package strategy

import (
	"github.com/rxtech-lab/forest/internal/indicator"
	"github.com/rxtech-lab/forest/internal/types"
	"github.com/rxtech-lab/forest/pkg/errors"
)

// EMACross votes LONG while the fast EMA of the close is above the slow one,
// SHORT while it is below and FLAT while either is warming up or they are equal.
type EMACross struct {
	fast     int
	slow     int
	fastEMA  indicator.Indicator
	slowEMA  indicator.Indicator
	seen     int
	lastBar  types.Bar
	lastVote types.Direction
}

var _ Strategy = (*EMACross)(nil)

// NewEMACross builds the crossover from the registry's EMA indicator.
func NewEMACross(registry indicator.IndicatorRegistry, fast, slow int) (*EMACross, error) {
	if fast <= 0 || slow <= 0 {
		return nil, errors.Newf(errors.ErrCodeStrategyConfigError, "ema periods must be positive, got fast=%d slow=%d", fast, slow)
	}

	if fast >= slow {
		return nil, errors.Newf(errors.ErrCodeStrategyConfigError, "fast period %d must be shorter than slow period %d", fast, slow)
	}

	if registry == nil {
		registry = indicator.NewDefaultRegistry()
	}

	fastEMA, err := registry.GetIndicator(types.IndicatorTypeEMA, fast)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to create fast ema", err)
	}

	slowEMA, err := registry.GetIndicator(types.IndicatorTypeEMA, slow)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to create slow ema", err)
	}

	return &EMACross{
		fast:     fast,
		slow:     slow,
		fastEMA:  fastEMA,
		slowEMA:  slowEMA,
		seen:     0,
		lastVote: types.DirectionFlat,
	}, nil
}

// Name implements Strategy.
func (e *EMACross) Name() string {
	return "ema_cross"
}

// Signal implements Strategy.
func (e *EMACross) Signal(history []types.Bar) (types.Direction, error) {
	if len(history) == 0 {
		return types.DirectionFlat, nil
	}

	if e.restarted(history) {
		e.Reset()
	}

	for _, bar := range history[e.seen:] {
		e.lastVote = e.update(bar)
	}

	e.seen = len(history)
	e.lastBar = history[len(history)-1]

	return e.lastVote, nil
}

// restarted reports whether history is not a continuation of the bars already consumed.
func (e *EMACross) restarted(history []types.Bar) bool {
	if e.seen == 0 {
		return false
	}

	if len(history) < e.seen {
		return true
	}

	return history[e.seen-1] != e.lastBar
}

func (e *EMACross) update(bar types.Bar) types.Direction {
	fast := e.fastEMA.Update(bar)
	slow := e.slowEMA.Update(bar)

	if fast.IsNone() || slow.IsNone() {
		return types.DirectionFlat
	}

	switch f, s := fast.Unwrap(), slow.Unwrap(); {
	case f > s:
		return types.DirectionLong
	case f < s:
		return types.DirectionShort
	default:
		return types.DirectionFlat
	}
}

// Reset drops all consumed bars.
func (e *EMACross) Reset() {
	e.fastEMA.Reset()
	e.slowEMA.Reset()
	e.seen = 0
	e.lastBar = types.Bar{}
	e.lastVote = types.DirectionFlat
}
