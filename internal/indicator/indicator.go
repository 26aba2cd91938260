package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/forest/internal/types"
	"github.com/rxtech-lab/forest/pkg/errors"
)

// Indicator is a streaming technical indicator. It is fed one bar at a time in
// time order and reports None until enough bars have been seen.
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Config sets the indicator parameters. It must be called before the first Update.
	Config(params ...any) error
	// Update consumes the next bar and returns the value after it.
	Update(bar types.Bar) optional.Option[float64]
	// Value returns the last value without consuming a bar.
	Value() optional.Option[float64]
	// Reset drops all state so the indicator can be reused for a new series.
	Reset()
}

// parsePeriod reads the single period parameter shared by every indicator.
func parsePeriod(params []any) (int, error) {
	if len(params) != 1 {
		return 0, errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, ok := params[0].(int)
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidType, "invalid type for period parameter, expected int")
	}

	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	return period, nil
}

// rolling keeps the sum of the last n values.
type rolling struct {
	values []float64
	next   int
	filled bool
	sum    float64
}

func newRolling(n int) *rolling {
	return &rolling{values: make([]float64, n)}
}

func (r *rolling) push(v float64) {
	r.sum -= r.values[r.next]
	r.values[r.next] = v
	r.sum += v

	r.next++
	if r.next == len(r.values) {
		r.next = 0
		r.filled = true
	}
}

func (r *rolling) mean() optional.Option[float64] {
	if !r.filled {
		return optional.None[float64]()
	}

	return optional.Some(r.sum / float64(len(r.values)))
}

func (r *rolling) reset() {
	clear(r.values)
	r.next = 0
	r.filled = false
	r.sum = 0
}
