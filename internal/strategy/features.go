package strategy

import (
	"github.com/rxtech-lab/forest/internal/indicator"
	"github.com/rxtech-lab/forest/internal/types"
	"github.com/rxtech-lab/forest/pkg/errors"
)

// FeatureNames is the column order of a feature vector.
var FeatureNames = []string{"ret1", "ma_fast", "ma_slow", "ma_diff"}

// FeatureBuilder computes the model features of the latest bar causally:
// one-bar return, fast and slow moving averages of the close and their difference.
type FeatureBuilder struct {
	maFast    indicator.Indicator
	maSlow    indicator.Indicator
	prevClose float64
	count     int
	latest    []float32
}

// NewFeatureBuilder creates a builder with moving averages of fast and slow bars.
func NewFeatureBuilder(registry indicator.IndicatorRegistry, fast, slow int) (*FeatureBuilder, error) {
	if registry == nil {
		registry = indicator.NewDefaultRegistry()
	}

	maFast, err := registry.GetIndicator(types.IndicatorTypeMA, fast)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to create fast moving average", err)
	}

	maSlow, err := registry.GetIndicator(types.IndicatorTypeMA, slow)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to create slow moving average", err)
	}

	return &FeatureBuilder{
		maFast: maFast,
		maSlow: maSlow,
	}, nil
}

// Update consumes bar and returns its feature vector, or nil while the moving
// averages are warming up.
func (f *FeatureBuilder) Update(bar types.Bar) []float32 {
	ret := 0.0
	if f.count > 0 && f.prevClose != 0 {
		ret = bar.Close/f.prevClose - 1
	}

	f.prevClose = bar.Close
	f.count++

	fast := f.maFast.Update(bar)
	slow := f.maSlow.Update(bar)

	if fast.IsNone() || slow.IsNone() {
		f.latest = nil

		return nil
	}

	f.latest = []float32{
		float32(ret),
		float32(fast.Unwrap()),
		float32(slow.Unwrap()),
		float32(fast.Unwrap() - slow.Unwrap()),
	}

	return f.latest
}

// Latest returns the vector of the last consumed bar.
func (f *FeatureBuilder) Latest() []float32 {
	return f.latest
}

func (f *FeatureBuilder) Reset() {
	f.maFast.Reset()
	f.maSlow.Reset()
	f.prevClose = 0
	f.count = 0
	f.latest = nil
}
