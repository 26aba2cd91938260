package datasource

import (
	"math"
	"sort"

	"github.com/rxtech-lab/forest/internal/types"
	"github.com/rxtech-lab/forest/pkg/errors"
)

// ValidateBars rejects input the engine cannot replay: no bars, bars with a
// missing timestamp or price, impossible ranges, and timestamps that are not
// strictly increasing.
func ValidateBars(bars []types.Bar) error {
	if len(bars) == 0 {
		return errors.New(errors.ErrCodeNoDataFound, "no bars to backtest")
	}

	for i, bar := range bars {
		if bar.Time.IsZero() {
			return errors.Newf(errors.ErrCodeInvalidBar, "bar %d has no timestamp", i)
		}

		for _, v := range []float64{bar.Open, bar.High, bar.Low, bar.Close, bar.Volume} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.Newf(errors.ErrCodeInvalidBar, "bar %d at %s has a non-finite value", i, bar.Time)
			}
		}

		if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 {
			return errors.Newf(errors.ErrCodeInvalidBar, "bar %d at %s has a missing or non-positive price", i, bar.Time)
		}

		if bar.High < bar.Low {
			return errors.Newf(errors.ErrCodeInvalidBar, "bar %d at %s has high %.4f below low %.4f", i, bar.Time, bar.High, bar.Low)
		}

		if bar.Volume < 0 {
			return errors.Newf(errors.ErrCodeInvalidBar, "bar %d at %s has negative volume", i, bar.Time)
		}

		if i > 0 && !bar.Time.After(bars[i-1].Time) {
			return errors.Newf(errors.ErrCodeNonMonotonicTime,
				"bar %d at %s is not after bar %d at %s", i, bar.Time, i-1, bars[i-1].Time)
		}
	}

	return nil
}

// NormalizeBars returns a copy sorted by time with duplicate timestamps removed,
// keeping the last bar seen for each timestamp.
func NormalizeBars(bars []types.Bar) []types.Bar {
	if len(bars) == 0 {
		return nil
	}

	out := make([]types.Bar, len(bars))
	copy(out, bars)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})

	deduped := out[:0]

	for _, bar := range out {
		if n := len(deduped); n > 0 && deduped[n-1].Time.Equal(bar.Time) {
			deduped[n-1] = bar

			continue
		}

		deduped = append(deduped, bar)
	}

	return deduped
}
