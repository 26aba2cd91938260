package datasource

import (
	"strconv"
	"strings"
	"time"

	"github.com/rxtech-lab/forest/internal/types"
	"github.com/rxtech-lab/forest/pkg/errors"
)

type Interval string

const (
	Interval1m  Interval = "1m"
	Interval3m  Interval = "3m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval4h  Interval = "4h"
	Interval1d  Interval = "1d"
)

var intervals = []Interval{
	Interval1m,
	Interval3m,
	Interval5m,
	Interval15m,
	Interval30m,
	Interval1h,
	Interval4h,
	Interval1d,
}

var intervalAliases = map[string]Interval{
	"m": Interval1m,
	"M": Interval1m,
	"h": Interval1h,
	"H": Interval1h,
	"d": Interval1d,
	"D": Interval1d,
}

func getIntervalMinutes(interval Interval) (int, error) {
	var intervalMinutes int

	switch interval {
	case Interval1m:
		intervalMinutes = 1
	case Interval3m:
		intervalMinutes = 3
	case Interval5m:
		intervalMinutes = 5
	case Interval15m:
		intervalMinutes = 15
	case Interval30m:
		intervalMinutes = 30
	case Interval1h:
		intervalMinutes = 60
	case Interval4h:
		intervalMinutes = 240
	case Interval1d:
		intervalMinutes = 1440
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidInterval, "unsupported interval: %s", interval)
	}

	return intervalMinutes, nil
}

// Duration returns the length of one interval.
func (i Interval) Duration() time.Duration {
	minutes, err := getIntervalMinutes(i)
	if err != nil {
		return 0
	}

	return time.Duration(minutes) * time.Minute
}

// ParseInterval normalizes a user supplied timeframe. It accepts the canonical
// forms (1m ... 1d), single letter aliases (m, h, d), upper case units (1H, 15M)
// and plain minute counts ("60" is 1h).
func ParseInterval(raw string) (Interval, error) {
	s := strings.TrimSpace(raw)

	if alias, ok := intervalAliases[s]; ok {
		return alias, nil
	}

	s = strings.ReplaceAll(strings.ToLower(s), " ", "")

	if minutes, err := strconv.Atoi(s); err == nil {
		for _, interval := range intervals {
			if m, _ := getIntervalMinutes(interval); m == minutes {
				return interval, nil
			}
		}

		return "", errors.Newf(errors.ErrCodeInvalidInterval, "unsupported timeframe: %q", raw)
	}

	if len(s) > 1 {
		unit := s[len(s)-1:]

		if n, err := strconv.Atoi(s[:len(s)-1]); err == nil && strings.Contains("mhd", unit) {
			candidate := Interval(strconv.Itoa(n) + unit)
			if _, err := getIntervalMinutes(candidate); err == nil {
				return candidate, nil
			}
		}
	}

	return "", errors.Newf(errors.ErrCodeInvalidInterval, "unsupported timeframe: %q", raw)
}

// Resample aggregates sorted bars into interval buckets aligned to UTC
// boundaries: first open, max high, min low, last close, summed volume. A bucket is
// stamped with its start time. Empty buckets produce no bar.
func Resample(bars []types.Bar, interval Interval) []types.Bar {
	step := interval.Duration()
	if step <= 0 || len(bars) == 0 {
		return bars
	}

	out := make([]types.Bar, 0, len(bars))

	for _, bar := range bars {
		bucket := bar.Time.Truncate(step)

		if n := len(out); n > 0 && out[n-1].Time.Equal(bucket) {
			last := &out[n-1]
			last.High = max(last.High, bar.High)
			last.Low = min(last.Low, bar.Low)
			last.Close = bar.Close
			last.Volume += bar.Volume

			continue
		}

		out = append(out, types.Bar{
			Time:   bucket,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,
		})
	}

	return out
}
