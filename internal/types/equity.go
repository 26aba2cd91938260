package types

import "time"

// EquityPoint is the equity of a run at one bar.
type EquityPoint struct {
	Index int       `yaml:"index" json:"index"`
	Time  time.Time `yaml:"time" json:"time"`
	// Equity is realized equity plus the mark-to-market of any open position.
	Equity float64 `yaml:"equity" json:"equity"`
	// Realized is the realized equity at the end of the bar.
	Realized float64 `yaml:"realized" json:"realized"`
}

// Values returns the Equity field of every point in order.
func Values(points []EquityPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Equity
	}

	return out
}

// RealizedValues returns the Realized field of every point in order.
func RealizedValues(points []EquityPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Realized
	}

	return out
}

// MaxDrawdown returns the largest peak-to-trough distance over values,
// starting from origin. It returns 0 when values is empty.
func MaxDrawdown(origin float64, values []float64) float64 {
	peak := origin
	worst := 0.0

	for _, v := range values {
		if v > peak {
			peak = v
		}

		if dd := peak - v; dd > worst {
			worst = dd
		}
	}

	return worst
}

// MaxDrawdownPct returns the largest fractional decline from a running peak.
// Points where the peak is not positive are skipped.
func MaxDrawdownPct(origin float64, values []float64) float64 {
	peak := origin
	worst := 0.0

	for _, v := range values {
		if v > peak {
			peak = v
		}

		if peak <= 0 {
			continue
		}

		if dd := (peak - v) / peak; dd > worst {
			worst = dd
		}
	}

	return worst
}
