package types

import "time"

// Bar is one OHLCV observation for a fixed interval. Bars are never mutated
// once produced by a data source.
type Bar struct {
	Time   time.Time `csv:"time" json:"time" yaml:"time"`
	Open   float64   `csv:"open" json:"open" yaml:"open"`
	High   float64   `csv:"high" json:"high" yaml:"high"`
	Low    float64   `csv:"low" json:"low" yaml:"low"`
	Close  float64   `csv:"close" json:"close" yaml:"close"`
	Volume float64   `csv:"volume" json:"volume" yaml:"volume"`
}

// TrueRange returns the bar's true range against the previous close.
// Without a previous close it falls back to high - low.
func (b Bar) TrueRange(prevClose float64, hasPrev bool) float64 {
	hl := b.High - b.Low
	if !hasPrev {
		return hl
	}

	hc := b.High - prevClose
	if hc < 0 {
		hc = -hc
	}

	lc := b.Low - prevClose
	if lc < 0 {
		lc = -lc
	}

	return max(hl, hc, lc)
}
