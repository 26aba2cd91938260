package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/forest/internal/types"
)

// BarGenerator produces synthetic OHLCV series for tests and benchmarks.
type BarGenerator struct {
	rng *rand.Rand
}

// NewBarGenerator seeds the generator. A fixed seed gives a reproducible series.
func NewBarGenerator(seed int64) *BarGenerator {
	return &BarGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

type GeneratorConfig struct {
	StartTime time.Time
	Interval  time.Duration
	Count     int
	// InitialPrice is the open of the first bar.
	InitialPrice float64
	// Volatility is the per-bar standard deviation of returns (0.002 = 0.2%).
	Volatility float64
	// Drift is added to every bar's return.
	Drift      float64
	VolumeBase float64
}

func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		StartTime:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:     time.Minute,
		Count:        1000,
		InitialPrice: 100.0,
		Volatility:   0.002,
		Drift:        0,
		VolumeBase:   1000,
	}
}

// Generate returns a geometric random walk. Every bar satisfies
// low <= min(open, close) and high >= max(open, close).
func (g *BarGenerator) Generate(config GeneratorConfig) []types.Bar {
	bars := make([]types.Bar, config.Count)
	price := config.InitialPrice
	at := config.StartTime

	for i := range bars {
		open := price

		// Box-Muller
		u1 := 1 - g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		closePrice := open * (1 + config.Volatility*z + config.Drift)
		if closePrice <= 0 {
			closePrice = open * 0.99
		}

		high := math.Max(open, closePrice) + g.rng.Float64()*config.Volatility*open*0.5
		low := math.Min(open, closePrice) - g.rng.Float64()*config.Volatility*open*0.5

		if low <= 0 {
			low = math.Min(open, closePrice) * 0.99
		}

		bars[i] = types.Bar{
			Time:   at,
			Open:   round(open, 4),
			High:   round(high, 4),
			Low:    round(low, 4),
			Close:  round(closePrice, 4),
			Volume: round(config.VolumeBase*(0.5+g.rng.Float64()), 2),
		}

		price = closePrice
		at = at.Add(config.Interval)
	}

	return bars
}

// LinearBars returns one-minute bars whose close moves by step every bar.
// High and low sit spread above and below the close.
func LinearBars(start time.Time, count int, first, step, spread float64) []types.Bar {
	bars := make([]types.Bar, count)

	for i := range bars {
		price := first + float64(i)*step
		bars[i] = types.Bar{
			Time:   start.Add(time.Duration(i) * time.Minute),
			Open:   price,
			High:   price + spread,
			Low:    price - spread,
			Close:  price,
			Volume: 1,
		}
	}

	return bars
}

// PriceBars returns one-minute bars with the given closes and a fixed high/low spread.
func PriceBars(start time.Time, spread float64, closes ...float64) []types.Bar {
	bars := make([]types.Bar, len(closes))

	for i, price := range closes {
		bars[i] = types.Bar{
			Time:   start.Add(time.Duration(i) * time.Minute),
			Open:   price,
			High:   price + spread,
			Low:    price - spread,
			Close:  price,
			Volume: 1,
		}
	}

	return bars
}

func round(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
