package mocks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBarGenerator_Generate(t *testing.T) {
	config := DefaultGeneratorConfig()
	config.Count = 500

	bars := NewBarGenerator(42).Generate(config)

	assert.Len(t, bars, 500)

	for i, bar := range bars {
		assert.Greater(t, bar.Low, 0.0, "bar %d", i)
		assert.GreaterOrEqual(t, bar.High, bar.Low, "bar %d", i)
		assert.GreaterOrEqual(t, bar.Volume, 0.0, "bar %d", i)

		if i > 0 {
			assert.Equal(t, config.Interval, bar.Time.Sub(bars[i-1].Time), "bar %d", i)
		}
	}
}

func TestBarGenerator_Reproducible(t *testing.T) {
	config := DefaultGeneratorConfig()
	config.Count = 50

	assert.Equal(t, NewBarGenerator(7).Generate(config), NewBarGenerator(7).Generate(config))
	assert.NotEqual(t, NewBarGenerator(7).Generate(config), NewBarGenerator(8).Generate(config))
}

func TestLinearBars(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := LinearBars(start, 3, 100, 2, 0.5)

	assert.Equal(t, []float64{100, 102, 104}, []float64{bars[0].Close, bars[1].Close, bars[2].Close})
	assert.Equal(t, 104.5, bars[2].High)
	assert.Equal(t, start.Add(2*time.Minute), bars[2].Time)
}

func TestPriceBars(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := PriceBars(start, 1, 10, 12)

	assert.Len(t, bars, 2)
	assert.Equal(t, 11.0, bars[1].Low)
}
