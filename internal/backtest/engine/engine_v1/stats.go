package engine

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/forest/internal/types"
	"github.com/rxtech-lab/forest/internal/version"
	"github.com/shopspring/decimal"
)

const (
	tradingDaysPerYear = 252.0
	daysPerYear        = 365.25
)

// CalculateRunStats summarises a finished run.
func CalculateRunStats(result types.BacktestResult) types.RunStats {
	stats := types.RunStats{
		ID:             uuid.New().String(),
		Timestamp:      time.Now(),
		Symbol:         result.Symbol,
		Strategy:       result.StrategyName,
		Version:        version.GetVersion(),
		InitialCapital: result.InitialCapital,
		EndingEquity:   result.EndingEquity,
		Halted:         result.Halted,
		HaltedAt:       result.HaltedAt,
		Bars:           len(result.Equity),
	}

	realized := decimal.Zero
	gross := decimal.Zero
	fees := decimal.Zero
	roundTrip := decimal.Zero
	first := true

	for _, trade := range result.Trades {
		realized = realized.Add(decimal.NewFromFloat(trade.PnL))
		gross = gross.Add(decimal.NewFromFloat(trade.GrossPnL))
		fees = fees.Add(decimal.NewFromFloat(trade.Cost))
		roundTrip = roundTrip.Add(decimal.NewFromFloat(trade.PnL))

		if !trade.IsClose() {
			continue
		}

		value, _ := roundTrip.Float64()
		roundTrip = decimal.Zero

		stats.TradeResult.NumberOfTrades++

		switch {
		case value > 0:
			stats.TradeResult.NumberOfWinningTrades++
		case value < 0:
			stats.TradeResult.NumberOfLosingTrades++
		}

		if first || value < stats.TradePnl.MaximumLoss {
			stats.TradePnl.MaximumLoss = value
		}

		if first || value > stats.TradePnl.MaximumProfit {
			stats.TradePnl.MaximumProfit = value
		}

		first = false
	}

	stats.TradePnl.RealizedPnL, _ = realized.Float64()
	stats.TradePnl.GrossPnL, _ = gross.Float64()
	stats.TotalFees, _ = fees.Float64()

	if stats.TradeResult.NumberOfTrades > 0 {
		stats.TradeResult.WinRate = float64(stats.TradeResult.NumberOfWinningTrades) / float64(stats.TradeResult.NumberOfTrades)
	}

	stats.TradeResult.MaxDrawdown = result.MaxDrawdown
	stats.TradeResult.MaxDrawdownPct = result.MaxDrawdownPct

	gain := result.EndingEquity - result.InitialCapital
	if result.InitialCapital > 0 {
		stats.TotalReturn = gain / result.InitialCapital
	}

	if result.MaxDrawdown > 0 {
		stats.ReturnOverMaxDrawdown = gain / result.MaxDrawdown
	} else {
		stats.ReturnOverMaxDrawdown = gain
	}

	stats.CAGR = CAGR(result.Equity)
	stats.Sharpe = Sharpe(result.Equity)

	if len(result.Equity) > 1 && result.FirstClose > 0 {
		units := decimal.NewFromFloat(result.InitialCapital).Div(decimal.NewFromFloat(result.FirstClose))
		pnl := units.Mul(decimal.NewFromFloat(result.LastClose).Sub(decimal.NewFromFloat(result.FirstClose)))
		stats.BuyAndHoldPnl, _ = pnl.Float64()
	}

	return stats
}

// CAGR is (last / first) ^ (1 / years) - 1, with years counted in whole days
// between the first and last point. Fewer than two points, a span shorter than
// a day or a non-positive start give 0.
func CAGR(points []types.EquityPoint) float64 {
	if len(points) < 2 {
		return 0
	}

	first, last := points[0], points[len(points)-1]

	days := math.Floor(last.Time.Sub(first.Time).Hours() / 24)
	if days <= 0 || first.Equity <= 0 || last.Equity < 0 {
		return 0
	}

	growth := math.Pow(last.Equity/first.Equity, daysPerYear/days) - 1
	if !finite(growth) {
		return 0
	}

	return growth
}

// Sharpe annualizes the per-point returns of the equity series with a zero
// risk-free rate. It is 0 with fewer than two returns or without variance.
func Sharpe(points []types.EquityPoint) float64 {
	returns := make([]float64, 0, len(points))

	for i := 1; i < len(points); i++ {
		prev := points[i-1].Equity
		if prev == 0 {
			continue
		}

		returns = append(returns, points[i].Equity/prev-1)
	}

	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)

	std := math.Sqrt(variance)
	if std < 1e-15 || !finite(std) {
		return 0
	}

	return mean / std * math.Sqrt(tradingDaysPerYear)
}
