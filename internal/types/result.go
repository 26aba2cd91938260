package types

// BacktestResult is the output of one backtest run.
type BacktestResult struct {
	Symbol         string
	StrategyName   string
	InitialCapital float64
	Trades         []Trade
	// Equity holds one point per input bar.
	Equity []EquityPoint
	// RealizedEquity is the ledger series, one point per distinct fill time.
	RealizedEquity []EquityPoint
	EndingEquity   float64
	// MaxDrawdown is the ledger's peak-to-trough distance in currency units.
	MaxDrawdown float64
	// MaxDrawdownPct is the largest fractional decline of the mark-to-market series.
	MaxDrawdownPct float64
	// DrawdownBreached is set when realized drawdown crossed the configured limit.
	DrawdownBreached bool
	// Halted is set when the run stopped trading because of the drawdown guard.
	Halted bool
	// HaltedAt is the bar index of the halt, -1 when the run did not halt.
	HaltedAt int
	// FirstClose and LastClose are the closes of the first and last bar the
	// run replayed, after windowing and resampling.
	FirstClose float64
	LastClose  float64
}

// RoundTrips returns the number of closing trades.
func (r BacktestResult) RoundTrips() int {
	n := 0

	for _, t := range r.Trades {
		if t.IsClose() {
			n++
		}
	}

	return n
}
