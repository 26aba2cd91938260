package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type TradePnl struct {
	// Realized PnL. Sum of every fill's net PnL.
	RealizedPnL float64 `yaml:"realized_pnl"`
	// Gross PnL. Sum of closing trades' PnL before costs.
	GrossPnL float64 `yaml:"gross_pnl"`
	// Maximum loss. Smallest round-trip result.
	MaximumLoss float64 `yaml:"maximum_loss"`
	// Maximum profit. Largest round-trip result.
	MaximumProfit float64 `yaml:"maximum_profit"`
}

type TradeResult struct {
	// Count of closed round trips.
	NumberOfTrades int `yaml:"number_of_trades"`
	// Count of round trips with a positive net result.
	NumberOfWinningTrades int `yaml:"number_of_winning_trades"`
	// Count of round trips with a negative net result.
	NumberOfLosingTrades int `yaml:"number_of_losing_trades"`
	// Win rate.
	WinRate float64 `yaml:"win_rate"`
	// Maximum drawdown of the realized series in currency units.
	MaxDrawdown float64 `yaml:"max_drawdown"`
	// Maximum drawdown of the mark-to-market series as a fraction.
	MaxDrawdownPct float64 `yaml:"max_drawdown_pct"`
}

// RunStats summarises one backtest run.
type RunStats struct {
	// ID is the unique identifier for this backtest run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this backtest run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	Symbol    string    `yaml:"symbol"`
	Strategy  string    `yaml:"strategy"`
	// Version of the library that produced the run.
	Version        string  `yaml:"version"`
	InitialCapital float64 `yaml:"initial_capital"`
	EndingEquity   float64 `yaml:"ending_equity"`
	TotalReturn    float64 `yaml:"total_return"`
	// CAGR is the annualized growth of the mark-to-market equity series.
	CAGR float64 `yaml:"cagr"`
	// Sharpe is the mean over the sample deviation of per-bar equity returns,
	// annualized by the square root of 252.
	Sharpe      float64     `yaml:"sharpe"`
	TradeResult TradeResult `yaml:"trade_result"`
	TradePnl    TradePnl    `yaml:"trade_pnl"`
	TotalFees   float64     `yaml:"total_fees"`
	// ReturnOverMaxDrawdown is (ending - initial) / max drawdown, or the raw gain without drawdown.
	ReturnOverMaxDrawdown float64 `yaml:"return_over_max_drawdown"`
	BuyAndHoldPnl         float64 `yaml:"buy_and_hold_pnl"`
	Halted                bool    `yaml:"halted"`
	HaltedAt              int     `yaml:"halted_at"`
	Bars                  int     `yaml:"bars"`
	DataPath              string  `yaml:"data_path,omitempty" json:"data_path,omitempty"`
}

func WriteRunStats(path string, stats []RunStats) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal run stats to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run stats to file: %w", err)
	}

	return nil
}
