package types

type IndicatorType string

const (
	// IndicatorTypeATR is Wilder's average true range.
	IndicatorTypeATR IndicatorType = "atr"
	// IndicatorTypeTrueRangeSMA is a rolling simple mean of the true range.
	IndicatorTypeTrueRangeSMA IndicatorType = "tr_sma"
	IndicatorTypeEMA          IndicatorType = "ema"
	IndicatorTypeMA           IndicatorType = "ma"
)
