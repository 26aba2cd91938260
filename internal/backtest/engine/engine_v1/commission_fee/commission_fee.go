package commission_fee

// CommissionFee prices the transaction cost of one fill.
type CommissionFee interface {
	// Calculate the cost of filling quantity at price. The result is never negative.
	Calculate(quantity, price float64) float64
}

type Broker string

const (
	// BrokerRate charges a fraction of notional for spread, commission and slippage.
	BrokerRate              Broker = "rate"
	BrokerInteractiveBroker Broker = "interactive_broker"
	BrokerZero              Broker = "zero_commission"
)

var AllBrokers = []any{
	BrokerRate,
	BrokerInteractiveBroker,
	BrokerZero,
}

// Rates are the per-notional cost fractions of a fill.
type Rates struct {
	Spread     float64
	Commission float64
	Slippage   float64
}

// DefaultRates are 2 bps spread, 5 bps commission and 1 bp slippage.
var DefaultRates = Rates{
	Spread:     0.0002,
	Commission: 0.0005,
	Slippage:   0.0001,
}

func GetCommissionFeeHandler(broker Broker, rates Rates) CommissionFee {
	switch broker {
	case BrokerRate:
		return NewRateCommissionFee(rates)
	case BrokerInteractiveBroker:
		return NewInteractiveBrokerCommissionFee(rates)
	case BrokerZero:
		return NewZeroCommissionFee()
	default:
		return NewRateCommissionFee(rates)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}

	return v
}
