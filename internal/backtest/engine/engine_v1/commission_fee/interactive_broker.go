package commission_fee

import "math"

// InteractiveBrokerCommissionFee charges 0.005 per unit with a 1.0 minimum,
// plus spread and slippage as a fraction of notional.
type InteractiveBrokerCommissionFee struct {
	rates Rates
}

func NewInteractiveBrokerCommissionFee(rates Rates) CommissionFee {
	return &InteractiveBrokerCommissionFee{rates: rates}
}

func (c *InteractiveBrokerCommissionFee) Calculate(quantity, price float64) float64 {
	commission := math.Max(1.0, 0.005*abs(quantity))
	cost := commission + abs(quantity)*abs(price)*(c.rates.Spread+c.rates.Slippage)

	if math.IsNaN(cost) {
		return 0
	}

	return cost
}
