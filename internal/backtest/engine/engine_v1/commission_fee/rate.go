package commission_fee

import "math"

type RateCommissionFee struct {
	rates Rates
}

func NewRateCommissionFee(rates Rates) CommissionFee {
	return &RateCommissionFee{rates: rates}
}

// Calculate returns |quantity| * price * (spread + commission + slippage).
func (c *RateCommissionFee) Calculate(quantity, price float64) float64 {
	cost := abs(quantity) * abs(price) * (c.rates.Spread + c.rates.Commission + c.rates.Slippage)
	if math.IsNaN(cost) || cost < 0 {
		return 0
	}

	return cost
}
