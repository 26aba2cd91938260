package commission_fee

type ZeroCommissionFee struct {
}

func NewZeroCommissionFee() CommissionFee {
	return &ZeroCommissionFee{}
}

func (c *ZeroCommissionFee) Calculate(quantity, price float64) float64 {
	return 0
}
