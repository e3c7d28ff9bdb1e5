package services

import "github.com/shopspring/decimal"

// DiscountedPrice returns price × (1 − discount/100) rounded to cents.
func DiscountedPrice(price, discount float64) float64 {
	p := decimal.NewFromFloat(price)
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(discount).Div(decimal.NewFromInt(100)))
	return p.Mul(factor).Round(2).InexactFloat64()
}

// samePrice compares two amounts at cent precision.
func samePrice(a, b float64) bool {
	return decimal.NewFromFloat(a).Round(2).Equal(decimal.NewFromFloat(b).Round(2))
}
