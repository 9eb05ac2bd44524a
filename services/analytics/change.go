package analytics

import "github.com/shopspring/decimal"

// PercentChange compares cur against prev. A zero baseline yields 0 when
// cur is also zero and a flat 100 otherwise. The result is rounded to one
// decimal place.
func PercentChange(cur, prev float64) float64 {
	if prev == 0 {
		if cur == 0 {
			return 0
		}
		return 100
	}
	c := decimal.NewFromFloat(cur)
	p := decimal.NewFromFloat(prev)
	v, _ := c.Sub(p).Div(p).Mul(decimal.NewFromInt(100)).Round(1).Float64()
	return v
}
