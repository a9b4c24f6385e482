package models

import "fmt"

// Money is a fixed-point amount in minor units (cents). All monetary
// arithmetic stays in integers; floats are never used for amounts.
type Money int64

func (m Money) Add(other Money) Money {
	return m + other
}

func (m Money) Sub(other Money) Money {
	return m - other
}

// PercentCeil applies a basis-point percentage, rounding up so the
// percentage is never under-collected. 800 bps = 8%.
func (m Money) PercentCeil(bps int64) Money {
	if m <= 0 || bps <= 0 {
		return 0
	}
	return Money((int64(m)*bps + 9999) / 10000)
}

func (m Money) IsPositive() bool {
	return m > 0
}

func (m Money) IsNegative() bool {
	return m < 0
}

// String renders the amount as major.minor for logs, e.g. 5000 -> "50.00".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
