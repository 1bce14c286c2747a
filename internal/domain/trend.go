package domain

import "cmp"

// Trend is the direction of a scalar metric between its two latest samples.
type Trend int

const (
	TrendFlat Trend = iota
	TrendUp
	TrendDown
)

func (t Trend) String() string {
	switch t {
	case TrendUp:
		return "up"
	case TrendDown:
		return "down"
	default:
		return "flat"
	}
}

// TrendOf compares the two most recent values of samples, which must be
// ordered oldest to newest. Fewer than two samples is Flat.
func TrendOf[T cmp.Ordered](samples []T) Trend {
	if len(samples) < 2 {
		return TrendFlat
	}
	prev, cur := samples[len(samples)-2], samples[len(samples)-1]
	switch cmp.Compare(cur, prev) {
	case 1:
		return TrendUp
	case -1:
		return TrendDown
	default:
		return TrendFlat
	}
}
