// Package risk turns point distances and volatility into normalised price
// levels. All arithmetic is done in decimal so that levels land exactly on
// the symbol's price grid (1.2000 - 50 * 0.0001 is 1.1950, not 1.19499...).
package risk

import (
	"github.com/evdnx/gotrend/types"
	"github.com/shopspring/decimal"
)

// Levels are the protective prices attached to a new position. A zero
// value means the level is not set.
type Levels struct {
	StopLoss   float64
	TakeProfit float64
}

// EntryLevels places stop and take-profit for a new position. Longs are
// filled at the ask and stopped out at the bid, so the stop is measured from
// the bid and the target from the ask; shorts mirror that.
func EntryLevels(side types.Side, bid, ask float64, stopPoints, takePoints int, point float64, digits int) Levels {
	pt := decimal.NewFromFloat(point)
	b := decimal.NewFromFloat(bid)
	a := decimal.NewFromFloat(ask)
	stopDist := pt.Mul(decimal.NewFromInt(int64(stopPoints)))
	takeDist := pt.Mul(decimal.NewFromInt(int64(takePoints)))

	var lv Levels
	switch side {
	case types.Long:
		if stopPoints > 0 {
			lv.StopLoss = normalize(b.Sub(stopDist), digits)
		}
		if takePoints > 0 {
			lv.TakeProfit = normalize(a.Add(takeDist), digits)
		}
	case types.Short:
		if stopPoints > 0 {
			lv.StopLoss = normalize(a.Add(stopDist), digits)
		}
		if takePoints > 0 {
			lv.TakeProfit = normalize(b.Sub(takeDist), digits)
		}
	}
	return lv
}

// TrailingCandidate is the stop an ATR trail would place right now:
// bid - mult*atr for longs, ask + mult*atr for shorts.
func TrailingCandidate(side types.Side, bid, ask, atr, multiplier float64, digits int) float64 {
	dist := decimal.NewFromFloat(atr).Mul(decimal.NewFromFloat(multiplier))
	if side == types.Short {
		return normalize(decimal.NewFromFloat(ask).Add(dist), digits)
	}
	return normalize(decimal.NewFromFloat(bid).Sub(dist), digits)
}

// Tightens reports whether moving the stop from current to candidate moves it
// strictly in the position's favour. A current stop of 0 is "no stop", which
// any positive candidate tightens.
func Tightens(side types.Side, current, candidate float64) bool {
	if candidate <= 0 {
		return false
	}
	if current <= 0 {
		return true
	}
	if side == types.Short {
		return candidate < current
	}
	return candidate > current
}

func normalize(d decimal.Decimal, digits int) float64 {
	f, _ := d.Round(int32(digits)).Float64()
	return f
}
