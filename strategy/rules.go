package strategy

import (
	"math"

	"github.com/evdnx/gotrend/config"
	"github.com/evdnx/gotrend/risk"
	"github.com/evdnx/gotrend/types"
	"github.com/moznion/go-optional"
)

// Samples are the trading-timeframe buffers, newest first.
type Samples struct {
	Trend      []float64
	RSI        []float64
	MACDMain   []float64
	MACDSignal []float64
	ATR        float64
}

// HigherSamples are the confirmation-timeframe buffers used to manage an
// open position. ExitTrend is only the latest value of the longer EMA.
type HigherSamples struct {
	Trend     []float64
	RSI       []float64
	ExitTrend float64
}

// Snapshot is everything one decision pass looks at. Higher is only
// populated while a position is open.
type Snapshot struct {
	Quote    types.Quote
	Entry    Samples
	Higher   HigherSamples
	Position optional.Option[types.Position]
}

// ActionKind names the gateway request an Action asks for.
type ActionKind string

const (
	OpenLong      ActionKind = "open_long"
	OpenShort     ActionKind = "open_short"
	ClosePosition ActionKind = "close"
	ModifyStop    ActionKind = "modify_stop"
)

// ExitReason is the rule that raised a close signal.
type ExitReason string

const (
	ExitRSIReversal   ExitReason = "rsi_reversal"
	ExitTrendReversal ExitReason = "trend_reversal"
)

// Action is one request for the order gateway.
type Action struct {
	Kind       ActionKind
	Volume     float64
	StopLoss   float64
	TakeProfit float64
	Reason     string
}

// Decision is the outcome of one pass. Held lists exits that fired before
// the minimum holding duration elapsed; Suppressed is the side of an entry
// signal ignored because a position was already open.
type Decision struct {
	Actions    []Action
	Held       []ExitReason
	Suppressed types.Side
}

// Evaluate applies the rule set to one snapshot. Entry rules only run when
// newBar is set and no position is open; management rules run on every
// call while a position is open. A close ends the pass: no stop change is
// requested for a position that is being closed, nor for one whose exit is
// being held.
func Evaluate(cfg *config.StrategyConfig, snap Snapshot, newBar bool) Decision {
	var d Decision
	if snap.Position.IsSome() {
		pos := snap.Position.Unwrap()
		if newBar {
			if side, ok := entrySignal(cfg, snap.Entry); ok {
				d.Suppressed = side
			}
		}
		manage(cfg, snap, pos, &d)
		return d
	}
	if !newBar {
		return d
	}
	side, ok := entrySignal(cfg, snap.Entry)
	if !ok {
		return d
	}
	q := snap.Quote
	lv := risk.EntryLevels(side, q.Bid, q.Ask, cfg.StopLossPoints, cfg.TakeProfitPoints, cfg.Point, cfg.Digits)
	kind := OpenLong
	if side == types.Short {
		kind = OpenShort
	}
	d.Actions = append(d.Actions, Action{
		Kind:       kind,
		Volume:     cfg.LotSize,
		StopLoss:   lv.StopLoss,
		TakeProfit: lv.TakeProfit,
		Reason:     "rsi_cross_with_trend",
	})
	return d
}

// entrySignal: long when the trend EMA rises and RSI crosses up through the
// lower level, short when it falls and RSI crosses down through the upper
// level. The trend conditions exclude each other, so at most one fires.
func entrySignal(cfg *config.StrategyConfig, s Samples) (types.Side, bool) {
	t, r := s.Trend, s.RSI
	if len(t) < 2 || len(r) < 2 {
		return "", false
	}
	if t[0] > t[1] && r[0] > cfg.RSILowerLevel && r[1] <= cfg.RSILowerLevel {
		return types.Long, true
	}
	if t[0] < t[1] && r[0] < cfg.RSIUpperLevel && r[1] >= cfg.RSIUpperLevel {
		return types.Short, true
	}
	return "", false
}

func manage(cfg *config.StrategyConfig, snap Snapshot, pos types.Position, d *Decision) {
	q := snap.Quote
	matured := pos.Held(q.Time) >= cfg.MinHold()
	for _, reason := range exitSignals(cfg, pos.Side, snap.Higher) {
		if !matured {
			d.Held = append(d.Held, reason)
			continue
		}
		d.Actions = append(d.Actions, Action{Kind: ClosePosition, Reason: string(reason)})
		return
	}
	// a held exit freezes the position until the hold elapses
	if len(d.Held) > 0 {
		return
	}

	atr := snap.Entry.ATR
	if math.IsNaN(atr) || math.IsInf(atr, 0) || atr <= 0 {
		return
	}
	candidate := risk.TrailingCandidate(pos.Side, q.Bid, q.Ask, atr, cfg.ATRMultiplier, cfg.Digits)
	if risk.Tightens(pos.Side, pos.StopLoss, candidate) {
		d.Actions = append(d.Actions, Action{
			Kind:       ModifyStop,
			StopLoss:   candidate,
			TakeProfit: pos.TakeProfit,
			Reason:     "atr_trailing",
		})
	}
}

// exitSignals returns the reversal exits that fire for side, in evaluation
// order.
func exitSignals(cfg *config.StrategyConfig, side types.Side, h HigherSamples) []ExitReason {
	var out []ExitReason
	r, t, ema := h.RSI, h.Trend, h.ExitTrend
	if len(r) < 2 || len(t) < 2 {
		return nil
	}
	switch side {
	case types.Long:
		if r[0] > cfg.RSIExitLevel && r[1] <= cfg.RSIExitLevel {
			out = append(out, ExitRSIReversal)
		}
		if t[1] > ema && t[0] < ema {
			out = append(out, ExitTrendReversal)
		}
	case types.Short:
		level := 100 - cfg.RSIExitLevel
		if r[0] < level && r[1] >= level {
			out = append(out, ExitRSIReversal)
		}
		if t[1] < ema && t[0] > ema {
			out = append(out, ExitTrendReversal)
		}
	}
	return out
}
