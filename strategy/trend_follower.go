package strategy

import (
	"math"
	"time"

	"github.com/evdnx/gotrend/config"
	"github.com/evdnx/gotrend/errors"
	"github.com/evdnx/gotrend/executor"
	"github.com/evdnx/gotrend/logger"
	"github.com/evdnx/gotrend/marketdata"
	"github.com/evdnx/gotrend/metrics"
	"github.com/evdnx/gotrend/types"
)

// TrendFollower is the engine context for one instrument: config, bar clock
// and the two collaborators. It is not safe for concurrent use; ticks are
// processed one at a time.
type TrendFollower struct {
	*BaseStrategy
	Data  marketdata.Provider
	clock BarClock
	ind   indicatorSet
}

func NewTrendFollower(cfg config.StrategyConfig, data marketdata.Provider,
	exec executor.Executor, log logger.Logger) (*TrendFollower, error) {

	if data == nil {
		return nil, errors.New(errors.ErrCodeConfigurationInvalid, "market data provider is required")
	}
	base, err := NewBaseStrategy(cfg, exec, log)
	if err != nil {
		return nil, err
	}
	return &TrendFollower{
		BaseStrategy: base,
		Data:         data,
		ind:          indicatorsFor(&base.Cfg),
	}, nil
}

// OnTick runs one decision pass and hands the resulting actions to the
// gateway.
//
// If any price, indicator or position read fails the pass is skipped and a
// DataUnavailable error returned; the bar clock is not advanced, so entry
// rules get another chance on the next tick of the same bar. If the gateway
// refuses a request the error is OrderRejected and the remaining actions of
// this tick are dropped.
func (t *TrendFollower) OnTick() (Decision, error) {
	snap, barOpen, err := t.snapshot()
	if err != nil {
		metrics.TicksSkipped.Inc()
		t.Log.Warn("tick_skipped", logger.String("symbol", t.Symbol), logger.Err(err))
		return Decision{}, err
	}
	newBar := t.clock.Advance(barOpen)
	d := Evaluate(&t.Cfg, snap, newBar)
	t.report(snap, newBar, d)

	for _, a := range d.Actions {
		if err := t.submit(a, snap.Quote); err != nil {
			return d, err
		}
	}
	return d, nil
}

// LastBar returns the open time of the last bar the engine processed.
func (t *TrendFollower) LastBar() time.Time {
	return t.clock.Last()
}

func (t *TrendFollower) snapshot() (Snapshot, time.Time, error) {
	var snap Snapshot
	q, err := t.Data.Quote(t.Symbol)
	if err != nil {
		return snap, time.Time{}, err
	}
	snap.Quote = q

	e := &snap.Entry
	if e.Trend, err = t.series(t.ind.trend, sampleDepth); err != nil {
		return snap, time.Time{}, err
	}
	if e.RSI, err = t.series(t.ind.rsi, sampleDepth); err != nil {
		return snap, time.Time{}, err
	}
	if e.MACDMain, err = t.series(t.ind.macdMain, sampleDepth); err != nil {
		return snap, time.Time{}, err
	}
	if e.MACDSignal, err = t.series(t.ind.macdSignal, sampleDepth); err != nil {
		return snap, time.Time{}, err
	}
	atr, err := t.series(t.ind.atr, 1)
	if err != nil {
		return snap, time.Time{}, err
	}
	e.ATR = atr[0]

	open, err := t.Data.BarOpenTime(t.Symbol, t.Cfg.TradingTimeframe)
	if err != nil {
		return snap, time.Time{}, err
	}

	pos, err := t.Exec.Position(t.Symbol)
	if err != nil {
		return snap, time.Time{}, errors.Wrap(errors.ErrCodeDataUnavailable, "read position", err)
	}
	snap.Position = pos
	if pos.IsSome() {
		h := &snap.Higher
		if h.Trend, err = t.series(t.ind.htfTrend, sampleDepth); err != nil {
			return snap, time.Time{}, err
		}
		if h.RSI, err = t.series(t.ind.htfRSI, sampleDepth); err != nil {
			return snap, time.Time{}, err
		}
		exit, err := t.series(t.ind.exitTrend, 1)
		if err != nil {
			return snap, time.Time{}, err
		}
		h.ExitTrend = exit[0]
	}
	return snap, open, nil
}

// series reads count samples of ind and refuses short or non-finite data.
func (t *TrendFollower) series(ind types.Indicator, count int) ([]float64, error) {
	vals, err := t.Data.Series(t.Symbol, ind, count)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeDataUnavailable) {
			return nil, err
		}
		return nil, errors.Wrapf(errors.ErrCodeDataUnavailable, err, "series %s", ind.Key())
	}
	if len(vals) < count {
		return nil, errors.Newf(errors.ErrCodeDataUnavailable, "series %s has %d of %d samples", ind.Key(), len(vals), count)
	}
	for _, v := range vals[:count] {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.Newf(errors.ErrCodeDataUnavailable, "series %s holds an empty value", ind.Key())
		}
	}
	return vals[:count], nil
}

func (t *TrendFollower) report(snap Snapshot, newBar bool, d Decision) {
	e := snap.Entry
	t.Log.Debug("tick_samples",
		logger.String("symbol", t.Symbol),
		logger.Bool("new_bar", newBar),
		logger.Float64s("trend", e.Trend),
		logger.Float64s("rsi", e.RSI),
		logger.Float64s("macd_main", e.MACDMain),
		logger.Float64s("macd_signal", e.MACDSignal),
		logger.Float64("atr", e.ATR),
	)
	if snap.Position.IsSome() {
		h := snap.Higher
		t.Log.Debug("higher_samples",
			logger.String("symbol", t.Symbol),
			logger.Float64s("trend", h.Trend),
			logger.Float64s("rsi", h.RSI),
			logger.Float64("exit_trend", h.ExitTrend),
		)
	}
	for _, a := range d.Actions {
		metrics.Signals.WithLabelValues(string(a.Kind)).Inc()
	}
	for _, reason := range d.Held {
		metrics.ExitsHeld.WithLabelValues(string(reason)).Inc()
		pos := snap.Position.Unwrap()
		t.Log.Info("exit_held",
			logger.String("symbol", t.Symbol),
			logger.String("side", string(pos.Side)),
			logger.String("reason", string(reason)),
			logger.Duration("held_for", pos.Held(snap.Quote.Time)),
			logger.Duration("min_hold", t.Cfg.MinHold()),
		)
	}
	if d.Suppressed != "" {
		metrics.Signals.WithLabelValues("entry_suppressed").Inc()
		t.Log.Warn("entry_suppressed",
			logger.String("symbol", t.Symbol),
			logger.String("signal", string(d.Suppressed)),
			logger.String("open_side", string(snap.Position.Unwrap().Side)),
		)
	}
}
