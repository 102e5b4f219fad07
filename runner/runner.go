// Package runner drives a TrendFollower from a tick feed.
package runner

import (
	"context"

	"github.com/evdnx/gotrend/errors"
	"github.com/evdnx/gotrend/executor"
	"github.com/evdnx/gotrend/logger"
	"github.com/evdnx/gotrend/marketdata"
	"github.com/evdnx/gotrend/strategy"
)

// Summary counts what happened during a run.
type Summary struct {
	Ticks             int
	Entries           int
	Exits             int
	HeldExits         int
	StopModifications int
	Suppressed        int
	Rejections        int
	Skipped           int
}

// Runner feeds ticks to the strategy one at a time. Exec, when it also
// implements executor.Marker, sees every quote before the strategy does so
// protective levels trigger ahead of the decision pass.
type Runner struct {
	Strategy *strategy.TrendFollower
	Feed     marketdata.Feed
	Exec     executor.Executor
	Log      logger.Logger
}

func New(s *strategy.TrendFollower, feed marketdata.Feed, exec executor.Executor, log logger.Logger) *Runner {
	if log == nil {
		log = logger.NewNop()
	}
	return &Runner{Strategy: s, Feed: feed, Exec: exec, Log: log}
}

// Run processes ticks until the feed is exhausted, the feed fails or ctx is
// cancelled. Skipped ticks and rejected orders are counted and the run
// continues; anything else ends it.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	marker, _ := r.Exec.(executor.Marker)

	for {
		select {
		case <-ctx.Done():
			return sum, ctx.Err()
		default:
		}

		q, ok, err := r.Feed.Next()
		if err != nil {
			r.Log.Error("feed_failed", logger.Int("ticks", sum.Ticks), logger.Err(err))
			return sum, err
		}
		if !ok {
			break
		}
		sum.Ticks++
		if marker != nil {
			marker.Mark(q)
		}

		d, err := r.Strategy.OnTick()
		sum.HeldExits += len(d.Held)
		if d.Suppressed != "" {
			sum.Suppressed++
		}
		switch {
		case err == nil:
			count(&sum, d.Actions)
		case errors.HasCode(err, errors.ErrCodeDataUnavailable):
			sum.Skipped++
		case errors.HasCode(err, errors.ErrCodeOrderRejected):
			sum.Rejections++
		default:
			return sum, err
		}
	}

	r.Log.Info("run_finished",
		logger.Int("ticks", sum.Ticks),
		logger.Int("entries", sum.Entries),
		logger.Int("exits", sum.Exits),
		logger.Int("held_exits", sum.HeldExits),
		logger.Int("stop_modifications", sum.StopModifications),
		logger.Int("rejections", sum.Rejections),
		logger.Int("skipped", sum.Skipped),
	)
	return sum, nil
}

func count(sum *Summary, actions []strategy.Action) {
	for _, a := range actions {
		switch a.Kind {
		case strategy.OpenLong, strategy.OpenShort:
			sum.Entries++
		case strategy.ClosePosition:
			sum.Exits++
		case strategy.ModifyStop:
			sum.StopModifications++
		}
	}
}
