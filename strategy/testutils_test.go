package strategy

import (
	"testing"
	"time"

	"github.com/evdnx/gotrend/config"
	"github.com/evdnx/gotrend/testutils"
	"github.com/evdnx/gotrend/types"
	"github.com/moznion/go-optional"
)

// t0 is the open of the H1 bar most tests start in.
var t0 = time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

// testConfig returns the default parameters on a 4-digit quote so that
// point arithmetic in the assertions reads naturally (50 points = 0.0050).
func testConfig() config.StrategyConfig {
	cfg := config.DefaultConfig()
	cfg.Point = 0.0001
	cfg.Digits = 4
	return cfg
}

func openPosition(side types.Side, openedAt time.Time, sl, tp float64) types.Position {
	return types.Position{
		Ticket:     "t-1",
		Symbol:     "EURUSD",
		Side:       side,
		Volume:     0.1,
		OpenPrice:  1.2000,
		StopLoss:   sl,
		TakeProfit: tp,
		OpenTime:   openedAt,
	}
}

// flatSnapshot builds a snapshot with no position and neutral samples.
func flatSnapshot(bid, ask float64, now time.Time) Snapshot {
	return Snapshot{
		Quote: types.Quote{Symbol: "EURUSD", Bid: bid, Ask: ask, Time: now},
		Entry: Samples{
			Trend:      []float64{1.10, 1.10, 1.10},
			RSI:        []float64{50, 50, 50},
			MACDMain:   []float64{0, 0, 0},
			MACDSignal: []float64{0, 0, 0},
			ATR:        0.0010,
		},
		Position: optional.None[types.Position](),
	}
}

// managedSnapshot builds a snapshot for an open position with neutral
// higher-timeframe samples and an ATR that does not tighten the stop.
func managedSnapshot(pos types.Position, bid, ask float64, now time.Time) Snapshot {
	s := flatSnapshot(bid, ask, now)
	s.Position = optional.Some(pos)
	s.Entry.ATR = 0
	s.Higher = HigherSamples{
		Trend:     []float64{1.10, 1.10, 1.10},
		RSI:       []float64{50, 50, 50},
		ExitTrend: 1.00,
	}
	return s
}

// harness wires a TrendFollower to the in-memory provider and executor.
type harness struct {
	tf   *TrendFollower
	data *testutils.StaticProvider
	exec *testutils.MockExecutor
	log  *testutils.MockLogger
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := testConfig()
	data := testutils.NewStaticProvider(cfg.Symbol)
	exec := testutils.NewMockExecutor()
	log := testutils.NewMockLogger()
	tf, err := NewTrendFollower(cfg, data, exec, log)
	if err != nil {
		t.Fatalf("NewTrendFollower failed: %v", err)
	}
	h := &harness{tf: tf, data: data, exec: exec, log: log}
	h.neutral()
	return h
}

// neutral loads samples that produce no entry or exit signal.
func (h *harness) neutral() {
	ind := h.tf.ind
	h.data.Set(ind.trend, 1.10, 1.10, 1.10)
	h.data.Set(ind.rsi, 50, 50, 50)
	h.data.Set(ind.macdMain, 0.0001, 0.0002, 0.0003)
	h.data.Set(ind.macdSignal, 0.0002, 0.0002, 0.0002)
	h.data.Set(ind.atr, 0.0010)
	h.data.Set(ind.htfTrend, 1.10, 1.10, 1.10)
	h.data.Set(ind.htfRSI, 50, 50, 50)
	h.data.Set(ind.exitTrend, 1.00)
	h.data.Bars[types.H1] = t0
	h.data.Tick(1.2000, 1.2002, t0)
}

// longSignal loads the rising-trend / RSI-up-through-40 pattern.
func (h *harness) longSignal() {
	h.data.Set(h.tf.ind.trend, 1.10, 1.00, 0.95)
	h.data.Set(h.tf.ind.rsi, 41, 39, 38)
}
