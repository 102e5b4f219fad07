package strategy

import (
	"math"
	"testing"
	"time"

	"github.com/evdnx/gotrend/errors"
	"github.com/evdnx/gotrend/testutils"
	"github.com/evdnx/gotrend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrendFollowerRejectsBadConfig(t *testing.T) {
	data := testutils.NewStaticProvider("EURUSD")
	exec := testutils.NewMockExecutor()

	cfg := testConfig()
	cfg.LotSize = 0
	_, err := NewTrendFollower(cfg, data, exec, nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigurationInvalid, errors.GetCode(err))

	_, err = NewTrendFollower(testConfig(), nil, exec, nil)
	assert.Equal(t, errors.ErrCodeConfigurationInvalid, errors.GetCode(err))

	_, err = NewTrendFollower(testConfig(), data, nil, nil)
	assert.Equal(t, errors.ErrCodeConfigurationInvalid, errors.GetCode(err))
}

func TestOnTick_OneEntryPerBar(t *testing.T) {
	h := newHarness(t)
	h.longSignal()

	for i := 0; i < 5; i++ {
		h.data.Tick(1.2000, 1.2002, t0.Add(time.Duration(i)*time.Minute))
		_, err := h.tf.OnTick()
		require.NoError(t, err)
	}

	opens := h.exec.CallsOf("open")
	require.Len(t, opens, 1)
	assert.Equal(t, types.Long, opens[0].Side)
	assert.Equal(t, 1.2002, opens[0].Price, "longs fill at the ask")
	assert.Equal(t, 1.1950, opens[0].StopLoss)
	assert.Equal(t, 1.2102, opens[0].TakeProfit)
	assert.Equal(t, t0, h.tf.LastBar())
}

func TestOnTick_NoEntryWithoutNewBar(t *testing.T) {
	h := newHarness(t)

	// first tick of the bar carries no signal
	_, err := h.tf.OnTick()
	require.NoError(t, err)

	// signal appears mid-bar: ignored until the next bar opens
	h.longSignal()
	h.data.Tick(1.2000, 1.2002, t0.Add(10*time.Minute))
	_, err = h.tf.OnTick()
	require.NoError(t, err)
	assert.Empty(t, h.exec.Calls())

	h.data.Bars[types.H1] = t0.Add(time.Hour)
	h.data.Tick(1.2000, 1.2002, t0.Add(time.Hour))
	_, err = h.tf.OnTick()
	require.NoError(t, err)
	assert.Len(t, h.exec.CallsOf("open"), 1)
}

func TestOnTick_EntrySuppressedWhilePositionOpen(t *testing.T) {
	h := newHarness(t)
	h.data.Set(h.tf.ind.atr, 0.0500) // keep the trail out of the way
	h.exec.SetPosition(openPosition(types.Short, t0.Add(-3*time.Hour), 1.2050, 1.1900))
	h.longSignal()

	d, err := h.tf.OnTick()
	require.NoError(t, err)
	assert.Empty(t, d.Actions)
	assert.Equal(t, types.Long, d.Suppressed)
	assert.Empty(t, h.exec.Calls())
	assert.Equal(t, 1, h.log.Count("entry_suppressed"))
}

func TestOnTick_DataUnavailableSkipsWithoutAdvancingClock(t *testing.T) {
	h := newHarness(t)
	h.longSignal()
	delete(h.data.Samples, h.tf.ind.atr.Key())

	_, err := h.tf.OnTick()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDataUnavailable))
	assert.True(t, h.tf.LastBar().IsZero(), "clock must not advance on a skipped tick")
	assert.Empty(t, h.exec.Calls())
	assert.Equal(t, 1, h.log.Count("tick_skipped"))

	// data comes back on a later tick of the same bar: the entry still fires
	h.data.Set(h.tf.ind.atr, 0.0010)
	h.data.Tick(1.2000, 1.2002, t0.Add(time.Minute))
	_, err = h.tf.OnTick()
	require.NoError(t, err)
	assert.Len(t, h.exec.CallsOf("open"), 1)
	assert.Equal(t, t0, h.tf.LastBar())
}

func TestOnTick_EmptyValueIsDataUnavailable(t *testing.T) {
	h := newHarness(t)
	h.data.Set(h.tf.ind.rsi, math.NaN(), 39, 38)

	_, err := h.tf.OnTick()
	assert.True(t, errors.HasCode(err, errors.ErrCodeDataUnavailable))

	h.data.Fail = true
	_, err = h.tf.OnTick()
	assert.True(t, errors.HasCode(err, errors.ErrCodeDataUnavailable))
	assert.Equal(t, 2, h.log.Count("tick_skipped"))
}

func TestOnTick_OrderRejectedIsNotRetried(t *testing.T) {
	h := newHarness(t)
	h.longSignal()
	h.exec.Reject("open", true)

	_, err := h.tf.OnTick()
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeOrderRejected, errors.GetCode(err))
	assert.Equal(t, 1, h.log.Count("order_rejected"))

	// same bar, gateway healthy again: the entry is not re-attempted
	h.exec.Reject("open", false)
	h.data.Tick(1.2000, 1.2002, t0.Add(time.Minute))
	_, err = h.tf.OnTick()
	require.NoError(t, err)
	assert.Len(t, h.exec.CallsOf("open"), 1)
}

// D1 RSI moving 49 -> 51 against a long held past the minimum hold closes it
// exactly once; before that the exit is only reported.
func TestOnTick_RSIExitRespectsMinHold(t *testing.T) {
	h := newHarness(t)
	h.data.Set(h.tf.ind.atr, 0.0500)
	h.data.Set(h.tf.ind.htfRSI, 51, 49, 47)
	h.exec.SetPosition(openPosition(types.Long, t0, 1.1950, 1.2100))

	h.data.Tick(1.2040, 1.2042, t0.Add(30*time.Minute))
	d, err := h.tf.OnTick()
	require.NoError(t, err)
	assert.Equal(t, []ExitReason{ExitRSIReversal}, d.Held)
	assert.Empty(t, h.exec.Calls())
	assert.Equal(t, 1, h.log.Count("exit_held"))

	for _, m := range []int{60, 61, 75} {
		h.data.Tick(1.2040, 1.2042, t0.Add(time.Duration(m)*time.Minute))
		_, err = h.tf.OnTick()
		require.NoError(t, err)
	}
	assert.Len(t, h.exec.CallsOf("close"), 1)
	assert.Empty(t, h.exec.CallsOf("modify"))
}

func TestOnTick_CloseSkipsTrailing(t *testing.T) {
	h := newHarness(t)
	h.data.Set(h.tf.ind.htfRSI, 51, 49, 47)
	h.exec.SetPosition(openPosition(types.Long, t0.Add(-2*time.Hour), 1.1950, 1.2100))
	h.data.Tick(1.2080, 1.2082, t0)

	_, err := h.tf.OnTick()
	require.NoError(t, err)
	calls := h.exec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "close", calls[0].Action)
}

func TestOnTick_TrailingStop(t *testing.T) {
	h := newHarness(t)
	h.exec.SetPosition(openPosition(types.Long, t0, 1.1950, 1.2100))
	h.data.Tick(1.2080, 1.2082, t0.Add(time.Minute))

	_, err := h.tf.OnTick()
	require.NoError(t, err)
	mods := h.exec.CallsOf("modify")
	require.Len(t, mods, 1)
	assert.Equal(t, 1.2050, mods[0].StopLoss)
	assert.Equal(t, 1.2100, mods[0].TakeProfit)

	// price falls back: the stop stays where it is
	h.data.Tick(1.2060, 1.2062, t0.Add(2*time.Minute))
	_, err = h.tf.OnTick()
	require.NoError(t, err)
	assert.Len(t, h.exec.CallsOf("modify"), 1)
}

// A long opened at 1.2000 with 50 points on a 4-digit symbol carries its
// stop at 1.1950; the short mirror sits at 1.2050.
func TestOnTick_StopLevelRoundTrip(t *testing.T) {
	cases := []struct {
		name     string
		trend    []float64
		rsi      []float64
		bid, ask float64
		side     types.Side
		stop     float64
	}{
		{"long", []float64{1.10, 1.00, 0.95}, []float64{41, 39, 38}, 1.2000, 1.2002, types.Long, 1.1950},
		{"short", []float64{0.95, 1.00, 1.10}, []float64{59, 61, 62}, 1.1998, 1.2000, types.Short, 1.2050},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := newHarness(t)
			h.data.Set(h.tf.ind.trend, c.trend...)
			h.data.Set(h.tf.ind.rsi, c.rsi...)
			h.data.Tick(c.bid, c.ask, t0)

			_, err := h.tf.OnTick()
			require.NoError(t, err)
			pos, err := h.exec.Position("EURUSD")
			require.NoError(t, err)
			require.True(t, pos.IsSome())
			assert.Equal(t, c.side, pos.Unwrap().Side)
			assert.Equal(t, c.stop, pos.Unwrap().StopLoss)
		})
	}
}
