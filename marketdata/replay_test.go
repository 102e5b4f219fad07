package marketdata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/evdnx/gotrend/errors"
	"github.com/evdnx/gotrend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var h1EMA = types.Indicator{Kind: types.EMA, Timeframe: types.H1, Periods: []int{20}}
var d1RSI = types.Indicator{Kind: types.RSI, Timeframe: types.D1, Periods: []int{8}}

const feed = `time,bid,ask,H1.open,D1.open,H1:EMA(20),D1:RSI(8)
2024-01-02T10:00:00Z,1.1000,1.1002,2024-01-02T10:00:00Z,2024-01-02T00:00:00Z,1.0950,45
2024-01-02T10:30:00Z,1.1010,1.1012,2024-01-02T10:00:00Z,2024-01-02T00:00:00Z,1.0960,46
2024-01-02T11:00:00Z,1.1020,1.1022,2024-01-02T11:00:00Z,2024-01-02T00:00:00Z,1.0970,
2024-01-02T12:00:00Z,1.1030,1.1032,2024-01-02T12:00:00Z,2024-01-02T00:00:00Z,1.0980,47
`

func TestReplayBuildsNewestFirstSeries(t *testing.T) {
	r, err := NewReplay(strings.NewReader(feed), "EURUSD", 10)
	require.NoError(t, err)

	_, err = r.Quote("EURUSD")
	assert.True(t, errors.HasCode(err, errors.ErrCodeDataUnavailable), "no quote before first tick")

	q, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1.1000, q.Bid)

	// forming bar is overwritten within the same hour
	_, _, err = r.Next()
	require.NoError(t, err)
	got, err := r.Series("EURUSD", h1EMA, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0960}, got)

	_, err = r.Series("EURUSD", h1EMA, 2)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDataUnavailable), "only one H1 bar so far")

	_, _, err = r.Next()
	require.NoError(t, err)
	_, _, err = r.Next()
	require.NoError(t, err)

	got, err = r.Series("EURUSD", h1EMA, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0980, 1.0970, 1.0960}, got)

	// D1 never rolled, the empty cell kept 46 and the last row overwrote it
	rsi, err := r.Series("EURUSD", d1RSI, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{47}, rsi)

	open, err := r.BarOpenTime("EURUSD", types.H1)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC), open)

	_, ok, err = r.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReplayEmptyCellOnRollingTickKeepsPreviousBar(t *testing.T) {
	in := `time,bid,ask,H1.open,H1:EMA(20)
2024-01-02T10:00:00Z,1.1000,1.1002,2024-01-02T10:00:00Z,1.00
2024-01-02T11:00:00Z,1.1010,1.1012,2024-01-02T11:00:00Z,
2024-01-02T11:30:00Z,1.1020,1.1022,2024-01-02T11:00:00Z,1.05
2024-01-02T11:45:00Z,1.1030,1.1032,2024-01-02T11:00:00Z,1.06
`
	r, err := NewReplay(strings.NewReader(in), "EURUSD", 10)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, ok, err := r.Next()
		require.NoError(t, err)
		require.True(t, ok)
	}

	got, err := r.Series("EURUSD", h1EMA, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.06, 1.00}, got)
}

func TestReplayUnknownSeriesAndSymbol(t *testing.T) {
	r, err := NewReplay(strings.NewReader(feed), "EURUSD", 10)
	require.NoError(t, err)
	_, _, err = r.Next()
	require.NoError(t, err)

	_, err = r.Series("EURUSD", types.Indicator{Kind: types.EMA, Timeframe: types.H1, Periods: []int{50}}, 1)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDataUnavailable))

	_, err = r.Series("GBPUSD", h1EMA, 1)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDataUnavailable))

	_, err = r.BarOpenTime("EURUSD", types.W1)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDataUnavailable))
}

func TestReplayHeaderValidation(t *testing.T) {
	cases := map[string]string{
		"missing ask":        "time,bid,H1.open\n",
		"indicator no bar":   "time,bid,ask,H1:EMA(20)\n",
		"unknown column":     "time,bid,ask,volume\n",
		"unknown bar column": "time,bid,ask,H2.open\n",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewReplay(strings.NewReader(header), "EURUSD", 10)
			assert.True(t, errors.HasCode(err, errors.ErrCodeFeedFailed), "got %v", err)
		})
	}
}

func TestReplayBadRow(t *testing.T) {
	in := "time,bid,ask\n2024-01-02T10:00:00Z,abc,1.1\n"
	r, err := NewReplay(strings.NewReader(in), "EURUSD", 10)
	require.NoError(t, err)
	_, ok, err := r.Next()
	assert.False(t, ok)
	assert.True(t, errors.HasCode(err, errors.ErrCodeFeedFailed))
}

func TestOpenReplayFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.csv")
	require.NoError(t, os.WriteFile(path, []byte(feed), 0o600))

	r, err := OpenReplay(path, "EURUSD", 10)
	require.NoError(t, err)
	defer r.Close()

	n := 0
	for {
		_, ok, err := r.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		n++
	}
	assert.Equal(t, 4, n)

	_, err = OpenReplay(filepath.Join(t.TempDir(), "nope.csv"), "EURUSD", 10)
	assert.True(t, errors.HasCode(err, errors.ErrCodeFeedFailed))
}

func TestParseTimeTerminalLayout(t *testing.T) {
	got, err := parseTime("2024.03.01 09:00:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), got)
}

func TestSeriesBufferWindow(t *testing.T) {
	b := newSeriesBuffer(3)
	b.SetLatest(1)
	for _, v := range []float64{2, 3, 4} {
		b.Push(v)
	}
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, []float64{4, 3, 2}, b.Latest(5))
	b.SetLatest(5)
	assert.Equal(t, []float64{5, 3}, b.Latest(2))
}
