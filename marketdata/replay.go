package marketdata

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/evdnx/gotrend/errors"
	"github.com/evdnx/gotrend/types"
)

const (
	colTime = "time"
	colBid  = "bid"
	colAsk  = "ask"
	// bar open time columns are named "<TF>.open", e.g. "H1.open"
	barOpenSuffix = ".open"
)

// Replay serves a recorded tick feed. Each CSV row is one tick: its time,
// bid and ask, the open time of the current bar on every recorded timeframe
// and the current value of every recorded indicator buffer. Indicator
// columns are named by types.Indicator.Key(), e.g. "H1:EMA(20)".
//
// When the open time of a timeframe changes, every indicator on that
// timeframe starts a new sample; otherwise the forming sample is overwritten.
// An empty cell leaves the buffer untouched for that tick; if it fell on the
// rolling tick, the next value of that bar still opens the new sample.
type Replay struct {
	symbol string
	depth  int

	rows   *csv.Reader
	closer io.Closer
	line   int

	timeCol, bidCol, askCol int
	barCols                 map[types.Timeframe]int
	indCols                 map[string]int
	indTF                   map[string]types.Timeframe

	series   map[string]*seriesBuffer
	rolled   map[string]bool
	barTimes map[types.Timeframe]time.Time
	quote    types.Quote
	started  bool
}

// OpenReplay opens a recorded feed file. depth bounds how many samples are
// kept per indicator.
func OpenReplay(path, symbol string, depth int) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeFeedFailed, err, "open feed %s", path)
	}
	r, err := NewReplay(f, symbol, depth)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewReplay reads the header from in and prepares the column layout.
func NewReplay(in io.Reader, symbol string, depth int) (*Replay, error) {
	rows := csv.NewReader(in)
	rows.TrimLeadingSpace = true
	header, err := rows.Read()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFeedFailed, "read feed header", err)
	}
	r := &Replay{
		symbol:   symbol,
		depth:    depth,
		rows:     rows,
		line:     1,
		timeCol:  -1,
		bidCol:   -1,
		askCol:   -1,
		barCols:  make(map[types.Timeframe]int),
		indCols:  make(map[string]int),
		indTF:    make(map[string]types.Timeframe),
		series:   make(map[string]*seriesBuffer),
		rolled:   make(map[string]bool),
		barTimes: make(map[types.Timeframe]time.Time),
	}
	for i, name := range header {
		name = strings.TrimSpace(name)
		switch {
		case name == colTime:
			r.timeCol = i
		case name == colBid:
			r.bidCol = i
		case name == colAsk:
			r.askCol = i
		case strings.HasSuffix(name, barOpenSuffix):
			tf := types.Timeframe(strings.TrimSuffix(name, barOpenSuffix))
			if !tf.Valid() {
				return nil, errors.Newf(errors.ErrCodeFeedFailed, "unknown timeframe in column %q", name)
			}
			r.barCols[tf] = i
		case strings.Contains(name, ":"):
			tf := types.Timeframe(name[:strings.Index(name, ":")])
			r.indCols[name] = i
			r.indTF[name] = tf
			r.series[name] = newSeriesBuffer(depth)
		default:
			return nil, errors.Newf(errors.ErrCodeFeedFailed, "unrecognised feed column %q", name)
		}
	}
	if r.timeCol < 0 || r.bidCol < 0 || r.askCol < 0 {
		return nil, errors.New(errors.ErrCodeFeedFailed, "feed header needs time, bid and ask columns")
	}
	for key, tf := range r.indTF {
		if _, ok := r.barCols[tf]; !ok {
			return nil, errors.Newf(errors.ErrCodeFeedFailed, "indicator %s has no %s%s column", key, tf, barOpenSuffix)
		}
	}
	return r, nil
}

// Next advances the feed by one tick.
func (r *Replay) Next() (types.Quote, bool, error) {
	rec, err := r.rows.Read()
	if err == io.EOF {
		return types.Quote{}, false, nil
	}
	r.line++
	if err != nil {
		return types.Quote{}, false, errors.Wrapf(errors.ErrCodeFeedFailed, err, "read feed line %d", r.line)
	}

	ts, err := parseTime(rec[r.timeCol])
	if err != nil {
		return types.Quote{}, false, errors.Wrapf(errors.ErrCodeFeedFailed, err, "line %d: time", r.line)
	}
	bid, err := strconv.ParseFloat(rec[r.bidCol], 64)
	if err != nil {
		return types.Quote{}, false, errors.Wrapf(errors.ErrCodeFeedFailed, err, "line %d: bid", r.line)
	}
	ask, err := strconv.ParseFloat(rec[r.askCol], 64)
	if err != nil {
		return types.Quote{}, false, errors.Wrapf(errors.ErrCodeFeedFailed, err, "line %d: ask", r.line)
	}

	newBar := make(map[types.Timeframe]bool, len(r.barCols))
	for tf, col := range r.barCols {
		open, err := parseTime(rec[col])
		if err != nil {
			return types.Quote{}, false, errors.Wrapf(errors.ErrCodeFeedFailed, err, "line %d: %s bar open", r.line, tf)
		}
		prev, seen := r.barTimes[tf]
		newBar[tf] = !seen || !open.Equal(prev)
		r.barTimes[tf] = open
	}

	for key, col := range r.indCols {
		if newBar[r.indTF[key]] {
			r.rolled[key] = true
		}
		cell := strings.TrimSpace(rec[col])
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return types.Quote{}, false, errors.Wrapf(errors.ErrCodeFeedFailed, err, "line %d: %s", r.line, key)
		}
		// the first value after a roll opens the new sample, even when the
		// rolling tick itself had an empty cell
		if r.rolled[key] {
			r.series[key].Push(v)
			r.rolled[key] = false
		} else {
			r.series[key].SetLatest(v)
		}
	}

	r.quote = types.Quote{Symbol: r.symbol, Bid: bid, Ask: ask, Time: ts}
	r.started = true
	return r.quote, true, nil
}

func (r *Replay) Series(symbol string, ind types.Indicator, count int) ([]float64, error) {
	if symbol != r.symbol {
		return nil, errors.Newf(errors.ErrCodeDataUnavailable, "feed carries %s, not %s", r.symbol, symbol)
	}
	key := ind.Key()
	buf, ok := r.series[key]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeDataUnavailable, "feed has no series %s", key)
	}
	if buf.Len() < count {
		return nil, errors.Newf(errors.ErrCodeDataUnavailable, "series %s has %d of %d samples", key, buf.Len(), count)
	}
	return buf.Latest(count), nil
}

func (r *Replay) Quote(symbol string) (types.Quote, error) {
	if symbol != r.symbol {
		return types.Quote{}, errors.Newf(errors.ErrCodeDataUnavailable, "feed carries %s, not %s", r.symbol, symbol)
	}
	if !r.started {
		return types.Quote{}, errors.New(errors.ErrCodeDataUnavailable, "no tick received yet")
	}
	return r.quote, nil
}

func (r *Replay) BarOpenTime(symbol string, tf types.Timeframe) (time.Time, error) {
	if symbol != r.symbol {
		return time.Time{}, errors.Newf(errors.ErrCodeDataUnavailable, "feed carries %s, not %s", r.symbol, symbol)
	}
	t, ok := r.barTimes[tf]
	if !ok {
		return time.Time{}, errors.Newf(errors.ErrCodeDataUnavailable, "feed has no %s bars", tf)
	}
	return t, nil
}

// Close releases the underlying file, if any.
func (r *Replay) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// parseTime accepts RFC3339 or the terminal's "2006.01.02 15:04:05" export.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006.01.02 15:04:05", s)
}
