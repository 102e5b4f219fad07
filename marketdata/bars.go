package marketdata

import (
	"io"
	"math"
	"os"
	"time"

	"github.com/evdnx/gotrend/errors"
	"github.com/evdnx/gotrend/types"
	"github.com/gocarina/gocsv"
)

// Bar is one closed OHLC bar of the trading timeframe. Time is the bar's
// open time in RFC3339.
type Bar struct {
	Time  time.Time `csv:"time"`
	Open  float64   `csv:"open"`
	High  float64   `csv:"high"`
	Low   float64   `csv:"low"`
	Close float64   `csv:"close"`
}

// BarFeedOptions configures a BarFeed.
type BarFeedOptions struct {
	Symbol    string
	Timeframe types.Timeframe
	// Spread is added to each close to form the ask.
	Spread float64
	// Depth bounds how many samples are kept per indicator.
	Depth      int
	Indicators []types.Indicator
}

// BarFeed computes indicator buffers from a history of trading-timeframe
// bars instead of reading them from a recording. Bars on higher timeframes
// are aggregated from the trading bars. Each bar yields one quote at its
// close, with the bid at the close price.
type BarFeed struct {
	opts BarFeedOptions
	bars []*Bar
	next int

	frames   []*barFrame
	trackers map[string]*tracker
	barTimes map[types.Timeframe]time.Time
	quote    types.Quote
	started  bool
}

// barFrame aggregates trading bars into bars of one timeframe and feeds
// every indicator on that timeframe when a bar completes.
type barFrame struct {
	tf       types.Timeframe
	agg      Bar
	open     bool
	fed      bool
	trackers []*tracker
}

type tracker struct {
	calc calculator
	buf  *seriesBuffer
}

// OpenBarFeed loads bars from a CSV file with a time,open,high,low,close
// header.
func OpenBarFeed(path string, opts BarFeedOptions) (*BarFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeFeedFailed, err, "open bars %s", path)
	}
	defer f.Close()
	return NewBarFeed(f, opts)
}

// NewBarFeed reads every bar from in and prepares one calculator per
// indicator.
func NewBarFeed(in io.Reader, opts BarFeedOptions) (*BarFeed, error) {
	if !opts.Timeframe.Valid() {
		return nil, errors.Newf(errors.ErrCodeConfigurationInvalid, "unknown trading timeframe %q", opts.Timeframe)
	}
	if opts.Spread < 0 {
		return nil, errors.Newf(errors.ErrCodeConfigurationInvalid, "spread %v is negative", opts.Spread)
	}

	var bars []*Bar
	if err := gocsv.Unmarshal(in, &bars); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFeedFailed, "read bars", err)
	}
	for i, b := range bars {
		if err := checkBar(b); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeFeedFailed, err, "bar %d", i+1)
		}
		if i > 0 && !b.Time.After(bars[i-1].Time) {
			return nil, errors.Newf(errors.ErrCodeFeedFailed, "bar %d: %s is not after %s", i+1, b.Time, bars[i-1].Time)
		}
	}

	f := &BarFeed{
		opts:     opts,
		bars:     bars,
		trackers: make(map[string]*tracker),
		barTimes: make(map[types.Timeframe]time.Time),
	}
	byTF := make(map[types.Timeframe]*barFrame)
	for _, ind := range opts.Indicators {
		key := ind.Key()
		if _, dup := f.trackers[key]; dup {
			continue
		}
		if ind.Timeframe.Duration() < opts.Timeframe.Duration() {
			return nil, errors.Newf(errors.ErrCodeConfigurationInvalid, "%s is below the %s trading timeframe", key, opts.Timeframe)
		}
		calc, err := newCalculator(ind)
		if err != nil {
			return nil, err
		}
		tr := &tracker{calc: calc, buf: newSeriesBuffer(opts.Depth)}
		f.trackers[key] = tr

		fr, ok := byTF[ind.Timeframe]
		if !ok {
			fr = &barFrame{tf: ind.Timeframe}
			byTF[ind.Timeframe] = fr
			f.frames = append(f.frames, fr)
		}
		fr.trackers = append(fr.trackers, tr)
	}
	if _, ok := byTF[opts.Timeframe]; !ok {
		fr := &barFrame{tf: opts.Timeframe}
		f.frames = append(f.frames, fr)
	}
	return f, nil
}

func checkBar(b *Bar) error {
	if b.Time.IsZero() {
		return errors.New(errors.ErrCodeFeedFailed, "missing time")
	}
	for _, p := range []float64{b.Open, b.High, b.Low, b.Close} {
		if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return errors.Newf(errors.ErrCodeFeedFailed, "invalid price %v", p)
		}
	}
	if b.High < b.Low || b.Open < b.Low || b.Open > b.High || b.Close < b.Low || b.Close > b.High {
		return errors.Newf(errors.ErrCodeFeedFailed, "prices outside [%v, %v]", b.Low, b.High)
	}
	return nil
}

// Next closes the next trading bar and returns the quote at its close.
func (f *BarFeed) Next() (types.Quote, bool, error) {
	if f.next >= len(f.bars) {
		return types.Quote{}, false, nil
	}
	b := f.bars[f.next]
	f.next++

	step := f.opts.Timeframe.Duration()
	closeAt := b.Time.Add(step)
	for _, fr := range f.frames {
		if err := fr.add(b, closeAt); err != nil {
			return types.Quote{}, false, errors.Wrapf(errors.ErrCodeFeedFailed, err, "bar %s", b.Time.Format(time.RFC3339))
		}
		f.barTimes[fr.tf] = fr.agg.Time
	}
	f.barTimes[f.opts.Timeframe] = b.Time

	f.quote = types.Quote{Symbol: f.opts.Symbol, Bid: b.Close, Ask: b.Close + f.opts.Spread, Time: closeAt}
	f.started = true
	return f.quote, true, nil
}

// add merges a trading bar into the frame's forming bar and feeds the
// indicators once the bar has closed. A bar cut short by a gap in the data
// is fed when the next one starts.
func (fr *barFrame) add(b *Bar, closeAt time.Time) error {
	bucket := b.Time.Truncate(fr.tf.Duration())
	if fr.open && !bucket.Equal(fr.agg.Time) {
		if !fr.fed {
			if err := fr.feed(); err != nil {
				return err
			}
		}
		fr.open = false
	}
	if !fr.open {
		fr.agg = Bar{Time: bucket, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close}
		fr.open, fr.fed = true, false
	} else {
		fr.agg.High = math.Max(fr.agg.High, b.High)
		fr.agg.Low = math.Min(fr.agg.Low, b.Low)
		fr.agg.Close = b.Close
	}
	if !closeAt.Before(bucket.Add(fr.tf.Duration())) {
		fr.fed = true
		return fr.feed()
	}
	return nil
}

func (fr *barFrame) feed() error {
	for _, tr := range fr.trackers {
		if err := tr.calc.add(fr.agg); err != nil {
			return err
		}
		if v, ok := tr.calc.value(); ok {
			tr.buf.Push(v)
		}
	}
	return nil
}

func (f *BarFeed) Series(symbol string, ind types.Indicator, count int) ([]float64, error) {
	if symbol != f.opts.Symbol {
		return nil, errors.Newf(errors.ErrCodeDataUnavailable, "feed carries %s, not %s", f.opts.Symbol, symbol)
	}
	key := ind.Key()
	tr, ok := f.trackers[key]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeDataUnavailable, "feed computes no %s", key)
	}
	if tr.buf.Len() < count {
		return nil, errors.Newf(errors.ErrCodeDataUnavailable, "series %s has %d of %d samples", key, tr.buf.Len(), count)
	}
	return tr.buf.Latest(count), nil
}

func (f *BarFeed) Quote(symbol string) (types.Quote, error) {
	if symbol != f.opts.Symbol {
		return types.Quote{}, errors.Newf(errors.ErrCodeDataUnavailable, "feed carries %s, not %s", f.opts.Symbol, symbol)
	}
	if !f.started {
		return types.Quote{}, errors.New(errors.ErrCodeDataUnavailable, "no bar closed yet")
	}
	return f.quote, nil
}

// BarOpenTime reports the open time of the bar the latest quote belongs to.
func (f *BarFeed) BarOpenTime(symbol string, tf types.Timeframe) (time.Time, error) {
	if symbol != f.opts.Symbol {
		return time.Time{}, errors.Newf(errors.ErrCodeDataUnavailable, "feed carries %s, not %s", f.opts.Symbol, symbol)
	}
	t, ok := f.barTimes[tf]
	if !ok {
		return time.Time{}, errors.Newf(errors.ErrCodeDataUnavailable, "feed has no %s bars", tf)
	}
	return t, nil
}

// Close is a no-op; bars are read in full when the feed is built.
func (f *BarFeed) Close() error { return nil }
