package testutils

import (
	"time"

	"github.com/evdnx/gotrend/errors"
	"github.com/evdnx/gotrend/types"
)

// StaticProvider serves fixed values that tests set directly. Series are
// stored newest-first, keyed by types.Indicator.Key().
type StaticProvider struct {
	Symbol  string
	Bid     float64
	Ask     float64
	Now     time.Time
	Bars    map[types.Timeframe]time.Time
	Samples map[string][]float64
	// Fail makes every call return DataUnavailable.
	Fail bool
}

func NewStaticProvider(symbol string) *StaticProvider {
	return &StaticProvider{
		Symbol:  symbol,
		Bars:    make(map[types.Timeframe]time.Time),
		Samples: make(map[string][]float64),
	}
}

// Set stores the samples of ind, newest first.
func (p *StaticProvider) Set(ind types.Indicator, newestFirst ...float64) {
	p.Samples[ind.Key()] = newestFirst
}

// Tick moves the quote and the server time.
func (p *StaticProvider) Tick(bid, ask float64, now time.Time) {
	p.Bid, p.Ask, p.Now = bid, ask, now
}

func (p *StaticProvider) Series(symbol string, ind types.Indicator, count int) ([]float64, error) {
	if p.Fail || symbol != p.Symbol {
		return nil, errors.New(errors.ErrCodeDataUnavailable, "static: unavailable")
	}
	vals, ok := p.Samples[ind.Key()]
	if !ok || len(vals) < count {
		return nil, errors.Newf(errors.ErrCodeDataUnavailable, "static: %s has %d samples", ind.Key(), len(vals))
	}
	out := make([]float64, count)
	copy(out, vals[:count])
	return out, nil
}

func (p *StaticProvider) Quote(symbol string) (types.Quote, error) {
	if p.Fail || symbol != p.Symbol {
		return types.Quote{}, errors.New(errors.ErrCodeDataUnavailable, "static: unavailable")
	}
	return types.Quote{Symbol: symbol, Bid: p.Bid, Ask: p.Ask, Time: p.Now}, nil
}

func (p *StaticProvider) BarOpenTime(symbol string, tf types.Timeframe) (time.Time, error) {
	if p.Fail || symbol != p.Symbol {
		return time.Time{}, errors.New(errors.ErrCodeDataUnavailable, "static: unavailable")
	}
	t, ok := p.Bars[tf]
	if !ok {
		return time.Time{}, errors.Newf(errors.ErrCodeDataUnavailable, "static: no %s bars", tf)
	}
	return t, nil
}
