package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/evdnx/gotrend/errors"
	"github.com/go-playground/validator/v10"
)

type Side string

const (
	Long  Side = "LONG"
	Short Side = "SHORT"
)

// Direction returns +1 for long and -1 for short.
func (s Side) Direction() float64 {
	if s == Short {
		return -1
	}
	return 1
}

type Timeframe string

const (
	M1  Timeframe = "M1"
	M5  Timeframe = "M5"
	M15 Timeframe = "M15"
	M30 Timeframe = "M30"
	H1  Timeframe = "H1"
	H4  Timeframe = "H4"
	D1  Timeframe = "D1"
	W1  Timeframe = "W1"
)

var timeframeDurations = map[Timeframe]time.Duration{
	M1:  time.Minute,
	M5:  5 * time.Minute,
	M15: 15 * time.Minute,
	M30: 30 * time.Minute,
	H1:  time.Hour,
	H4:  4 * time.Hour,
	D1:  24 * time.Hour,
	W1:  7 * 24 * time.Hour,
}

// Duration returns the bar length of the timeframe, or 0 if it is unknown.
func (tf Timeframe) Duration() time.Duration {
	return timeframeDurations[tf]
}

func (tf Timeframe) Valid() bool {
	_, ok := timeframeDurations[tf]
	return ok
}

type IndicatorKind string

const (
	EMA        IndicatorKind = "EMA"
	RSI        IndicatorKind = "RSI"
	MACDMain   IndicatorKind = "MACD_MAIN"
	MACDSignal IndicatorKind = "MACD_SIGNAL"
	ATR        IndicatorKind = "ATR"
)

// Indicator identifies one indicator buffer on one timeframe. The values
// themselves are computed by whoever implements marketdata.Provider.
type Indicator struct {
	Kind      IndicatorKind
	Timeframe Timeframe
	Periods   []int
}

// Key renders the indicator as "<TF>:<KIND>(<p1>,<p2>...)", e.g. "H1:EMA(20)".
func (i Indicator) Key() string {
	ps := make([]string, len(i.Periods))
	for n, p := range i.Periods {
		ps[n] = strconv.Itoa(p)
	}
	return fmt.Sprintf("%s:%s(%s)", i.Timeframe, i.Kind, strings.Join(ps, ","))
}

// Quote is the current top of book for a symbol. Time is the server time of
// the tick and drives every duration the strategy measures.
type Quote struct {
	Symbol string
	Bid    float64
	Ask    float64
	Time   time.Time
}

// Position is the single open position on an instrument. StopLoss and
// TakeProfit of 0 mean the level is not set.
type Position struct {
	Ticket     string
	Symbol     string
	Side       Side
	Volume     float64
	OpenPrice  float64
	StopLoss   float64
	TakeProfit float64
	OpenTime   time.Time
}

// Held returns how long the position has been open at now.
func (p Position) Held(now time.Time) time.Duration {
	return now.Sub(p.OpenTime)
}

type OpenRequest struct {
	Symbol     string    `validate:"required"`
	Side       Side      `validate:"required,oneof=LONG SHORT"`
	Volume     float64   `validate:"gt=0"`
	Price      float64   `validate:"gt=0"`
	StopLoss   float64   `validate:"gte=0"`
	TakeProfit float64   `validate:"gte=0"`
	Time       time.Time `validate:"required"`
	Comment    string
}

// Validate checks field ranges and that the protective levels sit on the
// correct side of the fill price.
func (r *OpenRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrder, "invalid open request", err)
	}
	switch r.Side {
	case Long:
		if r.StopLoss > 0 && r.StopLoss >= r.Price {
			return errors.Newf(errors.ErrCodeInvalidStopLoss, "long stop %.5f not below price %.5f", r.StopLoss, r.Price)
		}
		if r.TakeProfit > 0 && r.TakeProfit <= r.Price {
			return errors.Newf(errors.ErrCodeInvalidTakeProfit, "long take-profit %.5f not above price %.5f", r.TakeProfit, r.Price)
		}
	case Short:
		if r.StopLoss > 0 && r.StopLoss <= r.Price {
			return errors.Newf(errors.ErrCodeInvalidStopLoss, "short stop %.5f not above price %.5f", r.StopLoss, r.Price)
		}
		if r.TakeProfit > 0 && r.TakeProfit >= r.Price {
			return errors.Newf(errors.ErrCodeInvalidTakeProfit, "short take-profit %.5f not below price %.5f", r.TakeProfit, r.Price)
		}
	}
	return nil
}
