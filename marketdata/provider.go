package marketdata

import (
	"time"

	"github.com/evdnx/gotrend/types"
)

// Provider supplies prices and indicator buffers. Indicator values are
// computed by the implementation (a terminal, a data vendor, a recorded
// feed); the engine only reads them.
//
// Every method fails with an errors.ErrCodeDataUnavailable error when the
// value cannot be produced, including when fewer than count samples exist.
type Provider interface {
	// Series returns the last count samples of ind, newest first.
	Series(symbol string, ind types.Indicator, count int) ([]float64, error)
	// Quote returns the current bid/ask and server time.
	Quote(symbol string) (types.Quote, error)
	// BarOpenTime returns the open time of the current bar of tf.
	BarOpenTime(symbol string, tf types.Timeframe) (time.Time, error)
}

// Feed delivers ticks one at a time. Next returns false once the feed is
// exhausted.
type Feed interface {
	Next() (types.Quote, bool, error)
}
