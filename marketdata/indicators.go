package marketdata

import (
	"github.com/evdnx/goti"
	"github.com/evdnx/gotrend/errors"
	"github.com/evdnx/gotrend/types"
)

// calculator turns closed bars into one indicator value per bar. value
// reports false until the indicator has seen enough bars.
type calculator interface {
	add(b Bar) error
	value() (float64, bool)
}

func newCalculator(ind types.Indicator) (calculator, error) {
	need := 1
	if ind.Kind == types.MACDMain || ind.Kind == types.MACDSignal {
		need = 3
	}
	if len(ind.Periods) != need {
		return nil, errors.Newf(errors.ErrCodeConfigurationInvalid, "%s needs %d period(s)", ind.Key(), need)
	}

	switch ind.Kind {
	case types.EMA:
		ma, err := goti.NewMovingAverage(goti.EMAMovingAverage, ind.Periods[0])
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeConfigurationInvalid, err, "%s", ind.Key())
		}
		return &emaCalc{ma: ma}, nil
	case types.RSI:
		rsi, err := goti.NewRelativeStrengthIndexWithParams(ind.Periods[0], goti.DefaultConfig())
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeConfigurationInvalid, err, "%s", ind.Key())
		}
		return &rsiCalc{rsi: rsi}, nil
	case types.ATR:
		atr, err := goti.NewAverageTrueRangeWithParams(ind.Periods[0])
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeConfigurationInvalid, err, "%s", ind.Key())
		}
		return &atrCalc{atr: atr}, nil
	case types.MACDMain, types.MACDSignal:
		return newMACDCalc(ind)
	}
	return nil, errors.Newf(errors.ErrCodeConfigurationInvalid, "no calculator for %s", ind.Key())
}

type emaCalc struct {
	ma *goti.MovingAverage
}

func (c *emaCalc) add(b Bar) error { return c.ma.AddValue(b.Close) }

func (c *emaCalc) value() (float64, bool) {
	v, err := c.ma.Calculate()
	return v, err == nil
}

type rsiCalc struct {
	rsi *goti.RelativeStrengthIndex
}

func (c *rsiCalc) add(b Bar) error { return c.rsi.Add(b.Close) }

func (c *rsiCalc) value() (float64, bool) {
	v, err := c.rsi.Calculate()
	return v, err == nil
}

type atrCalc struct {
	atr *goti.AverageTrueRange
}

func (c *atrCalc) add(b Bar) error { return c.atr.AddCandle(b.High, b.Low, b.Close) }

func (c *atrCalc) value() (float64, bool) {
	v, err := c.atr.Calculate()
	return v, err == nil
}

// macdCalc is fast EMA minus slow EMA; the signal line is an EMA of that
// difference. One calculator serves either line.
type macdCalc struct {
	fast, slow, signal *goti.MovingAverage
	signalLine         bool
	main               float64
	ready              bool
}

func newMACDCalc(ind types.Indicator) (*macdCalc, error) {
	fast, err := goti.NewMovingAverage(goti.EMAMovingAverage, ind.Periods[0])
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeConfigurationInvalid, err, "%s fast", ind.Key())
	}
	slow, err := goti.NewMovingAverage(goti.EMAMovingAverage, ind.Periods[1])
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeConfigurationInvalid, err, "%s slow", ind.Key())
	}
	signal, err := goti.NewMovingAverage(goti.EMAMovingAverage, ind.Periods[2])
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeConfigurationInvalid, err, "%s signal", ind.Key())
	}
	return &macdCalc{fast: fast, slow: slow, signal: signal, signalLine: ind.Kind == types.MACDSignal}, nil
}

func (c *macdCalc) add(b Bar) error {
	if err := c.fast.AddValue(b.Close); err != nil {
		return err
	}
	if err := c.slow.AddValue(b.Close); err != nil {
		return err
	}
	f, errF := c.fast.Calculate()
	s, errS := c.slow.Calculate()
	if errF != nil || errS != nil {
		return nil
	}
	c.main, c.ready = f-s, true
	return c.signal.AddValue(c.main)
}

func (c *macdCalc) value() (float64, bool) {
	if !c.signalLine {
		return c.main, c.ready
	}
	v, err := c.signal.Calculate()
	return v, err == nil
}
