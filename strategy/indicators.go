package strategy

import (
	"github.com/evdnx/gotrend/config"
	"github.com/evdnx/gotrend/types"
)

// sampleDepth is how many bars back crossover rules look: index 0 is the
// forming bar, 1 the previous one, 2 the one before.
const sampleDepth = 3

// indicatorSet names every buffer the strategy reads.
type indicatorSet struct {
	trend      types.Indicator
	rsi        types.Indicator
	macdMain   types.Indicator
	macdSignal types.Indicator
	atr        types.Indicator

	htfTrend  types.Indicator
	htfRSI    types.Indicator
	exitTrend types.Indicator
}

func indicatorsFor(cfg *config.StrategyConfig) indicatorSet {
	tf, htf := cfg.TradingTimeframe, cfg.ConfirmTimeframe
	macd := []int{cfg.MACDFastPeriod, cfg.MACDSlowPeriod, cfg.MACDSignalPeriod}
	return indicatorSet{
		trend:      types.Indicator{Kind: types.EMA, Timeframe: tf, Periods: []int{cfg.TrendPeriod}},
		rsi:        types.Indicator{Kind: types.RSI, Timeframe: tf, Periods: []int{cfg.RSIPeriod}},
		macdMain:   types.Indicator{Kind: types.MACDMain, Timeframe: tf, Periods: macd},
		macdSignal: types.Indicator{Kind: types.MACDSignal, Timeframe: tf, Periods: macd},
		atr:        types.Indicator{Kind: types.ATR, Timeframe: tf, Periods: []int{cfg.ATRPeriod}},
		htfTrend:   types.Indicator{Kind: types.EMA, Timeframe: htf, Periods: []int{cfg.TrendPeriod}},
		htfRSI:     types.Indicator{Kind: types.RSI, Timeframe: htf, Periods: []int{cfg.RSIPeriod}},
		exitTrend:  types.Indicator{Kind: types.EMA, Timeframe: htf, Periods: []int{cfg.TrendExitPeriod}},
	}
}

// RequiredIndicators lists every indicator buffer a provider must serve for
// cfg, trading timeframe first.
func RequiredIndicators(cfg *config.StrategyConfig) []types.Indicator {
	s := indicatorsFor(cfg)
	return []types.Indicator{
		s.trend, s.rsi, s.macdMain, s.macdSignal, s.atr,
		s.htfTrend, s.htfRSI, s.exitTrend,
	}
}
