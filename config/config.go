package config

import (
	"os"
	"time"

	"github.com/evdnx/gotrend/errors"
	"github.com/evdnx/gotrend/types"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// StrategyConfig holds every tunable parameter of the trend strategy. It is
// built once at start-up and never mutated during a run.
type StrategyConfig struct {
	// Instrument. Point is the price of one point (e.g. 0.0001), Digits the
	// price precision every computed level is rounded to.
	Symbol string  `yaml:"symbol" validate:"required"`
	Point  float64 `yaml:"point" validate:"gt=0"`
	Digits int     `yaml:"digits" validate:"gte=0,lte=10"`

	TradingTimeframe types.Timeframe `yaml:"trading_timeframe" validate:"required"` // default H1
	ConfirmTimeframe types.Timeframe `yaml:"confirm_timeframe" validate:"required"` // default D1

	// Orders. A distance of 0 places no stop / no target.
	LotSize          float64 `yaml:"lot_size" validate:"gt=0"`
	StopLossPoints   int     `yaml:"stop_loss_points" validate:"gte=0"`
	TakeProfitPoints int     `yaml:"take_profit_points" validate:"gte=0"`

	// Entry indicators
	TrendPeriod      int     `yaml:"trend_period" validate:"gt=0"`
	RSIPeriod        int     `yaml:"rsi_period" validate:"gt=0"`
	RSIUpperLevel    float64 `yaml:"rsi_upper_level" validate:"gt=0,lt=100"`
	RSILowerLevel    float64 `yaml:"rsi_lower_level" validate:"gt=0,lt=100"`
	MACDFastPeriod   int     `yaml:"macd_fast_period" validate:"gt=0"`
	MACDSlowPeriod   int     `yaml:"macd_slow_period" validate:"gt=0"`
	MACDSignalPeriod int     `yaml:"macd_signal_period" validate:"gt=0"`

	// Exits
	RSIExitLevel    float64 `yaml:"rsi_exit_level" validate:"gt=0,lt=100"`
	TrendExitPeriod int     `yaml:"trend_exit_period" validate:"gt=0"`
	ATRMultiplier   float64 `yaml:"atr_multiplier" validate:"gt=0"`
	ATRPeriod       int     `yaml:"atr_period" validate:"gt=0"`
	MinHoldMinutes  int     `yaml:"min_hold_minutes" validate:"gte=0"`
}

// DefaultConfig returns the parameter set the strategy was tuned with.
func DefaultConfig() StrategyConfig {
	return StrategyConfig{
		Symbol:           "EURUSD",
		Point:            0.00001,
		Digits:           5,
		TradingTimeframe: types.H1,
		ConfirmTimeframe: types.D1,
		LotSize:          0.1,
		StopLossPoints:   50,
		TakeProfitPoints: 100,
		TrendPeriod:      20,
		RSIPeriod:        8,
		RSIUpperLevel:    60,
		RSILowerLevel:    40,
		MACDFastPeriod:   12,
		MACDSlowPeriod:   26,
		MACDSignalPeriod: 9,
		RSIExitLevel:     50,
		TrendExitPeriod:  100,
		ATRMultiplier:    3.0,
		ATRPeriod:        14,
		MinHoldMinutes:   60,
	}
}

// MinHold is the minimum holding duration before a close exit may execute.
func (c *StrategyConfig) MinHold() time.Duration {
	return time.Duration(c.MinHoldMinutes) * time.Minute
}

// Validate checks that all fields are within sensible bounds and that the
// combinations make sense. It returns the first problem found so start-up
// can fail with a clear message before any tick is processed.
func (c *StrategyConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeConfigurationInvalid, "invalid strategy config", err)
	}
	if !c.TradingTimeframe.Valid() {
		return errors.Newf(errors.ErrCodeConfigurationInvalid, "unknown trading timeframe %q", c.TradingTimeframe)
	}
	if !c.ConfirmTimeframe.Valid() {
		return errors.Newf(errors.ErrCodeConfigurationInvalid, "unknown confirmation timeframe %q", c.ConfirmTimeframe)
	}
	if c.ConfirmTimeframe.Duration() <= c.TradingTimeframe.Duration() {
		return errors.Newf(errors.ErrCodeConfigurationInvalid,
			"confirmation timeframe %s must be longer than trading timeframe %s", c.ConfirmTimeframe, c.TradingTimeframe)
	}
	if c.RSILowerLevel >= c.RSIUpperLevel {
		return errors.Newf(errors.ErrCodeConfigurationInvalid,
			"RSILowerLevel (%.2f) must be below RSIUpperLevel (%.2f)", c.RSILowerLevel, c.RSIUpperLevel)
	}
	if c.MACDFastPeriod >= c.MACDSlowPeriod {
		return errors.Newf(errors.ErrCodeConfigurationInvalid,
			"MACDFastPeriod (%d) must be below MACDSlowPeriod (%d)", c.MACDFastPeriod, c.MACDSlowPeriod)
	}
	return nil
}

// Load reads a YAML file on top of DefaultConfig and validates the result.
// Keys missing from the file keep their default values.
func Load(path string) (StrategyConfig, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(errors.ErrCodeConfigurationInvalid, err, "read config %s", path)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, errors.Wrapf(errors.ErrCodeConfigurationInvalid, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Marshal renders the config as YAML.
func (c *StrategyConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
