package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/evdnx/gotrend/errors"
	"github.com/evdnx/gotrend/types"
)

func TestValidateSuccess(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.MinHold().Minutes() != 60 {
		t.Fatalf("expected 60 minute hold, got %v", cfg.MinHold())
	}
}

func TestValidateFailures(t *testing.T) {
	cases := map[string]func(c *StrategyConfig){
		"negative trend period": func(c *StrategyConfig) { c.TrendPeriod = -20 },
		"zero lot size":         func(c *StrategyConfig) { c.LotSize = 0 },
		"inverted rsi levels":   func(c *StrategyConfig) { c.RSILowerLevel, c.RSIUpperLevel = 60, 40 },
		"rsi exit out of range": func(c *StrategyConfig) { c.RSIExitLevel = 120 },
		"macd fast >= slow":     func(c *StrategyConfig) { c.MACDFastPeriod = 26 },
		"negative hold":         func(c *StrategyConfig) { c.MinHoldMinutes = -1 },
		"zero atr multiplier":   func(c *StrategyConfig) { c.ATRMultiplier = 0 },
		"missing symbol":        func(c *StrategyConfig) { c.Symbol = "" },
		"unknown timeframe":     func(c *StrategyConfig) { c.TradingTimeframe = "H2" },
		"confirm not longer":    func(c *StrategyConfig) { c.ConfirmTimeframe = types.M30 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.HasCode(err, errors.ErrCodeConfigurationInvalid) {
				t.Fatalf("expected ConfigurationInvalid, got %v", err)
			}
		})
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	body := "symbol: GBPUSD\npoint: 0.0001\ndigits: 4\nrsi_period: 14\nmin_hold_minutes: 120\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Symbol != "GBPUSD" || cfg.RSIPeriod != 14 || cfg.MinHoldMinutes != 120 || cfg.Digits != 4 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	// untouched keys keep their defaults
	if cfg.TrendExitPeriod != 100 || cfg.ATRMultiplier != 3.0 || cfg.TradingTimeframe != types.H1 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("trend_period: -5\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for negative period")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestMarshalRoundTripsThroughLoad(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ATRMultiplier = 2.5
	raw, err := cfg.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got != cfg {
		t.Fatalf("expected %+v, got %+v", cfg, got)
	}
}
