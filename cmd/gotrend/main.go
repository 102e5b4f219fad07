package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/evdnx/gotrend/config"
	"github.com/evdnx/gotrend/executor"
	"github.com/evdnx/gotrend/logger"
	"github.com/evdnx/gotrend/marketdata"
	"github.com/evdnx/gotrend/runner"
	"github.com/evdnx/gotrend/strategy"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"
)

// feedDepth is how many samples a feed keeps per indicator.
const feedDepth = 64

func loadConfig(cmd *cli.Command) (config.StrategyConfig, error) {
	path := cmd.String("config")
	if path == "" {
		cfg := config.DefaultConfig()
		return cfg, cfg.Validate()
	}
	return config.Load(path)
}

// runAction replays a recorded feed or a bar history through the engine
// against the paper executor and prints a summary.
func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	lg, err := logger.NewZapLogger(cmd.String("log-level"))
	if err != nil {
		return err
	}

	if addr := cmd.String("metrics-addr"); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
				lg.Error("metrics_server_failed", logger.String("addr", addr), logger.Err(err))
			}
		}()
		lg.Info("metrics_listening", logger.String("addr", addr))
	}

	feed, err := openFeed(cmd, &cfg)
	if err != nil {
		return err
	}
	defer feed.Close()

	paper := executor.NewPaperExecutor(cmd.Float("balance"), cmd.Float("contract-size"), lg)
	tf, err := strategy.NewTrendFollower(cfg, feed, paper, lg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, err := runner.New(tf, feed, paper, lg).Run(ctx)
	out := cmd.Root().Writer
	fmt.Fprintf(out, "ticks=%d entries=%d exits=%d held=%d stop_mods=%d suppressed=%d rejected=%d skipped=%d\n",
		sum.Ticks, sum.Entries, sum.Exits, sum.HeldExits, sum.StopModifications, sum.Suppressed, sum.Rejections, sum.Skipped)
	fmt.Fprintf(out, "trades=%d balance=%.2f\n", len(paper.Trades()), paper.Balance())
	return err
}

func validateAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "config ok: %s %s/%s\n", cfg.Symbol, cfg.TradingTimeframe, cfg.ConfirmTimeframe)
	return nil
}

func defaultsAction(_ context.Context, cmd *cli.Command) error {
	cfg := config.DefaultConfig()
	out, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = cmd.Root().Writer.Write(out)
	return err
}

// columnsAction prints the CSV header a recorded feed needs for the config.
func columnsAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.Root().Writer, strings.Join(feedColumns(&cfg), ","))
	return err
}

// feedColumns lists the recorded feed columns for cfg. Indicator keys are
// quoted because MACD keys contain commas.
func feedColumns(cfg *config.StrategyConfig) []string {
	cols := []string{"time", "bid", "ask",
		string(cfg.TradingTimeframe) + ".open", string(cfg.ConfirmTimeframe) + ".open"}
	for _, ind := range strategy.RequiredIndicators(cfg) {
		cols = append(cols, `"`+ind.Key()+`"`)
	}
	return cols
}

type feedSource interface {
	marketdata.Provider
	marketdata.Feed
	Close() error
}

// openFeed opens either a recorded tick feed or a bar history whose
// indicators are computed on the fly.
func openFeed(cmd *cli.Command, cfg *config.StrategyConfig) (feedSource, error) {
	if path := cmd.String("bars"); path != "" {
		return marketdata.OpenBarFeed(path, marketdata.BarFeedOptions{
			Symbol:     cfg.Symbol,
			Timeframe:  cfg.TradingTimeframe,
			Spread:     float64(cmd.Int("spread")) * cfg.Point,
			Depth:      feedDepth,
			Indicators: strategy.RequiredIndicators(cfg),
		})
	}
	return marketdata.OpenReplay(cmd.String("feed"), cfg.Symbol, feedDepth)
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the strategy `YAML` file (defaults are used when empty)",
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "gotrend",
		Usage: "Multi-timeframe trend-following decision engine",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Replay a recorded tick feed or a bar history through the engine with a paper executor",
				MutuallyExclusiveFlags: []cli.MutuallyExclusiveFlags{{
					Required: true,
					Flags: [][]cli.Flag{
						{&cli.StringFlag{
							Name:    "feed",
							Aliases: []string{"f"},
							Usage:   "Path to the recorded feed `CSV`",
						}},
						{&cli.StringFlag{
							Name:    "bars",
							Aliases: []string{"b"},
							Usage:   "Path to a `CSV` of time,open,high,low,close trading bars",
						}},
					},
				}},
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "spread",
						Usage: "Spread in points added to bar closes to form the ask (--bars only)",
						Value: 2,
					},
					&cli.FloatFlag{
						Name:  "balance",
						Usage: "Starting balance of the paper account",
						Value: 10000,
					},
					&cli.FloatFlag{
						Name:  "contract-size",
						Usage: "Units per lot used for P&L",
						Value: 100000,
					},
					&cli.StringFlag{
						Name:  "metrics-addr",
						Usage: "Serve Prometheus metrics on this `ADDR` (e.g. :9090)",
					},
					&cli.StringFlag{
						Name:  "log-level",
						Usage: "debug, info, warn or error",
						Value: "info",
					},
				},
				Action: runAction,
			},
			{
				Name:   "validate",
				Usage:  "Load and validate a strategy config",
				Flags:  []cli.Flag{configFlag()},
				Action: validateAction,
			},
			{
				Name:   "defaults",
				Usage:  "Print the default strategy config as YAML",
				Action: defaultsAction,
			},
			{
				Name:   "columns",
				Usage:  "Print the feed CSV header required by a config",
				Flags:  []cli.Flag{configFlag()},
				Action: columnsAction,
			},
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
