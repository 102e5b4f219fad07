package strategy

import (
	"github.com/evdnx/gotrend/config"
	"github.com/evdnx/gotrend/errors"
	"github.com/evdnx/gotrend/executor"
	"github.com/evdnx/gotrend/logger"
	"github.com/evdnx/gotrend/metrics"
	"github.com/evdnx/gotrend/types"
)

// BaseStrategy bundles the gateway, the logger and the validated config,
// plus the helpers that turn an Action into a gateway request.
type BaseStrategy struct {
	Exec   executor.Executor
	Log    logger.Logger
	Cfg    config.StrategyConfig
	Symbol string
}

// NewBaseStrategy validates the config. A bad parameter set is refused here,
// never at tick time.
func NewBaseStrategy(cfg config.StrategyConfig, exec executor.Executor, log logger.Logger) (*BaseStrategy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if exec == nil {
		return nil, errors.New(errors.ErrCodeConfigurationInvalid, "executor is required")
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &BaseStrategy{
		Exec:   exec,
		Log:    log,
		Cfg:    cfg,
		Symbol: cfg.Symbol,
	}, nil
}

// submit sends a to the gateway, recording metrics and logs. A refusal is
// returned as OrderRejected; nothing is retried.
func (b *BaseStrategy) submit(a Action, q types.Quote) error {
	var err error
	switch a.Kind {
	case OpenLong:
		_, err = b.Exec.Open(b.openRequest(types.Long, q.Ask, a, q))
	case OpenShort:
		_, err = b.Exec.Open(b.openRequest(types.Short, q.Bid, a, q))
	case ClosePosition:
		err = b.Exec.Close(b.Symbol)
	case ModifyStop:
		err = b.Exec.ModifyStop(b.Symbol, a.StopLoss, a.TakeProfit)
	default:
		err = errors.Newf(errors.ErrCodeInvalidOrder, "unknown action %q", a.Kind)
	}
	if err != nil {
		metrics.OrdersRejected.WithLabelValues(string(a.Kind)).Inc()
		b.Log.Error("order_rejected",
			logger.String("symbol", b.Symbol),
			logger.String("action", string(a.Kind)),
			logger.String("reason", a.Reason),
			logger.Err(err),
		)
		return errors.Wrapf(errors.ErrCodeOrderRejected, err, "%s on %s", a.Kind, b.Symbol)
	}
	metrics.OrdersSubmitted.WithLabelValues(string(a.Kind)).Inc()
	b.Log.Info("order_submitted",
		logger.String("symbol", b.Symbol),
		logger.String("action", string(a.Kind)),
		logger.String("reason", a.Reason),
		logger.Float64("volume", a.Volume),
		logger.Float64("sl", a.StopLoss),
		logger.Float64("tp", a.TakeProfit),
		logger.Float64("bid", q.Bid),
		logger.Float64("ask", q.Ask),
	)
	return nil
}

func (b *BaseStrategy) openRequest(side types.Side, price float64, a Action, q types.Quote) types.OpenRequest {
	comment := "Trend EA Long"
	if side == types.Short {
		comment = "Trend EA Short"
	}
	return types.OpenRequest{
		Symbol:     b.Symbol,
		Side:       side,
		Volume:     a.Volume,
		Price:      price,
		StopLoss:   a.StopLoss,
		TakeProfit: a.TakeProfit,
		Time:       q.Time,
		Comment:    comment,
	}
}
