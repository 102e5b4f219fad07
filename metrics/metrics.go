package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Signals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gotrend_signals_total",
			Help: "Entry and exit signals raised by the engine (by kind).",
		},
		[]string{"kind"},
	)

	OrdersSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gotrend_orders_submitted_total",
			Help: "Gateway requests accepted (by action).",
		},
		[]string{"action"},
	)

	OrdersRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gotrend_orders_rejected_total",
			Help: "Gateway requests refused (by action).",
		},
		[]string{"action"},
	)

	ExitsHeld = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gotrend_exits_held_total",
			Help: "Exit signals suppressed by the minimum holding duration (by reason).",
		},
		[]string{"reason"},
	)

	TicksSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gotrend_ticks_skipped_total",
			Help: "Ticks whose decision pass was skipped because data was unavailable.",
		},
	)

	PositionsOpen = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gotrend_positions_open",
			Help: "Open positions per symbol (1 long, -1 short, 0 flat).",
		},
		[]string{"symbol"},
	)

	BalanceGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gotrend_balance",
			Help: "Realised balance of the paper executor.",
		},
	)
)

func init() {
	prometheus.MustRegister(Signals, OrdersSubmitted, OrdersRejected, ExitsHeld, TicksSkipped, PositionsOpen, BalanceGauge)
}
