package executor

import (
	"sync"
	"time"

	"github.com/evdnx/gotrend/errors"
	"github.com/evdnx/gotrend/logger"
	"github.com/evdnx/gotrend/metrics"
	"github.com/evdnx/gotrend/types"
	"github.com/google/uuid"
	"github.com/moznion/go-optional"
)

// Executor is the order gateway. It owns position state; the engine only
// reads it through Position and changes it through the three requests.
type Executor interface {
	Open(req types.OpenRequest) (types.Position, error)
	Close(symbol string) error
	ModifyStop(symbol string, stopLoss, takeProfit float64) error
	Position(symbol string) (optional.Option[types.Position], error)
}

// Marker is implemented by executors that simulate fills and need to see
// every quote to trigger protective levels.
type Marker interface {
	Mark(q types.Quote)
}

// PaperExecutor is an in-memory gateway: perfect fills at the requested
// price, one position per symbol, stop-loss and take-profit triggered on
// Mark. Realised P&L is volume * contractSize * price move.
type PaperExecutor struct {
	mu           sync.Mutex
	balance      float64
	contractSize float64
	positions    map[string]types.Position
	lastQuote    map[string]types.Quote
	closed       []ClosedTrade
	log          logger.Logger
}

// ClosedTrade is a position after it left the book.
type ClosedTrade struct {
	types.Position
	ClosePrice float64
	CloseTime  time.Time
	Reason     string
	Profit     float64
}

func NewPaperExecutor(startBalance, contractSize float64, log logger.Logger) *PaperExecutor {
	if contractSize <= 0 {
		contractSize = 1
	}
	if log == nil {
		log = logger.NewNop()
	}
	metrics.BalanceGauge.Set(startBalance)
	return &PaperExecutor{
		balance:      startBalance,
		contractSize: contractSize,
		positions:    make(map[string]types.Position),
		lastQuote:    make(map[string]types.Quote),
		log:          log,
	}
}

func (p *PaperExecutor) Open(req types.OpenRequest) (types.Position, error) {
	if err := req.Validate(); err != nil {
		return types.Position{}, errors.Wrap(errors.ErrCodeOrderRejected, "open rejected", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if cur, ok := p.positions[req.Symbol]; ok {
		return types.Position{}, errors.Newf(errors.ErrCodeOrderRejected,
			"open rejected: %s already has a %s position", req.Symbol, cur.Side)
	}
	pos := types.Position{
		Ticket:     uuid.NewString(),
		Symbol:     req.Symbol,
		Side:       req.Side,
		Volume:     req.Volume,
		OpenPrice:  req.Price,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
		OpenTime:   req.Time,
	}
	p.positions[req.Symbol] = pos
	metrics.PositionsOpen.WithLabelValues(req.Symbol).Set(req.Side.Direction())
	p.log.Info("paper_open",
		logger.String("ticket", pos.Ticket),
		logger.String("symbol", pos.Symbol),
		logger.String("side", string(pos.Side)),
		logger.Float64("volume", pos.Volume),
		logger.Float64("price", pos.OpenPrice),
		logger.Float64("sl", pos.StopLoss),
		logger.Float64("tp", pos.TakeProfit),
	)
	return pos, nil
}

// Close flattens the position at the last marked price (bid for longs, ask
// for shorts). Without a mark the open price is used.
func (p *PaperExecutor) Close(symbol string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	pos, ok := p.positions[symbol]
	if !ok {
		return errors.Newf(errors.ErrCodePositionNotFound, "no open position on %s", symbol)
	}
	price, at := pos.OpenPrice, pos.OpenTime
	if q, ok := p.lastQuote[symbol]; ok {
		price, at = exitPrice(pos.Side, q), q.Time
	}
	p.settle(pos, price, at, "strategy")
	return nil
}

func (p *PaperExecutor) ModifyStop(symbol string, stopLoss, takeProfit float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	pos, ok := p.positions[symbol]
	if !ok {
		return errors.Newf(errors.ErrCodePositionNotFound, "no open position on %s", symbol)
	}
	if q, ok := p.lastQuote[symbol]; ok && stopLoss > 0 {
		// a stop on the wrong side of the market would fill immediately
		if (pos.Side == types.Long && stopLoss >= q.Bid) || (pos.Side == types.Short && stopLoss <= q.Ask) {
			return errors.Newf(errors.ErrCodeOrderRejected, "stop %.5f crosses market %.5f/%.5f", stopLoss, q.Bid, q.Ask)
		}
	}
	pos.StopLoss = stopLoss
	pos.TakeProfit = takeProfit
	p.positions[symbol] = pos
	return nil
}

func (p *PaperExecutor) Position(symbol string) (optional.Option[types.Position], error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pos, ok := p.positions[symbol]; ok {
		return optional.Some(pos), nil
	}
	return optional.None[types.Position](), nil
}

// Mark records the quote and closes the position if its stop-loss or
// take-profit was touched. Longs trigger on the bid, shorts on the ask.
func (p *PaperExecutor) Mark(q types.Quote) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastQuote[q.Symbol] = q
	pos, ok := p.positions[q.Symbol]
	if !ok {
		return
	}
	px := exitPrice(pos.Side, q)
	switch {
	case pos.StopLoss > 0 && ((pos.Side == types.Long && px <= pos.StopLoss) || (pos.Side == types.Short && px >= pos.StopLoss)):
		p.settle(pos, pos.StopLoss, q.Time, "stop_loss")
	case pos.TakeProfit > 0 && ((pos.Side == types.Long && px >= pos.TakeProfit) || (pos.Side == types.Short && px <= pos.TakeProfit)):
		p.settle(pos, pos.TakeProfit, q.Time, "take_profit")
	}
}

// Balance returns the realised balance.
func (p *PaperExecutor) Balance() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balance
}

// Trades returns a copy of all closed trades.
func (p *PaperExecutor) Trades() []ClosedTrade {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ClosedTrade, len(p.closed))
	copy(out, p.closed)
	return out
}

// settle must be called with p.mu held.
func (p *PaperExecutor) settle(pos types.Position, price float64, at time.Time, reason string) {
	profit := (price - pos.OpenPrice) * pos.Side.Direction() * pos.Volume * p.contractSize
	p.balance += profit
	delete(p.positions, pos.Symbol)
	p.closed = append(p.closed, ClosedTrade{
		Position:   pos,
		ClosePrice: price,
		CloseTime:  at,
		Reason:     reason,
		Profit:     profit,
	})
	metrics.PositionsOpen.WithLabelValues(pos.Symbol).Set(0)
	metrics.BalanceGauge.Set(p.balance)
	p.log.Info("paper_close",
		logger.String("ticket", pos.Ticket),
		logger.String("symbol", pos.Symbol),
		logger.String("reason", reason),
		logger.Float64("price", price),
		logger.Float64("profit", profit),
		logger.Float64("balance", p.balance),
	)
}

func exitPrice(side types.Side, q types.Quote) float64 {
	if side == types.Short {
		return q.Ask
	}
	return q.Bid
}
