package testutils

import (
	"sync"

	"github.com/evdnx/gotrend/errors"
	"github.com/evdnx/gotrend/types"
	"github.com/moznion/go-optional"
)

// Call is one request the engine sent to the gateway.
type Call struct {
	Action     string // "open", "close", "modify"
	Symbol     string
	Side       types.Side
	Volume     float64
	Price      float64
	StopLoss   float64
	TakeProfit float64
}

// MockExecutor implements executor.Executor in-memory and records every call.
// Reject makes the next requests of the given action fail with OrderRejected.
type MockExecutor struct {
	mu        sync.RWMutex
	positions map[string]types.Position
	calls     []Call
	reject    map[string]bool
}

func NewMockExecutor() *MockExecutor {
	return &MockExecutor{
		positions: make(map[string]types.Position),
		reject:    make(map[string]bool),
	}
}

// SetPosition places a position directly, bypassing Open.
func (m *MockExecutor) SetPosition(p types.Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[p.Symbol] = p
}

// Reject toggles rejection of "open", "close" or "modify" requests.
func (m *MockExecutor) Reject(action string, on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reject[action] = on
}

func (m *MockExecutor) Open(req types.OpenRequest) (types.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{
		Action: "open", Symbol: req.Symbol, Side: req.Side, Volume: req.Volume,
		Price: req.Price, StopLoss: req.StopLoss, TakeProfit: req.TakeProfit,
	})
	if m.reject["open"] {
		return types.Position{}, errors.New(errors.ErrCodeOrderRejected, "mock: open rejected")
	}
	if _, ok := m.positions[req.Symbol]; ok {
		return types.Position{}, errors.New(errors.ErrCodeOrderRejected, "mock: position exists")
	}
	pos := types.Position{
		Ticket:     "mock",
		Symbol:     req.Symbol,
		Side:       req.Side,
		Volume:     req.Volume,
		OpenPrice:  req.Price,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
		OpenTime:   req.Time,
	}
	m.positions[req.Symbol] = pos
	return pos, nil
}

func (m *MockExecutor) Close(symbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Action: "close", Symbol: symbol})
	if m.reject["close"] {
		return errors.New(errors.ErrCodeOrderRejected, "mock: close rejected")
	}
	if _, ok := m.positions[symbol]; !ok {
		return errors.New(errors.ErrCodePositionNotFound, "mock: no position")
	}
	delete(m.positions, symbol)
	return nil
}

func (m *MockExecutor) ModifyStop(symbol string, stopLoss, takeProfit float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Action: "modify", Symbol: symbol, StopLoss: stopLoss, TakeProfit: takeProfit})
	if m.reject["modify"] {
		return errors.New(errors.ErrCodeOrderRejected, "mock: modify rejected")
	}
	pos, ok := m.positions[symbol]
	if !ok {
		return errors.New(errors.ErrCodePositionNotFound, "mock: no position")
	}
	pos.StopLoss = stopLoss
	pos.TakeProfit = takeProfit
	m.positions[symbol] = pos
	return nil
}

func (m *MockExecutor) Position(symbol string) (optional.Option[types.Position], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if pos, ok := m.positions[symbol]; ok {
		return optional.Some(pos), nil
	}
	return optional.None[types.Position](), nil
}

// Calls returns a copy of all recorded requests (useful for assertions).
func (m *MockExecutor) Calls() []Call {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsOf returns the recorded requests of one action.
func (m *MockExecutor) CallsOf(action string) []Call {
	var out []Call
	for _, c := range m.Calls() {
		if c.Action == action {
			out = append(out, c)
		}
	}
	return out
}
