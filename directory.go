package obcore

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/xid"
	"github.com/shopspring/decimal"
)

// InstrumentInfo describes a symbol registered in a Directory. InitialPrice
// is opaque listing metadata only — the matching core never does arithmetic
// on it, which is why it is a decimal.Decimal here and an int64 tick
// everywhere inside Book/Engine.
type InstrumentInfo struct {
	SymbolID     uint32
	Ticker       string
	Description  string
	Industry     string
	InitialPrice decimal.Decimal
	CreatedAt    time.Time
}

type directoryEntry struct {
	info   InstrumentInfo
	engine *Engine
}

// Directory is the multi-symbol dispatcher: it maps tickers and symbol ids
// to their own independent Engine, and owns the lifecycle of each. Its
// locking discipline is grounded on the C++ InstrumentManager: the
// directory's own mutex protects only the registry itself. It is released
// before any call descends into a per-symbol Engine, so one symbol's
// matcher is never blocked behind another symbol's directory lookup.
type Directory struct {
	mu       sync.RWMutex
	byID     map[uint32]*directoryEntry
	byTicker map[string]uint32
	nextID   atomic.Uint32

	engineOpts []EngineOption
}

// NewDirectory creates an empty Directory. opts are forwarded to every
// Engine the directory constructs.
func NewDirectory(opts ...EngineOption) *Directory {
	d := &Directory{
		byID:       make(map[uint32]*directoryEntry),
		byTicker:   make(map[string]uint32),
		engineOpts: opts,
	}
	d.nextID.Store(1)
	return d
}

// AddInstrument registers a new symbol, allocates it a monotonically
// increasing SymbolID, starts its Engine, and returns the assigned id. It
// returns ErrInvalidOrder if ticker is already registered.
func (d *Directory) AddInstrument(ticker, description, industry string, initialPrice decimal.Decimal) (uint32, error) {
	d.mu.Lock()
	if _, exists := d.byTicker[ticker]; exists {
		d.mu.Unlock()
		return 0, ErrInvalidOrder
	}
	symbolID := d.nextID.Add(1) - 1

	engine := NewEngine(symbolID, d.engineOpts...)
	entry := &directoryEntry{
		info: InstrumentInfo{
			SymbolID:     symbolID,
			Ticker:       ticker,
			Description:  description,
			Industry:     industry,
			InitialPrice: initialPrice,
			CreatedAt:    time.Now(),
		},
		engine: engine,
	}
	d.byID[symbolID] = entry
	d.byTicker[ticker] = symbolID
	d.mu.Unlock()

	auditID := xid.New().String()
	if err := engine.Start(); err != nil {
		logger.Error("failed to start engine for new instrument",
			"audit_id", auditID, "symbol_id", symbolID, "ticker", ticker, "error", err)
		return symbolID, err
	}
	logger.Info("instrument added",
		"audit_id", auditID, "symbol_id", symbolID, "ticker", ticker, "industry", industry)
	return symbolID, nil
}

// RemoveInstrument stops and deregisters symbolID. It reports whether the
// symbol was found.
func (d *Directory) RemoveInstrument(symbolID uint32) bool {
	d.mu.Lock()
	entry, ok := d.byID[symbolID]
	if !ok {
		d.mu.Unlock()
		return false
	}
	delete(d.byID, symbolID)
	delete(d.byTicker, entry.info.Ticker)
	d.mu.Unlock()

	entry.engine.Stop()
	logger.Info("instrument removed",
		"audit_id", xid.New().String(), "symbol_id", symbolID, "ticker", entry.info.Ticker)
	return true
}

// Has reports whether symbolID is currently registered.
func (d *Directory) Has(symbolID uint32) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.byID[symbolID]
	return ok
}

// Get returns the Engine for symbolID. The directory lock is released
// before this method returns, so holding onto the Engine and calling its
// methods never contends with directory lookups for other symbols.
func (d *Directory) Get(symbolID uint32) (*Engine, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	entry, ok := d.byID[symbolID]
	if !ok {
		return nil, false
	}
	return entry.engine, true
}

// GetByTicker is Get keyed by ticker instead of symbol id.
func (d *Directory) GetByTicker(ticker string) (*Engine, bool) {
	d.mu.RLock()
	symbolID, ok := d.byTicker[ticker]
	d.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return d.Get(symbolID)
}

// List returns the InstrumentInfo of every registered symbol. The order is
// unspecified.
func (d *Directory) List() []InstrumentInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]InstrumentInfo, 0, len(d.byID))
	for _, entry := range d.byID {
		out = append(out, entry.info)
	}
	return out
}

// StopAll stops every registered engine. Intended for orderly shutdown of
// the whole directory.
func (d *Directory) StopAll() {
	d.mu.RLock()
	engines := make([]*Engine, 0, len(d.byID))
	for _, entry := range d.byID {
		engines = append(engines, entry.engine)
	}
	d.mu.RUnlock()

	for _, e := range engines {
		e.Stop()
	}
}
