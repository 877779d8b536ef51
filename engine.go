package obcore

import (
	"runtime"
	"sync/atomic"
	"time"
)

const (
	defaultOrderRingCapacity = 1024
	defaultEventRingCapacity = 1024
)

// Clock abstracts time.Now so tests can stamp orders deterministically.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// EngineOption configures an Engine at construction time, mirroring the
// teacher's functional-options convention for OrderBook.
type EngineOption func(*Engine)

// WithRingCapacity sets the minimum capacity (rounded up to a power of
// two) of both the order ring and the event ring. The default is 1024.
func WithRingCapacity(capacity int) EngineOption {
	return func(e *Engine) {
		e.orderRingCap = capacity
		e.eventRingCap = capacity
	}
}

// WithClock overrides the engine's time source. Tests use this to stamp
// deterministic ArrivalTS values.
func WithClock(c Clock) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// Engine owns one symbol's book, its order and event rings, and the
// matcher goroutine that is the sole mutator of that book. This mirrors
// spec.md §4.4: one matcher goroutine per symbol, never shared.
type Engine struct {
	book *Book

	orderRing *Ring[command]
	eventRing *Ring[Event]

	orderRingCap int
	eventRingCap int
	clock        Clock

	running atomic.Bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	onEvent atomic.Pointer[func(Event)]
}

// NewEngine constructs an Engine for symbolID. It does not start the
// matcher goroutine; call Start for that.
func NewEngine(symbolID uint32, opts ...EngineOption) *Engine {
	e := &Engine{
		book:         NewBook(symbolID),
		orderRingCap: defaultOrderRingCapacity,
		eventRingCap: defaultEventRingCapacity,
		clock:        realClock{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.orderRing = NewRing[command](e.orderRingCap)
	e.eventRing = NewRing[Event](e.eventRingCap)
	return e
}

// SymbolID returns the symbol this engine matches orders for.
func (e *Engine) SymbolID() uint32 {
	return e.book.SymbolID
}

// IsRunning reports whether the matcher goroutine is active.
func (e *Engine) IsRunning() bool {
	return e.running.Load()
}

// SetEventCallback registers a function invoked by the matcher goroutine
// for every Event it emits, in addition to the event ring. Pass nil to
// clear it. The callback runs on the matcher goroutine and must not block.
func (e *Engine) SetEventCallback(fn func(Event)) {
	if fn == nil {
		e.onEvent.Store(nil)
		return
	}
	e.onEvent.Store(&fn)
}

// Start launches the matcher goroutine. It is idempotent: calling Start on
// an already-running engine returns ErrAlreadyRunning and does nothing.
func (e *Engine) Start() error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	e.stopCh = make(chan struct{})
	e.doneCh = make(chan struct{})
	go e.run()
	return nil
}

// Stop signals the matcher goroutine to exit and waits for it to do so.
// It is idempotent: calling Stop on an already-stopped engine is a no-op.
func (e *Engine) Stop() {
	if !e.running.CompareAndSwap(true, false) {
		return
	}
	close(e.stopCh)
	<-e.doneCh
}

// Submit enqueues order for matching. It returns ErrShutdown if the engine
// is not running, ErrInvalidOrder if the quantity is not positive, and
// ErrQueueFull if the order ring has no room — a full order ring is
// reported back to the caller rather than silently dropped, since the
// caller is still on the stack to handle it.
func (e *Engine) Submit(order Order) error {
	if !e.running.Load() {
		return ErrShutdown
	}
	if order.Quantity <= 0 {
		return ErrInvalidOrder
	}
	if order.Type == Market {
		if order.Side == Buy {
			order.Price = marketBuyPrice
		} else {
			order.Price = marketSellPrice
		}
	}
	cmd := command{kind: cmdSubmit, order: order}
	if !e.orderRing.TryPush(cmd) {
		return ErrQueueFull
	}
	return nil
}

// Cancel enqueues a cancel request for orderID. Cancellation is processed
// by the matcher goroutine in arrival order alongside submissions, which
// is what eliminates the synchronous cancel-vs-match data race documented
// in SPEC_FULL.md §9 (Open Question 1).
func (e *Engine) Cancel(orderID uint64) error {
	if !e.running.Load() {
		return ErrShutdown
	}
	cmd := command{kind: cmdCancel, orderID: orderID}
	if !e.orderRing.TryPush(cmd) {
		return ErrQueueFull
	}
	return nil
}

// BestBid, BestAsk and the SnapshotXL2 methods below are synchronous reads
// of book state performed from the caller's goroutine while the matcher
// may be concurrently mutating it. SPEC_FULL.md §4.4 documents this as a
// deliberate, narrow exception to "book is only touched by its matcher
// goroutine": these are plain reads of independently-consistent fields
// (skiplist traversal, level totals and counts) and a torn read here means at worst a
// caller sees a level a moment before or after a concurrent mutation, not
// a corrupted structure. Callers needing a point-in-time-consistent view
// should instead consume the event stream.
func (e *Engine) BestBid() (int64, bool) { return e.book.BestBid() }
func (e *Engine) BestAsk() (int64, bool) { return e.book.BestAsk() }

func (e *Engine) SnapshotBidsL2(depth int) []LevelSummary { return e.book.SnapshotBidsL2(depth) }
func (e *Engine) SnapshotAsksL2(depth int) []LevelSummary { return e.book.SnapshotAsksL2(depth) }

// run is the matcher goroutine body: drain the order ring, apply each
// command to book, publish resulting events. It owns book exclusively for
// as long as it runs.
func (e *Engine) run() {
	defer close(e.doneCh)
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	emit := func(ev Event) {
		if cb := e.onEvent.Load(); cb != nil {
			(*cb)(ev)
		}
		if !e.eventRing.TryPush(ev) {
			logger.Warn("event ring full, dropping event",
				"symbol_id", e.book.SymbolID,
				"event_type", ev.Type.String(),
				"order_id", ev.OrderID,
			)
		}
	}

	var cmd command
	for {
		for e.orderRing.TryPop(&cmd) {
			e.apply(cmd, emit)
		}
		select {
		case <-e.stopCh:
			return
		default:
			runtime.Gosched()
		}
	}
}

func (e *Engine) apply(cmd command, emit func(Event)) {
	switch cmd.kind {
	case cmdSubmit:
		order := cmd.order
		order.ArrivalTS = e.clock.Now().UnixNano()
		Match(e.book, order, emit)
	case cmdCancel:
		ts := e.clock.Now().UnixNano()
		if err := e.book.CancelOrder(cmd.orderID); err != nil {
			emit(Event{Type: EventCancelReject, OrderID: cmd.orderID, TS: ts})
			return
		}
		emit(Event{Type: EventCancelAck, OrderID: cmd.orderID, TS: ts})
	}
}

// ProcessEvents drains up to max pending events from the event ring into
// fn, returning the number drained. max<=0 drains everything currently
// available. This is the pull-side counterpart to SetEventCallback for
// callers that prefer polling.
func (e *Engine) ProcessEvents(max int, fn func(Event)) int {
	var ev Event
	n := 0
	for (max <= 0 || n < max) && e.eventRing.TryPop(&ev) {
		fn(ev)
		n++
	}
	return n
}
