package obcore

import "math"

// Side is which side of the book an order rests on.
type Side int8

const (
	Buy Side = 1
	Sell Side = 2
)

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// OrderType is the order's execution style. The core only knows about the
// two types spec.md's data model defines; IOC/FOK/PostOnly/iceberg/stop
// order types are out of scope.
type OrderType int8

const (
	Limit OrderType = 1
	Market OrderType = 2
)

func (t OrderType) String() string {
	if t == Market {
		return "market"
	}
	return "limit"
}

// marketBuyPrice and marketSellPrice are the internal +Inf/-Inf ticks
// sentinels spec.md §4.3 describes for representing a Market order as a
// Limit order that always crosses. Engine.Submit assigns them to Market
// orders before queuing; no emitted event carries them.
const (
	marketBuyPrice  int64 = math.MaxInt64
	marketSellPrice int64 = math.MinInt64
)

// Order is the command entering the matching engine. It is immutable on
// submit; ArrivalTS is stamped by the matcher, never by the caller.
type Order struct {
	OrderID   uint64
	SymbolID  uint32
	Side      Side
	Type      OrderType
	Price     int64 // ticks; ignored (sentinel) for Market orders
	Quantity  int64 // lots; strictly positive on entry
	ArrivalTS int64 // Unix nanoseconds from the engine's Clock (wall clock, not monotonic), set by the matcher
}

// Trade is an immutable record of a single fill.
type Trade struct {
	MakerID  uint64
	TakerID  uint64
	Price    int64 // always the maker's resting price
	Quantity int64
	TS       int64
}

// EventType identifies which lifecycle event a Event carries.
type EventType int8

const (
	EventAck EventType = iota
	EventTrade
	EventCancelAck
	EventCancelReject
	EventReject
)

func (t EventType) String() string {
	switch t {
	case EventAck:
		return "ack"
	case EventTrade:
		return "trade"
	case EventCancelAck:
		return "cancel_ack"
	case EventCancelReject:
		return "cancel_reject"
	case EventReject:
		return "reject"
	default:
		return "unknown"
	}
}

// Event is the unit carried on the event ring. OrderID identifies the
// order the event concerns (the taker for Ack/Trade/Reject, the cancel
// target for CancelAck/CancelReject). Trade is only populated for
// EventTrade.
type Event struct {
	Type    EventType
	OrderID uint64
	Trade   Trade
	TS      int64
}

// LevelSummary is one row of an L2 snapshot: a price, its aggregate resting
// quantity, and the number of orders contributing to it.
type LevelSummary struct {
	Price      int64
	TotalQty   int64
	OrderCount int
}

// commandKind distinguishes the two members of the Command union spec.md
// §9's "Confined-mutability pattern" recommends: Submit and Cancel both
// funnel through the single order ring so the book has exactly one
// mutator goroutine.
type commandKind int8

const (
	cmdSubmit commandKind = iota
	cmdCancel
)

// command is the order-ring payload. Exactly one of the two fields is
// meaningful, selected by kind.
type command struct {
	kind    commandKind
	order   Order
	orderID uint64
}
