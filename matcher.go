package obcore

// Match runs order against book, emitting lifecycle events to emit in the
// exact order spec.md §4.3 (and its C++ ground truth, matching_engine.cpp)
// require: a validation check first — a failing order is Rejected and the
// book is never touched (spec.md §4.3 "Failure semantics") — then an Ack,
// then zero or more Trades as the order walks the contra side, then
// resting or discarding whatever quantity remains.
//
// order.ArrivalTS must already be stamped by the caller (Engine does this
// once, at dequeue time, so every event derived from this order carries
// the same timestamp).
//
// Match is not safe for concurrent use on the same book; it is meant to be
// called only from the single goroutine that owns book.
func Match(book *Book, order Order, emit func(Event)) {
	if !validOrder(order) {
		emit(Event{Type: EventReject, OrderID: order.OrderID, TS: order.ArrivalTS})
		return
	}

	emit(Event{Type: EventAck, OrderID: order.OrderID, TS: order.ArrivalTS})

	contraSide := Sell
	if order.Side == Sell {
		contraSide = Buy
	}

	remaining := order.Quantity
	for remaining > 0 {
		maker := book.bestOf(contraSide)
		if maker == nil {
			break
		}
		if !canMatch(order.Side, order.Price, maker.price, order.Type) {
			break
		}

		tradeQty := remaining
		if maker.order.Quantity < tradeQty {
			tradeQty = maker.order.Quantity
		}

		trade := Trade{
			MakerID:  maker.order.OrderID,
			TakerID:  order.OrderID,
			Price:    maker.price, // maker-price convention (spec.md §4.3)
			Quantity: tradeQty,
			TS:       order.ArrivalTS,
		}
		emit(Event{Type: EventTrade, OrderID: order.OrderID, Trade: trade, TS: order.ArrivalTS})

		book.reduce(maker, tradeQty)
		remaining -= tradeQty
	}

	if remaining <= 0 {
		return
	}

	if order.Type == Market {
		// No liquidity left to absorb the remainder: a market order never
		// rests, so the residual is simply discarded (spec.md §5, edge
		// case "market order with empty contra side").
		return
	}

	resting := order
	resting.Quantity = remaining
	// The order already passed validOrder, so the book refuses the residual
	// only when its id duplicates an order already resting (Match does not
	// check ids itself). Defensive per spec.md §4.3 step 3: reject rather
	// than silently drop if the book refuses the residual.
	if err := book.AddOrder(resting); err != nil {
		emit(Event{Type: EventReject, OrderID: order.OrderID, TS: order.ArrivalTS})
	}
}

// validOrder reports whether order passes the book's entry validation:
// a Limit priced at or below zero, or any non-positive quantity, is
// rejected before it ever reaches the book (spec.md §4.3 "Failure
// semantics").
func validOrder(order Order) bool {
	if order.Type == Limit && order.Price <= 0 {
		return false
	}
	return order.Quantity > 0
}

// canMatch reports whether a taker on side, bidding/offering at takerPrice,
// can cross a resting maker at makerPrice. Market orders always cross, by
// construction, against any non-empty contra side (their takerPrice is the
// +Inf/-Inf sentinel priced to always satisfy the limit comparison below;
// this function short-circuits on Type for clarity rather than relying on
// the sentinel alone).
func canMatch(side Side, takerPrice, makerPrice int64, orderType OrderType) bool {
	if orderType == Market {
		return true
	}
	if side == Buy {
		return takerPrice >= makerPrice
	}
	return takerPrice <= makerPrice
}
