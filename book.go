package obcore

// Book is the order book for a single symbol: two price-ordered sides plus
// a locator index giving O(1) lookup from an order id to its resting node,
// which is what makes CancelOrder O(1) instead of a level scan (spec.md
// §3's Locator Index invariant).
//
// Book is not safe for concurrent use. It is mutated exclusively by the
// matcher goroutine that owns it; reads from other goroutines go through
// Engine's synchronous snapshot calls, which is a documented, deliberate
// exception (SPEC_FULL.md §4.4).
type Book struct {
	SymbolID uint32

	bids *sideBook
	asks *sideBook

	locator map[uint64]*restingOrder
}

func NewBook(symbolID uint32) *Book {
	return &Book{
		SymbolID: symbolID,
		bids:     newBidBook(),
		asks:     newAskBook(),
		locator:  make(map[uint64]*restingOrder),
	}
}

func (b *Book) sideBookFor(side Side) *sideBook {
	if side == Buy {
		return b.bids
	}
	return b.asks
}

// AddOrder rests order in the book. It returns ErrInvalidOrder if an order
// with the same id is already resting — spec.md's Open Question 5 resolves
// duplicate ids as a rejection, checked here for free since the locator
// lookup this requires is already on the hot path — or if the order fails
// validation: a Limit with price <= 0, or any order with quantity <= 0
// (spec.md §4.2's addOrder contract).
func (b *Book) AddOrder(order Order) error {
	if order.Type == Limit && order.Price <= 0 {
		return ErrInvalidOrder
	}
	if order.Quantity <= 0 {
		return ErrInvalidOrder
	}
	if _, exists := b.locator[order.OrderID]; exists {
		return ErrInvalidOrder
	}
	ro := &restingOrder{
		order: order,
		side:  order.Side,
		price: order.Price,
	}
	b.sideBookFor(order.Side).insert(ro)
	b.locator[order.OrderID] = ro
	return nil
}

// CancelOrder removes orderID from the book in O(1). It returns
// ErrNotFound if no such order is resting.
func (b *Book) CancelOrder(orderID uint64) error {
	ro, ok := b.locator[orderID]
	if !ok {
		return ErrNotFound
	}
	b.sideBookFor(ro.side).remove(ro)
	delete(b.locator, orderID)
	return nil
}

// reduce shrinks a resting order's quantity by filled, removing it
// entirely (and dropping it from the locator) once it reaches zero. Used
// by the matcher as makers are filled.
func (b *Book) reduce(ro *restingOrder, filled int64) {
	ro.order.Quantity -= filled
	sb := b.sideBookFor(ro.side)
	if el, ok := sb.levels[ro.price]; ok {
		el.Value.(*priceLevel).totalQty -= filled
	}
	if ro.order.Quantity <= 0 {
		sb.eraseFront(ro.price, ro.order.OrderID)
		delete(b.locator, ro.order.OrderID)
	}
}

// BestBid returns the best resting buy price, or ok=false if the bid side
// is empty.
func (b *Book) BestBid() (price int64, ok bool) {
	return b.bids.bestPrice()
}

// BestAsk returns the best resting sell price, or ok=false if the ask side
// is empty.
func (b *Book) BestAsk() (price int64, ok bool) {
	return b.asks.bestPrice()
}

// bestOf returns the head resting order at contra's best price, or nil if
// contra is empty. This is the matcher's walk-the-top-of-book primitive.
func (b *Book) bestOf(side Side) *restingOrder {
	lvl := b.sideBookFor(side).best()
	if lvl == nil {
		return nil
	}
	return lvl.head
}

// SnapshotBidsL2 returns the bid side's L2 view, best price first, limited
// to depth levels (depth<=0 means all levels).
func (b *Book) SnapshotBidsL2(depth int) []LevelSummary {
	return b.bids.snapshotL2(depth)
}

// SnapshotAsksL2 returns the ask side's L2 view, best price first, limited
// to depth levels (depth<=0 means all levels).
func (b *Book) SnapshotAsksL2(depth int) []LevelSummary {
	return b.asks.snapshotL2(depth)
}

// OrderCount reports how many orders currently rest in the book. Used by
// tests to assert the locator and the level lists stay in lockstep.
func (b *Book) OrderCount() int {
	return len(b.locator)
}
