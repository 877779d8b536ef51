package obcore

import "github.com/huandu/skiplist"

// restingOrder is an order that has come to rest in the book. It carries
// its own intrusive linked-list pointers so a priceLevel needs no separate
// backing slice — insertion and removal are O(1) given the node itself,
// which is exactly what the locator index in Book hands back on cancel.
type restingOrder struct {
	order Order

	side  Side
	price int64

	next, prev *restingOrder
}

// priceLevel is the FIFO of resting orders at one (side, price). Invariant
// (spec.md §3): every order in the sequence shares the level's price and
// side, and totalQty is always the sum of their remaining quantities.
type priceLevel struct {
	head, tail *restingOrder
	totalQty   int64
	count      int
}

func (lvl *priceLevel) pushBack(ro *restingOrder) {
	ro.prev = lvl.tail
	ro.next = nil
	if lvl.tail != nil {
		lvl.tail.next = ro
	}
	lvl.tail = ro
	if lvl.head == nil {
		lvl.head = ro
	}
	lvl.totalQty += ro.order.Quantity
	lvl.count++
}

// remove detaches ro from the level in O(1). It does not touch any index;
// callers own that.
func (lvl *priceLevel) remove(ro *restingOrder) {
	if ro.prev != nil {
		ro.prev.next = ro.next
	} else {
		lvl.head = ro.next
	}
	if ro.next != nil {
		ro.next.prev = ro.prev
	} else {
		lvl.tail = ro.prev
	}
	ro.next, ro.prev = nil, nil
	lvl.totalQty -= ro.order.Quantity
	lvl.count--
}

func (lvl *priceLevel) empty() bool {
	return lvl.count == 0
}

// sideBook is one side (bid or ask) of an order book: a price-sorted map
// of price -> priceLevel, kept in priority order via a skip list. Bids
// iterate highest price first, asks lowest price first — the comparator
// chosen by newBidBook or newAskBook decides which.
type sideBook struct {
	side  Side
	byPrice *skiplist.SkipList
	levels  map[int64]*skiplist.Element
}

func newBidBook() *sideBook {
	return &sideBook{
		side: Buy,
		byPrice: skiplist.New(skiplist.GreaterThanFunc(func(lhs, rhs any) int {
			a, b := lhs.(int64), rhs.(int64)
			switch {
			case a > b:
				return -1 // higher price sorts first for bids
			case a < b:
				return 1
			default:
				return 0
			}
		})),
		levels: make(map[int64]*skiplist.Element),
	}
}

func newAskBook() *sideBook {
	return &sideBook{
		side: Sell,
		byPrice: skiplist.New(skiplist.GreaterThanFunc(func(lhs, rhs any) int {
			a, b := lhs.(int64), rhs.(int64)
			switch {
			case a < b:
				return -1 // lower price sorts first for asks
			case a > b:
				return 1
			default:
				return 0
			}
		})),
		levels: make(map[int64]*skiplist.Element),
	}
}

// insert appends ro to the tail of its (side, price) level, creating the
// level if this is the first order at that price.
func (sb *sideBook) insert(ro *restingOrder) {
	el, ok := sb.levels[ro.price]
	if !ok {
		lvl := &priceLevel{}
		lvl.pushBack(ro)
		el = sb.byPrice.Set(ro.price, lvl)
		sb.levels[ro.price] = el
		return
	}
	lvl := el.Value.(*priceLevel)
	lvl.pushBack(ro)
}

// remove detaches ro from its level and deletes the level if it becomes
// empty (spec.md §3: "no empty levels are retained").
func (sb *sideBook) remove(ro *restingOrder) {
	el, ok := sb.levels[ro.price]
	if !ok {
		return
	}
	lvl := el.Value.(*priceLevel)
	lvl.remove(ro)
	if lvl.empty() {
		sb.byPrice.RemoveElement(el)
		delete(sb.levels, ro.price)
	}
}

// best returns the level at the best price for this side, or nil if the
// side is empty.
func (sb *sideBook) best() *priceLevel {
	el := sb.byPrice.Front()
	if el == nil {
		return nil
	}
	return el.Value.(*priceLevel)
}

// bestPrice returns the best price on this side.
func (sb *sideBook) bestPrice() (int64, bool) {
	el := sb.byPrice.Front()
	if el == nil {
		return 0, false
	}
	return el.Key().(int64), true
}

// eraseFront pops the head of the level at price, but only if its id
// matches expectedID (spec.md §4.2's matcher-only helper, kept in lockstep
// with the matching loop's own notion of "who is currently at the head").
func (sb *sideBook) eraseFront(price int64, expectedID uint64) {
	el, ok := sb.levels[price]
	if !ok {
		return
	}
	lvl := el.Value.(*priceLevel)
	if lvl.head == nil || lvl.head.order.OrderID != expectedID {
		return
	}
	head := lvl.head
	lvl.remove(head)
	if lvl.empty() {
		sb.byPrice.RemoveElement(el)
		delete(sb.levels, price)
	}
}

// snapshotL2 returns up to depth levels (all levels if depth <= 0) in
// price-priority order.
func (sb *sideBook) snapshotL2(depth int) []LevelSummary {
	var out []LevelSummary
	el := sb.byPrice.Front()
	for el != nil && (depth <= 0 || len(out) < depth) {
		lvl := el.Value.(*priceLevel)
		out = append(out, LevelSummary{
			Price:      el.Key().(int64),
			TotalQty:   lvl.totalQty,
			OrderCount: lvl.count,
		})
		el = el.Next()
	}
	return out
}
