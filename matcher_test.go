package obcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectEvents(book *Book, order Order) []Event {
	var events []Event
	Match(book, order, func(ev Event) { events = append(events, ev) })
	return events
}

func TestMatch_LimitWithNonPositivePrice_Rejected(t *testing.T) {
	b := NewBook(1)
	events := collectEvents(b, Order{OrderID: 1, Side: Buy, Type: Limit, Price: 0, Quantity: 5})

	require.Len(t, events, 1)
	assert.Equal(t, EventReject, events[0].Type)
	assert.Equal(t, 0, b.OrderCount())
}

func TestMatch_NonPositiveQuantity_Rejected(t *testing.T) {
	b := NewBook(1)
	events := collectEvents(b, Order{OrderID: 1, Side: Buy, Type: Limit, Price: 100, Quantity: 0})

	require.Len(t, events, 1)
	assert.Equal(t, EventReject, events[0].Type)
	assert.Equal(t, 0, b.OrderCount())
}

func TestMatch_AckAlwaysEmittedFirst(t *testing.T) {
	b := NewBook(1)
	events := collectEvents(b, Order{OrderID: 1, Side: Buy, Type: Limit, Price: 100, Quantity: 10})
	require.NotEmpty(t, events)
	assert.Equal(t, EventAck, events[0].Type)
}

func TestMatch_TwoCrossingLimits_ProduceOneTrade(t *testing.T) {
	b := NewBook(1)
	require.NoError(t, b.AddOrder(Order{OrderID: 1, Side: Sell, Type: Limit, Price: 100, Quantity: 10}))

	events := collectEvents(b, Order{OrderID: 2, Side: Buy, Type: Limit, Price: 100, Quantity: 10})

	require.Len(t, events, 2)
	assert.Equal(t, EventAck, events[0].Type)
	assert.Equal(t, EventTrade, events[1].Type)
	trade := events[1].Trade
	assert.Equal(t, uint64(1), trade.MakerID)
	assert.Equal(t, uint64(2), trade.TakerID)
	assert.Equal(t, int64(100), trade.Price)
	assert.Equal(t, int64(10), trade.Quantity)
	assert.Equal(t, 0, b.OrderCount())
}

func TestMatch_TradePriceIsAlwaysMakerPrice(t *testing.T) {
	b := NewBook(1)
	require.NoError(t, b.AddOrder(Order{OrderID: 1, Side: Sell, Type: Limit, Price: 95, Quantity: 10}))

	events := collectEvents(b, Order{OrderID: 2, Side: Buy, Type: Limit, Price: 100, Quantity: 10})

	require.Len(t, events, 2)
	assert.Equal(t, int64(95), events[1].Trade.Price)
}

func TestMatch_MarketSweep_AcrossMultipleLevels(t *testing.T) {
	b := NewBook(1)
	require.NoError(t, b.AddOrder(Order{OrderID: 1, Side: Sell, Type: Limit, Price: 100, Quantity: 5}))
	require.NoError(t, b.AddOrder(Order{OrderID: 2, Side: Sell, Type: Limit, Price: 101, Quantity: 5}))

	events := collectEvents(b, Order{OrderID: 3, Side: Buy, Type: Market, Quantity: 10})

	require.Len(t, events, 3)
	assert.Equal(t, int64(100), events[1].Trade.Price)
	assert.Equal(t, int64(101), events[2].Trade.Price)
	assert.Equal(t, 0, b.OrderCount())
}

func TestMatch_MarketOrder_ResidualDroppedWhenLiquidityExhausted(t *testing.T) {
	b := NewBook(1)
	require.NoError(t, b.AddOrder(Order{OrderID: 1, Side: Sell, Type: Limit, Price: 100, Quantity: 3}))

	events := collectEvents(b, Order{OrderID: 2, Side: Buy, Type: Market, Quantity: 10})

	require.Len(t, events, 2)
	assert.Equal(t, EventTrade, events[1].Type)
	assert.Equal(t, int64(3), events[1].Trade.Quantity)
	assert.Equal(t, 0, b.OrderCount()) // residual 7 lots discarded, nothing rests
}

func TestMatch_MarketOrder_EmptyContra_OnlyAck(t *testing.T) {
	b := NewBook(1)
	events := collectEvents(b, Order{OrderID: 1, Side: Buy, Type: Market, Quantity: 10})
	require.Len(t, events, 1)
	assert.Equal(t, EventAck, events[0].Type)
}

func TestMatch_LimitOrder_RestsResidualWhenNotFullyFilled(t *testing.T) {
	b := NewBook(1)
	require.NoError(t, b.AddOrder(Order{OrderID: 1, Side: Sell, Type: Limit, Price: 100, Quantity: 3}))

	events := collectEvents(b, Order{OrderID: 2, Side: Buy, Type: Limit, Price: 100, Quantity: 10})

	require.Len(t, events, 2)
	assert.Equal(t, int64(3), events[1].Trade.Quantity)
	assert.Equal(t, 1, b.OrderCount())
	bid, ok := b.BestBid()
	require.True(t, ok)
	assert.Equal(t, int64(100), bid)
}

func TestMatch_NonCrossingLimit_RestsWithoutTrading(t *testing.T) {
	b := NewBook(1)
	require.NoError(t, b.AddOrder(Order{OrderID: 1, Side: Sell, Type: Limit, Price: 110, Quantity: 5}))

	events := collectEvents(b, Order{OrderID: 2, Side: Buy, Type: Limit, Price: 100, Quantity: 5})
	require.Len(t, events, 1)
	assert.Equal(t, EventAck, events[0].Type)
	assert.Equal(t, 2, b.OrderCount())
}

func TestMatch_FIFO_WithinPriceLevel(t *testing.T) {
	b := NewBook(1)
	require.NoError(t, b.AddOrder(Order{OrderID: 1, Side: Sell, Type: Limit, Price: 100, Quantity: 5}))
	require.NoError(t, b.AddOrder(Order{OrderID: 2, Side: Sell, Type: Limit, Price: 100, Quantity: 5}))

	events := collectEvents(b, Order{OrderID: 3, Side: Buy, Type: Limit, Price: 100, Quantity: 5})

	require.Len(t, events, 2)
	assert.Equal(t, uint64(1), events[1].Trade.MakerID)
	assert.Equal(t, 1, b.OrderCount())

	lvl := b.asks.best()
	require.NotNil(t, lvl)
	assert.Equal(t, uint64(2), lvl.head.order.OrderID)
}
