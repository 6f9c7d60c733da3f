package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/schema"
)

func limit(id uint64, side schema.Side, qty schema.Quantity, price schema.Price) *schema.Order {
	return schema.NewLimitOrder(id, 1, 1, side, qty, price, int64(id))
}

func TestAddAndBest(t *testing.T) {
	b := New(1)
	require.NoError(t, b.Add(limit(1, schema.SideBuy, 10, 100)))
	require.NoError(t, b.Add(limit(2, schema.SideBuy, 5, 102)))
	require.NoError(t, b.Add(limit(3, schema.SideSell, 7, 105)))
	require.NoError(t, b.Add(limit(4, schema.SideSell, 7, 103)))

	bid, ok := b.Best(schema.SideBuy)
	require.True(t, ok)
	assert.Equal(t, schema.Price(102), bid)

	ask, ok := b.Best(schema.SideSell)
	require.True(t, ok)
	assert.Equal(t, schema.Price(103), ask)
}

func TestTimePriorityWithinLevel(t *testing.T) {
	b := New(1)
	require.NoError(t, b.Add(limit(1, schema.SideSell, 1, 100)))
	require.NoError(t, b.Add(limit(2, schema.SideSell, 1, 100)))
	require.NoError(t, b.Add(limit(3, schema.SideSell, 1, 100)))

	level := b.OrdersAt(schema.SideSell, 100)
	require.Len(t, level, 3)
	for i, order := range level {
		assert.Equal(t, uint64(i+1), order.ID, "arrival order must be preserved")
	}
}

func TestRemoveDeletesEmptyLevel(t *testing.T) {
	b := New(1)
	require.NoError(t, b.Add(limit(1, schema.SideBuy, 10, 100)))
	require.NoError(t, b.Add(limit(2, schema.SideBuy, 10, 100)))

	_, ok := b.Remove(1)
	require.True(t, ok)
	assert.Len(t, b.OrdersAt(schema.SideBuy, 100), 1)
	assert.Equal(t, 1, b.Len(schema.SideBuy))

	_, ok = b.Remove(2)
	require.True(t, ok)
	assert.Nil(t, b.OrdersAt(schema.SideBuy, 100))
	assert.Empty(t, b.Prices(schema.SideBuy))

	_, ok = b.Remove(2)
	assert.False(t, ok, "removing twice must fail")
}

func TestDepthAggregation(t *testing.T) {
	b := New(1)
	require.NoError(t, b.Add(limit(1, schema.SideBuy, 10, 100)))
	require.NoError(t, b.Add(limit(2, schema.SideBuy, 5, 100)))
	require.NoError(t, b.Add(limit(3, schema.SideBuy, 2, 99)))
	require.NoError(t, b.Add(limit(4, schema.SideBuy, 1, 98)))

	depth := b.Depth(schema.SideBuy, 2)
	require.Len(t, depth, 2)
	assert.Equal(t, schema.DepthLevel{Price: 100, Qty: 15}, depth[0])
	assert.Equal(t, schema.DepthLevel{Price: 99, Qty: 2}, depth[1])

	full := b.Depth(schema.SideBuy, 0)
	assert.Len(t, full, 3)
}

func TestRejectsPricelessAndDuplicate(t *testing.T) {
	b := New(1)
	market := schema.NewMarketOrder(9, 1, 1, schema.SideBuy, 5, 0)
	assert.ErrorIs(t, b.Add(market), ErrNoPrice)

	o := limit(1, schema.SideBuy, 10, 100)
	require.NoError(t, b.Add(o))
	assert.ErrorIs(t, b.Add(o), ErrOrderExists)

	other := limit(2, schema.SideBuy, 10, 100)
	other.SymbolID = 2
	assert.ErrorIs(t, b.Add(other), ErrWrongSymbol)
}
