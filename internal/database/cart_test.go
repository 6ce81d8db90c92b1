package database

import (
	"context"
	"testing"

	"resortdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCartItem(id string, qty int) *models.CartItem {
	return &models.CartItem{ItemID: id, Name: "Item " + id, Quantity: qty, Price: 2.5}
}

func TestCart(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.AddCartItem(ctx, newCartItem("a", 1)))
	require.NoError(t, db.AddCartItem(ctx, newCartItem("b", 3)))

	err := db.AddCartItem(ctx, newCartItem("a", 5))
	assert.ErrorIs(t, err, ErrDuplicate)

	items, err := db.ListCartItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ItemID)

	updated, err := db.UpdateCartQuantity(ctx, "a", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	_, err = db.UpdateCartQuantity(ctx, "zzz", 1)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.DeleteCartItem(ctx, "b"))
	assert.ErrorIs(t, db.DeleteCartItem(ctx, "b"), ErrNotFound)

	_, err = db.GetCartItem(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)

	removed, err := db.ClearCart(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	items, err = db.ListCartItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}
