package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"resortdesk/internal/models"
)

const cartColumns = `item_id, name, quantity, price, created_at, updated_at`

func scanCartItem(row rowScanner) (*models.CartItem, error) {
	item := &models.CartItem{}
	if err := row.Scan(&item.ItemID, &item.Name, &item.Quantity, &item.Price, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	return item, nil
}

func (db *DB) ListCartItems(ctx context.Context) ([]*models.CartItem, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+cartColumns+` FROM cart_items ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()

	items := make([]*models.CartItem, 0)
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (db *DB) GetCartItem(ctx context.Context, itemID string) (*models.CartItem, error) {
	item, err := scanCartItem(db.QueryRowContext(ctx, `SELECT `+cartColumns+` FROM cart_items WHERE item_id = ?`, itemID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("cart item %s: %w", itemID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}
	return item, nil
}

func (db *DB) AddCartItem(ctx context.Context, item *models.CartItem) error {
	now := time.Now().UTC()
	_, err := db.ExecContext(ctx,
		`INSERT INTO cart_items (`+cartColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		item.ItemID, item.Name, item.Quantity, item.Price, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("cart item %s: %w", item.ItemID, ErrDuplicate)
		}
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

func (db *DB) UpdateCartQuantity(ctx context.Context, itemID string, quantity int) (*models.CartItem, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = ?, updated_at = ? WHERE item_id = ?`,
		quantity, time.Now().UTC(), itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, fmt.Errorf("cart item %s: %w", itemID, ErrNotFound)
	}
	return db.GetCartItem(ctx, itemID)
}

func (db *DB) DeleteCartItem(ctx context.Context, itemID string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM cart_items WHERE item_id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("cart item %s: %w", itemID, ErrNotFound)
	}
	return nil
}

// ClearCart removes every item and reports how many were dropped.
func (db *DB) ClearCart(ctx context.Context) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM cart_items`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}
	return result.RowsAffected()
}
