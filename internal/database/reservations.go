package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"resortdesk/internal/domain"
	"resortdesk/internal/models"

	"github.com/google/uuid"
)

const reservationColumns = `id, reservation_id, name, email, phone, guests, date,
                 start_time, end_time, version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*models.Reservation, error) {
	r := &models.Reservation{}
	err := row.Scan(
		&r.ID, &r.ReservationID, &r.Name, &r.Email, &r.Phone, &r.Guests, &r.Date,
		&r.StartTime, &r.EndTime, &r.Version, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func queryReservations(ctx context.Context, q queryer, query string, args ...any) ([]*models.Reservation, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	reservations := make([]*models.Reservation, 0)
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reservations: %w", err)
	}
	return reservations, nil
}

func getReservation(ctx context.Context, q queryer, id string) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ? OR reservation_id = ? LIMIT 1`
	r, err := scanReservation(q.QueryRowContext(ctx, query, id, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reservation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return r, nil
}

// ListReservations returns every reservation in insertion order.
func (db *DB) ListReservations(ctx context.Context) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations ORDER BY created_at ASC, rowid ASC`
	return queryReservations(ctx, db, query)
}

// GetReservation looks a reservation up by storage id or reservation id.
func (db *DB) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	return getReservation(ctx, db, id)
}

func (db *DB) GetReservationsByDate(ctx context.Context, date models.Date) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE date = ? ORDER BY start_time ASC, rowid ASC`
	return queryReservations(ctx, db, query, date)
}

// CreateReservationWithLock evaluates guard against the same-day bookings and
// inserts r in one transaction.
func (db *DB) CreateReservationWithLock(ctx context.Context, r *models.Reservation, guard domain.SlotGuard) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if guard != nil {
			sameDay, err := queryReservations(ctx, tx,
				`SELECT `+reservationColumns+` FROM reservations WHERE date = ?`, r.Date)
			if err != nil {
				return err
			}
			if err := guard(sameDay); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		if r.ID == "" {
			r.ID = uuid.NewString()
		}

		query := `INSERT INTO reservations (` + reservationColumns + `)
                  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := tx.ExecContext(ctx, query,
			r.ID, r.ReservationID, r.Name, r.Email, r.Phone, r.Guests, r.Date,
			r.StartTime, r.EndTime, 0, now, now,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("reservation %s: %w", r.ReservationID, ErrDuplicate)
			}
			return fmt.Errorf("failed to insert reservation: %w", err)
		}

		r.Version = 0
		r.CreatedAt = now
		r.UpdatedAt = now
		return nil
	})
}

// UpdateReservationWithLock replaces the record identified by id with r.
// When r.Version is positive it must equal the stored version.
func (db *DB) UpdateReservationWithLock(ctx context.Context, id string, r *models.Reservation, guard domain.SlotGuard) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		current, err := getReservation(ctx, tx, id)
		if err != nil {
			return err
		}
		if r.Version > 0 && r.Version != current.Version {
			return fmt.Errorf("reservation %s at version %d, got %d: %w",
				current.ReservationID, current.Version, r.Version, ErrConcurrentModification)
		}

		if guard != nil {
			sameDay, err := queryReservations(ctx, tx,
				`SELECT `+reservationColumns+` FROM reservations WHERE date = ? AND id <> ?`, r.Date, current.ID)
			if err != nil {
				return err
			}
			if err := guard(sameDay); err != nil {
				return err
			}
		}

		if r.ReservationID == "" {
			r.ReservationID = current.ReservationID
		}

		now := time.Now().UTC()
		query := `UPDATE reservations
                  SET reservation_id = ?, name = ?, email = ?, phone = ?, guests = ?, date = ?,
                      start_time = ?, end_time = ?, version = version + 1, updated_at = ?
                  WHERE id = ? AND version = ?`
		result, err := tx.ExecContext(ctx, query,
			r.ReservationID, r.Name, r.Email, r.Phone, r.Guests, r.Date,
			r.StartTime, r.EndTime, now, current.ID, current.Version,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("reservation %s: %w", r.ReservationID, ErrDuplicate)
			}
			return fmt.Errorf("failed to update reservation: %w", err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return ErrConcurrentModification
		}

		r.ID = current.ID
		r.Version = current.Version + 1
		r.CreatedAt = current.CreatedAt
		r.UpdatedAt = now
		return nil
	})
}

func (db *DB) DeleteReservation(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ? OR reservation_id = ?`, id, id)
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("reservation %s: %w", id, ErrNotFound)
	}
	return nil
}

func (db *DB) CountReservations(ctx context.Context) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return count, nil
}
