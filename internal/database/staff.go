package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"resortdesk/internal/models"

	"github.com/google/uuid"
)

func (db *DB) CountEmployees(ctx context.Context) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}
	return count, nil
}

func (db *DB) CreateEmployee(ctx context.Context, e *models.Employee) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Email = strings.ToLower(strings.TrimSpace(e.Email))
	e.CreatedAt = time.Now().UTC()

	_, err := db.ExecContext(ctx,
		`INSERT INTO employees (id, name, email, role, password_hash, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Email, e.Role, e.PasswordHash, e.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("employee %s: %w", e.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create employee: %w", err)
	}
	return nil
}

func (db *DB) getEmployee(ctx context.Context, where string, arg any) (*models.Employee, error) {
	e := &models.Employee{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, email, role, password_hash, created_at FROM employees WHERE `+where, arg,
	).Scan(&e.ID, &e.Name, &e.Email, &e.Role, &e.PasswordHash, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("employee: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

func (db *DB) GetEmployeeByID(ctx context.Context, id string) (*models.Employee, error) {
	return db.getEmployee(ctx, "id = ?", id)
}

func (db *DB) GetEmployeeByEmail(ctx context.Context, email string) (*models.Employee, error) {
	return db.getEmployee(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (db *DB) CountAttendance(ctx context.Context, date models.Date) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance WHERE date = ?`, date).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count attendance: %w", err)
	}
	return count, nil
}

func (db *DB) GetAttendance(ctx context.Context, employeeID string, date models.Date) (*models.Attendance, error) {
	a := &models.Attendance{}
	var checkOut sql.NullTime
	err := db.QueryRowContext(ctx,
		`SELECT id, employee_id, date, check_in, check_out FROM attendance WHERE employee_id = ? AND date = ?`,
		employeeID, date,
	).Scan(&a.ID, &a.EmployeeID, &a.Date, &a.CheckIn, &checkOut)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("attendance: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	if checkOut.Valid {
		t := checkOut.Time
		a.CheckOut = &t
	}
	return a, nil
}

func (db *DB) CreateAttendance(ctx context.Context, a *models.Attendance) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO attendance (id, employee_id, date, check_in) VALUES (?, ?, ?, ?)`,
		a.ID, a.EmployeeID, a.Date, a.CheckIn,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("attendance for %s on %s: %w", a.EmployeeID, a.Date, ErrDuplicate)
		}
		return fmt.Errorf("failed to create attendance: %w", err)
	}
	return nil
}

func (db *DB) SetCheckOut(ctx context.Context, id string, at time.Time) error {
	result, err := db.ExecContext(ctx, `UPDATE attendance SET check_out = ? WHERE id = ?`, at, id)
	if err != nil {
		return fmt.Errorf("failed to set check-out: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("attendance %s: %w", id, ErrNotFound)
	}
	return nil
}

const leaveColumns = `id, employee_id, from_date, to_date, reason, status, created_at, updated_at`

func scanLeave(row rowScanner) (*models.LeaveRequest, error) {
	l := &models.LeaveRequest{}
	err := row.Scan(&l.ID, &l.EmployeeID, &l.FromDate, &l.ToDate, &l.Reason, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (db *DB) CreateLeave(ctx context.Context, l *models.LeaveRequest) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Status == "" {
		l.Status = models.LeavePending
	}
	now := time.Now().UTC()
	_, err := db.ExecContext(ctx,
		`INSERT INTO leaves (`+leaveColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.EmployeeID, l.FromDate, l.ToDate, l.Reason, l.Status, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create leave request: %w", err)
	}
	l.CreatedAt = now
	l.UpdatedAt = now
	return nil
}

// ListLeaves returns the leave requests of one employee, or of everyone when
// employeeID is empty, newest first.
func (db *DB) ListLeaves(ctx context.Context, employeeID string) ([]*models.LeaveRequest, error) {
	query := `SELECT ` + leaveColumns + ` FROM leaves`
	var args []any
	if employeeID != "" {
		query += ` WHERE employee_id = ?`
		args = append(args, employeeID)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaves: %w", err)
	}
	defer rows.Close()

	leaves := make([]*models.LeaveRequest, 0)
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave: %w", err)
		}
		leaves = append(leaves, l)
	}
	return leaves, rows.Err()
}

func (db *DB) UpdateLeaveStatus(ctx context.Context, id, status string) (*models.LeaveRequest, error) {
	result, err := db.ExecContext(ctx, `UPDATE leaves SET status = ?, updated_at = ? WHERE id = ?`, status, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update leave: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, fmt.Errorf("leave %s: %w", id, ErrNotFound)
	}

	l, err := scanLeave(db.QueryRowContext(ctx, `SELECT `+leaveColumns+` FROM leaves WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to reload leave: %w", err)
	}
	return l, nil
}
