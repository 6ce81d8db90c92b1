package domain

import (
	"context"
	"time"

	"resortdesk/internal/models"
)

// SlotGuard inspects the reservations already booked on the candidate's date
// and rejects the write by returning an error. Repositories call it inside
// the write transaction.
type SlotGuard func(sameDay []*models.Reservation) error

type ReservationRepository interface {
	ListReservations(ctx context.Context) ([]*models.Reservation, error)
	GetReservation(ctx context.Context, id string) (*models.Reservation, error)
	GetReservationsByDate(ctx context.Context, date models.Date) ([]*models.Reservation, error)
	CreateReservationWithLock(ctx context.Context, r *models.Reservation, guard SlotGuard) error
	UpdateReservationWithLock(ctx context.Context, id string, r *models.Reservation, guard SlotGuard) error
	DeleteReservation(ctx context.Context, id string) error
	CountReservations(ctx context.Context) (int, error)
}

type CartRepository interface {
	ListCartItems(ctx context.Context) ([]*models.CartItem, error)
	GetCartItem(ctx context.Context, itemID string) (*models.CartItem, error)
	AddCartItem(ctx context.Context, item *models.CartItem) error
	UpdateCartQuantity(ctx context.Context, itemID string, quantity int) (*models.CartItem, error)
	DeleteCartItem(ctx context.Context, itemID string) error
	ClearCart(ctx context.Context) (int64, error)
}

type StaffRepository interface {
	CountEmployees(ctx context.Context) (int, error)
	CreateEmployee(ctx context.Context, e *models.Employee) error
	GetEmployeeByID(ctx context.Context, id string) (*models.Employee, error)
	GetEmployeeByEmail(ctx context.Context, email string) (*models.Employee, error)
	CountAttendance(ctx context.Context, date models.Date) (int, error)
	GetAttendance(ctx context.Context, employeeID string, date models.Date) (*models.Attendance, error)
	CreateAttendance(ctx context.Context, a *models.Attendance) error
	SetCheckOut(ctx context.Context, id string, at time.Time) error
	CreateLeave(ctx context.Context, l *models.LeaveRequest) error
	ListLeaves(ctx context.Context, employeeID string) ([]*models.LeaveRequest, error)
	UpdateLeaveStatus(ctx context.Context, id, status string) (*models.LeaveRequest, error)
}

type SessionStore interface {
	GetState(ctx context.Context, userID string) (*models.SessionState, error)
	SetState(ctx context.Context, state *models.SessionState) error
	ClearState(ctx context.Context, userID string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
