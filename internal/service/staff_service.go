package service

import (
	"context"
	"errors"
	"time"

	"resortdesk/internal/database"
	"resortdesk/internal/domain"
	"resortdesk/internal/events"
	"resortdesk/internal/models"
	"resortdesk/internal/validation"

	"github.com/rs/zerolog"
)

type StaffService struct {
	repo     domain.StaffRepository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewStaffService(repo domain.StaffRepository, eventBus domain.EventPublisher, logger *zerolog.Logger) *StaffService {
	return &StaffService{repo: repo, eventBus: eventBus, logger: logger, now: time.Now}
}

func (s *StaffService) EmployeeCount(ctx context.Context) (int, error) {
	return s.repo.CountEmployees(ctx)
}

// AttendanceCount counts employees that checked in on date, today when date
// is zero.
func (s *StaffService) AttendanceCount(ctx context.Context, date models.Date) (int, error) {
	if date.IsZero() {
		date = models.NewDate(s.now().UTC())
	}
	return s.repo.CountAttendance(ctx, date)
}

func (s *StaffService) CreateEmployee(ctx context.Context, in models.EmployeeInput) (*models.Employee, error) {
	if err := validation.Employee(in).Err(); err != nil {
		return nil, err
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	e := &models.Employee{Name: in.Name, Email: in.Email, Role: in.Role, PasswordHash: hash}
	if err := s.repo.CreateEmployee(ctx, e); err != nil {
		return nil, err
	}
	s.logger.Info().Str("employee_id", e.ID).Str("role", e.Role).Msg("Employee created")
	return e, nil
}

// MarkAttendance checks the employee in on the first call of the day and out
// on the second.
func (s *StaffService) MarkAttendance(ctx context.Context, employeeID string) (*models.Attendance, error) {
	now := s.now().UTC()
	today := models.NewDate(now)

	current, err := s.repo.GetAttendance(ctx, employeeID, today)
	switch {
	case errors.Is(err, database.ErrNotFound):
		a := &models.Attendance{EmployeeID: employeeID, Date: today, CheckIn: now}
		if err := s.repo.CreateAttendance(ctx, a); err != nil {
			return nil, err
		}
		return a, nil
	case err != nil:
		return nil, err
	case current.CheckOut != nil:
		return nil, ErrAlreadyCheckedOut
	}

	if err := s.repo.SetCheckOut(ctx, current.ID, now); err != nil {
		return nil, err
	}
	current.CheckOut = &now
	return current, nil
}

func (s *StaffService) ApplyLeave(ctx context.Context, employeeID string, in models.LeaveInput) (*models.LeaveRequest, error) {
	from, to, errs := validation.Leave(in)
	if err := errs.Err(); err != nil {
		return nil, err
	}
	l := &models.LeaveRequest{EmployeeID: employeeID, FromDate: from, ToDate: to, Reason: in.Reason}
	if err := s.repo.CreateLeave(ctx, l); err != nil {
		return nil, err
	}
	s.publish(events.EventLeaveRequested, events.LeaveEventPayload{LeaveID: l.ID, EmployeeID: employeeID, Status: l.Status})
	return l, nil
}

// Leaves returns every request for managers and only their own for others.
func (s *StaffService) Leaves(ctx context.Context, sess *models.Session) ([]*models.LeaveRequest, error) {
	if sess.IsManager() {
		return s.repo.ListLeaves(ctx, "")
	}
	return s.repo.ListLeaves(ctx, sess.UserID)
}

func (s *StaffService) DecideLeave(ctx context.Context, id, status string, sess *models.Session) (*models.LeaveRequest, error) {
	if !sess.IsManager() {
		return nil, ErrForbidden
	}
	if status != models.LeaveApproved && status != models.LeaveRejected {
		return nil, validation.Errors{"status": "Status must be approved or rejected"}
	}
	l, err := s.repo.UpdateLeaveStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.publish(events.EventLeaveDecided, events.LeaveEventPayload{
		LeaveID: l.ID, EmployeeID: l.EmployeeID, Status: status, DecidedBy: sess.UserID,
	})
	return l, nil
}

func (s *StaffService) publish(eventType string, payload events.LeaveEventPayload) {
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("Failed to publish event")
	}
}
