package service

import (
	"context"
	"testing"

	"resortdesk/internal/database"
	"resortdesk/internal/models"
	"resortdesk/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaffService_Employees(t *testing.T) {
	s := NewStaffService(setupDB(t), newRecorder().bus, testLogger())
	ctx := context.Background()

	e, err := s.CreateEmployee(ctx, models.EmployeeInput{Name: "Nimal", Email: "nimal@resort.lk", Role: models.RoleEmployee, Password: "password1"})
	require.NoError(t, err)
	assert.NotEqual(t, "password1", e.PasswordHash)

	_, err = s.CreateEmployee(ctx, models.EmployeeInput{Name: "Nimal", Email: "nimal@resort.lk", Role: models.RoleEmployee, Password: "password1"})
	assert.ErrorIs(t, err, database.ErrDuplicate)

	_, err = s.CreateEmployee(ctx, models.EmployeeInput{Name: "X", Email: "x@resort.lk", Role: "chef", Password: "password1"})
	var verrs validation.Errors
	assert.ErrorAs(t, err, &verrs)

	count, err := s.EmployeeCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStaffService_Attendance(t *testing.T) {
	s := NewStaffService(setupDB(t), newRecorder().bus, testLogger())
	s.now = fixedNow("2025-06-01")
	ctx := context.Background()

	in, err := s.MarkAttendance(ctx, "emp-1")
	require.NoError(t, err)
	assert.Nil(t, in.CheckOut)

	out, err := s.MarkAttendance(ctx, "emp-1")
	require.NoError(t, err)
	assert.NotNil(t, out.CheckOut)

	_, err = s.MarkAttendance(ctx, "emp-1")
	assert.ErrorIs(t, err, ErrAlreadyCheckedOut)

	_, err = s.MarkAttendance(ctx, "emp-2")
	require.NoError(t, err)

	count, err := s.AttendanceCount(ctx, models.Date{})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	other, _ := models.ParseDate("2025-05-31")
	count, err = s.AttendanceCount(ctx, other)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStaffService_Leaves(t *testing.T) {
	s := NewStaffService(setupDB(t), newRecorder().bus, testLogger())
	ctx := context.Background()

	employee := &models.Session{UserID: "emp-1", Role: models.RoleEmployee, Permissions: models.PermissionsFor(models.RoleEmployee)}
	other := &models.Session{UserID: "emp-2", Role: models.RoleEmployee, Permissions: models.PermissionsFor(models.RoleEmployee)}
	manager := &models.Session{UserID: "mgr", Role: models.RoleEmployeeManager, Permissions: models.PermissionsFor(models.RoleEmployeeManager)}

	l, err := s.ApplyLeave(ctx, employee.UserID, models.LeaveInput{FromDate: "2025-07-01", ToDate: "2025-07-03", Reason: "Family"})
	require.NoError(t, err)
	assert.Equal(t, models.LeavePending, l.Status)
	_, err = s.ApplyLeave(ctx, other.UserID, models.LeaveInput{FromDate: "2025-07-01", ToDate: "2025-07-01", Reason: "Doctor"})
	require.NoError(t, err)

	_, err = s.ApplyLeave(ctx, employee.UserID, models.LeaveInput{FromDate: "bad"})
	var verrs validation.Errors
	assert.ErrorAs(t, err, &verrs)

	own, err := s.Leaves(ctx, employee)
	require.NoError(t, err)
	assert.Len(t, own, 1)

	all, err := s.Leaves(ctx, manager)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = s.DecideLeave(ctx, l.ID, models.LeaveApproved, employee)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.DecideLeave(ctx, l.ID, "maybe", manager)
	assert.ErrorAs(t, err, &verrs)

	decided, err := s.DecideLeave(ctx, l.ID, models.LeaveApproved, manager)
	require.NoError(t, err)
	assert.Equal(t, models.LeaveApproved, decided.Status)
}
