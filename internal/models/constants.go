package models

// Роли сотрудников
const (
	RoleAdmin              = "admin"
	RoleEmployeeManager    = "employee_manager"
	RoleReservationManager = "reservation_manager"
	RoleEmployee           = "employee"
)

// Права доступа к API
const (
	PermReadReservations  = "read:reservations"
	PermWriteReservations = "write:reservations"
	PermReadDashboard     = "read:dashboard"
	PermWriteStaff        = "write:staff"
	PermReadCart          = "read:cart"
	PermWriteCart         = "write:cart"
	PermApplyLeave        = "apply:leave"
)

// Статусы заявок на отпуск
const (
	LeavePending  = "pending"
	LeaveApproved = "approved"
	LeaveRejected = "rejected"
)

const (
	// ReservationIDPrefix префикс генерируемых номеров брони
	ReservationIDPrefix = "RES-"

	// ReportFileName имя файла отчета без расширения
	ReportFileName = "events_report"

	// DefaultReportTitle заголовок отчета по умолчанию
	DefaultReportTitle = "Event Reservations Report"
)

var rolePermissions = map[string][]string{
	RoleAdmin: {
		PermReadReservations, PermWriteReservations, PermReadDashboard,
		PermWriteStaff, PermReadCart, PermWriteCart, PermApplyLeave,
	},
	RoleEmployeeManager: {
		PermReadDashboard, PermWriteStaff, PermReadCart, PermApplyLeave,
	},
	RoleReservationManager: {
		PermReadReservations, PermWriteReservations, PermReadDashboard,
		PermReadCart, PermApplyLeave,
	},
	RoleEmployee: {
		PermReadCart, PermWriteCart, PermApplyLeave,
	},
}

// PermissionsFor returns a copy of the permission set granted to role.
func PermissionsFor(role string) []string {
	perms := rolePermissions[role]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

func ValidRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}

func ValidLeaveStatus(status string) bool {
	switch status {
	case LeavePending, LeaveApproved, LeaveRejected:
		return true
	}
	return false
}
