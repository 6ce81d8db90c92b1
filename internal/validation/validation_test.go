package validation

import (
	"testing"

	"resortdesk/internal/config"
	"resortdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guests(n int) *models.FlexInt {
	g := models.FlexInt(n)
	return &g
}

func validInput() models.ReservationInput {
	return models.ReservationInput{
		Name:      "Kamal Perera",
		Email:     "kamal@example.com",
		Phone:     "0771234567",
		Guests:    guests(4),
		Date:      "2025-08-10",
		StartTime: "18:00",
		EndTime:   "20:00",
	}
}

func TestContact(t *testing.T) {
	r := DefaultRules()

	tests := []struct {
		name   string
		phone  string
		email  string
		guests int
		want   Errors
	}{
		{name: "valid", phone: "1234567890", email: "a@b.com", guests: 1, want: Errors{}},
		{name: "upper bound", phone: "1234567890", email: "a@b.com", guests: 50, want: Errors{}},
		{name: "short phone", phone: "12345", email: "a@b.com", guests: 1, want: Errors{"phone": "Invalid contact number"}},
		{name: "missing phone", phone: "", email: "a@b.com", guests: 1, want: Errors{"phone": "Contact number is required"}},
		{name: "no tld", phone: "1234567890", email: "a@b", guests: 1, want: Errors{"email": "Invalid email address"}},
		{name: "missing email", phone: "1234567890", email: " ", guests: 1, want: Errors{"email": "Email is required"}},
		{name: "zero guests", phone: "1234567890", email: "a@b.com", guests: 0, want: Errors{"guests": "Number of guests must be between 1 and 50"}},
		{name: "too many guests", phone: "1234567890", email: "a@b.com", guests: 51, want: Errors{"guests": "Number of guests must be between 1 and 50"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Contact("Ann", tt.phone, tt.email, tt.guests))
		})
	}

	errs := r.Contact("  ", "1234567890", "a@b.com", 2)
	assert.Equal(t, "Name is required", errs["name"])
}

func TestNewRules_UsesConfig(t *testing.T) {
	r := NewRules(config.ReservationsConfig{MinGuests: 2, MaxGuests: 20})
	assert.Equal(t, 60, r.SlotMinutes)
	assert.Equal(t, "Number of guests must be between 2 and 20", r.Contact("A", "1234567890", "a@b.com", 21)["guests"])
}

func TestReservation(t *testing.T) {
	r := DefaultRules()
	today, _ := models.ParseDate("2025-01-01")

	t.Run("Valid", func(t *testing.T) {
		res, errs := r.Reservation(validInput(), today)
		require.Empty(t, errs)
		assert.Equal(t, "2025-08-10", res.Date.String())
		assert.Equal(t, 4, res.Guests)
		assert.Equal(t, "18:00", res.StartTime)
		assert.Equal(t, "20:00", res.EndTime)
	})

	t.Run("Defaults", func(t *testing.T) {
		in := validInput()
		in.Guests = nil
		in.Date = ""
		in.EndTime = ""
		res, errs := r.Reservation(in, today)
		require.Empty(t, errs)
		assert.Equal(t, 1, res.Guests)
		assert.Equal(t, "2025-01-01", res.Date.String())
		assert.Equal(t, "19:00", res.EndTime)
	})

	t.Run("LegacyTime", func(t *testing.T) {
		in := validInput()
		in.StartTime, in.EndTime, in.Time = "", "", "9:30"
		res, errs := r.Reservation(in, today)
		require.Empty(t, errs)
		assert.Equal(t, "09:30", res.StartTime)
		assert.Equal(t, "10:30", res.EndTime)
	})

	t.Run("EndOfDay", func(t *testing.T) {
		in := validInput()
		in.StartTime, in.EndTime = "23:00", "24:00"
		_, errs := r.Reservation(in, today)
		assert.Empty(t, errs)

		in.EndTime = ""
		in.StartTime = "23:30"
		_, errs = r.Reservation(in, today)
		assert.Contains(t, errs, "endTime")
	})

	t.Run("BadFields", func(t *testing.T) {
		in := validInput()
		in.Date = "next friday"
		in.StartTime = "20:00"
		in.EndTime = "19:00"
		_, errs := r.Reservation(in, today)
		assert.Equal(t, "Invalid date", errs["date"])
		assert.Equal(t, "End time must be after start time", errs["endTime"])

		in = validInput()
		in.StartTime = ""
		_, errs = r.Reservation(in, today)
		assert.Equal(t, "Start time is required", errs["startTime"])

		in = validInput()
		in.StartTime = "25:00"
		_, errs = r.Reservation(in, today)
		assert.Equal(t, "Invalid start time", errs["startTime"])
	})
}

func TestErrors(t *testing.T) {
	var e Errors
	assert.NoError(t, e.Err())

	e = Errors{"phone": "Invalid contact number", "email": "Invalid email address"}
	err := e.Err()
	require.Error(t, err)
	assert.Equal(t, "validation failed: email: Invalid email address; phone: Invalid contact number", err.Error())
}

func TestCartItem(t *testing.T) {
	price := 12.5
	item, errs := CartItem(models.CartItemInput{ItemID: "a", Name: "Soap", Price: &price})
	require.Empty(t, errs)
	assert.Equal(t, 1, item.Quantity)

	zero := 0
	neg := -1.0
	_, errs = CartItem(models.CartItemInput{Quantity: &zero, Price: &neg})
	assert.Len(t, errs, 4)

	_, errs = CartItem(models.CartItemInput{ItemID: "a", Name: "Soap"})
	assert.Equal(t, "Price is required", errs["price"])
}

func TestEmployee(t *testing.T) {
	assert.Empty(t, Employee(models.EmployeeInput{Name: "N", Email: "n@r.lk", Role: models.RoleEmployee, Password: "longenough"}))
	errs := Employee(models.EmployeeInput{Email: "bad", Role: "chef", Password: "short"})
	assert.Len(t, errs, 4)
}

func TestLeave(t *testing.T) {
	from, to, errs := Leave(models.LeaveInput{FromDate: "2025-02-01", ToDate: "2025-02-03", Reason: "wedding"})
	require.Empty(t, errs)
	assert.Equal(t, "2025-02-01", from.String())
	assert.Equal(t, "2025-02-03", to.String())

	_, _, errs = Leave(models.LeaveInput{FromDate: "2025-02-05", ToDate: "2025-02-03"})
	assert.Contains(t, errs, "toDate")
	assert.Contains(t, errs, "reason")
}
