// Package validation holds the field checks shared by the server handlers
// and the staff edit form. Errors are keyed by JSON field name.
package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"resortdesk/internal/config"
	"resortdesk/internal/models"
)

var (
	phonePattern = regexp.MustCompile(`^\d{10}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Errors maps a field name to a human readable message.
type Errors map[string]string

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Err returns nil for an empty set so callers can write `if err := v.Err()`.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

type Rules struct {
	MinGuests   int
	MaxGuests   int
	SlotMinutes int
}

func NewRules(cfg config.ReservationsConfig) Rules {
	cfg.ApplyDefaults()
	return Rules{MinGuests: cfg.MinGuests, MaxGuests: cfg.MaxGuests, SlotMinutes: cfg.SlotMinutes}
}

func DefaultRules() Rules {
	return NewRules(config.ReservationsConfig{})
}

func (r Rules) GuestsMessage() string {
	return fmt.Sprintf("Number of guests must be between %d and %d", r.MinGuests, r.MaxGuests)
}

// Contact checks the fields the edit form validates before an availability
// check.
func (r Rules) Contact(name, phone, email string, guests int) Errors {
	errs := Errors{}

	if strings.TrimSpace(name) == "" {
		errs["name"] = "Name is required"
	}

	phone = strings.TrimSpace(phone)
	switch {
	case phone == "":
		errs["phone"] = "Contact number is required"
	case !phonePattern.MatchString(phone):
		errs["phone"] = "Invalid contact number"
	}

	email = strings.TrimSpace(email)
	switch {
	case email == "":
		errs["email"] = "Email is required"
	case !emailPattern.MatchString(email):
		errs["email"] = "Invalid email address"
	}

	if guests < r.MinGuests || guests > r.MaxGuests {
		errs["guests"] = r.GuestsMessage()
	}

	return errs
}

// Reservation normalizes an input into a record and validates it. Missing
// guests default to 1 and a missing date to today. The legacy single `time`
// field fills startTime, and a missing endTime is one slot after the start.
func (r Rules) Reservation(in models.ReservationInput, today models.Date) (models.Reservation, Errors) {
	res := models.Reservation{
		ReservationID: strings.TrimSpace(in.ReservationID),
		Name:          strings.TrimSpace(in.Name),
		Email:         strings.TrimSpace(in.Email),
		Phone:         strings.TrimSpace(in.Phone),
		Guests:        1,
		Date:          today,
		Version:       in.Version,
	}
	if in.Guests != nil {
		res.Guests = int(*in.Guests)
	}

	errs := r.Contact(res.Name, res.Phone, res.Email, res.Guests)

	if strings.TrimSpace(in.Date) != "" {
		d, err := models.ParseDate(in.Date)
		if err != nil {
			errs["date"] = "Invalid date"
		} else {
			res.Date = d
		}
	}

	start := strings.TrimSpace(in.StartTime)
	if start == "" {
		start = strings.TrimSpace(in.Time)
	}
	if start == "" {
		errs["startTime"] = "Start time is required"
		return res, errs
	}
	startMin, err := models.ParseClock(start)
	if err != nil {
		errs["startTime"] = "Invalid start time"
		return res, errs
	}
	res.StartTime = models.FormatClock(startMin)

	end := strings.TrimSpace(in.EndTime)
	var endMin int
	if end == "" {
		endMin = startMin + r.SlotMinutes
		if endMin > 24*60 {
			errs["endTime"] = "Reservation must end by 24:00"
			return res, errs
		}
	} else {
		endMin, err = models.ParseClock(end)
		if err != nil {
			errs["endTime"] = "Invalid end time"
			return res, errs
		}
	}
	res.EndTime = models.FormatClock(endMin)

	if endMin <= startMin {
		errs["endTime"] = "End time must be after start time"
	}

	return res, errs
}

// CartItem validates an add-to-cart request. Quantity defaults to 1.
func CartItem(in models.CartItemInput) (models.CartItem, Errors) {
	item := models.CartItem{
		ItemID:   strings.TrimSpace(in.ItemID),
		Name:     strings.TrimSpace(in.Name),
		Quantity: 1,
	}
	errs := Errors{}

	if item.ItemID == "" {
		errs["itemId"] = "Item ID is required"
	}
	if item.Name == "" {
		errs["name"] = "Name is required"
	}
	if in.Quantity != nil {
		item.Quantity = *in.Quantity
	}
	if item.Quantity < 1 {
		errs["quantity"] = "Quantity must be at least 1"
	}
	switch {
	case in.Price == nil:
		errs["price"] = "Price is required"
	case *in.Price < 0:
		errs["price"] = "Price cannot be negative"
	default:
		item.Price = *in.Price
	}

	return item, errs
}

// Employee validates a new staff account.
func Employee(in models.EmployeeInput) Errors {
	errs := Errors{}
	if strings.TrimSpace(in.Name) == "" {
		errs["name"] = "Name is required"
	}
	email := strings.TrimSpace(in.Email)
	switch {
	case email == "":
		errs["email"] = "Email is required"
	case !emailPattern.MatchString(email):
		errs["email"] = "Invalid email address"
	}
	if !models.ValidRole(in.Role) {
		errs["role"] = "Unknown role"
	}
	if len(in.Password) < 8 {
		errs["password"] = "Password must be at least 8 characters"
	}
	return errs
}

// Leave parses and validates a leave application.
func Leave(in models.LeaveInput) (from, to models.Date, errs Errors) {
	errs = Errors{}
	var err error
	if from, err = models.ParseDate(in.FromDate); err != nil {
		errs["fromDate"] = "Invalid start date"
	}
	if to, err = models.ParseDate(in.ToDate); err != nil {
		errs["toDate"] = "Invalid end date"
	}
	if len(errs) == 0 && to.Before(from.Time) {
		errs["toDate"] = "End date must not be before start date"
	}
	if strings.TrimSpace(in.Reason) == "" {
		errs["reason"] = "Reason is required"
	}
	return from, to, errs
}
