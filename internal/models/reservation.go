package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Reservation is an event booking. JSON names match the records the staff
// frontend already consumes.
type Reservation struct {
	ID            string    `json:"_id"`
	ReservationID string    `json:"reservationId"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Guests        int       `json:"guests"`
	Date          Date      `json:"date"`
	StartTime     string    `json:"startTime"`
	EndTime       string    `json:"endTime"`
	Version       int64     `json:"__v"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Window returns the booked time range. Stored reservations are validated on
// write, so an error here means the row was edited outside the service.
func (r *Reservation) Window() (Window, error) {
	start, err := ParseClock(r.StartTime)
	if err != nil {
		return Window{}, err
	}
	end, err := ParseClock(r.EndTime)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: start, End: end}, nil
}

// Matches reports whether id refers to this reservation by either the
// storage id or the human-facing reservation id.
func (r *Reservation) Matches(id string) bool {
	id = strings.TrimSpace(id)
	return id != "" && (r.ID == id || r.ReservationID == id)
}

// ReservationInput is the loosely typed body accepted by create, update and
// availability checks. Date and guests stay raw so bad values come back as
// field errors instead of decode failures.
type ReservationInput struct {
	ReservationID string   `json:"reservationId,omitempty"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone"`
	Guests        *FlexInt `json:"guests,omitempty"`
	Date          string   `json:"date,omitempty"`
	StartTime     string   `json:"startTime,omitempty"`
	EndTime       string   `json:"endTime,omitempty"`
	// Time is the single slot start sent by the legacy edit form.
	Time    string `json:"time,omitempty"`
	Version int64  `json:"__v,omitempty"`

	ExcludeReservationID *string `json:"excludeReservationId,omitempty"`
}

// InputFrom seeds an input from an existing record, as the edit form does.
func InputFrom(r Reservation) ReservationInput {
	g := FlexInt(r.Guests)
	return ReservationInput{
		ReservationID: r.ReservationID,
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		Guests:        &g,
		Date:          r.Date.String(),
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		Version:       r.Version,
	}
}

type AvailabilityResult struct {
	Available bool `json:"available"`
	Conflicts int  `json:"conflicts"`
}

// FlexInt decodes both 3 and "3"; the booking form posts guests as a string
// until the field is touched. Anything that is not a number decodes to
// FlexIntInvalid so validation reports it against the field.
type FlexInt int

// FlexIntInvalid is below every guest bound.
const FlexIntInvalid FlexInt = -1

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*f = FlexIntInvalid
			return nil
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*f = 0
			return nil
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		fl, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			*f = FlexIntInvalid
			return nil
		}
		n = int(fl)
	}
	*f = FlexInt(n)
	return nil
}
