// Package workflow drives the staff reservation desk: list, search, edit
// with a prior availability check, delete and export.
package workflow

import (
	"resortdesk/internal/models"
	"resortdesk/internal/validation"
)

// State is one of Idle, Editing, Checking, Available or Unavailable.
type State interface {
	Name() string
	sealed()
}

type Idle struct{}

// Editing holds the form for Target. Errors are field messages from local
// validation or the server; Failure is set when the last availability check
// could not be completed at all.
type Editing struct {
	Target  models.Reservation
	Form    models.ReservationInput
	Errors  validation.Errors
	Failure error
}

// Checking is an availability request in flight.
type Checking struct {
	Target models.Reservation
	Form   models.ReservationInput
}

// Available means the form passed the check and may be confirmed.
type Available struct {
	Target models.Reservation
	Form   models.ReservationInput
}

type Unavailable struct {
	Target    models.Reservation
	Form      models.ReservationInput
	Conflicts int
}

func (Idle) Name() string        { return "idle" }
func (Editing) Name() string     { return "editing" }
func (Checking) Name() string    { return "checking" }
func (Available) Name() string   { return "available" }
func (Unavailable) Name() string { return "unavailable" }

func (Idle) sealed()        {}
func (Editing) sealed()     {}
func (Checking) sealed()    {}
func (Available) sealed()   {}
func (Unavailable) sealed() {}

// editTarget returns the record and form of any state that carries them.
func editTarget(s State) (models.Reservation, models.ReservationInput, bool) {
	switch st := s.(type) {
	case Editing:
		return st.Target, st.Form, true
	case Checking:
		return st.Target, st.Form, true
	case Available:
		return st.Target, st.Form, true
	case Unavailable:
		return st.Target, st.Form, true
	}
	return models.Reservation{}, models.ReservationInput{}, false
}
