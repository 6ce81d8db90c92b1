package workflow

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"resortdesk/internal/client"
	"resortdesk/internal/models"
	"resortdesk/internal/report"
	"resortdesk/internal/search"
	"resortdesk/internal/validation"

	"github.com/rs/zerolog"
)

// Messages shown to the operator.
const (
	MsgUpdated      = "Reservation updated successfully!"
	MsgUpdateFailed = "Error updating reservation!"
	MsgDeleted      = "Reservation deleted successfully!"
	MsgDeleteFailed = "Error deleting reservation!"
	MsgUnavailable  = "Selected time slot is not available. Please choose another."
	MsgCheckFailed  = "Could not check availability. Please try again."
)

var (
	ErrInvalidTransition  = errors.New("action is not allowed in the current state")
	ErrUnknownReservation = errors.New("reservation is not in the list")
	// ErrStale is returned when the desk moved on (Cancel, another Select)
	// while a check was in flight; the late answer is dropped.
	ErrStale = errors.New("desk state changed while the request was in flight")
)

// Backend is the subset of the API the desk needs. *client.Client
// implements it.
type Backend interface {
	ListReservations(ctx context.Context, query string) ([]*models.Reservation, error)
	CheckAvailability(ctx context.Context, in models.ReservationInput) (models.AvailabilityResult, error)
	UpdateReservation(ctx context.Context, id string, in models.ReservationInput) (*models.Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
}

// Notifier surfaces short messages to the operator.
type Notifier interface {
	Success(msg string)
	Warn(msg string)
	Error(msg string)
}

// Desk owns the reservation list, the search query and the edit state.
// It is safe for concurrent use; backend calls run without the lock so the
// state can be observed while a request is in flight.
type Desk struct {
	backend Backend
	notify  Notifier
	rules   validation.Rules
	logger  *zerolog.Logger
	now     func() time.Time

	mu       sync.Mutex
	state    State
	gen      uint64
	all      []*models.Reservation
	query    string
	filtered []*models.Reservation
}

func NewDesk(backend Backend, notifier Notifier, rules validation.Rules, logger *zerolog.Logger) *Desk {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Desk{
		backend: backend,
		notify:  notifier,
		rules:   rules,
		logger:  logger,
		now:     time.Now,
		state:   Idle{},
	}
}

// setState must be called with mu held.
func (d *Desk) setState(s State) {
	d.state = s
	d.gen++
}

func (d *Desk) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Desk) Query() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.query
}

// Reservations returns the list as currently filtered.
func (d *Desk) Reservations() []*models.Reservation {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*models.Reservation, len(d.filtered))
	copy(out, d.filtered)
	return out
}

func (d *Desk) All() []*models.Reservation {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*models.Reservation, len(d.all))
	copy(out, d.all)
	return out
}

// Load fetches the full list and reapplies the current query. On failure
// the previous list stays in place.
func (d *Desk) Load(ctx context.Context) error {
	list, err := d.backend.ListReservations(ctx, "")
	if err != nil {
		d.logger.Error().Err(err).Msg("Error fetching reservations")
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.all = list
	d.filtered = search.Filter(list, d.query)
	return nil
}

// Search narrows the full list. Each call starts from the full list.
func (d *Desk) Search(query string) []*models.Reservation {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.query = query
	d.filtered = search.Filter(d.all, query)

	out := make([]*models.Reservation, len(d.filtered))
	copy(out, d.filtered)
	return out
}

// Select opens the edit form for the reservation with id (either id).
func (d *Desk) Select(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, busy := d.state.(Checking); busy {
		return ErrInvalidTransition
	}
	for _, r := range d.all {
		if r.Matches(id) {
			d.setState(Editing{Target: *r, Form: models.InputFrom(*r)})
			return nil
		}
	}
	return ErrUnknownReservation
}

// Change replaces the form. Any change drops a previous check result.
func (d *Desk) Change(form models.ReservationInput) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, busy := d.state.(Checking); busy {
		return ErrInvalidTransition
	}
	target, _, ok := editTarget(d.state)
	if !ok {
		return ErrInvalidTransition
	}
	d.setState(Editing{Target: target, Form: form})
	return nil
}

// Check validates the form locally and, when it passes, asks the server
// whether the slot is free. It may be repeated from Available or
// Unavailable with the same form. The record being edited is excluded so it
// never conflicts with itself. A failed request returns to Editing with
// Failure set; it is never reported as Unavailable.
func (d *Desk) Check(ctx context.Context) error {
	d.mu.Lock()
	if _, busy := d.state.(Checking); busy {
		d.mu.Unlock()
		return ErrInvalidTransition
	}
	target, form, ok := editTarget(d.state)
	if !ok {
		d.mu.Unlock()
		return ErrInvalidTransition
	}
	if _, errs := d.rules.Reservation(form, models.NewDate(d.now())); len(errs) > 0 {
		d.setState(Editing{Target: target, Form: form, Errors: errs})
		d.mu.Unlock()
		return errs
	}

	req := form
	exclude := target.ID
	req.ExcludeReservationID = &exclude

	d.setState(Checking{Target: target, Form: form})
	gen := d.gen
	d.mu.Unlock()

	result, err := d.backend.CheckAvailability(ctx, req)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gen != gen {
		return ErrStale
	}

	if err != nil {
		next := Editing{Target: target, Form: form}
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
			next.Errors = validation.Errors(apiErr.Fields)
		} else {
			next.Failure = err
			d.notify.Error(MsgCheckFailed)
		}
		d.logger.Error().Err(err).Str("reservation_id", target.ReservationID).Msg("Error checking availability")
		d.setState(next)
		return err
	}

	if result.Available {
		d.setState(Available{Target: target, Form: form})
		return nil
	}
	d.setState(Unavailable{Target: target, Form: form, Conflicts: result.Conflicts})
	d.notify.Warn(MsgUnavailable)
	return nil
}

// Confirm saves an available form. On failure the desk stays Available so
// the operator can retry.
func (d *Desk) Confirm(ctx context.Context) error {
	d.mu.Lock()
	av, ok := d.state.(Available)
	gen := d.gen
	d.mu.Unlock()
	if !ok {
		return ErrInvalidTransition
	}

	if _, err := d.backend.UpdateReservation(ctx, av.Target.ID, av.Form); err != nil {
		d.logger.Error().Err(err).Str("reservation_id", av.Target.ReservationID).Msg("Error updating reservation")
		d.notify.Error(MsgUpdateFailed)
		return err
	}
	d.notify.Success(MsgUpdated)

	d.mu.Lock()
	if d.gen == gen {
		d.setState(Idle{})
	}
	d.mu.Unlock()

	_ = d.Load(ctx)
	return nil
}

func (d *Desk) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setState(Idle{})
}

// Delete removes the reservation on the server. The list is only refreshed
// after a successful delete; nothing is removed locally beforehand.
func (d *Desk) Delete(ctx context.Context, id string) error {
	if err := d.backend.DeleteReservation(ctx, id); err != nil {
		d.logger.Error().Err(err).Str("id", id).Msg("Error deleting reservation")
		d.notify.Error(MsgDeleteFailed)
		return err
	}

	d.mu.Lock()
	d.setState(Idle{})
	d.mu.Unlock()

	_ = d.Load(ctx)
	d.notify.Success(MsgDeleted)
	return nil
}

// Export renders the filtered list.
func (d *Desk) Export(w io.Writer, r report.Renderer, title string) (report.Table, error) {
	table := report.Build(title, d.Reservations())
	if err := r.Render(w, table); err != nil {
		return table, err
	}
	return table, nil
}
