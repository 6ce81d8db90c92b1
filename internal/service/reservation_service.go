package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resortdesk/internal/config"
	"resortdesk/internal/domain"
	"resortdesk/internal/events"
	"resortdesk/internal/metrics"
	"resortdesk/internal/models"
	"resortdesk/internal/report"
	"resortdesk/internal/search"
	"resortdesk/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ReservationService struct {
	repo     domain.ReservationRepository
	eventBus domain.EventPublisher
	cfg      config.ReservationsConfig
	rules    validation.Rules
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewReservationService(
	repo domain.ReservationRepository,
	eventBus domain.EventPublisher,
	cfg config.ReservationsConfig,
	logger *zerolog.Logger,
) *ReservationService {
	cfg.ApplyDefaults()
	return &ReservationService{
		repo:     repo,
		eventBus: eventBus,
		cfg:      cfg,
		rules:    validation.NewRules(cfg),
		logger:   logger,
		now:      time.Now,
	}
}

func (s *ReservationService) Rules() validation.Rules {
	return s.rules
}

// List returns all reservations, narrowed by query when it is not empty.
func (s *ReservationService) List(ctx context.Context, query string) ([]*models.Reservation, error) {
	all, err := s.repo.ListReservations(ctx)
	if err != nil {
		return nil, err
	}
	return search.Filter(all, query), nil
}

func (s *ReservationService) Get(ctx context.Context, id string) (*models.Reservation, error) {
	return s.repo.GetReservation(ctx, id)
}

func (s *ReservationService) Count(ctx context.Context) (int, error) {
	return s.repo.CountReservations(ctx)
}

// Create books a new event. Past dates are refused here but not on update,
// so staff can still correct historical records.
func (s *ReservationService) Create(ctx context.Context, in models.ReservationInput) (*models.Reservation, error) {
	today := models.NewDate(s.now())
	res, errs := s.rules.Reservation(in, today)
	if _, bad := errs["date"]; !bad && res.Date.Before(today.Time) {
		errs["date"] = "Date cannot be in the past"
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if res.ReservationID == "" {
		res.ReservationID = newReservationID()
	}

	if err := s.repo.CreateReservationWithLock(ctx, &res, s.guard(&res, "")); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("reservation_id", res.ReservationID).
		Str("date", res.Date.String()).
		Str("start", res.StartTime).
		Msg("Reservation created")
	s.publish(events.EventReservationCreated, &res, "customer")
	return &res, nil
}

// CheckAvailability reports whether the candidate slot is free. The
// reservation named by ExcludeReservationID, matched by either id, is
// ignored so an edit never conflicts with itself.
func (s *ReservationService) CheckAvailability(ctx context.Context, in models.ReservationInput) (models.AvailabilityResult, error) {
	res, errs := s.rules.Reservation(in, models.NewDate(s.now()))
	if err := errs.Err(); err != nil {
		metrics.IncAvailability(metrics.AvailabilityInvalid)
		return models.AvailabilityResult{}, err
	}

	sameDay, err := s.repo.GetReservationsByDate(ctx, res.Date)
	if err != nil {
		return models.AvailabilityResult{}, err
	}

	exclude := ""
	if in.ExcludeReservationID != nil {
		exclude = *in.ExcludeReservationID
	}

	result := s.evaluate(&res, sameDay, exclude)
	if result.Available {
		metrics.IncAvailability(metrics.AvailabilityAvailable)
	} else {
		metrics.IncAvailability(metrics.AvailabilityUnavailable)
	}
	return result, nil
}

// Update replaces the reservation identified by id (storage id or
// reservation id) after re-checking the slot.
func (s *ReservationService) Update(ctx context.Context, id string, in models.ReservationInput, actor string) (*models.Reservation, error) {
	res, errs := s.rules.Reservation(in, models.NewDate(s.now()))
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateReservationWithLock(ctx, id, &res, s.guard(&res, id)); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("reservation_id", res.ReservationID).
		Int64("version", res.Version).
		Str("actor", actor).
		Msg("Reservation updated")
	s.publish(events.EventReservationUpdated, &res, actor)
	return &res, nil
}

func (s *ReservationService) Delete(ctx context.Context, id, actor string) error {
	res, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteReservation(ctx, res.ID); err != nil {
		return err
	}

	s.logger.Info().Str("reservation_id", res.ReservationID).Str("actor", actor).Msg("Reservation deleted")
	s.publish(events.EventReservationDeleted, res, actor)
	return nil
}

// Report builds the export table for the reservations matching query.
func (s *ReservationService) Report(ctx context.Context, query string) (report.Table, error) {
	list, err := s.List(ctx, query)
	if err != nil {
		return report.Table{}, err
	}
	return report.Build(models.DefaultReportTitle, list), nil
}

func (s *ReservationService) evaluate(candidate *models.Reservation, sameDay []*models.Reservation, exclude string) models.AvailabilityResult {
	window, err := candidate.Window()
	if err != nil {
		// Rules.Reservation already normalized both times.
		return models.AvailabilityResult{}
	}

	conflicts, guests := 0, 0
	for _, r := range sameDay {
		if exclude != "" && r.Matches(exclude) {
			continue
		}
		if candidate.ID != "" && r.ID == candidate.ID {
			continue
		}
		w, err := r.Window()
		if err != nil {
			s.logger.Warn().Err(err).Str("reservation_id", r.ReservationID).Msg("Skipping reservation with unreadable times")
			continue
		}
		if window.Overlaps(w) {
			conflicts++
			guests += r.Guests
		}
	}

	available := conflicts < s.cfg.MaxConcurrent
	if s.cfg.MaxGuestsPerSlot > 0 && guests+candidate.Guests > s.cfg.MaxGuestsPerSlot {
		available = false
	}
	return models.AvailabilityResult{Available: available, Conflicts: conflicts}
}

func (s *ReservationService) guard(candidate *models.Reservation, exclude string) domain.SlotGuard {
	return func(sameDay []*models.Reservation) error {
		result := s.evaluate(candidate, sameDay, exclude)
		if !result.Available {
			return fmt.Errorf("%s %s-%s overlaps %d reservation(s): %w",
				candidate.Date, candidate.StartTime, candidate.EndTime, result.Conflicts, ErrNotAvailable)
		}
		return nil
	}
}

func (s *ReservationService) publish(eventType string, r *models.Reservation, actor string) {
	payload := events.ReservationEventPayload{
		ID:            r.ID,
		ReservationID: r.ReservationID,
		Date:          r.Date.String(),
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		Guests:        r.Guests,
		Version:       r.Version,
		ChangedBy:     actor,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("Failed to publish event")
	}
}

func newReservationID() string {
	return models.ReservationIDPrefix + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
