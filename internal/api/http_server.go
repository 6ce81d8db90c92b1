package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"resortdesk/internal/config"
	"resortdesk/internal/service"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Services groups everything the HTTP layer calls into.
type Services struct {
	Reservations *service.ReservationService
	Cart         *service.CartService
	Staff        *service.StaffService
	Auth         *service.AuthService
	Sessions     *service.SessionService
	// Ready reports whether dependencies (database) are usable.
	Ready func(ctx context.Context) error
}

// HTTPServer exposes the reservation desk REST API.
type HTTPServer struct {
	cfg     config.APIConfig
	svc     Services
	server  *http.Server
	auth    *Authenticator
	limiter *rateLimiter
	logger  *zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, svc Services, logger *zerolog.Logger) *HTTPServer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	srv := &HTTPServer{
		cfg:     cfg,
		svc:     svc,
		auth:    NewAuthenticator(cfg.Auth, svc.Auth),
		limiter: newRateLimiter(cfg.RateLimit),
		logger:  logger,
	}

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

// Handler returns the root handler, mainly for httptest.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(accessLog(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(s.rateLimit)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Post("/auth/login", s.handleLogin)

	r.Route("/event", func(r chi.Router) {
		r.Get("/", s.withSession(permReadReservations, s.handleListReservations))
		r.Get("/count", s.withSession(permReadDashboard, s.handleCountReservations))
		r.Get("/report", s.withSession(permReadReservations, s.handleReport))
		r.Post("/add", s.handleCreateReservation)
		r.Post("/checkAvailability", s.handleCheckAvailability)
		r.Put("/update/{id}", s.withSession(permWriteReservations, s.handleUpdateReservation))
		r.Delete("/delete/{id}", s.withSession(permWriteReservations, s.handleDeleteReservation))
		r.Get("/{id}", s.withSession(permReadReservations, s.handleGetReservation))
	})

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", s.withSession(permReadCart, s.handleListCart))
		r.Get("/total", s.withSession(permReadCart, s.handleCartTotal))
		r.Post("/add", s.withSession(permWriteCart, s.handleAddCartItem))
		r.Put("/update/{itemId}", s.withSession(permWriteCart, s.handleUpdateCartItem))
		r.Delete("/delete/{itemId}", s.withSession(permWriteCart, s.handleRemoveCartItem))
		r.Delete("/clear", s.withSession(permWriteCart, s.handleClearCart))
	})

	r.Get("/employee/count", s.withSession(permReadDashboard, s.handleEmployeeCount))
	r.Post("/employee", s.withSession(permWriteStaff, s.handleCreateEmployee))
	r.Get("/attendance/count", s.withSession(permReadDashboard, s.handleAttendanceCount))
	r.Post("/attendance/mark", s.withSession(permApplyLeave, s.handleMarkAttendance))

	r.Route("/leave", func(r chi.Router) {
		r.Get("/", s.withSession(permApplyLeave, s.handleListLeaves))
		r.Post("/apply", s.withSession(permApplyLeave, s.handleApplyLeave))
		r.Put("/{id}/status", s.withSession(permWriteStaff, s.handleDecideLeave))
	})

	r.Get("/session", s.withSession("", s.handleGetSession))
	r.Put("/session/leave-dialog", s.withSession("", s.handleLeaveDialog))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.svc.Ready != nil {
		if err := s.svc.Ready(r.Context()); err != nil {
			s.logger.Warn().Err(err).Msg("Readiness check failed")
			writeError(w, http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
