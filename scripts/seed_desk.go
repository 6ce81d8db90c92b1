package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"resortdesk/internal/config"
	"resortdesk/internal/database"
	"resortdesk/internal/events"
	"resortdesk/internal/models"
	"resortdesk/internal/service"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type SeedConfig struct {
	Employees    []SeedEmployee    `yaml:"employees"`
	Reservations []SeedReservation `yaml:"reservations"`
}

type SeedEmployee struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Role     string `yaml:"role"`
	Password string `yaml:"password"`
}

// SeedReservation is placed InDays from today so the seed stays valid.
type SeedReservation struct {
	Name      string `yaml:"name"`
	Email     string `yaml:"email"`
	Phone     string `yaml:"phone"`
	Guests    int    `yaml:"guests"`
	InDays    int    `yaml:"in_days"`
	StartTime string `yaml:"start_time"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		seedPath = flag.String("seed", "configs/seed.yaml", "path to seed.yaml")
		dbPath   = flag.String("db", "./data/resortdesk.db", "path to sqlite db")
	)
	flag.Parse()

	data, err := os.ReadFile(*seedPath)
	if err != nil {
		return fmt.Errorf("read seed: %w", err)
	}
	var cfg SeedConfig
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse seed: %w", err)
	}
	if len(cfg.Employees) == 0 && len(cfg.Reservations) == 0 {
		return fmt.Errorf("nothing to seed in %s", *seedPath)
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	quiet := zerolog.New(io.Discard)
	bus := events.NewEventBus()
	staff := service.NewStaffService(db, bus, &quiet)
	reservations := service.NewReservationService(db, bus, config.ReservationsConfig{}, &quiet)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	employees, skipped := 0, 0
	for _, e := range cfg.Employees {
		_, err = staff.CreateEmployee(ctx, models.EmployeeInput(e))
		switch {
		case err == nil:
			employees++
		case errors.Is(err, database.ErrDuplicate):
			skipped++
		default:
			return fmt.Errorf("employee %s: %w", e.Email, err)
		}
	}

	booked := 0
	today := time.Now()
	for _, r := range cfg.Reservations {
		guests := models.FlexInt(r.Guests)
		_, err = reservations.Create(ctx, models.ReservationInput{
			Name:      r.Name,
			Email:     r.Email,
			Phone:     r.Phone,
			Guests:    &guests,
			Date:      today.AddDate(0, 0, r.InDays).Format(models.DateLayout),
			StartTime: r.StartTime,
		})
		switch {
		case err == nil:
			booked++
		case errors.Is(err, service.ErrNotAvailable):
			logger.Warn().Str("name", r.Name).Str("start", r.StartTime).Msg("slot taken, skipped")
			skipped++
		default:
			return fmt.Errorf("reservation %s: %w", r.Name, err)
		}
	}

	fmt.Printf("done: employees=%d reservations=%d skipped=%d\n", employees, booked, skipped)
	return nil
}
