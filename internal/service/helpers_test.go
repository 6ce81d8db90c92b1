package service

import (
	"io"
	"testing"
	"time"

	"resortdesk/internal/database"
	"resortdesk/internal/events"
	"resortdesk/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	bcryptCost = bcrypt.MinCost
}

func testLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func setupDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewDB(":memory:", testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// recorder collects published events.
type recorder struct {
	bus   *events.EventBus
	types []string
}

func newRecorder() *recorder {
	r := &recorder{bus: events.NewEventBus()}
	r.bus.SubscribeAll(func(e *events.Event) error {
		r.types = append(r.types, e.Type)
		return nil
	})
	return r
}

func fixedNow(date string) func() time.Time {
	d, err := models.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return d.Add(9 * time.Hour) }
}

func flex(n int) *models.FlexInt {
	g := models.FlexInt(n)
	return &g
}

func strPtr(s string) *string { return &s }
