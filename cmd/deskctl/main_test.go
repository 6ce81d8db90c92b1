package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeskRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlContent := `
database:
  path: "desk.db"
reservations:
  min_guests: 2
  max_guests: 20
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))

	t.Run("defaults", func(t *testing.T) {
		r, err := deskRules(globals{})
		require.NoError(t, err)
		assert.Equal(t, 1, r.MinGuests)
		assert.Equal(t, 50, r.MaxGuests)
	})

	t.Run("from server config", func(t *testing.T) {
		r, err := deskRules(globals{configPath: path})
		require.NoError(t, err)
		assert.Equal(t, 2, r.MinGuests)
		assert.Equal(t, 20, r.MaxGuests)
		assert.Equal(t, "Number of guests must be between 2 and 20", r.GuestsMessage())

		errs := r.Contact("Ann", "5551234567", "ann@example.com", 21)
		assert.Contains(t, errs, "guests")
	})

	t.Run("flag overrides config", func(t *testing.T) {
		r, err := deskRules(globals{configPath: path, maxGuests: 12})
		require.NoError(t, err)
		assert.Equal(t, 2, r.MinGuests)
		assert.Equal(t, 12, r.MaxGuests)
	})

	t.Run("inverted bounds", func(t *testing.T) {
		_, err := deskRules(globals{minGuests: 10, maxGuests: 5})
		assert.Error(t, err)
	})

	t.Run("missing config", func(t *testing.T) {
		_, err := deskRules(globals{configPath: filepath.Join(dir, "nope.yaml")})
		assert.Error(t, err)
	})
}
