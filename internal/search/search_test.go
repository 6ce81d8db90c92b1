package search

import (
	"strings"
	"testing"

	"resortdesk/internal/models"

	"github.com/stretchr/testify/assert"
)

func res(id, name, date string) *models.Reservation {
	d, _ := models.ParseDate(date)
	return &models.Reservation{ReservationID: id, Name: name, Date: d}
}

func sample() []*models.Reservation {
	return []*models.Reservation{
		res("RES-001", "Alice Fernando", "2025-03-01"),
		res("RES-002", "Bob Silva", "2025-03-15"),
		res("RES-003", "Charlie Alwis", "2025-04-01"),
	}
}

func ids(list []*models.Reservation) []string {
	out := make([]string, 0, len(list))
	for _, r := range list {
		out = append(out, r.ReservationID)
	}
	return out
}

func TestFilter(t *testing.T) {
	list := sample()

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"RES-001", "RES-002", "RES-003"}},
		{" ", []string{"RES-001", "RES-002", "RES-003"}},
		{"   ", []string{}},
		{"fernando ", []string{}},
		{" fernando", []string{"RES-001"}},
		{"bob s", []string{"RES-002"}},
		{"alice", []string{"RES-001"}},
		{"AL", []string{"RES-001", "RES-003"}},
		{"res-002", []string{"RES-002"}},
		{"2025-03", []string{"RES-001", "RES-002"}},
		{"04-01", []string{"RES-003"}},
		{"nobody", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(list, tt.query)))
		})
	}
}

func TestFilter_Property(t *testing.T) {
	list := sample()
	for _, q := range []string{"a", "Si", "res", "2025", "-0", "x", "fernando ", " ", "e A"} {
		got := Filter(list, q)
		lq := strings.ToLower(q)
		for _, r := range list {
			want := strings.Contains(strings.ToLower(r.Name), lq) ||
				strings.Contains(strings.ToLower(r.ReservationID), lq) ||
				strings.Contains(r.Date.String(), lq)
			assert.Equal(t, want, contains(got, r), "query %q record %s", q, r.ReservationID)
		}
	}
}

func TestFilter_ReturnsCopy(t *testing.T) {
	list := sample()
	got := Filter(list, "")
	got[0] = nil
	assert.NotNil(t, list[0])
	assert.Empty(t, Filter(nil, "a"))
}

func contains(list []*models.Reservation, r *models.Reservation) bool {
	for _, x := range list {
		if x == r {
			return true
		}
	}
	return false
}
