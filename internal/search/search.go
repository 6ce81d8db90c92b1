// Package search filters reservation lists for the staff dashboard.
package search

import (
	"strings"

	"resortdesk/internal/models"
)

// Filter returns the reservations whose name, reservation id or date
// (YYYY-MM-DD) contains query, ignoring case. Whitespace in query is
// significant. Order is kept. An empty query yields a copy of the whole
// list.
func Filter(list []*models.Reservation, query string) []*models.Reservation {
	q := strings.ToLower(query)

	out := make([]*models.Reservation, 0, len(list))
	for _, r := range list {
		if r == nil {
			continue
		}
		if q == "" || Matches(r, q) {
			out = append(out, r)
		}
	}
	return out
}

// Matches expects q to be lower-cased already.
func Matches(r *models.Reservation, q string) bool {
	return strings.Contains(strings.ToLower(r.Name), q) ||
		strings.Contains(strings.ToLower(r.ReservationID), q) ||
		strings.Contains(r.Date.String(), q)
}
