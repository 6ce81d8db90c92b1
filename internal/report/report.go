// Package report turns reservation lists into tabular exports.
package report

import (
	"io"
	"strconv"

	"resortdesk/internal/models"
)

var Columns = []string{
	"Res. ID", "Name", "Phone", "Email", "No. of Guests", "Date", "Start Time", "End Time",
}

type Table struct {
	Title    string
	Columns  []string
	Rows     [][]string
	FileName string
}

// Renderer writes a Table in one document format.
type Renderer interface {
	Render(w io.Writer, t Table) error
	Extension() string
	ContentType() string
}

// Build lays out one row per reservation with values copied verbatim.
func Build(title string, list []*models.Reservation) Table {
	if title == "" {
		title = models.DefaultReportTitle
	}
	rows := make([][]string, 0, len(list))
	for _, r := range list {
		rows = append(rows, []string{
			r.ReservationID,
			r.Name,
			r.Phone,
			r.Email,
			strconv.Itoa(r.Guests),
			r.Date.String(),
			r.StartTime,
			r.EndTime,
		})
	}

	cols := make([]string, len(Columns))
	copy(cols, Columns)

	return Table{
		Title:    title,
		Columns:  cols,
		Rows:     rows,
		FileName: models.ReportFileName,
	}
}
