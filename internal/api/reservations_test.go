package api

import (
	"bytes"
	"fmt"
	"net/http"
	"testing"

	"resortdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCreateAndListReservations(t *testing.T) {
	env := newTestEnv(t, nil)
	date := futureDate(7)

	resp, body := env.do(t, http.MethodPost, "/event/add", reservationBody("Alice Smith", date, "18:00"), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	created := decode[models.Reservation](t, body)
	assert.NotEmpty(t, created.ID)
	assert.Regexp(t, `^RES-[0-9A-F]{8}$`, created.ReservationID)
	assert.Equal(t, "19:00", created.EndTime)
	assert.Equal(t, int64(0), created.Version)

	resp, body = env.do(t, http.MethodPost, "/event/add", reservationBody("Bob Jones", date, "20:00"), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = env.do(t, http.MethodGet, "/event", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]models.Reservation](t, body)
	assert.Len(t, list, 2)

	resp, body = env.do(t, http.MethodGet, "/event?q=alice", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list = decode[[]models.Reservation](t, body)
	require.Len(t, list, 1)
	assert.Equal(t, "Alice Smith", list[0].Name)

	resp, body = env.do(t, http.MethodGet, "/event/"+created.ReservationID, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.ID, decode[models.Reservation](t, body).ID)

	resp, body = env.do(t, http.MethodGet, "/event/count", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, decode[map[string]int](t, body)["reservationCount"])
}

type validationResponse struct {
	Error  string            `json:"error"`
	Errors map[string]string `json:"errors"`
}

func TestCreateReservation_Validation(t *testing.T) {
	env := newTestEnv(t, nil)

	in := reservationBody("", futureDate(3), "10:00")
	in["phone"] = "12345"
	in["email"] = "a@b"
	in["guests"] = 51

	resp, body := env.do(t, http.MethodPost, "/event/add", in, nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	payload := decode[validationResponse](t, body)
	assert.Equal(t, "validation failed", payload.Error)
	assert.Equal(t, "Name is required", payload.Errors["name"])
	assert.Equal(t, "Invalid contact number", payload.Errors["phone"])
	assert.Equal(t, "Invalid email address", payload.Errors["email"])
	assert.Contains(t, payload.Errors["guests"], "between 1 and 50")
}

func TestGuestsNotANumber(t *testing.T) {
	env := newTestEnv(t, nil)

	in := reservationBody("Guest", futureDate(3), "10:00")
	in["guests"] = "abc"

	for _, path := range []string{"/event/checkAvailability", "/event/add"} {
		t.Run(path, func(t *testing.T) {
			resp, body := env.do(t, http.MethodPost, path, in, nil)
			require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, string(body))

			payload := decode[validationResponse](t, body)
			assert.Equal(t, "Number of guests must be between 1 and 50", payload.Errors["guests"])
			assert.NotContains(t, payload.Errors, "name")
		})
	}
}

func TestCreateReservation_SlotTaken(t *testing.T) {
	env := newTestEnv(t, nil)
	date := futureDate(5)

	resp, _ := env.do(t, http.MethodPost, "/event/add", reservationBody("First", date, "12:00"), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := env.do(t, http.MethodPost, "/event/add", reservationBody("Second", date, "12:30"), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "not available")
}

func TestCheckAvailability(t *testing.T) {
	env := newTestEnv(t, nil)
	date := futureDate(10)

	resp, body := env.do(t, http.MethodPost, "/event/add", reservationBody("Holder", date, "14:00"), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	holder := decode[models.Reservation](t, body)

	tests := []struct {
		name      string
		start     string
		exclude   *string
		available bool
	}{
		{name: "free slot", start: "16:00", available: true},
		{name: "overlapping slot", start: "14:30", available: false},
		{name: "own slot excluded by storage id", start: "14:00", exclude: &holder.ID, available: true},
		{name: "own slot excluded by reservation id", start: "14:00", exclude: &holder.ReservationID, available: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := reservationBody("Candidate", date, tt.start)
			if tt.exclude != nil {
				in["excludeReservationId"] = *tt.exclude
			}
			resp, body := env.do(t, http.MethodPost, "/event/checkAvailability", in, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
			assert.Equal(t, tt.available, decode[models.AvailabilityResult](t, body).Available)
		})
	}
}

func TestCheckAvailability_BadJSON(t *testing.T) {
	env := newTestEnv(t, nil)

	req, err := http.NewRequest(http.MethodPost, env.ts.URL+"/event/checkAvailability", bytes.NewBufferString("{"))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateReservation(t *testing.T) {
	env := newTestEnv(t, nil)
	date := futureDate(4)

	_, body := env.do(t, http.MethodPost, "/event/add", reservationBody("Carol", date, "09:00"), nil)
	res := decode[models.Reservation](t, body)

	in := reservationBody("Carol King", date, "09:30")
	in["guests"] = 12
	resp, body := env.do(t, http.MethodPut, "/event/update/"+res.ID, in, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	updated := decode[models.Reservation](t, body)
	assert.Equal(t, "Carol King", updated.Name)
	assert.Equal(t, 12, updated.Guests)
	assert.Equal(t, res.ReservationID, updated.ReservationID)
	assert.Equal(t, int64(1), updated.Version)

	t.Run("stale version", func(t *testing.T) {
		stale := reservationBody("Carol", date, "09:00")
		stale["__v"] = 7
		resp, _ := env.do(t, http.MethodPut, "/event/update/"+res.ID, stale, nil)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("unknown id", func(t *testing.T) {
		resp, _ := env.do(t, http.MethodPut, "/event/update/missing", reservationBody("X", date, "22:00"), nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDeleteReservation(t *testing.T) {
	env := newTestEnv(t, nil)

	_, body := env.do(t, http.MethodPost, "/event/add", reservationBody("Dan", futureDate(2), "11:00"), nil)
	res := decode[models.Reservation](t, body)

	resp, body := env.do(t, http.MethodDelete, "/event/delete/"+res.ID, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Reservation deleted", decode[map[string]string](t, body)["message"])

	resp, _ = env.do(t, http.MethodDelete, "/event/delete/"+res.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReportExport(t *testing.T) {
	env := newTestEnv(t, nil)
	date := futureDate(6)
	for i, name := range []string{"Eve", "Frank", "Joann"} {
		resp, body := env.do(t, http.MethodPost, "/event/add", reservationBody(name, date, fmt.Sprintf("%02d:00", 10+i*2)), nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	}

	resp, body := env.do(t, http.MethodGet, "/event/report?q=an", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "events_report.xlsx")
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")

	f, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Reservations")
	require.NoError(t, err)
	// title, header, then the two names containing "an"
	require.Len(t, rows, 4)
	assert.Equal(t, "Frank", rows[2][1])
	assert.Equal(t, "Joann", rows[3][1])
	assert.Equal(t, "4", rows[2][4])
	assert.Equal(t, date, rows[2][5])
}
