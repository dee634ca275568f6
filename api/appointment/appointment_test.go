package appointment_test

import (
	"errors"
	"net/http"
	"strconv"
	"testing"

	"assistante-suite/api/apitest"
	"assistante-suite/api/appointment"
	"assistante-suite/utils"
	appAPIHelper "assistante-suite/utils/api"

	"github.com/stretchr/testify/require"
)

func booking(date, clock string) appointment.BookPayload {
	return appointment.BookPayload{
		Name:    "Claire Martin",
		Email:   "claire@example.fr",
		Phone:   "06 12 34 56 78",
		Date:    date,
		Time:    clock,
		Message: "Premier rendez-vous <urgent>",
	}
}

func labels(t *testing.T, resp *apitest.Response) []string {
	t.Helper()
	require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))
	_, data := apitest.Decode[appointment.SlotsResponse](t, resp)
	out := make([]string, len(data.Slots))
	for i, s := range data.Slots {
		out[i] = s.Label
	}
	return out
}

func TestSlots(t *testing.T) {
	h := apitest.New(t)

	require.Equal(t, []string{"09:00", "10:00", "11:00"}, labels(t, h.Do(t, http.MethodGet, "/api/appointments/slots?date=2024-06-10", nil, "")))
	require.Equal(t, []string{"14:00", "15:00", "16:00"}, labels(t, h.Do(t, http.MethodGet, "/api/appointments/slots?date=2024-06-11", nil, "")))
	require.Empty(t, labels(t, h.Do(t, http.MethodGet, "/api/appointments/slots?date=2024-06-12", nil, "")))

	for _, date := range []string{"2024-06-08", "2024-07-10", "10/06/2024", ""} {
		resp := h.Do(t, http.MethodGet, "/api/appointments/slots?date="+date, nil, "")
		require.Equal(t, http.StatusUnprocessableEntity, resp.Status, date)
	}
}

func TestBookAppointment(t *testing.T) {
	h := apitest.New(t)

	resp := h.Do(t, http.MethodPost, "/api/appointments", booking("2024-06-10", "10:00"), "")
	require.Equal(t, http.StatusCreated, resp.Status, string(resp.Body))
	_, booked := apitest.Decode[utils.Appointment](t, resp)
	require.Equal(t, utils.AppointmentStatusPending, booked.Status)
	require.Equal(t, 60, booked.DurationMinutes)
	require.Equal(t, "2024-06-10T08:00:00Z", booked.StartsAt.UTC().Format("2006-01-02T15:04:05Z"))

	mail := h.Mailer.Last()
	require.Equal(t, []string{"agenda@example.fr"}, mail.To)
	require.Contains(t, mail.Body, "2024-06-10 à 10:00 (60 min)")
	require.Contains(t, mail.Body, "Premier rendez-vous &lt;urgent&gt;")

	require.Equal(t, []string{"09:00", "11:00"}, labels(t, h.Do(t, http.MethodGet, "/api/appointments/slots?date=2024-06-10", nil, "")))

	resp = h.Do(t, http.MethodPost, "/api/appointments", booking("2024-06-10", "10:00"), "")
	require.Equal(t, http.StatusConflict, resp.Status)
}

func TestBookRejections(t *testing.T) {
	h := apitest.New(t)
	cases := map[string]struct {
		payload appointment.BookPayload
		status  int
	}{
		"closed day":    {booking("2024-06-12", "10:00"), http.StatusConflict},
		"off the grid":  {booking("2024-06-10", "10:30"), http.StatusConflict},
		"too far":       {booking("2024-08-01", "10:00"), http.StatusUnprocessableEntity},
		"past":          {booking("2024-06-08", "10:00"), http.StatusUnprocessableEntity},
		"bad clock":     {booking("2024-06-10", "25:00"), http.StatusUnprocessableEntity},
		"missing email": {appointment.BookPayload{Name: "x", Date: "2024-06-10", Time: "10:00"}, http.StatusUnprocessableEntity},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp := h.Do(t, http.MethodPost, "/api/appointments", tc.payload, "")
			require.Equal(t, tc.status, resp.Status, string(resp.Body))
		})
	}
	require.Empty(t, h.Mailer.Sent)
}

func TestNotificationFailureStillBooks(t *testing.T) {
	h := apitest.New(t)
	h.Mailer.Err = errors.New("smtp down")
	resp := h.Do(t, http.MethodPost, "/api/appointments", booking("2024-06-11", "14:00"), "")
	require.Equal(t, http.StatusCreated, resp.Status)
}

func TestAdminAppointments(t *testing.T) {
	h := apitest.New(t)
	token := h.Login(t)

	resp := h.Do(t, http.MethodPost, "/api/appointments", booking("2024-06-10", "09:00"), "")
	_, booked := apitest.Decode[utils.Appointment](t, resp)
	h.Do(t, http.MethodPost, "/api/appointments", booking("2024-06-11", "15:00"), "")

	resp = h.Do(t, http.MethodGet, "/api/admin/appointments", nil, "")
	require.Equal(t, http.StatusUnauthorized, resp.Status)

	resp = h.Do(t, http.MethodGet, "/api/admin/appointments", nil, token)
	_, all := apitest.Decode[[]utils.Appointment](t, resp)
	require.Len(t, *all, 2)

	path := "/api/admin/appointments/" + strconv.FormatInt(booked.ID, 10) + "/status"
	resp = h.Do(t, http.MethodPut, path, appointment.StatusPayload{Status: "done"}, token)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Status)

	resp = h.Do(t, http.MethodPut, path, appointment.StatusPayload{Status: "cancelled"}, token)
	require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))

	resp = h.Do(t, http.MethodGet, "/api/admin/appointments?status=cancelled", nil, token)
	_, cancelled := apitest.Decode[[]utils.Appointment](t, resp)
	require.Len(t, *cancelled, 1)

	// a cancelled slot opens up again
	require.Equal(t, []string{"09:00", "10:00", "11:00"}, labels(t, h.Do(t, http.MethodGet, "/api/appointments/slots?date=2024-06-10", nil, "")))

	resp = h.Do(t, http.MethodPut, "/api/admin/appointments/999/status", appointment.StatusPayload{Status: "confirmed"}, token)
	require.Equal(t, http.StatusNotFound, resp.Status)
}

func TestBrokenScheduleAnswers500(t *testing.T) {
	h := apitest.New(t, func(helper *appAPIHelper.RouterHelpers) {
		helper.Config.Appointments.Timezone = "Mars/Olympus"
	})
	resp := h.Do(t, http.MethodGet, "/api/appointments/slots?date=2024-06-10", nil, "")
	require.Equal(t, http.StatusInternalServerError, resp.Status)
}
