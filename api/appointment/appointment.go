package appointment

import (
	"errors"
	"strconv"
	"time"

	"assistante-suite/utils"
	appAPIHelper "assistante-suite/utils/api"
	appLogger "assistante-suite/utils/logger"
	"assistante-suite/utils/slots"
	"assistante-suite/utils/smtp"

	"github.com/gofiber/fiber/v3"
)

const bookLimitPerHour = 10

type BookPayload struct {
	Name           string `json:"name" validate:"required,max=120"`
	Email          string `json:"email" validate:"required,email,max=254"`
	Phone          string `json:"phone" validate:"omitempty,max=40"`
	Date           string `json:"date" validate:"required"`
	Time           string `json:"time" validate:"required"`
	Message        string `json:"message" validate:"max=2000"`
	TurnstileToken string `json:"turnstile_token"`
}

type StatusPayload struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed cancelled"`
}

type SlotsResponse struct {
	Date  string       `json:"date"`
	Slots []slots.Slot `json:"slots"`
}

type handlers struct {
	apiHelper *appAPIHelper.RouterHelpers
	schedule  *slots.Schedule
}

func toBookings(appointments []utils.Appointment) []slots.Booking {
	out := make([]slots.Booking, len(appointments))
	for i, a := range appointments {
		out[i] = slots.Booking{Start: a.StartsAt, Duration: time.Duration(a.DurationMinutes) * time.Minute}
	}
	return out
}

func (h *handlers) bookedOn(c fiber.Ctx, day time.Time) ([]slots.Booking, error) {
	from, to := h.schedule.DayBounds(day)
	appointments, err := h.apiHelper.Appointments.ListBetween(c.Context(), from, to)
	if err != nil {
		return nil, err
	}
	return toBookings(appointments), nil
}

func (h *handlers) listSlots(c fiber.Ctx) error {
	date := c.Query("date")
	day, err := h.schedule.ParseDate(date)
	if err != nil {
		return appAPIHelper.ErrorUnprocessable(c, err.Error())
	}
	booked, err := h.bookedOn(c, day)
	if err != nil {
		appLogger.Errorf("Load bookings for %s: %v", date, err)
		return appAPIHelper.ErrorInternal(c, "could not load appointments")
	}
	free, err := h.schedule.Slots(day, h.apiHelper.Clock(), booked)
	if err != nil {
		return appAPIHelper.ErrorUnprocessable(c, err.Error())
	}
	return appAPIHelper.SuccessResponse(c, "ok", &SlotsResponse{Date: day.Format(slots.DateLayout), Slots: free})
}

func (h *handlers) notify(a *utils.Appointment) {
	cfg := h.apiHelper.Config
	if h.apiHelper.Mailer == nil || cfg.Appointments.NotifyEmail == "" {
		return
	}
	local := a.StartsAt.In(h.schedule.Location)
	body := smtp.Render(smtp.AppointmentNotifyTemplate, map[string]string{
		"DATE":     local.Format(slots.DateLayout),
		"TIME":     local.Format("15:04"),
		"DURATION": strconv.Itoa(a.DurationMinutes),
		"NAME":     a.Name,
		"EMAIL":    a.Email,
		"PHONE":    a.Phone,
		"MESSAGE":  a.Message,
	})
	if err := h.apiHelper.Mailer.Send([]string{cfg.Appointments.NotifyEmail}, smtp.AppointmentNotifySubject, body, cfg.SMTP.DisplayName); err != nil {
		appLogger.Errorf("Appointment %d notification not sent: %v", a.ID, err)
	}
}

func (h *handlers) book(c fiber.Ctx) error {
	var payload BookPayload
	if err := c.Bind().Body(&payload); err != nil {
		return appAPIHelper.BindError(c, err)
	}
	if h.apiHelper.RateLimited(c, "appointments", bookLimitPerHour, time.Hour) {
		return appAPIHelper.ErrorTooManyRequests(c, "too many booking attempts")
	}
	if err := h.apiHelper.VerifyChallenge(c, payload.TurnstileToken); err != nil {
		appLogger.Warnf("Appointment challenge rejected for %s: %v", c.IP(), err)
		return appAPIHelper.ErrorForbidden(c, "challenge verification failed")
	}
	start, err := h.schedule.At(payload.Date, payload.Time)
	if err != nil {
		return appAPIHelper.ErrorUnprocessable(c, err.Error())
	}
	booked, err := h.bookedOn(c, start)
	if err != nil {
		appLogger.Errorf("Load bookings for %s: %v", payload.Date, err)
		return appAPIHelper.ErrorInternal(c, "could not load appointments")
	}
	switch err := h.schedule.Check(start, h.apiHelper.Clock(), booked); {
	case errors.Is(err, slots.ErrSlotTaken):
		return appAPIHelper.ErrorConflict(c, err.Error())
	case err != nil:
		return appAPIHelper.ErrorUnprocessable(c, err.Error())
	}

	appointment := &utils.Appointment{
		Name:            payload.Name,
		Email:           payload.Email,
		Phone:           payload.Phone,
		StartsAt:        start,
		DurationMinutes: int(h.schedule.SlotLength / time.Minute),
		Message:         payload.Message,
		Status:          utils.AppointmentStatusPending,
	}
	if err := h.apiHelper.Appointments.Create(c.Context(), appointment); err != nil {
		if errors.Is(err, utils.ErrConflict) {
			return appAPIHelper.ErrorConflict(c, slots.ErrSlotTaken.Error())
		}
		appLogger.Errorf("Create appointment: %v", err)
		return appAPIHelper.ErrorInternal(c, "could not book appointment")
	}
	appLogger.Infof("Appointment %d booked for %s", appointment.ID, start.Format(time.RFC3339))
	h.notify(appointment)
	return appAPIHelper.CreatedResponse(c, "appointment requested", appointment)
}

func (h *handlers) list(c fiber.Ctx) error {
	var status utils.AppointmentStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := utils.ParseAppointmentStatus(raw)
		if err != nil {
			return appAPIHelper.ErrorBadRequest(c, err.Error())
		}
		status = parsed
	}
	appointments, err := h.apiHelper.Appointments.List(c.Context(), status)
	if err != nil {
		appLogger.Errorf("List appointments: %v", err)
		return appAPIHelper.ErrorInternal(c, "could not list appointments")
	}
	return appAPIHelper.SuccessResponse(c, "ok", &appointments)
}

func (h *handlers) updateStatus(c fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return appAPIHelper.ErrorBadRequest(c, "invalid appointment id")
	}
	var payload StatusPayload
	if err := c.Bind().Body(&payload); err != nil {
		return appAPIHelper.BindError(c, err)
	}
	appointment, err := h.apiHelper.Appointments.UpdateStatus(c.Context(), id, utils.AppointmentStatus(payload.Status))
	if errors.Is(err, utils.ErrNotFound) {
		return appAPIHelper.ErrorNotFound(c, "appointment not found")
	}
	if err != nil {
		appLogger.Errorf("Update appointment %d: %v", id, err)
		return appAPIHelper.ErrorInternal(c, "could not update appointment")
	}
	return appAPIHelper.SuccessResponse(c, "appointment updated", appointment)
}

func unavailable(c fiber.Ctx) error {
	return appAPIHelper.ErrorInternal(c, "appointments are not configured")
}

func RegisterAppointmentRoutes(apiHelper *appAPIHelper.RouterHelpers) {
	public := apiHelper.Router.Group("/api/appointments")
	admin := apiHelper.AdminRouter.Group("/appointments")

	schedule, err := slots.NewSchedule(apiHelper.Config.Appointments)
	if err != nil {
		appLogger.Errorf("Appointment schedule disabled: %v", err)
		public.Get("/slots", unavailable)
		public.Post("/", unavailable)
		admin.Get("/", unavailable)
		admin.Put("/:id/status", unavailable)
		return
	}

	h := &handlers{apiHelper: apiHelper, schedule: schedule}
	public.Get("/slots", h.listSlots)
	public.Post("/", h.book)
	admin.Get("/", h.list)
	admin.Put("/:id/status", h.updateStatus)
}
