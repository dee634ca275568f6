package slots

import (
	"testing"
	"time"

	"assistante-suite/config"

	"github.com/stretchr/testify/require"
)

func newSchedule(t *testing.T) *Schedule {
	t.Helper()
	s, err := NewSchedule(config.AppointmentsConfig{
		SlotMinutes: 60,
		DaysAhead:   14,
		Timezone:    "Europe/Paris",
		OpeningHours: map[string]config.OpeningHours{
			"monday":  {Start: "09:00", End: "12:00"},
			"Tuesday": {Start: "14:00", End: "16:30"},
		},
	})
	require.NoError(t, err)
	return s
}

func labels(slots []Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Label)
	}
	return out
}

func TestSlots(t *testing.T) {
	s := newSchedule(t)
	// Sunday 2024-06-09, 20:00 in Paris
	now := time.Date(2024, 6, 9, 20, 0, 0, 0, s.Location)

	t.Run("open day", func(t *testing.T) {
		day, err := s.ParseDate("2024-06-10")
		require.NoError(t, err)
		got, err := s.Slots(day, now, nil)
		require.NoError(t, err)
		require.Equal(t, []string{"09:00", "10:00", "11:00"}, labels(got))
		require.Equal(t, got[0].Start.Add(time.Hour), got[0].End)
	})

	t.Run("partial slot at closing is dropped", func(t *testing.T) {
		day, _ := s.ParseDate("2024-06-11")
		got, err := s.Slots(day, now, nil)
		require.NoError(t, err)
		require.Equal(t, []string{"14:00", "15:00"}, labels(got))
	})

	t.Run("closed day", func(t *testing.T) {
		day, _ := s.ParseDate("2024-06-12")
		got, err := s.Slots(day, now, nil)
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("bookings remove overlapping slots", func(t *testing.T) {
		day, _ := s.ParseDate("2024-06-10")
		booked := []Booking{{Start: day.Add(9*time.Hour + 30*time.Minute), Duration: 30 * time.Minute}}
		got, err := s.Slots(day, now, booked)
		require.NoError(t, err)
		require.Equal(t, []string{"10:00", "11:00"}, labels(got))
	})

	t.Run("past slots are hidden", func(t *testing.T) {
		day, _ := s.ParseDate("2024-06-10")
		later := time.Date(2024, 6, 10, 10, 0, 0, 0, s.Location)
		got, err := s.Slots(day, later, nil)
		require.NoError(t, err)
		require.Equal(t, []string{"11:00"}, labels(got))
	})

	t.Run("outside the booking window", func(t *testing.T) {
		past, _ := s.ParseDate("2024-06-03")
		_, err := s.Slots(past, now, nil)
		require.ErrorIs(t, err, ErrOutOfRange)

		far, _ := s.ParseDate("2024-06-24")
		_, err = s.Slots(far, now, nil)
		require.ErrorIs(t, err, ErrOutOfRange)
	})
}

func TestCheck(t *testing.T) {
	s := newSchedule(t)
	now := time.Date(2024, 6, 9, 20, 0, 0, 0, s.Location)

	start, err := s.At("2024-06-10", "10:00")
	require.NoError(t, err)
	require.NoError(t, s.Check(start, now, nil))
	require.ErrorIs(t, s.Check(start, now, []Booking{{Start: start, Duration: time.Hour}}), ErrSlotTaken)

	offGrid, err := s.At("2024-06-10", "10:15")
	require.NoError(t, err)
	require.ErrorIs(t, s.Check(offGrid, now, nil), ErrSlotTaken)
}

func TestParseErrors(t *testing.T) {
	s := newSchedule(t)
	_, err := s.ParseDate("10/06/2024")
	require.ErrorIs(t, err, ErrInvalidDate)
	_, err = s.At("2024-06-10", "9h")
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestNewScheduleRejectsBadConfig(t *testing.T) {
	_, err := NewSchedule(config.AppointmentsConfig{SlotMinutes: 30, Timezone: "UTC",
		OpeningHours: map[string]config.OpeningHours{"funday": {Start: "09:00", End: "10:00"}}})
	require.ErrorIs(t, err, ErrBadSchedule)

	_, err = NewSchedule(config.AppointmentsConfig{SlotMinutes: 30, Timezone: "UTC",
		OpeningHours: map[string]config.OpeningHours{"monday": {Start: "10:00", End: "09:00"}}})
	require.ErrorIs(t, err, ErrBadSchedule)

	_, err = NewSchedule(config.AppointmentsConfig{SlotMinutes: 0, Timezone: "UTC"})
	require.ErrorIs(t, err, ErrBadSchedule)
}
