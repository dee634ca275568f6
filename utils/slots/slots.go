package slots

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	_ "time/tzdata"

	"assistante-suite/config"
)

const DateLayout = "2006-01-02"

var (
	ErrInvalidDate = errors.New("invalid date")
	ErrOutOfRange  = errors.New("date outside the booking window")
	ErrSlotTaken   = errors.New("slot is not available")
	ErrBadSchedule = errors.New("invalid opening hours")
)

// Window is one opening period, as offsets from midnight.
type Window struct {
	Start time.Duration
	End   time.Duration
}

type Schedule struct {
	Location   *time.Location
	SlotLength time.Duration
	DaysAhead  int
	Hours      map[time.Weekday]Window
}

type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

// Booking is an already taken time range.
type Booking struct {
	Start    time.Time
	Duration time.Duration
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func NewSchedule(cfg config.AppointmentsConfig) (*Schedule, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrBadSchedule, cfg.Timezone, err)
	}
	if cfg.SlotMinutes <= 0 {
		return nil, fmt.Errorf("%w: slot length must be positive", ErrBadSchedule)
	}
	s := &Schedule{
		Location:   loc,
		SlotLength: time.Duration(cfg.SlotMinutes) * time.Minute,
		DaysAhead:  cfg.DaysAhead,
		Hours:      make(map[time.Weekday]Window, len(cfg.OpeningHours)),
	}
	for day, hours := range cfg.OpeningHours {
		wd, ok := weekdays[strings.ToLower(day)]
		if !ok {
			return nil, fmt.Errorf("%w: unknown weekday %q", ErrBadSchedule, day)
		}
		start, err := parseClock(hours.Start)
		if err != nil {
			return nil, err
		}
		end, err := parseClock(hours.End)
		if err != nil {
			return nil, err
		}
		if end <= start {
			return nil, fmt.Errorf("%w: %s closes before it opens", ErrBadSchedule, day)
		}
		s.Hours[wd] = Window{Start: start, End: end}
	}
	return s, nil
}

func parseClock(v string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%w: time %q", ErrBadSchedule, v)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// ParseDate reads a YYYY-MM-DD date as midnight in the schedule's zone.
func (s *Schedule) ParseDate(date string) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), s.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return day, nil
}

// At combines a date and a HH:MM clock time.
func (s *Schedule) At(date, clock string) (time.Time, error) {
	day, err := s.ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	offset, err := parseClock(clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time %q", ErrInvalidDate, clock)
	}
	return atOffset(day, offset, s.Location), nil
}

// atOffset keeps wall-clock times right across DST changes.
func atOffset(day time.Time, offset time.Duration, loc *time.Location) time.Time {
	h := int(offset / time.Hour)
	m := int((offset % time.Hour) / time.Minute)
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, loc)
}

// DayBounds returns the [start, end) range of the day containing t.
func (s *Schedule) DayBounds(t time.Time) (time.Time, time.Time) {
	local := t.In(s.Location)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.Location)
	return start, start.AddDate(0, 0, 1)
}

func (s *Schedule) inRange(day, now time.Time) bool {
	today, _ := s.DayBounds(now)
	last := today.AddDate(0, 0, s.DaysAhead)
	return !day.Before(today) && !day.After(last)
}

// Slots lists the free slots of day. Slots that start before now or overlap a
// booking are left out. A day without opening hours has no slots.
func (s *Schedule) Slots(day, now time.Time, booked []Booking) ([]Slot, error) {
	day, _ = s.DayBounds(day)
	if !s.inRange(day, now) {
		return nil, fmt.Errorf("%w: %s", ErrOutOfRange, day.Format(DateLayout))
	}
	window, open := s.Hours[day.Weekday()]
	if !open {
		return []Slot{}, nil
	}

	sorted := append([]Booking(nil), booked...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	out := make([]Slot, 0, int((window.End-window.Start)/s.SlotLength))
	for offset := window.Start; offset+s.SlotLength <= window.End; offset += s.SlotLength {
		start := atOffset(day, offset, s.Location)
		end := start.Add(s.SlotLength)
		if !start.After(now) || overlaps(start, end, sorted) {
			continue
		}
		out = append(out, Slot{Start: start, End: end, Label: start.Format("15:04")})
	}
	return out, nil
}

func overlaps(start, end time.Time, booked []Booking) bool {
	for _, b := range booked {
		bEnd := b.Start.Add(b.Duration)
		if start.Before(bEnd) && b.Start.Before(end) {
			return true
		}
	}
	return false
}

// Check reports whether start is a free slot.
func (s *Schedule) Check(start, now time.Time, booked []Booking) error {
	free, err := s.Slots(start, now, booked)
	if err != nil {
		return err
	}
	for _, slot := range free {
		if slot.Start.Equal(start) {
			return nil
		}
	}
	return ErrSlotTaken
}
