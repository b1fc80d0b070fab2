package slot

import "time"

// Default consulting day, in minutes since midnight.
const (
	DefaultDayStart = 10 * 60
	DefaultDayEnd   = 21 * 60
	DefaultStep     = 30
)

// DefaultSlots generates the fallback schedule for a date without custom slots:
// every half hour from 10:00 AM up to, but excluding, 9:00 PM. For today the
// sequence starts at the next half-hour boundary after now. Past dates have no slots.
func DefaultSlots(date DateKey, now time.Time) []TimeSlot {
	day := date.Time(now.Location())
	if day.IsZero() {
		return nil
	}

	today := DateKeyOf(now).Time(now.Location())
	if day.Before(today) {
		return nil
	}

	start := DefaultDayStart
	if day.Equal(today) {
		elapsed := now.Hour()*60 + now.Minute()
		next := (elapsed/DefaultStep + 1) * DefaultStep
		if next > start {
			start = next
		}
	}

	var slots []TimeSlot
	for m := start; m < DefaultDayEnd; m += DefaultStep {
		slots = append(slots, TimeSlotOf(m/60, m%60))
	}
	return slots
}

// Elapsed reports whether the slot has already started at now.
func Elapsed(date DateKey, t TimeSlot, now time.Time) bool {
	return !t.On(date, now.Location()).After(now)
}

// Contains reports whether t appears in slots.
func Contains(slots []TimeSlot, t TimeSlot) bool {
	for _, s := range slots {
		if s == t {
			return true
		}
	}
	return false
}
