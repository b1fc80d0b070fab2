package slot

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidTimeSlot = errors.New("invalid time slot")

var timeSlotPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*([AaPp])[Mm]$`)

// TimeSlot is a 12-hour clock time such as "2:30 PM". Canonical slots have no
// hour padding, two minute digits, one space and an upper-case suffix.
type TimeSlot string

// ParseTimeSlot validates s and returns its canonical form.
func ParseTimeSlot(s string) (TimeSlot, error) {
	m := timeSlotPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeSlot, s)
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour < 1 || hour > 12 || minute > 59 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeSlot, s)
	}

	return TimeSlot(fmt.Sprintf("%d:%02d %sM", hour, minute, strings.ToUpper(m[3]))), nil
}

// TimeSlotOf formats a 24-hour clock time.
func TimeSlotOf(hour, minute int) TimeSlot {
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return TimeSlot(fmt.Sprintf("%d:%02d %s", h, minute, suffix))
}

// Minutes returns the minutes since midnight, or -1 if the slot does not parse.
func (t TimeSlot) Minutes() int {
	m := timeSlotPattern.FindStringSubmatch(string(t))
	if m == nil {
		return -1
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])

	hour %= 12
	if strings.EqualFold(m[3], "p") {
		hour += 12
	}
	return hour*60 + minute
}

// On returns the instant the slot starts on the given day.
func (t TimeSlot) On(date DateKey, loc *time.Location) time.Time {
	return date.Time(loc).Add(time.Duration(t.Minutes()) * time.Minute)
}

func (t TimeSlot) String() string {
	return string(t)
}
