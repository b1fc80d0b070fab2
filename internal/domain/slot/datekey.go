package slot

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidDateKey = errors.New("invalid date key")

var dateKeyPattern = regexp.MustCompile(`^(\d{1,2})_(\d{1,2})_(\d{4})$`)

// DateKey identifies a calendar day as "<day>_<month>_<year>" without zero padding,
// e.g. "5_8_2025" for 5 August 2025.
type DateKey string

// ParseDateKey validates s and returns its canonical form. "05_08_2025" and
// "5_8_2025" yield the same key.
func ParseDateKey(s string) (DateKey, error) {
	day, month, year, err := splitDateKey(strings.TrimSpace(s))
	if err != nil {
		return "", err
	}
	return formatDateKey(day, month, year), nil
}

// DateKeyOf returns the key of the calendar day t falls on in t's location.
func DateKeyOf(t time.Time) DateKey {
	return formatDateKey(t.Day(), int(t.Month()), t.Year())
}

// Time returns midnight of the day in loc. Keys that fail to parse return the zero time.
func (k DateKey) Time(loc *time.Location) time.Time {
	day, month, year, err := splitDateKey(string(k))
	if err != nil {
		return time.Time{}
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
}

func (k DateKey) String() string {
	return string(k)
}

func formatDateKey(day, month, year int) DateKey {
	return DateKey(fmt.Sprintf("%d_%d_%d", day, month, year))
}

func splitDateKey(s string) (int, int, int, error) {
	m := dateKeyPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDateKey, s)
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	// time.Date normalises overflow, so a round trip catches 31_2_2025 and friends.
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDateKey, s)
	}

	return day, month, year, nil
}
