package slot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    DateKey
		wantErr bool
	}{
		{name: "canonical", input: "5_8_2025", want: "5_8_2025"},
		{name: "zero padded", input: "05_08_2025", want: "5_8_2025"},
		{name: "surrounding space", input: " 12_11_2025 ", want: "12_11_2025"},
		{name: "leap day", input: "29_2_2024", want: "29_2_2024"},
		{name: "not a leap year", input: "29_2_2025", wantErr: true},
		{name: "day overflow", input: "31_4_2025", wantErr: true},
		{name: "month overflow", input: "1_13_2025", wantErr: true},
		{name: "iso date", input: "2025-08-05", wantErr: true},
		{name: "two digit year", input: "5_8_25", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDateKey(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDateKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateKeyOfAndTime(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	at := time.Date(2025, time.August, 5, 23, 45, 0, 0, loc)

	key := DateKeyOf(at)
	assert.Equal(t, DateKey("5_8_2025"), key)
	assert.Equal(t, time.Date(2025, time.August, 5, 0, 0, 0, 0, loc), key.Time(loc))
	assert.True(t, DateKey("garbage").Time(loc).IsZero())
}

func TestParseTimeSlot(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeSlot
		wantErr bool
	}{
		{name: "canonical", input: "2:30 PM", want: "2:30 PM"},
		{name: "zero padded lower case", input: "02:30 pm", want: "2:30 PM"},
		{name: "no space", input: "10:00AM", want: "10:00 AM"},
		{name: "noon", input: "12:00 pm", want: "12:00 PM"},
		{name: "hour out of range", input: "13:00 PM", wantErr: true},
		{name: "zero hour", input: "0:30 AM", wantErr: true},
		{name: "minute out of range", input: "2:60 PM", wantErr: true},
		{name: "single minute digit", input: "2:5 PM", wantErr: true},
		{name: "24 hour clock", input: "14:30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeSlot(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeSlot)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeSlotClock(t *testing.T) {
	tests := []struct {
		hour, minute int
		want         TimeSlot
		minutes      int
	}{
		{0, 0, "12:00 AM", 0},
		{9, 5, "9:05 AM", 545},
		{12, 30, "12:30 PM", 750},
		{21, 0, "9:00 PM", 1260},
	}

	for _, tt := range tests {
		got := TimeSlotOf(tt.hour, tt.minute)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.minutes, got.Minutes())
	}

	assert.Equal(t, -1, TimeSlot("noon").Minutes())
}

func TestTimeSlotOn(t *testing.T) {
	loc := time.UTC
	got := TimeSlot("2:30 PM").On("5_8_2025", loc)
	assert.Equal(t, time.Date(2025, time.August, 5, 14, 30, 0, 0, loc), got)
}

func TestDefaultSlots(t *testing.T) {
	loc := time.UTC
	today := "5_8_2025"

	tests := []struct {
		name      string
		date      DateKey
		now       time.Time
		wantFirst TimeSlot
		wantLast  TimeSlot
		wantLen   int
	}{
		{
			name:      "future day starts at ten",
			date:      "6_8_2025",
			now:       time.Date(2025, time.August, 5, 14, 10, 0, 0, loc),
			wantFirst: "10:00 AM",
			wantLast:  "8:30 PM",
			wantLen:   22,
		},
		{
			name:      "today before opening",
			date:      DateKey(today),
			now:       time.Date(2025, time.August, 5, 8, 0, 0, 0, loc),
			wantFirst: "10:00 AM",
			wantLast:  "8:30 PM",
			wantLen:   22,
		},
		{
			name:      "today rounds up to next half hour",
			date:      DateKey(today),
			now:       time.Date(2025, time.August, 5, 14, 10, 0, 0, loc),
			wantFirst: "2:30 PM",
			wantLast:  "8:30 PM",
			wantLen:   13,
		},
		{
			name:      "today on a boundary skips the current slot",
			date:      DateKey(today),
			now:       time.Date(2025, time.August, 5, 14, 30, 0, 0, loc),
			wantFirst: "3:00 PM",
			wantLast:  "8:30 PM",
			wantLen:   12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultSlots(tt.date, tt.now)
			require.Len(t, got, tt.wantLen)
			assert.Equal(t, tt.wantFirst, got[0])
			assert.Equal(t, tt.wantLast, got[len(got)-1])
		})
	}

	t.Run("today after closing", func(t *testing.T) {
		assert.Empty(t, DefaultSlots(DateKey(today), time.Date(2025, time.August, 5, 21, 5, 0, 0, loc)))
	})

	t.Run("past day", func(t *testing.T) {
		assert.Nil(t, DefaultSlots("4_8_2025", time.Date(2025, time.August, 5, 9, 0, 0, 0, loc)))
	})
}

func TestElapsed(t *testing.T) {
	loc := time.UTC
	date := DateKey("5_8_2025")

	assert.True(t, Elapsed(date, "2:30 PM", time.Date(2025, time.August, 5, 14, 30, 0, 0, loc)))
	assert.False(t, Elapsed(date, "2:30 PM", time.Date(2025, time.August, 5, 14, 29, 0, 0, loc)))
	assert.False(t, Elapsed("6_8_2025", "10:00 AM", time.Date(2025, time.August, 5, 23, 0, 0, 0, loc)))
}

func TestContains(t *testing.T) {
	slots := []TimeSlot{"10:00 AM", "10:30 AM"}
	assert.True(t, Contains(slots, "10:30 AM"))
	assert.False(t, Contains(slots, "10:30 PM"))
}
