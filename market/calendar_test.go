package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayKeyUsesEasternTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"late utc is previous eastern day", time.Date(2024, 3, 5, 2, 30, 0, 0, time.UTC), "2024-03-04"},
		{"midday utc", time.Date(2024, 3, 5, 15, 0, 0, 0, time.UTC), "2024-03-05"},
		{"summer offset", time.Date(2024, 7, 1, 3, 59, 0, 0, time.UTC), "2024-06-30"},
		{"summer after midnight", time.Date(2024, 7, 1, 4, 0, 0, 0, time.UTC), "2024-07-01"},
		{"other offset same instant", time.Date(2024, 3, 5, 11, 30, 0, 0, time.FixedZone("IST", 19800)), "2024-03-05"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DayKey(tt.in))
		})
	}
}

func TestNewCalendar(t *testing.T) {
	t.Parallel()

	c, err := NewCalendar("Asia/Tokyo")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", c.DayKey(time.Date(2024, 3, 4, 16, 0, 0, 0, time.UTC)))

	def, err := NewCalendar("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTimezone, def.Location().String())

	_, err = NewCalendar("Not/AZone")
	assert.Error(t, err)
}

func TestDayBounds(t *testing.T) {
	t.Parallel()

	start, end, err := Calendar{}.DayBounds("2024-03-10")
	require.NoError(t, err)
	// DST starts on 2024-03-10 in New York, so the day is 23 hours long
	assert.Equal(t, 23*time.Hour, end.Sub(start))
	assert.Equal(t, "2024-03-10", DayKey(start))

	_, _, err = Calendar{}.DayBounds("03/10/2024")
	assert.Error(t, err)
}
