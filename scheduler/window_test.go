package scheduler

import (
	"testing"
	"time"

	"github.com/hexisle/island-conquest/models"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestCanActivateNow(t *testing.T) {
	// Thursday 2025-06-05 in UTC+2; the UTC instant is two hours earlier.
	atLocal := func(hour, minute int) time.Time {
		return time.Date(2025, time.June, 5, hour, minute, 0, 0, gameZone)
	}

	tests := []struct {
		name       string
		tournament models.Tournament
		now        time.Time
		want       bool
	}{
		{
			name:       "no restrictions",
			tournament: models.Tournament{},
			now:        atLocal(12, 0),
			want:       true,
		},
		{
			name:       "weekday not excluded",
			tournament: models.Tournament{ExcludedDays: []int{0, 6}},
			now:        atLocal(12, 0),
			want:       true,
		},
		{
			name:       "weekday excluded",
			tournament: models.Tournament{ExcludedDays: []int{4}},
			now:        atLocal(12, 0),
			want:       false,
		},
		{
			name:       "weekday evaluated in game zone not UTC",
			tournament: models.Tournament{ExcludedDays: []int{5}},
			// 23:00 UTC Thursday is already 01:00 Friday in UTC+2.
			now:  time.Date(2025, time.June, 5, 23, 0, 0, 0, time.UTC),
			want: false,
		},
		{
			name: "inside active hours",
			tournament: models.Tournament{
				ActiveHoursStart: strPtr("09:00"),
				ActiveHoursEnd:   strPtr("21:00"),
			},
			now:  atLocal(12, 30),
			want: true,
		},
		{
			name: "exactly at window start",
			tournament: models.Tournament{
				ActiveHoursStart: strPtr("09:00"),
				ActiveHoursEnd:   strPtr("21:00"),
			},
			now:  atLocal(9, 0),
			want: true,
		},
		{
			name: "exactly at window end",
			tournament: models.Tournament{
				ActiveHoursStart: strPtr("09:00"),
				ActiveHoursEnd:   strPtr("21:00"),
			},
			now:  atLocal(21, 0),
			want: false,
		},
		{
			name: "before window",
			tournament: models.Tournament{
				ActiveHoursStart: strPtr("09:00"),
				ActiveHoursEnd:   strPtr("21:00"),
			},
			now:  atLocal(8, 59),
			want: false,
		},
		{
			name: "window evaluated in game zone not UTC",
			tournament: models.Tournament{
				ActiveHoursStart: strPtr("09:00"),
				ActiveHoursEnd:   strPtr("21:00"),
			},
			// 08:00 UTC is 10:00 in UTC+2.
			now:  time.Date(2025, time.June, 5, 8, 0, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "only one bound configured",
			tournament: models.Tournament{
				ActiveHoursStart: strPtr("09:00"),
			},
			now:  atLocal(3, 0),
			want: true,
		},
		{
			name: "unparsable bounds ignored",
			tournament: models.Tournament{
				ActiveHoursStart: strPtr("soon"),
				ActiveHoursEnd:   strPtr("later"),
			},
			now:  atLocal(3, 0),
			want: true,
		},
		{
			name: "excluded day wins over active hours",
			tournament: models.Tournament{
				ExcludedDays:     []int{4},
				ActiveHoursStart: strPtr("09:00"),
				ActiveHoursEnd:   strPtr("21:00"),
			},
			now:  atLocal(12, 0),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanActivateNow(&tt.tournament, tt.now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseClock(t *testing.T) {
	got, err := parseClock("09:30")
	assert.NoError(t, err)
	assert.Equal(t, 9*60+30, got)

	for _, invalid := range []string{"", "9", "24:00", "12:60", "ab:cd"} {
		_, err := parseClock(invalid)
		assert.Error(t, err, "expected %q to be rejected", invalid)
	}
}
