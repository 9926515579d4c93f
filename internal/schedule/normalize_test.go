package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    Date
		wantErr bool
	}{
		{name: "canonical", input: "2025-03-10", want: "2025-03-10"},
		{name: "utc timestamp keeps its day", input: "2025-03-10T00:00:00.000Z", want: "2025-03-10"},
		{name: "offset timestamp keeps its day", input: "2025-03-10T23:30:00-05:00", want: "2025-03-10"},
		{name: "bytes", input: []byte("2024-12-31"), want: "2024-12-31"},
		{name: "typed date", input: Date("2025-01-02"), want: "2025-01-02"},
		{name: "local components", input: time.Date(2025, 3, 10, 23, 59, 0, 0, time.FixedZone("UTC-8", -8*3600)), want: "2025-03-10"},
		{name: "driver date", input: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), want: "2025-06-01"},
		{name: "slashes", input: "2025/03/10", wantErr: true},
		{name: "short year", input: "25-03-10", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage before T", input: "nextTuesday", wantErr: true},
		{name: "nil time", input: (*time.Time)(nil), wantErr: true},
		{name: "unsupported type", input: 20250310, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDate(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    Clock
		wantErr bool
	}{
		{name: "short form", input: "09:00", want: "09:00:00"},
		{name: "long form", input: "09:15:30", want: "09:15:30"},
		{name: "last minute", input: "23:59", want: "23:59:00"},
		{name: "midnight", input: "00:00", want: "00:00:00"},
		{name: "driver time", input: time.Date(0, 1, 1, 14, 45, 0, 0, time.UTC), want: "14:45:00"},
		{name: "typed clock", input: Clock("10:30"), want: "10:30:00"},
		{name: "hour out of range", input: "24:00", wantErr: true},
		{name: "minute out of range", input: "09:60", wantErr: true},
		{name: "single digit hour", input: "9:00", wantErr: true},
		{name: "fractional seconds", input: "09:00:00.000", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "unsupported type", input: 900, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeTime(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTime)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for _, in := range []string{"2025-03-10", "2025-03-10T08:00:00Z", "1999-01-01T00:00:00.000+02:00"} {
		once, err := NormalizeDate(in)
		require.NoError(t, err)
		twice, err := NormalizeDate(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice, in)
	}

	for _, in := range []string{"09:00", "09:00:00", "23:59:59"} {
		once, err := NormalizeTime(in)
		require.NoError(t, err)
		twice, err := NormalizeTime(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice, in)
	}
}

func TestScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, Date("2025-03-10"), d)

	var c Clock
	require.NoError(t, c.Scan([]byte("09:15:00")))
	assert.Equal(t, Clock("09:15:00"), c)

	assert.Error(t, d.Scan(nil))
	assert.Error(t, c.Scan("noon"))

	v, err := Clock("09:15:00").Value()
	require.NoError(t, err)
	assert.Equal(t, "09:15:00", v)
}
