package history

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"zero", 0, "00:00:00"},
		{"minutes", 4*time.Minute + 12*time.Second, "00:04:12"},
		{"hours", 3*time.Hour + 5*time.Second, "03:00:05"},
		{"fraction", 1500 * time.Millisecond, "00:00:01.5"},
		{"nanos", time.Second + time.Nanosecond, "00:00:01.000000001"},
		{"days", 26*time.Hour + 30*time.Minute, "1.02:30:00"},
		{"negative", -90 * time.Second, "-00:01:30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.d))
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"00:04:12", 4*time.Minute + 12*time.Second},
		{"1.02:30:00", 26*time.Hour + 30*time.Minute},
		{"00:00:01.5", 1500 * time.Millisecond},
		{"00:00:01.1234567", time.Second + 123456700*time.Nanosecond},
		{"-00:01:30", -90 * time.Second},
		{" 01:00:00 ", time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDurationRejects(t *testing.T) {
	for _, in := range []string{"", "garbage", "12:00", "00:61:00", "00:00:75", "1.25:00:00", "00:00:01.", "00:00:01.1234567890", "aa:bb:cc"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseDuration(in)
			assert.Error(t, err)
		})
	}
}

func TestDurationRoundTrip(t *testing.T) {
	for _, d := range []time.Duration{
		0,
		time.Nanosecond,
		252 * time.Second,
		49*time.Hour + 59*time.Minute + 59*time.Second + 999999999,
		3*time.Minute + 7*time.Millisecond,
	} {
		got, err := ParseDuration(FormatDuration(d))
		require.NoError(t, err)
		assert.Equal(t, d, got, "round trip of %v", d)
	}
}

func TestRecordGoldPerHour(t *testing.T) {
	assert.InDelta(t, 200.0, Record{GoldGained: 100, Elapsed: 30 * time.Minute}.GoldPerHour(), 1e-9)
	assert.Zero(t, Record{GoldGained: 100}.GoldPerHour())
}

func TestRecordJSONFormat(t *testing.T) {
	rec := Record{
		Name:        "Dunes",
		GoldGained:  14230,
		Elapsed:     4*time.Minute + 12*time.Second,
		CompletedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Name":"Dunes","GoldGained":14230,"ElapsedTime":"00:04:12","CompletionTime":"2024-01-01T12:00:00Z"}`, string(data))
}

func TestRecordJSONLenientFields(t *testing.T) {
	var rec Record
	err := json.Unmarshal([]byte(`{"Name":"Crypt","GoldGained":10,"ElapsedTime":"not a time","CompletionTime":"2024-01-01T12:00:00"}`), &rec)
	require.NoError(t, err)

	assert.Equal(t, "Crypt", rec.Name)
	assert.Zero(t, rec.Elapsed)
	assert.True(t, rec.CompletedAt.Equal(time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)))
}

func TestRecordJSONWrongTypedFields(t *testing.T) {
	for _, in := range []string{
		`{"Name":"Crypt","GoldGained":500,"ElapsedTime":252,"CompletionTime":17}`,
		`{"Name":"Crypt","GoldGained":500,"ElapsedTime":null,"CompletionTime":null}`,
		`{"Name":"Crypt","GoldGained":500,"ElapsedTime":{"s":1},"CompletionTime":[1]}`,
		`{"Name":"Crypt","GoldGained":500}`,
	} {
		t.Run(in, func(t *testing.T) {
			var rec Record
			require.NoError(t, json.Unmarshal([]byte(in), &rec))
			assert.Equal(t, "Crypt", rec.Name)
			assert.Equal(t, int64(500), rec.GoldGained)
			assert.Zero(t, rec.Elapsed)
			assert.True(t, rec.CompletedAt.IsZero())
		})
	}
}

func TestDecode(t *testing.T) {
	records, err := Decode([]byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = Decode([]byte("[]"))
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	_, err = Decode([]byte(`{"Name":"not an array"}`))
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = Decode([]byte(`[{"Name":`))
	assert.ErrorIs(t, err, ErrCorrupt)
}
