package display

import (
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/goldhelper/history"
	"github.com/pthm-cable/goldhelper/ranking"
	"github.com/pthm-cable/goldhelper/tracking"
)

func TestFormatClock(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{-time.Second, "00:00:00"},
		{59*time.Second + 900*time.Millisecond, "00:00:59"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
		{26 * time.Hour, "26:00:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatClock(tt.d), "%v", tt.d)
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{14230.6, "14,231"},
		{1234567, "1,234,567"},
		{-4500, "-4,500"},
		{2.5, "3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCount(tt.v), "%v", tt.v)
	}
}

func TestFormatMagnitude(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0, "0.0"},
		{950, "950.0"},
		{1000, "1.0K"},
		{1234, "1.2K"},
		{3_450_000, "3.5M"},
		{5_600_000_000, "5.6B"},
		{999_960, "1.0M"},
		{-1234, "-1.2K"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMagnitude(tt.v), "%v", tt.v)
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#009DFF82")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x00, G: 0x9d, B: 0xff, A: 0x82}, c)

	c, err = ParseColor("ff0000")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, c)

	_, err = ParseColor("#12345")
	assert.Error(t, err)
	_, err = ParseColor("#GGGGGGGG")
	assert.Error(t, err)

	def := color.RGBA{R: 1, G: 2, B: 3, A: 4}
	assert.Equal(t, def, ColorOr("nope", def))
}

func TestBuildTexts(t *testing.T) {
	st := tracking.State{
		SessionElapsed: 30 * time.Minute,
		SessionGold:    7000,
		CompletedRuns:  3,
		TotalRunGold:   5000,
		Active: &tracking.ActiveRun{
			Name:    "Crypt",
			Elapsed: 15 * time.Minute,
			Gold:    1200,
		},
		Ranking: []ranking.Entry{
			{Name: "Crypt", AverageRatePerHour: 12345},
			{Name: "Dunes", AverageRatePerHour: 800},
		},
	}

	got := Build(st)
	assert.Equal(t, "Time: 00:30:00\nGained: 7,000\nRate: 14,000/hr", got.Session)
	assert.Equal(t, "Completed: 3\nAvg. Gain: 1,667", got.Map)
	assert.Equal(t, "Area: Crypt", got.AreaTitle)
	assert.Equal(t, "Time: 00:15:00\nGained: 1,200\nRate: 4,800/hr", got.Area)
	assert.Equal(t, "1. Crypt  12.3K/hr\n2. Dunes  800.0/hr", got.Ranking)
}

func TestBuildTextsIdle(t *testing.T) {
	got := Build(tracking.State{})
	assert.Equal(t, "Area: No active map", got.AreaTitle)
	assert.Equal(t, "Time: 00:00:00\nGained: 0\nRate: 0/hr", got.Area)
	assert.Equal(t, "Completed: 0\nAvg. Gain: 0", got.Map)
	assert.Equal(t, "No completed runs", got.Ranking)
}

func TestBars(t *testing.T) {
	st := tracking.State{Recent: []history.Record{
		{Name: "old", GoldGained: 10},
		{Name: "a", GoldGained: 100},
		{Name: "b", GoldGained: 50},
	}}

	bars := Bars(st, 2)
	require.Len(t, bars, 2)
	assert.Equal(t, "1", bars[0].Label)
	assert.Equal(t, "a", bars[0].Name)
	assert.InDelta(t, 1.0, bars[0].Height, 1e-6)
	assert.Equal(t, "b", bars[1].Name)
	assert.InDelta(t, 0.5, bars[1].Height, 1e-6)

	bars = Bars(tracking.State{Recent: st.Recent[:1]}, 3)
	require.Len(t, bars, 3)
	assert.True(t, bars[0].Filled())
	assert.False(t, bars[1].Filled())
	assert.Equal(t, "3", bars[2].Label)
	assert.Zero(t, bars[2].Height)
}

func TestCacheThrottles(t *testing.T) {
	c := NewCache(time.Second, 0)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, c.Update(now, tracking.State{SessionGold: 1}))
	assert.Equal(t, "Gained: 1", splitLine(c.Texts().Session, 1))
	assert.Len(t, c.Bars(), DefaultGraphBars)

	assert.False(t, c.Update(now.Add(500*time.Millisecond), tracking.State{SessionGold: 2}))
	assert.Equal(t, "Gained: 1", splitLine(c.Texts().Session, 1))

	assert.True(t, c.Update(now.Add(time.Second), tracking.State{SessionGold: 3}))
	assert.Equal(t, "Gained: 3", splitLine(c.Texts().Session, 1))

	c.Refresh(now.Add(time.Second), tracking.State{SessionGold: 4})
	assert.Equal(t, "Gained: 4", splitLine(c.Texts().Session, 1))
}

func splitLine(s string, i int) string {
	return strings.Split(s, "\n")[i]
}
