package display

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatClock renders d as hh:mm:ss. Hours are not wrapped at a day.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total/60%60, total%60)
}

// FormatCount renders v rounded to an integer with thousands separators,
// e.g. 14230.6 -> "14,231".
func FormatCount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	n := int64(math.Round(v))
	neg := n < 0
	if neg {
		n = -n
	}

	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

var magnitudes = []struct {
	scale  float64
	suffix string
}{
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
	{1, ""},
}

// FormatMagnitude renders v with one decimal and a K/M/B suffix from 1000
// upwards, e.g. 1234 -> "1.2K", 950 -> "950.0".
func FormatMagnitude(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0.0"
	}
	abs := math.Abs(v)
	for i, m := range magnitudes {
		if abs < m.scale && m.scale > 1 {
			continue
		}
		scaled := math.Round(v/m.scale*10) / 10
		// 999.96K rounds to 1000.0K; show it as 1.0M instead
		if math.Abs(scaled) >= 1000 && i > 0 {
			up := magnitudes[i-1]
			return fmt.Sprintf("%.1f%s", math.Round(v/up.scale*10)/10, up.suffix)
		}
		return fmt.Sprintf("%.1f%s", scaled, m.suffix)
	}
	return fmt.Sprintf("%.1f", v)
}

// ParseColor parses "#RRGGBBAA" or "#RRGGBB" (opaque).
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 6:
		hex += "ff"
	case 8:
	default:
		return color.RGBA{}, fmt.Errorf("color %q: want #RRGGBB or #RRGGBBAA", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// ColorOr parses s and falls back to def when it is malformed.
func ColorOr(s string, def color.RGBA) color.RGBA {
	c, err := ParseColor(s)
	if err != nil {
		return def
	}
	return c
}
