// Package history keeps the bounded, durable list of completed runs.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// ErrCorrupt is returned by Decode when the durable representation is not a
// JSON array of run records.
var ErrCorrupt = errors.New("history: malformed run history")

// Record is a finalized run. Records are never mutated after creation.
type Record struct {
	Name        string
	GoldGained  int64
	Elapsed     time.Duration
	CompletedAt time.Time
}

// GoldPerHour returns the run's gain rate, or 0 for a zero-length run.
func (r Record) GoldPerHour() float64 {
	hours := r.Elapsed.Hours()
	if hours <= 0 {
		return 0
	}
	return float64(r.GoldGained) / hours
}

// Equal reports whether two records describe the same run. Completion times
// are compared as instants.
func (r Record) Equal(o Record) bool {
	return r.Name == o.Name &&
		r.GoldGained == o.GoldGained &&
		r.Elapsed == o.Elapsed &&
		r.CompletedAt.Equal(o.CompletedAt)
}

// LogValue implements slog.LogValuer for structured logging.
func (r Record) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", r.Name),
		slog.Int64("gold", r.GoldGained),
		slog.String("elapsed", FormatDuration(r.Elapsed)),
		slog.Float64("gold_per_hour", r.GoldPerHour()),
	)
}

// recordJSON is the on-disk representation of a record. The time fields are
// kept raw so a value of the wrong JSON type only loses that field.
type recordJSON struct {
	Name           string          `json:"Name"`
	GoldGained     int64           `json:"GoldGained"`
	ElapsedTime    json.RawMessage `json:"ElapsedTime"`
	CompletionTime json.RawMessage `json:"CompletionTime"`
}

// localLayout is accepted for timestamps written without a zone offset.
const localLayout = "2006-01-02T15:04:05.999999999"

// MarshalJSON encodes the record in the durable file format.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		Name:           r.Name,
		GoldGained:     r.GoldGained,
		ElapsedTime:    rawString(FormatDuration(r.Elapsed)),
		CompletionTime: rawString(r.CompletedAt.Format(time.RFC3339Nano)),
	})
}

// UnmarshalJSON decodes a record. Durations and timestamps that are missing,
// not strings, or unparsable decode to their zero values instead of failing
// the record.
func (r *Record) UnmarshalJSON(data []byte) error {
	var rj recordJSON
	if err := json.Unmarshal(data, &rj); err != nil {
		return err
	}

	elapsed, err := ParseDuration(stringValue(rj.ElapsedTime))
	if err != nil {
		elapsed = 0
	}

	*r = Record{
		Name:        rj.Name,
		GoldGained:  rj.GoldGained,
		Elapsed:     elapsed,
		CompletedAt: parseTimestamp(stringValue(rj.CompletionTime)),
	}
	return nil
}

func rawString(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}

// stringValue returns raw as a string, or "" when it is not a JSON string.
func stringValue(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.ParseInLocation(localLayout, s, time.Local); err == nil {
		return t
	}
	return time.Time{}
}

// Encode serializes records oldest-first as an indented JSON array.
func Encode(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return json.MarshalIndent(records, "", "  ")
}

// Decode parses the durable representation. Empty input decodes to an empty
// history; anything that is not a JSON array of records yields ErrCorrupt.
func Decode(data []byte) ([]Record, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return []Record{}, nil
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// FormatDuration renders d as [-][d.]hh:mm:ss[.fffffffff]. The fraction is
// written only when non-zero, with trailing zeros trimmed.
func FormatDuration(d time.Duration) string {
	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
		d = -d
	}

	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	frac := d - s*time.Second

	if days > 0 {
		b.WriteString(strconv.FormatInt(int64(days), 10))
		b.WriteByte('.')
	}
	fmt.Fprintf(&b, "%02d:%02d:%02d", h, m, s)
	if frac > 0 {
		digits := strings.TrimRight(fmt.Sprintf("%09d", int64(frac)), "0")
		b.WriteByte('.')
		b.WriteString(digits)
	}
	return b.String()
}

// ParseDuration parses the format written by FormatDuration. Fractions of up
// to nine digits are accepted.
func ParseDuration(s string) (time.Duration, error) {
	orig := s
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("history: invalid duration %q", orig)
	}

	var days int64
	hourPart := parts[0]
	if i := strings.IndexByte(hourPart, '.'); i >= 0 {
		n, err := parseField(hourPart[:i], -1)
		if err != nil {
			return 0, fmt.Errorf("history: invalid duration %q: days: %w", orig, err)
		}
		days = n
		hourPart = hourPart[i+1:]
	}

	hours, err := parseField(hourPart, -1)
	if err != nil {
		return 0, fmt.Errorf("history: invalid duration %q: hours: %w", orig, err)
	}
	if days > 0 && hours > 23 {
		return 0, fmt.Errorf("history: invalid duration %q: hours out of range", orig)
	}
	minutes, err := parseField(parts[1], 59)
	if err != nil {
		return 0, fmt.Errorf("history: invalid duration %q: minutes: %w", orig, err)
	}

	secPart := parts[2]
	var nanos int64
	if i := strings.IndexByte(secPart, '.'); i >= 0 {
		fracPart := secPart[i+1:]
		if fracPart == "" || len(fracPart) > 9 {
			return 0, fmt.Errorf("history: invalid duration %q: fraction", orig)
		}
		n, err := parseField(fracPart, -1)
		if err != nil {
			return 0, fmt.Errorf("history: invalid duration %q: fraction: %w", orig, err)
		}
		for range 9 - len(fracPart) {
			n *= 10
		}
		nanos = n
		secPart = secPart[:i]
	}
	secs, err := parseField(secPart, 59)
	if err != nil {
		return 0, fmt.Errorf("history: invalid duration %q: seconds: %w", orig, err)
	}

	d := time.Duration(days)*24*time.Hour +
		time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(secs)*time.Second +
		time.Duration(nanos)
	if neg {
		d = -d
	}
	return d, nil
}

// parseField parses a non-negative decimal field. max < 0 disables the bound.
func parseField(s string, max int64) (int64, error) {
	if s == "" {
		return 0, errors.New("empty field")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("non-digit %q", c)
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if max >= 0 && n > max {
		return 0, fmt.Errorf("%d out of range", n)
	}
	return n, nil
}
