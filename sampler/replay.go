package sampler

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/goldhelper/tracking"
)

// SampleCSV is the recorded form of one sample.
type SampleCSV struct {
	ElapsedUS int64  `csv:"elapsed_us"`
	Active    bool   `csv:"active"`
	Zone      string `csv:"zone"`
	ZoneName  string `csv:"zone_name"`
	Eligible  bool   `csv:"eligible"`
	RawTotal  int64  `csv:"raw_total"`
}

func toCSV(s tracking.Sample) SampleCSV {
	return SampleCSV{
		ElapsedUS: s.Elapsed.Microseconds(),
		Active:    s.InActiveContext,
		Zone:      string(s.Zone),
		ZoneName:  s.ZoneName,
		Eligible:  s.Eligible,
		RawTotal:  s.RawTotal,
	}
}

func (r SampleCSV) sample() tracking.Sample {
	return tracking.Sample{
		InActiveContext: r.Active,
		Zone:            tracking.ZoneID(r.Zone),
		ZoneName:        r.ZoneName,
		Eligible:        r.Eligible,
		RawTotal:        r.RawTotal,
		Elapsed:         time.Duration(r.ElapsedUS) * time.Microsecond,
	}
}

// Replay plays back a recorded session.
type Replay struct {
	rows []SampleCSV
	pos  int
}

// OpenReplay loads a recording written by Recorder.
func OpenReplay(path string) (*Replay, error) {
	if path == "" {
		return nil, fmt.Errorf("sampler: replay path is empty")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sampler: open replay: %w", err)
	}
	defer f.Close()

	var rows []SampleCSV
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("sampler: parse replay %s: %w", path, err)
	}
	return &Replay{rows: rows}, nil
}

// Next returns the next recorded sample, or io.EOF at the end.
func (r *Replay) Next() (tracking.Sample, error) {
	if r.pos >= len(r.rows) {
		return tracking.Sample{}, io.EOF
	}
	row := r.rows[r.pos]
	r.pos++
	return row.sample(), nil
}

// Len returns the number of recorded samples.
func (r *Replay) Len() int { return len(r.rows) }

// Close implements io.Closer.
func (r *Replay) Close() error { return nil }

// Recorder passes samples through from another source and appends each one
// to a CSV file.
type Recorder struct {
	src           Source
	f             *os.File
	headerWritten bool
}

// NewRecorder creates path and records every sample src yields.
func NewRecorder(src Source, path string) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("sampler: create recording: %w", err)
	}
	return &Recorder{src: src, f: f}, nil
}

// Next reads from the wrapped source and records the sample.
func (r *Recorder) Next() (tracking.Sample, error) {
	s, err := r.src.Next()
	if err != nil {
		return s, err
	}

	rows := []SampleCSV{toCSV(s)}
	if !r.headerWritten {
		err = gocsv.Marshal(rows, r.f)
		r.headerWritten = true
	} else {
		err = gocsv.MarshalWithoutHeaders(rows, r.f)
	}
	if err != nil {
		return s, fmt.Errorf("sampler: record sample: %w", err)
	}
	return s, nil
}

// Close closes the recording and the wrapped source.
func (r *Recorder) Close() error {
	fileErr := r.f.Close()
	if err := r.src.Close(); err != nil {
		return err
	}
	return fileErr
}
