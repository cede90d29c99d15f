package history

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// DefaultMax is the history bound used when Options.Max is not positive.
const DefaultMax = 100

// Options configures a Store.
type Options struct {
	Path    string // durable file; empty disables persistence
	Max     int    // maximum records kept (N)
	Persist bool   // write the file on every mutation
	Async   bool   // hand writes to a background Writer
	Logger  *slog.Logger
}

// Store is the bounded, ordered collection of finalized runs. The in-memory
// list is authoritative; the file is a mirror that may lag or fail.
//
// Store is not safe for concurrent use. It is owned by the tick loop.
type Store struct {
	path    string
	max     int
	persist bool
	records []Record
	writer  *Writer
	logger  *slog.Logger
}

// NewStore creates an empty store. Call Load to populate it from disk.
func NewStore(opts Options) *Store {
	if opts.Max <= 0 {
		opts.Max = DefaultMax
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		path:    opts.Path,
		max:     opts.Max,
		persist: opts.Persist && opts.Path != "",
		records: make([]Record, 0, opts.Max),
		logger:  logger,
	}
	if s.persist && opts.Async {
		s.writer = NewWriter(s.apply)
	}
	return s
}

// Load reads the durable file and replaces the in-memory history with it.
// A missing file yields an empty history; malformed content is logged and
// also yields an empty history. Records without a positive gain are skipped
// and excess records are dropped from the front.
func (s *Store) Load() []Record {
	s.Flush()
	s.records = s.records[:0]
	if s.path == "" {
		return s.Records()
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Error("failed to read run history", "path", s.path, "error", err)
		}
		return s.Records()
	}

	records, err := Decode(data)
	if err != nil {
		s.logger.Error("failed to parse run history", "path", s.path, "error", err)
		return s.Records()
	}

	kept := records[:0]
	for _, r := range records {
		if r.GoldGained <= 0 {
			s.logger.Warn("skipping run without gold gain", "path", s.path, "run", r)
			continue
		}
		kept = append(kept, r)
	}
	records = kept

	if len(records) > s.max {
		records = records[len(records)-s.max:]
	}
	s.records = append(s.records, records...)

	s.logger.Info("run history loaded", "path", s.path, "records", len(s.records))
	return s.Records()
}

// Append adds a record at the end, evicting from the front beyond the bound,
// and mirrors the result to disk when persistence is enabled.
func (s *Store) Append(r Record) {
	s.records = append(s.records, r)
	if over := len(s.records) - s.max; over > 0 {
		// Shift in place so the backing array does not grow without bound
		n := copy(s.records, s.records[over:])
		clear(s.records[n:])
		s.records = s.records[:n]
	}

	if s.persist {
		s.write(writeOp{records: s.Records()})
	}
}

// Save writes records to the durable file. Failures are logged and do not
// affect the in-memory history.
func (s *Store) Save(records []Record) {
	if s.path == "" {
		return
	}
	if err := writeFile(s.path, records); err != nil {
		s.logger.Error("failed to save run history", "path", s.path, "error", err)
	}
}

// Reset clears the history and deletes the durable file.
func (s *Store) Reset() {
	s.records = s.records[:0]
	if s.path == "" {
		return
	}
	s.write(writeOp{remove: true})
}

// Records returns a copy of the history, oldest first.
func (s *Store) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	return len(s.records)
}

// Max returns the configured bound.
func (s *Store) Max() int {
	return s.max
}

// Path returns the durable file path.
func (s *Store) Path() string {
	return s.path
}

// Flush blocks until queued background writes have reached the disk.
func (s *Store) Flush() {
	if s.writer != nil {
		s.writer.Flush()
	}
}

// Close drains and stops the background writer, if any.
func (s *Store) Close() error {
	if s.writer != nil {
		s.writer.Close()
	}
	return nil
}

func (s *Store) write(op writeOp) {
	if s.writer != nil {
		s.writer.submit(op)
		return
	}
	s.apply(op)
}

// apply performs a single file operation. It runs on the tick goroutine, or
// on the writer goroutine when async saving is enabled.
func (s *Store) apply(op writeOp) {
	if !op.remove {
		s.Save(op.records)
		return
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Error("failed to delete run history", "path", s.path, "error", err)
		return
	}
	s.logger.Info("run history deleted", "path", s.path)
}

// writeFile replaces path atomically via a temp file in the same directory.
func writeFile(path string, records []Record) error {
	data, err := Encode(records)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
