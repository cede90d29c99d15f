package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/goldhelper/history"
	"github.com/pthm-cable/goldhelper/tracking"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the session state at a notable moment.
type Snapshot struct {
	Version int       `json:"version"`
	ID      string    `json:"id"`
	Tick    int64     `json:"tick"`
	TakenAt time.Time `json:"taken_at"`

	SessionElapsed string `json:"session_elapsed"` // history duration format
	SessionGold    int64  `json:"session_gold"`
	CompletedRuns  int    `json:"completed_runs"`
	TotalRunGold   int64  `json:"total_run_gold"`

	Active  *ActiveRunJSON `json:"active,omitempty"`
	Ranking []RankJSON     `json:"ranking"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// ActiveRunJSON is the JSON form of the open run.
type ActiveRunJSON struct {
	Zone    string `json:"zone"`
	Name    string `json:"name"`
	Elapsed string `json:"elapsed"`
	Gold    int64  `json:"gold"`
}

// RankJSON is the JSON form of one ranking entry.
type RankJSON struct {
	Name        string  `json:"name"`
	GoldPerHour float64 `json:"gold_per_hour"`
	Runs        int     `json:"runs"`
}

// NewSnapshot captures st. bookmark may be nil.
func NewSnapshot(tick int64, now time.Time, st tracking.State, bookmark *Bookmark) *Snapshot {
	s := &Snapshot{
		Version:        SnapshotVersion,
		ID:             uuid.NewString(),
		Tick:           tick,
		TakenAt:        now,
		SessionElapsed: history.FormatDuration(st.SessionElapsed),
		SessionGold:    st.SessionGold,
		CompletedRuns:  st.CompletedRuns,
		TotalRunGold:   st.TotalRunGold,
		Ranking:        make([]RankJSON, len(st.Ranking)),
		Bookmark:       bookmark,
	}
	if st.Active != nil {
		s.Active = &ActiveRunJSON{
			Zone:    string(st.Active.Zone),
			Name:    st.Active.Name,
			Elapsed: history.FormatDuration(st.Active.Elapsed),
			Gold:    st.Active.Gold,
		}
	}
	for i, e := range st.Ranking {
		s.Ranking[i] = RankJSON{Name: e.Name, GoldPerHour: e.AverageRatePerHour, Runs: e.Runs}
	}
	return s
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
