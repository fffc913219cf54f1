package memengine

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Snapshot is the persisted form of all records.
type Snapshot struct {
	Generation uint64                    `json:"generation"`
	Calendars  []*schedulestore.Calendar `json:"calendars"`
	Events     []*schedulestore.Event    `json:"events"`
	Logs       []*schedulestore.Log      `json:"logs"`
}

// Records returns all records of the snapshot.
func (s Snapshot) Records() schedulestore.Records {
	records := make(schedulestore.Records, 0, len(s.Calendars)+len(s.Events)+len(s.Logs))

	for _, c := range s.Calendars {
		records = append(records, c)
	}

	for _, e := range s.Events {
		records = append(records, e)
	}

	for _, l := range s.Logs {
		records = append(records, l)
	}

	return records
}

// SnapshotFile handles the disk I/O for the RecordStore.
type SnapshotFile struct {
	path           string
	mu             sync.Mutex
	lastGeneration uint64
}

func NewSnapshotFile(path string) *SnapshotFile {
	return &SnapshotFile{path: path}
}

// Save writes the snapshot atomically via a temporary file and a rename.
// Snapshots older than the last saved one are skipped.
func (f *SnapshotFile) Save(snapshot Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if snapshot.Generation != 0 && snapshot.Generation < f.lastGeneration {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}

	bytes, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	tempPath := f.path + ".tmp"
	if err := os.WriteFile(tempPath, bytes, 0o644); err != nil { //nolint:gosec
		return err
	}

	if err := os.Rename(tempPath, f.path); err != nil {
		return err
	}

	f.lastGeneration = snapshot.Generation

	return nil
}

// Load reads the snapshot, a missing file yields an empty Snapshot.
func (f *SnapshotFile) Load() (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	content, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, nil
	}

	if err != nil {
		return Snapshot{}, err
	}

	var snapshot Snapshot
	if err := json.Unmarshal(content, &snapshot); err != nil {
		return Snapshot{}, err
	}

	f.lastGeneration = snapshot.Generation

	return snapshot, nil
}
