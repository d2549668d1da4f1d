package history

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"buildprof/internal/diag"
)

const recordExt = ".mp"

// Store persists one msgpack record per run under a directory. Writes are
// atomic (temp file + rename) and records are immutable once saved, so
// concurrent readers need no coordination; the mutex only serializes
// writers within this process.
type Store struct {
	mu  sync.RWMutex
	dir string
}

// Open initializes a store at dir, creating it as needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) pathFor(runID string) string {
	sum := sha256.Sum256([]byte(runID))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+recordExt)
}

// Save appends a record. Saving an already-recorded run id is a
// DuplicateRunIDError; nothing is overwritten.
func (s *Store) Save(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.pathFor(rec.RunID)
	if _, err := os.Stat(p); err == nil {
		return &DuplicateRunIDError{RunID: rec.RunID}
	}

	f, err := os.CreateTemp(s.dir, "tmp-*")
	if err != nil {
		return fmt.Errorf("save history record: %w", err)
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(&rec); err != nil {
		f.Close()
		return fmt.Errorf("save history record %s: %w", rec.RunID, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("save history record %s: %w", rec.RunID, err)
	}
	return os.Rename(f.Name(), p)
}

func (s *Store) loadPath(path string) (*Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &CorruptRecordError{Path: path, Err: err}
	}
	var rec Record
	if err := msgpack.Unmarshal(raw, &rec); err != nil {
		return nil, &CorruptRecordError{Path: path, Err: err}
	}
	if rec.Schema != SchemaVersion {
		return nil, &UnsupportedVersionError{Path: path, Schema: rec.Schema}
	}
	return &rec, nil
}

// List returns every readable record, oldest first (timestamp, then run
// id). Corrupt or version-incompatible records are reported to bag and
// skipped; they never block the rest.
func (s *Store) List(bag *diag.Bag) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list history records: %w", err)
	}

	var out []Record
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExt) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		rec, err := s.loadPath(path)
		if err != nil {
			code := diag.CodeHistoryRecordCorrupt
			if _, ok := err.(*UnsupportedVersionError); ok {
				code = diag.CodeUnsupportedHistoryVersion
			}
			bag.Addf(diag.SevWarning, code, path, "", "%v", err)
			continue
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].RunID < out[j].RunID
	})
	return out, nil
}

// Load fetches one record by run id.
func (s *Store) Load(runID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadPath(s.pathFor(runID))
}

// RetentionPolicy bounds the store. Zero fields mean unbounded.
type RetentionPolicy struct {
	// MaxRecords keeps only the newest n records.
	MaxRecords int
	// MaxAge drops records older than this.
	MaxAge time.Duration
}

// Prune removes records beyond the retention policy, newest kept first.
// Unreadable records are pruned as well; remaining records are untouched.
func (s *Store) Prune(policy RetentionPolicy, now time.Time) (removed int, err error) {
	bag := diag.NewBag(0)
	records, err := s.List(bag)
	if err != nil {
		return 0, err
	}

	drop := func(runID string) {
		if rmErr := os.Remove(s.pathFor(runID)); rmErr == nil {
			removed++
		}
	}

	if policy.MaxAge > 0 {
		cutoff := now.Add(-policy.MaxAge)
		kept := records[:0]
		for _, rec := range records {
			if rec.Timestamp.Before(cutoff) {
				drop(rec.RunID)
				continue
			}
			kept = append(kept, rec)
		}
		records = kept
	}
	if policy.MaxRecords > 0 && len(records) > policy.MaxRecords {
		for _, rec := range records[:len(records)-policy.MaxRecords] {
			drop(rec.RunID)
		}
	}
	return removed, nil
}
