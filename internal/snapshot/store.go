package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mtokuda/honeysift/internal/insight"
)

const (
	filePrefix = "insights_"
	fileSuffix = ".json"
	latestName = "latest_insights.json"
	indexName  = "index.sqlite"
)

// ErrPersistence marks a failed snapshot or latest-pointer write.
var ErrPersistence = errors.New("snapshot persistence")

// SnapshotFile is one timestamped insight file on disk.
type SnapshotFile struct {
	Timestamp int64
	Path      string
}

// Store persists insight reports under a single analytics directory: one
// immutable insights_<unix>.json per cycle plus a mutable latest pointer
// overwritten each cycle, with a SQLite index of persisted cycles alongside.
// All writes go through temp file + rename so external readers never see a
// partial document.
type Store struct {
	dir   string
	index *Index // nil when the index could not be opened
	log   *slog.Logger
}

// Open creates dir if needed and opens the cycle index. An index that fails
// to open degrades the store (history queries return nothing) but is never
// fatal: snapshot files are the source of truth.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	idx, err := OpenIndex(filepath.Join(dir, indexName))
	if err != nil {
		logger.Warn("open cycle index", "error", err)
		idx = nil
	}
	return &Store{dir: dir, index: idx, log: logger}, nil
}

func (s *Store) Dir() string { return s.dir }

// Write persists report as the cycle snapshot for ts and overwrites the
// latest pointer with the same content. The cycle index row is best effort.
func (s *Store) Write(ts int64, report *insight.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal report: %v", ErrPersistence, err)
	}

	name := filePrefix + strconv.FormatInt(ts, 10) + fileSuffix
	path := filepath.Join(s.dir, name)
	if err := writeAtomic(path, data); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPersistence, name, err)
	}
	if err := writeAtomic(filepath.Join(s.dir, latestName), data); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPersistence, latestName, err)
	}

	if s.index != nil {
		row := CycleRow{
			ID:            uuid.NewString(),
			TS:            ts,
			TotalCommands: report.TotalCommands,
			AttackFocus:   string(report.AttackFocus),
			Path:          path,
		}
		if err := s.index.Insert(row); err != nil {
			s.log.Warn("record cycle", "ts", ts, "error", err)
		}
	}
	return nil
}

// Latest reads the latest pointer. fs.ErrNotExist when no cycle has ever
// persisted.
func (s *Store) Latest() (*insight.Report, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, latestName))
	if err != nil {
		return nil, err
	}
	var r insight.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode %s: %w", latestName, err)
	}
	return &r, nil
}

// List returns the timestamped snapshot files, newest first.
func (s *Store) List() ([]SnapshotFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	out := make([]SnapshotFile, 0, len(entries))
	for _, e := range entries {
		ts, ok := parseSnapshotName(e.Name())
		if !ok {
			continue
		}
		out = append(out, SnapshotFile{Timestamp: ts, Path: filepath.Join(s.dir, e.Name())})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}

// Prune deletes timestamped snapshots beyond max, oldest first by file
// modification time (equal times fall back to the timestamp in the name).
// Returns how many files were removed; removal failures are logged, not
// returned.
func (s *Store) Prune(max int) int {
	if max <= 0 {
		return 0
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.log.Warn("list snapshots for prune", "error", err)
		return 0
	}

	type candidate struct {
		path  string
		ts    int64
		mtime int64
	}
	files := make([]candidate, 0, len(entries))
	for _, e := range entries {
		ts, ok := parseSnapshotName(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, candidate{
			path:  filepath.Join(s.dir, e.Name()),
			ts:    ts,
			mtime: info.ModTime().UnixNano(),
		})
	}
	if len(files) <= max {
		return 0
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].mtime == files[j].mtime {
			return files[i].ts > files[j].ts
		}
		return files[i].mtime > files[j].mtime
	})

	removed := 0
	for _, f := range files[max:] {
		if err := os.Remove(f.path); err != nil {
			s.log.Warn("remove old snapshot", "path", f.path, "error", err)
			continue
		}
		removed++
		if s.index != nil {
			if err := s.index.DeleteByPath(f.path); err != nil {
				s.log.Warn("remove cycle row", "path", f.path, "error", err)
			}
		}
	}
	return removed
}

// History returns recent cycle index rows, newest first. Empty when the index
// is unavailable.
func (s *Store) History(limit int) ([]CycleRow, error) {
	if s.index == nil {
		return nil, nil
	}
	return s.index.List(limit)
}

func (s *Store) Close() error {
	if s.index == nil {
		return nil
	}
	return s.index.Close()
}

func parseSnapshotName(name string) (int64, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return 0, false
	}
	ts, err := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix), 10, 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
