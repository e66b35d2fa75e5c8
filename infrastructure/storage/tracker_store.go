package storage

import (
	"content-repo/domain/upload"
	apperrors "content-repo/errors"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

const (
	trackerExt     = ".yaml"
	trackerTmpGlob = ".tracker-*.tmp"
)

// TrackerStore keeps one YAML file per upload inside a working directory.
// The file name is derived from the upload id only, so the same id always
// maps to the same path.
type TrackerStore struct {
	dir string
	log *slog.Logger
}

// trackerRecord is the on-disk shape of upload.Tracker.
// Maps are pointers so that an absent map survives a round trip as nil
// instead of coming back as an empty one.
type trackerRecord struct {
	UploadID            string    `yaml:"upload_id"`
	Location            string    `yaml:"location"`
	SourceFilename      string    `yaml:"source_filename"`
	RepoID              string    `yaml:"repo_id"`
	UnitTypeID          string    `yaml:"unit_type_id"`
	UnitKey             *valueMap `yaml:"unit_key"`
	UnitMetadata        *valueMap `yaml:"unit_metadata"`
	OverrideConfig      *valueMap `yaml:"override_config"`
	Offset              int64     `yaml:"offset"`
	IsFinishedUploading bool      `yaml:"is_finished_uploading"`
	IsRunning           bool      `yaml:"is_running"`
}

// valueMap encodes floats so that they decode as floats again,
// even when they hold a whole number.
type valueMap map[string]any

func NewTrackerStore(dir string, log *slog.Logger) *TrackerStore {
	return &TrackerStore{dir: dir, log: log}
}

func (s *TrackerStore) Dir() string {
	return s.dir
}

// Path returns the tracker file location for an upload id.
// Ids are path-escaped so any id, including ones containing separators,
// lands inside the working directory under a distinct name.
func (s *TrackerStore) Path(uploadID string) string {
	return filepath.Join(s.dir, trackerFileName(uploadID))
}

// Ensure creates the working directory if needed.
func (s *TrackerStore) Ensure() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating upload working directory %s: %w", s.dir, err)
	}
	return nil
}

// Save replaces the tracker file with the current field values.
// The content is written to a temporary file and renamed over the
// previous one so readers never see a partial tracker.
func (s *TrackerStore) Save(t upload.Tracker) error {
	if t.UploadID == "" {
		return fmt.Errorf("%w: tracker without upload id cannot be persisted", apperrors.ErrInvalidRequest)
	}
	data, err := yaml.Marshal(toTrackerRecord(t))
	if err != nil {
		return fmt.Errorf("marshaling tracker %s: %w", t.UploadID, err)
	}
	if err := s.Ensure(); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(s.dir, trackerTmpGlob)
	if err != nil {
		return fmt.Errorf("creating temp tracker file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("writing tracker %s: %w", t.UploadID, err)
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("syncing tracker %s: %w", t.UploadID, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp tracker file: %w", err)
	}

	finalPath := s.Path(t.UploadID)
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("renaming tracker to %s: %w", finalPath, err)
	}
	success = true
	return nil
}

// Load rebuilds a tracker purely from the file at path.
// Unparseable or inconsistent content yields errors.ErrCorruptTracker.
func (s *TrackerStore) Load(path string) (upload.Tracker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return upload.Tracker{}, fmt.Errorf("reading tracker %s: %w", path, err)
	}

	var record trackerRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		return upload.Tracker{}, fmt.Errorf("%w: %s: %v", apperrors.ErrCorruptTracker, path, err)
	}
	if record.UploadID == "" {
		return upload.Tracker{}, fmt.Errorf("%w: %s: missing upload_id", apperrors.ErrCorruptTracker, path)
	}
	if record.Offset < 0 {
		return upload.Tracker{}, fmt.Errorf("%w: %s: negative offset %d", apperrors.ErrCorruptTracker, path, record.Offset)
	}
	return fromTrackerRecord(record), nil
}

// Remove deletes the tracker file. A file that is already gone is not an error.
func (s *TrackerStore) Remove(uploadID string) error {
	path := s.Path(uploadID)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing tracker %s: %w", path, err)
	}
	return nil
}

// Discover loads every tracker found in the working directory, sorted by upload id.
// A missing directory means no trackers. Any other listing failure is returned
// with no trackers. Corrupt files are skipped; the healthy trackers are still
// returned along with an error wrapping errors.ErrCorruptTracker for each bad file.
func (s *TrackerStore) Discover() ([]upload.Tracker, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing upload working directory %s: %w", s.dir, err)
	}

	var (
		trackers []upload.Tracker
		corrupt  []error
	)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, trackerExt) {
			continue
		}
		path := filepath.Join(s.dir, name)
		t, err := s.Load(path)
		if err != nil {
			if !errors.Is(err, apperrors.ErrCorruptTracker) {
				return nil, err
			}
			s.log.Warn("Skipping corrupt tracker file", "path", path, "error", err)
			corrupt = append(corrupt, err)
			continue
		}
		if trackerFileName(t.UploadID) != name {
			err := fmt.Errorf("%w: %s: file name does not match upload id %q", apperrors.ErrCorruptTracker, path, t.UploadID)
			s.log.Warn("Skipping misplaced tracker file", "path", path, "upload_id", t.UploadID)
			corrupt = append(corrupt, err)
			continue
		}
		trackers = append(trackers, t)
	}

	sort.Slice(trackers, func(i, j int) bool {
		return trackers[i].UploadID < trackers[j].UploadID
	})
	return trackers, errors.Join(corrupt...)
}

// trackerFileName never starts with a dot, Discover skips those.
// PathEscape escapes '%' but not '.', so a leading "%2E" is unambiguous.
func trackerFileName(uploadID string) string {
	name := url.PathEscape(uploadID)
	if strings.HasPrefix(name, ".") {
		name = "%2E" + name[1:]
	}
	return name + trackerExt
}

func toTrackerRecord(t upload.Tracker) trackerRecord {
	return trackerRecord{
		UploadID:            t.UploadID,
		Location:            t.Location,
		SourceFilename:      t.SourceFilename,
		RepoID:              t.RepoID,
		UnitTypeID:          t.UnitTypeID,
		UnitKey:             optionalMap(t.UnitKey),
		UnitMetadata:        optionalMap(t.UnitMetadata),
		OverrideConfig:      optionalMap(t.OverrideConfig),
		Offset:              t.Offset,
		IsFinishedUploading: t.IsFinishedUploading,
		IsRunning:           t.IsRunning,
	}
}

func fromTrackerRecord(r trackerRecord) upload.Tracker {
	return upload.Tracker{
		UploadID:            r.UploadID,
		Location:            r.Location,
		SourceFilename:      r.SourceFilename,
		RepoID:              r.RepoID,
		UnitTypeID:          r.UnitTypeID,
		UnitKey:             derefMap(r.UnitKey),
		UnitMetadata:        derefMap(r.UnitMetadata),
		OverrideConfig:      derefMap(r.OverrideConfig),
		Offset:              r.Offset,
		IsFinishedUploading: r.IsFinishedUploading,
		IsRunning:           r.IsRunning,
	}
}

func optionalMap(m map[string]any) *valueMap {
	if m == nil {
		return nil
	}
	return lo.ToPtr(valueMap(upload.NormalizeMap(m)))
}

// derefMap also brings decoded integers, which yaml returns as int, back to int64.
func derefMap(m *valueMap) map[string]any {
	if m == nil {
		return nil
	}
	if *m == nil {
		return map[string]any{}
	}
	return upload.NormalizeMap(*m)
}

func (m valueMap) MarshalYAML() (any, error) {
	return encodeValue(map[string]any(m))
}

func encodeValue(v any) (*yaml.Node, error) {
	switch val := v.(type) {
	case map[string]any:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		keys := lo.Keys(val)
		sort.Strings(keys)
		for _, k := range keys {
			child, err := encodeValue(val[k])
			if err != nil {
				return nil, fmt.Errorf("encoding %q: %w", k, err)
			}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, child)
		}
		return node, nil
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range val {
			child, err := encodeValue(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(val)}, nil
	default:
		node := &yaml.Node{}
		if err := node.Encode(val); err != nil {
			return nil, err
		}
		return node, nil
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
