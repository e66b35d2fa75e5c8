//go:generate go run go.uber.org/mock/mockgen -source=upload_manager.go -destination=../mocks/mock_upload_manager.go -package=mocks
package services

import (
	"content-repo/contract"
	"content-repo/domain/upload"
	apperrors "content-repo/errors"
	"content-repo/infrastructure/storage"
	"content-repo/internal"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// DefaultChunkSize is the segment size used when none is configured.
const DefaultChunkSize = 1 << 20

var validate = validator.New()

type IUploadManager interface {
	Initialize() error
	InitializeUpload(ctx context.Context, request upload.InitializeRequest) (string, error)
	Upload(ctx context.Context, uploadID string, progress contract.ProgressFunc) error
	ImportUpload(ctx context.Context, uploadID string) (upload.ImportReport, error)
	DeleteUpload(ctx context.Context, uploadID string, force bool) error
	ListUploads() []upload.Tracker
	GetUpload(uploadID string) (upload.Tracker, bool)
}

// UploadManager owns the registry of upload trackers and drives the
// resumable upload protocol against the repository service.
// Every tracker lives both in memory and in the working directory; both
// copies are changed together or not at all.
type UploadManager struct {
	store     *storage.TrackerStore
	service   contract.RepositoryService
	journal   contract.ImportJournal
	log       *slog.Logger
	chunkSize int

	mu       sync.Mutex
	trackers map[string]*upload.Tracker
}

type Option func(*UploadManager)

// WithChunkSize overrides the segment size. Values <= 0 are ignored.
func WithChunkSize(size int) Option {
	return func(m *UploadManager) {
		if size > 0 {
			m.chunkSize = size
		}
	}
}

// WithImportJournal records every successful import in the given journal.
func WithImportJournal(journal contract.ImportJournal) Option {
	return func(m *UploadManager) {
		m.journal = journal
	}
}

// NewUploadManager does not touch the filesystem, call Initialize before use.
func NewUploadManager(
	workingDir string,
	service contract.RepositoryService,
	log *slog.Logger,
	opts ...Option,
) *UploadManager {
	m := &UploadManager{
		store:     storage.NewTrackerStore(workingDir, log),
		service:   service,
		log:       log,
		chunkSize: DefaultChunkSize,
		trackers:  make(map[string]*upload.Tracker),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewUploadManagerFromConfig derives the working directory and chunk size from configuration.
// Explicit options win over configured values.
func NewUploadManagerFromConfig(
	config internal.Config,
	service contract.RepositoryService,
	log *slog.Logger,
	opts ...Option,
) *UploadManager {
	opts = append([]Option{WithChunkSize(config.ChunkSize)}, opts...)
	return NewUploadManager(config.UploadDir(), service, log, opts...)
}

func (m *UploadManager) WorkingDir() string {
	return m.store.Dir()
}

func (m *UploadManager) ChunkSize() int {
	return m.chunkSize
}

// Initialize creates the working directory and registers every tracker found in it.
// No transfer can be running in a fresh process, so loaded trackers are not running.
// Corrupt tracker files are skipped and reported through an error wrapping
// errors.ErrCorruptTracker, the healthy ones are registered anyway.
// Calling it again while an upload or delete is in progress fails with
// errors.ErrConcurrentUpload and leaves the registry untouched.
func (m *UploadManager) Initialize() error {
	if err := m.store.Ensure(); err != nil {
		return err
	}

	trackers, err := m.store.Discover()
	if err != nil && !errors.Is(err, apperrors.ErrCorruptTracker) {
		return err
	}

	registry := make(map[string]*upload.Tracker, len(trackers))
	for _, t := range trackers {
		t.IsRunning = false
		registry[t.UploadID] = lo.ToPtr(t)
	}

	m.mu.Lock()
	if running, ok := lo.FindKeyBy(m.trackers, func(_ string, t *upload.Tracker) bool { return t.IsRunning }); ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: cannot reinitialize while %s is in progress", apperrors.ErrConcurrentUpload, running)
	}
	m.trackers = registry
	m.mu.Unlock()

	m.log.Info("Upload manager initialized", "working_dir", m.store.Dir(), "trackers", len(registry))
	return err
}

// InitializeUpload opens an upload on the repository service and persists its tracker.
func (m *UploadManager) InitializeUpload(ctx context.Context, request upload.InitializeRequest) (string, error) {
	if err := validate.Struct(request); err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrInvalidRequest, err)
	}

	session, err := m.service.InitializeUpload(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to initialize upload for %s: %w", request.SourceFilename, err)
	}
	if session.UploadID == "" {
		return "", fmt.Errorf("%w: repository service returned an empty upload id", apperrors.ErrProtocolViolation)
	}

	m.mu.Lock()
	_, exists := m.trackers[session.UploadID]
	m.mu.Unlock()
	if exists {
		return "", fmt.Errorf("%w: upload id %s is already tracked", apperrors.ErrProtocolViolation, session.UploadID)
	}

	// Values are kept in the form the tracker file gives back after a restart
	tracker := upload.Tracker{
		UploadID:       session.UploadID,
		Location:       session.Location,
		SourceFilename: request.SourceFilename,
		RepoID:         request.RepoID,
		UnitTypeID:     request.UnitTypeID,
		UnitKey:        upload.NormalizeMap(request.UnitKey),
		UnitMetadata:   upload.NormalizeMap(request.UnitMetadata),
		OverrideConfig: upload.NormalizeMap(request.OverrideConfig),
	}

	if err := m.store.Save(tracker); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.trackers[tracker.UploadID] = &tracker
	m.mu.Unlock()

	m.log.Info("Upload initialized",
		"upload_id", tracker.UploadID,
		"source", tracker.SourceFilename,
		"repo_id", tracker.RepoID,
		"unit_type_id", tracker.UnitTypeID)
	return tracker.UploadID, nil
}

// Upload sends the source file from the last acknowledged offset until EOF,
// one segment at a time in increasing offset order. The offset is persisted
// after every acknowledged segment, so a failed or interrupted upload can be
// resumed by calling Upload again.
// The data slice passed to the service is reused between segments.
func (m *UploadManager) Upload(ctx context.Context, uploadID string, progress contract.ProgressFunc) (err error) {
	t, err := m.acquire(uploadID)
	if err != nil {
		return err
	}
	defer m.release(t, &err)

	return m.transfer(ctx, t, progress)
}

func (m *UploadManager) transfer(ctx context.Context, t *upload.Tracker, progress contract.ProgressFunc) error {
	file, err := os.Open(t.SourceFilename)
	if err != nil {
		return fmt.Errorf("failed to open source of upload %s: %w", t.UploadID, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source of upload %s: %w", t.UploadID, err)
	}
	total := info.Size()

	// Only the goroutine holding the running flag writes Offset,
	// so it can be read here without the lock.
	offset := t.Offset
	if offset > total {
		return fmt.Errorf("%w: %s is %d bytes, %d already acknowledged", apperrors.ErrSourceTruncated, t.SourceFilename, total, offset)
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek source of upload %s to %d: %w", t.UploadID, offset, err)
	}

	m.log.Debug("Starting upload transfer",
		"upload_id", t.UploadID,
		"offset", offset,
		"total", total,
		"started_at", time.Now())

	// Bytes appended after the transfer started are not part of this upload
	reader := io.LimitReader(file, total-offset)
	buf := make([]byte, m.chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, readErr := io.ReadFull(reader, buf)
		if n > 0 {
			if err := m.service.UploadSegment(ctx, t.UploadID, offset, buf[:n]); err != nil {
				return fmt.Errorf("failed to upload segment at offset %d of %s: %w", offset, t.UploadID, err)
			}
			offset += int64(n)

			acknowledged := offset
			if err := m.commit(t, func(t *upload.Tracker) { t.Offset = acknowledged }); err != nil {
				return err
			}
			m.log.Debug("Segment acknowledged", "upload_id", t.UploadID, "offset", offset, "total", total)

			if progress != nil {
				progress(offset, total)
			}
		}

		if errors.Is(readErr, io.EOF) || errors.Is(readErr, io.ErrUnexpectedEOF) {
			break
		}
		if readErr != nil {
			return fmt.Errorf("failed to read source of upload %s: %w", t.UploadID, readErr)
		}
	}

	if err := m.commit(t, func(t *upload.Tracker) { t.IsFinishedUploading = true }); err != nil {
		return err
	}
	m.log.Info("Upload transfer finished", "upload_id", t.UploadID, "bytes", total)
	return nil
}

// ImportUpload asks the repository service to turn a finished upload into a unit.
// The tracker is left in place, deleting it is up to the caller.
func (m *UploadManager) ImportUpload(ctx context.Context, uploadID string) (upload.ImportReport, error) {
	m.mu.Lock()
	t, ok := m.trackers[uploadID]
	if !ok {
		m.mu.Unlock()
		return upload.ImportReport{}, fmt.Errorf("%w: %s", apperrors.ErrMissingUploadRequest, uploadID)
	}
	if !t.IsFinishedUploading {
		m.mu.Unlock()
		return upload.ImportReport{}, fmt.Errorf("%w: %s", apperrors.ErrIncompleteUpload, uploadID)
	}
	request := upload.NewImportRequest(*t)
	m.mu.Unlock()

	report, err := m.service.ImportUpload(ctx, request)
	if err != nil {
		return upload.ImportReport{}, fmt.Errorf("failed to import upload %s: %w", uploadID, err)
	}

	if m.journal != nil {
		record := contract.ImportRecord{
			UploadID:     request.UploadID,
			RepoID:       request.RepoID,
			UnitTypeID:   request.UnitTypeID,
			UnitKey:      request.UnitKey,
			SpawnedTasks: report.SpawnedTasks,
			ImportedAt:   time.Now().UTC(),
		}
		if err := m.journal.Record(record); err != nil {
			m.log.Warn("Failed to record import in journal", "upload_id", uploadID, "error", err)
		}
	}

	m.log.Info("Upload imported", "upload_id", uploadID, "repo_id", request.RepoID, "tasks", len(report.SpawnedTasks))
	return report, nil
}

// DeleteUpload removes the upload from the repository service, then its tracker.
// If the service call fails the tracker is kept unless force is set, in which
// case the failure is logged and the tracker removed anyway.
func (m *UploadManager) DeleteUpload(ctx context.Context, uploadID string, force bool) error {
	t, err := m.acquire(uploadID)
	if err != nil {
		return err
	}

	if remoteErr := m.service.DeleteUpload(ctx, uploadID); remoteErr != nil {
		if !force {
			m.mutate(t, func(t *upload.Tracker) { t.IsRunning = false })
			return fmt.Errorf("failed to delete upload %s: %w", uploadID, remoteErr)
		}
		m.log.Warn("Repository delete failed, removing tracker anyway", "upload_id", uploadID, "error", remoteErr)
	}

	if err := m.store.Remove(uploadID); err != nil {
		m.mutate(t, func(t *upload.Tracker) { t.IsRunning = false })
		return err
	}

	m.mu.Lock()
	delete(m.trackers, uploadID)
	m.mu.Unlock()

	m.log.Info("Upload deleted", "upload_id", uploadID, "forced", force)
	return nil
}

// ListUploads returns copies of every tracker, sorted by upload id.
func (m *UploadManager) ListUploads() []upload.Tracker {
	m.mu.Lock()
	trackers := lo.MapToSlice(m.trackers, func(_ string, t *upload.Tracker) upload.Tracker {
		return t.Clone()
	})
	m.mu.Unlock()

	sort.Slice(trackers, func(i, j int) bool {
		return trackers[i].UploadID < trackers[j].UploadID
	})
	return trackers
}

// GetUpload returns a copy of one tracker.
func (m *UploadManager) GetUpload(uploadID string) (upload.Tracker, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.trackers[uploadID]
	if !ok {
		return upload.Tracker{}, false
	}
	return t.Clone(), true
}

// acquire flips the running flag of a tracker in a single critical section.
func (m *UploadManager) acquire(uploadID string) (*upload.Tracker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.trackers[uploadID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrMissingUploadRequest, uploadID)
	}
	if t.IsRunning {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConcurrentUpload, uploadID)
	}
	t.IsRunning = true
	return t, nil
}

// release clears the running flag and persists the tracker on every exit path of a transfer.
// A persistence failure is reported only when the transfer itself succeeded.
func (m *UploadManager) release(t *upload.Tracker, errp *error) {
	snapshot := m.mutate(t, func(t *upload.Tracker) { t.IsRunning = false })
	if err := m.store.Save(snapshot); err != nil {
		if *errp == nil {
			*errp = err
			return
		}
		m.log.Error("Failed to persist tracker after failed transfer", "upload_id", t.UploadID, "error", err)
	}
}

// commit persists the tracker with fn applied and only then applies fn in memory.
// A failed save leaves the registered tracker as it was.
func (m *UploadManager) commit(t *upload.Tracker, fn func(t *upload.Tracker)) error {
	m.mu.Lock()
	next := t.Clone()
	m.mu.Unlock()

	fn(&next)
	if err := m.store.Save(next); err != nil {
		return err
	}
	m.mutate(t, fn)
	return nil
}

func (m *UploadManager) mutate(t *upload.Tracker, fn func(t *upload.Tracker)) upload.Tracker {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(t)
	return t.Clone()
}
