package services

import (
	"content-repo/contract"
	"content-repo/domain/upload"
	apperrors "content-repo/errors"
	"content-repo/infrastructure/storage"
	"content-repo/internal"
	"content-repo/mocks"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	mockUploadID = "ABC123"
	mockLocation = "/v2/uploads/ABC123/"
)

type segmentRecorder struct {
	mu      sync.Mutex
	offsets []int64
	bodies  [][]byte
}

func (r *segmentRecorder) record(_ context.Context, _ string, offset int64, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offsets = append(r.offsets, offset)
	r.bodies = append(r.bodies, append([]byte(nil), data...))
	return nil
}

func (r *segmentRecorder) totalBytes() int {
	total := 0
	for _, b := range r.bodies {
		total += len(b)
	}
	return total
}

type progressRecorder struct {
	sent  []int64
	total []int64
}

func (p *progressRecorder) update(sent, total int64) {
	p.sent = append(p.sent, sent)
	p.total = append(p.total, total)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestManager(t *testing.T, opts ...Option) (*UploadManager, *mocks.MockRepositoryService) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockRepositoryService(ctrl)
	dir := filepath.Join(t.TempDir(), "uploads")
	return NewUploadManager(dir, service, discardLogger(), opts...), service
}

// writeSource creates a file of the given size with a recognizable byte pattern.
func writeSource(t *testing.T, size int) (string, []byte) {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	path := filepath.Join(t.TempDir(), "pulp-test-package.rpm")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path, data
}

func expectInitialize(service *mocks.MockRepositoryService) {
	service.EXPECT().InitializeUpload(gomock.Any()).
		Return(upload.Session{UploadID: mockUploadID, Location: mockLocation}, nil)
}

func initRequest(source string) upload.InitializeRequest {
	return upload.InitializeRequest{
		SourceFilename: source,
		RepoID:         "repo-1",
		UnitTypeID:     "type-1",
		UnitKey:        map[string]any{"k": "v"},
		UnitMetadata:   map[string]any{"m": "1"},
	}
}

func TestNewUploadManagerFromConfig(t *testing.T) {
	req := require.New(t)
	base := filepath.Join(t.TempDir(), "a", "b", "c")
	config := internal.Config{UploadWorkingDir: base, ChunkSize: 512}

	manager := NewUploadManagerFromConfig(config, nil, discardLogger())

	req.Equal(filepath.Join(base, "default"), manager.WorkingDir())
	req.Equal(512, manager.ChunkSize())
	_, err := os.Stat(base)
	req.True(os.IsNotExist(err), "construction must not touch the filesystem")

	manager = NewUploadManagerFromConfig(config, nil, discardLogger(), WithChunkSize(64))
	req.Equal(64, manager.ChunkSize())
}

func TestUploadManager_Initialize_NoTrackers(t *testing.T) {
	req := require.New(t)
	manager, _ := newTestManager(t)

	req.NoError(manager.Initialize())

	req.Empty(manager.ListUploads())
	info, err := os.Stat(manager.WorkingDir())
	req.NoError(err)
	req.True(info.IsDir())
}

func TestUploadManager_Initialize_WorkingDirError(t *testing.T) {
	req := require.New(t)
	parent := filepath.Join(t.TempDir(), "not-a-dir")
	req.NoError(os.WriteFile(parent, []byte("x"), 0o644))

	manager := NewUploadManager(filepath.Join(parent, "uploads"), nil, discardLogger())

	req.Error(manager.Initialize())
	req.Empty(manager.ListUploads())
}

func TestUploadManager_Initialize_WithTrackers(t *testing.T) {
	req := require.New(t)
	manager, _ := newTestManager(t)
	store := storage.NewTrackerStore(manager.WorkingDir(), discardLogger())

	allIDs := []string{"tf0", "tf1"}
	for _, id := range allIDs {
		req.NoError(store.Save(upload.Tracker{UploadID: id, UnitKey: map[string]any{"k": id}}))
	}

	req.NoError(manager.Initialize())

	trackers := manager.ListUploads()
	req.Len(trackers, len(allIDs))
	req.Equal("tf0", trackers[0].UploadID)
	req.Equal("tf1", trackers[1].UploadID)

	tracker1, ok := manager.GetUpload("tf0")
	req.True(ok)
	tracker2, ok := manager.GetUpload("tf0")
	req.True(ok)
	req.Equal(tracker1, tracker2)

	// Copies are independent from the manager state
	tracker1.UnitKey["k"] = "changed"
	tracker1.Offset = 42
	fresh, _ := manager.GetUpload("tf0")
	req.Equal("tf0", fresh.UnitKey["k"])
	req.Equal(int64(0), fresh.Offset)

	_, ok = manager.GetUpload("unknown")
	req.False(ok)
}

func TestUploadManager_Initialize_ClearsRunningFlag(t *testing.T) {
	req := require.New(t)
	manager, _ := newTestManager(t)
	store := storage.NewTrackerStore(manager.WorkingDir(), discardLogger())
	req.NoError(store.Save(upload.Tracker{UploadID: "crashed", Offset: 200, IsRunning: true}))

	req.NoError(manager.Initialize())

	tracker, ok := manager.GetUpload("crashed")
	req.True(ok)
	req.False(tracker.IsRunning)
	req.Equal(int64(200), tracker.Offset)
}

func TestUploadManager_Initialize_CorruptTracker(t *testing.T) {
	req := require.New(t)
	manager, _ := newTestManager(t)
	store := storage.NewTrackerStore(manager.WorkingDir(), discardLogger())
	req.NoError(store.Save(upload.Tracker{UploadID: "healthy"}))
	req.NoError(os.WriteFile(filepath.Join(manager.WorkingDir(), "broken.yaml"), []byte(":\n\t- not yaml"), 0o644))

	err := manager.Initialize()

	req.ErrorIs(err, apperrors.ErrCorruptTracker)
	_, ok := manager.GetUpload("healthy")
	req.True(ok)
	req.Len(manager.ListUploads(), 1)
}

func TestUploadManager_Initialize_RefusedWhileTransferRunning(t *testing.T) {
	req := require.New(t)
	manager, service := newTestManager(t)
	req.NoError(manager.Initialize())
	source, _ := writeSource(t, 10)
	expectInitialize(service)
	uploadID, err := manager.InitializeUpload(context.Background(), initRequest(source))
	req.NoError(err)

	started := make(chan struct{})
	unblock := make(chan struct{})
	service.EXPECT().UploadSegment(gomock.Any(), uploadID, int64(0), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ int64, _ []byte) error {
			close(started)
			<-unblock
			return nil
		}).Times(1)

	done := make(chan error, 1)
	go func() {
		done <- manager.Upload(context.Background(), uploadID, nil)
	}()
	<-started

	// The running tracker keeps its guard, so no second transfer can start
	req.ErrorIs(manager.Initialize(), apperrors.ErrConcurrentUpload)
	running, ok := manager.GetUpload(uploadID)
	req.True(ok)
	req.True(running.IsRunning)
	req.ErrorIs(manager.Upload(context.Background(), uploadID, nil), apperrors.ErrConcurrentUpload)

	close(unblock)
	req.NoError(<-done)

	req.NoError(manager.Initialize())
	finished, ok := manager.GetUpload(uploadID)
	req.True(ok)
	req.False(finished.IsRunning)
	req.True(finished.IsFinishedUploading)
}

func TestUploadManager_Initialize_DotPrefixedUploadID(t *testing.T) {
	req := require.New(t)
	manager, service := newTestManager(t)
	req.NoError(manager.Initialize())
	source, _ := writeSource(t, 10)
	service.EXPECT().InitializeUpload(gomock.Any()).
		Return(upload.Session{UploadID: ".abc", Location: "/v2/uploads/.abc/"}, nil)

	uploadID, err := manager.InitializeUpload(context.Background(), initRequest(source))
	req.NoError(err)
	req.Equal(".abc", uploadID)

	restarted := NewUploadManager(manager.WorkingDir(), service, discardLogger())
	req.NoError(restarted.Initialize())

	tracker, ok := restarted.GetUpload(".abc")
	req.True(ok)
	req.Equal("/v2/uploads/.abc/", tracker.Location)
	req.Len(restarted.ListUploads(), 1)
}

func TestUploadManager_InitializeUpload_NumbersSurviveRestart(t *testing.T) {
	req := require.New(t)
	manager, service := newTestManager(t)
	req.NoError(manager.Initialize())
	source, _ := writeSource(t, 10)
	expectInitialize(service)

	request := initRequest(source)
	request.UnitKey = map[string]any{"epoch": 1, "version": "1.0"}
	request.UnitMetadata = map[string]any{"ratio": 2.0, "n": int64(7)}
	uploadID, err := manager.InitializeUpload(context.Background(), request)
	req.NoError(err)

	before, ok := manager.GetUpload(uploadID)
	req.True(ok)
	req.Equal(map[string]any{"epoch": int64(1), "version": "1.0"}, before.UnitKey)
	req.Equal(map[string]any{"ratio": 2.0, "n": int64(7)}, before.UnitMetadata)

	restarted := NewUploadManager(manager.WorkingDir(), service, discardLogger())
	req.NoError(restarted.Initialize())
	after, ok := restarted.GetUpload(uploadID)
	req.True(ok)
	req.Equal(before, after)
}

func TestUploadManager_InitializeUpload(t *testing.T) {
	req := require.New(t)
	manager, service := newTestManager(t)
	req.NoError(os.RemoveAll(manager.WorkingDir()))
	expectInitialize(service)

	uploadID, err := manager.InitializeUpload(context.Background(), upload.InitializeRequest{
		SourceFilename: "fn-1",
		RepoID:         "repo-1",
		UnitTypeID:     "type-1",
		UnitKey:        map[string]any{"k1": "v1"},
		UnitMetadata:   map[string]any{},
	})
	req.NoError(err)
	req.Equal(mockUploadID, uploadID)

	// Working directory is created on demand
	_, err = os.Stat(manager.WorkingDir())
	req.NoError(err)

	inMemory, ok := manager.GetUpload(uploadID)
	req.True(ok)
	req.Equal(uploadID, inMemory.UploadID)

	store := storage.NewTrackerStore(manager.WorkingDir(), discardLogger())
	tracker, err := store.Load(store.Path(uploadID))
	req.NoError(err)
	req.Equal(mockUploadID, tracker.UploadID)
	req.Equal(mockLocation, tracker.Location)
	req.Equal(int64(0), tracker.Offset)
	req.Equal("fn-1", tracker.SourceFilename)
	req.Equal("repo-1", tracker.RepoID)
	req.Equal("type-1", tracker.UnitTypeID)
	req.Equal(map[string]any{"k1": "v1"}, tracker.UnitKey)
	req.Equal(map[string]any{}, tracker.UnitMetadata)
	req.Nil(tracker.OverrideConfig)
	req.False(tracker.IsFinishedUploading)
	req.False(tracker.IsRunning)
	req.Equal(inMemory, tracker)
}

func TestUploadManager_InitializeUpload_WithOverrideConfig(t *testing.T) {
	req := require.New(t)
	manager, service := newTestManager(t)
	req.NoError(manager.Initialize())
	expectInitialize(service)

	request := initRequest("fn-1")
	request.OverrideConfig = map[string]any{"test-key": "test-value"}
	uploadID, err := manager.InitializeUpload(context.Background(), request)
	req.NoError(err)

	store := storage.NewTrackerStore(manager.WorkingDir(), discardLogger())
	tracker, err := store.Load(store.Path(uploadID))
	req.NoError(err)
	req.Equal(map[string]any{"test-key": "test-value"}, tracker.OverrideConfig)

	// The tracker does not alias the caller's maps
	request.OverrideConfig["test-key"] = "mutated"
	inMemory, _ := manager.GetUpload(uploadID)
	req.Equal("test-value", inMemory.OverrideConfig["test-key"])
}

func TestUploadManager_InitializeUpload_InvalidRequest(t *testing.T) {
	tests := []struct {
		description string
		modify      func(r *upload.InitializeRequest)
	}{
		{"Should fail if SourceFilename is empty", func(r *upload.InitializeRequest) { r.SourceFilename = "" }},
		{"Should fail if RepoID is empty", func(r *upload.InitializeRequest) { r.RepoID = "" }},
		{"Should fail if UnitTypeID is empty", func(r *upload.InitializeRequest) { r.UnitTypeID = "" }},
		{"Should fail if UnitKey is missing", func(r *upload.InitializeRequest) { r.UnitKey = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			req := require.New(t)
			// No expectation on the service: any remote call fails the test
			manager, _ := newTestManager(t)
			req.NoError(manager.Initialize())

			request := initRequest("f")
			tt.modify(&request)
			_, err := manager.InitializeUpload(context.Background(), request)
			req.ErrorIs(err, apperrors.ErrInvalidRequest)
			req.Empty(manager.ListUploads())
		})
	}
}

func TestUploadManager_InitializeUpload_ServiceFailure(t *testing.T) {
	req := require.New(t)
	manager, service := newTestManager(t)
	req.NoError(manager.Initialize())
	remoteErr := fmt.Errorf("rpc error: code = Unavailable")
	service.EXPECT().InitializeUpload(gomock.Any()).Return(upload.Session{}, remoteErr)

	_, err := manager.InitializeUpload(context.Background(), initRequest("f"))

	req.ErrorIs(err, remoteErr)
	req.Empty(manager.ListUploads())
	entries, err := os.ReadDir(manager.WorkingDir())
	req.NoError(err)
	req.Empty(entries)
}

func TestUploadManager_InitializeUpload_EmptyUploadID(t *testing.T) {
	req := require.New(t)
	manager, service := newTestManager(t)
	req.NoError(manager.Initialize())
	service.EXPECT().InitializeUpload(gomock.Any()).Return(upload.Session{Location: "/v2/uploads//"}, nil)

	_, err := manager.InitializeUpload(context.Background(), initRequest("f"))

	req.ErrorIs(err, apperrors.ErrProtocolViolation)
	req.Empty(manager.ListUploads())
}

func TestUploadManager_InitializeUpload_DuplicateUploadID(t *testing.T) {
	req := require.New(t)
	manager, service := newTestManager(t)
	req.NoError(manager.Initialize())
	service.EXPECT().InitializeUpload(gomock.Any()).
		Return(upload.Session{UploadID: mockUploadID, Location: mockLocation}, nil).Times(2)

	_, err := manager.InitializeUpload(context.Background(), initRequest("first"))
	req.NoError(err)
	_, err = manager.InitializeUpload(context.Background(), initRequest("second"))
	req.ErrorIs(err, apperrors.ErrProtocolViolation)

	tracker, _ := manager.GetUpload(mockUploadID)
	req.Equal("first", tracker.SourceFilename)
}

func TestUploadManager_Upload_SinglePass(t *testing.T) {
	req := require.New(t)
	manager, service := newTestManager(t, WithChunkSize(DefaultChunkSize*10))
	req.NoError(manager.Initialize())
	source, data := writeSource(t, 4321)
	expectInitialize(service)
	uploadID, err := manager.InitializeUpload(context.Background(), initRequest(source))
	req.NoError(err)

	segments := &segmentRecorder{}
	service.EXPECT().UploadSegment(gomock.Any(), uploadID, gomock.Any(), gomock.Any()).
		DoAndReturn(segments.record).Times(1)
	progress := &progressRecorder{}

	req.NoError(manager.Upload(context.Background(), uploadID, progress.update))

	size := int64(len(data))
	req.Equal([]int64{size}, progress.sent)
	req.Equal([]int64{size}, progress.total)
	req.Equal([]int64{0}, segments.offsets)
	req.Equal(data, segments.bodies[0])

	store := storage.NewTrackerStore(manager.WorkingDir(), discardLogger())
	onDisk, err := store.Load(store.Path(uploadID))
	req.NoError(err)
	req.Equal(size, onDisk.Offset)
	req.True(onDisk.IsFinishedUploading)
	req.False(onDisk.IsRunning)

	inMemory, _ := manager.GetUpload(uploadID)
	req.Equal(size, inMemory.Offset)
	req.True(inMemory.IsFinishedUploading)
	req.False(inMemory.IsRunning)
}

func TestUploadManager_Upload_MultiplePasses(t *testing.T) {
	req := require.New(t)
	manager, service := newTestManager(t, WithChunkSize(100))
	req.NoError(manager.Initialize())
	source, data := writeSource(t, 1000)
	expectInitialize(service)
	uploadID, err := manager.InitializeUpload(context.Background(), initRequest(source))
	req.NoError(err)

	segments := &segmentRecorder{}
	service.EXPECT().UploadSegment(gomock.Any(), uploadID, gomock.Any(), gomock.Any()).
		DoAndReturn(segments.record).Times(10)
	progress := &progressRecorder{}

	req.NoError(manager.Upload(context.Background(), uploadID, progress.update))

	req.Equal([]int64{0, 100, 200, 300, 400, 500, 600, 700, 800, 900}, segments.offsets)
	for i, body := range segments.bodies {
		req.Equal(data[i*100:(i+1)*100], body)
	}
	req.Equal([]int64{100, 200, 300, 400, 500, 600, 700, 800, 900, 1000}, progress.sent)
	for _, total := range progress.total {
		req.Equal(int64(1000), total)
	}

	tracker, _ := manager.GetUpload(uploadID)
	req.Equal(int64(1000), tracker.Offset)
	req.True(tracker.IsFinishedUploading)
}

func TestUploadManager_Upload_SegmentCount(t *testing.T) {
	const chunkSize = 100
	for _, size := range []int{0, 1, 99, 100, 101, 999, 1234} {
		t.Run(fmt.Sprintf("size %d", size), func(t *testing.T) {
			req := require.New(t)
			manager, service := newTestManager(t, WithChunkSize(chunkSize))
			req.NoError(manager.Initialize())
			source, data := writeSource(t, size)
			expectInitialize(service)
			uploadID, err := manager.InitializeUpload(context.Background(), initRequest(source))
			req.NoError(err)

			expectedCalls := (size + chunkSize - 1) / chunkSize
			segments := &segmentRecorder{}
			service.EXPECT().UploadSegment(gomock.Any(), uploadID, gomock.Any(), gomock.Any()).
				DoAndReturn(segments.record).Times(expectedCalls)
			progress := &progressRecorder{}

			req.NoError(manager.Upload(context.Background(), uploadID, progress.update))

			req.Len(segments.offsets, expectedCalls)
			req.Equal(size, segments.totalBytes())
			var previous int64
			for _, sent := range progress.sent {
				req.GreaterOrEqual(sent, previous)
				req.LessOrEqual(sent, int64(size))
				previous = sent
			}
			if size > 0 {
				req.Equal(int64(size), progress.sent[len(progress.sent)-1])
			}
			reassembled := make([]byte, 0, size)
			for _, body := range segments.bodies {
				reassembled = append(reassembled, body...)
			}
			req.Equal(data, reassembled)

			tracker, _ := manager.GetUpload(uploadID)
			req.True(tracker.IsFinishedUploading)
			req.Equal(int64(size), tracker.Offset)
		})
	}
}

func TestUploadManager_Upload_ResumeAfterFailure(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	service := mocks.NewMockRepositoryService(ctrl)
	dir := filepath.Join(t.TempDir(), "uploads")
	source, data := writeSource(t, 1000)

	first := NewUploadManager(dir, service, discardLogger(), WithChunkSize(100))
	req.NoError(first.Initialize())
	expectInitialize(service)
	uploadID, err := first.InitializeUpload(context.Background(), initRequest(source))
	req.NoError(err)

	// Given: the service acknowledges three segments and then fails
	remoteErr := fmt.Errorf("rpc error: code = Unavailable")
	segments := &segmentRecorder{}
	gomock.InOrder(
		service.EXPECT().UploadSegment(gomock.Any(), uploadID, gomock.Any(), gomock.Any()).
			DoAndReturn(segments.record).Times(3),
		service.EXPECT().UploadSegment(gomock.Any(), uploadID, int64(300), gomock.Any()).
			Return(remoteErr),
	)

	err = first.Upload(context.Background(), uploadID, nil)
	req.ErrorIs(err, remoteErr)

	interrupted, _ := first.GetUpload(uploadID)
	req.Equal(int64(300), interrupted.Offset)
	req.False(interrupted.IsRunning)
	req.False(interrupted.IsFinishedUploading)

	// When: a fresh manager picks up the persisted tracker
	second := NewUploadManager(dir, service, discardLogger(), WithChunkSize(100))
	req.NoError(second.Initialize())
	service.EXPECT().UploadSegment(gomock.Any(), uploadID, gomock.Any(), gomock.Any()).
		DoAndReturn(segments.record).Times(7)

	// Then: transfer continues at the first unacknowledged byte
	req.NoError(second.Upload(context.Background(), uploadID, nil))
	req.Equal([]int64{0, 100, 200, 300, 400, 500, 600, 700, 800, 900}, segments.offsets)
	req.Equal(1000, segments.totalBytes())
	req.Equal(data[300:400], segments.bodies[3])

	resumed, _ := second.GetUpload(uploadID)
	req.Equal(int64(1000), resumed.Offset)
	req.True(resumed.IsFinishedUploading)
}

func TestUploadManager_Upload_SaveFailureKeepsOffset(t *testing.T) {
	req := require.New(t)
	manager, service := newTestManager(t, WithChunkSize(100))
	req.NoError(manager.Initialize())
	source, _ := writeSource(t, 1000)
	expectInitialize(service)
	uploadID, err := manager.InitializeUpload(context.Background(), initRequest(source))
	req.NoError(err)

	// The working directory turns into a plain file while the first segment is in flight
	service.EXPECT().UploadSegment(gomock.Any(), uploadID, int64(0), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ int64, _ []byte) error {
			if err := os.RemoveAll(manager.WorkingDir()); err != nil {
				return err
			}
			return os.WriteFile(manager.WorkingDir(), []byte("x"), 0o644)
		}).Times(1)

	err = manager.Upload(context.Background(), uploadID, nil)
	req.Error(err)

	tracker, ok := manager.GetUpload(uploadID)
	req.True(ok)
	req.Equal(int64(0), tracker.Offset)
	req.False(tracker.IsFinishedUploading)
	req.False(tracker.IsRunning)
}

func TestUploadManager_Upload_ConcurrentUpload(t *testing.T) {
	req := require.New(t)
	manager, service := newTestManager(t)
	req.NoError(manager.Initialize())
	source, _ := writeSource(t, 10)
	expectInitialize(service)
	uploadID, err := manager.InitializeUpload(context.Background(), initRequest(source))
	req.NoError(err)

	trackerPath := filepath.Join(manager.WorkingDir(), uploadID+".yaml")
	before, err := os.ReadFile(trackerPath)
	req.NoError(err)

	manager.trackers[uploadID].IsRunning = true

	err = manager.Upload(context.Background(), uploadID, nil)
	req.ErrorIs(err, apperrors.ErrConcurrentUpload)

	after, err := os.ReadFile(trackerPath)
	req.NoError(err)
	req.Equal(before, after)
	tracker, _ := manager.GetUpload(uploadID)
	req.Equal(int64(0), tracker.Offset)
	req.True(tracker.IsRunning)
}

func TestUploadManager_Upload_RejectsOverlappingCalls(t *testing.T) {
	req := require.New(t)
	manager, service := newTestManager(t)
	req.NoError(manager.Initialize())
	source, _ := writeSource(t, 10)
	expectInitialize(service)
	uploadID, err := manager.InitializeUpload(context.Background(), initRequest(source))
	req.NoError(err)

	started := make(chan struct{})
	unblock := make(chan struct{})
	service.EXPECT().UploadSegment(gomock.Any(), uploadID, int64(0), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ int64, _ []byte) error {
			close(started)
			<-unblock
			return nil
		}).Times(1)

	done := make(chan error, 1)
	go func() {
		done <- manager.Upload(context.Background(), uploadID, nil)
	}()
	<-started

	// Transfer and deletion both refuse to run alongside the first transfer
	req.ErrorIs(manager.Upload(context.Background(), uploadID, nil), apperrors.ErrConcurrentUpload)
	req.ErrorIs(manager.DeleteUpload(context.Background(), uploadID, true), apperrors.ErrConcurrentUpload)

	running, _ := manager.GetUpload(uploadID)
	req.True(running.IsRunning)

	close(unblock)
	req.NoError(<-done)

	finished, _ := manager.GetUpload(uploadID)
	req.False(finished.IsRunning)
	req.True(finished.IsFinishedUploading)
}

func TestUploadManager_Upload_DifferentUploadsDoNotContend(t *testing.T) {
	req := require.New(t)
	manager, service := newTestManager(t)
	req.NoError(manager.Initialize())
	source, _ := writeSource(t, 10)

	service.EXPECT().InitializeUpload(gomock.Any()).Return(upload.Session{UploadID: "first"}, nil)
	service.EXPECT().InitializeUpload(gomock.Any()).Return(upload.Session{UploadID: "second"}, nil)
	_, err := manager.InitializeUpload(context.Background(), initRequest(source))
	req.NoError(err)
	_, err = manager.InitializeUpload(context.Background(), initRequest(source))
	req.NoError(err)

	started := make(chan struct{})
	unblock := make(chan struct{})
	service.EXPECT().UploadSegment(gomock.Any(), "first", int64(0), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ int64, _ []byte) error {
			close(started)
			<-unblock
			return nil
		})
	service.EXPECT().UploadSegment(gomock.Any(), "second", int64(0), gomock.Any()).Return(nil)

	done := make(chan error, 1)
	go func() {
		done <- manager.Upload(context.Background(), "first", nil)
	}()
	<-started

	req.NoError(manager.Upload(context.Background(), "second", nil))

	close(unblock)
	req.NoError(<-done)
}

func TestUploadManager_Upload_MissingSourceFile(t *testing.T) {
	req := require.New(t)
	manager, service := newTestManager(t)
	req.NoError(manager.Initialize())
	expectInitialize(service)
	uploadID, err := manager.InitializeUpload(context.Background(), initRequest(filepath.Join(t.TempDir(), "missing.rpm")))
	req.NoError(err)

	err = manager.Upload(context.Background(), uploadID, nil)

	req.ErrorIs(err, os.ErrNotExist)
	tracker, _ := manager.GetUpload(uploadID)
	req.False(tracker.IsRunning)
	req.False(tracker.IsFinishedUploading)
	req.Equal(int64(0), tracker.Offset)
}

func TestUploadManager_Upload_SourceTruncated(t *testing.T) {
	req := require.New(t)
	manager, _ := newTestManager(t)
	source, _ := writeSource(t, 50)
	store := storage.NewTrackerStore(manager.WorkingDir(), discardLogger())
	req.NoError(store.Save(upload.Tracker{UploadID: "shrunk", SourceFilename: source, Offset: 100}))
	req.NoError(manager.Initialize())

	err := manager.Upload(context.Background(), "shrunk", nil)

	req.ErrorIs(err, apperrors.ErrSourceTruncated)
	tracker, _ := manager.GetUpload("shrunk")
	req.Equal(int64(100), tracker.Offset)
	req.False(tracker.IsRunning)
}

func TestUploadManager_Upload_ContextCanceled(t *testing.T) {
	req := require.New(t)
	manager, service := newTestManager(t, WithChunkSize(100))
	req.NoError(manager.Initialize())
	source, _ := writeSource(t, 500)
	expectInitialize(service)
	uploadID, err := manager.InitializeUpload(context.Background(), initRequest(source))
	req.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calls := 0
	service.EXPECT().UploadSegment(gomock.Any(), uploadID, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ int64, _ []byte) error {
			calls++
			if calls == 2 {
				cancel()
			}
			return nil
		}).Times(2)

	err = manager.Upload(ctx, uploadID, nil)

	req.ErrorIs(err, context.Canceled)
	tracker, _ := manager.GetUpload(uploadID)
	req.Equal(int64(200), tracker.Offset)
	req.False(tracker.IsRunning)
	req.False(tracker.IsFinishedUploading)
}

func TestUploadManager_ImportUpload(t *testing.T) {
	req := require.New(t)
	manager, service := newTestManager(t)
	req.NoError(manager.Initialize())
	expectInitialize(service)
	uploadID, err := manager.InitializeUpload(context.Background(), upload.InitializeRequest{
		SourceFilename: "f",
		RepoID:         "r",
		UnitTypeID:     "t",
		UnitKey:        map[string]any{"k": "v"},
		UnitMetadata:   map[string]any{"m": "m"},
	})
	req.NoError(err)

	// Simulate the upload completion
	manager.trackers[uploadID].IsFinishedUploading = true

	expected := upload.ImportReport{SpawnedTasks: []string{"task-1"}, Result: map[string]any{"state": "waiting"}}
	service.EXPECT().ImportUpload(gomock.Any(), upload.ImportRequest{
		UploadID:     uploadID,
		RepoID:       "r",
		UnitTypeID:   "t",
		UnitKey:      map[string]any{"k": "v"},
		UnitMetadata: map[string]any{"m": "m"},
	}).Return(expected, nil).Times(1)

	report, err := manager.ImportUpload(context.Background(), uploadID)
	req.NoError(err)
	req.Equal(expected, report)

	// Import never removes the tracker
	_, ok := manager.GetUpload(uploadID)
	req.True(ok)
	_, err = os.Stat(filepath.Join(manager.WorkingDir(), uploadID+".yaml"))
	req.NoError(err)
}

func TestUploadManager_ImportUpload_IncompleteUpload(t *testing.T) {
	req := require.New(t)
	manager, service := newTestManager(t)
	req.NoError(manager.Initialize())
	expectInitialize(service)
	uploadID, err := manager.InitializeUpload(context.Background(), initRequest("f"))
	req.NoError(err)

	service.EXPECT().ImportUpload(gomock.Any(), gomock.Any()).Times(0)

	_, err = manager.ImportUpload(context.Background(), uploadID)
	req.ErrorIs(err, apperrors.ErrIncompleteUpload)
}

func TestUploadManager_ImportUpload_ServiceFailure(t *testing.T) {
	req := require.New(t)
	journal := mocks.NewMockImportJournal(gomock.NewController(t))
	manager, service := newTestManager(t, WithImportJournal(journal))
	req.NoError(manager.Initialize())
	expectInitialize(service)
	uploadID, err := manager.InitializeUpload(context.Background(), initRequest("f"))
	req.NoError(err)
	manager.trackers[uploadID].IsFinishedUploading = true

	remoteErr := fmt.Errorf("rpc error: code = Internal")
	service.EXPECT().ImportUpload(gomock.Any(), gomock.Any()).Return(upload.ImportReport{}, remoteErr)
	journal.EXPECT().Record(gomock.Any()).Times(0)

	_, err = manager.ImportUpload(context.Background(), uploadID)
	req.ErrorIs(err, remoteErr)
}

func TestUploadManager_ImportUpload_RecordsJournal(t *testing.T) {
	req := require.New(t)
	journal := mocks.NewMockImportJournal(gomock.NewController(t))
	manager, service := newTestManager(t, WithImportJournal(journal))
	req.NoError(manager.Initialize())
	expectInitialize(service)
	uploadID, err := manager.InitializeUpload(context.Background(), initRequest("f"))
	req.NoError(err)
	manager.trackers[uploadID].IsFinishedUploading = true

	service.EXPECT().ImportUpload(gomock.Any(), gomock.Any()).
		Return(upload.ImportReport{SpawnedTasks: []string{"task-9"}}, nil)
	journal.EXPECT().Record(gomock.Any()).DoAndReturn(func(record contract.ImportRecord) error {
		req.Equal(uploadID, record.UploadID)
		req.Equal("repo-1", record.RepoID)
		req.Equal("type-1", record.UnitTypeID)
		req.Equal([]string{"task-9"}, record.SpawnedTasks)
		req.False(record.ImportedAt.IsZero())
		return fmt.Errorf("disk full")
	})

	// A journal failure does not fail the import
	report, err := manager.ImportUpload(context.Background(), uploadID)
	req.NoError(err)
	req.Equal([]string{"task-9"}, report.SpawnedTasks)
}

func TestUploadManager_DeleteUpload(t *testing.T) {
	req := require.New(t)
	manager, service := newTestManager(t)
	req.NoError(manager.Initialize())
	expectInitialize(service)
	uploadID, err := manager.InitializeUpload(context.Background(), initRequest("f"))
	req.NoError(err)

	trackerPath := filepath.Join(manager.WorkingDir(), uploadID+".yaml")
	_, err = os.Stat(trackerPath)
	req.NoError(err)

	service.EXPECT().DeleteUpload(gomock.Any(), uploadID).Return(nil)

	req.NoError(manager.DeleteUpload(context.Background(), uploadID, false))

	_, err = os.Stat(trackerPath)
	req.True(os.IsNotExist(err))
	_, ok := manager.GetUpload(uploadID)
	req.False(ok)
}

func TestUploadManager_DeleteUpload_ServerError(t *testing.T) {
	req := require.New(t)
	manager, service := newTestManager(t)
	req.NoError(manager.Initialize())
	expectInitialize(service)
	uploadID, err := manager.InitializeUpload(context.Background(), initRequest("f"))
	req.NoError(err)

	service.EXPECT().DeleteUpload(gomock.Any(), uploadID).Return(apperrors.ErrUploadNotFound)

	err = manager.DeleteUpload(context.Background(), uploadID, false)
	req.ErrorIs(err, apperrors.ErrUploadNotFound)

	// Tracker is still present both on disk and in memory
	_, err = os.Stat(filepath.Join(manager.WorkingDir(), uploadID+".yaml"))
	req.NoError(err)
	tracker, ok := manager.GetUpload(uploadID)
	req.True(ok)
	req.False(tracker.IsRunning)
}

func TestUploadManager_DeleteUpload_ServerErrorAndForce(t *testing.T) {
	req := require.New(t)
	manager, service := newTestManager(t)
	req.NoError(manager.Initialize())
	expectInitialize(service)
	uploadID, err := manager.InitializeUpload(context.Background(), initRequest("f"))
	req.NoError(err)

	service.EXPECT().DeleteUpload(gomock.Any(), uploadID).Return(apperrors.ErrUploadNotFound)

	req.NoError(manager.DeleteUpload(context.Background(), uploadID, true))

	_, err = os.Stat(filepath.Join(manager.WorkingDir(), uploadID+".yaml"))
	req.True(os.IsNotExist(err))
	_, ok := manager.GetUpload(uploadID)
	req.False(ok)
}

func TestUploadManager_DeleteUpload_InProgress(t *testing.T) {
	req := require.New(t)
	manager, service := newTestManager(t)
	req.NoError(manager.Initialize())
	expectInitialize(service)
	uploadID, err := manager.InitializeUpload(context.Background(), initRequest("f"))
	req.NoError(err)

	manager.trackers[uploadID].IsRunning = true
	service.EXPECT().DeleteUpload(gomock.Any(), gomock.Any()).Times(0)

	err = manager.DeleteUpload(context.Background(), uploadID, false)
	req.ErrorIs(err, apperrors.ErrConcurrentUpload)

	_, err = os.Stat(filepath.Join(manager.WorkingDir(), uploadID+".yaml"))
	req.NoError(err)
	_, ok := manager.GetUpload(uploadID)
	req.True(ok)
}

func TestUploadManager_MissingUploadRequests(t *testing.T) {
	req := require.New(t)
	manager, _ := newTestManager(t)
	req.NoError(manager.Initialize())
	ctx := context.Background()

	req.ErrorIs(manager.Upload(ctx, "i", nil), apperrors.ErrMissingUploadRequest)
	_, err := manager.ImportUpload(ctx, "i")
	req.ErrorIs(err, apperrors.ErrMissingUploadRequest)
	req.ErrorIs(manager.DeleteUpload(ctx, "i", false), apperrors.ErrMissingUploadRequest)
	req.ErrorIs(manager.DeleteUpload(ctx, "i", true), apperrors.ErrMissingUploadRequest)
}
