package server

import (
	"content-repo/infrastructure/grpc/uploadpb"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var _ uploadpb.UploadServiceServer = (*UploadServer)(nil)

// ImportedUnit is what the in-memory repository keeps once an upload is imported.
type ImportedUnit struct {
	UploadID   string
	TaskID     string
	RepoID     string
	UnitTypeID string
	UnitKey    map[string]any
	Size       int64
	MimeType   string
	ImportedAt time.Time
}

// UploadServer is an in-memory repository service.
// Segments must arrive contiguously: the offset of each one is the number
// of bytes already received for that upload.
type UploadServer struct {
	log     *slog.Logger
	mu      sync.Mutex
	uploads map[string][]byte
	imports []ImportedUnit
}

func NewUploadServer(log *slog.Logger) *UploadServer {
	return &UploadServer{log: log, uploads: make(map[string][]byte)}
}

func (s *UploadServer) InitializeUpload(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	id := uuid.NewString()

	s.mu.Lock()
	s.uploads[id] = []byte{}
	s.mu.Unlock()

	s.log.Info("Upload opened", "upload_id", id)
	return structpb.NewStruct(map[string]any{
		uploadpb.FieldUploadID: id,
		uploadpb.FieldLocation: fmt.Sprintf("/v2/uploads/%s/", id),
	})
}

func (s *UploadServer) UploadSegment(ctx context.Context, in *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "metadata is missing")
	}
	id := firstValue(md, uploadpb.UploadIDKey)
	if id == "" {
		return nil, status.Errorf(codes.InvalidArgument, "%s is missing", uploadpb.UploadIDKey)
	}
	offset, err := strconv.ParseInt(firstValue(md, uploadpb.OffsetKey), 10, 64)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid %s: %v", uploadpb.OffsetKey, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.uploads[id]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "upload %s not found", id)
	}
	if offset != int64(len(data)) {
		return nil, status.Errorf(codes.FailedPrecondition, "upload %s expects offset %d, got %d", id, len(data), offset)
	}
	s.uploads[id] = append(data, in.GetValue()...)
	s.log.Debug("Segment received", "upload_id", id, "offset", offset, "size", len(in.GetValue()))
	return &emptypb.Empty{}, nil
}

func (s *UploadServer) ImportUpload(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	fields := in.GetFields()
	id := fields[uploadpb.FieldUploadID].GetStringValue()

	s.mu.Lock()
	data, ok := s.uploads[id]
	if !ok {
		s.mu.Unlock()
		return nil, status.Errorf(codes.NotFound, "upload %s not found", id)
	}
	unit := ImportedUnit{
		UploadID:   id,
		TaskID:     uuid.NewString(),
		RepoID:     fields[uploadpb.FieldRepoID].GetStringValue(),
		UnitTypeID: fields[uploadpb.FieldUnitTypeID].GetStringValue(),
		UnitKey:    fields[uploadpb.FieldUnitKey].GetStructValue().AsMap(),
		Size:       int64(len(data)),
		MimeType:   mimetype.Detect(data).String(),
		ImportedAt: time.Now().UTC(),
	}
	s.imports = append(s.imports, unit)
	s.mu.Unlock()

	s.log.Info("Upload imported",
		"upload_id", id, "repo_id", unit.RepoID, "unit_type_id", unit.UnitTypeID,
		"size", humanize.Bytes(uint64(unit.Size)), "mime_type", unit.MimeType)

	return structpb.NewStruct(map[string]any{
		uploadpb.FieldSpawnedTasks: []any{unit.TaskID},
		uploadpb.FieldResult: map[string]any{
			"size":      float64(unit.Size),
			"mime_type": unit.MimeType,
		},
	})
}

func (s *UploadServer) DeleteUpload(_ context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
	id := in.GetValue()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.uploads[id]; !ok {
		return nil, status.Errorf(codes.NotFound, "upload %s not found", id)
	}
	delete(s.uploads, id)
	s.log.Info("Upload deleted", "upload_id", id)
	return &emptypb.Empty{}, nil
}

// Received returns a copy of the bytes received so far for id.
func (s *UploadServer) Received(id string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.uploads[id]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

func (s *UploadServer) Imports() []ImportedUnit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ImportedUnit(nil), s.imports...)
}

func firstValue(md metadata.MD, key string) string {
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}
