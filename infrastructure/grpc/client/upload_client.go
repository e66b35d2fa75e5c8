package client

import (
	"content-repo/contract"
	"content-repo/domain/upload"
	apperrors "content-repo/errors"
	"content-repo/infrastructure/grpc/uploadpb"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/samber/lo"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var _ contract.RepositoryService = (*UploadClient)(nil)

// UploadClient talks to a remote repository over gRPC.
type UploadClient struct {
	client  uploadpb.UploadServiceClient
	timeout time.Duration
	log     *slog.Logger
}

func NewUploadClient(conn grpc.ClientConnInterface, timeout time.Duration, log *slog.Logger) *UploadClient {
	return &UploadClient{client: uploadpb.NewUploadServiceClient(conn), timeout: timeout, log: log}
}

// NewConn opens a plaintext connection to addr. creds is optional.
func NewConn(addr string, creds credentials.PerRPCCredentials, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	if creds != nil {
		opts = append(opts, grpc.WithPerRPCCredentials(creds))
	}
	return grpc.NewClient(addr, opts...)
}

func (c *UploadClient) InitializeUpload(ctx context.Context) (upload.Session, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.client.InitializeUpload(ctx, &emptypb.Empty{})
	if err != nil {
		return upload.Session{}, toDomainError(err)
	}
	fields := resp.GetFields()
	session := upload.Session{
		UploadID: fields[uploadpb.FieldUploadID].GetStringValue(),
		Location: fields[uploadpb.FieldLocation].GetStringValue(),
	}
	c.log.Debug("Upload session opened", "upload_id", session.UploadID, "location", session.Location)
	return session, nil
}

func (c *UploadClient) UploadSegment(ctx context.Context, uploadID string, offset int64, data []byte) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	ctx = metadata.AppendToOutgoingContext(ctx,
		uploadpb.UploadIDKey, uploadID,
		uploadpb.OffsetKey, strconv.FormatInt(offset, 10),
	)
	if _, err := c.client.UploadSegment(ctx, wrapperspb.Bytes(data)); err != nil {
		return toDomainError(err)
	}
	return nil
}

func (c *UploadClient) ImportUpload(ctx context.Context, request upload.ImportRequest) (upload.ImportReport, error) {
	in, err := toPbImportRequest(request)
	if err != nil {
		return upload.ImportReport{}, fmt.Errorf("%w: %s: %v", apperrors.ErrInvalidRequest, request.UploadID, err)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.client.ImportUpload(ctx, in)
	if err != nil {
		return upload.ImportReport{}, toDomainError(err)
	}
	return fromPbImportReport(resp), nil
}

func (c *UploadClient) DeleteUpload(ctx context.Context, uploadID string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if _, err := c.client.DeleteUpload(ctx, wrapperspb.String(uploadID)); err != nil {
		return toDomainError(err)
	}
	return nil
}

func (c *UploadClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// toDomainError keeps the gRPC status reachable while exposing the matching sentinel.
func toDomainError(err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %w", apperrors.ErrUploadNotFound, err)
	case codes.FailedPrecondition:
		return fmt.Errorf("%w: %w", apperrors.ErrOffsetMismatch, err)
	default:
		return err
	}
}

func toPbImportRequest(request upload.ImportRequest) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		uploadpb.FieldUploadID:       request.UploadID,
		uploadpb.FieldRepoID:         request.RepoID,
		uploadpb.FieldUnitTypeID:     request.UnitTypeID,
		uploadpb.FieldUnitKey:        nullable(request.UnitKey),
		uploadpb.FieldUnitMetadata:   nullable(request.UnitMetadata),
		uploadpb.FieldOverrideConfig: nullable(request.OverrideConfig),
	})
}

func fromPbImportReport(resp *structpb.Struct) upload.ImportReport {
	fields := resp.GetFields()
	var result map[string]any
	if s := fields[uploadpb.FieldResult].GetStructValue(); s != nil {
		result = s.AsMap()
	}
	return upload.ImportReport{
		SpawnedTasks: lo.Map(fields[uploadpb.FieldSpawnedTasks].GetListValue().GetValues(), func(v *structpb.Value, _ int) string {
			return v.GetStringValue()
		}),
		Result: result,
	}
}

// nullable sends a nil map as a protobuf null instead of an empty struct.
func nullable(m map[string]any) any {
	return lo.Ternary[any](m == nil, nil, m)
}
