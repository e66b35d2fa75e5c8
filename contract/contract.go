//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"content-repo/domain/upload"
	"context"
	"time"
)

// RepositoryService is the remote side of the upload protocol.
// It owns upload identifiers and the server-side byte offset.
type RepositoryService interface {
	InitializeUpload(ctx context.Context) (upload.Session, error)
	UploadSegment(ctx context.Context, uploadID string, offset int64, data []byte) error
	ImportUpload(ctx context.Context, request upload.ImportRequest) (upload.ImportReport, error)
	// DeleteUpload fails with errors.ErrUploadNotFound if the upload is already gone server-side.
	DeleteUpload(ctx context.Context, uploadID string) error
}

// Worker runs until its job is done or ctx is canceled.
type Worker interface {
	Run(ctx context.Context) error
}

// ProgressFunc is called after each acknowledged segment with the
// cumulative bytes sent and the total size of the source file.
type ProgressFunc func(sent, total int64)

type ImportRecord struct {
	UploadID     string
	RepoID       string
	UnitTypeID   string
	UnitKey      map[string]any
	SpawnedTasks []string
	ImportedAt   time.Time
}

// ImportJournal keeps a history of successful imports.
type ImportJournal interface {
	Record(record ImportRecord) error
	Recent(limit int) ([]ImportRecord, error)
}
