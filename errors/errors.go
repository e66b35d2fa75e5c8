package errors

import "fmt"

var (
	ErrMissingUploadRequest = fmt.Errorf("missing upload request")
	ErrConcurrentUpload     = fmt.Errorf("upload already in progress")
	ErrIncompleteUpload     = fmt.Errorf("upload has not finished transferring")
	ErrCorruptTracker       = fmt.Errorf("corrupt upload tracker")
	ErrSourceTruncated      = fmt.Errorf("source file is shorter than the acknowledged offset")
	ErrInvalidRequest       = fmt.Errorf("invalid upload request")
	ErrProtocolViolation    = fmt.Errorf("repository service protocol violation")

	// Remote conditions reported by the repository service.
	ErrUploadNotFound = fmt.Errorf("upload not found on the repository service")
	ErrOffsetMismatch = fmt.Errorf("segment offset rejected by the repository service")
)
