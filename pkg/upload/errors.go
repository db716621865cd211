package upload

import "errors"

var (
	// Registration and configuration misuse
	ErrInvalidEvent  = errors.New("invalid upload event")
	ErrNilHook       = errors.New("hook is nil")
	ErrInvalidOption = errors.New("invalid upload option value")

	// Ingestion errors
	ErrNoFiles           = errors.New("no uploaded files found")
	ErrNotMultipart      = errors.New("request is not multipart/form-data")
	ErrFailedToParseForm = errors.New("failed to parse multipart form")

	// Mover errors, reported through CodeExternalMoveFailed on the file
	ErrFailedToOpenFile   = errors.New("failed to open file")
	ErrInvalidPath        = errors.New("invalid path")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrFailedToLoadConfig = errors.New("failed to load AWS config")
	ErrBucketNotFound     = errors.New("bucket not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrRequestTimeout     = errors.New("request timed out")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
	ErrOperationTimeout   = errors.New("operation timed out")
	ErrOperationCanceled  = errors.New("operation canceled")
	ErrFTPConnect         = errors.New("failed to connect to FTP server")
	ErrFTPLogin           = errors.New("FTP login failed")
	ErrFTPStore           = errors.New("failed to store file on FTP server")

	// Locking
	ErrLockNotAcquired = errors.New("destination lock not acquired")
)
