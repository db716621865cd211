package records

import "errors"

var (
	ErrNotFound     = errors.New("upload record not found")
	ErrConflict     = errors.New("upload record already exists")
	ErrInsertFailed = errors.New("failed to insert upload record")
	ErrQueryFailed  = errors.New("failed to query upload record")
)
