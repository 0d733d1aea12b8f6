package storage

import (
	"context"
	"errors"
	"io"
)

// ErrStorage wraps any failure to persist staged upload bytes.
var ErrStorage = errors.New("storage write failed")

// Storage stages raw upload bytes under a per-job object name and
// returns the location the bytes ended up at.
type Storage interface {
	Save(ctx context.Context, objectName string, r io.Reader, size int64) (string, error)
}
