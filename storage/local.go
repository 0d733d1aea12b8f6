package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
)

type local struct {
	dir string
}

// NewLocal stages uploads on the local filesystem under dir.
func NewLocal(dir string) Storage {
	return &local{dir: dir}
}

func (l *local) Save(ctx context.Context, objectName string, r io.Reader, size int64) (string, error) {
	path := filepath.Join(l.dir, objectName)
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Join(ErrStorage, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", errors.Join(ErrStorage, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", errors.Join(ErrStorage, err)
	}

	return path, nil
}
