package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	domainRepo "mediconnect/internal/domain/repository"

	"github.com/spf13/afero"
)

var (
	ErrInvalidKey = errors.New("invalid storage key")
	ErrKeyExists  = errors.New("storage key already exists")
)

// blobStore keeps every bucket as a directory on an afero filesystem.
type blobStore struct {
	fs afero.Fs
}

// NewLocalBlobStore stores blobs under root on the local disk.
func NewLocalBlobStore(root string) (domainRepo.BlobStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return NewBlobStore(afero.NewBasePathFs(afero.NewOsFs(), root)), nil
}

func NewBlobStore(fs afero.Fs) domainRepo.BlobStore {
	return &blobStore{fs: fs}
}

func (s *blobStore) Put(ctx context.Context, bucket, key string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	full, err := objectPath(bucket, key)
	if err != nil {
		return "", err
	}

	exists, err := afero.Exists(s.fs, full)
	if err != nil {
		return "", err
	}
	if exists {
		return "", ErrKeyExists
	}

	if err := s.fs.MkdirAll(path.Dir(full), 0o750); err != nil {
		return "", fmt.Errorf("create bucket directory: %w", err)
	}

	f, err := s.fs.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		s.fs.Remove(full)
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		s.fs.Remove(full)
		return "", fmt.Errorf("close blob: %w", err)
	}

	return key, nil
}

func (s *blobStore) Open(ctx context.Context, bucket, p string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := objectPath(bucket, p)
	if err != nil {
		return nil, err
	}

	f, err := s.fs.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domainRepo.ErrBlobNotFound
		}
		return nil, err
	}
	return f, nil
}

// Remove deletes the object. Removing a missing object succeeds.
func (s *blobStore) Remove(ctx context.Context, bucket, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := objectPath(bucket, p)
	if err != nil {
		return err
	}

	if err := s.fs.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// objectPath rejects keys that would escape the bucket directory.
func objectPath(bucket, key string) (string, error) {
	if bucket == "" || key == "" || strings.HasPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidKey
	}
	return path.Join(bucket, clean), nil
}
