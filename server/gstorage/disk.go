package gstorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps objects under a local directory. It stands in for GCS when
// no bucket is configured.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, err
	}

	return &DiskStore{root: root}, nil
}

func (ds *DiskStore) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	filePath, err := ds.path(key)
	if err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}

	if _, err = io.Copy(f, body); err != nil {
		f.Close()
		return fmt.Errorf("io.Copy: %v", err)
	}

	return f.Close()
}

func (ds *DiskStore) NewReader(ctx context.Context, key string) (io.ReadCloser, error) {
	filePath, err := ds.path(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrObjectNotExist
	}

	return f, err
}

func (ds *DiskStore) Delete(ctx context.Context, key string) error {
	filePath, err := ds.path(key)
	if err != nil {
		return err
	}

	err = os.Remove(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return ErrObjectNotExist
	}

	return err
}

func (ds *DiskStore) path(key string) (string, error) {
	filePath := filepath.Join(ds.root, filepath.FromSlash(key))
	if !strings.HasPrefix(filePath, filepath.Clean(ds.root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid object key %q", key)
	}

	return filePath, nil
}
