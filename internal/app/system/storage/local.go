// internal/app/system/storage/local.go

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Local stores objects as files under a root directory and serves them
// from a public base URL. Suitable for development and single-node
// deployments.
type Local struct {
	root    string
	baseURL string
}

// NewLocal creates the root directory if needed.
func NewLocal(root, baseURL string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Local{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *Local) Put(_ context.Context, filename string, r io.Reader, _ int64, _ string) (Object, error) {
	id := uuid.NewString() + "_" + filepath.Base(filename)
	dst := filepath.Join(l.root, id)

	f, err := os.Create(dst)
	if err != nil {
		return Object{}, fmt.Errorf("create object file: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return Object{}, fmt.Errorf("write object file: %w", err)
	}

	return Object{ID: id, URL: l.baseURL + "/" + id, Size: n}, nil
}

func (l *Local) Delete(_ context.Context, id string) error {
	// Reject IDs that would escape the root.
	if id == "" || filepath.Base(id) != id {
		return ErrObjectNotFound
	}
	err := os.Remove(filepath.Join(l.root, id))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrObjectNotFound
	}
	return err
}
