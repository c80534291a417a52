// Package uploads stores evidence photos attached to corrective actions.
package uploads

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Uploader stores an evidence file and returns the URL it will be served
// under. Implementations are external collaborators of the compliance
// workflow; the corrective-action service only depends on this interface.
type Uploader interface {
	Upload(ctx context.Context, filename string, content io.Reader) (string, error)
}

// LocalUploader writes evidence files to a local directory. Suitable for
// single-node deployments; the served URL is PublicBaseURL + stored name.
type LocalUploader struct {
	Dir           string
	PublicBaseURL string
	MaxSizeBytes  int64
}

// NewLocalUploader creates the upload directory if needed.
func NewLocalUploader(dir, publicBaseURL string, maxSizeBytes int64) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalUploader{Dir: dir, PublicBaseURL: publicBaseURL, MaxSizeBytes: maxSizeBytes}, nil
}

var _ Uploader = (*LocalUploader)(nil)

// Upload stores the file under a random name, preserving the extension.
func (u *LocalUploader) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	stored := uuid.New().String() + ext
	path := filepath.Join(u.Dir, stored)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create evidence file: %w", err)
	}
	defer f.Close()

	limit := u.MaxSizeBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	n, err := io.Copy(f, io.LimitReader(content, limit+1))
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write evidence file: %w", err)
	}
	if n > limit {
		os.Remove(path)
		return "", fmt.Errorf("evidence file exceeds %d bytes", limit)
	}

	return strings.TrimRight(u.PublicBaseURL, "/") + "/" + stored, nil
}
