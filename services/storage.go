package services

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

var allowedUploadMimeTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/heic": true,
}

// SetupFileStore picks the upload backend from STORAGE_BACKEND: "s3" for an
// R2/S3 bucket, anything else for local disk.
func SetupFileStore(ctx context.Context) (FileStoreProvider, error) {
	if GetEnv("STORAGE_BACKEND", "local") == "s3" {
		return NewS3FileStore(ctx, GetEnv("R2_BUCKET_NAME", ""))
	}
	return NewLocalFileStore(GetEnv("UPLOAD_DIR", "uploads"))
}

// FileStoreProvider abstracts where clothing photos live. Paths returned by
// Save are the stable identifiers stored in the database.
type FileStoreProvider interface {
	// Save stores content under a fresh name and returns its path.
	Save(fileName string, content []byte) (string, error)
	// Open materializes the stored file on the local filesystem for analysis
	// and returns a readable path.
	Open(path string) (string, error)
	// ReadURL returns a URL clients can fetch the image from.
	ReadURL(ctx context.Context, path string) (string, error)
	// Remove deletes the stored file. Missing files are not an error.
	Remove(path string) error
}

// LocalFileStore keeps uploads on disk under Dir, served as static files.
type LocalFileStore struct {
	Dir string
}

func NewLocalFileStore(dir string) (*LocalFileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %v", dir, err)
	}
	return &LocalFileStore{Dir: dir}, nil
}

func clothFileName(originalName string, content []byte) (string, error) {
	mimeType := http.DetectContentType(content)
	if !allowedUploadMimeTypes[mimeType] {
		return "", fmt.Errorf("unsupported file type: %s", mimeType)
	}
	ext := filepath.Ext(originalName)
	if ext == "" {
		switch mimeType {
		case "image/png":
			ext = ".png"
		case "image/heic":
			ext = ".heic"
		default:
			ext = ".jpg"
		}
	}
	return fmt.Sprintf("cloth_%d%s", time.Now().UnixNano(), ext), nil
}

func (l *LocalFileStore) Save(fileName string, content []byte) (string, error) {
	name, err := clothFileName(fileName, content)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(l.Dir, name)
	if err := os.WriteFile(fullPath, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write upload %s: %v", fullPath, err)
	}
	return filepath.ToSlash(filepath.Join(filepath.Base(l.Dir), name)), nil
}

func (l *LocalFileStore) Open(path string) (string, error) {
	fullPath := l.resolve(path)
	if _, err := os.Stat(fullPath); err != nil {
		return "", fmt.Errorf("stored file %s not found: %v", path, err)
	}
	return fullPath, nil
}

func (l *LocalFileStore) ReadURL(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	return "/" + filepath.ToSlash(path), nil
}

func (l *LocalFileStore) Remove(path string) error {
	err := os.Remove(l.resolve(path))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// resolve maps a stored path like "uploads/cloth_1.jpg" back onto Dir,
// tolerating Dir being an absolute location.
func (l *LocalFileStore) resolve(path string) string {
	return filepath.Join(filepath.Dir(l.Dir), filepath.FromSlash(path))
}
