// Package filex holds file-system helpers used by the CLI.
package filex

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// MaxImageBytes bounds images accepted for upload.
const MaxImageBytes = 5 << 20

var (
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrImageTooLarge    = errors.New("image too large")
)

var imageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// ReadImage reads the image at path and sniffs its content type from the
// leading bytes. The file extension is ignored.
func ReadImage(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) > MaxImageBytes {
		return nil, "", fmt.Errorf("%w: %s exceeds %d bytes", ErrImageTooLarge, path, MaxImageBytes)
	}

	ct := http.DetectContentType(data)
	if _, ok := imageTypes[ct]; !ok {
		return nil, "", fmt.Errorf("%w: %s is %s", ErrUnsupportedImage, path, ct)
	}
	return data, ct, nil
}
