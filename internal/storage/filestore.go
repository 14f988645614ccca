package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"auctionhouse/internal/auctionerrors"
	"auctionhouse/utils"
)

// PublicPrefix is the URL prefix under which stored uploads are served.
const PublicPrefix = "/uploads"

// allowedTypes is the upload MIME allowlist.
var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// DiskStore saves and deletes uploaded image bytes under a public directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the upload directory if needed and returns a store
// over it.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save validates the content type, writes the bytes under a unique filename
// and returns the public URL.
func (d *DiskStore) Save(filename, contentType string, data []byte) (string, error) {
	if !allowedTypes[contentType] {
		return "", fmt.Errorf("%w: file type %s not allowed, only JPG, PNG, WebP", auctionerrors.ErrInvalidUpload, contentType)
	}

	// Unique prefix keeps concurrent uploads of the same filename apart.
	name := fmt.Sprintf("%d-%s-%s",
		time.Now().UnixMilli(),
		strings.Split(utils.GenerateID(), "-")[0],
		filepath.Base(filename),
	)

	path := filepath.Join(d.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload %s: %w", name, err)
	}

	return PublicPrefix + "/" + name, nil
}

// Remove deletes the backing file for a stored image URL. Only the base name
// is honored, so a stored URL can never point outside the upload directory.
func (d *DiskStore) Remove(imageURL string) error {
	name := filepath.Base(imageURL)
	if name == "." || name == "/" || name == "" {
		return fmt.Errorf("remove upload: invalid image url %q", imageURL)
	}
	if err := os.Remove(filepath.Join(d.dir, name)); err != nil {
		return fmt.Errorf("remove upload %s: %w", name, err)
	}
	return nil
}

// Dir returns the backing directory, for serving static files.
func (d *DiskStore) Dir() string {
	return d.dir
}
