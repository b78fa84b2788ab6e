package logos

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"facturi/internal/core"
)

// Decoded payloads above this size are rejected.
const maxLogoBytes = 5 * 1024 * 1024

var extensions = map[string]string{
	"image/jpeg": "jpeg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Store persists utility logos and serves back their public URLs.
type Store interface {
	Save(utilityID int64, dataURL string) (publicURL string, err error)
	Remove(publicURL string) error
}

// DiskStore writes logo files under a local directory and exposes them
// under a configured URL prefix.
type DiskStore struct {
	dir     string
	baseURL string
	now     func() time.Time
}

var _ Store = (*DiskStore)(nil)

func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create logo directory: %w", err)
	}
	return &DiskStore{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		now:     time.Now,
	}, nil
}

// Dir returns the directory logo files are written to.
func (s *DiskStore) Dir() string {
	return s.dir
}

func (s *DiskStore) Save(utilityID int64, dataURL string) (string, error) {
	mediaType, payload, err := decodeDataURL(dataURL)
	if err != nil {
		return "", err
	}

	ext := extensions[mediaType]
	name := fmt.Sprintf("utility-%d-%d.%s", utilityID, s.now().UnixMilli(), ext)
	if err := os.WriteFile(filepath.Join(s.dir, name), payload, 0644); err != nil {
		return "", fmt.Errorf("write logo file: %w", err)
	}

	return s.baseURL + "/" + name, nil
}

// Remove deletes the file behind a previously returned public URL. URLs
// outside this store's prefix are ignored.
func (s *DiskStore) Remove(publicURL string) error {
	name, ok := strings.CutPrefix(publicURL, s.baseURL+"/")
	if !ok || name == "" || strings.Contains(name, "/") {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove logo file: %w", err)
	}
	return nil
}

// decodeDataURL validates and decodes a base64 image data URL of the form
// "data:image/png;base64,...".
func decodeDataURL(dataURL string) (mediaType string, payload []byte, err error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: logo must be a data URL", core.ErrInvalidArgument)
	}
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: malformed data URL", core.ErrInvalidArgument)
	}
	mediaType, encoding, ok := strings.Cut(meta, ";")
	if !ok || encoding != "base64" {
		return "", nil, fmt.Errorf("%w: logo must be base64 encoded", core.ErrInvalidArgument)
	}
	if _, known := extensions[mediaType]; !known {
		return "", nil, fmt.Errorf("%w: unsupported image type %q", core.ErrInvalidArgument, mediaType)
	}

	payload, err = base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("%w: invalid base64 payload", core.ErrInvalidArgument)
	}
	if len(payload) == 0 {
		return "", nil, fmt.Errorf("%w: empty logo payload", core.ErrInvalidArgument)
	}
	if len(payload) > maxLogoBytes {
		return "", nil, fmt.Errorf("%w: logo exceeds %d bytes", core.ErrInvalidArgument, maxLogoBytes)
	}
	return mediaType, payload, nil
}
