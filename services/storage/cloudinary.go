package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore keeps files in Cloudinary.
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStore(cld *cloudinary.Cloudinary) *CloudinaryStore {
	return &CloudinaryStore{cld: cld}
}

func (s *CloudinaryStore) Put(ctx context.Context, localPath, folder string) (string, error) {
	result, err := s.cld.Upload.Upload(ctx, localPath, uploader.UploadParams{
		Folder:       folder,
		ResourceType: "auto",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("failed to upload file: %s", result.Error.Message)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("failed to upload file: no url returned")
	}
	return result.SecureURL, nil
}

func (s *CloudinaryStore) Remove(ctx context.Context, rawURL string) error {
	resourceType, publicID, err := ParseAssetURL(rawURL)
	if err != nil {
		return err
	}
	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("failed to delete file: %s", result.Error.Message)
	}
	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("failed to delete file: %s", result.Result)
	}
	return nil
}

// ParseAssetURL extracts the resource type and public id from a delivery URL
// such as https://res.cloudinary.com/<cloud>/image/upload/v17/<folder>/<name>.jpg.
// Raw assets keep their extension in the public id.
func ParseAssetURL(rawURL string) (resourceType, publicID string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid asset url: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	idx := -1
	for i, p := range parts {
		if p == "upload" && i > 0 {
			idx = i
			break
		}
	}
	if idx < 0 || idx+1 >= len(parts) {
		return "", "", fmt.Errorf("invalid asset url: %q", rawURL)
	}
	resourceType = parts[idx-1]
	rest := parts[idx+1:]
	if len(rest) > 1 && isVersion(rest[0]) {
		rest = rest[1:]
	}
	publicID, err = url.PathUnescape(strings.Join(rest, "/"))
	if err != nil {
		return "", "", fmt.Errorf("invalid asset url: %w", err)
	}
	if resourceType != "raw" {
		publicID = strings.TrimSuffix(publicID, path.Ext(publicID))
	}
	return resourceType, publicID, nil
}

func isVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
