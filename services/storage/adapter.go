package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"go.uber.org/zap"

	"visapoint/models"
	"visapoint/utils"
)

const fallbackWarning = "Upload failed; the file will be uploaded later"

// Adapter wraps an ObjectStore so uploads degrade to local previews instead
// of failing.
type Adapter struct {
	store        ObjectStore
	folder       string
	previewLimit int64
}

func NewAdapter(store ObjectStore, folder string, previewLimit int64) *Adapter {
	if folder == "" {
		folder = "visa-documents"
	}
	return &Adapter{store: store, folder: folder, previewLimit: previewLimit}
}

// Upload stores the local file and always returns a usable UploadedFile. On
// failure the temp file is kept and the result is marked as a local preview.
func (a *Adapter) Upload(ctx context.Context, in models.UploadedFile) models.UploadedFile {
	out := in
	out.Warning = ""
	remote, err := a.store.Put(ctx, in.LocalPath, a.folderFor(in.Kind))
	if err == nil {
		out.URL = remote
		out.IsLocalPreview = false
		out.DataURL = ""
		a.cleanup(in.LocalPath)
		out.LocalPath = ""
		return out
	}

	utils.GetLogger().Warn("Upload failed, keeping local preview",
		zap.String("kind", in.Kind), zap.String("file", in.FileName), zap.Error(err))
	utils.GetMetrics().UploadFallbacks.Inc()

	out.URL = ""
	out.IsLocalPreview = true
	out.Warning = fallbackWarning
	out.DataURL = a.dataURL(in)
	return out
}

// Retry re-attempts a local preview. Remote files are returned unchanged.
func (a *Adapter) Retry(ctx context.Context, f models.UploadedFile) models.UploadedFile {
	if !f.IsLocalPreview {
		return f
	}
	if f.LocalPath == "" {
		return f
	}
	return a.Upload(ctx, f)
}

// RetryAll runs Retry over a document map and returns a new map.
func (a *Adapter) RetryAll(ctx context.Context, docs map[string]models.UploadedFile) map[string]models.UploadedFile {
	out := make(map[string]models.UploadedFile, len(docs))
	for kind, f := range docs {
		out[kind] = a.Retry(ctx, f)
	}
	return out
}

// Delete removes the file. Local previews only drop their temp file.
func (a *Adapter) Delete(ctx context.Context, f models.UploadedFile) error {
	if f.IsLocalPreview || f.URL == "" {
		a.cleanup(f.LocalPath)
		return nil
	}
	if err := a.store.Remove(ctx, f.URL); err != nil {
		return fmt.Errorf("failed to delete %s: %w", f.Kind, err)
	}
	return nil
}

// DeleteURL removes a stored object by URL. Empty URLs are ignored.
func (a *Adapter) DeleteURL(ctx context.Context, url string) error {
	if url == "" || strings.HasPrefix(url, "data:") {
		return nil
	}
	return a.store.Remove(ctx, url)
}

// Put uploads a file that must not fall back, such as staff uploads.
func (a *Adapter) Put(ctx context.Context, localPath, subfolder string) (string, error) {
	defer a.cleanup(localPath)
	return a.store.Put(ctx, localPath, path.Join(a.folder, subfolder))
}

func (a *Adapter) folderFor(kind string) string {
	if kind == "" {
		return a.folder
	}
	return path.Join(a.folder, kind)
}

func (a *Adapter) dataURL(f models.UploadedFile) string {
	if f.LocalPath == "" {
		return ""
	}
	info, err := os.Stat(f.LocalPath)
	if err != nil || (a.previewLimit > 0 && info.Size() > a.previewLimit) {
		return ""
	}
	data, err := os.ReadFile(f.LocalPath)
	if err != nil {
		return ""
	}
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func (a *Adapter) cleanup(localPath string) {
	if localPath == "" {
		return
	}
	if err := os.Remove(localPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		utils.GetLogger().Debug("Failed to remove temp file", zap.String("path", localPath), zap.Error(err))
	}
}
