package admin

import (
	"context"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"visapoint/models"
	"visapoint/utils"
)

// UploadClientDocument stores a staff file and shares it with the client.
// Unlike wizard uploads there is no local fallback.
func (s *Service) UploadClientDocument(ctx context.Context, doc models.ClientDocument, localPath string) (*models.ClientDocument, error) {
	if strings.TrimSpace(doc.UserID) == "" {
		return nil, fmt.Errorf("client id is required")
	}
	if doc.ApplicationID != "" {
		app, err := s.store.Applications.GetByID(ctx, doc.ApplicationID)
		if err != nil {
			return nil, err
		}
		if app.UserID != doc.UserID {
			return nil, fmt.Errorf("application %s does not belong to client %s", doc.ApplicationID, doc.UserID)
		}
	}

	url, err := s.files.Put(ctx, localPath, path.Join("client-documents", doc.UserID))
	if err != nil {
		return nil, fmt.Errorf("failed to upload document: %w", err)
	}
	doc.URL = url
	if err := s.store.Documents.Create(ctx, &doc); err != nil {
		// Do not leave an orphaned object behind.
		if derr := s.files.DeleteURL(ctx, url); derr != nil {
			utils.GetLogger().Warn("Failed to remove orphaned upload", zap.String("url", url), zap.Error(derr))
		}
		return nil, err
	}
	return &doc, nil
}

func (s *Service) DeleteClientDocument(ctx context.Context, id string) error {
	doc, err := s.store.Documents.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.deleteDocument(ctx, *doc)
}

func (s *Service) deleteDocument(ctx context.Context, doc models.ClientDocument) error {
	if err := s.files.DeleteURL(ctx, doc.URL); err != nil {
		return fmt.Errorf("failed to delete document file: %w", err)
	}
	return s.store.Documents.Delete(ctx, doc.ID)
}
