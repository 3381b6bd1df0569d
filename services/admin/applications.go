package admin

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"visapoint/database"
	"visapoint/models"
	"visapoint/utils"
)

// ApplicationDetail is one application with everything the detail page shows.
type ApplicationDetail struct {
	Application models.Application      `json:"application"`
	History     []models.StatusEntry    `json:"history"`
	Documents   []models.ClientDocument `json:"documents"`
	Invoice     *models.Invoice         `json:"invoice,omitempty"`
}

func (s *Service) ListApplications(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error) {
	return s.store.Applications.List(ctx, filter)
}

func (s *Service) GetApplication(ctx context.Context, id string) (*ApplicationDetail, error) {
	app, err := s.store.Applications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	history, err := s.store.Statuses.ListByApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	docs, err := s.store.Documents.ListByApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &ApplicationDetail{Application: *app, History: history, Documents: docs}
	if app.OrderID != "" {
		inv, err := s.store.Invoices.GetByOrderID(ctx, app.OrderID)
		switch {
		case err == nil:
			detail.Invoice = inv
		case !errors.Is(err, database.ErrNotFound):
			return nil, err
		}
	}
	return detail, nil
}

// StatusHistory returns the status rows of an application, oldest first.
func (s *Service) StatusHistory(ctx context.Context, applicationID string) ([]models.StatusEntry, error) {
	if _, err := s.store.Applications.GetByID(ctx, applicationID); err != nil {
		return nil, err
	}
	return s.store.Statuses.ListByApplication(ctx, applicationID)
}

// UpdateStatus changes one application's status and appends a history row.
func (s *Service) UpdateStatus(ctx context.Context, id, status, note, actor string) error {
	if !models.IsValidApplicationStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err := s.store.Applications.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	if err := s.store.Statuses.Append(ctx, &models.StatusEntry{
		ApplicationID: id,
		Status:        status,
		Note:          note,
		Actor:         actor,
	}); err != nil {
		// The status itself changed; only the audit row is missing.
		utils.GetLogger().Warn("Failed to record status history", zap.String("applicationID", id), zap.Error(err))
	}
	return nil
}

// BulkUpdateStatus applies one status to every id.
func (s *Service) BulkUpdateStatus(ctx context.Context, ids []string, status, actor string) (BulkResult, error) {
	if len(ids) == 0 {
		return BulkResult{}, ErrNoIDs
	}
	if !models.IsValidApplicationStatus(status) {
		return BulkResult{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	res := newBulkResult()
	for _, id := range ids {
		res.record(id, s.UpdateStatus(ctx, id, status, "", actor))
	}
	utils.GetLogger().Info("Bulk status update",
		zap.String("status", status), zap.Int("succeeded", len(res.Succeeded)), zap.Int("failed", len(res.Failed)))
	return res, nil
}

// DeleteApplication removes the stored files first and keeps the row if any
// of them cannot be removed, so a retry can finish the job.
func (s *Service) DeleteApplication(ctx context.Context, id string) error {
	app, err := s.store.Applications.GetByID(ctx, id)
	if err != nil {
		return err
	}
	for _, url := range app.DocumentURLs() {
		if err := s.files.DeleteURL(ctx, url); err != nil {
			return fmt.Errorf("failed to delete application file: %w", err)
		}
	}

	docs, err := s.store.Documents.ListByApplication(ctx, id)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err := s.deleteDocument(ctx, doc); err != nil {
			return err
		}
	}

	if err := s.store.Statuses.DeleteByApplication(ctx, id); err != nil {
		return err
	}
	if err := s.store.Applications.Delete(ctx, id); err != nil {
		return err
	}
	utils.GetLogger().Info("Application deleted", zap.String("applicationID", id), zap.String("referenceID", app.ReferenceID))
	return nil
}

// BulkDelete deletes each application independently.
func (s *Service) BulkDelete(ctx context.Context, ids []string) (BulkResult, error) {
	if len(ids) == 0 {
		return BulkResult{}, ErrNoIDs
	}
	res := newBulkResult()
	for _, id := range ids {
		err := s.DeleteApplication(ctx, id)
		if err != nil {
			utils.GetLogger().Warn("Bulk delete failed for application", zap.String("applicationID", id), zap.Error(err))
		}
		res.record(id, err)
	}
	return res, nil
}
