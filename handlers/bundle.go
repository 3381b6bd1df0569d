package handlers

import (
	"visapoint/database/repository"
	"visapoint/services/admin"
	"visapoint/services/application"
	"visapoint/services/catalog"
	"visapoint/services/identity"
	"visapoint/services/session"
)

// HandlerBundle groups the collaborators every endpoint handler needs.
type HandlerBundle struct {
	Store        *repository.Store
	Orchestrator *application.Orchestrator
	Catalog      *catalog.Service
	Admin        *admin.Service
	Identity     identity.Provider
	AdminCreds   identity.AdminCredentials
	Sessions     *session.Manager
	Currency     string
	// PublicBaseURL is where the browser lands after a payment redirect.
	PublicBaseURL string
	// UploadDir holds multipart uploads until they reach object storage.
	UploadDir string
}
