package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"visapoint/database"
	"visapoint/services/admin"
	"visapoint/services/application"
	"visapoint/services/catalog"
	"visapoint/services/identity"
	"visapoint/services/wizard"
	"visapoint/utils"
)

// respondError maps service errors onto HTTP statuses. Anything unknown is a 500.
func respondError(c *gin.Context, message string, err error) {
	var verr *wizard.ValidationError
	if errors.As(err, &verr) {
		utils.JSONFieldError(c, verr.Field, verr.Message)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, wizard.ErrInvalidTransition),
		errors.Is(err, application.ErrAlreadyPaid),
		errors.Is(err, identity.ErrEmailExistsWrongPassword),
		errors.Is(err, identity.ErrAlreadyRegistered),
		errors.Is(err, database.ErrDuplicate):
		status = http.StatusConflict
	case errors.Is(err, application.ErrSessionNotFound),
		errors.Is(err, application.ErrUnknownOrder),
		errors.Is(err, application.ErrServiceUnavailable),
		errors.Is(err, database.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, application.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, identity.ErrInvalidCredentials),
		errors.Is(err, identity.ErrSignUpFailed),
		errors.Is(err, utils.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, identity.ErrWeakPassword),
		errors.Is(err, catalog.ErrInvalidService),
		errors.Is(err, catalog.ErrInvalidReorder),
		errors.Is(err, admin.ErrInvalidStatus),
		errors.Is(err, admin.ErrNoIDs),
		errors.Is(err, admin.ErrInvalidInvoice):
		status = http.StatusBadRequest
	}
	utils.JSONError(c, status, message, err.Error())
}
