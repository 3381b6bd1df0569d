package application

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"visapoint/models"
	"visapoint/services/identity"
	"visapoint/services/payment"
	"visapoint/services/wizard"
	"visapoint/utils"
)

const initiationFailedMessage = "Payment could not be started. Please try again."

func (o *Orchestrator) createApplication(ctx context.Context, s wizard.State, e wizard.CreateApplication, out *Outcome) (wizard.Event, error) {
	userID, email := e.UserID, e.Email
	if userID == "" {
		res, err := o.identity.Resolve(ctx, identity.SignUpInput{
			Name:     s.Applicant.Name,
			Email:    e.Email,
			Password: e.Password,
			Phone:    e.Phone,
		})
		if err != nil {
			return nil, err
		}
		userID, email = res.User.ID, res.User.Email
		out.User = res.User
		out.Account = res.Outcome
	}

	// Files that fell back to local previews get one more upload attempt.
	docs := o.uploads.RetryAll(ctx, s.Documents)

	now := time.Now()
	app := &models.Application{
		ID:                 uuid.New().String(),
		ReferenceID:        utils.NewReferenceID(now),
		UserID:             userID,
		Name:               s.Applicant.Name,
		Email:              email,
		Phone:              e.Phone,
		Nationality:        s.Nationality,
		VisaType:           s.Service.Title,
		ServiceID:          s.Service.ID,
		Country:            s.Country,
		AppointmentType:    s.AppointmentType,
		Location:           s.Location,
		VisaCity:           s.VisaCity,
		NumberOfTravellers: s.NumberOfTravellers,
		Travellers:         s.Travellers,
		TravelDate:         s.TravelDate,
		TotalPrice:         s.TotalPrice,
		Currency:           s.Currency,
		PassportURL:        remoteURL(docs[models.DocPassport]),
		PhotoURL:           remoteURL(docs[models.DocPhoto]),
		DocumentURL:        remoteURL(docs[models.DocDocument]),
		Paid:               false,
		Status:             models.StatusPending,
	}
	app.OrderID = payment.GenerateOrderID(app.ID)

	if err := o.store.Applications.Create(ctx, app); err != nil {
		utils.GetMetrics().ErrorsCount.WithLabelValues("create_application").Inc()
		return nil, fmt.Errorf("failed to save application: %w", err)
	}
	utils.GetMetrics().ApplicationsCreated.Inc()
	utils.GetLogger().Info("Application created",
		zap.String("applicationID", app.ID),
		zap.String("referenceID", app.ReferenceID),
		zap.String("sessionID", s.SessionID))

	if err := o.store.Statuses.Append(ctx, &models.StatusEntry{
		ApplicationID: app.ID,
		Status:        models.StatusPending,
		Note:          "Application submitted",
		Actor:         email,
	}); err != nil {
		utils.GetLogger().Warn("Failed to record initial status", zap.String("applicationID", app.ID), zap.Error(err))
	}

	if err := o.notifier.NotifyApplicationSubmitted(ctx, applicationMessage(app, s.Language)); err != nil {
		utils.GetLogger().Warn("Application notifications failed",
			zap.String("applicationID", app.ID), zap.Error(err))
	}

	return wizard.ApplicationCreated{
		ApplicationID: app.ID,
		ReferenceID:   app.ReferenceID,
		OrderID:       app.OrderID,
		UserID:        userID,
		Email:         email,
		Documents:     docs,
	}, nil
}

func remoteURL(f models.UploadedFile) string {
	if f.IsLocalPreview {
		return ""
	}
	return f.URL
}

func applicationMessage(app *models.Application, language string) models.ApplicationMessage {
	return models.ApplicationMessage{
		ApplicationID:      app.ID,
		ReferenceID:        app.ReferenceID,
		Name:               app.Name,
		Email:              app.Email,
		Phone:              app.Phone,
		VisaType:           app.VisaType,
		Nationality:        app.Nationality,
		TravelDate:         app.TravelDate,
		NumberOfTravellers: app.NumberOfTravellers,
		TotalPrice:         app.TotalPrice,
		Currency:           app.Currency,
		Language:           language,
	}
}

func (o *Orchestrator) initiatePayment(ctx context.Context, s wizard.State, e wizard.InitiatePayment) wizard.Event {
	returnURL := o.callbackURL(e.OrderID, false)
	init, err := o.gateway.InitiatePayment(ctx, payment.Request{
		OrderID:     e.OrderID,
		Amount:      e.Amount,
		Currency:    e.Currency,
		Description: e.Description,
		Customer: payment.Customer{
			Name:  e.Customer.Name,
			Email: e.Customer.Email,
			Phone: e.Customer.Phone,
		},
		ReturnURL:   returnURL,
		CancelURL:   o.callbackURL(e.OrderID, true),
		CallbackURL: o.webhookURL(),
	})
	if err != nil {
		utils.GetMetrics().PaymentsInitiated.WithLabelValues("error").Inc()
		utils.GetLogger().Error("Payment initiation failed",
			zap.String("orderID", e.OrderID), zap.String("provider", o.gateway.Provider()), zap.Error(err))
		return wizard.PaymentInitiationFailed{Message: initiationFailedMessage}
	}
	utils.GetMetrics().PaymentsInitiated.WithLabelValues("ok").Inc()

	if err := o.pending.Put(ctx, models.PendingPayment{
		OrderID:       e.OrderID,
		SessionID:     s.SessionID,
		ApplicationID: e.ApplicationID,
		PaymentID:     init.PaymentID,
		Provider:      o.gateway.Provider(),
		CreatedAt:     time.Now(),
	}); err != nil {
		// The poll still covers this attempt; only reconciliation loses it.
		utils.GetLogger().Warn("Failed to record pending payment", zap.String("orderID", e.OrderID), zap.Error(err))
	}
	return wizard.PaymentInitiated{PaymentID: init.PaymentID, PaymentURL: init.PaymentURL, At: time.Now()}
}

// callbackURL is where the gateway sends the browser back. The cancel variant
// carries cancel=true so a payer backing out is not read as still pending.
func (o *Orchestrator) callbackURL(orderID string, cancelled bool) string {
	q := url.Values{}
	q.Set("order_id", orderID)
	q.Set("provider", o.gateway.Provider())
	if cancelled {
		q.Set("cancel", "true")
	}
	return strings.TrimRight(o.opts.APIBaseURL, "/") + "/api/payments/callback?" + q.Encode()
}

func (o *Orchestrator) webhookURL() string {
	return strings.TrimRight(o.opts.APIBaseURL, "/") + "/api/payments/webhook"
}

// AttachDocument uploads a file for the session and records it. Upload
// failures degrade to a local preview and never fail the call.
func (o *Orchestrator) AttachDocument(ctx context.Context, sessionID string, file models.UploadedFile) (*Outcome, error) {
	unlock := o.locks.Lock(sessionID)
	defer unlock()

	s, err := o.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.Step != wizard.StepDocuments || s.ApplicationID != "" {
		return nil, fmt.Errorf("cannot attach documents now: %w", wizard.ErrInvalidTransition)
	}
	if !models.IsValidDocumentKind(file.Kind) {
		return nil, &wizard.ValidationError{Field: "kind", Message: fmt.Sprintf("unknown document kind %q", file.Kind)}
	}
	if prev, ok := s.Documents[file.Kind]; ok {
		if err := o.uploads.Delete(ctx, prev); err != nil {
			utils.GetLogger().Warn("Failed to delete replaced document", zap.String("kind", prev.Kind), zap.Error(err))
		}
	}

	uploaded := o.uploads.Upload(ctx, file)
	return o.apply(ctx, *s, wizard.DocumentAttached{File: uploaded})
}

// RemoveDocument deletes the stored file first; the session keeps the
// document if that fails.
func (o *Orchestrator) RemoveDocument(ctx context.Context, sessionID, kind string) (*Outcome, error) {
	unlock := o.locks.Lock(sessionID)
	defer unlock()

	s, err := o.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.Step != wizard.StepDocuments || s.ApplicationID != "" {
		return nil, fmt.Errorf("cannot remove documents now: %w", wizard.ErrInvalidTransition)
	}
	f, ok := s.Documents[kind]
	if !ok {
		return nil, &wizard.ValidationError{Field: "kind", Message: fmt.Sprintf("no %s document attached", kind)}
	}
	if err := o.uploads.Delete(ctx, f); err != nil {
		return nil, err
	}
	return o.apply(ctx, *s, wizard.DocumentRemoved{Kind: kind})
}

// ResumePayment opens a payment-step session for an unpaid application of
// userID, with a fresh order id.
func (o *Orchestrator) ResumePayment(ctx context.Context, userID, applicationID string) (*Outcome, error) {
	app, err := o.store.Applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.UserID != userID {
		return nil, ErrForbidden
	}
	if app.Paid {
		return nil, ErrAlreadyPaid
	}

	svc, err := o.store.Services.GetByID(ctx, app.ServiceID)
	if err != nil {
		// The service may have been deleted since; the stored row has enough to pay.
		svc = &models.VisaService{ID: app.ServiceID, Title: app.VisaType, Country: app.Country, Currency: app.Currency}
	}

	orderID := payment.GenerateOrderID(app.ID)
	if err := o.store.Applications.SetOrderID(ctx, app.ID, orderID); err != nil {
		return nil, fmt.Errorf("failed to assign order id: %w", err)
	}
	s := wizard.Resume(uuid.New().String(), *svc, *app, orderID)
	s.UpdatedAt = time.Now()
	if err := o.sessions.Save(ctx, s); err != nil {
		return nil, err
	}
	utils.GetLogger().Info("Payment resumed",
		zap.String("applicationID", app.ID), zap.String("sessionID", s.SessionID), zap.String("orderID", orderID))
	return &Outcome{State: s.Public()}, nil
}
