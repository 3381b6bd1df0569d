// Package wizard holds the visa application wizard as a pure state machine.
//
// Reduce takes the current State and one Event and returns the next State
// plus the Effects the caller must run. It performs no I/O; results of effects
// come back in as further events.
package wizard

import (
	"time"

	"visapoint/models"
)

// Step is a wizard page.
type Step int

const (
	StepNationality Step = iota
	StepPersonalInfo
	StepDocuments
	StepAccount
	StepPayment
)

func (s Step) String() string {
	switch s {
	case StepNationality:
		return "nationality"
	case StepPersonalInfo:
		return "personal_info"
	case StepDocuments:
		return "documents"
	case StepAccount:
		return "account"
	case StepPayment:
		return "payment"
	}
	return "unknown"
}

// PaymentStatus is the state of the payment sub-machine at StepPayment.
type PaymentStatus string

const (
	PaymentIdle       PaymentStatus = "idle"
	PaymentProcessing PaymentStatus = "processing"
	PaymentChecking   PaymentStatus = "checking"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentCancelled  PaymentStatus = "cancelled"
	PaymentTimeout    PaymentStatus = "timeout"
)

// Payment is the current payment attempt.
type Payment struct {
	Status        PaymentStatus `json:"status"`
	OrderID       string        `json:"orderId,omitempty"`
	PaymentID     string        `json:"paymentId,omitempty"`
	PaymentURL    string        `json:"paymentUrl,omitempty"`
	TransactionID string        `json:"transactionId,omitempty"`
	Error         string        `json:"error,omitempty"`
	StartedAt     time.Time     `json:"startedAt,omitempty"`
}

// Busy reports whether a gateway round trip is in flight.
func (p Payment) Busy() bool {
	return p.Status == PaymentProcessing || p.Status == PaymentChecking
}

// Applicant is the contact person for the application.
type Applicant struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// State is one wizard session.
type State struct {
	SessionID string             `json:"sessionId"`
	Step      Step               `json:"step"`
	Service   models.VisaService `json:"service"`
	Language  string             `json:"language,omitempty"`

	Nationality     string `json:"nationality,omitempty"`
	AppointmentType string `json:"appointmentType,omitempty"`
	Location        string `json:"location,omitempty"`
	VisaCity        string `json:"visaCity,omitempty"`
	Country         string `json:"country,omitempty"`
	TravelDate      string `json:"travelDate,omitempty"`

	// RequiresNationalID is the service flag, possibly overridden by the nationality option.
	RequiresNationalID bool `json:"requiresNationalId"`

	BasePrice          float64            `json:"basePrice"`
	NumberOfTravellers int                `json:"numberOfTravellers"`
	Travellers         []models.Traveller `json:"travellers"`
	TotalPrice         float64            `json:"totalPrice"`
	Currency           string             `json:"currency"`

	Applicant Applicant                      `json:"applicant"`
	Documents map[string]models.UploadedFile `json:"documents"`

	UserID        string  `json:"userId,omitempty"`
	ApplicationID string  `json:"applicationId,omitempty"`
	ReferenceID   string  `json:"referenceId,omitempty"`
	Payment       Payment `json:"payment"`
	InvoiceID     string  `json:"invoiceId,omitempty"`
	Notice        string  `json:"notice,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// New starts a wizard for svc. Services without a nationality choice start at
// the personal info step.
func New(sessionID string, svc models.VisaService, currency string) State {
	s := State{
		SessionID:          sessionID,
		Step:               StepPersonalInfo,
		Service:            svc,
		Country:            svc.Country,
		Currency:           currency,
		NumberOfTravellers: 1,
		Travellers:         []models.Traveller{{}},
		Documents:          map[string]models.UploadedFile{},
		Payment:            Payment{Status: PaymentIdle},
	}
	if svc.Currency != "" {
		s.Currency = svc.Currency
	}
	if svc.RequiresNationalitySelection {
		s.Step = StepNationality
	}
	reprice(&s)
	return s
}

// Resume rebuilds a session at the payment step for an unpaid application.
func Resume(sessionID string, svc models.VisaService, app models.Application, orderID string) State {
	s := New(sessionID, svc, app.Currency)
	s.Step = StepPayment
	s.Nationality = app.Nationality
	s.AppointmentType = app.AppointmentType
	s.Location = app.Location
	s.VisaCity = app.VisaCity
	s.TravelDate = app.TravelDate
	s.Travellers = append([]models.Traveller(nil), app.Travellers...)
	s.NumberOfTravellers = len(s.Travellers)
	s.Applicant = Applicant{Name: app.Name, Email: app.Email, Phone: app.Phone}
	s.UserID = app.UserID
	s.ApplicationID = app.ID
	s.ReferenceID = app.ReferenceID
	s.Payment = Payment{Status: PaymentIdle, OrderID: orderID}
	if app.Currency != "" {
		s.Currency = app.Currency
	}
	reprice(&s)
	// The stored total is what the applicant agreed to.
	if app.TotalPrice > 0 && s.NumberOfTravellers > 0 {
		s.TotalPrice = app.TotalPrice
		s.BasePrice = app.TotalPrice / float64(s.NumberOfTravellers)
	}
	return s
}

// Public returns a copy safe to send to the browser.
func (s State) Public() State {
	out := s.clone()
	for k, f := range out.Documents {
		f.LocalPath = ""
		out.Documents[k] = f
	}
	return out
}

func (s State) clone() State {
	out := s
	out.Travellers = append([]models.Traveller(nil), s.Travellers...)
	out.Documents = make(map[string]models.UploadedFile, len(s.Documents))
	for k, v := range s.Documents {
		out.Documents[k] = v
	}
	return out
}

func (s State) firstStep() Step {
	if s.Service.RequiresNationalitySelection {
		return StepNationality
	}
	return StepPersonalInfo
}
