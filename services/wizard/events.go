package wizard

import (
	"time"

	"visapoint/models"
)

// Event is an input to Reduce.
type Event interface {
	Name() string
	isEvent()
}

// Details patches top-level form fields. Nil fields are left unchanged.
type Details struct {
	TravelDate *string `json:"travelDate"`
	Location   *string `json:"location"`
	VisaCity   *string `json:"visaCity"`
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	Language   *string `json:"language"`
}

type (
	SelectNationality struct {
		Value string `json:"value"`
	}
	SelectAppointmentType struct {
		Value string `json:"value"`
	}
	SetTravellerCount struct {
		Count int `json:"count"`
	}
	UpdateTraveller struct {
		Index     int              `json:"index"`
		Traveller models.Traveller `json:"traveller"`
	}
	UpdateDetails struct {
		Details
	}
	Next struct{}
	Back struct{}

	// DocumentAttached records a file the upload adapter already handled.
	DocumentAttached struct {
		File models.UploadedFile
	}
	// DocumentRemoved is sent only after the remote object is gone.
	DocumentRemoved struct {
		Kind string
	}

	// SubmitAccount completes the account step. UserID and UserEmail are
	// filled from the caller's session, never from request bodies.
	SubmitAccount struct {
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
		Phone           string `json:"phone"`
		UserID          string `json:"-"`
		UserEmail       string `json:"-"`
	}
	ApplicationCreated struct {
		ApplicationID string
		ReferenceID   string
		OrderID       string
		UserID        string
		Email         string
		Documents     map[string]models.UploadedFile
	}

	StartPayment     struct{}
	PaymentInitiated struct {
		PaymentID  string
		PaymentURL string
		At         time.Time
	}
	PaymentInitiationFailed struct {
		Message string
	}
	PaymentStatusReceived struct {
		OrderID       string
		Status        models.PaymentStatus
		TransactionID string
		Message       string
	}
	PaymentTimedOut struct {
		OrderID string
	}
	CheckAgain struct{}
	// StartNewPayment abandons the current attempt. OrderID is the fresh id.
	StartNewPayment struct {
		OrderID string `json:"-"`
	}
	// StopPolling is sent when the payment dialog is closed.
	StopPolling      struct{}
	PaymentFinalized struct {
		InvoiceID string
	}
)

func (SelectNationality) Name() string       { return "select_nationality" }
func (SelectAppointmentType) Name() string   { return "select_appointment_type" }
func (SetTravellerCount) Name() string       { return "set_traveller_count" }
func (UpdateTraveller) Name() string         { return "update_traveller" }
func (UpdateDetails) Name() string           { return "update_details" }
func (Next) Name() string                    { return "next" }
func (Back) Name() string                    { return "back" }
func (DocumentAttached) Name() string        { return "document_attached" }
func (DocumentRemoved) Name() string         { return "document_removed" }
func (SubmitAccount) Name() string           { return "submit_account" }
func (ApplicationCreated) Name() string      { return "application_created" }
func (StartPayment) Name() string            { return "start_payment" }
func (PaymentInitiated) Name() string        { return "payment_initiated" }
func (PaymentInitiationFailed) Name() string { return "payment_initiation_failed" }
func (PaymentStatusReceived) Name() string   { return "payment_status_received" }
func (PaymentTimedOut) Name() string         { return "payment_timed_out" }
func (CheckAgain) Name() string              { return "check_again" }
func (StartNewPayment) Name() string         { return "start_new_payment" }
func (StopPolling) Name() string             { return "stop_polling" }
func (PaymentFinalized) Name() string        { return "payment_finalized" }

func (SelectNationality) isEvent()       {}
func (SelectAppointmentType) isEvent()   {}
func (SetTravellerCount) isEvent()       {}
func (UpdateTraveller) isEvent()         {}
func (UpdateDetails) isEvent()           {}
func (Next) isEvent()                    {}
func (Back) isEvent()                    {}
func (DocumentAttached) isEvent()        {}
func (DocumentRemoved) isEvent()         {}
func (SubmitAccount) isEvent()           {}
func (ApplicationCreated) isEvent()      {}
func (StartPayment) isEvent()            {}
func (PaymentInitiated) isEvent()        {}
func (PaymentInitiationFailed) isEvent() {}
func (PaymentStatusReceived) isEvent()   {}
func (PaymentTimedOut) isEvent()         {}
func (CheckAgain) isEvent()              {}
func (StartNewPayment) isEvent()         {}
func (StopPolling) isEvent()             {}
func (PaymentFinalized) isEvent()        {}
