package wizard

import (
	"fmt"
	"strings"

	"visapoint/models"
)

// Reduce applies ev to s. On error the returned state is s unchanged and no
// effects are returned.
func Reduce(s State, ev Event) (State, []Effect, error) {
	next := s.clone()
	next.Notice = ""

	var (
		effects []Effect
		err     error
	)
	switch e := ev.(type) {
	case SelectNationality:
		err = next.selectNationality(e)
	case SelectAppointmentType:
		err = next.selectAppointmentType(e)
	case SetTravellerCount:
		err = next.setTravellerCount(e)
	case UpdateTraveller:
		err = next.updateTraveller(e)
	case UpdateDetails:
		err = next.updateDetails(e.Details)
	case Next:
		err = next.forward()
	case Back:
		err = next.back()
	case DocumentAttached:
		err = next.attach(e)
	case DocumentRemoved:
		err = next.remove(e)
	case SubmitAccount:
		effects, err = next.submitAccount(e)
	case ApplicationCreated:
		err = next.applicationCreated(e)
	case StartPayment:
		effects, err = next.startPayment()
	case PaymentInitiated:
		effects, err = next.paymentInitiated(e)
	case PaymentInitiationFailed:
		err = next.paymentInitiationFailed(e)
	case PaymentStatusReceived:
		effects, err = next.paymentStatus(e)
	case PaymentTimedOut:
		effects, err = next.paymentTimedOut(e)
	case CheckAgain:
		effects, err = next.checkAgain()
	case StartNewPayment:
		effects, err = next.startNewPayment(e)
	case StopPolling:
		effects, err = next.stopPolling()
	case PaymentFinalized:
		err = next.paymentFinalized(e)
	default:
		err = fmt.Errorf("%w: unsupported event %T", ErrInvalidTransition, ev)
	}
	if err != nil {
		return s, nil, err
	}
	return next, effects, nil
}

// editable reports whether form fields of the first two steps may change.
func (s *State) editable() bool {
	return s.Step <= StepPersonalInfo && s.ApplicationID == ""
}

func (s *State) selectNationality(e SelectNationality) error {
	if !s.editable() {
		return notAllowed(e, *s)
	}
	if !s.Service.RequiresNationalitySelection {
		return invalid("nationality", "this service has no nationality options")
	}
	if _, ok := s.Service.Nationality(e.Value); !ok {
		return invalid("nationality", "unknown nationality option %q", e.Value)
	}
	s.Nationality = e.Value
	reprice(s)
	return nil
}

func (s *State) selectAppointmentType(e SelectAppointmentType) error {
	if !s.editable() {
		return notAllowed(e, *s)
	}
	if e.Value != "" {
		if _, ok := s.Service.AppointmentType(e.Value); !ok {
			return invalid("appointmentType", "unknown appointment type %q", e.Value)
		}
	}
	s.AppointmentType = e.Value
	reprice(s)
	return nil
}

func (s *State) setTravellerCount(e SetTravellerCount) error {
	if !s.editable() {
		return notAllowed(e, *s)
	}
	if e.Count < 1 || e.Count > MaxTravellers {
		return invalid("numberOfTravellers", "number of travellers must be between 1 and %d", MaxTravellers)
	}
	s.NumberOfTravellers = e.Count
	s.Travellers = ResizeTravellers(s.Travellers, e.Count)
	reprice(s)
	return nil
}

func (s *State) updateTraveller(e UpdateTraveller) error {
	if !s.editable() {
		return notAllowed(e, *s)
	}
	if e.Index < 0 || e.Index >= len(s.Travellers) {
		return invalid("travellers", "traveller %d does not exist", e.Index+1)
	}
	t := e.Traveller
	t.FirstName = strings.TrimSpace(t.FirstName)
	t.LastName = strings.TrimSpace(t.LastName)
	t.NationalID = strings.TrimSpace(t.NationalID)
	t.MotherName = strings.TrimSpace(t.MotherName)
	s.Travellers[e.Index] = t
	return nil
}

func (s *State) updateDetails(d Details) error {
	formFields := d.TravelDate != nil || d.Location != nil || d.VisaCity != nil
	contactFields := d.Name != nil || d.Email != nil || d.Phone != nil
	if formFields && !s.editable() {
		return notAllowed(UpdateDetails{Details: d}, *s)
	}
	if contactFields && (s.ApplicationID != "" || s.Step >= StepPayment) {
		return notAllowed(UpdateDetails{Details: d}, *s)
	}
	if d.Location != nil && *d.Location != "" && len(s.Service.Locations) > 0 && !s.Service.HasLocation(*d.Location) {
		return invalid("location", "unknown location %q", *d.Location)
	}
	if d.VisaCity != nil && *d.VisaCity != "" && len(s.Service.Cities) > 0 && !s.Service.HasCity(*d.VisaCity) {
		return invalid("visaCity", "unknown city %q", *d.VisaCity)
	}

	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&s.TravelDate, d.TravelDate)
	set(&s.Location, d.Location)
	set(&s.VisaCity, d.VisaCity)
	set(&s.Applicant.Name, d.Name)
	set(&s.Applicant.Email, d.Email)
	set(&s.Applicant.Phone, d.Phone)
	set(&s.Language, d.Language)
	return nil
}

func (s *State) forward() error {
	switch s.Step {
	case StepNationality:
		if s.Nationality == "" {
			return invalid("nationality", "please select a nationality")
		}
		s.Step = StepPersonalInfo
	case StepPersonalInfo:
		if err := validatePersonalInfo(*s); err != nil {
			return err
		}
		s.Step = StepDocuments
	case StepDocuments:
		// Missing or preview-only documents never block this step.
		s.Step = StepAccount
	case StepAccount:
		if s.ApplicationID == "" {
			return notAllowed(Next{}, *s)
		}
		s.Step = StepPayment
	default:
		return notAllowed(Next{}, *s)
	}
	return nil
}

func (s *State) back() error {
	if s.Step <= s.firstStep() {
		return notAllowed(Back{}, *s)
	}
	if s.Step == StepPayment && s.Payment.Busy() {
		return notAllowed(Back{}, *s)
	}
	s.Step--
	return nil
}

func (s *State) attach(e DocumentAttached) error {
	if s.Step != StepDocuments || s.ApplicationID != "" {
		return notAllowed(e, *s)
	}
	if !models.IsValidDocumentKind(e.File.Kind) {
		return invalid("kind", "unknown document kind %q", e.File.Kind)
	}
	s.Documents[e.File.Kind] = e.File
	if e.File.IsLocalPreview {
		s.Notice = e.File.Warning
	}
	return nil
}

func (s *State) remove(e DocumentRemoved) error {
	if s.Step != StepDocuments || s.ApplicationID != "" {
		return notAllowed(e, *s)
	}
	if _, ok := s.Documents[e.Kind]; !ok {
		return invalid("kind", "no %s document attached", e.Kind)
	}
	delete(s.Documents, e.Kind)
	return nil
}

func (s *State) submitAccount(e SubmitAccount) ([]Effect, error) {
	if s.Step != StepAccount {
		return nil, notAllowed(e, *s)
	}
	if s.ApplicationID != "" {
		s.Step = StepPayment
		return nil, nil
	}
	if err := validateAccount(*s, e); err != nil {
		return nil, err
	}

	if e.UserID != "" {
		s.UserID = e.UserID
	}
	email := strings.TrimSpace(e.Email)
	if s.UserID != "" && e.UserEmail != "" {
		email = e.UserEmail
	}
	s.Applicant.Email = strings.ToLower(email)
	s.Applicant.Phone = strings.TrimSpace(e.Phone)
	if s.Applicant.Name == "" && len(s.Travellers) > 0 {
		s.Applicant.Name = s.Travellers[0].FullName()
	}
	return []Effect{CreateApplication{
		Email:    s.Applicant.Email,
		Password: e.Password,
		Phone:    s.Applicant.Phone,
		UserID:   s.UserID,
	}}, nil
}

func (s *State) applicationCreated(e ApplicationCreated) error {
	if s.Step != StepAccount || s.ApplicationID != "" {
		return notAllowed(e, *s)
	}
	s.ApplicationID = e.ApplicationID
	s.ReferenceID = e.ReferenceID
	s.UserID = e.UserID
	if e.Email != "" {
		s.Applicant.Email = e.Email
	}
	if e.Documents != nil {
		s.Documents = make(map[string]models.UploadedFile, len(e.Documents))
		for k, v := range e.Documents {
			s.Documents[k] = v
		}
	}
	s.Payment = Payment{Status: PaymentIdle, OrderID: e.OrderID}
	s.Step = StepPayment
	return nil
}

func (s *State) description() string {
	if s.ReferenceID == "" {
		return s.Service.Title
	}
	return fmt.Sprintf("%s (%s)", s.Service.Title, s.ReferenceID)
}

func (s *State) startPayment() ([]Effect, error) {
	if s.Step != StepPayment || s.Payment.Status != PaymentIdle {
		return nil, notAllowed(StartPayment{}, *s)
	}
	if s.Payment.OrderID == "" {
		return nil, invalid("orderId", "no order id assigned")
	}
	s.Payment.Status = PaymentProcessing
	s.Payment.Error = ""
	return []Effect{InitiatePayment{
		ApplicationID: s.ApplicationID,
		OrderID:       s.Payment.OrderID,
		Amount:        s.TotalPrice,
		Currency:      s.Currency,
		Description:   s.description(),
		Customer:      Customer{Name: s.Applicant.Name, Email: s.Applicant.Email, Phone: s.Applicant.Phone},
	}}, nil
}

func (s *State) paymentInitiated(e PaymentInitiated) ([]Effect, error) {
	if s.Step != StepPayment || s.Payment.Status != PaymentProcessing {
		return nil, notAllowed(e, *s)
	}
	s.Payment.Status = PaymentChecking
	s.Payment.PaymentID = e.PaymentID
	s.Payment.PaymentURL = e.PaymentURL
	s.Payment.StartedAt = e.At
	return []Effect{StartStatusPoll{OrderID: s.Payment.OrderID, PaymentID: e.PaymentID}}, nil
}

func (s *State) paymentInitiationFailed(e PaymentInitiationFailed) error {
	if s.Step != StepPayment || s.Payment.Status != PaymentProcessing {
		return notAllowed(e, *s)
	}
	s.Payment.Status = PaymentFailed
	s.Payment.Error = e.Message
	if s.Payment.Error == "" {
		s.Payment.Error = "payment could not be started"
	}
	return nil
}

// paymentStatus is accepted at any step once the application exists: the
// applicant may have gone Back after a timeout while the gateway still settles.
func (s *State) paymentStatus(e PaymentStatusReceived) ([]Effect, error) {
	if s.ApplicationID == "" {
		return nil, notAllowed(e, *s)
	}
	// Results for an abandoned attempt, or after success, change nothing.
	if e.OrderID != "" && e.OrderID != s.Payment.OrderID {
		return nil, nil
	}
	if s.Payment.Status == PaymentCompleted {
		return nil, nil
	}

	switch e.Status {
	case models.PaymentPending:
		return nil, nil
	case models.PaymentCompleted:
		s.Step = StepPayment
		s.Payment.Status = PaymentCompleted
		s.Payment.Error = ""
		if e.TransactionID != "" {
			s.Payment.TransactionID = e.TransactionID
		}
		return []Effect{
			StopStatusPoll{},
			FinalizePayment{
				ApplicationID: s.ApplicationID,
				UserID:        s.UserID,
				OrderID:       s.Payment.OrderID,
				PaymentID:     s.Payment.PaymentID,
				TransactionID: s.Payment.TransactionID,
				Amount:        s.TotalPrice,
				Currency:      s.Currency,
				Description:   s.description(),
			},
		}, nil
	case models.PaymentFailed, models.PaymentCancelled:
		switch s.Payment.Status {
		case PaymentProcessing, PaymentChecking, PaymentTimeout:
		default:
			return nil, nil
		}
		s.Payment.Status = PaymentFailed
		msg := "payment failed"
		if e.Status == models.PaymentCancelled {
			s.Payment.Status = PaymentCancelled
			msg = "payment was cancelled"
		}
		if e.Message != "" {
			msg = e.Message
		}
		s.Payment.Error = msg
		return []Effect{StopStatusPoll{}}, nil
	}
	return nil, invalid("status", "unknown payment status %q", e.Status)
}

func (s *State) paymentTimedOut(e PaymentTimedOut) ([]Effect, error) {
	if s.Step != StepPayment || e.OrderID != s.Payment.OrderID || s.Payment.Status != PaymentChecking {
		return nil, nil
	}
	s.Payment.Status = PaymentTimeout
	s.Payment.Error = "we could not confirm your payment in time"
	return []Effect{StopStatusPoll{}}, nil
}

func (s *State) checkAgain() ([]Effect, error) {
	if s.Step != StepPayment {
		return nil, notAllowed(CheckAgain{}, *s)
	}
	if s.Payment.Status != PaymentTimeout && s.Payment.Status != PaymentChecking {
		return nil, notAllowed(CheckAgain{}, *s)
	}
	if s.Payment.PaymentID == "" {
		return nil, invalid("paymentId", "no payment to check")
	}
	s.Payment.Status = PaymentChecking
	s.Payment.Error = ""
	return []Effect{StartStatusPoll{OrderID: s.Payment.OrderID, PaymentID: s.Payment.PaymentID}}, nil
}

func (s *State) startNewPayment(e StartNewPayment) ([]Effect, error) {
	if s.Step != StepPayment {
		return nil, notAllowed(e, *s)
	}
	switch s.Payment.Status {
	case PaymentIdle, PaymentFailed, PaymentCancelled, PaymentTimeout, PaymentChecking:
	default:
		return nil, notAllowed(e, *s)
	}
	if e.OrderID == "" || e.OrderID == s.Payment.OrderID {
		return nil, invalid("orderId", "a new order id is required")
	}
	s.Payment = Payment{Status: PaymentIdle, OrderID: e.OrderID}
	return []Effect{
		StopStatusPoll{},
		AssignOrderID{ApplicationID: s.ApplicationID, OrderID: e.OrderID},
	}, nil
}

func (s *State) stopPolling() ([]Effect, error) {
	if s.Step != StepPayment {
		return nil, notAllowed(StopPolling{}, *s)
	}
	return []Effect{StopStatusPoll{}}, nil
}

func (s *State) paymentFinalized(e PaymentFinalized) error {
	if s.Payment.Status != PaymentCompleted {
		return notAllowed(e, *s)
	}
	s.InvoiceID = e.InvoiceID
	s.Notice = "payment confirmed"
	return nil
}
