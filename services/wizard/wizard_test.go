package wizard

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"visapoint/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(v float64) *float64 { return &v }
func flag(v bool) *bool        { return &v }
func str(v string) *string     { return &v }

func spainService() models.VisaService {
	return models.VisaService{
		ID:                      "svc-spain",
		Title:                   "Spain Visa",
		Slug:                    "spain-visa",
		Country:                 "Spain",
		BasePrice:               450,
		Currency:                "SAR",
		RequiresAppointmentType: true,
		RequiresLocation:        true,
		Locations:               []string{"Riyadh", "Jeddah"},
		AppointmentTypes: []models.AppointmentOption{
			{Value: "normal", Label: "Normal"},
			{Value: "prime", Label: "Prime", Price: price(610)},
		},
		Active: true,
	}
}

func uaeService() models.VisaService {
	return models.VisaService{
		ID:                           "svc-uae",
		Title:                        "UAE Visa",
		Slug:                         "uae-visa",
		BasePrice:                    300,
		RequiresNationalitySelection: true,
		Nationalities: []models.NationalityOption{
			{Value: "gcc", Label: "GCC resident", Price: price(200), RequiresNationalID: flag(true)},
			{Value: "other", Label: "Other nationalities"},
		},
	}
}

func mustReduce(t *testing.T, s State, ev Event) (State, []Effect) {
	t.Helper()
	next, effects, err := Reduce(s, ev)
	require.NoError(t, err, ev.Name())
	return next, effects
}

func fillPersonalInfo(t *testing.T, s State) State {
	t.Helper()
	s, _ = mustReduce(t, s, UpdateDetails{Details{TravelDate: str("2026-12-01"), Location: str("Riyadh")}})
	for i := range s.Travellers {
		s, _ = mustReduce(t, s, UpdateTraveller{Index: i, Traveller: models.Traveller{FirstName: "Sara", LastName: "Ali", NationalID: "1010"}})
	}
	return s
}

// atPayment drives a Spain wizard to the payment step with one traveller.
func atPayment(t *testing.T) State {
	t.Helper()
	s := New("sess-1", spainService(), "SAR")
	s, _ = mustReduce(t, s, SelectAppointmentType{Value: "prime"})
	s = fillPersonalInfo(t, s)
	s, _ = mustReduce(t, s, Next{})
	s, _ = mustReduce(t, s, Next{})
	s, effects := mustReduce(t, s, SubmitAccount{Email: "a@b.com", Password: "secret1", ConfirmPassword: "secret1", Phone: "0500000000"})
	require.Len(t, effects, 1)
	s, _ = mustReduce(t, s, ApplicationCreated{ApplicationID: "app-1", ReferenceID: "REF-1", OrderID: "VISA-1", UserID: "user-1"})
	return s
}

func TestNewStartsAtFirstRequiredStep(t *testing.T) {
	assert.Equal(t, StepPersonalInfo, New("s", spainService(), "SAR").Step)
	assert.Equal(t, StepNationality, New("s", uaeService(), "SAR").Step)

	s := New("s", uaeService(), "USD")
	assert.Equal(t, "USD", s.Currency)
	assert.Equal(t, 1, s.NumberOfTravellers)
	assert.Len(t, s.Travellers, 1)
	assert.Equal(t, 300.0, s.TotalPrice)
}

func TestSpainPrimeAppointmentPricing(t *testing.T) {
	s := New("s", spainService(), "SAR")
	s, _ = mustReduce(t, s, SelectAppointmentType{Value: "prime"})
	assert.Equal(t, 610.0, s.BasePrice)

	s, _ = mustReduce(t, s, SetTravellerCount{Count: 2})
	assert.Equal(t, 1220.0, s.TotalPrice)

	s, _ = mustReduce(t, s, SelectAppointmentType{Value: "normal"})
	assert.Equal(t, 450.0, s.BasePrice)
	assert.Equal(t, 900.0, s.TotalPrice)
}

func TestNationalityOverridesPriceAndNationalID(t *testing.T) {
	s := New("s", uaeService(), "SAR")

	_, _, err := Reduce(s, Next{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "nationality", verr.Field)

	s, _ = mustReduce(t, s, SelectNationality{Value: "gcc"})
	assert.Equal(t, 200.0, s.BasePrice)
	assert.True(t, s.RequiresNationalID)

	s, _ = mustReduce(t, s, SelectNationality{Value: "other"})
	assert.Equal(t, 300.0, s.BasePrice)
	assert.False(t, s.RequiresNationalID)

	_, _, err = Reduce(s, SelectNationality{Value: "mars"})
	require.ErrorAs(t, err, &verr)

	s, _ = mustReduce(t, s, Next{})
	assert.Equal(t, StepPersonalInfo, s.Step)
}

func TestTravellerResizePreservesEntries(t *testing.T) {
	s := New("s", spainService(), "SAR")
	s, _ = mustReduce(t, s, SetTravellerCount{Count: 3})
	s, _ = mustReduce(t, s, UpdateTraveller{Index: 0, Traveller: models.Traveller{FirstName: "A", LastName: "One"}})
	s, _ = mustReduce(t, s, UpdateTraveller{Index: 1, Traveller: models.Traveller{FirstName: "B", LastName: "Two"}})

	s, _ = mustReduce(t, s, SetTravellerCount{Count: 2})
	require.Len(t, s.Travellers, 2)
	assert.Equal(t, "A", s.Travellers[0].FirstName)
	assert.Equal(t, "B", s.Travellers[1].FirstName)

	s, _ = mustReduce(t, s, SetTravellerCount{Count: 4})
	require.Len(t, s.Travellers, 4)
	assert.Equal(t, "B", s.Travellers[1].FirstName)
	assert.Empty(t, s.Travellers[3].FirstName)

	_, _, err := Reduce(s, SetTravellerCount{Count: 0})
	assert.Error(t, err)
	_, _, err = Reduce(s, SetTravellerCount{Count: MaxTravellers + 1})
	assert.Error(t, err)
}

func TestTotalPriceInvariantHolds(t *testing.T) {
	s := New("s", spainService(), "SAR")
	events := []Event{
		SetTravellerCount{Count: 5},
		SelectAppointmentType{Value: "prime"},
		SetTravellerCount{Count: 1},
		SelectAppointmentType{Value: "normal"},
		SetTravellerCount{Count: 7},
		SetTravellerCount{Count: 3},
	}
	for _, ev := range events {
		s, _ = mustReduce(t, s, ev)
		assert.Len(t, s.Travellers, s.NumberOfTravellers)
		want := decimal.NewFromFloat(s.BasePrice).Mul(decimal.NewFromInt(int64(s.NumberOfTravellers)))
		assert.True(t, want.Equal(decimal.NewFromFloat(s.TotalPrice)), "total %v for %v × %d", s.TotalPrice, s.BasePrice, s.NumberOfTravellers)
	}
}

func TestMissingNationalIDBlocksAdvance(t *testing.T) {
	svc := spainService()
	svc.RequiresNationalID = true
	s := New("s", svc, "SAR")
	s, _ = mustReduce(t, s, SelectAppointmentType{Value: "normal"})
	s, _ = mustReduce(t, s, SetTravellerCount{Count: 2})
	s, _ = mustReduce(t, s, UpdateDetails{Details{TravelDate: str("2026-12-01"), Location: str("Jeddah")}})
	s, _ = mustReduce(t, s, UpdateTraveller{Index: 0, Traveller: models.Traveller{FirstName: "A", LastName: "B", NationalID: "1"}})
	s, _ = mustReduce(t, s, UpdateTraveller{Index: 1, Traveller: models.Traveller{FirstName: "C", LastName: "D"}})

	next, effects, err := Reduce(s, Next{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "travellers[1].nationalId", verr.Field)
	assert.Empty(t, effects)
	assert.Equal(t, StepPersonalInfo, next.Step)
}

func TestPersonalInfoRequiresConditionalFields(t *testing.T) {
	s := New("s", spainService(), "SAR")
	s, _ = mustReduce(t, s, UpdateTraveller{Index: 0, Traveller: models.Traveller{FirstName: "A", LastName: "B"}})

	_, _, err := Reduce(s, Next{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "travelDate", verr.Field)

	s, _ = mustReduce(t, s, UpdateDetails{Details{TravelDate: str("2026-12-01")}})
	_, _, err = Reduce(s, Next{})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "location", verr.Field)

	_, _, err = Reduce(s, UpdateDetails{Details{Location: str("Paris")}})
	require.ErrorAs(t, err, &verr)

	s, _ = mustReduce(t, s, UpdateDetails{Details{Location: str("Riyadh")}})
	_, _, err = Reduce(s, Next{})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "appointmentType", verr.Field)
}

func TestDocumentsStepNeverBlocks(t *testing.T) {
	s := New("s", spainService(), "SAR")
	s, _ = mustReduce(t, s, SelectAppointmentType{Value: "normal"})
	s = fillPersonalInfo(t, s)
	s, _ = mustReduce(t, s, Next{})
	require.Equal(t, StepDocuments, s.Step)

	preview := models.UploadedFile{Kind: models.DocPassport, FileName: "p.jpg", IsLocalPreview: true, LocalPath: "/tmp/p.jpg", Warning: "will be uploaded later"}
	s, _ = mustReduce(t, s, DocumentAttached{File: preview})
	assert.Equal(t, "will be uploaded later", s.Notice)
	assert.Empty(t, s.Public().Documents[models.DocPassport].LocalPath)
	assert.Equal(t, "/tmp/p.jpg", s.Documents[models.DocPassport].LocalPath)

	s, _ = mustReduce(t, s, Next{})
	assert.Equal(t, StepAccount, s.Step)
}

func TestPasswordMismatchBlocksWithoutSignUp(t *testing.T) {
	s := New("s", spainService(), "SAR")
	s.Step = StepAccount

	next, effects, err := Reduce(s, SubmitAccount{Email: "a@b.com", Password: "x", ConfirmPassword: "y", Phone: "0500"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "confirmPassword", verr.Field)
	assert.Empty(t, effects)
	assert.Equal(t, StepAccount, next.Step)
}

func TestAuthenticatedUserNeedsOnlyPhone(t *testing.T) {
	s := New("s", spainService(), "SAR")
	s.Step = StepAccount

	_, _, err := Reduce(s, SubmitAccount{UserID: "user-9", UserEmail: "known@b.com"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "phone", verr.Field)

	next, effects := mustReduce(t, s, SubmitAccount{UserID: "user-9", UserEmail: "known@b.com", Phone: "0500"})
	require.Len(t, effects, 1)
	create := effects[0].(CreateApplication)
	assert.Equal(t, "user-9", create.UserID)
	assert.Equal(t, "known@b.com", create.Email)
	assert.Empty(t, create.Password)
	assert.Equal(t, StepAccount, next.Step, "advance waits for ApplicationCreated")
}

func TestApplicationCreatedEntersPayment(t *testing.T) {
	s := atPayment(t)
	assert.Equal(t, StepPayment, s.Step)
	assert.Equal(t, PaymentIdle, s.Payment.Status)
	assert.Equal(t, "VISA-1", s.Payment.OrderID)
	assert.Equal(t, "Sara Ali", s.Applicant.Name)

	// Going back and submitting again does not create a second application.
	back, _ := mustReduce(t, s, Back{})
	again, effects := mustReduce(t, back, SubmitAccount{})
	assert.Empty(t, effects)
	assert.Equal(t, StepPayment, again.Step)
}

func TestPaymentHappyPath(t *testing.T) {
	s := atPayment(t)

	s, effects := mustReduce(t, s, StartPayment{})
	assert.Equal(t, PaymentProcessing, s.Payment.Status)
	require.Len(t, effects, 1)
	req := effects[0].(InitiatePayment)
	assert.Equal(t, 610.0, req.Amount)
	assert.Equal(t, "VISA-1", req.OrderID)
	assert.Equal(t, "a@b.com", req.Customer.Email)

	_, _, err := Reduce(s, Back{})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	now := time.Now()
	s, effects = mustReduce(t, s, PaymentInitiated{PaymentID: "pay-1", PaymentURL: "https://pay", At: now})
	assert.Equal(t, PaymentChecking, s.Payment.Status)
	assert.Equal(t, []Effect{StartStatusPoll{OrderID: "VISA-1", PaymentID: "pay-1"}}, effects)

	s, effects = mustReduce(t, s, PaymentStatusReceived{OrderID: "VISA-1", Status: models.PaymentPending})
	assert.Empty(t, effects)
	assert.Equal(t, PaymentChecking, s.Payment.Status)

	s, effects = mustReduce(t, s, PaymentStatusReceived{OrderID: "VISA-1", Status: models.PaymentCompleted, TransactionID: "tx-1"})
	assert.Equal(t, PaymentCompleted, s.Payment.Status)
	require.Len(t, effects, 2)
	assert.Equal(t, StopStatusPoll{}, effects[0])
	fin := effects[1].(FinalizePayment)
	assert.Equal(t, "app-1", fin.ApplicationID)
	assert.Equal(t, "tx-1", fin.TransactionID)
	assert.Equal(t, "pay-1", fin.PaymentID)

	s, effects = mustReduce(t, s, PaymentStatusReceived{OrderID: "VISA-1", Status: models.PaymentCompleted})
	assert.Empty(t, effects, "a repeated completion must not finalize twice")

	s, _ = mustReduce(t, s, PaymentFinalized{InvoiceID: "inv-1"})
	assert.Equal(t, "inv-1", s.InvoiceID)
}

func TestPaymentFailureAndRetry(t *testing.T) {
	s := atPayment(t)
	s, _ = mustReduce(t, s, StartPayment{})
	s, _ = mustReduce(t, s, PaymentInitiated{PaymentID: "pay-1"})

	s, effects := mustReduce(t, s, PaymentStatusReceived{OrderID: "VISA-1", Status: models.PaymentCancelled})
	assert.Equal(t, PaymentCancelled, s.Payment.Status)
	assert.NotEmpty(t, s.Payment.Error)
	assert.Equal(t, []Effect{StopStatusPoll{}}, effects)

	_, _, err := Reduce(s, StartPayment{})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, _, err = Reduce(s, StartNewPayment{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	s, effects = mustReduce(t, s, StartNewPayment{OrderID: "VISA-2"})
	assert.Equal(t, Payment{Status: PaymentIdle, OrderID: "VISA-2"}, s.Payment)
	assert.Equal(t, []Effect{StopStatusPoll{}, AssignOrderID{ApplicationID: "app-1", OrderID: "VISA-2"}}, effects)

	// A late result for the abandoned order is ignored.
	s, effects = mustReduce(t, s, PaymentStatusReceived{OrderID: "VISA-1", Status: models.PaymentCompleted})
	assert.Empty(t, effects)
	assert.Equal(t, PaymentIdle, s.Payment.Status)
}

func TestInitiationFailure(t *testing.T) {
	s := atPayment(t)
	s, _ = mustReduce(t, s, StartPayment{})
	s, effects := mustReduce(t, s, PaymentInitiationFailed{Message: "gateway down"})
	assert.Empty(t, effects)
	assert.Equal(t, PaymentFailed, s.Payment.Status)
	assert.Equal(t, "gateway down", s.Payment.Error)
}

func TestTimeoutAndCheckAgain(t *testing.T) {
	s := atPayment(t)
	s, _ = mustReduce(t, s, StartPayment{})
	s, _ = mustReduce(t, s, PaymentInitiated{PaymentID: "pay-1"})

	s, effects := mustReduce(t, s, PaymentTimedOut{OrderID: "VISA-1"})
	assert.Equal(t, PaymentTimeout, s.Payment.Status)
	assert.Equal(t, []Effect{StopStatusPoll{}}, effects)

	s, effects = mustReduce(t, s, CheckAgain{})
	assert.Equal(t, PaymentChecking, s.Payment.Status)
	assert.Equal(t, []Effect{StartStatusPoll{OrderID: "VISA-1", PaymentID: "pay-1"}}, effects)

	s, effects = mustReduce(t, s, StopPolling{})
	assert.Equal(t, []Effect{StopStatusPoll{}}, effects)
	assert.Equal(t, PaymentChecking, s.Payment.Status)
}

func TestReduceLeavesInputUntouched(t *testing.T) {
	s := New("s", spainService(), "SAR")
	s, _ = mustReduce(t, s, SetTravellerCount{Count: 2})
	before := s.clone()

	_, _, err := Reduce(s, UpdateTraveller{Index: 1, Traveller: models.Traveller{FirstName: "Z"}})
	require.NoError(t, err)
	assert.Equal(t, before.Travellers, s.Travellers)
}

func TestParseEvent(t *testing.T) {
	ev, err := ParseEvent("set_traveller_count", json.RawMessage(`{"count":3}`))
	require.NoError(t, err)
	assert.Equal(t, SetTravellerCount{Count: 3}, ev)

	ev, err = ParseEvent("update_details", json.RawMessage(`{"travelDate":"2026-01-02"}`))
	require.NoError(t, err)
	details := ev.(UpdateDetails)
	require.NotNil(t, details.TravelDate)
	assert.Nil(t, details.Location)

	ev, err = ParseEvent("submit_account", json.RawMessage(`{"email":"a@b.com","UserID":"admin"}`))
	require.NoError(t, err)
	assert.Empty(t, ev.(SubmitAccount).UserID)

	_, err = ParseEvent("payment_status_received", nil)
	assert.Error(t, err)
	_, err = ParseEvent("set_traveller_count", json.RawMessage(`{"count":"x"}`))
	assert.Error(t, err)
}

func TestUnknownEventIsRejected(t *testing.T) {
	_, _, err := Reduce(New("s", spainService(), "SAR"), nil)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestCompletedStatusAfterLeavingPaymentStep(t *testing.T) {
	s := atPayment(t)
	s, _ = mustReduce(t, s, StartPayment{})
	s, _ = mustReduce(t, s, PaymentInitiated{PaymentID: "pay-1"})
	s, _ = mustReduce(t, s, PaymentTimedOut{OrderID: "VISA-1"})
	s, _ = mustReduce(t, s, Back{})
	require.Equal(t, StepAccount, s.Step)

	s, effects := mustReduce(t, s, PaymentStatusReceived{OrderID: "VISA-1", Status: models.PaymentCompleted, TransactionID: "tx-1"})
	assert.Equal(t, StepPayment, s.Step)
	assert.Equal(t, PaymentCompleted, s.Payment.Status)
	require.Len(t, effects, 2)
	fin := effects[1].(FinalizePayment)
	assert.Equal(t, "pay-1", fin.PaymentID)

	_, _, err := Reduce(New("s", spainService(), "SAR"), PaymentStatusReceived{OrderID: "VISA-1", Status: models.PaymentCompleted})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
