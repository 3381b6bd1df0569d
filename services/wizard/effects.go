package wizard

// Effect is a side effect requested by Reduce.
type Effect interface {
	isEffect()
}

// Customer is the contact passed to the payment gateway.
type Customer struct {
	Name  string
	Email string
	Phone string
}

type (
	// CreateApplication resolves the applicant identity and inserts the
	// application row. Its result is ApplicationCreated.
	CreateApplication struct {
		Email    string
		Password string
		Phone    string
		UserID   string
	}
	// InitiatePayment asks the gateway for a payment URL. Its result is
	// PaymentInitiated or PaymentInitiationFailed.
	InitiatePayment struct {
		ApplicationID string
		OrderID       string
		Amount        float64
		Currency      string
		Description   string
		Customer      Customer
	}
	// StartStatusPoll starts polling the gateway for the attempt.
	StartStatusPoll struct {
		OrderID   string
		PaymentID string
	}
	// StopStatusPoll cancels any poll bound to the session.
	StopStatusPoll struct{}
	// FinalizePayment writes the invoice, flips the paid flag and sends the
	// confirmation email. Its result is PaymentFinalized.
	FinalizePayment struct {
		ApplicationID string
		UserID        string
		OrderID       string
		PaymentID     string
		TransactionID string
		Amount        float64
		Currency      string
		Description   string
	}
	// AssignOrderID binds a new payment attempt to the application row.
	AssignOrderID struct {
		ApplicationID string
		OrderID       string
	}
)

func (CreateApplication) isEffect() {}
func (InitiatePayment) isEffect()   {}
func (StartStatusPoll) isEffect()   {}
func (StopStatusPoll) isEffect()    {}
func (FinalizePayment) isEffect()   {}
func (AssignOrderID) isEffect()     {}
