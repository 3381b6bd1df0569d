package models

// ApplicationMessage is the payload for applicant and team emails about a new application.
type ApplicationMessage struct {
	ApplicationID      string  `json:"applicationId"`
	ReferenceID        string  `json:"referenceId"`
	Name               string  `json:"name"`
	Email              string  `json:"email"`
	Phone              string  `json:"phone"`
	VisaType           string  `json:"visaType"`
	Nationality        string  `json:"nationality,omitempty"`
	TravelDate         string  `json:"travelDate"`
	NumberOfTravellers int     `json:"numberOfTravellers"`
	TotalPrice         float64 `json:"totalPrice"`
	Currency           string  `json:"currency"`
	Language           string  `json:"language,omitempty"`
}

// PaymentMessage is the payload for the payment confirmation email.
type PaymentMessage struct {
	ApplicationID string  `json:"applicationId"`
	ReferenceID   string  `json:"referenceId"`
	InvoiceNumber string  `json:"invoiceNumber"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	VisaType      string  `json:"visaType"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	OrderID       string  `json:"orderId"`
	TransactionID string  `json:"transactionId,omitempty"`
}
