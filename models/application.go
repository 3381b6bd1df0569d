package models

import "time"

// Application statuses are free text in storage; these are the values the
// back office offers.
const (
	StatusPending        = "Pending"
	StatusInProgress     = "In Progress"
	StatusDocumentReview = "Document Review"
	StatusCompleted      = "Completed"
	StatusRejected       = "Rejected"
)

// ApplicationStatuses lists the statuses accepted by admin updates.
var ApplicationStatuses = []string{
	StatusPending,
	StatusInProgress,
	StatusDocumentReview,
	StatusCompleted,
	StatusRejected,
}

// IsValidApplicationStatus reports whether s is a known status.
func IsValidApplicationStatus(s string) bool {
	for _, v := range ApplicationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Traveller is one person covered by an application.
type Traveller struct {
	FirstName  string `bson:"first_name" json:"firstName"`
	LastName   string `bson:"last_name" json:"lastName"`
	NationalID string `bson:"national_id,omitempty" json:"nationalId,omitempty"`
	MotherName string `bson:"mother_name,omitempty" json:"motherName,omitempty"`
}

// FullName joins first and last name.
func (t Traveller) FullName() string {
	switch {
	case t.FirstName == "":
		return t.LastName
	case t.LastName == "":
		return t.FirstName
	}
	return t.FirstName + " " + t.LastName
}

// Application is one applicant's submitted visa request.
type Application struct {
	ID          string `bson:"id" json:"id"`
	ReferenceID string `bson:"reference_id" json:"referenceId"`
	UserID      string `bson:"user_id" json:"userId"`

	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Phone string `bson:"phone" json:"phone"`

	Nationality     string `bson:"nationality,omitempty" json:"nationality,omitempty"`
	VisaType        string `bson:"visa_type" json:"visaType"`
	ServiceID       string `bson:"service_id" json:"serviceId"`
	Country         string `bson:"country,omitempty" json:"country,omitempty"`
	AppointmentType string `bson:"appointment_type,omitempty" json:"appointmentType,omitempty"`
	Location        string `bson:"location,omitempty" json:"location,omitempty"`
	VisaCity        string `bson:"visa_city,omitempty" json:"visaCity,omitempty"`

	NumberOfTravellers int         `bson:"number_of_travellers" json:"numberOfTravellers"`
	Travellers         []Traveller `bson:"travellers" json:"travellers"`
	TravelDate         string      `bson:"travel_date" json:"travelDate"`
	TotalPrice         float64     `bson:"total_price" json:"totalPrice"`
	Currency           string      `bson:"currency" json:"currency"`

	PassportURL string `bson:"passport_url,omitempty" json:"passportUrl,omitempty"`
	PhotoURL    string `bson:"photo_url,omitempty" json:"photoUrl,omitempty"`
	DocumentURL string `bson:"document_url,omitempty" json:"documentUrl,omitempty"`

	PaymentID     string `bson:"payment_id,omitempty" json:"paymentId,omitempty"`
	OrderID       string `bson:"order_id,omitempty" json:"orderId,omitempty"`
	TransactionID string `bson:"transaction_id,omitempty" json:"transactionId,omitempty"`
	Paid          bool   `bson:"paid" json:"paid"`
	Status        string `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// DocumentURLs returns the non-empty remote file URLs attached to the application.
func (a *Application) DocumentURLs() []string {
	var urls []string
	for _, u := range []string{a.PassportURL, a.PhotoURL, a.DocumentURL} {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// PaymentRef carries the gateway identifiers written when a payment completes.
type PaymentRef struct {
	PaymentID     string
	OrderID       string
	TransactionID string
}

// ApplicationFilter narrows admin listings. Zero values mean "any".
type ApplicationFilter struct {
	Status    string
	Paid      *bool
	Search    string
	UserID    string
	SortBy    string
	Ascending bool
	Limit     int64
	Offset    int64
}
