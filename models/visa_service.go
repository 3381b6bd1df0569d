package models

import "time"

// LocalizedText maps a language code ("en", "ar", ...) to text.
type LocalizedText map[string]string

// Get returns the text for lang, falling back to English and then to any value.
func (t LocalizedText) Get(lang string) string {
	if v, ok := t[lang]; ok && v != "" {
		return v
	}
	if v, ok := t["en"]; ok && v != "" {
		return v
	}
	for _, v := range t {
		if v != "" {
			return v
		}
	}
	return ""
}

// AppointmentOption is one selectable appointment type. A non-nil Price
// replaces the base price of the service.
type AppointmentOption struct {
	Value string   `bson:"value" json:"value"`
	Label string   `bson:"label" json:"label"`
	Price *float64 `bson:"price,omitempty" json:"price,omitempty"`
}

// NationalityOption is one citizen category offered at the nationality step.
type NationalityOption struct {
	Value              string   `bson:"value" json:"value"`
	Label              string   `bson:"label" json:"label"`
	Price              *float64 `bson:"price,omitempty" json:"price,omitempty"`
	RequiresNationalID *bool    `bson:"requires_national_id,omitempty" json:"requiresNationalId,omitempty"`
}

// VisaService is an admin-authored visa product.
type VisaService struct {
	ID             string        `bson:"id" json:"id"`
	Title          string        `bson:"title" json:"title"`
	Slug           string        `bson:"slug" json:"slug"`
	Country        string        `bson:"country,omitempty" json:"country,omitempty"`
	LocalTitle     LocalizedText `bson:"title_i18n,omitempty" json:"titleI18n,omitempty"`
	Description    LocalizedText `bson:"description_i18n,omitempty" json:"descriptionI18n,omitempty"`
	ProcessingTime LocalizedText `bson:"processing_time_i18n,omitempty" json:"processingTimeI18n,omitempty"`
	BasePrice      float64       `bson:"base_price" json:"basePrice"`
	Currency       string        `bson:"currency,omitempty" json:"currency,omitempty"`

	RequiresMotherName           bool `bson:"requires_mother_name" json:"requiresMotherName"`
	RequiresNationalitySelection bool `bson:"requires_nationality_selection" json:"requiresNationalitySelection"`
	RequiresAppointmentType      bool `bson:"requires_appointment_type" json:"requiresAppointmentType"`
	RequiresLocation             bool `bson:"requires_location" json:"requiresLocation"`
	RequiresVisaCity             bool `bson:"requires_visa_city" json:"requiresVisaCity"`
	RequiresNationalID           bool `bson:"requires_national_id" json:"requiresNationalId"`

	Cities           []string            `bson:"cities,omitempty" json:"cities,omitempty"`
	Locations        []string            `bson:"locations,omitempty" json:"locations,omitempty"`
	AppointmentTypes []AppointmentOption `bson:"appointment_types,omitempty" json:"appointmentTypes,omitempty"`
	Nationalities    []NationalityOption `bson:"nationalities,omitempty" json:"nationalities,omitempty"`

	Active       bool      `bson:"active" json:"active"`
	DisplayOrder int       `bson:"display_order" json:"displayOrder"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}

// Nationality returns the option with the given value.
func (s *VisaService) Nationality(value string) (NationalityOption, bool) {
	for _, n := range s.Nationalities {
		if n.Value == value {
			return n, true
		}
	}
	return NationalityOption{}, false
}

// AppointmentType returns the option with the given value.
func (s *VisaService) AppointmentType(value string) (AppointmentOption, bool) {
	for _, a := range s.AppointmentTypes {
		if a.Value == value {
			return a, true
		}
	}
	return AppointmentOption{}, false
}

// HasCity reports whether city is one of the selectable cities.
func (s *VisaService) HasCity(city string) bool {
	return contains(s.Cities, city)
}

// HasLocation reports whether loc is one of the selectable locations.
func (s *VisaService) HasLocation(loc string) bool {
	return contains(s.Locations, loc)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
