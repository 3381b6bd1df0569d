package wizard

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ErrInvalidTransition is returned when an event is not accepted in the current state.
var ErrInvalidTransition = errors.New("event not allowed in current state")

// ValidationError blocks a step change. Field names the offending input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func notAllowed(ev Event, s State) error {
	return fmt.Errorf("%w: %s at step %s (payment %s)", ErrInvalidTransition, ev.Name(), s.Step, s.Payment.Status)
}

func blank(v string) bool {
	return strings.TrimSpace(v) == ""
}

const travelDateLayout = "2006-01-02"

func validatePersonalInfo(s State) error {
	if blank(s.TravelDate) {
		return invalid("travelDate", "travel date is required")
	}
	if _, err := time.Parse(travelDateLayout, s.TravelDate); err != nil {
		return invalid("travelDate", "travel date must be formatted as YYYY-MM-DD")
	}
	if len(s.Travellers) != s.NumberOfTravellers || s.NumberOfTravellers < 1 {
		return invalid("numberOfTravellers", "at least one traveller is required")
	}
	for i, t := range s.Travellers {
		if blank(t.FirstName) {
			return invalid(fmt.Sprintf("travellers[%d].firstName", i), "first name is required for traveller %d", i+1)
		}
		if blank(t.LastName) {
			return invalid(fmt.Sprintf("travellers[%d].lastName", i), "last name is required for traveller %d", i+1)
		}
		if s.RequiresNationalID && blank(t.NationalID) {
			return invalid(fmt.Sprintf("travellers[%d].nationalId", i), "national ID is required for traveller %d", i+1)
		}
		if s.Service.RequiresMotherName && blank(t.MotherName) {
			return invalid(fmt.Sprintf("travellers[%d].motherName", i), "mother's name is required for traveller %d", i+1)
		}
	}
	if s.Service.RequiresVisaCity && blank(s.VisaCity) {
		return invalid("visaCity", "please select a city")
	}
	if s.Service.RequiresLocation && blank(s.Location) {
		return invalid("location", "please select a location")
	}
	if s.Service.RequiresAppointmentType && blank(s.AppointmentType) {
		return invalid("appointmentType", "please select an appointment type")
	}
	return nil
}

func validateAccount(s State, e SubmitAccount) error {
	if s.UserID != "" || e.UserID != "" {
		if blank(e.Phone) {
			return invalid("phone", "phone number is required")
		}
		return nil
	}
	switch {
	case blank(e.Email):
		return invalid("email", "email is required")
	case blank(e.Password):
		return invalid("password", "password is required")
	case blank(e.ConfirmPassword):
		return invalid("confirmPassword", "please confirm your password")
	case blank(e.Phone):
		return invalid("phone", "phone number is required")
	}
	if err := validate.Var(strings.TrimSpace(e.Email), "email"); err != nil {
		return invalid("email", "email address is not valid")
	}
	if e.Password != e.ConfirmPassword {
		return invalid("confirmPassword", "passwords do not match")
	}
	return nil
}
