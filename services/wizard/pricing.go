package wizard

import (
	"visapoint/models"

	"github.com/shopspring/decimal"
)

// BasePrice resolves the per-traveller price. A priced nationality option
// replaces the service price and a priced appointment type replaces both.
func BasePrice(svc models.VisaService, nationality, appointmentType string) float64 {
	price := svc.BasePrice
	if opt, ok := svc.Nationality(nationality); ok && opt.Price != nil {
		price = *opt.Price
	}
	if opt, ok := svc.AppointmentType(appointmentType); ok && opt.Price != nil {
		price = *opt.Price
	}
	return price
}

// TotalPrice is basePrice × travellers, rounded to cents.
func TotalPrice(basePrice float64, travellers int) float64 {
	return decimal.NewFromFloat(basePrice).
		Mul(decimal.NewFromInt(int64(travellers))).
		Round(2).
		InexactFloat64()
}

// RequiresNationalID reports whether each traveller needs a national ID.
func RequiresNationalID(svc models.VisaService, nationality string) bool {
	if opt, ok := svc.Nationality(nationality); ok && opt.RequiresNationalID != nil {
		return *opt.RequiresNationalID
	}
	return svc.RequiresNationalID
}

func reprice(s *State) {
	s.BasePrice = BasePrice(s.Service, s.Nationality, s.AppointmentType)
	s.RequiresNationalID = RequiresNationalID(s.Service, s.Nationality)
	s.TotalPrice = TotalPrice(s.BasePrice, s.NumberOfTravellers)
}
