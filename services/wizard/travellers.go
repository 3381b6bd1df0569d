package wizard

import "visapoint/models"

// MaxTravellers bounds one application.
const MaxTravellers = 20

// ResizeTravellers returns a list of length n that keeps existing entries for
// indices that still exist and pads with empty travellers.
func ResizeTravellers(list []models.Traveller, n int) []models.Traveller {
	if n < 0 {
		n = 0
	}
	out := make([]models.Traveller, n)
	copy(out, list)
	return out
}
