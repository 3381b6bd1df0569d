package admin

import (
	"time"

	"visapoint/models"
)

const legalVersion = "v1.0"

var legalUpdated = time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)

// LegalSections returns the policy pages linked from the site footer.
func LegalSections() []models.LegalSection {
	return []models.LegalSection{
		{
			ID:      "terms",
			Title:   "Terms of Service",
			Summary: "The terms under which we prepare and submit visa applications on your behalf.",
			Content: termsOfService(),
			Version: legalVersion,
			Updated: legalUpdated,
		},
		{
			ID:      "privacy",
			Title:   "Privacy Policy",
			Summary: "What personal data and documents we collect and who we share them with.",
			Content: privacyPolicy(),
			Version: legalVersion,
			Updated: legalUpdated,
		},
		{
			ID:      "refunds",
			Title:   "Payment & Refund Policy",
			Summary: "How service fees are charged and when they can be refunded.",
			Content: refundPolicy(),
			Version: legalVersion,
			Updated: legalUpdated,
		},
	}
}

// LegalSection returns one page by id.
func LegalSection(id string) (models.LegalSection, bool) {
	for _, s := range LegalSections() {
		if s.ID == id {
			return s, true
		}
	}
	return models.LegalSection{}, false
}

func termsOfService() string {
	return `By submitting an application you agree to these terms.

1. Service: We prepare and submit your visa application. The decision is made by the issuing authority alone.
2. Accuracy: You are responsible for the accuracy of traveller details and uploaded documents.
3. Processing times: Published processing times are estimates and may change without notice.
4. Appointments: Where an appointment is required we book the type you selected, subject to availability.
5. Account: Your dashboard shows the status of every application submitted with your email.`
}

func privacyPolicy() string {
	return `We collect only what a visa application needs.

1. Data we collect: applicant contact details, traveller names and identifiers, passport scans, photos and supporting documents.
2. How we use it: to prepare your application, contact you about it and issue invoices.
3. Sharing: documents are shared with the relevant embassy or visa centre and with our payment processor for billing.
4. Retention: applications and documents are deleted on request once processing has finished.`
}

func refundPolicy() string {
	return `1. Service fees are charged when the application is submitted for payment.
2. Government and visa centre fees are non-refundable once paid to the authority.
3. If we cannot submit your application, the service fee is refunded in full.
4. Refund requests are answered within 5 business days.`
}
