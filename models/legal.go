package models

// LegalSection is one public policy page.
type LegalSection struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Content string `json:"content"`
	Version string `json:"version"`
	Updated string `json:"updated"`
}
