package models

import "time"

// ClientDocument is a file the back office shares with a client.
type ClientDocument struct {
	ID            string    `bson:"id" json:"id"`
	UserID        string    `bson:"user_id" json:"userId"`
	ApplicationID string    `bson:"application_id,omitempty" json:"applicationId,omitempty"`
	Name          string    `bson:"name" json:"name"`
	URL           string    `bson:"url" json:"url"`
	UploadedBy    string    `bson:"uploaded_by" json:"uploadedBy"`
	CreatedAt     time.Time `bson:"created_at" json:"createdAt"`
}
