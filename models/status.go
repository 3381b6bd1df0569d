package models

import "time"

// StatusEntry is one row of an application's status history.
type StatusEntry struct {
	ID            string    `bson:"id" json:"id"`
	ApplicationID string    `bson:"application_id" json:"applicationId"`
	Status        string    `bson:"status" json:"status"`
	Note          string    `bson:"note,omitempty" json:"note,omitempty"`
	Actor         string    `bson:"actor,omitempty" json:"actor,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"createdAt"`
}
