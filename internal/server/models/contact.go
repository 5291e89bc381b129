package models

import "time"

// Contact is one mirrored address object.
type Contact struct {
	OwnerID     string
	SourceID    string
	Href        string
	ETag        string
	UID         string
	DisplayName string
	Email       string
	VCard       []byte
	UpdatedAt   time.Time
}
