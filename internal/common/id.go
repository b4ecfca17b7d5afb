package common

import (
	"github.com/google/uuid"
)

// NewAlertID generates a unique alert ID with the "alert_" prefix
func NewAlertID() string {
	return "alert_" + uuid.New().String()
}

// NewThesisID generates a unique thesis ID with the "thesis_" prefix
func NewThesisID() string {
	return "thesis_" + uuid.New().String()
}

// NewSessionToken generates an opaque bearer token for a session
func NewSessionToken() string {
	return "sst_" + uuid.New().String()
}
