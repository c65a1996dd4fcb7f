package entity

import "time"

// PairingCode is a short-lived, human-typable code binding an announcing
// display's live connection to whichever controller claims it first.
type PairingCode struct {
	Code            string    `json:"code"`
	DisplayID       string    `json:"display_id"`
	DisplayLocation Location  `json:"display_location"`
	IssuedAt        time.Time `json:"issued_at"`
	ExpiresAt       time.Time `json:"expires_at"`
	Consumed        bool      `json:"consumed"`
	ConsumedBy      string    `json:"consumed_by,omitempty"`
}

// Expired reports whether the code's TTL has elapsed at the given instant.
func (c PairingCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
