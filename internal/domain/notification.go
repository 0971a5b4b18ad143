package domain

import "time"

// NotificationPreferences holds the user's contact channels. Each field is
// independently optional, but persisting requires at least one to be set.
type NotificationPreferences struct {
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// Empty reports whether no channel is configured at all.
func (p NotificationPreferences) Empty() bool {
	return p.Email == "" && p.PhoneNumber == ""
}

// Alert records a fired price alert for deduplication across sweeps.
type Alert struct {
	ProductURL string
	Title      string
	Price      float64
	Threshold  float64
	FiredAt    time.Time
}
