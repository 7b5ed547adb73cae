package model

import "time"

// User mirrors an identity-provider account. ExternalID is the provider subject.
type User struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	Email      string    `json:"email,omitempty"`
	FullName   string    `json:"full_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Author is the read-only byline projection of a document owner.
type Author struct {
	ID       string `json:"id"`
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
}

// DisplayName prefers the full name and falls back to the email.
func (a *Author) DisplayName() string {
	if a == nil {
		return ""
	}
	if a.FullName != "" {
		return a.FullName
	}
	return a.Email
}
