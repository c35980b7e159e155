package model

import "strings"

// ContactSubmission is one contact form post; it lives for a single request.
type ContactSubmission struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Company        string `json:"company"`
	Service        string `json:"service"`
	Message        string `json:"message"`
	TurnstileToken string `json:"turnstileToken"`

	RemoteIP string `json:"-"`
}

// Normalize trims surrounding whitespace from every field.
func (s ContactSubmission) Normalize() ContactSubmission {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Company = strings.TrimSpace(s.Company)
	s.Service = strings.TrimSpace(s.Service)
	s.Message = strings.TrimSpace(s.Message)
	s.TurnstileToken = strings.TrimSpace(s.TurnstileToken)
	return s
}
