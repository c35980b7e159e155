package model

// Email is an outbound message handed to a mail provider.
type Email struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}
