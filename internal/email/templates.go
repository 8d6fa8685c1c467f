package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"time"
)

var (
	approvedTmpl = template.Must(template.New("approved").Parse(`<p>Hello {{.Name}},</p>
<p>Your event <strong>{{.Title}}</strong> has been approved and is now visible to the community.</p>
<p>Thank you for using MaitriConnect.</p>
<p>&copy; {{.Year}} MaitriConnect</p>`))

	resetTmpl = template.Must(template.New("reset").Parse(`<p>Hello {{.Name}},</p>
<p>We received a request to reset your password. The link below is valid until {{.Expires}}.</p>
<p><a href="{{.Link}}">Reset your password</a></p>
<p>If you did not request this, you can ignore this email.</p>`))
)

// Message is a rendered subject and body pair.
type Message struct {
	Subject string
	HTML    string
}

// EventApproved renders the organizer notification for an approved listing.
func EventApproved(name, title string) (Message, error) {
	var buf bytes.Buffer
	err := approvedTmpl.Execute(&buf, struct {
		Name, Title string
		Year        int
	}{name, title, time.Now().Year()})
	if err != nil {
		return Message{}, fmt.Errorf("render approval email: %w", err)
	}
	return Message{Subject: "Event Approved: " + title, HTML: buf.String()}, nil
}

// PasswordReset renders the reset email. link must be an absolute http(s) URL.
func PasswordReset(name, link string, expires time.Time) (Message, error) {
	if err := validateLink(link); err != nil {
		return Message{}, fmt.Errorf("invalid reset link: %w", err)
	}
	var buf bytes.Buffer
	err := resetTmpl.Execute(&buf, struct {
		Name, Link, Expires string
	}{name, link, expires.UTC().Format(time.RFC1123)})
	if err != nil {
		return Message{}, fmt.Errorf("render reset email: %w", err)
	}
	return Message{Subject: "Password Reset Request", HTML: buf.String()}, nil
}

func validateLink(link string) error {
	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s (must be http or https)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
