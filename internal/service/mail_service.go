package service

import (
	"context"
	"fmt"
	"log/slog"
	netmail "net/mail"
	"strings"

	"github.com/sandeepkv93/estate-admin-backend/internal/mail"
	"github.com/sandeepkv93/estate-admin-backend/internal/observability"
)

type ContactInput struct {
	ContactName string `json:"contactName"`
	Street      string `json:"street"`
	City        string `json:"city"`
	PostCode    string `json:"postCode"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email,omitempty"`
	Message     string `json:"message,omitempty"`
}

type MailService struct {
	sender mail.Sender
	to     []string
	logger *slog.Logger
}

func NewMailService(sender mail.Sender, to []string, logger *slog.Logger) *MailService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MailService{sender: sender, to: to, logger: logger}
}

// SendContact forwards a contact form submission to the configured inbox.
func (s *MailService) SendContact(ctx context.Context, in ContactInput) error {
	in = trimContact(in)
	if err := validateContact(in); err != nil {
		observability.RecordContactMail(ctx, "invalid")
		return err
	}
	if len(s.to) == 0 {
		observability.RecordContactMail(ctx, "error")
		return internal("Mail could not be sent", fmt.Errorf("no recipient configured"))
	}
	msg := mail.Message{
		To:      s.to,
		ReplyTo: in.Email,
		Subject: "New contact request from " + in.ContactName,
		Body:    contactBody(in),
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		observability.RecordContactMail(ctx, "error")
		return internal("Mail could not be sent", err)
	}
	observability.RecordContactMail(ctx, "sent")
	s.logger.InfoContext(ctx, "contact mail sent", "city", in.City)
	return nil
}

func trimContact(in ContactInput) ContactInput {
	for _, f := range []*string{&in.ContactName, &in.Street, &in.City, &in.PostCode, &in.PhoneNumber, &in.Email, &in.Message} {
		*f = strings.TrimSpace(*f)
	}
	return in
}

func validateContact(in ContactInput) error {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"contactName", in.ContactName},
		{"street", in.Street},
		{"city", in.City},
		{"postCode", in.PostCode},
		{"phoneNumber", in.PhoneNumber},
	}
	for _, f := range required {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return badRequest("Missing fields: " + strings.Join(missing, ", "))
	}
	if in.Email != "" {
		if _, err := netmail.ParseAddress(in.Email); err != nil {
			return badRequest("Invalid email address")
		}
	}
	return nil
}

func contactBody(in ContactInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", in.ContactName)
	fmt.Fprintf(&b, "Address: %s, %s %s\n", in.Street, in.PostCode, in.City)
	fmt.Fprintf(&b, "Phone: %s\n", in.PhoneNumber)
	if in.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", in.Email)
	}
	if in.Message != "" {
		fmt.Fprintf(&b, "\n%s\n", in.Message)
	}
	return b.String()
}
