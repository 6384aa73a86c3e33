package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ignite/trader-link/internal/domain"
)

type captureSender struct {
	to, subject, html, text string
	err                     error
}

func (c *captureSender) Send(_ context.Context, to, subject, htmlBody, textBody string) error {
	c.to, c.subject, c.html, c.text = to, subject, htmlBody, textBody
	return c.err
}

func TestSendCredentialsRendersBindings(t *testing.T) {
	sender := &captureSender{}
	m, err := NewCredentialMailer(sender)
	if err != nil {
		t.Fatalf("NewCredentialMailer: %v", err)
	}

	err = m.SendCredentials(context.Background(), "owner@example.com", domain.Credentials{
		Login:        "owner",
		Password:     "s3cret-s3cret",
		ListingTitle: "Alpha Bakery",
		LoginURL:     "https://portal.example.com/login",
	})
	if err != nil {
		t.Fatalf("SendCredentials: %v", err)
	}

	if sender.to != "owner@example.com" {
		t.Errorf("to = %q", sender.to)
	}
	for _, want := range []string{"owner", "s3cret-s3cret", "Alpha Bakery", "https://portal.example.com/login"} {
		if !strings.Contains(sender.html, want) {
			t.Errorf("HTML body missing %q", want)
		}
		if !strings.Contains(sender.text, want) {
			t.Errorf("text body missing %q", want)
		}
	}
}

func TestSendCredentialsOmitsEmptyOptionalFields(t *testing.T) {
	sender := &captureSender{}
	m, err := NewCredentialMailer(sender)
	if err != nil {
		t.Fatalf("NewCredentialMailer: %v", err)
	}

	if err := m.SendCredentials(context.Background(), "x@example.com", domain.Credentials{
		Login:    "x",
		Password: "p4ssw0rd-p4ssw0rd",
	}); err != nil {
		t.Fatalf("SendCredentials: %v", err)
	}
	if strings.Contains(sender.html, "Sign in here") {
		t.Error("HTML contains sign-in link without a login URL")
	}
	if strings.Contains(sender.html, "Welcome to") {
		t.Error("HTML names a listing without a title")
	}
}

func TestSendCredentialsPropagatesSendError(t *testing.T) {
	wantErr := errors.New("smtp down")
	m, err := NewCredentialMailer(&captureSender{err: wantErr})
	if err != nil {
		t.Fatalf("NewCredentialMailer: %v", err)
	}
	err = m.SendCredentials(context.Background(), "x@example.com", domain.Credentials{Login: "x", Password: "p"})
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want wrapped %v", err, wantErr)
	}
}
