package mailer

import (
	"strings"
	"testing"
)

func TestVerificationEmailCarriesCode(t *testing.T) {
	email := VerificationEmail("ada@acme.test", "Ada", "XA9834")

	if len(email.To) != 1 || email.To[0] != "ada@acme.test" {
		t.Fatalf("unexpected recipients %v", email.To)
	}
	if !strings.Contains(email.Body, "XA9834") || !strings.Contains(email.HTMLBody, "XA9834") {
		t.Fatalf("verification code missing from the message")
	}
	if !strings.Contains(email.Body, "Ada") {
		t.Fatalf("recipient name missing from the message")
	}
}

func TestLinkEmailsEmbedTheMachineCode(t *testing.T) {
	tests := []struct {
		name  string
		email Email
		path  string
	}{
		{"password reset", PasswordResetEmail("a@x.test", "https://app.test", "deadbeef"), "/reset-password?code=deadbeef"},
		{"invitation", InvitationEmail("a@x.test", "Acme", "https://app.test", "deadbeef"), "/join?code=deadbeef"},
		{"email change", EmailChangeEmail("a@x.test", "https://app.test", "deadbeef"), "/confirm-email?code=deadbeef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := "https://app.test" + tt.path
			if !strings.Contains(tt.email.Body, link) {
				t.Fatalf("plain body misses link %q:\n%s", link, tt.email.Body)
			}
			if !strings.Contains(tt.email.HTMLBody, link) {
				t.Fatalf("html body misses link %q:\n%s", link, tt.email.HTMLBody)
			}
		})
	}
}

func TestInvitationEmailNamesTheOrganization(t *testing.T) {
	email := InvitationEmail("a@x.test", "Acme", "https://app.test", "deadbeef")

	if !strings.Contains(email.Subject, "Acme") || !strings.Contains(email.Body, "Acme") {
		t.Fatalf("organization name missing from the invitation")
	}
}
