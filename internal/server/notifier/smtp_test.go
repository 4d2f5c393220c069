package notifier

import (
	"strings"
	"testing"
)

func TestBuildMessage(t *testing.T) {
	t.Parallel()

	msg := string(buildMessage("no-reply@x.com", "a@x.com", "Your login link", "<p>hi</p>"))

	headers, body, found := strings.Cut(msg, "\r\n\r\n")
	if !found {
		t.Fatalf("no header/body separator in message: %q", msg)
	}

	for _, want := range []string{
		"From: no-reply@x.com",
		"To: a@x.com",
		"Subject: Your login link",
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
	} {
		if !strings.Contains(headers, want) {
			t.Errorf("missing header %q in %q", want, headers)
		}
	}

	if body != "<p>hi</p>" {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestNewSMTPNotifier_NoAuthWhenUsernameEmpty(t *testing.T) {
	t.Parallel()

	n := NewSMTPNotifier("smtp.example.com", 587, "", "", "no-reply@x.com")
	if n.username != "" {
		t.Fatalf("unexpected username: %q", n.username)
	}
	var _ Notifier = n
}
