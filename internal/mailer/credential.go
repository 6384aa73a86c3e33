package mailer

import (
	"context"
	"fmt"

	"github.com/osteele/liquid"

	"github.com/ignite/trader-link/internal/domain"
)

const credentialSubject = "Your trader account is ready"

const credentialHTMLTemplate = `<html>
<body style="font-family: sans-serif; color: #222;">
  <h2>Welcome{% if listing_title != "" %} to {{ listing_title }}{% endif %}</h2>
  <p>An account has been created so you can manage your listing.</p>
  <table cellpadding="4">
    <tr><td><strong>Login</strong></td><td>{{ login }}</td></tr>
    <tr><td><strong>Password</strong></td><td>{{ password }}</td></tr>
  </table>
  {% if login_url != "" %}<p><a href="{{ login_url }}">Sign in here</a>.</p>{% endif %}
  <p>You will be asked to choose a new password on first sign-in.</p>
</body>
</html>`

const credentialTextTemplate = `Welcome{% if listing_title != "" %} to {{ listing_title }}{% endif %}

An account has been created so you can manage your listing.

Login:    {{ login }}
Password: {{ password }}
{% if login_url != "" %}
Sign in: {{ login_url }}
{% endif %}
You will be asked to choose a new password on first sign-in.`

// CredentialMailer renders the credential templates and hands the result to
// a Sender. It implements linking.Notifier.
type CredentialMailer struct {
	sender   Sender
	htmlTpl  *liquid.Template
	textTpl  *liquid.Template
}

// NewCredentialMailer parses the credential templates. Parsing happens once
// at wiring time so a template typo fails startup, not a send.
func NewCredentialMailer(sender Sender) (*CredentialMailer, error) {
	engine := liquid.NewEngine()
	htmlTpl, err := engine.ParseString(credentialHTMLTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse credential HTML template: %w", err)
	}
	textTpl, err := engine.ParseString(credentialTextTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse credential text template: %w", err)
	}
	return &CredentialMailer{sender: sender, htmlTpl: htmlTpl, textTpl: textTpl}, nil
}

// SendCredentials renders and delivers one credential notification.
func (m *CredentialMailer) SendCredentials(ctx context.Context, to string, creds domain.Credentials) error {
	bindings := map[string]interface{}{
		"login":         creds.Login,
		"password":      creds.Password,
		"listing_title": creds.ListingTitle,
		"login_url":     creds.LoginURL,
	}
	html, err := m.htmlTpl.Render(bindings)
	if err != nil {
		return fmt.Errorf("render credential HTML: %w", err)
	}
	text, err := m.textTpl.Render(bindings)
	if err != nil {
		return fmt.Errorf("render credential text: %w", err)
	}
	return m.sender.Send(ctx, to, credentialSubject, string(html), string(text))
}
