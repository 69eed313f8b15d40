package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

var resetTemplate = template.Must(template.New("reset").Parse(`<p>Hello {{.Name}},</p>
<p>We received a request to reset the password for your account.</p>
<p><a href="{{.Link}}">Choose a new password</a></p>
<p>The link is valid for {{.Validity}}. If you did not ask for this, you can ignore this email.</p>`))

// PasswordResetEmail renders the subject and HTML body of the reset mail.
// The link points at baseURL/reset-password with the token and email as query.
func PasswordResetEmail(baseURL, name, email, token, validity string) (string, string, error) {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	link := fmt.Sprintf("%s/reset-password?%s", strings.TrimSuffix(baseURL, "/"), q.Encode())

	var buf bytes.Buffer
	err := resetTemplate.Execute(&buf, struct {
		Name, Link, Validity string
	}{Name: name, Link: link, Validity: validity})
	if err != nil {
		return "", "", fmt.Errorf("render reset email: %w", err)
	}
	return "Reset your password", buf.String(), nil
}
