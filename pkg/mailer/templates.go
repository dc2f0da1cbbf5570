package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// WelcomeEmailData holds data for the welcome email.
type WelcomeEmailData struct {
	SiteName     string
	FullName     string
	Username     string
	TempPassword string
	LoginURL     string
}

// BuildWelcomeEmail creates the welcome email with both HTML and text bodies.
func BuildWelcomeEmail(data WelcomeEmailData) Email {
	return Email{
		Subject:  fmt.Sprintf("Welcome to %s", data.SiteName),
		TextBody: buildWelcomeText(data),
		HTMLBody: render(welcomeHTML, data),
	}
}

func buildWelcomeText(data WelcomeEmailData) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Hello %s,\n\n", data.FullName)
	fmt.Fprintf(&buf, "You have been registered as a member of %s.\n\n", data.SiteName)
	buf.WriteString("Your sign-in details:\n")
	fmt.Fprintf(&buf, "  Username: %s\n", data.Username)
	fmt.Fprintf(&buf, "  Temporary password: %s\n\n", data.TempPassword)
	fmt.Fprintf(&buf, "Sign in at %s and change your password as soon as possible.\n\n", data.LoginURL)
	fmt.Fprintf(&buf, "The %s team\n", data.SiteName)
	return buf.String()
}

// PasswordResetEmailData holds data for the reset email.
type PasswordResetEmailData struct {
	SiteName  string
	FullName  string
	ResetLink string
	ExpiresIn string // e.g. "1 hour"
}

// BuildPasswordResetEmail creates the reset email with both HTML and text bodies.
func BuildPasswordResetEmail(data PasswordResetEmailData) Email {
	return Email{
		Subject:  fmt.Sprintf("Reset your %s password", data.SiteName),
		TextBody: buildResetText(data),
		HTMLBody: render(resetHTML, data),
	}
}

func buildResetText(data PasswordResetEmailData) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Hello %s,\n\n", data.FullName)
	buf.WriteString("We received a request to reset your password. Open this link to choose a new one:\n")
	buf.WriteString(data.ResetLink + "\n\n")
	fmt.Fprintf(&buf, "The link expires in %s and can only be used once.\n\n", data.ExpiresIn)
	buf.WriteString("If you did not request a reset, you can safely ignore this email.\n")
	return buf.String()
}

var (
	welcomeHTML = template.Must(template.New("welcome").Parse(welcomeHTMLTemplate))
	resetHTML   = template.Must(template.New("reset").Parse(resetHTMLTemplate))
)

func render(tmpl *template.Template, data any) string {
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

const welcomeHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Welcome</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; color: #111827;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px; font-size: 16px; color: #374151; line-height: 1.5;">
              <p style="margin: 0 0 16px;">Hello {{.FullName}},</p>
              <p style="margin: 0 0 16px;">You have been registered as a member of {{.SiteName}}.</p>
              <p style="margin: 0 0 8px;">Username: <strong>{{.Username}}</strong></p>
              <p style="margin: 0 0 24px;">Temporary password: <strong style="font-family: 'Courier New', monospace;">{{.TempPassword}}</strong></p>
              <p style="margin: 0 0 24px; text-align: center;">
                <a href="{{.LoginURL}}" style="display: inline-block; padding: 14px 32px; background-color: #111827; color: #ffffff; text-decoration: none; border-radius: 6px;">Sign in</a>
              </p>
              <p style="margin: 0; font-size: 13px; color: #6b7280;">Please change your password after your first sign-in.</p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`

const resetHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Password reset</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; color: #111827;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px; font-size: 16px; color: #374151; line-height: 1.5;">
              <p style="margin: 0 0 16px;">Hello {{.FullName}},</p>
              <p style="margin: 0 0 24px;">We received a request to reset your password.</p>
              <p style="margin: 0 0 24px; text-align: center;">
                <a href="{{.ResetLink}}" style="display: inline-block; padding: 14px 32px; background-color: #111827; color: #ffffff; text-decoration: none; border-radius: 6px;">Choose a new password</a>
              </p>
              <p style="margin: 0; font-size: 13px; color: #6b7280;">The link expires in {{.ExpiresIn}}. If you did not request it, ignore this email.</p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
