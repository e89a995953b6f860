package templates

import (
	"bytes"
	"fmt"
	"html/template"
)

// Render produces subject, text, and HTML bodies for a named template.
// Unknown template names are an error so a typo in a producer surfaces in
// the worker log instead of sending an empty email.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	switch name {
	case "verification_code":
		code := str(data, "code")
		subject = fmt.Sprintf("%s is your verification code", code)
		text = fmt.Sprintf("Your verification code is %s. It expires in 48 hours.", code)
		html, err = render(codeHTML, map[string]any{
			"Title": "Verify your email",
			"Lead":  "Enter this code to verify your email address. It expires in 48 hours.",
			"Code":  code,
		})
	case "password_reset_code":
		code := str(data, "code")
		subject = fmt.Sprintf("%s is your password reset code", code)
		text = fmt.Sprintf("Your password reset code is %s. If you did not request a reset, ignore this email.", code)
		html, err = render(codeHTML, map[string]any{
			"Title": "Reset your password",
			"Lead":  "Enter this code to reset your password. If you did not request a reset, ignore this email.",
			"Code":  code,
		})
	case "confirm_link":
		link := str(data, "link")
		subject = "Confirm your email address"
		text = fmt.Sprintf("Confirm your email address by opening this link: %s", link)
		html, err = render(linkHTML, map[string]any{
			"Username": str(data, "username"),
			"Link":     link,
		})
	case "welcome":
		username := str(data, "username")
		subject = "Welcome aboard"
		text = fmt.Sprintf("Your account is ready. Your handle is @%s; you can change it anytime in settings.", username)
		html, err = render(welcomeHTML, map[string]any{
			"Username": username,
		})
	default:
		err = fmt.Errorf("unknown email template %q", name)
	}
	return subject, text, html, err
}

func str(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	if v, ok := data[key]; ok {
		return fmt.Sprintf("%v", v)
	}
	return ""
}

func render(t *template.Template, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var codeHTML = template.Must(template.New("code").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Helvetica, Arial, sans-serif; background: #f5f5f5; padding: 24px;">
  <div style="max-width: 480px; margin: auto; background: #ffffff; border-radius: 8px; padding: 32px;">
    <h2 style="margin-top: 0;">{{.Title}}</h2>
    <p>{{.Lead}}</p>
    <p style="font-size: 32px; letter-spacing: 8px; font-weight: bold; text-align: center; margin: 24px 0;">{{.Code}}</p>
    <p style="color: #888; font-size: 12px;">If you did not request this code, you can safely ignore this email.</p>
  </div>
</body>
</html>`))

var linkHTML = template.Must(template.New("link").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Helvetica, Arial, sans-serif; background: #f5f5f5; padding: 24px;">
  <div style="max-width: 480px; margin: auto; background: #ffffff; border-radius: 8px; padding: 32px;">
    <h2 style="margin-top: 0;">Confirm your email</h2>
    <p>Hi {{.Username}}, confirm your email address to finish setting up your account.</p>
    <p style="text-align: center; margin: 24px 0;">
      <a href="{{.Link}}" style="background: #111; color: #fff; padding: 12px 24px; border-radius: 6px; text-decoration: none;">Confirm email</a>
    </p>
    <p style="color: #888; font-size: 12px;">The link expires in 48 hours. If you did not create an account, ignore this email.</p>
  </div>
</body>
</html>`))

var welcomeHTML = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Helvetica, Arial, sans-serif; background: #f5f5f5; padding: 24px;">
  <div style="max-width: 480px; margin: auto; background: #ffffff; border-radius: 8px; padding: 32px;">
    <h2 style="margin-top: 0;">Welcome aboard</h2>
    <p>Your account is ready. Your handle is <strong>@{{.Username}}</strong>; you can change it anytime in settings.</p>
  </div>
</body>
</html>`))
