package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

// BuildVerificationLink points at the frontend's verify page.
func BuildVerificationLink(token string) string {
	frontend := strings.TrimRight(EnvOrDefault("FRONTEND_URL", "http://localhost:3000"), "/")
	return fmt.Sprintf("%s/verify?token=%s", frontend, token)
}

// SendVerificationEmail sends the account verification mail. When SMTP is not
// configured it logs a mock send instead, so dev setups work without a relay.
func SendVerificationEmail(recipientEmail, name, verifyLink string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USERNAME")
	smtpPass := os.Getenv("SMTP_PASSWORD")
	fromName := os.Getenv("SMTP_FROM_NAME")

	if smtpUser == "" || smtpPass == "" || smtpHost == "" || smtpPort == "" {
		log.Printf("[MOCK EMAIL] verification to:%s link:%s", recipientEmail, verifyLink)
		return nil
	}

	safe := func(s string) string {
		return strings.ReplaceAll(strings.TrimSpace(s), "\r\n", " ")
	}
	name = safe(name)
	verifyLink = safe(verifyLink)

	if !(strings.HasPrefix(verifyLink, "http://") || strings.HasPrefix(verifyLink, "https://")) {
		verifyLink = "https://" + strings.TrimLeft(verifyLink, "/")
	}

	from := fmt.Sprintf("%s <%s>", fromName, smtpUser)
	to := []string{recipientEmail}
	auth := smtp.PlainAuth("", smtpUser, smtpPass, smtpHost)
	addr := fmt.Sprintf("%s:%s", smtpHost, smtpPort)

	subject := "Verify your account"
	boundary := "----=_VERIFY_EMAIL_BOUNDARY"

	plainBody := fmt.Sprintf(
		"Hi %s,\n\n"+
			"Welcome! Please verify your email address using the link below:\n%s\n\n"+
			"If you did not create this account, you can ignore this email.\n",
		name, verifyLink,
	)

	htmlBody := fmt.Sprintf(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Verify your account</title>
<style>
body { background:#f5f7fb; font-family:Arial, Helvetica, sans-serif; color:#222; }
.container { max-width:640px; margin:20px auto; }
.card { background:#fff; border:1px solid #e6eef6; padding:24px; border-radius:8px; }
.btn { display:inline-block; padding:12px 20px; background:#0b74ff; color:#fff; text-decoration:none; border-radius:6px; margin-top:16px; }
</style>
</head>
<body>
<div class="container">
  <div class="card">
    <h2>Verify your account</h2>
    <p>Hi %s,</p>
    <p>Welcome! Click the button below to verify your email address.</p>
    <a class="btn" href="%s" target="_blank">Verify Email</a>
    <p>If you did not create this account, you can ignore this email.</p>
  </div>
</div>
</body>
</html>`, name, verifyLink)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", recipientEmail))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary))

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(plainBody + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	sb.WriteString(htmlBody + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	if err := smtp.SendMail(addr, auth, smtpUser, to, []byte(sb.String())); err != nil {
		log.Printf("failed to send verification email to %s: %v", recipientEmail, err)
		return err
	}
	return nil
}
