package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"sevaportal/internal/config"
)

// Notifier sends citizen-facing emails. Callers fire it off the request
// path; failures are logged, never surfaced to the API response.
type Notifier interface {
	ApplicationStatus(toEmail, toName, serviceName, status, remark string) error
	ServiceCompleted(toEmail, toName, serviceName, completionDate string) error
	GrievanceResolved(toEmail, toName, remark string) error
}

// SMTPNotifier delivers over plain SMTP with optional auth.
type SMTPNotifier struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

func NewSMTPNotifier(env config.Env) SMTPNotifier {
	return SMTPNotifier{
		Host: env.SMTPHost,
		Port: env.SMTPPort,
		User: env.SMTPUser,
		Pass: env.SMTPPass,
		From: env.SMTPFrom,
	}
}

func (n SMTPNotifier) ApplicationStatus(toEmail, toName, serviceName, status, remark string) error {
	body := fmt.Sprintf("Dear %s,\r\n\r\nYour application for %s is now %s.", toName, serviceName, status)
	if remark != "" {
		body += fmt.Sprintf("\r\nRemark: %s", remark)
	}
	return n.send(toEmail, "Application status update", body)
}

func (n SMTPNotifier) ServiceCompleted(toEmail, toName, serviceName, completionDate string) error {
	body := fmt.Sprintf(
		"Dear %s,\r\n\r\nYour application for %s was completed on %s. You can collect the certificate from the department office or download it from the portal.",
		toName, serviceName, completionDate)
	return n.send(toEmail, "Service completed", body)
}

func (n SMTPNotifier) GrievanceResolved(toEmail, toName, remark string) error {
	body := fmt.Sprintf("Dear %s,\r\n\r\nYour grievance has been resolved.", toName)
	if remark != "" {
		body += fmt.Sprintf("\r\nResolution: %s", remark)
	}
	return n.send(toEmail, "Grievance resolved", body)
}

func (n SMTPNotifier) send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + n.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	addr := n.Host + ":" + n.Port
	var auth smtp.Auth
	if n.User != "" {
		auth = smtp.PlainAuth("", n.User, n.Pass, n.Host)
	}
	return smtp.SendMail(addr, auth, n.From, []string{to}, []byte(msg))
}

// NopNotifier is used when SMTP is not configured.
type NopNotifier struct{}

func (NopNotifier) ApplicationStatus(_, _, _, _, _ string) error { return nil }
func (NopNotifier) ServiceCompleted(_, _, _, _ string) error     { return nil }
func (NopNotifier) GrievanceResolved(_, _, _ string) error       { return nil }

// ForEnv picks the SMTP notifier when a host is configured, otherwise
// the no-op one.
func ForEnv(env config.Env) Notifier {
	if env.SMTPHost == "" {
		return NopNotifier{}
	}
	return NewSMTPNotifier(env)
}
