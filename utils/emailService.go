package utils

import (
	"coursemaster/config"
	"coursemaster/logger"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// Notifier sends user-facing emails. Implementations must not block the caller.
type Notifier interface {
	SendWelcomeEmail(email, name string)
	SendEnrollmentEmail(email, name, courseTitle string)
	SendPaymentReceiptEmail(email, name, courseTitle string, amount float64, currency, transactionID string)
}

// NewNotifier returns a SendGrid notifier, or a log-only one when no API key is configured
func NewNotifier(cfg *config.Config, log *logger.Logger) Notifier {
	if cfg.SendgridAPIKey == "" {
		log.Warn("SENDGRID_API_KEY not set, emails will only be logged")
		return &logNotifier{log: log}
	}
	return &sendgridNotifier{
		key:  cfg.SendgridAPIKey,
		from: sgmail.NewEmail(cfg.EmailSenderName, cfg.EmailSender),
		log:  log,
	}
}

type sendgridNotifier struct {
	key  string
	from *sgmail.Email
	log  *logger.Logger
}

func (n *sendgridNotifier) SendWelcomeEmail(email, name string) {
	go n.send(email, name, "Welcome to CourseMaster", welcomeBody(name))
}

func (n *sendgridNotifier) SendEnrollmentEmail(email, name, courseTitle string) {
	go n.send(email, name, "Enrollment Confirmed: "+courseTitle, enrollmentBody(name, courseTitle))
}

func (n *sendgridNotifier) SendPaymentReceiptEmail(email, name, courseTitle string, amount float64, currency, transactionID string) {
	go n.send(email, name, "Payment Received: "+courseTitle, receiptBody(name, courseTitle, amount, currency, transactionID))
}

func (n *sendgridNotifier) send(email, name, subject, body string) {
	p := sgmail.NewPersonalization()
	p.Subject = subject
	p.AddTos(sgmail.NewEmail(name, email))

	m := sgmail.NewV3Mail()
	m.SetFrom(n.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/html", getEmailTemplate(subject, body)))

	req := sendgrid.GetRequest(n.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		n.log.Error("sending email failed", "subject", subject, "error", err)
		return
	}
	if res.StatusCode >= http.StatusBadRequest {
		n.log.Error("sending email rejected", "subject", subject, "status", res.StatusCode, "body", res.Body)
		return
	}
	n.log.Debug("email sent", "subject", subject)
}

type logNotifier struct {
	log *logger.Logger
}

func (n *logNotifier) SendWelcomeEmail(email, name string) {
	n.log.Info("email skipped", "kind", "welcome", "to", email)
}

func (n *logNotifier) SendEnrollmentEmail(email, name, courseTitle string) {
	n.log.Info("email skipped", "kind", "enrollment", "to", email, "course", courseTitle)
}

func (n *logNotifier) SendPaymentReceiptEmail(email, name, courseTitle string, amount float64, currency, transactionID string) {
	n.log.Info("email skipped", "kind", "receipt", "to", email, "course", courseTitle, "transaction_id", transactionID)
}

func welcomeBody(name string) string {
	return fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Welcome to <strong>CourseMaster</strong>! Your account has been created.</p>
		<p>Browse the catalog and enroll in your first course whenever you are ready.</p>
	`, name)
}

func enrollmentBody(name, courseTitle string) string {
	return fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You are now enrolled in <strong>%s</strong>.</p>
		<div class="info-box">
			<strong>Next Steps:</strong> Open your dashboard to start the first lesson.
		</div>
	`, name, courseTitle)
}

func receiptBody(name, courseTitle string, amount float64, currency, transactionID string) string {
	return fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>We received your payment for <strong>%s</strong>.</p>
		<div class="info-box">
			<strong>Amount:</strong> %.2f %s<br>
			<strong>Transaction:</strong> %s
		</div>
	`, name, courseTitle, amount, currency, transactionID)
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1E3A5F; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1E3A5F; line-height: 1.6; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #3B82F6; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>COURSEMASTER</h1></div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">&copy; CourseMaster. All rights reserved.</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}
