package utils

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/google/uuid"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	// AppName prefixes every subject line and names the sender
	AppName string
	// BaseURL is the absolute prefix for the links embedded in bodies
	BaseURL string
	// MessageIDHost is the domain used in generated Message-ID headers
	MessageIDHost string
	// LinkExp is the validity of emailed links, in minutes
	LinkExp int
}

// EmailManager performs synchronous, best-effort delivery. There is no
// retry and no queue; callers log a failure and move on, so the
// user-facing flow never reveals whether an address exists.
type EmailManager struct {
	Config *SMTPConfig
}

func NewEmailManager(config *SMTPConfig) *EmailManager {
	return &EmailManager{
		Config: config,
	}
}

// send handles the actual SMTP handshake and delivery
func (em *EmailManager) send(toEmail string, subject string, body string) error {
	smtpAddr := fmt.Sprintf("%s:%d", em.Config.Host, em.Config.Port)

	// Constructing headers according to RFC 822 standards
	// Note the use of \r\n (Carriage Return + Line Feed)
	headers := []string{
		fmt.Sprintf("From: %s", em.Config.User),
		fmt.Sprintf("To: %s", toEmail),
		fmt.Sprintf("Subject: [%s] %s", em.Config.AppName, subject),
		fmt.Sprintf("Message-ID: <%s@%s>", uuid.New().String(), em.Config.MessageIDHost),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"", // This empty string creates the necessary blank line between headers and body
		body,
	}

	message := strings.Join(headers, "\r\n")

	auth := smtp.PlainAuth("", em.Config.User, em.Config.Password, em.Config.Host)

	return smtp.SendMail(smtpAddr, auth, em.Config.User, []string{toEmail}, []byte(message))
}

// SendEmailVerification mails the signed link that marks an address as verified
func (em *EmailManager) SendEmailVerification(toEmail string, token string) error {
	link := fmt.Sprintf("%s/verify-email/%s", strings.TrimRight(em.Config.BaseURL, "/"), token)

	body := fmt.Sprintf(
		"Hello,\n\n"+
			"Thank you for signing up for %s! To confirm your email address, open the link below:\n\n"+
			"%s\n\n"+
			"The link is valid for %d minutes. If you did not create this account, please ignore this message.\n\n"+
			"Best regards,\nThe %s Team",
		em.Config.AppName, link, em.Config.LinkExp, em.Config.AppName)

	return em.send(toEmail, "Verify your email address", body)
}

// SendPasswordReset mails the signed link that authorizes a password change
func (em *EmailManager) SendPasswordReset(toEmail string, token string) error {
	link := fmt.Sprintf("%s/reset-password/%s", strings.TrimRight(em.Config.BaseURL, "/"), token)

	body := fmt.Sprintf(
		"Hello,\n\n"+
			"A password reset was requested for your %s account. To choose a new password, open the link below:\n\n"+
			"%s\n\n"+
			"The link is valid for %d minutes. If you did not request this, no action is needed; your password has not changed.\n\n"+
			"Best regards,\nThe %s Team",
		em.Config.AppName, link, em.Config.LinkExp, em.Config.AppName)

	return em.send(toEmail, "Password reset", body)
}
