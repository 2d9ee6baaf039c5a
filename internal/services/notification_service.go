// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/propshare/propshare-backend/internal/config"
	"github.com/propshare/propshare-backend/internal/models"
)

// NotificationService sends transactional email. It runs outside the
// ledger: notifications fire after a ledger operation has committed
// and a failure to deliver never affects ledger state.
type NotificationService struct {
	db  *gorm.DB
	cfg *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, cfg *config.Config) *NotificationService {
	return &NotificationService{
		db:  db,
		cfg: cfg,
	}
}

func (s *NotificationService) SendWelcomeEmail(user *models.User) error {
	tmpl := s.getEmailTemplate("welcome")

	data := map[string]interface{}{
		"Username":     user.Username,
		"PlatformName": "PropShare",
		"PortalURL":    s.cfg.Frontend.BaseURL,
	}
	return s.sendEmail(user.Email, tmpl, data)
}

// NotifyRevenueDistributed emails every holder of the property that a
// new distribution is open to claim.
func (s *NotificationService) NotifyRevenueDistributed(property *models.Property, distribution *models.Distribution, holders []models.Holding) {
	tmpl := s.getEmailTemplate("revenue_distributed")

	for _, holding := range holders {
		var investor models.User
		if err := s.db.First(&investor, holding.InvestorID).Error; err != nil {
			logrus.WithError(err).WithField("investor_id", holding.InvestorID).
				Warn("Skipping distribution notice, investor not found")
			continue
		}

		data := map[string]interface{}{
			"Username":       investor.Username,
			"PropertyName":   property.Name,
			"DistributionID": distribution.Seq,
			"ClaimURL": fmt.Sprintf("%s/properties/%d/distributions/%d",
				s.cfg.Frontend.BaseURL, property.ID, distribution.Seq),
		}
		if err := s.sendEmail(investor.Email, tmpl, data); err != nil {
			logrus.WithError(err).WithField("email", investor.Email).
				Warn("Failed to send distribution notice")
		}
	}
}

func (s *NotificationService) sendEmail(to string, tmpl EmailTemplate, data map[string]interface{}) error {
	if s.cfg.Email.SMTPUsername == "" {
		// Email not configured; log instead of failing.
		logrus.WithFields(logrus.Fields{"to": to, "subject": tmpl.Subject}).
			Info("Email delivery skipped, SMTP not configured")
		return nil
	}

	t, err := template.New("email").Parse(tmpl.Body)
	if err != nil {
		return fmt.Errorf("failed to parse email template: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.cfg.Email.FromName, s.cfg.Email.FromEmail, to, tmpl.Subject, body.String())

	addr := fmt.Sprintf("%s:%s", s.cfg.Email.SMTPHost, s.cfg.Email.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.Email.SMTPUsername, s.cfg.Email.SMTPPassword, s.cfg.Email.SMTPHost)

	if err := smtp.SendMail(addr, auth, s.cfg.Email.FromEmail, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *NotificationService) getEmailTemplate(name string) EmailTemplate {
	switch name {
	case "welcome":
		return EmailTemplate{
			Subject: "Welcome to PropShare",
			Body: `<h2>Welcome, {{.Username}}!</h2>
<p>Your {{.PlatformName}} investor account is ready.</p>
<p><a href="{{.PortalURL}}">Browse open properties</a></p>`,
		}
	case "revenue_distributed":
		return EmailTemplate{
			Subject: "Revenue available to claim",
			Body: `<h2>Hi {{.Username}},</h2>
<p>A new revenue distribution (#{{.DistributionID}}) is open for
<strong>{{.PropertyName}}</strong>.</p>
<p><a href="{{.ClaimURL}}">Claim your share</a></p>`,
		}
	default:
		return EmailTemplate{
			Subject: "PropShare notification",
			Body:    `<p>{{.Message}}</p>`,
		}
	}
}
