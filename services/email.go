package services

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"court_transfer_app_go/config"
	"court_transfer_app_go/logging"
	"court_transfer_app_go/models"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed emails/*
var emailTemplates embed.FS

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// renderEmail executes the html and text variants of an embedded template
func renderEmail(name string, data interface{}) (string, string, error) {
	htmlTmpl, err := htmltemplate.ParseFS(emailTemplates, "emails/"+name+".html")
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s.html: %w", name, err)
	}
	textTmpl, err := texttemplate.ParseFS(emailTemplates, "emails/"+name+".txt")
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s.txt: %w", name, err)
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := htmlTmpl.Execute(&htmlBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s.html: %w", name, err)
	}
	if err := textTmpl.Execute(&textBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s.txt: %w", name, err)
	}
	return htmlBuf.String(), textBuf.String(), nil
}

// SendEmail sends an email using Resend API
func SendEmail(cfg *config.Config, email *Email) error {
	// In test mode, log the email instead of sending
	if cfg.EmailTestMode {
		logging.L().Info("email not sent (test mode)",
			zap.Strings("to", email.To),
			zap.String("subject", email.Subject),
			zap.String("body", email.TextBody),
		)
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}
	if email.HTMLBody == "" && email.TextBody == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	client := resend.NewClient(cfg.ResendAPIKey)
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}

	logging.L().Info("email sent", zap.String("id", sent.Id), zap.Strings("to", email.To))
	return nil
}

// SendEmailAsync sends an email in a goroutine so handlers never wait on delivery
func SendEmailAsync(cfg *config.Config, email *Email) {
	emailCopy := &Email{
		To:       append([]string{}, email.To...),
		Subject:  email.Subject,
		HTMLBody: email.HTMLBody,
		TextBody: email.TextBody,
	}

	go func(cfg *config.Config, email *Email) {
		if err := SendEmail(cfg, email); err != nil {
			logging.L().Error("async email failed", zap.Strings("to", email.To), zap.Error(err))
		}
	}(cfg, emailCopy)
}

// DecisionEmailData feeds the decision template
type DecisionEmailData struct {
	OwnerName          string
	RequestID          uint
	StatusName         string
	CourthouseName     string
	CascadedRequestIDs []uint
	Link               string
}

// BuildDecisionEmail creates the message sent to a request owner after a review
func BuildDecisionEmail(to string, data DecisionEmailData) (*Email, error) {
	htmlBody, textBody, err := renderEmail("decision", data)
	if err != nil {
		return nil, err
	}
	return &Email{
		To:       []string{to},
		Subject:  fmt.Sprintf("Transfer request #%d %s", data.RequestID, strings.ToLower(data.StatusName)),
		HTMLBody: htmlBody,
		TextBody: textBody,
	}, nil
}

// EmailNotifier sends decision emails through Resend
type EmailNotifier struct {
	cfg  *config.Config
	db   *gorm.DB
	send func(*config.Config, *Email)
}

// NewEmailNotifier returns a notifier delivering asynchronously
func NewEmailNotifier(cfg *config.Config) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, send: SendEmailAsync}
}

// WithDB lets the notifier resolve courthouse names
func (n *EmailNotifier) WithDB(db *gorm.DB) *EmailNotifier {
	n.db = db
	return n
}

// NotifyDecision builds and dispatches the decision email. Owners without an
// address are skipped.
func (n *EmailNotifier) NotifyDecision(owner *models.User, request *models.TransferRequest, cascaded []uint) {
	if owner == nil || request == nil || owner.Email == "" {
		return
	}

	data := DecisionEmailData{
		OwnerName:          owner.FullName(),
		RequestID:          request.ID,
		StatusName:         models.StatusName(request.StatusID),
		CascadedRequestIDs: cascaded,
		Link:               strings.TrimRight(n.cfg.AppURL, "/") + "/transfer-requests",
	}
	if n.db != nil && request.StatusID == models.StatusApproved && owner.ActiveCourthouseID != 0 {
		var courthouse models.Courthouse
		if err := n.db.Select("name").First(&courthouse, owner.ActiveCourthouseID).Error; err == nil {
			data.CourthouseName = courthouse.Name
		}
	}

	email, err := BuildDecisionEmail(owner.Email, data)
	if err != nil {
		logging.L().Error("failed to build decision email", zap.Uint("request_id", request.ID), zap.Error(err))
		return
	}
	n.send(n.cfg, email)
}
