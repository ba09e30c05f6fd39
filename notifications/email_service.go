package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	config "github.com/anjiri1684/assignment_bidding/configs"
	log "github.com/sirupsen/logrus"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

type BrevoService struct {
	APIKey      string
	SenderEmail string
	SenderName  string

	endpoint string
	client   *http.Client
}

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

// NewBrevoService returns nil when any credential is missing; a nil service
// skips every send.
func NewBrevoService(apiKey, senderEmail, senderName string) *BrevoService {
	if apiKey == "" || senderEmail == "" || senderName == "" {
		log.Warn("⚠️ Email service not configured. Missing API Key, Sender Email, or Sender Name.")
		return nil
	}
	log.WithField("sender", senderEmail).Info("✅ Email service initialized successfully.")
	return &BrevoService{
		APIKey:      apiKey,
		SenderEmail: senderEmail,
		SenderName:  senderName,
		endpoint:    brevoEndpoint,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

func InitEmailService() *BrevoService {
	return NewBrevoService(
		config.Config("BREVO_API_KEY"),
		config.Config("EMAIL_SENDER"),
		config.Config("EMAIL_SENDER_NAME"),
	)
}

func (s *BrevoService) Send(ctx context.Context, toName, toEmail, subject, htmlContent string) error {
	at := strings.Index(toEmail, "@")
	if at <= 0 {
		return fmt.Errorf("invalid recipient email: %s", toEmail)
	}

	recipientName := toName
	if recipientName == "" {
		recipientName = toEmail[:at]
	}

	body, err := json.Marshal(brevoPayload{
		Sender:      map[string]string{"name": s.SenderName, "email": s.SenderEmail},
		To:          []map[string]string{{"email": toEmail, "name": recipientName}},
		Subject:     subject,
		HTMLContent: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.APIKey)
	req.Header.Set("content-type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("brevo returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// SendEmail is the best-effort form of Send: failures are logged and dropped.
func (s *BrevoService) SendEmail(toName, toEmail, subject, htmlContent string) {
	if s == nil {
		log.WithField("to", toEmail).Debug("Email client not initialized, skipping email send.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := s.Send(ctx, toName, toEmail, subject, htmlContent); err != nil {
		log.WithError(err).WithField("to", toEmail).Error("🔥 Failed to send email")
		return
	}
	log.WithField("to", toEmail).Info("✅ Email sent successfully")
}

type sender interface {
	SendEmail(toName, toEmail, subject, htmlContent string)
}

// Background hands every email to its own goroutine so callers never wait on
// the provider.
type Background struct {
	Sender sender
}

func (b Background) SendEmail(toName, toEmail, subject, htmlContent string) {
	go b.Sender.SendEmail(toName, toEmail, subject, htmlContent)
}
