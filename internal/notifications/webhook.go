package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kjannette/coinchat/internal/httputil"
	"github.com/kjannette/coinchat/internal/logging"
)

const DefaultBotName = "CoinChat"

// Sender posts incident reports to a Slack or Discord webhook.
type Sender struct {
	webhookURL string
	botName    string
	client     *resty.Client
	log        *logging.Logger
}

func NewSender(webhookURL, botName string) *Sender {
	return newSender(webhookURL, botName, httputil.RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
		MaxDelay:    5 * time.Second,
	})
}

func newSender(webhookURL, botName string, retry httputil.RetryConfig) *Sender {
	if botName == "" {
		botName = DefaultBotName
	}
	return &Sender{
		webhookURL: webhookURL,
		botName:    botName,
		client: httputil.NewClient(httputil.ClientConfig{
			Timeout: 10 * time.Second,
			Headers: map[string]string{"Content-Type": "application/json"},
			Retry:   retry,
			Tag:     "webhook",
		}),
		log: logging.Component("notify"),
	}
}

// Send logs msg and, when a webhook is configured, delivers it. Delivery
// failures are logged and never returned.
func (s *Sender) Send(msg string) {
	formatted := fmt.Sprintf("[%s] %s", s.botName, msg)
	s.log.Warnf("%s", formatted)

	if s.webhookURL == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := httputil.Do(ctx, s.client, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(s.formatPayload(formatted)).Post(s.webhookURL)
	})
	if err != nil {
		s.log.WithError(err).Errorf("failed to send notification after retries")
		return
	}
	if resp.IsError() {
		s.log.Errorf("webhook rejected notification: HTTP %d", resp.StatusCode())
	}
}

func (s *Sender) formatPayload(msg string) map[string]string {
	if strings.Contains(s.webhookURL, "discord") {
		return map[string]string{
			"content":  msg,
			"username": s.botName,
		}
	}
	return map[string]string{
		"text":     fmt.Sprintf("`%s`", msg),
		"username": s.botName,
	}
}

func (s *Sender) Enabled() bool {
	return s.webhookURL != ""
}
