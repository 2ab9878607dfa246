package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"punchme/web/config"
)

// Twilio sends text messages through the Twilio Messages REST API.
type Twilio struct {
	cfg    config.Twilio
	client *http.Client
}

func NewTwilio(cfg config.Twilio) *Twilio {
	return &Twilio{cfg: cfg, client: &http.Client{Timeout: 10 * time.Second}}
}

type twilioError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (t *Twilio) SendSMS(ctx context.Context, to string, body string) error {
	if t.cfg.AccountSID == "" || t.cfg.AuthToken == "" || t.cfg.PhoneNumber == "" {
		return fmt.Errorf("missing required Twilio settings: TWILIO_ACCOUNT_SID=%q, TWILIO_PHONE_NUMBER=%q",
			t.cfg.AccountSID, t.cfg.PhoneNumber)
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", t.cfg.PhoneNumber)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json",
		strings.TrimRight(t.cfg.BaseURL, "/"), url.PathEscape(t.cfg.AccountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(t.cfg.AccountSID, t.cfg.AuthToken)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr twilioError
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("twilio error %d: %s", apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("twilio returned status %s", resp.Status)
	}
	return nil
}
