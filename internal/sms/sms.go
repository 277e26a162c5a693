package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/taskport/taskport-api/internal/config"
)

const vonageSMSURL = "https://rest.nexmo.com/sms/json"

// Sender delivers SMS messages. Implemented by Client over the Vonage REST
// API; tests substitute their own.
type Sender interface {
	Send(ctx context.Context, to, text string) error
}

// Client sends SMS through the Vonage REST API.
type Client struct {
	config config.SMSConfig
	client *http.Client
	logger *zerolog.Logger
	// baseURL overrides the API endpoint in tests.
	baseURL string
}

// NewClient creates a Vonage-backed SMS client.
func NewClient(cfg config.SMSConfig, logger *zerolog.Logger) *Client {
	return &Client{
		config:  cfg,
		client:  &http.Client{},
		logger:  logger,
		baseURL: vonageSMSURL,
	}
}

// Send submits one message and returns an error unless every message part is
// accepted.
func (c *Client) Send(ctx context.Context, to, text string) error {
	form := url.Values{}
	form.Set("api_key", c.config.APIKey)
	form.Set("api_secret", c.config.APISecret)
	form.Set("from", c.config.From)
	form.Set("to", to)
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}

	var result struct {
		Messages []struct {
			Status    string `json:"status"`
			ErrorText string `json:"error-text"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}

	for _, msg := range result.Messages {
		if msg.Status != "0" {
			return fmt.Errorf("sms rejected with status %s: %s", msg.Status, msg.ErrorText)
		}
	}

	return nil
}
