package resend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"golang.org/x/time/rate"

	"github.com/wonny/signalboard/internal/email"
	"github.com/wonny/signalboard/pkg/config"
	"github.com/wonny/signalboard/pkg/httputil"
	"github.com/wonny/signalboard/pkg/logger"
)

// Client sends transactional email through the Resend HTTP API
// ⭐ SSOT: 이메일 발송 API 호출은 이 클라이언트에서만
type Client struct {
	http    *httputil.Client
	logger  *logger.Logger
	apiKey  string
	from    string
	baseURL string
}

var _ email.Mailer = (*Client)(nil)

// NewClient creates a Resend client throttled to cfg.Email.RatePerSec
func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	burst := int(cfg.Email.RatePerSec)
	if burst < 1 {
		burst = 1
	}

	httpClient := httputil.New(log).
		WithLimiter(rate.NewLimiter(rate.Limit(cfg.Email.RatePerSec), burst)).
		WithHeader("Authorization", "Bearer "+cfg.Email.APIKey)

	return &Client{
		http:    httpClient,
		logger:  log.WithComponent("resend"),
		apiKey:  cfg.Email.APIKey,
		from:    cfg.Email.From,
		baseURL: cfg.Email.BaseURL,
	}
}

// sendRequest is the POST /emails body
type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
	Tags    []tag    `json:"tags,omitempty"`
}

type tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type sendResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Send delivers one message; a client without API key returns email.ErrDisabled
func (c *Client) Send(ctx context.Context, msg email.Message) error {
	if c.apiKey == "" {
		return email.ErrDisabled
	}

	req := sendRequest{
		From:    c.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	}
	for name, value := range msg.Tags {
		req.Tags = append(req.Tags, tag{Name: name, Value: value})
	}
	sort.Slice(req.Tags, func(i, j int) bool { return req.Tags[i].Name < req.Tags[j].Name })

	resp, err := c.http.PostJSON(ctx, c.baseURL+"/emails", req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("read email response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorResponse
		_ = json.Unmarshal(body, &apiErr)
		return &APIError{StatusCode: resp.StatusCode, Name: apiErr.Name, Message: apiErr.Message}
	}

	var out sendResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("decode email response: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"id":      out.ID,
		"subject": msg.Subject,
	}).Debug("Email sent")

	return nil
}

// APIError is a non-2xx answer from the provider
type APIError struct {
	StatusCode int
	Name       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("resend: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("resend: %d %s: %s", e.StatusCode, e.Name, e.Message)
}
