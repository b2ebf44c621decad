package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

const postmarkURL = "https://api.postmarkapp.com/email"

type Client struct {
	serverToken string
	fromEmail   string
	frontendURL string
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func NewClient(serverToken, fromEmail, frontendURL string, opts ...Option) *Client {
	c := &Client{
		serverToken: serverToken,
		fromEmail:   fromEmail,
		frontendURL: frontendURL,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the server token is set.
func (c *Client) Configured() bool {
	return c.serverToken != ""
}

type postmarkEmail struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

// SendConfirmationEmail sends the account-confirmation code to a new user.
func (c *Client) SendConfirmationEmail(ctx context.Context, name, toEmail, code string) error {
	link := c.frontendURL + "/auth/confirm-account"
	textBody := fmt.Sprintf(
		"Hi %s, you have created your CashTrackr account. You are almost done!\n\nVisit %s and enter the code: %s",
		name, link, code,
	)
	htmlBody := fmt.Sprintf(
		`<p>Hi %s, you have created your CashTrackr account. You are almost done!</p><p>Follow the link below:</p><a href="%s">Confirm account</a><p>Enter the code: <b>%s</b></p>`,
		name, link, code,
	)
	return c.send(ctx, postmarkEmail{
		From:     c.fromEmail,
		To:       toEmail,
		Subject:  "CashTrackr - Confirm your account",
		HtmlBody: htmlBody,
		TextBody: textBody,
	})
}

// SendPasswordResetToken sends the password-reset code.
func (c *Client) SendPasswordResetToken(ctx context.Context, name, toEmail, code string) error {
	textBody := fmt.Sprintf("Hi %s, here is your reset code: %s", name, code)
	htmlBody := fmt.Sprintf(`<p>Hi %s, here is your reset code: <b>%s</b></p>`, name, code)
	return c.send(ctx, postmarkEmail{
		From:     c.fromEmail,
		To:       toEmail,
		Subject:  "CashTrackr - Reset your password",
		HtmlBody: htmlBody,
		TextBody: textBody,
	})
}

// send delivers one message, retrying transient failures up to 2 times.
// Delivery is best-effort: callers log the error and move on.
func (c *Client) send(ctx context.Context, payload postmarkEmail) error {
	if !c.Configured() {
		return fmt.Errorf("email client not configured: missing server token")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, "POST", postmarkURL, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Postmark-Server-Token", c.serverToken)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("send email: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("postmark API error: status %d", resp.StatusCode))
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("postmark API error: status %d", resp.StatusCode)
		}
		return nil
	})
}
