// Package email sends pantry sharing notifications through Postmark.
package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
)

const defaultAPIURL = "https://api.postmarkapp.com/email"

type Client struct {
	serverToken string
	fromEmail   string
	appURL      string
	apiURL      string
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithAPIURL points the client at a different Postmark endpoint.
func WithAPIURL(url string) Option {
	return func(cl *Client) {
		cl.apiURL = url
	}
}

// NewClient returns a Postmark client. appURL is linked from every message.
func NewClient(serverToken, fromEmail, appURL string, opts ...Option) *Client {
	c := &Client{
		serverToken: serverToken,
		fromEmail:   fromEmail,
		appURL:      appURL,
		apiURL:      defaultAPIURL,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the server token and sender are set.
func (c *Client) Configured() bool {
	return c.serverToken != "" && c.fromEmail != ""
}

type postmarkEmail struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

// SendJoinRequest tells a pantry owner that someone asked to join.
func (c *Client) SendJoinRequest(toEmail, requesterName, pantryName string) error {
	subject := fmt.Sprintf("%s wants to join %s", requesterName, pantryName)
	text := fmt.Sprintf("%s asked to join your pantry %q on Mireva.", requesterName, pantryName)
	return c.send(toEmail, subject, text, "review the request")
}

// SendJoinDecision tells a requester whether the owner let them in.
func (c *Client) SendJoinDecision(toEmail, pantryName string, approved bool) error {
	if approved {
		subject := fmt.Sprintf("You've joined %s", pantryName)
		text := fmt.Sprintf("Your request to join %q on Mireva was approved.", pantryName)
		return c.send(toEmail, subject, text, "open the pantry")
	}
	subject := fmt.Sprintf("Your request to join %s", pantryName)
	text := fmt.Sprintf("Your request to join %q on Mireva was declined.", pantryName)
	return c.send(toEmail, subject, text, "")
}

func (c *Client) send(toEmail, subject, text, action string) error {
	if !c.Configured() {
		return fmt.Errorf("email client not configured: missing server token or sender")
	}

	textBody := text
	htmlBody := "<p>" + html.EscapeString(text) + "</p>"
	if action != "" && c.appURL != "" {
		textBody += fmt.Sprintf("\n\nVisit %s to %s.", c.appURL, action)
		htmlBody += fmt.Sprintf(`<p><a href="%s">%s</a></p>`, html.EscapeString(c.appURL), html.EscapeString(action))
	}

	payload := postmarkEmail{
		From:     c.fromEmail,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlBody,
		TextBody: textBody,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("postmark API error: status %d", resp.StatusCode)
	}
	return nil
}
