// Package control implements the control-server client: command fetch and
// per-command status report.
package control

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"hotspotd/internal/domain"
)

const defaultTimeout = 15 * time.Second

// Client talks to the control server over HTTP. The server is authoritative
// for queue state; the client holds nothing between calls.
type Client struct {
	baseURL  string
	deviceID string
	http     *http.Client

	username string
	password string
	tokens   oauth2.TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithBasicAuth sends the given credential pair on every request.
func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithClientCredentials authenticates through an OAuth2 client-credentials
// token source instead of basic auth.
func WithClientCredentials(tokenURL, clientID, clientSecret string) Option {
	return func(c *Client) {
		cfg := &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
		}
		c.tokens = cfg.TokenSource(context.Background())
	}
}

// WithTimeout bounds each HTTP exchange.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// New creates a control-server client for the given device id.
func New(baseURL, deviceID string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		deviceID: deviceID,
		http:     &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type commandRecord struct {
	ID   int64 `json:"id"`
	Data struct {
		Type   string            `json:"type"`
		Params map[string]string `json:"params"`
	} `json:"data"`
}

type reportRequest struct {
	DeviceID  string               `json:"device_id"`
	CommandID int64                `json:"command_id"`
	Status    domain.CommandResult `json:"status"`
}

// Fetch retrieves the pending command batch for this device. A response body
// that is not a JSON list fails with ErrMalformedBatch; callers skip such a
// batch whole.
func (c *Client) Fetch(ctx context.Context) ([]domain.Command, error) {
	u := c.baseURL + "/get_commands/?device_id=" + url.QueryEscape(c.deviceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("control server fetch status=%s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var records []commandRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedBatch, err)
	}

	commands := make([]domain.Command, 0, len(records))
	for _, r := range records {
		commands = append(commands, domain.Command{ID: r.ID, Type: r.Data.Type, Params: r.Data.Params})
	}
	return commands, nil
}

// Report posts one command's result back, keyed by command id.
func (c *Client) Report(ctx context.Context, commandID int64, result domain.CommandResult) error {
	b, err := json.Marshal(reportRequest{
		DeviceID:  c.deviceID,
		CommandID: commandID,
		Status:    result,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/report_status/", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("control server report status=%s", resp.Status)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err == nil {
			tok.SetAuthHeader(req)
			return
		}
		slog.Warn("token source failed, request sent unauthenticated", "err", err)
		return
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
}
