package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Message is a templated outbound email. The receiving mail API renders the
// template with the given context; this service never touches templates.
type Message struct {
	To       string                 `json:"to"`
	Subject  string                 `json:"subject"`
	Template string                 `json:"template"`
	Context  map[string]interface{} `json:"context"`
}

// Dispatcher sends templated emails. Send blocks on transport; SendAsync is
// fire-and-forget relative to the caller.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) error
	SendAsync(msg Message)
}

// Client talks to the mail-dispatch HTTP API. A circuit breaker sheds load
// when the mail API is down so auth requests never queue behind it.
type Client struct {
	apiURL     string
	fromEmail  string
	fromName   string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.SugaredLogger
	configured bool
}

func NewClient(apiURL, fromEmail, fromName string, logger *zap.SugaredLogger) *Client {
	c := &Client{
		apiURL:     apiURL,
		fromEmail:  fromEmail,
		fromName:   fromName,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
		configured: apiURL != "",
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "mail-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnw("mail circuit state change", "from", from.String(), "to", to.String())
		},
	})
	return c
}

// IsConfigured reports whether the client has a mail API URL.
func (c *Client) IsConfigured() bool {
	return c.configured
}

type sendReq struct {
	From map[string]string `json:"from"`
	Message
}

// Send posts the message to the mail API and waits for the response.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if !c.configured {
		return fmt.Errorf("mail client not configured, email to %s skipped", msg.To)
	}
	if msg.To == "" || msg.Template == "" {
		return errors.New("mail message requires to and template")
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		body, err := json.Marshal(sendReq{
			From:    map[string]string{"email": c.fromEmail, "name": c.fromName},
			Message: msg,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal mail request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create mail request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("mail api request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			var errBody map[string]interface{}
			_ = json.NewDecoder(resp.Body).Decode(&errBody)
			return nil, fmt.Errorf("mail api error: status %d, body: %v", resp.StatusCode, errBody)
		}
		return nil, nil
	})
	return err
}

// SendAsync dispatches the message in the background. Failures are logged,
// not retried; the HTTP response never waits for mail transport.
func (c *Client) SendAsync(msg Message) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := c.Send(ctx, msg); err != nil {
			c.logger.Warnw("failed to send email", "to", msg.To, "template", msg.Template, "error", err)
			return
		}
		c.logger.Infow("email dispatched", "to", msg.To, "template", msg.Template)
	}()
}
