package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/smileynet/campusconnect/internal/record"
)

const (
	// defaultTimeout is used when no timeout option is provided.
	defaultTimeout = 30 * time.Second

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 1 << 20
)

// Verify Client satisfies Poster at compile time.
var _ Poster = (*Client)(nil)

// Client posts records as JSON to a fixed endpoint.
type Client struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
	log        logrus.FieldLogger
	newID      func() string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each submission, connection and body read included.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger for submission attempts.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a Client for endpoint with the given options.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		timeout:  defaultTimeout,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.log = l
	}
	return c
}

// Endpoint returns the URL records are posted to.
func (c *Client) Endpoint() string { return c.endpoint }

// Post sends rec in a single POST. A 2xx answer yields Success; anything else
// yields *Error classified as ServerRejected or NetworkFailure.
func (c *Client) Post(ctx context.Context, rec record.Record) (Success, error) {
	id := c.newID()
	log := c.log.WithField("request_id", id)
	start := time.Now()

	payload, err := json.Marshal(rec)
	if err != nil {
		return Success{}, fmt.Errorf("submit: encoding record: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Success{}, fmt.Errorf("submit: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", id)

	log.WithField("endpoint", c.endpoint).Debug("submitting record")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("submission failed without response")
		return Success{}, &Error{Kind: NetworkFailure, RequestID: id, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	log = log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	})
	if len(body) > maxBodyBytes {
		body = body[:maxBodyBytes]
		log.WithField("limit", maxBodyBytes).Warn("response body truncated")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := rejectMessage(body)
		log.WithField("message", msg).Warn("submission rejected")
		return Success{}, &Error{
			Kind:      ServerRejected,
			RequestID: id,
			Status:    resp.StatusCode,
			Message:   msg,
		}
	}

	if readErr != nil {
		log.WithError(readErr).Warn("reading submission response failed")
		return Success{}, &Error{Kind: NetworkFailure, RequestID: id, Err: readErr}
	}

	log.Info("submission accepted")
	return Success{RequestID: id, Status: resp.StatusCode, Body: body}, nil
}

// rejectMessage extracts the "message" string from a rejection body,
// falling back to DefaultRejectMessage.
func rejectMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Message == "" {
		return DefaultRejectMessage
	}
	return payload.Message
}
