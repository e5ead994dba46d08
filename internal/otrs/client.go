package otrs

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// ClientOptions tunes the HTTP transport of a Client.
type ClientOptions struct {
	Timeout            time.Duration
	MaxRetries         int
	Location           *time.Location
	InsecureSkipVerify bool
	// BaseBackoff is the first retry delay, doubled on each attempt and
	// capped at MaxBackoff.
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	HTTPClient  *http.Client
}

// Client talks to the OTRS generic interface. It is safe for concurrent use.
type Client struct {
	cfg         ConnectionConfig
	httpClient  *http.Client
	loc         *time.Location
	maxRetries  int
	baseBackoff time.Duration
	maxBackoff  time.Duration
	logger      *zap.Logger
}

// NewClient creates a Client for cfg. A nil logger disables logging.
func NewClient(cfg ConnectionConfig, opts ClientOptions, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
		if opts.InsecureSkipVerify {
			httpClient.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
			}
		}
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	base := opts.BaseBackoff
	if base <= 0 {
		base = time.Second
	}
	maxBackoff := opts.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = 30 * time.Second
	}
	retries := opts.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return &Client{
		cfg:         cfg,
		httpClient:  httpClient,
		loc:         loc,
		maxRetries:  retries,
		baseBackoff: base,
		maxBackoff:  maxBackoff,
		logger:      logger,
	}
}

// GetTicket fetches a ticket with all its articles and attachments.
func (c *Client) GetTicket(ctx context.Context, ticketID string) (*Ticket, error) {
	u, err := BuildGetTicketURL(c.cfg, ticketID)
	if err != nil {
		return nil, err
	}
	errContext := "get ticket " + ticketID
	body, err := c.get(ctx, u, errContext)
	if err != nil {
		return nil, err
	}
	tickets, err := ParseTickets(body, c.loc)
	if err != nil {
		return nil, withContext(err, errContext)
	}
	if len(tickets) == 0 {
		return nil, &RemoteError{
			Context:    errContext,
			StatusCode: http.StatusOK,
			Status:     "ticket not found",
			Body:       string(body),
		}
	}
	return &tickets[0], nil
}

// SearchTickets returns the ids of new and open tickets matching filter.
func (c *Client) SearchTickets(ctx context.Context, filter SearchFilter) ([]string, error) {
	u, err := BuildSearchTicketURL(c.cfg, filter)
	if err != nil {
		return nil, err
	}
	body, err := c.get(ctx, u, "search tickets")
	if err != nil {
		return nil, err
	}
	ids, err := ParseTicketIDs(body)
	if err != nil {
		return nil, withContext(err, "search tickets")
	}
	return ids, nil
}

// get issues a GET and returns the body of a successful response. Transport
// errors, 429 and 5xx are retried with exponential backoff.
func (c *Client) get(ctx context.Context, u, errContext string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff(attempt - 1)
			if re, ok := lastErr.(*retryAfterError); ok && re.wait > 0 {
				wait = min(re.wait, c.maxBackoff)
			}
			c.logger.Warn("retrying otrs request",
				zap.String("context", errContext),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		body, err := c.do(ctx, u, errContext)
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !retryable(err) {
			return nil, unwrapRetryAfter(err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, unwrapRetryAfter(lastErr))
}

func (c *Client) do(ctx context.Context, u, errContext string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("otrs request", zap.String("url", RedactURL(u)))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// *url.Error carries the request URL, credentials included.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = RedactURL(u)
		}
		return nil, &transportError{err: fmt.Errorf("%s: %w", errContext, err)}
	}
	defer resp.Body.Close()

	if err := ValidateResponse(resp, errContext); err != nil {
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, &retryAfterError{err: err, wait: retryAfter(resp)}
		}
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &transportError{err: fmt.Errorf("%s: reading response body: %w", errContext, err)}
	}
	return body, nil
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.baseBackoff << uint(attempt)
	if d <= 0 || d > c.maxBackoff {
		d = c.maxBackoff
	}
	return d
}

type transportError struct{ err error }

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

type retryAfterError struct {
	err  error
	wait time.Duration
}

func (e *retryAfterError) Error() string { return e.err.Error() }
func (e *retryAfterError) Unwrap() error { return e.err }

func retryable(err error) bool {
	switch e := err.(type) {
	case *transportError, *retryAfterError:
		return true
	case *RemoteError:
		return e.Temporary()
	}
	return false
}

func unwrapRetryAfter(err error) error {
	if re, ok := err.(*retryAfterError); ok {
		return re.err
	}
	return err
}

// withContext replaces the context of a RemoteError decoded from a body so it
// is not repeated; other errors are wrapped.
func withContext(err error, errContext string) error {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		remoteErr.Context = errContext
		return remoteErr
	}
	return fmt.Errorf("%s: %w", errContext, err)
}

func retryAfter(resp *http.Response) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return 0
}
