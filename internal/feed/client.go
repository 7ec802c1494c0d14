package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-resty/resty/v2"

	"github.com/vytor/memora/internal/logger"
)

// Fetcher downloads a glossary export.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*File, error)
}

// Client fetches glossary exports over HTTP, retrying transient failures.
type Client struct {
	http     *resty.Client
	attempts uint
	delay    time.Duration
}

var _ Fetcher = (*Client)(nil)

func NewClient(timeout time.Duration, attempts uint) *Client {
	if attempts == 0 {
		attempts = 1
	}
	return &Client{
		http:     resty.New().SetTimeout(timeout),
		attempts: attempts,
		delay:    500 * time.Millisecond,
	}
}

// statusError is returned for non-200 responses. Only 5xx and 429 are retried.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("feed status %d: %s", e.status, e.body)
}

func (e *statusError) retryable() bool {
	return e.status >= 500 || e.status == http.StatusTooManyRequests
}

func (c *Client) Fetch(ctx context.Context, rawURL string) (*File, error) {
	log := logger.FromContext(ctx).WithPrefix("feed").WithField("url", rawURL)

	var file *File
	err := retry.Do(
		func() error {
			var err error
			file, err = c.fetchOnce(ctx, log, rawURL)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var se *statusError
			if errors.As(err, &se) {
				return se.retryable()
			}
			var pe *parseError
			return !errors.As(err, &pe)
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("fetch attempt %d failed: %v", n+1, err)
		}),
	)
	if err != nil {
		return nil, err
	}
	log.Info("fetched %d entries", len(file.Entries))
	return file, nil
}

// parseError marks a body that was received but could not be decoded.
type parseError struct{ err error }

func (e *parseError) Error() string { return e.err.Error() }
func (e *parseError) Unwrap() error { return e.err }

func (c *Client) fetchOnce(ctx context.Context, log *logger.Logger, rawURL string) (*File, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &parseError{fmt.Errorf("invalid feed URL %q", rawURL)}
	}

	log.Debug("fetching glossary feed")
	start := time.Now()

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json, text/csv;q=0.9, application/yaml;q=0.8").
		Get(u.String())
	if err != nil {
		return nil, err
	}

	log.Debug("feed response received in %v, status=%d", time.Since(start), resp.StatusCode())

	if resp.StatusCode() != http.StatusOK {
		body := resp.Body()
		if len(body) > 1024 {
			body = body[:1024]
		}
		return nil, &statusError{status: resp.StatusCode(), body: string(body)}
	}

	body := bytes.NewReader(resp.Body())
	var file *File
	switch feedFormat(resp.Header().Get("Content-Type"), u.Path) {
	case "json":
		file, err = readJSON(body)
	case "csv":
		file, err = ReadCSV(body, 0)
	default:
		file, err = ReadYAML(body)
	}
	if err != nil {
		log.Error("failed to decode feed: %v", err)
		return nil, &parseError{err}
	}
	return file, nil
}

// feedFormat picks a decoder from the content type, falling back to the
// URL's extension.
func feedFormat(contentType, urlPath string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		switch {
		case mt == "application/json" || strings.HasSuffix(mt, "+json"):
			return "json"
		case mt == "text/csv" || mt == "text/tab-separated-values":
			return "csv"
		case strings.Contains(mt, "yaml"):
			return "yaml"
		}
	}
	switch strings.ToLower(path.Ext(urlPath)) {
	case ".json":
		return "json"
	case ".csv", ".tsv":
		return "csv"
	}
	return "yaml"
}

func readJSON(r io.Reader) (*File, error) {
	var file File
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	if err := validate(file.Entries); err != nil {
		return nil, err
	}
	return &file, nil
}
