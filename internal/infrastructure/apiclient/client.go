package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/travelreviews/webclient/internal/core/domain"
	"github.com/travelreviews/webclient/internal/core/ports"
	"github.com/travelreviews/webclient/internal/pkg/metrics"
)

const (
	DefaultBaseURL = "http://localhost:5000/api/v1"
	DefaultTimeout = 10 * time.Second

	maxErrorBody = 1 << 16
)

// HTTPRequester is the minimum HTTP client contract the adapter needs.
type HTTPRequester interface {
	Do(req *http.Request) (*http.Response, error)
}

// UnauthorizedHandler is notified after a 401 cleared the stored credential.
type UnauthorizedHandler interface {
	HandleUnauthorized(ctx context.Context)
}

// Config configures the client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient HTTPRequester
}

// Client is the single outbound gateway to the REST API. It attaches the
// stored bearer token to every request and handles 401 responses centrally.
type Client struct {
	baseURL   string
	userAgent string
	http      HTTPRequester
	tokens    ports.TokenStore
	log       zerolog.Logger

	mu           sync.RWMutex
	unauthorized []UnauthorizedHandler
}

func New(cfg Config, tokens ports.TokenStore, log zerolog.Logger) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "travelreviews-webclient"
	}

	return &Client{
		baseURL:   baseURL,
		userAgent: ua,
		http:      httpClient,
		tokens:    tokens,
		log:       log,
	}
}

// BaseURL returns the API root every path is resolved against.
func (c *Client) BaseURL() string { return c.baseURL }

// OnUnauthorized registers h to run after every 401 response.
func (c *Client) OnUnauthorized(h UnauthorizedHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unauthorized = append(c.unauthorized, h)
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

// Do sends one request and decodes a 2xx body into out.
//
// Errors:
//   - no response (network, timeout, cancellation): wraps domain.ErrTransport
//   - 401: *domain.APIError matching domain.ErrUnauthorized; when the token
//     the request carried is still the stored one, the credential is cleared
//     and unauthorized handlers run before Do returns
//   - any other non-2xx: *domain.APIError with the server's code and message
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	start := time.Now()
	code := 0
	defer func() {
		metrics.APIRequestsTotal.WithLabelValues(method, metrics.StatusCode(code)).Inc()
		metrics.APIRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}()

	req, sent, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return fmt.Errorf("%w: %s %s: %v", domain.ErrTransport, method, path, err)
	}
	defer resp.Body.Close()
	code = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeError(resp)
		if resp.StatusCode == http.StatusUnauthorized && !isCredentialRequest(ctx) {
			c.expire(ctx, sent)
		}
		c.log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("code", apiErr.Code).
			Msg("api error")
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", domain.ErrTransport, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// newRequest builds the request and returns the bearer token it carries, or
// "" when none was attached.
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	token, ok := c.tokens.Token(ctx)
	if ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, token, nil
}

// expire clears the stored credential, then notifies handlers synchronously.
// A 401 answering a token that has since been replaced or removed belongs to
// an older session and is ignored.
func (c *Client) expire(ctx context.Context, sent string) {
	if current, _ := c.tokens.Token(ctx); current != sent {
		c.log.Debug().Msg("ignoring 401 for a superseded token")
		return
	}
	metrics.UnauthorizedTotal.Inc()
	if err := c.tokens.Clear(ctx); err != nil {
		c.log.Error().Err(err).Msg("clear credential after 401 failed")
	}

	c.mu.RLock()
	handlers := append([]UnauthorizedHandler(nil), c.unauthorized...)
	c.mu.RUnlock()

	for _, h := range handlers {
		h.HandleUnauthorized(ctx)
	}
}

func decodeError(resp *http.Response) *domain.APIError {
	apiErr := &domain.APIError{Status: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		apiErr.Message = http.StatusText(resp.StatusCode)
		return apiErr
	}

	var env struct {
		Message string           `json:"message"`
		Error   *json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		apiErr.Message = strings.TrimSpace(string(raw))
		return apiErr
	}

	if env.Error != nil {
		var body domain.ErrorBody
		if err := json.Unmarshal(*env.Error, &body); err == nil {
			apiErr.Code = body.Code
			apiErr.Message = body.Message
		} else {
			// {"error": "forbidden"} style payloads.
			var msg string
			if json.Unmarshal(*env.Error, &msg) == nil {
				apiErr.Message = msg
			}
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = env.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

type credentialRequestKey struct{}

// credentialRequest marks ctx as carrying a login or registration call. A 401
// on those means rejected credentials, not an expired session.
func credentialRequest(ctx context.Context) context.Context {
	return context.WithValue(ctx, credentialRequestKey{}, true)
}

func isCredentialRequest(ctx context.Context) bool {
	v, _ := ctx.Value(credentialRequestKey{}).(bool)
	return v
}

// IsUnauthorized reports whether err is an intercepted 401.
func IsUnauthorized(err error) bool {
	return errors.Is(err, domain.ErrUnauthorized)
}
