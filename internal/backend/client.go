// Package backend is the REST client for the storefront backend API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bihar-bazaar/internal/model"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Credentials is the token holder of one visitor session.
type Credentials interface {
	Tokens() model.Tokens
	UpdateTokens(model.Tokens)
	// Expire is called when the refresh token is rejected.
	Expire()
}

// APIError is a non-2xx backend response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// Client calls the backend API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient creates a client with a traced transport.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}, logger)
}

// NewClientWithHTTP creates a client around an existing http.Client.
func NewClientWithHTTP(baseURL string, hc *http.Client, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		logger:  logger.With().Str("component", "backend-client").Logger(),
	}
}

// do sends a request and decodes a JSON response into out when out is non-nil.
// With creds set, the access token is attached and a 401 is retried once after
// refreshing the tokens. A failed refresh expires the credentials.
func (c *Client) do(ctx context.Context, creds Credentials, method, path string, body, out any) error {
	var tokens model.Tokens
	if creds != nil {
		tokens = creds.Tokens()
	}

	err := c.send(ctx, method, path, tokens.AccessToken, body, out)
	if creds == nil || !IsStatus(err, http.StatusUnauthorized) {
		return err
	}

	c.logger.Debug().Str("method", method).Str("path", path).Msg("access token rejected, refreshing")

	refreshed, refreshErr := c.refresh(ctx, tokens.RefreshToken)
	if refreshErr != nil {
		c.logger.Warn().Err(refreshErr).Msg("token refresh failed, expiring session")
		creds.Expire()
		return model.ErrSessionExpired
	}
	creds.UpdateTokens(refreshed)

	err = c.send(ctx, method, path, refreshed.AccessToken, body, out)
	if IsStatus(err, http.StatusUnauthorized) {
		creds.Expire()
		return model.ErrSessionExpired
	}
	return err
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (model.Tokens, error) {
	if refreshToken == "" {
		return model.Tokens{}, errors.New("no refresh token")
	}

	var tokens model.Tokens
	err := c.send(ctx, http.MethodPost, "/auth/refresh-token", "", map[string]string{"refreshToken": refreshToken}, &tokens)
	if err != nil {
		return model.Tokens{}, err
	}
	if !tokens.Valid() {
		return model.Tokens{}, errors.New("refresh returned no access token")
	}
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = refreshToken
	}
	return tokens, nil
}

func (c *Client) send(ctx context.Context, method, path, accessToken string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("method", method).Str("path", path).Msg("backend request failed")
		return fmt.Errorf("failed to call backend %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("backend request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode backend response: %w", err)
	}
	return nil
}

func errorMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
