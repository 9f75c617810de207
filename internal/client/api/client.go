// Package api is the HTTP client of the store catalog and legacy inventory API.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/atinyakov/GophStore/internal/models"
	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

// NewHTTPClient returns an http.Client for the API. When caPath is set the
// server certificate must chain to the CA bundle found there.
func NewHTTPClient(caPath string) (*http.Client, error) {
	if caPath == "" {
		return &http.Client{Timeout: requestTimeout}, nil
	}
	caCert, err := os.ReadFile(caPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA cert: %w", err)
	}
	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(caCert) {
		return nil, errors.New("failed to parse CA cert")
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			RootCAs:    caPool,
			MinVersion: tls.VersionTLS12,
		},
	}
	return &http.Client{Transport: transport, Timeout: requestTimeout}, nil
}

// StatusError is a non-2xx answer from the server. It unwraps to the
// models sentinel matching its status code.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Code)
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusUnauthorized:
		return models.ErrInvalidCredentials
	case http.StatusForbidden:
		return models.ErrForbidden
	case http.StatusNotFound:
		return models.ErrNotFound
	}
	return nil
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field"`
}

// Client talks to one API server.
type Client struct {
	baseURL string
	http    *http.Client

	// Log receives one debug entry per request. Nil disables it.
	Log *zap.Logger
}

// New creates a Client for baseURL. A nil hc uses NewHTTPClient("").
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc, _ = NewHTTPClient("")
	}
	return &Client{baseURL: baseURL, http: hc}
}

func (c *Client) endpoint(segments ...string) string {
	u := c.baseURL
	for _, s := range segments {
		u += "/" + url.PathEscape(s)
	}
	return u
}

func (c *Client) do(req *http.Request, token string, out any) error {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if c.Log != nil {
		c.Log.Debug("api request",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
			zap.Duration("duration", time.Since(start)),
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		body.Error = string(bytes.TrimSpace(data))
	}
	if resp.StatusCode == http.StatusBadRequest {
		return models.NewValidationError(body.Field, body.Error)
	}
	return &StatusError{Code: resp.StatusCode, Message: body.Error}
}

func (c *Client) getJSON(ctx context.Context, out any, segments ...string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(segments...), nil)
	if err != nil {
		return err
	}
	return c.do(req, "", out)
}

func (c *Client) sendJSON(ctx context.Context, method string, in, out any, segments ...string) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(segments...), bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, "", out)
}

// Health is the body of GET /api/health.
type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Database  string    `json:"database"`
	Reachable bool      `json:"reachable"`
}

// Health fetches the server status.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.getJSON(ctx, &h, "api", "health"); err != nil {
		return nil, err
	}
	return &h, nil
}

// Stores lists the stores.
func (c *Client) Stores(ctx context.Context) ([]models.Store, error) {
	var stores []models.Store
	if err := c.getJSON(ctx, &stores, "api", "stores"); err != nil {
		return nil, err
	}
	return stores, nil
}

// Authenticate logs a store in and returns its session token. A rejected
// login unwraps to models.ErrInvalidCredentials.
func (c *Client) Authenticate(ctx context.Context, storeID, password string) (*models.Store, string, error) {
	in := struct {
		StoreID  string `json:"storeId"`
		Password string `json:"password"`
	}{storeID, password}
	var out struct {
		Store *models.Store `json:"store"`
		Token string        `json:"token"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, in, &out, "api", "stores", "auth"); err != nil {
		return nil, "", err
	}
	return out.Store, out.Token, nil
}
