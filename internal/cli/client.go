package cli

// client.go is the HTTP client for the InkCrypt server API

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/radwayousryyy/InkCrypt/internal/api"
)

// Client calls the InkCrypt server
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// ServerError is returned when the server responds with an error status
type ServerError struct {
	StatusCode int

	// Response is nil if the body was not an ErrorResponse
	Response *api.ErrorResponse
}

func (e *ServerError) Error() string {
	if e.Response != nil && len(e.Response.Errors) > 0 {
		detail := e.Response.Errors[0]
		return fmt.Sprintf("server returned %d (%s): %s", e.StatusCode, detail.ErrorCodeText, detail.ErrorCodeMessage)
	}
	return fmt.Sprintf("server returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// SignResult is the outcome of a sign request
type SignResult struct {
	Identifier string
	Filename   string
	Document   []byte
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", baseURL)
	}

	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// Sign uploads the PDF at path and returns the signed copy
func (c *Client) Sign(ctx context.Context, path string) (SignResult, error) {
	resp, err := c.postFile(ctx, "/sign", path)
	if err != nil {
		return SignResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return SignResult{}, readServerError(resp)
	}

	document, err := io.ReadAll(resp.Body)
	if err != nil {
		return SignResult{}, fmt.Errorf("failed to read signed document: %w", err)
	}

	return SignResult{
		Identifier: resp.Header.Get(api.IdentifierHeader),
		Filename:   "signed_" + filepath.Base(path),
		Document:   document,
	}, nil
}

// Verify uploads the PDF at path and returns the verdict
func (c *Client) Verify(ctx context.Context, path string) (api.VerifyResponse, error) {
	var verdict api.VerifyResponse

	resp, err := c.postFile(ctx, "/verify", path)
	if err != nil {
		return verdict, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return verdict, readServerError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return verdict, fmt.Errorf("failed to decode verify response: %w", err)
	}
	return verdict, nil
}

// Revoke revokes the document with the given identifier
func (c *Client) Revoke(ctx context.Context, identifier string) (api.RevokeResponse, error) {
	var result api.RevokeResponse

	form := url.Values{"uuid": {identifier}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/revoke"), strings.NewReader(form.Encode()))
	if err != nil {
		return result, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.do(req)
	if err != nil {
		return result, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return result, readServerError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return result, fmt.Errorf("failed to decode revoke response: %w", err)
	}
	return result, nil
}

func (c *Client) postFile(ctx context.Context, path, filename string) (*http.Response, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.do(req)
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", req.URL, err)
	}

	c.logger.Debug("server response",
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.Int("status", resp.StatusCode),
		slog.String("request_id", resp.Header.Get("X-Request-Id")),
		slog.Duration("duration", time.Since(start)),
	)
	return resp, nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.JoinPath(path).String()
}

func readServerError(resp *http.Response) error {
	serverErr := &ServerError{StatusCode: resp.StatusCode}

	var errResp api.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.StatusCode != 0 {
		serverErr.Response = &errResp
	}
	return serverErr
}
