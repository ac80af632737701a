// Package client implements the HTTP transport for the ZeroShare CLI. It
// uploads and retrieves opaque ciphertext packages; server error responses
// are mapped back onto the shared sentinel errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/zeroshare/zeroshare/internal/common"
)

// HTTPClient talks to one ZeroShare server.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient builds a client for the given base URL, e.g.
// "http://127.0.0.1:3000". Timeout bounds each request end to end.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", baseURL)
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type uploadResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Upload posts one ciphertext package as a multipart file field named "file"
// and returns the object id the server assigned.
func (c *HTTPClient) Upload(ctx context.Context, name, mimeType string, data []byte) (string, error) {

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	h.Set("Content-Type", mimeType)

	part, err := w.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("building upload request: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("building upload request: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("building upload request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", responseError(resp)
	}

	var ur uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return "", fmt.Errorf("decoding upload response: %w", err)
	}
	if ur.ID == "" {
		return "", fmt.Errorf("%w: server returned empty object id", common.ErrInternal)
	}

	return ur.ID, nil
}

// Download fetches the package with the given id. On success it returns the
// original file name, the mime type and a reader over the ciphertext; the
// caller owns closing the reader.
func (c *HTTPClient) Download(ctx context.Context, id string) (string, string, io.ReadCloser, error) {

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/download/"+url.PathEscape(id), nil)
	if err != nil {
		return "", "", nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", "", nil, fmt.Errorf("download request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return "", "", nil, responseError(resp)
	}

	name := "download"
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		if fn, ok := params["filename"]; ok && fn != "" {
			name = fn
		}
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return name, mimeType, resp.Body, nil
}

// responseError turns a non-200 response into a sentinel-wrapped error so
// callers can branch with errors.Is.
func responseError(resp *http.Response) error {

	var er errorResponse
	msg := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&er); err == nil && er.Error != "" {
		msg = er.Error
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrNotFound, msg)
	case http.StatusForbidden:
		if strings.Contains(msg, "expired") {
			return fmt.Errorf("%w: %s", common.ErrExpired, msg)
		}
		return fmt.Errorf("%w: %s", common.ErrAlreadyConsumed, msg)
	case http.StatusRequestEntityTooLarge:
		return fmt.Errorf("%w: %s", common.ErrSizeExceeded, msg)
	default:
		return fmt.Errorf("%w: server responded %d: %s", common.ErrInternal, resp.StatusCode, msg)
	}
}
