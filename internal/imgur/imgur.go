// Package imgur uploads images to the Imgur API.
package imgur

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ngoledger/internal/infra"
)

const (
	DefaultBaseURL = "https://api.imgur.com/3"
	uploadTitle    = "NGO Upload"
	uploadDesc     = "Uploaded via NGO Dashboard"
)

// ErrMissingClientID is returned when no client id is configured.
var ErrMissingClientID = errors.New("imgur: client id is required")

type Options struct {
	ClientID       string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

type Client struct {
	clientID   string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.ClientID) == "" {
		return nil, ErrMissingClientID
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Client{clientID: opts.ClientID, baseURL: baseURL, httpClient: httpClient, logger: logger}, nil
}

// UploadError wraps every upload failure.
type UploadError struct {
	Reason string
	Err    error
}

func (e *UploadError) Error() string {
	return "Image upload failed: " + e.Reason
}

func (e *UploadError) Unwrap() error { return e.Err }

type uploadResponse struct {
	Data struct {
		Link  string `json:"link"`
		Error any    `json:"error"`
	} `json:"data"`
	Success bool `json:"success"`
	Status  int  `json:"status"`
}

// Upload posts data as a base64 image and returns its https link.
func (c *Client) Upload(ctx context.Context, name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", &UploadError{Reason: "empty image"}
	}
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := [][2]string{
		{"image", base64.StdEncoding.EncodeToString(data)},
		{"type", "base64"},
		{"title", uploadTitle},
		{"description", uploadDesc},
	}
	if name != "" {
		fields = append(fields, [2]string{"name", name})
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return "", &UploadError{Reason: "encode form", Err: err}
		}
	}
	if err := mw.Close(); err != nil {
		return "", &UploadError{Reason: "encode form", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/image", &body)
	if err != nil {
		return "", &UploadError{Reason: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Client-ID "+c.clientID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &UploadError{Reason: err.Error(), Err: err}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &UploadError{Reason: err.Error(), Err: err}
	}

	var out uploadResponse
	decodeErr := json.Unmarshal(raw, &out)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reason := "Failed to upload image"
		if msg := errorText(out.Data.Error); decodeErr == nil && msg != "" {
			reason = msg
		}
		c.logger.Warn().Int("status", resp.StatusCode).Str("reason", reason).Msg("imgur: upload rejected")
		return "", &UploadError{Reason: reason}
	}
	if decodeErr != nil {
		return "", &UploadError{Reason: "decode response", Err: decodeErr}
	}
	link, err := url.Parse(out.Data.Link)
	if err != nil || link.Scheme != "https" || link.Host == "" {
		return "", &UploadError{Reason: fmt.Sprintf("unexpected link %q", out.Data.Link)}
	}
	c.logger.Debug().Str("link", out.Data.Link).Msg("imgur: uploaded")
	return out.Data.Link, nil
}

// errorText reads data.error, which Imgur sends as a string or an object
// with a message field.
func errorText(v any) string {
	switch e := v.(type) {
	case string:
		return e
	case map[string]any:
		if msg, ok := e["message"].(string); ok {
			return msg
		}
	}
	return ""
}
