package emailvalidation

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
	"time"

	pkgerrors "github.com/lynk-ai/lynk-backend/pkg/errors"
)

const (
	defaultBaseURL        = "https://emailvalidation.abstractapi.com/v1"
	responseBodyReadLimit = 1024
)

var errAPIKeyRequired = errors.New("email validation api key is required")

// Client checks address syntax through the AbstractAPI email validation endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = strings.TrimRight(trimmed, "/")
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

func NewClient(apiKey string, opts ...Option) (*Client, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return nil, errAPIKeyRequired
	}
	client := &Client{
		apiKey:     key,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// flag decodes the provider's boolean fields, which arrive either bare or as {"value": bool}.
type flag struct {
	Value bool
}

func (f *flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		f.Value = false
		return nil
	}
	if len(data) > 0 && data[0] == '{' {
		var wrapped struct {
			Value *bool `json:"value"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return err
		}
		f.Value = wrapped.Value != nil && *wrapped.Value
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

// IsValidFormat reports whether the provider considers the address syntactically valid.
// Transport failures and non-2xx responses return a CodeDependency error.
func (c *Client) IsValidFormat(ctx context.Context, email string) (bool, error) {
	if c == nil {
		return false, pkgerrors.New(pkgerrors.CodeDependency, "email validation client not configured")
	}

	query := url.Values{}
	query.Set("api_key", c.apiKey)
	query.Set("email", strings.TrimSpace(email))
	endpoint := fmt.Sprintf("%s/?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build validation request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute validation request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "validation request failed")
	}

	var payload struct {
		IsValidFormat flag `json:"is_valid_format"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode validation response")
	}
	return payload.IsValidFormat.Value, nil
}
