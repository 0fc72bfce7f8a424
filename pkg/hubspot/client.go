package hubspot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/lynk-ai/lynk-backend/pkg/errors"
)

const (
	defaultBaseURL        = "https://api.hubapi.com"
	contactsPath          = "/crm/v3/objects/contacts"
	contactProperties     = "email,firstname,lastname,company"
	defaultPageSize       = 100
	maxPageSize           = 100
	responseBodyReadLimit = 1024
)

var errAccessTokenRequired = errors.New("hubspot access token is required")

// Client reads contact profiles from the HubSpot CRM v3 API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the API host, e.g. for a sandbox or a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = strings.TrimRight(trimmed, "/")
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient builds a HubSpot client authenticated with a private-app access token.
func NewClient(accessToken string, opts ...Option) (*Client, error) {
	token := strings.TrimSpace(accessToken)
	if token == "" {
		return nil, errAccessTokenRequired
	}

	client := &Client{
		accessToken: token,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Contact is the subset of a HubSpot contact the service consumes.
type Contact struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Company   string
	// Raw is the untouched API object, persisted alongside the contact.
	Raw json.RawMessage
}

// FullName joins first and last name, trimming the gap when either is missing.
func (c Contact) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}

// ContactPage is one page of ListContacts; NextAfter is empty on the last page.
type ContactPage struct {
	Contacts  []Contact
	NextAfter string
}

type apiContact struct {
	ID         string `json:"id"`
	Properties struct {
		Email     *string `json:"email"`
		FirstName *string `json:"firstname"`
		LastName  *string `json:"lastname"`
		Company   *string `json:"company"`
	} `json:"properties"`
}

func (a apiContact) toContact(raw json.RawMessage) Contact {
	return Contact{
		ID:        a.ID,
		Email:     deref(a.Properties.Email),
		FirstName: deref(a.Properties.FirstName),
		LastName:  deref(a.Properties.LastName),
		Company:   deref(a.Properties.Company),
		Raw:       raw,
	}
}

// GetContact fetches a single contact by its HubSpot object id.
func (c *Client) GetContact(ctx context.Context, id string) (*Contact, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "hubspot client not configured")
	}
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contact id is required")
	}

	query := url.Values{}
	query.Set("properties", contactProperties)
	endpoint := fmt.Sprintf("%s%s/%s?%s", c.baseURL, contactsPath, url.PathEscape(trimmed), query.Encode())

	body, err := c.get(ctx, endpoint, "get contact")
	if err != nil {
		return nil, err
	}

	var payload apiContact
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode contact response")
	}
	contact := payload.toContact(json.RawMessage(body))
	return &contact, nil
}

// ListContacts returns one page of contacts starting at the after cursor.
func (c *Client) ListContacts(ctx context.Context, after string, limit int) (*ContactPage, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "hubspot client not configured")
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("properties", contactProperties)
	if after != "" {
		query.Set("after", after)
	}
	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, contactsPath, query.Encode())

	body, err := c.get(ctx, endpoint, "list contacts")
	if err != nil {
		return nil, err
	}

	var payload struct {
		Results []json.RawMessage `json:"results"`
		Paging  *struct {
			Next *struct {
				After string `json:"after"`
			} `json:"next"`
		} `json:"paging"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode contacts page")
	}

	page := &ContactPage{Contacts: make([]Contact, 0, len(payload.Results))}
	for _, raw := range payload.Results {
		var item apiContact
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode contact in page")
		}
		page.Contacts = append(page.Contacts, item.toContact(raw))
	}
	if payload.Paging != nil && payload.Paging.Next != nil {
		page.NextAfter = payload.Paging.Next.After
	}
	return page, nil
}

func (c *Client) get(ctx context.Context, endpoint, op string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build "+op+" request")
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute "+op+" request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "hubspot contact not found")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), op+" request failed")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read "+op+" response")
	}
	return body, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
