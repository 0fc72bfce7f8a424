package emailvalidation

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	pkgerrors "github.com/lynk-ai/lynk-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidFormatResponseShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want bool
	}{
		{name: "wrapped true", body: `{"email":"a@b.co","is_valid_format":{"value":true,"text":"TRUE"}}`, want: true},
		{name: "wrapped false", body: `{"is_valid_format":{"value":false,"text":"FALSE"}}`, want: false},
		{name: "bare true", body: `{"is_valid_format":true}`, want: true},
		{name: "bare false", body: `{"is_valid_format":false}`, want: false},
		{name: "missing field", body: `{"deliverability":"UNKNOWN"}`, want: false},
		{name: "null field", body: `{"is_valid_format":null}`, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
				return response(http.StatusOK, tc.body), nil
			})
			got, err := newTestClient(t, rt).IsValidFormat(context.Background(), "a@b.co")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIsValidFormatSendsKeyAndEmail(t *testing.T) {
	var captured string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		captured = req.URL.String()
		return response(http.StatusOK, `{"is_valid_format":{"value":true}}`), nil
	})

	_, err := newTestClient(t, rt).IsValidFormat(context.Background(), " jane+news@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "http://validator.test/v1/?api_key=key-123&email=jane%2Bnews%40example.com", captured)
}

func TestIsValidFormatDependencyErrors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return response(http.StatusTooManyRequests, `quota exceeded`), nil
		})
		_, err := newTestClient(t, rt).IsValidFormat(context.Background(), "a@b.co")
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency), "got %v", err)
	})
	t.Run("transport", func(t *testing.T) {
		rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection reset")
		})
		_, err := newTestClient(t, rt).IsValidFormat(context.Background(), "a@b.co")
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency), "got %v", err)
	})
	t.Run("malformed body", func(t *testing.T) {
		rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return response(http.StatusOK, `<html>`), nil
		})
		_, err := newTestClient(t, rt).IsValidFormat(context.Background(), "a@b.co")
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency), "got %v", err)
	})
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)
}

func newTestClient(t *testing.T, rt http.RoundTripper) *Client {
	t.Helper()
	client, err := NewClient("key-123", WithBaseURL("http://validator.test/v1"), WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)
	return client
}

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
