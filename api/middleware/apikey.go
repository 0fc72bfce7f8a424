package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/lynk-ai/lynk-backend/api/responses"
	pkgerrors "github.com/lynk-ai/lynk-backend/pkg/errors"
	"github.com/lynk-ai/lynk-backend/pkg/logger"
)

const apiKeyHeader = "X-API-Key"

// APIKey rejects requests whose X-API-Key header does not match expected.
// An empty expected key rejects everything.
func APIKey(expected string, logg *logger.Logger) func(http.Handler) http.Handler {
	want := []byte(expected)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get(apiKeyHeader))
			if len(want) == 0 || len(got) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "Invalid API key"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
