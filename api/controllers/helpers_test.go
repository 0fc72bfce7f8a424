package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/lynk-ai/lynk-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.Nop()
}

func withRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.Unmarshal(resp.Body.Bytes(), dest); err != nil {
		t.Fatalf("decode response %q: %v", resp.Body.String(), err)
	}
}
