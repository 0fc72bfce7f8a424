package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/lynk-ai/lynk-backend/pkg/errors"
)

// parseIDParam reads a uuid path parameter; label names it in the 400 message.
func parseIDParam(r *http.Request, key, label string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid "+label+" ID format")
	}
	return id, nil
}
