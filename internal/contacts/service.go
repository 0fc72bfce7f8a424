package contacts

import (
	"context"
	"strings"

	"github.com/lynk-ai/lynk-backend/pkg/db"
	"github.com/lynk-ai/lynk-backend/pkg/db/models"
	dbtypes "github.com/lynk-ai/lynk-backend/pkg/db/types"
	"github.com/lynk-ai/lynk-backend/pkg/enums"
	pkgerrors "github.com/lynk-ai/lynk-backend/pkg/errors"
	"github.com/lynk-ai/lynk-backend/pkg/pagination"
)

// Service is the contact directory: marketing contacts keyed by normalised email.
type Service interface {
	FindByEmail(ctx context.Context, email string) (*models.MarketingContact, error)
	Upsert(ctx context.Context, email string, fields Fields) (*models.MarketingContact, error)
	InsertIfAbsent(ctx context.Context, email string, fields Fields) (bool, error)
	AppendCommunication(ctx context.Context, email string, entry models.MarketingCommunication) error
	List(ctx context.Context, params pagination.Params) ([]models.MarketingContact, error)
}

// Fields are the attributes written by Upsert and InsertIfAbsent.
type Fields struct {
	Name       string
	Company    string
	Source     enums.ContactSource
	ExternalID string
	RawProfile dbtypes.JSONDocument
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "contacts repository required")
	}
	return &service{repo: repo}, nil
}

// NormalizeEmail is the canonical directory key: trimmed and lowercased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindByEmail returns a CodeNotFound error when no contact has the address.
func (s *service) FindByEmail(ctx context.Context, email string) (*models.MarketingContact, error) {
	key := NormalizeEmail(email)
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	contact, err := s.repo.FindByEmail(ctx, key)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contact not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find contact")
	}
	return contact, nil
}

// Upsert creates the contact or replaces its fields; created_at and the log are kept.
func (s *service) Upsert(ctx context.Context, email string, fields Fields) (*models.MarketingContact, error) {
	key := NormalizeEmail(email)
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	contact := fields.toModel(key)
	contact.UpdatedAt = nowUTC()
	if err := s.repo.Upsert(ctx, contact); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert contact")
	}
	return s.FindByEmail(ctx, key)
}

// InsertIfAbsent never modifies an existing record; false means the email was already present.
func (s *service) InsertIfAbsent(ctx context.Context, email string, fields Fields) (bool, error) {
	key := NormalizeEmail(email)
	if key == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	if _, err := s.repo.FindByEmail(ctx, key); err == nil {
		return false, nil
	} else if !db.IsNotFound(err) {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing contact")
	}

	if err := s.repo.Create(ctx, fields.toModel(key)); err != nil {
		if db.IsUniqueViolation(err, "") {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert contact")
	}
	return true, nil
}

func (s *service) AppendCommunication(ctx context.Context, email string, entry models.MarketingCommunication) error {
	contact, err := s.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if entry.SentAt.IsZero() {
		entry.SentAt = nowUTC()
	}
	if err := s.repo.AppendCommunication(ctx, contact.ID, &entry); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "contact not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append communication")
	}
	return nil
}

func (s *service) List(ctx context.Context, params pagination.Params) ([]models.MarketingContact, error) {
	rows, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list contacts")
	}
	return rows, nil
}

func (f Fields) toModel(email string) *models.MarketingContact {
	return &models.MarketingContact{
		Email:      email,
		Name:       strings.TrimSpace(f.Name),
		Company:    strings.TrimSpace(f.Company),
		Source:     f.Source,
		ExternalID: f.ExternalID,
		RawProfile: f.RawProfile,
	}
}
