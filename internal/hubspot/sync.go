package hubspot

import (
	"context"
	"fmt"
	"time"

	"github.com/lynk-ai/lynk-backend/internal/contacts"
	dbtypes "github.com/lynk-ai/lynk-backend/pkg/db/types"
	"github.com/lynk-ai/lynk-backend/pkg/enums"
	pkgerrors "github.com/lynk-ai/lynk-backend/pkg/errors"
	"github.com/lynk-ai/lynk-backend/pkg/metrics"
)

type SyncResult struct {
	Status         string `json:"status"`
	TotalProcessed int    `json:"total_processed"`
	Synced         int    `json:"synced"`
	Skipped        int    `json:"skipped"`
	AlreadyExists  int    `json:"already_exists"`
	Message        string `json:"message"`
}

// SyncContacts drains the CRM contact list into the directory without ever
// overwriting an existing contact. A limit <= 0 means no limit. The limit is
// checked after each page, so the final page can overshoot it. Rows inserted
// before a failure are kept.
func (s *service) SyncContacts(ctx context.Context, limit int) (result *SyncResult, err error) {
	started := time.Now()
	defer func() {
		s.syncMetrics.ObserveRun(time.Since(started), err)
	}()

	ctx = s.logg.WithField(ctx, "sync_limit", limit)
	s.logg.Info(ctx, "hubspot contact sync started")

	res := &SyncResult{Status: "success"}
	after := ""
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		contactPage, err := s.crm.ListContacts(ctx, after, s.pageSize(limit))
		if err != nil {
			s.logg.Error(s.logg.WithField(ctx, "page", page), "hubspot contact page fetch failed; aborting sync", err)
			if pkgerrors.As(err) != nil {
				return nil, err
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch hubspot contacts page")
		}

		for _, profile := range contactPage.Contacts {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			res.TotalProcessed++

			email := contacts.NormalizeEmail(profile.Email)
			if email == "" {
				res.Skipped++
				s.syncMetrics.IncContact(metrics.SyncOutcomeSkipped)
				continue
			}

			inserted, err := s.contacts.InsertIfAbsent(ctx, email, contacts.Fields{
				Name:       profile.FullName(),
				Company:    profile.Company,
				Source:     enums.ContactSourceHubSpotSync,
				ExternalID: profile.ID,
				RawProfile: dbtypes.JSONDocument(profile.Raw),
			})
			if err != nil {
				s.logg.Error(s.logg.WithEmail(ctx, email), "failed to insert synced contact; aborting sync", err)
				return nil, err
			}
			if inserted {
				res.Synced++
				s.syncMetrics.IncContact(metrics.SyncOutcomeSynced)
			} else {
				res.AlreadyExists++
				s.syncMetrics.IncContact(metrics.SyncOutcomeAlreadyExists)
			}
		}

		if contactPage.NextAfter == "" || (limit > 0 && res.TotalProcessed >= limit) {
			break
		}
		if contactPage.NextAfter == after {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"page": page, "after": after}), "hubspot returned the same paging cursor; aborting sync")
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "hubspot contacts paging cursor did not advance")
		}
		after = contactPage.NextAfter
	}

	res.Message = fmt.Sprintf("Successfully synced %d contacts from HubSpot", res.Synced)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"total_processed": res.TotalProcessed,
		"synced":          res.Synced,
		"skipped":         res.Skipped,
		"already_exists":  res.AlreadyExists,
	}), "hubspot contact sync finished")
	return res, nil
}

func (s *service) pageSize(limit int) int {
	if limit > 0 && limit < s.syncPageSize {
		return limit
	}
	return s.syncPageSize
}
