// Package alerts implements alert listing and acknowledgment procedures.
package alerts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/seedbotics/fieldgate/internal/apperr"
	"github.com/seedbotics/fieldgate/internal/domain/alert"
	"github.com/seedbotics/fieldgate/internal/storage"
	"github.com/seedbotics/fieldgate/pkg/logger"
)

// List limits.
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// Page is the alert list response. Total and Unacknowledged count the
// caller's full alert set regardless of the page limit.
type Page struct {
	Alerts         []alert.Alert `json:"alerts"`
	Total          int           `json:"total"`
	Unacknowledged int           `json:"unacknowledged"`
}

// AckReceipt confirms an acknowledgment.
type AckReceipt struct {
	Success bool   `json:"success"`
	AlertID string `json:"alertId"`
}

// Service handles alert procedures.
type Service struct {
	store storage.AlertStore
	log   *logger.Logger
}

// New constructs an alert service.
func New(store storage.AlertStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("alerts")
	}
	return &Service{store: store, log: log}
}

// List returns the caller's alerts, newest first. A zero limit falls back to
// DefaultLimit; anything else outside [1, MaxLimit] fails validation.
func (s *Service) List(ctx context.Context, userID string, unacknowledgedOnly bool, limit int) (Page, error) {
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 1 || limit > MaxLimit {
		return Page{}, apperr.ValidationField("limit", fmt.Sprintf("limit must be between 1 and %d", MaxLimit))
	}

	all, err := s.store.ListAlertsByUser(ctx, userID, false)
	if err != nil {
		return Page{}, apperr.Internal("list alerts", err)
	}

	unacknowledged := 0
	for _, a := range all {
		if !a.Acknowledged {
			unacknowledged++
		}
	}

	selected := all
	if unacknowledgedOnly {
		selected = make([]alert.Alert, 0, unacknowledged)
		for _, a := range all {
			if !a.Acknowledged {
				selected = append(selected, a)
			}
		}
	}

	// Newest first, then truncate.
	for i, j := 0, len(selected)-1; i < j; i, j = i+1, j-1 {
		selected[i], selected[j] = selected[j], selected[i]
	}
	if len(selected) > limit {
		selected = selected[:limit]
	}

	return Page{Alerts: selected, Total: len(all), Unacknowledged: unacknowledged}, nil
}

// Acknowledge stamps an owned alert as acknowledged by the caller.
// Re-acknowledging is an idempotent refresh of the stamp, never a failure.
func (s *Service) Acknowledge(ctx context.Context, userID, alertID string) (AckReceipt, error) {
	a, err := s.store.GetAlert(ctx, alertID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return AckReceipt{}, apperr.NotFound("alert")
		}
		return AckReceipt{}, apperr.Internal("load alert", err)
	}
	if a.UserID != userID {
		return AckReceipt{}, apperr.Forbidden("alert belongs to another user")
	}

	now := time.Now().UTC()
	acked := true
	_, err = s.store.UpdateAlert(ctx, alertID, alert.Patch{
		Acknowledged:   &acked,
		AcknowledgedAt: &now,
		AcknowledgedBy: &userID,
	})
	if err != nil {
		return AckReceipt{}, apperr.Internal("acknowledge alert", err)
	}

	s.log.WithFields(map[string]any{"alert_id": alertID, "user_id": userID}).Debug("alert acknowledged")
	return AckReceipt{Success: true, AlertID: alertID}, nil
}

// Raise records a new alert. Used by ingest paths and seeding, not exposed as
// a route.
func (s *Service) Raise(ctx context.Context, a alert.Alert) (alert.Alert, error) {
	created, err := s.store.PutAlert(ctx, a)
	if err != nil {
		return alert.Alert{}, apperr.Internal("create alert", err)
	}
	return created, nil
}
