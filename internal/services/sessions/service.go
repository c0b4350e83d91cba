// Package sessions implements planting session history procedures.
package sessions

import (
	"context"
	"errors"
	"fmt"

	"github.com/seedbotics/fieldgate/internal/apperr"
	"github.com/seedbotics/fieldgate/internal/domain/session"
	"github.com/seedbotics/fieldgate/internal/storage"
	"github.com/seedbotics/fieldgate/pkg/logger"
)

// List limits.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Filter narrows a session listing. Zero values match everything.
type Filter struct {
	RobotID string
	FarmID  string
	Status  session.Status
	Limit   int
}

// Page is the session list response.
type Page struct {
	Sessions []session.PlantingSession `json:"sessions"`
	Total    int                       `json:"total"`
}

// Service handles session procedures.
type Service struct {
	store storage.SessionStore
	log   *logger.Logger
}

// New constructs a session service.
func New(store storage.SessionStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("sessions")
	}
	return &Service{store: store, log: log}
}

// List returns the caller's sessions newest first, narrowed by the filter.
// Total counts matches before the limit is applied. A zero limit falls back to
// DefaultLimit; anything else outside [1, MaxLimit] fails validation.
func (s *Service) List(ctx context.Context, userID string, f Filter) (Page, error) {
	if f.Status != "" && !session.ValidStatus(f.Status) {
		return Page{}, apperr.ValidationField("status", "unknown session status")
	}
	limit := f.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 1 || limit > MaxLimit {
		return Page{}, apperr.ValidationField("limit", fmt.Sprintf("limit must be between 1 and %d", MaxLimit))
	}

	match := func(sess session.PlantingSession) bool {
		if sess.UserID != userID {
			return false
		}
		if f.RobotID != "" && sess.RobotID != f.RobotID {
			return false
		}
		if f.FarmID != "" && sess.FarmID != f.FarmID {
			return false
		}
		if f.Status != "" && sess.Status != f.Status {
			return false
		}
		return true
	}

	all, err := s.store.QuerySessions(ctx, match, storage.QueryOptions{Desc: true})
	if err != nil {
		return Page{}, apperr.Internal("query sessions", err)
	}

	total := len(all)
	if len(all) > limit {
		all = all[:limit]
	}
	return Page{Sessions: all, Total: total}, nil
}

// Get returns one owned session.
func (s *Service) Get(ctx context.Context, userID, sessionID string) (session.PlantingSession, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return session.PlantingSession{}, apperr.NotFound("session")
		}
		return session.PlantingSession{}, apperr.Internal("load session", err)
	}
	if sess.UserID != userID {
		return session.PlantingSession{}, apperr.Forbidden("session belongs to another user")
	}
	return sess, nil
}

// Record stores a session. Used by robot-facing ingest and seeding.
func (s *Service) Record(ctx context.Context, sess session.PlantingSession) (session.PlantingSession, error) {
	stored, err := s.store.PutSession(ctx, sess)
	if err != nil {
		return session.PlantingSession{}, apperr.Internal("store session", err)
	}
	return stored, nil
}
