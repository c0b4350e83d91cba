// Package reports implements report generation over owned session data, with
// rendered documents uploaded to the object store.
package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/seedbotics/fieldgate/internal/apperr"
	"github.com/seedbotics/fieldgate/internal/domain/report"
	"github.com/seedbotics/fieldgate/internal/domain/session"
	"github.com/seedbotics/fieldgate/internal/objectstore"
	"github.com/seedbotics/fieldgate/internal/storage"
	"github.com/seedbotics/fieldgate/pkg/logger"
)

// SignedURLTTL bounds how long a generated download link stays valid.
const SignedURLTTL = time.Hour

// GenerateInput carries a report generation request.
type GenerateInput struct {
	Kind        report.Kind `json:"type"`
	Title       string      `json:"title,omitempty"`
	FarmID      string      `json:"farmId,omitempty"`
	RobotID     string      `json:"robotId,omitempty"`
	PeriodStart time.Time   `json:"periodStart"`
	PeriodEnd   time.Time   `json:"periodEnd"`
}

// Generated is the report creation response.
type Generated struct {
	Report      report.Report `json:"report"`
	DownloadURL string        `json:"downloadUrl"`
}

// Service handles report procedures.
type Service struct {
	store   storage.Store
	objects objectstore.Store
	log     *logger.Logger
}

// New constructs a report service.
func New(store storage.Store, objects objectstore.Store, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("reports")
	}
	return &Service{store: store, objects: objects, log: log}
}

// Generate aggregates the caller's sessions over the period, stores the
// rendered document and returns the report with a signed download URL.
func (s *Service) Generate(ctx context.Context, userID string, in GenerateInput) (Generated, error) {
	if !report.ValidKind(in.Kind) {
		return Generated{}, apperr.ValidationField("type", "unknown report type")
	}
	if in.PeriodStart.IsZero() || in.PeriodEnd.IsZero() {
		return Generated{}, apperr.ValidationField("period", "periodStart and periodEnd are required")
	}
	if !in.PeriodEnd.After(in.PeriodStart) {
		return Generated{}, apperr.ValidationField("period", "periodEnd must be after periodStart")
	}

	sessions, err := s.store.QuerySessions(ctx, func(sess session.PlantingSession) bool {
		if sess.UserID != userID {
			return false
		}
		if in.FarmID != "" && sess.FarmID != in.FarmID {
			return false
		}
		if in.RobotID != "" && sess.RobotID != in.RobotID {
			return false
		}
		return !sess.StartTime.Before(in.PeriodStart) && sess.StartTime.Before(in.PeriodEnd)
	}, storage.QueryOptions{})
	if err != nil {
		return Generated{}, apperr.Internal("query sessions", err)
	}

	metrics := aggregate(sessions)
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = fmt.Sprintf("%s report %s", in.Kind, in.PeriodStart.Format("2006-01-02"))
	}

	rep, err := s.store.PutReport(ctx, report.Report{
		UserID:      userID,
		FarmID:      in.FarmID,
		RobotID:     in.RobotID,
		Kind:        in.Kind,
		Title:       title,
		PeriodStart: in.PeriodStart.UTC(),
		PeriodEnd:   in.PeriodEnd.UTC(),
		Metrics:     metrics,
	})
	if err != nil {
		return Generated{}, apperr.Internal("store report", err)
	}

	doc, err := renderDocument(rep, sessions)
	if err != nil {
		return Generated{}, apperr.Internal("render report", err)
	}

	key := objectKey(userID, rep.ID)
	if _, err := s.objects.Upload(ctx, key, doc, "application/json"); err != nil {
		return Generated{}, apperr.Internal("upload report document", err)
	}
	url, err := s.objects.SignedURL(ctx, key, SignedURLTTL)
	if err != nil {
		return Generated{}, apperr.Internal("sign report url", err)
	}

	rep, err = s.store.PutReport(ctx, withFileURL(rep, url))
	if err != nil {
		return Generated{}, apperr.Internal("store report", err)
	}

	s.log.WithFields(map[string]any{"report_id": rep.ID, "sessions": len(sessions)}).Info("report generated")
	return Generated{Report: rep, DownloadURL: url}, nil
}

// List returns the caller's reports.
func (s *Service) List(ctx context.Context, userID string) ([]report.Report, error) {
	reports, err := s.store.ListReportsByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("list reports", err)
	}
	return reports, nil
}

// Get returns one owned report with a fresh signed URL.
func (s *Service) Get(ctx context.Context, userID, reportID string) (Generated, error) {
	rep, err := s.owned(ctx, userID, reportID)
	if err != nil {
		return Generated{}, err
	}

	url, err := s.objects.SignedURL(ctx, objectKey(userID, reportID), SignedURLTTL)
	if err != nil && !errors.Is(err, objectstore.ErrNotFound) {
		return Generated{}, apperr.Internal("sign report url", err)
	}
	return Generated{Report: rep, DownloadURL: url}, nil
}

// Delete removes an owned report and its stored document.
func (s *Service) Delete(ctx context.Context, userID, reportID string) error {
	if _, err := s.owned(ctx, userID, reportID); err != nil {
		return err
	}

	if _, err := s.store.DeleteItem(ctx, storage.KindReports, reportID); err != nil {
		return apperr.Internal("delete report", err)
	}
	if err := s.objects.Delete(ctx, objectKey(userID, reportID)); err != nil {
		s.log.WithError(err).WithField("report_id", reportID).Warn("report document delete failed")
	}
	return nil
}

func (s *Service) owned(ctx context.Context, userID, reportID string) (report.Report, error) {
	rep, err := s.store.GetReport(ctx, reportID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return report.Report{}, apperr.NotFound("report")
		}
		return report.Report{}, apperr.Internal("load report", err)
	}
	if rep.UserID != userID {
		return report.Report{}, apperr.Forbidden("report belongs to another user")
	}
	return rep, nil
}

func objectKey(userID, reportID string) string {
	return fmt.Sprintf("reports/%s/%s.json", userID, reportID)
}

func withFileURL(rep report.Report, url string) report.Report {
	rep.FileURL = url
	return rep
}

func aggregate(sessions []session.PlantingSession) report.Metrics {
	var m report.Metrics
	m.SessionsCount = len(sessions)
	completed := 0
	var hours float64
	for _, sess := range sessions {
		m.AreaCovered += sess.CompletedArea
		m.SeedsPlanted += sess.TotalSeeds
		if sess.EndTime != nil {
			hours += sess.EndTime.Sub(sess.StartTime).Hours()
		}
		if sess.Status == session.StatusCompleted {
			completed++
		}
	}
	m.HoursOperated = hours
	if len(sessions) > 0 {
		m.SuccessRate = float64(completed) / float64(len(sessions))
	}
	return m
}

type document struct {
	Report   report.Report             `json:"report"`
	Sessions []session.PlantingSession `json:"sessions"`
}

func renderDocument(rep report.Report, sessions []session.PlantingSession) ([]byte, error) {
	return json.MarshalIndent(document{Report: rep, Sessions: sessions}, "", "  ")
}
