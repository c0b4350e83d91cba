// Package maintenance implements robot service-history procedures.
package maintenance

import (
	"context"
	"errors"
	"strings"

	"github.com/seedbotics/fieldgate/internal/apperr"
	"github.com/seedbotics/fieldgate/internal/domain/maintenance"
	"github.com/seedbotics/fieldgate/internal/domain/robot"
	"github.com/seedbotics/fieldgate/internal/storage"
	"github.com/seedbotics/fieldgate/pkg/logger"
)

// CreateInput carries a maintenance log entry.
type CreateInput struct {
	RobotID        string           `json:"robotId"`
	Kind           maintenance.Kind `json:"type"`
	Title          string           `json:"title"`
	Description    string           `json:"description,omitempty"`
	PartsReplaced  []string         `json:"partsReplaced,omitempty"`
	TechnicianName string           `json:"technicianName,omitempty"`
	Cost           float64          `json:"cost,omitempty"`
}

// Service handles maintenance procedures.
type Service struct {
	store  storage.MaintenanceStore
	robots storage.RobotStore
	log    *logger.Logger
}

// New constructs a maintenance service.
func New(store storage.MaintenanceStore, robots storage.RobotStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("maintenance")
	}
	return &Service{store: store, robots: robots, log: log}
}

// Record logs a maintenance event for a robot the caller owns and stamps the
// robot's last-maintenance marker.
func (s *Service) Record(ctx context.Context, userID string, in CreateInput) (maintenance.Log, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.RobotID == "" {
		return maintenance.Log{}, apperr.ValidationField("robotId", "robotId is required")
	}
	if !maintenance.ValidKind(in.Kind) {
		return maintenance.Log{}, apperr.ValidationField("type", "unknown maintenance type")
	}
	if in.Title == "" {
		return maintenance.Log{}, apperr.ValidationField("title", "title is required")
	}
	if err := s.checkRobot(ctx, userID, in.RobotID); err != nil {
		return maintenance.Log{}, err
	}

	created, err := s.store.PutMaintenanceLog(ctx, maintenance.Log{
		RobotID:        in.RobotID,
		UserID:         userID,
		Kind:           in.Kind,
		Title:          in.Title,
		Description:    in.Description,
		PartsReplaced:  in.PartsReplaced,
		TechnicianName: in.TechnicianName,
		Cost:           in.Cost,
	})
	if err != nil {
		return maintenance.Log{}, apperr.Internal("create maintenance log", err)
	}

	ts := created.Timestamp
	if _, err := s.robots.UpdateRobot(ctx, in.RobotID, robot.Patch{LastMaintenanceAt: &ts}); err != nil {
		s.log.WithError(err).WithField("robot_id", in.RobotID).Warn("last-maintenance stamp failed")
	}

	s.log.WithFields(map[string]any{"robot_id": in.RobotID, "log_id": created.ID}).Info("maintenance recorded")
	return created, nil
}

// ListByRobot returns maintenance history for an owned robot.
func (s *Service) ListByRobot(ctx context.Context, userID, robotID string) ([]maintenance.Log, error) {
	if robotID == "" {
		return nil, apperr.ValidationField("robotId", "robotId is required")
	}
	if err := s.checkRobot(ctx, userID, robotID); err != nil {
		return nil, err
	}

	logs, err := s.store.ListMaintenanceByRobot(ctx, robotID)
	if err != nil {
		return nil, apperr.Internal("list maintenance", err)
	}
	return logs, nil
}

func (s *Service) checkRobot(ctx context.Context, userID, robotID string) error {
	r, err := s.robots.GetRobot(ctx, robotID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound("robot")
		}
		return apperr.Internal("load robot", err)
	}
	if r.UserID != userID {
		return apperr.Forbidden("robot belongs to another user")
	}
	return nil
}
