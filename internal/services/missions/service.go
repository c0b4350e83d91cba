// Package missions implements work-order scheduling procedures.
package missions

import (
	"context"
	"errors"
	"time"

	"github.com/seedbotics/fieldgate/internal/apperr"
	"github.com/seedbotics/fieldgate/internal/domain/mission"
	"github.com/seedbotics/fieldgate/internal/storage"
	"github.com/seedbotics/fieldgate/pkg/logger"
)

// CreateInput carries a mission creation request.
type CreateInput struct {
	RobotID        string             `json:"robotId"`
	FarmID         string             `json:"farmId,omitempty"`
	Kind           mission.Kind       `json:"type"`
	Priority       mission.Priority   `json:"priority,omitempty"`
	ScheduledStart time.Time          `json:"scheduledStart"`
	Waypoints      []mission.Waypoint `json:"waypoints"`
	Parameters     map[string]any     `json:"parameters,omitempty"`
}

// Filter narrows a mission listing.
type Filter struct {
	RobotID string
	Status  mission.Status
}

// Service handles mission procedures.
type Service struct {
	store  storage.MissionStore
	robots storage.RobotStore
	log    *logger.Logger
}

// New constructs a mission service.
func New(store storage.MissionStore, robots storage.RobotStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("missions")
	}
	return &Service{store: store, robots: robots, log: log}
}

// Create schedules a mission for a robot the caller owns.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (mission.Mission, error) {
	if in.RobotID == "" {
		return mission.Mission{}, apperr.ValidationField("robotId", "robotId is required")
	}
	if !mission.ValidKind(in.Kind) {
		return mission.Mission{}, apperr.ValidationField("type", "unknown mission type")
	}
	if len(in.Waypoints) == 0 {
		return mission.Mission{}, apperr.ValidationField("waypoints", "at least one waypoint is required")
	}
	if err := s.checkRobot(ctx, userID, in.RobotID); err != nil {
		return mission.Mission{}, err
	}

	priority := in.Priority
	if priority == "" {
		priority = mission.PriorityMedium
	}
	start := in.ScheduledStart
	if start.IsZero() {
		start = time.Now().UTC()
	}

	created, err := s.store.PutMission(ctx, mission.Mission{
		UserID:         userID,
		RobotID:        in.RobotID,
		FarmID:         in.FarmID,
		Kind:           in.Kind,
		Status:         mission.StatusScheduled,
		Priority:       priority,
		ScheduledStart: start,
		Waypoints:      in.Waypoints,
		Parameters:     in.Parameters,
	})
	if err != nil {
		return mission.Mission{}, apperr.Internal("create mission", err)
	}

	s.log.WithFields(map[string]any{"mission_id": created.ID, "robot_id": in.RobotID}).Info("mission scheduled")
	return created, nil
}

// List returns the caller's missions newest first, narrowed by the filter.
func (s *Service) List(ctx context.Context, userID string, f Filter) ([]mission.Mission, error) {
	missions, err := s.store.QueryMissions(ctx, func(m mission.Mission) bool {
		if m.UserID != userID {
			return false
		}
		if f.RobotID != "" && m.RobotID != f.RobotID {
			return false
		}
		if f.Status != "" && m.Status != f.Status {
			return false
		}
		return true
	}, storage.QueryOptions{Desc: true})
	if err != nil {
		return nil, apperr.Internal("query missions", err)
	}
	return missions, nil
}

// Get returns one owned mission.
func (s *Service) Get(ctx context.Context, userID, missionID string) (mission.Mission, error) {
	return s.owned(ctx, userID, missionID)
}

// Cancel moves an owned mission to cancelled. Terminal missions cannot be
// cancelled.
func (s *Service) Cancel(ctx context.Context, userID, missionID string) (mission.Mission, error) {
	m, err := s.owned(ctx, userID, missionID)
	if err != nil {
		return mission.Mission{}, err
	}
	if mission.Terminal(m.Status) {
		return mission.Mission{}, apperr.Validation("mission is already " + string(m.Status))
	}

	now := time.Now().UTC()
	cancelled := mission.StatusCancelled
	updated, err := s.store.UpdateMission(ctx, missionID, mission.Patch{
		Status:    &cancelled,
		ActualEnd: &now,
	})
	if err != nil {
		return mission.Mission{}, apperr.Internal("cancel mission", err)
	}

	s.log.WithField("mission_id", missionID).Info("mission cancelled")
	return updated, nil
}

func (s *Service) owned(ctx context.Context, userID, missionID string) (mission.Mission, error) {
	m, err := s.store.GetMission(ctx, missionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return mission.Mission{}, apperr.NotFound("mission")
		}
		return mission.Mission{}, apperr.Internal("load mission", err)
	}
	if m.UserID != userID {
		return mission.Mission{}, apperr.Forbidden("mission belongs to another user")
	}
	return m, nil
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
