// Package robots implements robot registration, status, command and telemetry
// procedures. Every resource-scoped call checks existence before ownership, so
// a missing robot is NotFound and somebody else's robot is Forbidden.
package robots

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/seedbotics/fieldgate/internal/apperr"
	"github.com/seedbotics/fieldgate/internal/devicelink"
	"github.com/seedbotics/fieldgate/internal/domain/robot"
	"github.com/seedbotics/fieldgate/internal/domain/telemetry"
	"github.com/seedbotics/fieldgate/internal/metrics"
	"github.com/seedbotics/fieldgate/internal/storage"
	"github.com/seedbotics/fieldgate/pkg/logger"
)

// Telemetry list limits.
const (
	DefaultTelemetryLimit = 100
	MaxTelemetryLimit     = 1000
)

// RegisterInput carries a robot registration request.
type RegisterInput struct {
	Name            string `json:"name"`
	SerialNumber    string `json:"serialNumber"`
	Model           string `json:"model"`
	FirmwareVersion string `json:"firmwareVersion,omitempty"`
	FarmID          string `json:"farmId,omitempty"`
}

// StatusView is a robot record joined with its live shadow.
type StatusView struct {
	Robot  robot.Robot       `json:"robot"`
	Shadow devicelink.Shadow `json:"shadow"`
}

// CommandReceipt acknowledges a published command.
type CommandReceipt struct {
	CommandID string        `json:"commandId"`
	RobotID   string        `json:"robotId"`
	Command   robot.Command `json:"command"`
	IssuedAt  time.Time     `json:"issuedAt"`
}

// TelemetryPage is the telemetry list response.
type TelemetryPage struct {
	Readings []telemetry.SensorReading `json:"readings"`
	Count    int                       `json:"count"`
}

// Service handles robot procedures.
type Service struct {
	store storage.Store
	link  devicelink.Link
	log   *logger.Logger
}

// New constructs a robot service.
func New(store storage.Store, link devicelink.Link, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("robots")
	}
	return &Service{store: store, link: link, log: log}
}

// List returns the caller's robots.
func (s *Service) List(ctx context.Context, userID string) ([]robot.Robot, error) {
	robots, err := s.store.ListRobotsByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("list robots", err)
	}
	return robots, nil
}

// Register creates a robot owned by the caller and connects it to the device
// link.
func (s *Service) Register(ctx context.Context, userID string, in RegisterInput) (robot.Robot, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.SerialNumber = strings.TrimSpace(in.SerialNumber)
	if in.Name == "" {
		return robot.Robot{}, apperr.ValidationField("name", "name is required")
	}
	if in.SerialNumber == "" {
		return robot.Robot{}, apperr.ValidationField("serialNumber", "serialNumber is required")
	}

	created, err := s.store.PutRobot(ctx, robot.Robot{
		UserID:          userID,
		FarmID:          in.FarmID,
		Name:            in.Name,
		SerialNumber:    in.SerialNumber,
		Model:           in.Model,
		FirmwareVersion: in.FirmwareVersion,
		Status:          robot.StatusInactive,
	})
	if err != nil {
		return robot.Robot{}, apperr.Internal("create robot", err)
	}

	if err := s.link.Connect(ctx, created.ID); err != nil {
		s.log.WithError(err).WithField("robot_id", created.ID).Warn("device link connect failed")
	}

	s.log.WithFields(map[string]any{"robot_id": created.ID, "user_id": userID}).Info("robot registered")
	return created, nil
}

// Update applies a partial update to an owned robot.
func (s *Service) Update(ctx context.Context, userID, robotID string, patch robot.Patch) (robot.Robot, error) {
	if _, err := s.owned(ctx, userID, robotID); err != nil {
		return robot.Robot{}, err
	}
	if patch.Status != nil {
		switch *patch.Status {
		case robot.StatusActive, robot.StatusInactive, robot.StatusMaintenance, robot.StatusError:
		default:
			return robot.Robot{}, apperr.ValidationField("status", "unknown robot status")
		}
	}

	updated, err := s.store.UpdateRobot(ctx, robotID, patch)
	if err != nil {
		return robot.Robot{}, apperr.Internal("update robot", err)
	}
	return updated, nil
}

// Status returns the robot record joined with its device shadow.
func (s *Service) Status(ctx context.Context, userID, robotID string) (StatusView, error) {
	r, err := s.owned(ctx, userID, robotID)
	if err != nil {
		return StatusView{}, err
	}

	shadow, err := s.link.Shadow(ctx, robotID)
	if err != nil {
		return StatusView{}, apperr.Internal("load device shadow", err)
	}
	return StatusView{Robot: r, Shadow: shadow}, nil
}

// Command validates and publishes a command for an owned robot. Commands
// outside the enum never reach the device link.
func (s *Service) Command(ctx context.Context, userID, robotID string, cmd robot.Command, params map[string]any) (CommandReceipt, error) {
	if !robot.ValidCommand(cmd) {
		metrics.RecordCommand(string(cmd), false)
		return CommandReceipt{}, apperr.ValidationField("command", "unknown command: "+string(cmd))
	}
	if _, err := s.owned(ctx, userID, robotID); err != nil {
		return CommandReceipt{}, err
	}

	commandID, err := s.link.PublishCommand(ctx, robotID, cmd, params)
	if err != nil {
		metrics.RecordCommand(string(cmd), false)
		return CommandReceipt{}, apperr.Internal("publish command", err)
	}

	metrics.RecordCommand(string(cmd), true)
	s.log.WithFields(map[string]any{"robot_id": robotID, "command": cmd}).Info("command published")
	return CommandReceipt{
		CommandID: commandID,
		RobotID:   robotID,
		Command:   cmd,
		IssuedAt:  time.Now().UTC(),
	}, nil
}

// Telemetry returns the most recent readings for an owned robot. A zero limit
// falls back to DefaultTelemetryLimit; anything else outside
// [1, MaxTelemetryLimit] fails validation.
func (s *Service) Telemetry(ctx context.Context, userID, robotID string, limit int) (TelemetryPage, error) {
	if limit == 0 {
		limit = DefaultTelemetryLimit
	}
	if limit < 1 || limit > MaxTelemetryLimit {
		return TelemetryPage{}, apperr.ValidationField("limit", fmt.Sprintf("limit must be between 1 and %d", MaxTelemetryLimit))
	}
	if _, err := s.owned(ctx, userID, robotID); err != nil {
		return TelemetryPage{}, err
	}

	readings, err := s.store.ListReadings(ctx, robotID, limit)
	if err != nil {
		return TelemetryPage{}, apperr.Internal("list readings", err)
	}
	return TelemetryPage{Readings: readings, Count: len(readings)}, nil
}

// IngestReading appends a sensor reading for an owned robot and mirrors the
// vitals into the device shadow.
func (s *Service) IngestReading(ctx context.Context, userID, robotID string, r telemetry.SensorReading) (telemetry.SensorReading, error) {
	if _, err := s.owned(ctx, userID, robotID); err != nil {
		return telemetry.SensorReading{}, err
	}

	stored, err := s.store.AppendReading(ctx, robotID, r)
	if err != nil {
		return telemetry.SensorReading{}, apperr.Internal("append reading", err)
	}

	reported := map[string]any{
		"batteryLevel":   stored.BatteryLevel,
		"signalStrength": stored.SignalStrength,
		"latitude":       stored.Location.Latitude,
		"longitude":      stored.Location.Longitude,
	}
	if err := s.link.ReportState(ctx, robotID, reported); err != nil {
		s.log.WithError(err).WithField("robot_id", robotID).Warn("shadow update failed")
	}

	metrics.RecordTelemetryIngested()
	return stored, nil
}

// Stream subscribes to device-link events for an owned robot.
func (s *Service) Stream(ctx context.Context, userID, robotID string) (<-chan devicelink.Event, func(), error) {
	if _, err := s.owned(ctx, userID, robotID); err != nil {
		return nil, nil, err
	}
	return s.link.Subscribe(ctx, robotID)
}

// owned loads a robot and enforces the existence-then-ownership order.
func (s *Service) owned(ctx context.Context, userID, robotID string) (robot.Robot, error) {
	r, err := s.store.GetRobot(ctx, robotID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return robot.Robot{}, apperr.NotFound("robot")
		}
		return robot.Robot{}, apperr.Internal("load robot", err)
	}
	if r.UserID != userID {
		return robot.Robot{}, apperr.Forbidden("robot belongs to another user")
	}
	return r, nil
}
