// Package storage declares the data store facade behind the fieldgate
// procedures. Implementations must preserve insertion order for queries and
// bound per-robot telemetry retention.
package storage

import (
	"context"
	"errors"

	"github.com/seedbotics/fieldgate/internal/domain/alert"
	"github.com/seedbotics/fieldgate/internal/domain/farm"
	"github.com/seedbotics/fieldgate/internal/domain/maintenance"
	"github.com/seedbotics/fieldgate/internal/domain/mission"
	"github.com/seedbotics/fieldgate/internal/domain/report"
	"github.com/seedbotics/fieldgate/internal/domain/robot"
	"github.com/seedbotics/fieldgate/internal/domain/session"
	"github.com/seedbotics/fieldgate/internal/domain/telemetry"
	"github.com/seedbotics/fieldgate/internal/domain/user"
)

// ErrNotFound reports an absent record id. Absence is a normal outcome for the
// facade; callers decide whether it maps to NotFound or a generic failure.
var ErrNotFound = errors.New("record not found")

// MaxReadingsPerRobot caps retained telemetry per robot; the oldest readings
// are dropped once the cap is exceeded.
const MaxReadingsPerRobot = 10000

// QueryOptions controls scan ordering and truncation. Desc reverses insertion
// order; Limit truncates after ordering.
type QueryOptions struct {
	Limit int
	Desc  bool
}

// UserStore persists user accounts.
type UserStore interface {
	PutUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	UpdateUser(ctx context.Context, id string, patch user.Patch) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
}

// RobotStore persists robot registrations.
type RobotStore interface {
	PutRobot(ctx context.Context, r robot.Robot) (robot.Robot, error)
	GetRobot(ctx context.Context, id string) (robot.Robot, error)
	UpdateRobot(ctx context.Context, id string, patch robot.Patch) (robot.Robot, error)
	ListRobotsByUser(ctx context.Context, userID string) ([]robot.Robot, error)
}

// FarmStore persists farms.
type FarmStore interface {
	PutFarm(ctx context.Context, f farm.Farm) (farm.Farm, error)
	GetFarm(ctx context.Context, id string) (farm.Farm, error)
	ListFarmsByUser(ctx context.Context, userID string) ([]farm.Farm, error)
}

// SessionStore persists planting sessions.
type SessionStore interface {
	PutSession(ctx context.Context, s session.PlantingSession) (session.PlantingSession, error)
	GetSession(ctx context.Context, id string) (session.PlantingSession, error)
	QuerySessions(ctx context.Context, filter func(session.PlantingSession) bool, opts QueryOptions) ([]session.PlantingSession, error)
}

// AlertStore persists alerts.
type AlertStore interface {
	PutAlert(ctx context.Context, a alert.Alert) (alert.Alert, error)
	GetAlert(ctx context.Context, id string) (alert.Alert, error)
	UpdateAlert(ctx context.Context, id string, patch alert.Patch) (alert.Alert, error)
	ListAlertsByUser(ctx context.Context, userID string, unacknowledgedOnly bool) ([]alert.Alert, error)
}

// TelemetryStore persists bounded per-robot sensor readings.
type TelemetryStore interface {
	AppendReading(ctx context.Context, robotID string, r telemetry.SensorReading) (telemetry.SensorReading, error)
	ListReadings(ctx context.Context, robotID string, limit int) ([]telemetry.SensorReading, error)
	CountReadings(ctx context.Context, robotID string) (int, error)
}

// MissionStore persists missions.
type MissionStore interface {
	PutMission(ctx context.Context, m mission.Mission) (mission.Mission, error)
	GetMission(ctx context.Context, id string) (mission.Mission, error)
	UpdateMission(ctx context.Context, id string, patch mission.Patch) (mission.Mission, error)
	QueryMissions(ctx context.Context, filter func(mission.Mission) bool, opts QueryOptions) ([]mission.Mission, error)
}

// MaintenanceStore persists maintenance logs.
type MaintenanceStore interface {
	PutMaintenanceLog(ctx context.Context, l maintenance.Log) (maintenance.Log, error)
	GetMaintenanceLog(ctx context.Context, id string) (maintenance.Log, error)
	ListMaintenanceByRobot(ctx context.Context, robotID string) ([]maintenance.Log, error)
}

// ReportStore persists generated reports.
type ReportStore interface {
	PutReport(ctx context.Context, r report.Report) (report.Report, error)
	GetReport(ctx context.Context, id string) (report.Report, error)
	ListReportsByUser(ctx context.Context, userID string) ([]report.Report, error)
}

// Store is the full facade. DeleteItem is the generic delete-by-id operation;
// it reports whether anything was removed and rejects unknown kinds with a
// configuration error.
type Store interface {
	UserStore
	RobotStore
	FarmStore
	SessionStore
	AlertStore
	TelemetryStore
	MissionStore
	MaintenanceStore
	ReportStore

	DeleteItem(ctx context.Context, kind Kind, id string) (bool, error)
}
