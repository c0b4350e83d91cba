// Package redis implements the storage facade over a managed Redis deployment.
// Records are stored as JSON values with an insertion-order list per resource
// kind, mirroring the in-memory facade semantics. Telemetry uses a Redis list
// trimmed to the retention cap, so the oldest readings drop first.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/seedbotics/fieldgate/internal/apperr"
	"github.com/seedbotics/fieldgate/internal/domain/alert"
	"github.com/seedbotics/fieldgate/internal/domain/farm"
	"github.com/seedbotics/fieldgate/internal/domain/maintenance"
	"github.com/seedbotics/fieldgate/internal/domain/mission"
	"github.com/seedbotics/fieldgate/internal/domain/report"
	"github.com/seedbotics/fieldgate/internal/domain/robot"
	"github.com/seedbotics/fieldgate/internal/domain/session"
	"github.com/seedbotics/fieldgate/internal/domain/telemetry"
	"github.com/seedbotics/fieldgate/internal/domain/user"
	"github.com/seedbotics/fieldgate/internal/storage"
)

const keyPrefix = "fieldgate"

// Store implements storage.Store over a Redis client. Concurrent writers race
// last-write-wins, matching the facade contract; conditional writes belong to
// the backing service in deployments that need them.
type Store struct {
	client *goredis.Client
}

var _ storage.Store = (*Store)(nil)

// New connects to Redis and verifies the connection.
func New(ctx context.Context, addr, password string, db int) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Store{client: client}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error { return s.client.Close() }

func recordKey(kind storage.Kind, id string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, kind, id)
}

func orderKey(kind storage.Kind) string {
	return fmt.Sprintf("%s:%s:order", keyPrefix, kind)
}

func readingsKey(robotID string) string {
	return fmt.Sprintf("%s:telemetry:%s", keyPrefix, robotID)
}

func putRecord(ctx context.Context, s *Store, kind storage.Kind, id string, v any) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s record: %w", kind, err)
	}
	exists, err := s.client.Exists(ctx, recordKey(kind, id)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		if err := s.client.RPush(ctx, orderKey(kind), id).Err(); err != nil {
			return err
		}
	}
	return s.client.Set(ctx, recordKey(kind, id), buf, 0).Err()
}

func getRecord[T any](ctx context.Context, s *Store, kind storage.Kind, id string) (T, error) {
	var out T
	raw, err := s.client.Get(ctx, recordKey(kind, id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return out, storage.ErrNotFound
	}
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("unmarshal %s record: %w", kind, err)
	}
	return out, nil
}

// scanRecords walks a kind in insertion order, applying filter, desc reversal
// and limit truncation exactly like the in-memory facade.
func scanRecords[T any](ctx context.Context, s *Store, kind storage.Kind, filter func(T) bool, opts storage.QueryOptions) ([]T, error) {
	ids, err := s.client.LRange(ctx, orderKey(kind), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	results := make([]T, 0, len(ids))
	for _, id := range ids {
		rec, err := getRecord[T](ctx, s, kind, id)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if filter == nil || filter(rec) {
			results = append(results, rec)
		}
	}
	if opts.Desc {
		for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
			results[i], results[j] = results[j], results[i]
		}
	}
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

func deleteRecord(ctx context.Context, s *Store, kind storage.Kind, id string) (bool, error) {
	removed, err := s.client.Del(ctx, recordKey(kind, id)).Result()
	if err != nil {
		return false, err
	}
	if removed == 0 {
		return false, nil
	}
	if err := s.client.LRem(ctx, orderKey(kind), 0, id).Err(); err != nil {
		return true, err
	}
	return true, nil
}

// UserStore implementation ----------------------------------------------------

func (s *Store) PutUser(ctx context.Context, u user.User) (user.User, error) {
	now := time.Now().UTC()
	if u.ID == "" {
		u.ID = storage.NewID("user")
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if err := putRecord(ctx, s, storage.KindUsers, u.ID, u); err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	return getRecord[user.User](ctx, s, storage.KindUsers, id)
}

func (s *Store) UpdateUser(ctx context.Context, id string, patch user.Patch) (user.User, error) {
	u, err := getRecord[user.User](ctx, s, storage.KindUsers, id)
	if err != nil {
		return user.User{}, err
	}
	patch.Apply(&u)
	u.UpdatedAt = time.Now().UTC()
	if err := putRecord(ctx, s, storage.KindUsers, id, u); err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	users, err := scanRecords[user.User](ctx, s, storage.KindUsers, func(u user.User) bool {
		return strings.ToLower(u.Email) == email
	}, storage.QueryOptions{Limit: 1})
	if err != nil {
		return user.User{}, err
	}
	if len(users) == 0 {
		return user.User{}, storage.ErrNotFound
	}
	return users[0], nil
}

// RobotStore implementation ---------------------------------------------------

func (s *Store) PutRobot(ctx context.Context, r robot.Robot) (robot.Robot, error) {
	now := time.Now().UTC()
	if r.ID == "" {
		r.ID = storage.NewID("robot")
	}
	if r.RegisteredAt.IsZero() {
		r.RegisteredAt = now
	}
	r.UpdatedAt = now
	if err := putRecord(ctx, s, storage.KindRobots, r.ID, r); err != nil {
		return robot.Robot{}, err
	}
	return r, nil
}

func (s *Store) GetRobot(ctx context.Context, id string) (robot.Robot, error) {
	return getRecord[robot.Robot](ctx, s, storage.KindRobots, id)
}

func (s *Store) UpdateRobot(ctx context.Context, id string, patch robot.Patch) (robot.Robot, error) {
	r, err := getRecord[robot.Robot](ctx, s, storage.KindRobots, id)
	if err != nil {
		return robot.Robot{}, err
	}
	patch.Apply(&r)
	r.UpdatedAt = time.Now().UTC()
	if err := putRecord(ctx, s, storage.KindRobots, id, r); err != nil {
		return robot.Robot{}, err
	}
	return r, nil
}

func (s *Store) ListRobotsByUser(ctx context.Context, userID string) ([]robot.Robot, error) {
	return scanRecords[robot.Robot](ctx, s, storage.KindRobots, func(r robot.Robot) bool {
		return r.UserID == userID
	}, storage.QueryOptions{})
}

// FarmStore implementation ----------------------------------------------------

func (s *Store) PutFarm(ctx context.Context, f farm.Farm) (farm.Farm, error) {
	now := time.Now().UTC()
	if f.ID == "" {
		f.ID = storage.NewID("farm")
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	f.UpdatedAt = now
	if err := putRecord(ctx, s, storage.KindFarms, f.ID, f); err != nil {
		return farm.Farm{}, err
	}
	return f, nil
}

func (s *Store) GetFarm(ctx context.Context, id string) (farm.Farm, error) {
	return getRecord[farm.Farm](ctx, s, storage.KindFarms, id)
}

func (s *Store) ListFarmsByUser(ctx context.Context, userID string) ([]farm.Farm, error) {
	return scanRecords[farm.Farm](ctx, s, storage.KindFarms, func(f farm.Farm) bool {
		return f.UserID == userID
	}, storage.QueryOptions{})
}

// SessionStore implementation -------------------------------------------------

func (s *Store) PutSession(ctx context.Context, sess session.PlantingSession) (session.PlantingSession, error) {
	if sess.ID == "" {
		sess.ID = storage.NewID("session")
	}
	sess.UpdatedAt = time.Now().UTC()
	if err := putRecord(ctx, s, storage.KindSessions, sess.ID, sess); err != nil {
		return session.PlantingSession{}, err
	}
	return sess, nil
}

func (s *Store) GetSession(ctx context.Context, id string) (session.PlantingSession, error) {
	return getRecord[session.PlantingSession](ctx, s, storage.KindSessions, id)
}

func (s *Store) QuerySessions(ctx context.Context, filter func(session.PlantingSession) bool, opts storage.QueryOptions) ([]session.PlantingSession, error) {
	return scanRecords[session.PlantingSession](ctx, s, storage.KindSessions, filter, opts)
}

// AlertStore implementation ---------------------------------------------------

func (s *Store) PutAlert(ctx context.Context, a alert.Alert) (alert.Alert, error) {
	now := time.Now().UTC()
	if a.ID == "" {
		a.ID = storage.NewID("alert")
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = now
	}
	a.UpdatedAt = now
	if err := putRecord(ctx, s, storage.KindAlerts, a.ID, a); err != nil {
		return alert.Alert{}, err
	}
	return a, nil
}

func (s *Store) GetAlert(ctx context.Context, id string) (alert.Alert, error) {
	return getRecord[alert.Alert](ctx, s, storage.KindAlerts, id)
}

func (s *Store) UpdateAlert(ctx context.Context, id string, patch alert.Patch) (alert.Alert, error) {
	a, err := getRecord[alert.Alert](ctx, s, storage.KindAlerts, id)
	if err != nil {
		return alert.Alert{}, err
	}
	patch.Apply(&a)
	a.UpdatedAt = time.Now().UTC()
	if err := putRecord(ctx, s, storage.KindAlerts, id, a); err != nil {
		return alert.Alert{}, err
	}
	return a, nil
}

func (s *Store) ListAlertsByUser(ctx context.Context, userID string, unacknowledgedOnly bool) ([]alert.Alert, error) {
	return scanRecords[alert.Alert](ctx, s, storage.KindAlerts, func(a alert.Alert) bool {
		if a.UserID != userID {
			return false
		}
		if unacknowledgedOnly && a.Acknowledged {
			return false
		}
		return true
	}, storage.QueryOptions{})
}

// TelemetryStore implementation -----------------------------------------------

func (s *Store) AppendReading(ctx context.Context, robotID string, r telemetry.SensorReading) (telemetry.SensorReading, error) {
	if r.ID == "" {
		r.ID = storage.NewID("reading")
	}
	r.RobotID = robotID
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	buf, err := json.Marshal(r)
	if err != nil {
		return telemetry.SensorReading{}, fmt.Errorf("marshal reading: %w", err)
	}

	key := readingsKey(robotID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, buf)
	pipe.LTrim(ctx, key, -int64(storage.MaxReadingsPerRobot), -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return telemetry.SensorReading{}, err
	}
	return r, nil
}

func (s *Store) ListReadings(ctx context.Context, robotID string, limit int) ([]telemetry.SensorReading, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	raw, err := s.client.LRange(ctx, readingsKey(robotID), start, -1).Result()
	if err != nil {
		return nil, err
	}
	readings := make([]telemetry.SensorReading, 0, len(raw))
	for _, item := range raw {
		var r telemetry.SensorReading
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			return nil, fmt.Errorf("unmarshal reading: %w", err)
		}
		readings = append(readings, r)
	}
	return readings, nil
}

func (s *Store) CountReadings(ctx context.Context, robotID string) (int, error) {
	n, err := s.client.LLen(ctx, readingsKey(robotID)).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// MissionStore implementation -------------------------------------------------

func (s *Store) PutMission(ctx context.Context, m mission.Mission) (mission.Mission, error) {
	now := time.Now().UTC()
	if m.ID == "" {
		m.ID = storage.NewID("mission")
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	if err := putRecord(ctx, s, storage.KindMissions, m.ID, m); err != nil {
		return mission.Mission{}, err
	}
	return m, nil
}

func (s *Store) GetMission(ctx context.Context, id string) (mission.Mission, error) {
	return getRecord[mission.Mission](ctx, s, storage.KindMissions, id)
}

func (s *Store) UpdateMission(ctx context.Context, id string, patch mission.Patch) (mission.Mission, error) {
	m, err := getRecord[mission.Mission](ctx, s, storage.KindMissions, id)
	if err != nil {
		return mission.Mission{}, err
	}
	patch.Apply(&m)
	m.UpdatedAt = time.Now().UTC()
	if err := putRecord(ctx, s, storage.KindMissions, id, m); err != nil {
		return mission.Mission{}, err
	}
	return m, nil
}

func (s *Store) QueryMissions(ctx context.Context, filter func(mission.Mission) bool, opts storage.QueryOptions) ([]mission.Mission, error) {
	return scanRecords[mission.Mission](ctx, s, storage.KindMissions, filter, opts)
}

// MaintenanceStore implementation ---------------------------------------------

func (s *Store) PutMaintenanceLog(ctx context.Context, l maintenance.Log) (maintenance.Log, error) {
	now := time.Now().UTC()
	if l.ID == "" {
		l.ID = storage.NewID("maint")
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = now
	}
	l.UpdatedAt = now
	if err := putRecord(ctx, s, storage.KindMaintenance, l.ID, l); err != nil {
		return maintenance.Log{}, err
	}
	return l, nil
}

func (s *Store) GetMaintenanceLog(ctx context.Context, id string) (maintenance.Log, error) {
	return getRecord[maintenance.Log](ctx, s, storage.KindMaintenance, id)
}

func (s *Store) ListMaintenanceByRobot(ctx context.Context, robotID string) ([]maintenance.Log, error) {
	return scanRecords[maintenance.Log](ctx, s, storage.KindMaintenance, func(l maintenance.Log) bool {
		return l.RobotID == robotID
	}, storage.QueryOptions{})
}

// ReportStore implementation --------------------------------------------------

func (s *Store) PutReport(ctx context.Context, r report.Report) (report.Report, error) {
	now := time.Now().UTC()
	if r.ID == "" {
		r.ID = storage.NewID("report")
	}
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = now
	}
	r.UpdatedAt = now
	if err := putRecord(ctx, s, storage.KindReports, r.ID, r); err != nil {
		return report.Report{}, err
	}
	return r, nil
}

func (s *Store) GetReport(ctx context.Context, id string) (report.Report, error) {
	return getRecord[report.Report](ctx, s, storage.KindReports, id)
}

func (s *Store) ListReportsByUser(ctx context.Context, userID string) ([]report.Report, error) {
	return scanRecords[report.Report](ctx, s, storage.KindReports, func(r report.Report) bool {
		return r.UserID == userID
	}, storage.QueryOptions{})
}

// DeleteItem removes a record of any kind by id.
func (s *Store) DeleteItem(ctx context.Context, kind storage.Kind, id string) (bool, error) {
	switch kind {
	case storage.KindUsers, storage.KindRobots, storage.KindFarms, storage.KindSessions,
		storage.KindAlerts, storage.KindMissions, storage.KindMaintenance, storage.KindReports:
		return deleteRecord(ctx, s, kind, id)
	default:
		return false, apperr.Configuration("unknown resource kind: " + string(kind))
	}
}
