// Package memory is the in-memory implementation of the storage facade. It is
// safe for concurrent use and is the authoritative reference for facade
// semantics: insertion-order scans, last-write-wins updates, bounded telemetry.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

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

// table keeps records addressable by id while preserving insertion order for
// scans. All access goes through the owning Store's mutex.
type table[T any] struct {
	items map[string]T
	order []string
}

func newTable[T any]() *table[T] {
	return &table[T]{items: make(map[string]T)}
}

func (t *table[T]) get(id string) (T, bool) {
	v, ok := t.items[id]
	return v, ok
}

func (t *table[T]) put(id string, v T) {
	if _, exists := t.items[id]; !exists {
		t.order = append(t.order, id)
	}
	t.items[id] = v
}

func (t *table[T]) remove(id string) bool {
	if _, exists := t.items[id]; !exists {
		return false
	}
	delete(t.items, id)
	for i, existing := range t.order {
		if existing == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// scan walks records in insertion order, optionally reversed, truncating to
// opts.Limit after ordering.
func (t *table[T]) scan(filter func(T) bool, opts storage.QueryOptions) []T {
	results := make([]T, 0)
	for _, id := range t.order {
		v := t.items[id]
		if filter == nil || filter(v) {
			results = append(results, v)
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
	return results
}

// Store implements storage.Store over process memory.
type Store struct {
	mu          sync.RWMutex
	users       *table[user.User]
	robots      *table[robot.Robot]
	farms       *table[farm.Farm]
	sessions    *table[session.PlantingSession]
	alerts      *table[alert.Alert]
	missions    *table[mission.Mission]
	maintenance *table[maintenance.Log]
	reports     *table[report.Report]
	readings    map[string][]telemetry.SensorReading
}

var _ storage.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		users:       newTable[user.User](),
		robots:      newTable[robot.Robot](),
		farms:       newTable[farm.Farm](),
		sessions:    newTable[session.PlantingSession](),
		alerts:      newTable[alert.Alert](),
		missions:    newTable[mission.Mission](),
		maintenance: newTable[maintenance.Log](),
		reports:     newTable[report.Report](),
		readings:    make(map[string][]telemetry.SensorReading),
	}
}

// UserStore implementation ----------------------------------------------------

func (s *Store) PutUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if u.ID == "" {
		u.ID = storage.NewID("user")
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	s.users.put(u.ID, u)
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users.get(id)
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) UpdateUser(_ context.Context, id string, patch user.Patch) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users.get(id)
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	patch.Apply(&u)
	u.UpdatedAt = time.Now().UTC()
	s.users.put(id, u)
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, id := range s.users.order {
		u := s.users.items[id]
		if strings.ToLower(u.Email) == email {
			return u, nil
		}
	}
	return user.User{}, storage.ErrNotFound
}

// RobotStore implementation ---------------------------------------------------

func (s *Store) PutRobot(_ context.Context, r robot.Robot) (robot.Robot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if r.ID == "" {
		r.ID = storage.NewID("robot")
	}
	if r.RegisteredAt.IsZero() {
		r.RegisteredAt = now
	}
	r.UpdatedAt = now
	s.robots.put(r.ID, r)
	return r, nil
}

func (s *Store) GetRobot(_ context.Context, id string) (robot.Robot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.robots.get(id)
	if !ok {
		return robot.Robot{}, storage.ErrNotFound
	}
	return r, nil
}

func (s *Store) UpdateRobot(_ context.Context, id string, patch robot.Patch) (robot.Robot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.robots.get(id)
	if !ok {
		return robot.Robot{}, storage.ErrNotFound
	}
	patch.Apply(&r)
	r.UpdatedAt = time.Now().UTC()
	s.robots.put(id, r)
	return r, nil
}

func (s *Store) ListRobotsByUser(_ context.Context, userID string) ([]robot.Robot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.robots.scan(func(r robot.Robot) bool {
		return r.UserID == userID
	}, storage.QueryOptions{}), nil
}

// FarmStore implementation ----------------------------------------------------

func (s *Store) PutFarm(_ context.Context, f farm.Farm) (farm.Farm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if f.ID == "" {
		f.ID = storage.NewID("farm")
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	f.UpdatedAt = now
	s.farms.put(f.ID, f)
	return f, nil
}

func (s *Store) GetFarm(_ context.Context, id string) (farm.Farm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.farms.get(id)
	if !ok {
		return farm.Farm{}, storage.ErrNotFound
	}
	return f, nil
}

func (s *Store) ListFarmsByUser(_ context.Context, userID string) ([]farm.Farm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.farms.scan(func(f farm.Farm) bool {
		return f.UserID == userID
	}, storage.QueryOptions{}), nil
}

// SessionStore implementation -------------------------------------------------

func (s *Store) PutSession(_ context.Context, sess session.PlantingSession) (session.PlantingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.ID == "" {
		sess.ID = storage.NewID("session")
	}
	sess.UpdatedAt = time.Now().UTC()
	s.sessions.put(sess.ID, sess)
	return sess, nil
}

func (s *Store) GetSession(_ context.Context, id string) (session.PlantingSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions.get(id)
	if !ok {
		return session.PlantingSession{}, storage.ErrNotFound
	}
	return sess, nil
}

func (s *Store) QuerySessions(_ context.Context, filter func(session.PlantingSession) bool, opts storage.QueryOptions) ([]session.PlantingSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sessions.scan(filter, opts), nil
}

// AlertStore implementation ---------------------------------------------------

func (s *Store) PutAlert(_ context.Context, a alert.Alert) (alert.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if a.ID == "" {
		a.ID = storage.NewID("alert")
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = now
	}
	a.UpdatedAt = now
	s.alerts.put(a.ID, a)
	return a, nil
}

func (s *Store) GetAlert(_ context.Context, id string) (alert.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.alerts.get(id)
	if !ok {
		return alert.Alert{}, storage.ErrNotFound
	}
	return a, nil
}

func (s *Store) UpdateAlert(_ context.Context, id string, patch alert.Patch) (alert.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.alerts.get(id)
	if !ok {
		return alert.Alert{}, storage.ErrNotFound
	}
	patch.Apply(&a)
	a.UpdatedAt = time.Now().UTC()
	s.alerts.put(id, a)
	return a, nil
}

func (s *Store) ListAlertsByUser(_ context.Context, userID string, unacknowledgedOnly bool) ([]alert.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.alerts.scan(func(a alert.Alert) bool {
		if a.UserID != userID {
			return false
		}
		if unacknowledgedOnly && a.Acknowledged {
			return false
		}
		return true
	}, storage.QueryOptions{}), nil
}

// TelemetryStore implementation -----------------------------------------------

func (s *Store) AppendReading(_ context.Context, robotID string, r telemetry.SensorReading) (telemetry.SensorReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = storage.NewID("reading")
	}
	r.RobotID = robotID
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}

	readings := append(s.readings[robotID], r)
	if len(readings) > storage.MaxReadingsPerRobot {
		readings = readings[len(readings)-storage.MaxReadingsPerRobot:]
	}
	s.readings[robotID] = readings
	return r, nil
}

func (s *Store) ListReadings(_ context.Context, robotID string, limit int) ([]telemetry.SensorReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	readings := s.readings[robotID]
	if limit > 0 && len(readings) > limit {
		readings = readings[len(readings)-limit:]
	}
	out := make([]telemetry.SensorReading, len(readings))
	copy(out, readings)
	return out, nil
}

func (s *Store) CountReadings(_ context.Context, robotID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.readings[robotID]), nil
}

// MissionStore implementation -------------------------------------------------

func (s *Store) PutMission(_ context.Context, m mission.Mission) (mission.Mission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if m.ID == "" {
		m.ID = storage.NewID("mission")
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	s.missions.put(m.ID, m)
	return m, nil
}

func (s *Store) GetMission(_ context.Context, id string) (mission.Mission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.missions.get(id)
	if !ok {
		return mission.Mission{}, storage.ErrNotFound
	}
	return m, nil
}

func (s *Store) UpdateMission(_ context.Context, id string, patch mission.Patch) (mission.Mission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.missions.get(id)
	if !ok {
		return mission.Mission{}, storage.ErrNotFound
	}
	patch.Apply(&m)
	m.UpdatedAt = time.Now().UTC()
	s.missions.put(id, m)
	return m, nil
}

func (s *Store) QueryMissions(_ context.Context, filter func(mission.Mission) bool, opts storage.QueryOptions) ([]mission.Mission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.missions.scan(filter, opts), nil
}

// MaintenanceStore implementation ---------------------------------------------

func (s *Store) PutMaintenanceLog(_ context.Context, l maintenance.Log) (maintenance.Log, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if l.ID == "" {
		l.ID = storage.NewID("maint")
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = now
	}
	l.UpdatedAt = now
	s.maintenance.put(l.ID, l)
	return l, nil
}

func (s *Store) GetMaintenanceLog(_ context.Context, id string) (maintenance.Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.maintenance.get(id)
	if !ok {
		return maintenance.Log{}, storage.ErrNotFound
	}
	return l, nil
}

func (s *Store) ListMaintenanceByRobot(_ context.Context, robotID string) ([]maintenance.Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.maintenance.scan(func(l maintenance.Log) bool {
		return l.RobotID == robotID
	}, storage.QueryOptions{}), nil
}

// ReportStore implementation --------------------------------------------------

func (s *Store) PutReport(_ context.Context, r report.Report) (report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if r.ID == "" {
		r.ID = storage.NewID("report")
	}
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = now
	}
	r.UpdatedAt = now
	s.reports.put(r.ID, r)
	return r, nil
}

func (s *Store) GetReport(_ context.Context, id string) (report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports.get(id)
	if !ok {
		return report.Report{}, storage.ErrNotFound
	}
	return r, nil
}

func (s *Store) ListReportsByUser(_ context.Context, userID string) ([]report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.reports.scan(func(r report.Report) bool {
		return r.UserID == userID
	}, storage.QueryOptions{}), nil
}

// DeleteItem removes a record of any kind by id. Unknown kinds fail with a
// configuration error from ParseKind callers; here the kind is already typed,
// so an unknown value indicates a programmer error.
func (s *Store) DeleteItem(_ context.Context, kind storage.Kind, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case storage.KindUsers:
		return s.users.remove(id), nil
	case storage.KindRobots:
		return s.robots.remove(id), nil
	case storage.KindFarms:
		return s.farms.remove(id), nil
	case storage.KindSessions:
		return s.sessions.remove(id), nil
	case storage.KindAlerts:
		return s.alerts.remove(id), nil
	case storage.KindMissions:
		return s.missions.remove(id), nil
	case storage.KindMaintenance:
		return s.maintenance.remove(id), nil
	case storage.KindReports:
		return s.reports.remove(id), nil
	default:
		return false, apperr.Configuration("unknown resource kind: " + string(kind))
	}
}
