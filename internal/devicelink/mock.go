package devicelink

import (
	"context"
	"sync"
	"time"

	"github.com/seedbotics/fieldgate/internal/domain/robot"
	"github.com/seedbotics/fieldgate/internal/storage"
	"github.com/seedbotics/fieldgate/pkg/logger"
)

// Mock is an in-process Link. Commands are acknowledged immediately, shadows
// are synthesized from reported state, and events fan out to all subscribers
// of the robot.
type Mock struct {
	mu          sync.RWMutex
	log         *logger.Logger
	connections map[string]bool
	shadows     map[string]Shadow
	subscribers map[string]map[int]chan Event
	nextSubID   int
}

var _ Link = (*Mock)(nil)

// NewMock builds an empty mock link.
func NewMock(log *logger.Logger) *Mock {
	if log == nil {
		log = logger.NewDefault("devicelink")
	}
	return &Mock{
		log:         log,
		connections: make(map[string]bool),
		shadows:     make(map[string]Shadow),
		subscribers: make(map[string]map[int]chan Event),
	}
}

func (m *Mock) Connect(_ context.Context, robotID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.connections[robotID] = true
	shadow := m.shadows[robotID]
	shadow.RobotID = robotID
	shadow.Connected = true
	shadow.LastSeenAt = time.Now().UTC()
	if shadow.Status == "" {
		shadow.Status = robot.StatusActive
	}
	if shadow.BatteryLevel == 0 {
		shadow.BatteryLevel = 100
	}
	m.shadows[robotID] = shadow
	m.log.WithField("robot_id", robotID).Debug("robot connected")
	return nil
}

func (m *Mock) Disconnect(_ context.Context, robotID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.connections, robotID)
	if shadow, ok := m.shadows[robotID]; ok {
		shadow.Connected = false
		m.shadows[robotID] = shadow
	}
	m.log.WithField("robot_id", robotID).Debug("robot disconnected")
	return nil
}

func (m *Mock) Connected(_ context.Context, robotID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connections[robotID], nil
}

// PublishCommand acknowledges the command and emits a command event to stream
// subscribers. Publishing implicitly connects the robot, mirroring a broker
// that queues for delivery on next contact.
func (m *Mock) PublishCommand(_ context.Context, robotID string, cmd robot.Command, params map[string]any) (string, error) {
	m.mu.Lock()

	commandID := storage.NewID("cmd")
	m.connections[robotID] = true
	shadow := m.shadows[robotID]
	shadow.RobotID = robotID
	shadow.Connected = true
	shadow.LastSeenAt = time.Now().UTC()
	switch cmd {
	case robot.CommandStart, robot.CommandResume:
		shadow.Status = robot.StatusActive
	case robot.CommandStop, robot.CommandReturnHome:
		shadow.Status = robot.StatusInactive
	case robot.CommandEmergencyStop:
		shadow.Status = robot.StatusError
	}
	m.shadows[robotID] = shadow

	payload := map[string]any{"commandId": commandID, "command": string(cmd)}
	for k, v := range params {
		payload[k] = v
	}
	m.mu.Unlock()

	m.emit(Event{RobotID: robotID, Type: EventCommand, Payload: payload, Timestamp: time.Now().UTC()})
	m.log.WithFields(map[string]any{"robot_id": robotID, "command": cmd}).Info("command published")
	return commandID, nil
}

func (m *Mock) Shadow(_ context.Context, robotID string) (Shadow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	shadow, ok := m.shadows[robotID]
	if !ok {
		return Shadow{RobotID: robotID, Status: robot.StatusInactive}, nil
	}
	return shadow, nil
}

// ReportState merges the reported fields into the shadow and emits a shadow
// event. Well-known keys update the typed shadow fields.
func (m *Mock) ReportState(_ context.Context, robotID string, reported map[string]any) error {
	m.mu.Lock()

	shadow := m.shadows[robotID]
	shadow.RobotID = robotID
	shadow.Connected = true
	shadow.LastSeenAt = time.Now().UTC()
	if shadow.Reported == nil {
		shadow.Reported = make(map[string]any)
	}
	for k, v := range reported {
		shadow.Reported[k] = v
		switch k {
		case "batteryLevel":
			if f, ok := v.(float64); ok {
				shadow.BatteryLevel = f
			}
		case "signalStrength":
			if f, ok := v.(float64); ok {
				shadow.SignalStrength = f
			}
		case "latitude":
			if f, ok := v.(float64); ok {
				shadow.Latitude = f
			}
		case "longitude":
			if f, ok := v.(float64); ok {
				shadow.Longitude = f
			}
		case "status":
			if s, ok := v.(string); ok {
				shadow.Status = robot.Status(s)
			}
		}
	}
	m.connections[robotID] = true
	m.shadows[robotID] = shadow
	m.mu.Unlock()

	m.emit(Event{RobotID: robotID, Type: EventShadow, Payload: reported, Timestamp: time.Now().UTC()})
	return nil
}

// Subscribe registers a buffered event channel for the robot. The returned
// cancel func must be called to release the subscription; slow consumers drop
// events rather than blocking publishers.
func (m *Mock) Subscribe(_ context.Context, robotID string) (<-chan Event, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan Event, 16)
	if m.subscribers[robotID] == nil {
		m.subscribers[robotID] = make(map[int]chan Event)
	}
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[robotID][id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if sub, ok := m.subscribers[robotID][id]; ok {
			delete(m.subscribers[robotID], id)
			close(sub)
		}
	}
	return ch, cancel, nil
}

func (m *Mock) emit(evt Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, ch := range m.subscribers[evt.RobotID] {
		select {
		case ch <- evt:
		default:
		}
	}
}
