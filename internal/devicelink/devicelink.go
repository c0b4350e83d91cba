// Package devicelink brokers communication with robots in the field: command
// publication, device shadows and live event streams. The mock implementation
// backs development and tests; the cloud implementation is selected by
// deployment configuration.
package devicelink

import (
	"context"
	"time"

	"github.com/seedbotics/fieldgate/internal/domain/robot"
)

// Shadow is the last reported device state for a robot.
type Shadow struct {
	RobotID        string         `json:"robotId"`
	Connected      bool           `json:"connected"`
	Status         robot.Status   `json:"status"`
	BatteryLevel   float64        `json:"batteryLevel"`
	SignalStrength float64        `json:"signalStrength"`
	Latitude       float64        `json:"latitude"`
	Longitude      float64        `json:"longitude"`
	Reported       map[string]any `json:"reported,omitempty"`
	LastSeenAt     time.Time      `json:"lastSeenAt"`
}

// Event is a message fanned out to stream subscribers for a robot.
type Event struct {
	RobotID   string         `json:"robotId"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

const (
	EventCommand   = "command"
	EventTelemetry = "telemetry"
	EventShadow    = "shadow"
)

// Link is the robot communication broker.
type Link interface {
	// Connect registers a robot as reachable.
	Connect(ctx context.Context, robotID string) error
	// Disconnect marks a robot unreachable.
	Disconnect(ctx context.Context, robotID string) error
	// Connected reports reachability.
	Connected(ctx context.Context, robotID string) (bool, error)
	// PublishCommand sends a command downstream and returns its delivery id.
	PublishCommand(ctx context.Context, robotID string, cmd robot.Command, params map[string]any) (string, error)
	// Shadow returns the last reported device state.
	Shadow(ctx context.Context, robotID string) (Shadow, error)
	// ReportState merges a reported state update into the robot's shadow.
	ReportState(ctx context.Context, robotID string, reported map[string]any) error
	// Subscribe streams events for a robot until the cancel func is called.
	Subscribe(ctx context.Context, robotID string) (<-chan Event, func(), error)
}
