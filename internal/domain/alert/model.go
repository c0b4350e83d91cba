// Package alert defines events requiring operator acknowledgment.
package alert

import "time"

// Kind classifies an alert by severity class.
type Kind string

const (
	KindError    Kind = "error"
	KindWarning  Kind = "warning"
	KindInfo     Kind = "info"
	KindCritical Kind = "critical"
)

// Category names the subsystem an alert originates from.
type Category string

const (
	CategoryBattery    Category = "battery"
	CategoryMechanical Category = "mechanical"
	CategorySensor     Category = "sensor"
	CategoryNavigation Category = "navigation"
	CategoryNetwork    Category = "network"
	CategoryTask       Category = "task"
)

// Alert is an event owned by a user, optionally tied to a robot or session.
type Alert struct {
	ID             string         `json:"id" yaml:"id"`
	UserID         string         `json:"userId" yaml:"userId"`
	RobotID        string         `json:"robotId,omitempty" yaml:"robotId,omitempty"`
	SessionID      string         `json:"sessionId,omitempty" yaml:"sessionId,omitempty"`
	Kind           Kind           `json:"type" yaml:"type"`
	Category       Category       `json:"category" yaml:"category"`
	Title          string         `json:"title" yaml:"title"`
	Message        string         `json:"message" yaml:"message"`
	Details        map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
	Severity       int            `json:"severity" yaml:"severity"` // 1 (lowest) to 5
	Timestamp      time.Time      `json:"timestamp" yaml:"timestamp"`
	Acknowledged   bool           `json:"acknowledged" yaml:"acknowledged"`
	AcknowledgedAt *time.Time     `json:"acknowledgedAt,omitempty" yaml:"acknowledgedAt,omitempty"`
	AcknowledgedBy string         `json:"acknowledgedBy,omitempty" yaml:"acknowledgedBy,omitempty"`
	Resolved       bool           `json:"resolved" yaml:"resolved"`
	ResolvedAt     *time.Time     `json:"resolvedAt,omitempty" yaml:"resolvedAt,omitempty"`
	ActionTaken    string         `json:"actionTaken,omitempty" yaml:"actionTaken,omitempty"`
	UpdatedAt      time.Time      `json:"updatedAt" yaml:"updatedAt"`
}

// Patch carries a partial alert update.
type Patch struct {
	Acknowledged   *bool      `json:"acknowledged,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt,omitempty"`
	AcknowledgedBy *string    `json:"acknowledgedBy,omitempty"`
	Resolved       *bool      `json:"resolved,omitempty"`
	ResolvedAt     *time.Time `json:"resolvedAt,omitempty"`
	ActionTaken    *string    `json:"actionTaken,omitempty"`
}

// Apply merges the patch into a.
func (p Patch) Apply(a *Alert) {
	if p.Acknowledged != nil {
		a.Acknowledged = *p.Acknowledged
	}
	if p.AcknowledgedAt != nil {
		t := *p.AcknowledgedAt
		a.AcknowledgedAt = &t
	}
	if p.AcknowledgedBy != nil {
		a.AcknowledgedBy = *p.AcknowledgedBy
	}
	if p.Resolved != nil {
		a.Resolved = *p.Resolved
	}
	if p.ResolvedAt != nil {
		t := *p.ResolvedAt
		a.ResolvedAt = &t
	}
	if p.ActionTaken != nil {
		a.ActionTaken = *p.ActionTaken
	}
}
