// Package mission defines scheduled robot work orders.
package mission

import (
	"time"

	"github.com/seedbotics/fieldgate/internal/domain/user"
)

// Kind names the work a mission performs.
type Kind string

const (
	KindPlanting  Kind = "planting"
	KindWatering  Kind = "watering"
	KindWeeding   Kind = "weeding"
	KindPesticide Kind = "pesticide"
	KindSurvey    Kind = "survey"
)

// ValidKind reports whether k is a known mission kind.
func ValidKind(k Kind) bool {
	switch k {
	case KindPlanting, KindWatering, KindWeeding, KindPesticide, KindSurvey:
		return true
	}
	return false
}

// Status is the lifecycle state of a mission.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusQueued     Status = "queued"
	StatusInProgress Status = "in_progress"
	StatusPaused     Status = "paused"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusFailed     Status = "failed"
)

// Terminal reports whether a mission in status s can no longer change.
func Terminal(s Status) bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusFailed
}

// Priority orders competing missions.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Waypoint is one stop along a mission route.
type Waypoint struct {
	user.GeoPoint `yaml:",inline"`
	Action        string         `json:"action,omitempty" yaml:"action,omitempty"`
	Params        map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// Mission is a scheduled unit of robot work owned by a user.
type Mission struct {
	ID             string         `json:"id" yaml:"id"`
	UserID         string         `json:"userId" yaml:"userId"`
	RobotID        string         `json:"robotId" yaml:"robotId"`
	FarmID         string         `json:"farmId" yaml:"farmId"`
	Kind           Kind           `json:"type" yaml:"type"`
	Status         Status         `json:"status" yaml:"status"`
	Priority       Priority       `json:"priority" yaml:"priority"`
	ScheduledStart time.Time      `json:"scheduledStart" yaml:"scheduledStart"`
	ActualStart    *time.Time     `json:"actualStart,omitempty" yaml:"actualStart,omitempty"`
	EstimatedEnd   *time.Time     `json:"estimatedEnd,omitempty" yaml:"estimatedEnd,omitempty"`
	ActualEnd      *time.Time     `json:"actualEnd,omitempty" yaml:"actualEnd,omitempty"`
	Waypoints      []Waypoint     `json:"waypoints" yaml:"waypoints"`
	Progress       float64        `json:"progress" yaml:"progress"`
	Parameters     map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	CreatedAt      time.Time      `json:"createdAt" yaml:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt" yaml:"updatedAt"`
}

// Patch carries a partial mission update.
type Patch struct {
	Status      *Status    `json:"status,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	Progress    *float64   `json:"progress,omitempty"`
	ActualStart *time.Time `json:"actualStart,omitempty"`
	ActualEnd   *time.Time `json:"actualEnd,omitempty"`
}

// Apply merges the patch into m.
func (p Patch) Apply(m *Mission) {
	if p.Status != nil {
		m.Status = *p.Status
	}
	if p.Priority != nil {
		m.Priority = *p.Priority
	}
	if p.Progress != nil {
		m.Progress = *p.Progress
	}
	if p.ActualStart != nil {
		t := *p.ActualStart
		m.ActualStart = &t
	}
	if p.ActualEnd != nil {
		t := *p.ActualEnd
		m.ActualEnd = &t
	}
}
