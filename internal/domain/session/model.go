// Package session defines the planting session model, a bounded unit of work
// tied to a robot and a farm.
package session

import "time"

// Status is the lifecycle state of a planting session.
type Status string

const (
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "in_progress"
	StatusPaused     Status = "paused"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ValidStatus reports whether s is a known session status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusPaused, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Weather captures conditions recorded during a session.
type Weather struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
}

// PlantingSession is one planting run. Ownership is fixed at creation.
type PlantingSession struct {
	ID             string     `json:"id" yaml:"id"`
	UserID         string     `json:"userId" yaml:"userId"`
	RobotID        string     `json:"robotId" yaml:"robotId"`
	FarmID         string     `json:"farmId" yaml:"farmId"`
	CropType       string     `json:"cropType" yaml:"cropType"`
	SeedVariety    string     `json:"seedVariety,omitempty" yaml:"seedVariety,omitempty"`
	TargetArea     float64    `json:"targetArea" yaml:"targetArea"`
	CompletedArea  float64    `json:"completedArea" yaml:"completedArea"`
	TotalSeeds     int64      `json:"totalSeeds" yaml:"totalSeeds"`
	TotalHoles     int64      `json:"totalHoles" yaml:"totalHoles"`
	AverageDepth   float64    `json:"averageDepth" yaml:"averageDepth"`
	AverageSpacing float64    `json:"averageSpacing" yaml:"averageSpacing"`
	StartTime      time.Time  `json:"startTime" yaml:"startTime"`
	EndTime        *time.Time `json:"endTime,omitempty" yaml:"endTime,omitempty"`
	Status         Status     `json:"status" yaml:"status"`
	Weather        *Weather   `json:"weatherConditions,omitempty" yaml:"weatherConditions,omitempty"`
	BatteryUsed    float64    `json:"batteryUsed" yaml:"batteryUsed"`
	Efficiency     float64    `json:"efficiency" yaml:"efficiency"`
	UpdatedAt      time.Time  `json:"updatedAt" yaml:"updatedAt"`
}
