// Package report defines generated summary documents.
package report

import "time"

// Kind names the reporting period or trigger.
type Kind string

const (
	KindDaily   Kind = "daily"
	KindWeekly  Kind = "weekly"
	KindMonthly Kind = "monthly"
	KindSession Kind = "session"
	KindCustom  Kind = "custom"
)

// ValidKind reports whether k is a known report kind.
func ValidKind(k Kind) bool {
	switch k {
	case KindDaily, KindWeekly, KindMonthly, KindSession, KindCustom:
		return true
	}
	return false
}

// Metrics aggregates the measured quantities a report covers.
type Metrics struct {
	AreaCovered   float64 `json:"areaCovered,omitempty"`
	SeedsPlanted  int64   `json:"seedsPlanted,omitempty"`
	HoursOperated float64 `json:"hoursOperated,omitempty"`
	AverageSpeed  float64 `json:"averageSpeed,omitempty"`
	AlertsCount   int     `json:"alertsCount,omitempty"`
	SuccessRate   float64 `json:"successRate,omitempty"`
	SessionsCount int     `json:"sessionsCount,omitempty"`
}

// Report is a generated document owned by a user. FileURL points at the stored
// rendering when one was uploaded.
type Report struct {
	ID          string         `json:"id" yaml:"id"`
	UserID      string         `json:"userId" yaml:"userId"`
	FarmID      string         `json:"farmId,omitempty" yaml:"farmId,omitempty"`
	RobotID     string         `json:"robotId,omitempty" yaml:"robotId,omitempty"`
	Kind        Kind           `json:"type" yaml:"type"`
	Title       string         `json:"title" yaml:"title"`
	GeneratedAt time.Time      `json:"generatedAt" yaml:"generatedAt"`
	PeriodStart time.Time      `json:"periodStart" yaml:"periodStart"`
	PeriodEnd   time.Time      `json:"periodEnd" yaml:"periodEnd"`
	Metrics     Metrics        `json:"metrics" yaml:"metrics"`
	Data        map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
	FileURL     string         `json:"fileUrl,omitempty" yaml:"fileUrl,omitempty"`
	UpdatedAt   time.Time      `json:"updatedAt" yaml:"updatedAt"`
}
