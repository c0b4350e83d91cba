// Package maintenance defines robot service history records.
package maintenance

import "time"

// Kind classifies a maintenance entry.
type Kind string

const (
	KindScheduled  Kind = "scheduled"
	KindRepair     Kind = "repair"
	KindInspection Kind = "inspection"
	KindUpgrade    Kind = "upgrade"
)

// ValidKind reports whether k is a known maintenance kind.
func ValidKind(k Kind) bool {
	switch k {
	case KindScheduled, KindRepair, KindInspection, KindUpgrade:
		return true
	}
	return false
}

// Log is one maintenance event for a robot, owned by a user.
type Log struct {
	ID                  string     `json:"id" yaml:"id"`
	RobotID             string     `json:"robotId" yaml:"robotId"`
	UserID              string     `json:"userId" yaml:"userId"`
	Kind                Kind       `json:"type" yaml:"type"`
	Title               string     `json:"title" yaml:"title"`
	Description         string     `json:"description" yaml:"description"`
	PartsReplaced       []string   `json:"partsReplaced,omitempty" yaml:"partsReplaced,omitempty"`
	TechnicianName      string     `json:"technicianName,omitempty" yaml:"technicianName,omitempty"`
	Cost                float64    `json:"cost,omitempty" yaml:"cost,omitempty"`
	Timestamp           time.Time  `json:"timestamp" yaml:"timestamp"`
	NextMaintenanceDate *time.Time `json:"nextMaintenanceDate,omitempty" yaml:"nextMaintenanceDate,omitempty"`
	Attachments         []string   `json:"attachments,omitempty" yaml:"attachments,omitempty"`
	UpdatedAt           time.Time  `json:"updatedAt" yaml:"updatedAt"`
}
