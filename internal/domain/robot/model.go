// Package robot defines the device registration model and the command set
// accepted by the robot-command procedure.
package robot

import "time"

// Status reflects a robot's registration state.
type Status string

const (
	StatusActive      Status = "active"
	StatusInactive    Status = "inactive"
	StatusMaintenance Status = "maintenance"
	StatusError       Status = "error"
)

// Command is an operator instruction forwarded to the device link. The set is
// closed; anything else is a validation failure and is never forwarded.
type Command string

const (
	CommandStart         Command = "start"
	CommandStop          Command = "stop"
	CommandPause         Command = "pause"
	CommandResume        Command = "resume"
	CommandEmergencyStop Command = "emergency_stop"
	CommandReturnHome    Command = "return_home"
)

// ValidCommand reports whether c is in the accepted command set.
func ValidCommand(c Command) bool {
	switch c {
	case CommandStart, CommandStop, CommandPause, CommandResume,
		CommandEmergencyStop, CommandReturnHome:
		return true
	}
	return false
}

// Robot is a registered device owned by a user.
type Robot struct {
	ID                string     `json:"id" yaml:"id"`
	UserID            string     `json:"userId" yaml:"userId"`
	FarmID            string     `json:"farmId,omitempty" yaml:"farmId,omitempty"`
	Name              string     `json:"name" yaml:"name"`
	SerialNumber      string     `json:"serialNumber" yaml:"serialNumber"`
	Model             string     `json:"model" yaml:"model"`
	FirmwareVersion   string     `json:"firmwareVersion" yaml:"firmwareVersion"`
	Status            Status     `json:"status" yaml:"status"`
	RegisteredAt      time.Time  `json:"registeredAt" yaml:"registeredAt"`
	UpdatedAt         time.Time  `json:"updatedAt" yaml:"updatedAt"`
	LastMaintenanceAt *time.Time `json:"lastMaintenanceAt,omitempty" yaml:"lastMaintenanceAt,omitempty"`
	NextMaintenanceAt *time.Time `json:"nextMaintenanceAt,omitempty" yaml:"nextMaintenanceAt,omitempty"`
	TotalHoursOperated float64   `json:"totalHoursOperated" yaml:"totalHoursOperated"`
	TotalAreaCovered   float64   `json:"totalAreaCovered" yaml:"totalAreaCovered"`
	TotalSeedsPlanted  int64     `json:"totalSeedsPlanted" yaml:"totalSeedsPlanted"`
}

// Patch carries a partial robot update.
type Patch struct {
	Name              *string    `json:"name,omitempty"`
	FarmID            *string    `json:"farmId,omitempty"`
	FirmwareVersion   *string    `json:"firmwareVersion,omitempty"`
	Status            *Status    `json:"status,omitempty"`
	LastMaintenanceAt *time.Time `json:"-"`
	NextMaintenanceAt *time.Time `json:"-"`
}

// Apply merges the patch into r.
func (p Patch) Apply(r *Robot) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.FarmID != nil {
		r.FarmID = *p.FarmID
	}
	if p.FirmwareVersion != nil {
		r.FirmwareVersion = *p.FirmwareVersion
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.LastMaintenanceAt != nil {
		t := *p.LastMaintenanceAt
		r.LastMaintenanceAt = &t
	}
	if p.NextMaintenanceAt != nil {
		t := *p.NextMaintenanceAt
		r.NextMaintenanceAt = &t
	}
}
