package storage

import (
	"github.com/google/uuid"

	"github.com/seedbotics/fieldgate/internal/apperr"
)

// Kind tags a store-addressable resource type. The set is closed; dispatching
// on an unknown kind is a deployment/programmer error, not a runtime condition.
type Kind string

const (
	KindUsers       Kind = "users"
	KindRobots      Kind = "robots"
	KindFarms       Kind = "farms"
	KindSessions    Kind = "sessions"
	KindAlerts      Kind = "alerts"
	KindMissions    Kind = "missions"
	KindMaintenance Kind = "maintenance"
	KindReports     Kind = "reports"
)

// Kinds lists every addressable resource kind.
func Kinds() []Kind {
	return []Kind{
		KindUsers, KindRobots, KindFarms, KindSessions,
		KindAlerts, KindMissions, KindMaintenance, KindReports,
	}
}

// ParseKind validates a resource-kind tag at the boundary.
func ParseKind(raw string) (Kind, error) {
	k := Kind(raw)
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", apperr.Configuration("unknown resource kind: " + raw)
}

// NewID mints a prefixed record identifier.
func NewID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}
