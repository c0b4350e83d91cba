// Package farm defines the field model robots operate on.
package farm

import (
	"time"

	"github.com/seedbotics/fieldgate/internal/domain/user"
)

// Farm is a bounded field owned by a user.
type Farm struct {
	ID         string          `json:"id" yaml:"id"`
	UserID     string          `json:"userId" yaml:"userId"`
	Name       string          `json:"name" yaml:"name"`
	Location   user.GeoPoint   `json:"location" yaml:"location"`
	Area       float64         `json:"area" yaml:"area"`
	Boundaries []user.GeoPoint `json:"boundaries,omitempty" yaml:"boundaries,omitempty"`
	CropType   string          `json:"cropType,omitempty" yaml:"cropType,omitempty"`
	SoilType   string          `json:"soilType,omitempty" yaml:"soilType,omitempty"`
	CreatedAt  time.Time       `json:"createdAt" yaml:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt" yaml:"updatedAt"`
}
