// Package user defines the account model for mobile app users.
package user

import "time"

// Role classifies a user account.
type Role string

const (
	RoleFarmer     Role = "farmer"
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "technician"
)

// GeoPoint is a coordinate with an optional street address.
type GeoPoint struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	Address   string  `json:"address,omitempty" yaml:"address,omitempty"`
}

// Preferences holds per-user app settings.
type Preferences struct {
	Notifications bool   `json:"notifications" yaml:"notifications"`
	Language      string `json:"language" yaml:"language"`
	Units         string `json:"units" yaml:"units"` // "metric" or "imperial"
}

// DefaultPreferences returns the preferences assigned at registration.
func DefaultPreferences() Preferences {
	return Preferences{Notifications: true, Language: "en", Units: "metric"}
}

// User is an account record. PasswordHash never crosses the wire.
type User struct {
	ID           string      `json:"id" yaml:"id"`
	Email        string      `json:"email" yaml:"email"`
	PasswordHash string      `json:"-" yaml:"-"`
	Name         string      `json:"name" yaml:"name"`
	PhoneNumber  string      `json:"phoneNumber,omitempty" yaml:"phoneNumber,omitempty"`
	FarmName     string      `json:"farmName,omitempty" yaml:"farmName,omitempty"`
	FarmLocation *GeoPoint   `json:"farmLocation,omitempty" yaml:"farmLocation,omitempty"`
	Role         Role        `json:"role" yaml:"role"`
	IsVerified   bool        `json:"isVerified" yaml:"isVerified"`
	Preferences  Preferences `json:"preferences" yaml:"preferences"`
	CreatedAt    time.Time   `json:"createdAt" yaml:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt" yaml:"updatedAt"`
	LastLoginAt  *time.Time  `json:"lastLoginAt,omitempty" yaml:"lastLoginAt,omitempty"`
}

// Patch carries a partial user update; nil fields are left untouched.
type Patch struct {
	Name        *string      `json:"name,omitempty"`
	PhoneNumber *string      `json:"phoneNumber,omitempty"`
	FarmName    *string      `json:"farmName,omitempty"`
	FarmLocation *GeoPoint   `json:"farmLocation,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
	LastLoginAt *time.Time   `json:"-"`
}

// Apply merges the patch into u.
func (p Patch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = *p.PhoneNumber
	}
	if p.FarmName != nil {
		u.FarmName = *p.FarmName
	}
	if p.FarmLocation != nil {
		loc := *p.FarmLocation
		u.FarmLocation = &loc
	}
	if p.Preferences != nil {
		u.Preferences = *p.Preferences
	}
	if p.LastLoginAt != nil {
		t := *p.LastLoginAt
		u.LastLoginAt = &t
	}
}
