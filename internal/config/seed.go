package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/seedbotics/fieldgate/internal/domain/alert"
	"github.com/seedbotics/fieldgate/internal/domain/farm"
	"github.com/seedbotics/fieldgate/internal/domain/robot"
	"github.com/seedbotics/fieldgate/internal/domain/session"
	"github.com/seedbotics/fieldgate/internal/domain/user"
)

// SeedUser is a fixture account. The plaintext password is hashed at seed time
// and never stored.
type SeedUser struct {
	user.User `yaml:",inline"`
	Password  string `yaml:"password"`
}

// SeedData holds demo fixtures loaded at startup.
type SeedData struct {
	Users    []SeedUser                `yaml:"users"`
	Farms    []farm.Farm               `yaml:"farms"`
	Robots   []robot.Robot             `yaml:"robots"`
	Sessions []session.PlantingSession `yaml:"sessions"`
	Alerts   []alert.Alert             `yaml:"alerts"`
}

// LoadSeedData reads a YAML fixture file.
func LoadSeedData(path string) (*SeedData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var seed SeedData
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	for i, u := range seed.Users {
		if u.ID == "" {
			return nil, fmt.Errorf("seed user %d: id is required", i)
		}
		if u.Email == "" {
			return nil, fmt.Errorf("seed user %s: email is required", u.ID)
		}
	}
	for i, r := range seed.Robots {
		if r.UserID == "" {
			return nil, fmt.Errorf("seed robot %d: userId is required", i)
		}
	}
	return &seed, nil
}

// LoadSeedDataOrDefault loads fixtures from path, falling back to the built-in
// demo dataset when path is empty or unreadable.
func LoadSeedDataOrDefault(path string) *SeedData {
	if path != "" {
		if seed, err := LoadSeedData(path); err == nil {
			return seed
		}
	}
	return DefaultSeedData()
}

// DefaultSeedData returns the built-in demo dataset: one verified account with
// a farm, a robot and an open alert, enough to exercise every procedure.
func DefaultSeedData() *SeedData {
	return &SeedData{
		Users: []SeedUser{
			{
				User: user.User{
					ID:          "user_demo",
					Email:       "demo@seedbotics.io",
					Name:        "Demo Farmer",
					FarmName:    "Greenfield Demo Farm",
					Role:        user.RoleFarmer,
					IsVerified:  true,
					Preferences: user.DefaultPreferences(),
				},
				Password: "demo1234",
			},
		},
		Farms: []farm.Farm{
			{
				ID:     "farm_demo",
				UserID: "user_demo",
				Name:   "Greenfield Demo Farm",
				Area:   12.5,
				Location: user.GeoPoint{
					Latitude:  5.6037,
					Longitude: -0.187,
					Address:   "Accra, Ghana",
				},
			},
		},
		Robots: []robot.Robot{
			{
				ID:              "robot_demo",
				UserID:          "user_demo",
				FarmID:          "farm_demo",
				Name:            "SeedBot Alpha",
				SerialNumber:    "SB-2024-0001",
				Model:           "SB-100",
				FirmwareVersion: "2.1.0",
				Status:          robot.StatusActive,
			},
		},
		Alerts: []alert.Alert{
			{
				ID:       "alert_demo",
				UserID:   "user_demo",
				RobotID:  "robot_demo",
				Kind:     alert.KindWarning,
				Category: alert.CategoryBattery,
				Title:    "Battery below 20%",
				Message:  "SeedBot Alpha reported 18% battery remaining.",
				Severity: 3,
			},
		},
	}
}
