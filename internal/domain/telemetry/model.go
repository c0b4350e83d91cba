// Package telemetry defines the sensor reading model appended per robot.
package telemetry

import "time"

// Location is a GPS fix attached to a reading.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Accuracy  float64 `json:"accuracy"`
}

// SoilNPK holds macro-nutrient measurements.
type SoilNPK struct {
	Nitrogen   float64 `json:"nitrogen"`
	Phosphorus float64 `json:"phosphorus"`
	Potassium  float64 `json:"potassium"`
}

// SensorReading is one time-series sample from a robot. Per-robot retention is
// bounded; see the store contract.
type SensorReading struct {
	ID               string    `json:"id"`
	RobotID          string    `json:"robotId"`
	SessionID        string    `json:"sessionId,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
	Temperature      float64   `json:"temperature"`
	Humidity         float64   `json:"humidity"`
	SoilMoisture     float64   `json:"soilMoisture"`
	SoilPH           *float64  `json:"soilPH,omitempty"`
	SoilNPK          *SoilNPK  `json:"soilNPK,omitempty"`
	LightIntensity   *float64  `json:"lightIntensity,omitempty"`
	Location         Location  `json:"location"`
	BatteryLevel     float64   `json:"batteryLevel"`
	BatteryVoltage   float64   `json:"batteryVoltage"`
	SignalStrength   float64   `json:"signalStrength"`
	MotorTemperature *float64  `json:"motorTemperature,omitempty"`
}
