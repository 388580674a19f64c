package models

// Sensor is an immutable catalog entry describing a measurement source.
type Sensor struct {
	ID   string `json:"id"   yaml:"id"   validate:"required"`
	Name string `json:"name" yaml:"name" validate:"required"`
	Unit string `json:"unit" yaml:"unit"`
}

// Well-known sensor ids that a FieldReading can supply values for.
const (
	SensorSoilTemperature = "temp_soil"
	SensorSoilMoisture    = "humidity_soil"
	SensorSoilPh          = "ph_soil"
)
