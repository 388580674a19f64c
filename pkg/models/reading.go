package models

import "time"

// FieldReading is the latest known sensor snapshot for a physical field.
type FieldReading struct {
	FieldID         string    `json:"field_id"         yaml:"field_id"         validate:"required"`
	Name            string    `json:"name"             yaml:"name"`
	CurrentTemp     float64   `json:"current_temp"     yaml:"current_temp"`
	CurrentMoisture float64   `json:"current_moisture" yaml:"current_moisture"`
	CurrentPh       float64   `json:"current_ph"       yaml:"current_ph"`
	ObservedAt      time.Time `json:"observed_at"      yaml:"observed_at"`
}

// SensorValue returns the reading value a sensor of the given id would report
// for this field. Only soil sensors are backed by a field reading.
func (r FieldReading) SensorValue(sensorID string) (float64, bool) {
	switch sensorID {
	case SensorSoilTemperature:
		return r.CurrentTemp, true
	case SensorSoilMoisture:
		return r.CurrentMoisture, true
	case SensorSoilPh:
		return r.CurrentPh, true
	default:
		return 0, false
	}
}
