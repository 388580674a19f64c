package models

import (
	"encoding/json"
	"math"
)

// Missing sensor values are carried as NaN in memory and as null on the wire.

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	return &v
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}

	return *v
}

// MarshalJSON renders a missing value as null.
func (a Advisory) MarshalJSON() ([]byte, error) {
	type plain Advisory

	return json.Marshal(struct {
		plain
		Value *float64 `json:"value"`
	}{plain(a), finite(a.Value)})
}

// UnmarshalJSON reads a null value back as NaN.
func (a *Advisory) UnmarshalJSON(data []byte) error {
	type plain Advisory

	aux := struct {
		*plain
		Value *float64 `json:"value"`
	}{plain: (*plain)(a)}

	err := json.Unmarshal(data, &aux)
	if err != nil {
		return err
	}

	a.Value = orNaN(aux.Value)

	return nil
}

// MarshalJSON renders missing values as null.
func (r FieldReading) MarshalJSON() ([]byte, error) {
	type plain FieldReading

	return json.Marshal(struct {
		plain
		CurrentTemp     *float64 `json:"current_temp"`
		CurrentMoisture *float64 `json:"current_moisture"`
		CurrentPh       *float64 `json:"current_ph"`
	}{plain(r), finite(r.CurrentTemp), finite(r.CurrentMoisture), finite(r.CurrentPh)})
}

// UnmarshalJSON reads null or absent values back as NaN.
func (r *FieldReading) UnmarshalJSON(data []byte) error {
	type plain FieldReading

	aux := struct {
		*plain
		CurrentTemp     *float64 `json:"current_temp"`
		CurrentMoisture *float64 `json:"current_moisture"`
		CurrentPh       *float64 `json:"current_ph"`
	}{plain: (*plain)(r)}

	err := json.Unmarshal(data, &aux)
	if err != nil {
		return err
	}

	r.CurrentTemp = orNaN(aux.CurrentTemp)
	r.CurrentMoisture = orNaN(aux.CurrentMoisture)
	r.CurrentPh = orNaN(aux.CurrentPh)

	return nil
}
