package triage

import (
	"math"

	"github.com/google/uuid"
)

// Bounds for the vitals accepted at construction. All ranges are inclusive.
const (
	MinWeightKg   = 0.0
	MaxWeightKg   = 200.0
	MinHeightCm   = 100.0
	MaxHeightCm   = 250.0
	MinPressure   = 0.0
	MaxPressure   = 200.0
	MinHeartRate  = 0
	MaxHeartRate  = 200
	MinSaturation = 0
	MaxSaturation = 100
)

// NewAttention validates v and returns a new attention with its BMI
// computed. The urgency level is left empty until a patient classifies it.
func NewAttention(v Vitals, timestamp string) (*Attention, error) {
	if err := validateVitals(v); err != nil {
		return nil, err
	}
	bmi, class := ComputeBMI(v.WeightKg, v.HeightCm)
	return &Attention{
		ID:        uuid.New(),
		Vitals:    v,
		BMI:       bmi,
		BMIClass:  class,
		Timestamp: timestamp,
	}, nil
}

func validateVitals(v Vitals) error {
	if !inRange(v.WeightKg, MinWeightKg, MaxWeightKg) {
		return invalidField("weight_kg", "must be between %g and %g kg, got %g", MinWeightKg, MaxWeightKg, v.WeightKg)
	}
	if v.HeightCm > 0 && v.HeightCm < MinHeightCm {
		return invalidField("height_cm", "%g looks like metres; enter the height in centimetres (%g to %g)", v.HeightCm, MinHeightCm, MaxHeightCm)
	}
	if !inRange(v.HeightCm, MinHeightCm, MaxHeightCm) {
		return invalidField("height_cm", "must be between %g and %g cm, got %g", MinHeightCm, MaxHeightCm, v.HeightCm)
	}
	if !inRange(v.SystolicPressure, MinPressure, MaxPressure) {
		return invalidField("systolic_pressure", "must be between %g and %g mmHg, got %g", MinPressure, MaxPressure, v.SystolicPressure)
	}
	if v.HeartRate < MinHeartRate || v.HeartRate > MaxHeartRate {
		return invalidField("heart_rate", "must be between %d and %d bpm, got %d", MinHeartRate, MaxHeartRate, v.HeartRate)
	}
	if v.OxygenSaturation < MinSaturation || v.OxygenSaturation > MaxSaturation {
		return invalidField("oxygen_saturation", "must be between %d and %d %%, got %d", MinSaturation, MaxSaturation, v.OxygenSaturation)
	}
	if !v.Consciousness.Valid() {
		return invalidField("consciousness", "must be one of Alert, Verbal, Pain, Unresponsive, got %q", v.Consciousness)
	}
	return nil
}

// inRange is false for NaN.
func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

// ComputeBMI returns weight / height(m)^2 rounded to two decimals and its
// band. A zero height yields (0, BMIHeightError).
func ComputeBMI(weightKg, heightCm float64) (float64, BMIClass) {
	if heightCm == 0 {
		return 0, BMIHeightError
	}
	heightM := heightCm / 100
	bmi := round(weightKg/(heightM*heightM), 2)

	switch {
	case bmi < 18.5:
		return bmi, BMIUnderweight
	case bmi < 25:
		return bmi, BMINormal
	case bmi < 30:
		return bmi, BMIOverweight
	default:
		return bmi, BMIObese
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
