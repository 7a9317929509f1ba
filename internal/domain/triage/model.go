package triage

import (
	"github.com/google/uuid"
)

// TimestampLayout is the clinic's DD-MM-YYYY HH:MM format used for every
// persisted timestamp.
const TimestampLayout = "02-01-2006 15:04"

// Sex of a registered patient.
type Sex string

const (
	SexMale   Sex = "Male"
	SexFemale Sex = "Female"
)

func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

// Consciousness is the AVPU level recorded at triage.
type Consciousness string

const (
	ConsciousnessAlert        Consciousness = "Alert"
	ConsciousnessVerbal       Consciousness = "Verbal"
	ConsciousnessPain         Consciousness = "Pain"
	ConsciousnessUnresponsive Consciousness = "Unresponsive"
)

// ConsciousnessLevels lists the AVPU scale in order.
var ConsciousnessLevels = []Consciousness{
	ConsciousnessAlert,
	ConsciousnessVerbal,
	ConsciousnessPain,
	ConsciousnessUnresponsive,
}

func (c Consciousness) Valid() bool {
	for _, lvl := range ConsciousnessLevels {
		if c == lvl {
			return true
		}
	}
	return false
}

// BMIClass is the body-mass-index band of an attention.
type BMIClass string

const (
	BMIUnderweight BMIClass = "Underweight"
	BMINormal      BMIClass = "Normal"
	BMIOverweight  BMIClass = "Overweight"
	BMIObese       BMIClass = "Obese"
	BMIHeightError BMIClass = "Height-Error"
)

// BMIClasses lists every band, including the height-error bucket, in
// reporting order.
var BMIClasses = []BMIClass{
	BMIUnderweight,
	BMINormal,
	BMIOverweight,
	BMIObese,
	BMIHeightError,
}

func (c BMIClass) Valid() bool {
	for _, b := range BMIClasses {
		if c == b {
			return true
		}
	}
	return false
}

// Urgency is the binary triage outcome. The zero value means "not yet
// classified".
type Urgency string

const (
	UrgencyNormal Urgency = "Normal"
	UrgencyUrgent Urgency = "Urgent"
)

// UrgencyLevels lists the outcomes in reporting order.
var UrgencyLevels = []Urgency{UrgencyUrgent, UrgencyNormal}

func (u Urgency) Valid() bool {
	return u == UrgencyNormal || u == UrgencyUrgent
}

// Bracket selects the urgency policy applied to a patient.
type Bracket string

const (
	BracketStandard Bracket = "standard"
	BracketElder    Bracket = "elder"
)

// Vitals is the raw measurement set supplied for one triage encounter.
type Vitals struct {
	WeightKg         float64       `json:"weight_kg"`
	HeightCm         float64       `json:"height_cm"`
	SystolicPressure float64       `json:"systolic_pressure"`
	HeartRate        int           `json:"heart_rate"`
	Consciousness    Consciousness `json:"consciousness"`
	OxygenSaturation int           `json:"oxygen_saturation"`
}

// Attention is one triage encounter: the measured vitals plus the derived
// BMI and urgency outcome.
type Attention struct {
	ID uuid.UUID `json:"id"`
	Vitals
	BMI          float64  `json:"bmi"`
	BMIClass     BMIClass `json:"bmi_class"`
	UrgencyLevel Urgency  `json:"urgency_level"`
	Timestamp    string   `json:"timestamp"`
}

// IsUrgent reports whether the attention has been classified as urgent.
func (a *Attention) IsUrgent() bool {
	return a.UrgencyLevel == UrgencyUrgent
}

// PersonalDetails are the demographic fields needed to register a patient
// the first time their identity number is seen.
type PersonalDetails struct {
	Name string
	Age  int
	Sex  Sex
}

// Patient is a registered person and their ordered attention history.
type Patient struct {
	ID           string
	Name         string
	Age          int
	Sex          Sex
	RegisteredAt string
	Bracket      Bracket

	history []*Attention
}
