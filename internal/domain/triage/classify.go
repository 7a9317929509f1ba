package triage

// DefaultElderAge is the age from which a patient is triaged with the elder
// thresholds.
const DefaultElderAge = 65

// BracketFor returns the urgency policy for a patient of the given age.
func BracketFor(age, elderAge int) Bracket {
	if age >= elderAge {
		return BracketElder
	}
	return BracketStandard
}

// Classify applies the bracket's thresholds to v. It has no side effects.
func Classify(v Vitals, b Bracket) Urgency {
	var urgent bool
	switch b {
	case BracketElder:
		urgent = v.SystolicPressure < 100 || v.SystolicPressure > 160 ||
			v.HeartRate < 55 || v.HeartRate > 110 ||
			v.OxygenSaturation < 94 ||
			v.Consciousness != ConsciousnessAlert
	default:
		urgent = v.SystolicPressure < 90 || v.SystolicPressure > 180 ||
			v.HeartRate > 100 ||
			v.OxygenSaturation < 92 ||
			v.Consciousness != ConsciousnessAlert
	}
	if urgent {
		return UrgencyUrgent
	}
	return UrgencyNormal
}
