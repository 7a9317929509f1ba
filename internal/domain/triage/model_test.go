package triage

import "testing"

func TestEnumValid(t *testing.T) {
	for _, c := range BMIClasses {
		if !c.Valid() {
			t.Errorf("expected %q to be a valid BMI class", c)
		}
	}
	for _, u := range UrgencyLevels {
		if !u.Valid() {
			t.Errorf("expected %q to be a valid urgency level", u)
		}
	}
	for _, c := range ConsciousnessLevels {
		if !c.Valid() {
			t.Errorf("expected %q to be a valid consciousness level", c)
		}
	}

	if BMIClass("Nonsense").Valid() || BMIClass("").Valid() || BMIClass("normal").Valid() {
		t.Error("expected unknown BMI classes to be rejected")
	}
	if Urgency("Bogus").Valid() || Urgency("").Valid() || Urgency("urgent").Valid() {
		t.Error("expected unknown urgency levels to be rejected")
	}
	if Sex("X").Valid() {
		t.Error("expected unknown sex to be rejected")
	}
}
