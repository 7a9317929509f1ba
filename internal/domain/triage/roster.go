package triage

import (
	"fmt"
	"strings"
)

// Roster is the in-memory collection of patients in registration order and
// the unit of persistence.
type Roster struct {
	patients []*Patient
	byID     map[string]*Patient
}

// NewRoster returns an empty roster.
func NewRoster() *Roster {
	return &Roster{byID: make(map[string]*Patient)}
}

// Add appends p. Identity numbers are unique within a roster.
func (r *Roster) Add(p *Patient) error {
	if _, ok := r.byID[p.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicatePatient, p.ID)
	}
	r.patients = append(r.patients, p)
	r.byID[p.ID] = p
	return nil
}

// Find returns the patient with the given identity number.
func (r *Roster) Find(id string) (*Patient, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// SearchByName returns every patient whose name contains fragment,
// ignoring case, in registration order.
func (r *Roster) SearchByName(fragment string) []*Patient {
	needle := strings.ToLower(strings.TrimSpace(fragment))
	if needle == "" {
		return nil
	}
	var result []*Patient
	for _, p := range r.patients {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			result = append(result, p)
		}
	}
	return result
}

// Urgent returns the patients whose most recent attention is urgent.
func (r *Roster) Urgent() []*Patient {
	var result []*Patient
	for _, p := range r.patients {
		if p.IsUrgent() {
			result = append(result, p)
		}
	}
	return result
}

// Patients returns a copy of all patients in registration order.
func (r *Roster) Patients() []*Patient {
	out := make([]*Patient, len(r.patients))
	copy(out, r.patients)
	return out
}

func (r *Roster) Len() int {
	return len(r.patients)
}
