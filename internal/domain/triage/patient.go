package triage

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NewPatient validates the identity number and personal details and returns
// a patient with an empty history. The age bracket is fixed here.
func NewPatient(id string, d PersonalDetails, registeredAt string, elderAge int) (*Patient, error) {
	validID, err := ValidateID(id)
	if err != nil {
		return nil, err
	}
	name := NormalizeName(d.Name)
	if name == "" {
		return nil, invalidField("name", "must not be empty")
	}
	if d.Age < 0 {
		return nil, invalidField("age", "must not be negative, got %d", d.Age)
	}
	if !d.Sex.Valid() {
		return nil, invalidField("sex", "must be Male or Female, got %q", d.Sex)
	}
	return &Patient{
		ID:           validID,
		Name:         name,
		Age:          d.Age,
		Sex:          d.Sex,
		RegisteredAt: registeredAt,
		Bracket:      BracketFor(d.Age, elderAge),
	}, nil
}

// NormalizeName trims, collapses inner whitespace and title-cases a name.
func NormalizeName(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	return cases.Title(language.Und).String(strings.Join(fields, " "))
}

// AddAttention appends a to the history. The most recent attention is
// always the last one.
func (p *Patient) AddAttention(a *Attention) {
	p.history = append(p.history, a)
}

// Classify sets a's urgency using this patient's bracket and returns it.
func (p *Patient) Classify(a *Attention) Urgency {
	a.UrgencyLevel = Classify(a.Vitals, p.Bracket)
	return a.UrgencyLevel
}

// LastAttention returns the most recent attention, or nil when the history
// is empty.
func (p *Patient) LastAttention() *Attention {
	if len(p.history) == 0 {
		return nil
	}
	return p.history[len(p.history)-1]
}

// History returns a copy of the attention history in chronological order.
func (p *Patient) History() []*Attention {
	out := make([]*Attention, len(p.history))
	copy(out, p.history)
	return out
}

// IsUrgent reports whether the most recent attention is urgent.
func (p *Patient) IsUrgent() bool {
	last := p.LastAttention()
	return last != nil && last.IsUrgent()
}
