package console

import (
	"fmt"
	"strings"

	"github.com/ehr/triage/internal/domain/triage"
)

// Message writes one formatted line.
func (u *UI) Message(format string, args ...interface{}) {
	fmt.Fprintf(u.out, format+"\n", args...)
}

// Error writes err as a one-line message.
func (u *UI) Error(err error) {
	fmt.Fprintf(u.out, "Error: %v\n", err)
}

// PrintPatient writes the report of p and its most recent attention.
func (u *UI) PrintPatient(p *triage.Patient) {
	fmt.Fprintf(u.out, "Patient %s\n", p.ID)
	fmt.Fprintf(u.out, "  Name:        %s\n", p.Name)
	fmt.Fprintf(u.out, "  Age:         %d (%s)\n", p.Age, p.Bracket)
	fmt.Fprintf(u.out, "  Sex:         %s\n", p.Sex)
	fmt.Fprintf(u.out, "  Registered:  %s\n", orDash(p.RegisteredAt))
	fmt.Fprintf(u.out, "  Attentions:  %d\n", len(p.History()))

	a := p.LastAttention()
	if a == nil {
		fmt.Fprintln(u.out, "  No attentions recorded.")
		return
	}
	fmt.Fprintf(u.out, "  Last attention (%s):\n", orDash(a.Timestamp))
	u.printAttention(a, "    ")
}

func (u *UI) printAttention(a *triage.Attention, indent string) {
	fmt.Fprintf(u.out, "%sWeight %.1f kg  Height %.1f cm  BMI %.2f (%s)\n",
		indent, a.WeightKg, a.HeightCm, a.BMI, a.BMIClass)
	fmt.Fprintf(u.out, "%sPressure %.0f mmHg  Heart rate %d bpm  Saturation %d%%  Consciousness %s\n",
		indent, a.SystolicPressure, a.HeartRate, a.OxygenSaturation, a.Consciousness)
	fmt.Fprintf(u.out, "%sUrgency: %s\n", indent, strings.ToUpper(string(a.UrgencyLevel)))
}

const rosterRow = "%-8s %-24s %4s %-6s %7s %7s %6s %-12s %8s %4s %-7s\n"

// PrintRoster writes patients as a table of their most recent attention.
func (u *UI) PrintRoster(patients []*triage.Patient) {
	fmt.Fprintf(u.out, rosterRow, "ID", "NAME", "AGE", "SEX", "WEIGHT", "HEIGHT", "BMI", "CLASS", "PRESSURE", "SAT", "URGENCY")
	fmt.Fprintln(u.out, strings.Repeat("-", 101))
	for _, p := range patients {
		weight, height, bmi, class, pressure, sat, urgency := "-", "-", "-", "-", "-", "-", "-"
		if a := p.LastAttention(); a != nil {
			weight = fmt.Sprintf("%.1f", a.WeightKg)
			height = fmt.Sprintf("%.1f", a.HeightCm)
			bmi = fmt.Sprintf("%.2f", a.BMI)
			class = string(a.BMIClass)
			pressure = fmt.Sprintf("%.0f", a.SystolicPressure)
			sat = fmt.Sprintf("%d", a.OxygenSaturation)
			urgency = string(a.UrgencyLevel)
		}
		fmt.Fprintf(u.out, rosterRow, p.ID, truncate(p.Name, 24), fmt.Sprint(p.Age), p.Sex,
			weight, height, bmi, class, pressure, sat, urgency)
	}
	fmt.Fprintf(u.out, "%d patient(s)\n", len(patients))
}

// PrintHistory writes every attention of p in chronological order.
func (u *UI) PrintHistory(p *triage.Patient, history []*triage.Attention) {
	fmt.Fprintf(u.out, "History of %s (%s): %d attention(s)\n", p.Name, p.ID, len(history))
	for i, a := range history {
		fmt.Fprintf(u.out, "#%d  %s\n", i+1, orDash(a.Timestamp))
		u.printAttention(a, "    ")
	}
}

// PrintStats writes the roster summary.
func (u *UI) PrintStats(s triage.Stats) {
	fmt.Fprintf(u.out, "Patients:     %d\n", s.Total)
	fmt.Fprintf(u.out, "Average age:  %.1f\n", s.AverageAge)
	fmt.Fprintln(u.out, "By urgency:")
	for _, lvl := range triage.UrgencyLevels {
		fmt.Fprintf(u.out, "  %-14s %d\n", lvl, s.ByUrgency[lvl])
	}
	fmt.Fprintln(u.out, "By BMI class:")
	for _, c := range triage.BMIClasses {
		fmt.Fprintf(u.out, "  %-14s %d\n", c, s.ByBMIClass[c])
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}
