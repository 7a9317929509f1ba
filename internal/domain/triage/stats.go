package triage

// Stats summarizes a roster. Urgency and BMI tallies only consider the most
// recent attention of each patient; patients without history count towards
// Total alone.
type Stats struct {
	Total      int
	AverageAge float64
	ByUrgency  map[Urgency]int
	ByBMIClass map[BMIClass]int
}

// ComputeStats returns ErrNoData for an empty roster.
func ComputeStats(r *Roster) (Stats, error) {
	if r == nil || r.Len() == 0 {
		return Stats{}, ErrNoData
	}

	s := Stats{
		Total:      r.Len(),
		ByUrgency:  make(map[Urgency]int, len(UrgencyLevels)),
		ByBMIClass: make(map[BMIClass]int, len(BMIClasses)),
	}
	for _, u := range UrgencyLevels {
		s.ByUrgency[u] = 0
	}
	for _, c := range BMIClasses {
		s.ByBMIClass[c] = 0
	}

	ageSum := 0
	for _, p := range r.patients {
		ageSum += p.Age
		last := p.LastAttention()
		if last == nil {
			continue
		}
		if _, ok := s.ByUrgency[last.UrgencyLevel]; ok {
			s.ByUrgency[last.UrgencyLevel]++
		}
		if _, ok := s.ByBMIClass[last.BMIClass]; ok {
			s.ByBMIClass[last.BMIClass]++
		}
	}
	s.AverageAge = round(float64(ageSum)/float64(s.Total), 1)
	return s, nil
}
