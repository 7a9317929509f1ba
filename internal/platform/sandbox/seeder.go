// Package sandbox provides synthetic triage data generation for demo
// environments. It produces reproducible rosters with clinically plausible
// vitals, suitable for integration testing, operator training and exports.
package sandbox

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ehr/triage/internal/domain/triage"
)

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// SeedConfig controls the volume and shape of generated synthetic data.
type SeedConfig struct {
	PatientCount         int
	AttentionsPerPatient int
	// UrgentRate is the probability in [0, 1] that an attention gets one
	// vital sign pushed past the urgency thresholds.
	UrgentRate float64
	ElderAge   int
	// Start is the registration time of the first patient. Later events are
	// spaced a few minutes apart.
	Start time.Time
	Seed  int64
}

// DefaultSeedConfig returns a SeedConfig with sensible demo defaults.
func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		PatientCount:         25,
		AttentionsPerPatient: 2,
		UrgentRate:           0.2,
		ElderAge:             triage.DefaultElderAge,
	}
}

// SeedResult summarizes the output of a seed operation.
type SeedResult struct {
	Patients   int
	Attentions int
	Urgent     int
	Duration   time.Duration
}

// ---------------------------------------------------------------------------
// Name pools
// ---------------------------------------------------------------------------

var (
	firstNamesMale = []string{
		"James", "Robert", "John", "Michael", "David", "William", "Richard",
		"Joseph", "Thomas", "Daniel", "Matthew", "Anthony", "Mark", "Paul",
		"Andrew", "Jorge", "Luis", "Carlos", "Javier", "Miguel", "Pedro",
	}
	firstNamesFemale = []string{
		"Mary", "Patricia", "Jennifer", "Linda", "Elizabeth", "Susan",
		"Sarah", "Karen", "Lisa", "Emily", "Laura", "Anna", "Emma", "Maria",
		"Ana", "Lucia", "Carmen", "Rosa", "Isabel", "Elena", "Sofia",
	}
	lastNames = []string{
		"Smith", "Johnson", "Williams", "Brown", "Garcia", "Miller",
		"Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Perez",
		"Sanchez", "Ramirez", "Torres", "Flores", "Rivera", "Gomez", "Diaz",
		"Ruiz", "Castro", "Vargas", "Rojas", "Morales",
	}
)

// vitalRange is the "usual" interval a generator draws one vital sign from.
type vitalRange struct {
	Low  float64
	High float64
}

var (
	weightRange     = vitalRange{45, 120}
	heightRange     = vitalRange{150, 195}
	pressureRange   = vitalRange{105, 140}
	heartRateRange  = vitalRange{55, 95}
	saturationRange = vitalRange{95, 100}
)

// ---------------------------------------------------------------------------
// DataGenerator
// ---------------------------------------------------------------------------

// DataGenerator produces deterministic synthetic patients and vitals.
type DataGenerator struct {
	rng  *rand.Rand
	used map[string]bool
}

// NewDataGenerator returns a generator seeded for reproducibility. If seed is
// 0 a time-based seed is chosen.
func NewDataGenerator(seed int64) *DataGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &DataGenerator{
		rng:  rand.New(rand.NewSource(seed)),
		used: make(map[string]bool),
	}
}

// NextID returns an identity number not yet handed out by this generator.
func (g *DataGenerator) NextID() string {
	for {
		id := fmt.Sprintf("%08d", 10000000+g.rng.Intn(90000000))
		if !g.used[id] {
			g.used[id] = true
			return id
		}
	}
}

func (g *DataGenerator) pick(pool []string) string {
	return pool[g.rng.Intn(len(pool))]
}

func (g *DataGenerator) between(r vitalRange) float64 {
	return r.Low + g.rng.Float64()*(r.High-r.Low)
}

func (g *DataGenerator) intBetween(r vitalRange) int {
	return int(r.Low) + g.rng.Intn(int(r.High-r.Low)+1)
}

// GenerateDetails produces the demographic fields of a new patient.
func (g *DataGenerator) GenerateDetails() triage.PersonalDetails {
	d := triage.PersonalDetails{Age: g.rng.Intn(96)}
	var first string
	if g.rng.Intn(2) == 0 {
		first = g.pick(firstNamesMale)
		d.Sex = triage.SexMale
	} else {
		first = g.pick(firstNamesFemale)
		d.Sex = triage.SexFemale
	}
	d.Name = first + " " + g.pick(lastNames)
	return d
}

// GenerateVitals produces a vital-sign set inside the intake bounds. With
// probability urgentRate one sign is moved into an alarming range.
func (g *DataGenerator) GenerateVitals(urgentRate float64) triage.Vitals {
	v := triage.Vitals{
		WeightKg:         roundTenth(g.between(weightRange)),
		HeightCm:         roundTenth(g.between(heightRange)),
		SystolicPressure: float64(g.intBetween(pressureRange)),
		HeartRate:        g.intBetween(heartRateRange),
		Consciousness:    triage.ConsciousnessAlert,
		OxygenSaturation: g.intBetween(saturationRange),
	}
	if g.rng.Float64() >= urgentRate {
		return v
	}

	switch g.rng.Intn(4) {
	case 0:
		v.HeartRate = g.intBetween(vitalRange{111, 160})
	case 1:
		v.SystolicPressure = float64(g.intBetween(vitalRange{185, 199}))
	case 2:
		v.OxygenSaturation = g.intBetween(vitalRange{82, 91})
	default:
		v.Consciousness = triage.ConsciousnessLevels[1+g.rng.Intn(len(triage.ConsciousnessLevels)-1)]
	}
	return v
}

// attentionID draws a UUID from the generator's random stream so seeded runs
// produce identical documents.
func (g *DataGenerator) attentionID() uuid.UUID {
	id, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		return uuid.New()
	}
	return id
}

func roundTenth(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

// ---------------------------------------------------------------------------
// Seeder
// ---------------------------------------------------------------------------

// Seeder builds a whole synthetic roster through the domain constructors, so
// every generated record satisfies the same invariants as operator input.
type Seeder struct {
	generator *DataGenerator
	config    SeedConfig
	mu        sync.RWMutex
	patients  []*triage.Patient
}

// NewSeeder creates a new Seeder with the given config.
func NewSeeder(config SeedConfig) *Seeder {
	if config.ElderAge <= 0 {
		config.ElderAge = triage.DefaultElderAge
	}
	if config.Start.IsZero() {
		config.Start = time.Now().Add(-time.Duration(config.PatientCount*(config.AttentionsPerPatient+1)) * 5 * time.Minute)
	}
	return &Seeder{
		generator: NewDataGenerator(config.Seed),
		config:    config,
	}
}

// Generate creates all synthetic patients according to config, replacing
// any previous output.
func (s *Seeder) Generate() (*SeedResult, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.patients = nil
	result := &SeedResult{}
	clock := s.config.Start
	tick := func() string {
		stamp := clock.Format(triage.TimestampLayout)
		clock = clock.Add(time.Duration(1+s.generator.rng.Intn(9)) * time.Minute)
		return stamp
	}

	for i := 0; i < s.config.PatientCount; i++ {
		p, err := triage.NewPatient(s.generator.NextID(), s.generator.GenerateDetails(), tick(), s.config.ElderAge)
		if err != nil {
			return nil, fmt.Errorf("generate patient %d: %w", i+1, err)
		}

		for j := 0; j < s.config.AttentionsPerPatient; j++ {
			a, err := triage.NewAttention(s.generator.GenerateVitals(s.config.UrgentRate), tick())
			if err != nil {
				return nil, fmt.Errorf("generate attention %d for patient %s: %w", j+1, p.ID, err)
			}
			a.ID = s.generator.attentionID()
			p.AddAttention(a)
			p.Classify(a)
			result.Attentions++
		}
		if p.IsUrgent() {
			result.Urgent++
		}
		s.patients = append(s.patients, p)
	}

	result.Patients = len(s.patients)
	result.Duration = time.Since(start)
	return result, nil
}

// Patients returns the patients produced by the last Generate call.
func (s *Seeder) Patients() []*triage.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*triage.Patient, len(s.patients))
	copy(out, s.patients)
	return out
}

// Roster returns the last generated patients as a fresh roster.
func (s *Seeder) Roster() (*triage.Roster, error) {
	r := triage.NewRoster()
	for _, p := range s.Patients() {
		if err := r.Add(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}
