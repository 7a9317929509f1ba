package triage

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Service is the intake workflow over one roster: register patients, record
// attentions and persist after every change.
type Service struct {
	repo     Repository
	roster   *Roster
	elderAge int
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(repo Repository, elderAge int, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		roster:   NewRoster(),
		elderAge: elderAge,
		logger:   logger.With().Str("component", "triage_service").Logger(),
		now:      time.Now,
	}
}

// SetClock replaces the time source used for registration and attention
// timestamps.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Open loads the stored roster. On failure the service keeps running with an
// empty roster and the error is returned for reporting.
func (s *Service) Open(ctx context.Context) error {
	roster, err := s.repo.Load(ctx)
	s.roster = roster
	if s.roster == nil {
		s.roster = NewRoster()
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("could not load roster, starting empty")
		return err
	}
	s.logger.Info().Int("patients", s.roster.Len()).Msg("roster opened")
	return nil
}

func (s *Service) Roster() *Roster {
	return s.roster
}

func (s *Service) ElderAge() int {
	return s.elderAge
}

// Lookup validates raw as an identity number and returns the matching
// patient. A miss is reported as (nil, false, nil).
func (s *Service) Lookup(raw string) (*Patient, bool, error) {
	id, err := ValidateID(raw)
	if err != nil {
		return nil, false, err
	}
	p, ok := s.roster.Find(id)
	return p, ok, nil
}

// RecordAttention registers the patient when the id is new, builds and
// classifies the attention from v, appends it and saves the roster.
//
// A save failure is returned as a *PersistenceError together with the
// patient and attention: the change is kept in memory.
func (s *Service) RecordAttention(ctx context.Context, rawID string, details *PersonalDetails, v Vitals) (*Patient, *Attention, error) {
	p, found, err := s.Lookup(rawID)
	if err != nil {
		return nil, nil, err
	}

	stamp := s.now().Format(TimestampLayout)
	if !found {
		if details == nil {
			return nil, nil, ErrDetailsRequired
		}
		p, err = NewPatient(rawID, *details, stamp, s.elderAge)
		if err != nil {
			return nil, nil, err
		}
	}

	a, err := NewAttention(v, stamp)
	if err != nil {
		return nil, nil, err
	}
	if !found {
		if err := s.roster.Add(p); err != nil {
			return nil, nil, err
		}
		s.logger.Info().Str("patient_id", p.ID).Str("bracket", string(p.Bracket)).Msg("patient registered")
	}
	p.AddAttention(a)
	p.Classify(a)

	s.logger.Info().
		Str("patient_id", p.ID).
		Str("attention_id", a.ID.String()).
		Str("urgency", string(a.UrgencyLevel)).
		Str("bmi_class", string(a.BMIClass)).
		Msg("attention recorded")

	if err := s.repo.Save(ctx, s.roster); err != nil {
		return p, a, err
	}
	return p, a, nil
}

// History returns the attentions of the patient with the given id.
func (s *Service) History(rawID string) (*Patient, []*Attention, error) {
	p, found, err := s.Lookup(rawID)
	if err != nil {
		return nil, nil, err
	}
	if !found {
		return nil, nil, fmt.Errorf("%w: no patient with id %s", ErrNotFound, rawID)
	}
	return p, p.History(), nil
}

func (s *Service) Search(fragment string) []*Patient {
	return s.roster.SearchByName(fragment)
}

func (s *Service) List() []*Patient {
	return s.roster.Patients()
}

func (s *Service) Urgent() []*Patient {
	return s.roster.Urgent()
}

func (s *Service) Stats() (Stats, error) {
	return ComputeStats(s.roster)
}

// Import adds already-built patients to the roster and saves once. Patients
// whose id is already registered are skipped and counted.
func (s *Service) Import(ctx context.Context, patients []*Patient) (added, skipped int, err error) {
	for _, p := range patients {
		if err := s.roster.Add(p); err != nil {
			s.logger.Debug().Str("patient_id", p.ID).Msg("import skipped existing patient")
			skipped++
			continue
		}
		added++
	}
	s.logger.Info().Int("added", added).Int("skipped", skipped).Msg("patients imported")
	if added == 0 {
		return added, skipped, nil
	}
	return added, skipped, s.repo.Save(ctx, s.roster)
}

// Save persists the roster as it is now.
func (s *Service) Save(ctx context.Context) error {
	return s.repo.Save(ctx, s.roster)
}

// Close performs the final save of the exit action and returns its outcome.
func (s *Service) Close(ctx context.Context) error {
	if err := s.repo.Save(ctx, s.roster); err != nil {
		s.logger.Error().Err(err).Msg("final save failed")
		return err
	}
	s.logger.Info().Int("patients", s.roster.Len()).Msg("roster saved on exit")
	return nil
}
