package triage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

// quarantineLayout suffixes a document that is moved aside.
const quarantineLayout = "20060102-150405"

// documentMode applies to a roster document that does not exist yet.
const documentMode os.FileMode = 0o644

type patientRecord struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Age          int               `json:"age"`
	Sex          Sex               `json:"sex"`
	RegisteredAt string            `json:"registered_at"`
	History      []attentionRecord `json:"history"`
}

type attentionRecord struct {
	ID               string        `json:"id,omitempty"`
	WeightKg         float64       `json:"weight_kg"`
	HeightCm         float64       `json:"height_cm"`
	SystolicPressure float64       `json:"systolic_pressure"`
	HeartRate        int           `json:"heart_rate"`
	Consciousness    Consciousness `json:"consciousness"`
	OxygenSaturation int           `json:"oxygen_saturation"`
	BMI              float64       `json:"bmi"`
	BMIClass         BMIClass      `json:"bmi_class"`
	UrgencyLevel     Urgency       `json:"urgency_level"`
	Timestamp        string        `json:"timestamp"`
}

// FileRepository stores the roster as an indented JSON array in a single
// file. Every save replaces the file atomically.
type FileRepository struct {
	fs       afero.Fs
	path     string
	elderAge int
	logger   zerolog.Logger
	now      func() time.Time
}

func NewFileRepository(fs afero.Fs, path string, elderAge int, logger zerolog.Logger) *FileRepository {
	return &FileRepository{
		fs:       fs,
		path:     path,
		elderAge: elderAge,
		logger:   logger.With().Str("component", "file_repository").Str("path", path).Logger(),
		now:      time.Now,
	}
}

func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the document. A missing file is an empty roster. A document
// that cannot be read or rebuilt is moved aside and reported, so the next
// save does not replace it; the roster is then empty.
func (r *FileRepository) Load(ctx context.Context) (*Roster, error) {
	if err := ctx.Err(); err != nil {
		return NewRoster(), &PersistenceError{Op: "load", Path: r.path, Err: err}
	}

	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.logger.Info().Msg("no roster document yet, starting empty")
			return NewRoster(), nil
		}
		r.quarantine("unreadable")
		return NewRoster(), &PersistenceError{Op: "load", Path: r.path, Err: err}
	}

	roster, err := decodeRoster(data, r.elderAge)
	if err != nil {
		r.quarantine("corrupt")
		return NewRoster(), &PersistenceError{Op: "load", Path: r.path, Err: err}
	}

	r.logger.Info().Int("patients", roster.Len()).Msg("roster loaded")
	return roster, nil
}

func (r *FileRepository) quarantine(reason string) {
	dest := r.path + "." + reason + "-" + r.now().Format(quarantineLayout)
	if err := r.fs.Rename(r.path, dest); err != nil {
		r.logger.Error().Err(err).Str("reason", reason).Msg("failed to move roster aside")
		return
	}
	r.logger.Warn().Str("reason", reason).Str("quarantined_to", dest).Msg("roster moved aside")
}

// Save serializes every patient with its full history and replaces the
// document.
func (r *FileRepository) Save(ctx context.Context, roster *Roster) error {
	if err := ctx.Err(); err != nil {
		return &PersistenceError{Op: "save", Path: r.path, Err: err}
	}

	data, err := encodeRoster(roster)
	if err != nil {
		return &PersistenceError{Op: "save", Path: r.path, Err: err}
	}
	if err := r.writeAtomic(data); err != nil {
		r.logger.Error().Err(err).Msg("roster save failed")
		return &PersistenceError{Op: "save", Path: r.path, Err: err}
	}

	r.logger.Debug().Int("patients", roster.Len()).Msg("roster saved")
	return nil
}

// writeAtomic keeps the permissions of an existing document.
func (r *FileRepository) writeAtomic(data []byte) error {
	dir := filepath.Dir(r.path)
	if err := r.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	mode := documentMode
	if info, err := r.fs.Stat(r.path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := afero.TempFile(r.fs, dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		r.fs.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		r.fs.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := r.fs.Chmod(tmpName, mode); err != nil {
		r.fs.Remove(tmpName)
		return fmt.Errorf("set mode: %w", err)
	}
	if err := r.fs.Rename(tmpName, r.path); err != nil {
		r.fs.Remove(tmpName)
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

func encodeRoster(roster *Roster) ([]byte, error) {
	records := make([]patientRecord, 0, roster.Len())
	for _, p := range roster.Patients() {
		rec := patientRecord{
			ID:           p.ID,
			Name:         p.Name,
			Age:          p.Age,
			Sex:          p.Sex,
			RegisteredAt: p.RegisteredAt,
			History:      make([]attentionRecord, 0, len(p.history)),
		}
		for _, a := range p.history {
			rec.History = append(rec.History, attentionRecord{
				ID:               a.ID.String(),
				WeightKg:         a.WeightKg,
				HeightCm:         a.HeightCm,
				SystolicPressure: a.SystolicPressure,
				HeartRate:        a.HeartRate,
				Consciousness:    a.Consciousness,
				OxygenSaturation: a.OxygenSaturation,
				BMI:              a.BMI,
				BMIClass:         a.BMIClass,
				UrgencyLevel:     a.UrgencyLevel,
				Timestamp:        a.Timestamp,
			})
		}
		records = append(records, rec)
	}
	return json.MarshalIndent(records, "", "    ")
}

// decodeRoster rebuilds every patient through the validating constructors.
// The bracket is derived from the stored age, never read from the document.
// Stored bmi, bmi_class, urgency_level and timestamp replace the recomputed
// values so historical classifications survive threshold changes.
func decodeRoster(data []byte, elderAge int) (*Roster, error) {
	var records []patientRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	roster := NewRoster()
	var errs error
	for i, rec := range records {
		p, err := decodePatient(rec, elderAge)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("patient #%d (%s): %w", i+1, rec.ID, err))
			continue
		}
		if err := roster.Add(p); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("patient #%d: %w", i+1, err))
		}
	}
	if errs != nil {
		return nil, errs
	}
	return roster, nil
}

func decodePatient(rec patientRecord, elderAge int) (*Patient, error) {
	p, err := NewPatient(rec.ID, PersonalDetails{Name: rec.Name, Age: rec.Age, Sex: rec.Sex}, rec.RegisteredAt, elderAge)
	if err != nil {
		return nil, err
	}
	for j, ar := range rec.History {
		a, err := decodeAttention(ar)
		if err != nil {
			return nil, fmt.Errorf("attention #%d: %w", j+1, err)
		}
		if a.UrgencyLevel == "" {
			p.Classify(a)
		}
		p.AddAttention(a)
	}
	return p, nil
}

func decodeAttention(ar attentionRecord) (*Attention, error) {
	a, err := NewAttention(Vitals{
		WeightKg:         ar.WeightKg,
		HeightCm:         ar.HeightCm,
		SystolicPressure: ar.SystolicPressure,
		HeartRate:        ar.HeartRate,
		Consciousness:    ar.Consciousness,
		OxygenSaturation: ar.OxygenSaturation,
	}, ar.Timestamp)
	if err != nil {
		return nil, err
	}

	if ar.ID != "" {
		id, err := uuid.Parse(ar.ID)
		if err != nil {
			return nil, fmt.Errorf("id: %w", err)
		}
		a.ID = id
	}
	if ar.BMIClass != "" {
		if !ar.BMIClass.Valid() {
			return nil, invalidField("bmi_class", "unknown class %q", ar.BMIClass)
		}
		a.BMI = ar.BMI
		a.BMIClass = ar.BMIClass
	}
	if ar.UrgencyLevel != "" && !ar.UrgencyLevel.Valid() {
		return nil, invalidField("urgency_level", "unknown level %q", ar.UrgencyLevel)
	}
	a.UrgencyLevel = ar.UrgencyLevel
	return a, nil
}
