package console

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/ehr/triage/internal/domain/triage"
)

// Intake is the part of the triage service the menu drives.
type Intake interface {
	Lookup(raw string) (*triage.Patient, bool, error)
	RecordAttention(ctx context.Context, rawID string, details *triage.PersonalDetails, v triage.Vitals) (*triage.Patient, *triage.Attention, error)
	History(raw string) (*triage.Patient, []*triage.Attention, error)
	Search(fragment string) []*triage.Patient
	List() []*triage.Patient
	Urgent() []*triage.Patient
	Stats() (triage.Stats, error)
	Close(ctx context.Context) error
}

const menuText = `
 1) Register attention
 2) Find patient by identity number
 3) Search patients by name
 4) List all patients
 5) List urgent patients
 6) Statistics
 7) Attention history
 8) Save and exit`

// Menu is the interactive loop over an Intake.
type Menu struct {
	ui     *UI
	svc    Intake
	title  string
	logger zerolog.Logger
}

func NewMenu(ui *UI, svc Intake, clinic string, logger zerolog.Logger) *Menu {
	return &Menu{
		ui:     ui,
		svc:    svc,
		title:  clinic + " triage",
		logger: logger.With().Str("component", "console_menu").Logger(),
	}
}

// Run shows the menu until the operator exits, the input ends or ctx is
// cancelled. Every path out performs the final save; its error is returned.
func (m *Menu) Run(ctx context.Context) error {
	m.ui.Message("=== %s ===", m.title)
	for ctx.Err() == nil {
		m.ui.Message("%s", menuText)
		choice, err := m.ui.Ask(ctx, "Option: ")
		if err != nil {
			if !errors.Is(err, ErrInputClosed) && ctx.Err() == nil {
				m.ui.Error(err)
			}
			break
		}
		if choice == "8" {
			break
		}

		if err := m.dispatch(ctx, choice); err != nil {
			if errors.Is(err, ErrInputClosed) || ctx.Err() != nil {
				break
			}
			m.logger.Debug().Err(err).Str("option", choice).Msg("action failed")
			m.ui.Error(err)
		}
	}
	return m.exit(ctx)
}

func (m *Menu) dispatch(ctx context.Context, choice string) error {
	switch choice {
	case "1":
		return m.register(ctx)
	case "2":
		return m.find(ctx)
	case "3":
		return m.search(ctx)
	case "4":
		m.ui.PrintRoster(m.svc.List())
	case "5":
		urgent := m.svc.Urgent()
		if len(urgent) == 0 {
			m.ui.Message("No urgent patients.")
			return nil
		}
		m.ui.PrintRoster(urgent)
	case "6":
		s, err := m.svc.Stats()
		if errors.Is(err, triage.ErrNoData) {
			m.ui.Message("No patients registered yet.")
			return nil
		}
		if err != nil {
			return err
		}
		m.ui.PrintStats(s)
	case "7":
		return m.history(ctx)
	default:
		m.ui.Message("Invalid option %q, choose 1-8.", choice)
	}
	return nil
}

func (m *Menu) register(ctx context.Context) error {
	id, err := m.ui.RequestPatientID(ctx)
	if err != nil {
		return err
	}
	existing, found, err := m.svc.Lookup(id)
	if err != nil {
		return err
	}

	var details *triage.PersonalDetails
	if found {
		m.ui.Message("Existing patient: %s, %d years.", existing.Name, existing.Age)
	} else {
		m.ui.Message("New patient.")
		d, err := m.ui.RequestPersonalDetails(ctx)
		if err != nil {
			return err
		}
		details = &d
	}

	v, err := m.ui.RequestVitals(ctx)
	if err != nil {
		return err
	}
	p, _, err := m.svc.RecordAttention(ctx, id, details, v)
	if p == nil {
		return err
	}
	m.ui.PrintPatient(p)
	if err != nil {
		m.ui.Message("Attention recorded but not saved: %v", err)
	}
	return nil
}

func (m *Menu) find(ctx context.Context) error {
	id, err := m.ui.RequestPatientID(ctx)
	if err != nil {
		return err
	}
	p, found, err := m.svc.Lookup(id)
	if err != nil {
		return err
	}
	if !found {
		m.ui.Message("No patient with identity number %s.", id)
		return nil
	}
	m.ui.PrintPatient(p)
	return nil
}

func (m *Menu) search(ctx context.Context) error {
	fragment, err := m.ui.Ask(ctx, "Name or part of it: ")
	if err != nil {
		return err
	}
	matches := m.svc.Search(fragment)
	if len(matches) == 0 {
		m.ui.Message("No patients match %q.", fragment)
		return nil
	}
	m.ui.PrintRoster(matches)
	return nil
}

func (m *Menu) history(ctx context.Context) error {
	id, err := m.ui.RequestPatientID(ctx)
	if err != nil {
		return err
	}
	p, history, err := m.svc.History(id)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		m.ui.Message("%s has no attentions recorded.", p.Name)
		return nil
	}
	m.ui.PrintHistory(p, history)
	return nil
}

// exit saves even when ctx has been cancelled.
func (m *Menu) exit(ctx context.Context) error {
	if err := m.svc.Close(context.WithoutCancel(ctx)); err != nil {
		m.ui.Message("Could not save the roster: %v", err)
		return err
	}
	m.ui.Message("Roster saved. Goodbye.")
	return nil
}
