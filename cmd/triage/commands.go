package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ehr/triage/internal/domain/triage"
	"github.com/ehr/triage/internal/platform/export"
	"github.com/ehr/triage/internal/platform/sandbox"
	"github.com/ehr/triage/pkg/pagination"
)

func registerCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Record an attention, registering the patient if the id is new",
		Example: `  triage register --id 12345678 --name "Ana Torres" --age 30 --sex F \
    --weight 80 --height 180 --pressure 120 --heart-rate 80 --saturation 98 --consciousness A`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			id, _ := f.GetString("id")

			var details *triage.PersonalDetails
			if f.Changed("name") {
				name, _ := f.GetString("name")
				age, _ := f.GetInt("age")
				rawSex, _ := f.GetString("sex")
				sex, err := parseSex(rawSex)
				if err != nil {
					return err
				}
				details = &triage.PersonalDetails{Name: name, Age: age, Sex: sex}
			}

			var v triage.Vitals
			v.WeightKg, _ = f.GetFloat64("weight")
			v.HeightCm, _ = f.GetFloat64("height")
			v.SystolicPressure, _ = f.GetFloat64("pressure")
			v.HeartRate, _ = f.GetInt("heart-rate")
			v.OxygenSaturation, _ = f.GetInt("saturation")
			rawConsciousness, _ := f.GetString("consciousness")
			c, err := parseConsciousness(rawConsciousness)
			if err != nil {
				return err
			}
			v.Consciousness = c

			p, _, err := a.svc.RecordAttention(cmd.Context(), id, details, v)
			if p != nil {
				a.ui().PrintPatient(p)
			}
			return err
		},
	}

	cmd.Flags().String("id", "", "identity number (8 digits)")
	cmd.Flags().String("name", "", "full name, required for a new patient")
	cmd.Flags().Int("age", 0, "age in years")
	cmd.Flags().String("sex", "", "M or F")
	cmd.Flags().Float64("weight", 0, "weight in kg")
	cmd.Flags().Float64("height", 0, "height in cm")
	cmd.Flags().Float64("pressure", 0, "systolic pressure in mmHg")
	cmd.Flags().Int("heart-rate", 0, "heart rate in bpm")
	cmd.Flags().Int("saturation", 0, "oxygen saturation in %")
	cmd.Flags().String("consciousness", "A", "AVPU level: A, V, P or U")
	cmd.MarkFlagRequired("id")
	cmd.MarkFlagRequired("weight")
	cmd.MarkFlagRequired("height")
	cmd.MarkFlagRequired("pressure")
	cmd.MarkFlagRequired("heart-rate")
	cmd.MarkFlagRequired("saturation")
	return cmd
}

func showCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a patient and their most recent attention",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, found, err := a.svc.Lookup(args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: no patient with id %s", triage.ErrNotFound, args[0])
			}
			a.ui().PrintPatient(p)
			return nil
		},
	}
}

func searchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <name>",
		Short: "Find patients whose name contains the given text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fragment := strings.Join(args, " ")
			matches := a.svc.Search(fragment)
			if len(matches) == 0 {
				a.ui().Message("No patients match %q.", fragment)
				return nil
			}
			a.ui().PrintRoster(matches)
			return nil
		},
	}
}

func listCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered patients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			urgent, _ := cmd.Flags().GetBool("urgent")
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")

			patients := a.svc.List()
			if urgent {
				patients = a.svc.Urgent()
			}
			params := pagination.New(limit, offset)
			page := pagination.Slice(patients, params)

			ui := a.ui()
			ui.PrintRoster(page.Items)
			if page.HasMore {
				ui.Message("Showing %d-%d of %d. Next page: --offset %d", page.Offset+1, page.Offset+len(page.Items), page.Total, params.NextOffset())
			}
			return nil
		},
	}
	cmd.Flags().Bool("urgent", false, "only patients whose last attention is urgent")
	cmd.Flags().Int("limit", pagination.DefaultLimit, fmt.Sprintf("page size (max %d)", pagination.MaxLimit))
	cmd.Flags().Int("offset", 0, "number of patients to skip")
	return cmd
}

func statsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.svc.Stats()
			if errors.Is(err, triage.ErrNoData) {
				a.ui().Message("No patients registered yet.")
				return nil
			}
			if err != nil {
				return err
			}
			a.ui().PrintStats(s)
			return nil
		},
	}
}

func historyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show every attention of a patient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, history, err := a.svc.History(args[0])
			if err != nil {
				return err
			}
			a.ui().PrintHistory(p, history)
			return nil
		},
	}
}

func exportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the roster to an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			f, err := a.fs.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			patients := a.svc.List()
			if err := export.WriteRoster(f, patients); err != nil {
				f.Close()
				return fmt.Errorf("export %s: %w", out, err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", out, err)
			}
			a.logger.Info().Str("path", out).Int("patients", len(patients)).Msg("roster exported")
			a.ui().Message("Exported %d patient(s) to %s.", len(patients), out)
			return nil
		},
	}
	cmd.Flags().String("out", "roster.xlsx", "workbook path")
	return cmd
}

func seedCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Add synthetic patients to the roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := sandbox.DefaultSeedConfig()
			cfg.PatientCount, _ = cmd.Flags().GetInt("count")
			cfg.AttentionsPerPatient, _ = cmd.Flags().GetInt("attentions")
			cfg.UrgentRate, _ = cmd.Flags().GetFloat64("urgent-rate")
			cfg.Seed, _ = cmd.Flags().GetInt64("seed")
			cfg.ElderAge = a.cfg.ElderAge
			if cfg.PatientCount < 0 || cfg.AttentionsPerPatient < 0 {
				return fmt.Errorf("--count and --attentions must not be negative")
			}

			seeder := sandbox.NewSeeder(cfg)
			result, err := seeder.Generate()
			if err != nil {
				return err
			}
			added, skipped, err := a.svc.Import(cmd.Context(), seeder.Patients())
			if err != nil {
				return err
			}
			a.logger.Debug().Dur("duration", result.Duration).Msg("synthetic roster generated")
			a.ui().Message("Added %d synthetic patient(s) with %d attention(s), %d urgent. Skipped %d existing id(s).",
				added, result.Attentions, result.Urgent, skipped)
			return nil
		},
	}
	cmd.Flags().Int("count", 25, "number of patients to generate")
	cmd.Flags().Int("attentions", 2, "attentions per patient")
	cmd.Flags().Float64("urgent-rate", 0.2, "probability that an attention is urgent")
	cmd.Flags().Int64("seed", 0, "random seed for reproducible output, 0 picks one from the clock")
	return cmd
}

func parseSex(raw string) (triage.Sex, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "M", "MALE":
		return triage.SexMale, nil
	case "F", "FEMALE":
		return triage.SexFemale, nil
	}
	return "", &triage.ValidationError{Field: "sex", Message: fmt.Sprintf("must be M or F, got %q", raw)}
}

func parseConsciousness(raw string) (triage.Consciousness, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	for _, lvl := range triage.ConsciousnessLevels {
		if s == strings.ToUpper(string(lvl)) || s == strings.ToUpper(string(lvl))[:1] {
			return lvl, nil
		}
	}
	return "", &triage.ValidationError{Field: "consciousness", Message: fmt.Sprintf("must be one of A, V, P or U, got %q", raw)}
}
