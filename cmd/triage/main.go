package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ehr/triage/internal/config"
	"github.com/ehr/triage/internal/console"
	"github.com/ehr/triage/internal/domain/triage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd(afero.NewOsFs(), os.Stdin, os.Stdout, os.Stderr)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// app carries what every command needs once configuration is loaded.
type app struct {
	fs     afero.Fs
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	cfg    *config.Config
	logger zerolog.Logger
	svc    *triage.Service
}

func newRootCmd(fs afero.Fs, in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{fs: fs, in: in, out: out, errOut: errOut}

	rootCmd := &cobra.Command{
		Use:          "triage",
		Short:        "Clinic triage intake",
		Long:         "Records patients and their vital-sign attentions, classifies urgency and BMI, and keeps the roster in one JSON document.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			menu := console.NewMenu(a.ui(), a.svc, a.cfg.ClinicName, a.logger)
			return menu.Run(cmd.Context())
		},
	}
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	pf := rootCmd.PersistentFlags()
	pf.String("data-file", "", "roster document path (env TRIAGE_DATA_FILE)")
	pf.Int("elder-age", triage.DefaultElderAge, "age from which elder thresholds apply (env TRIAGE_ELDER_AGE)")
	pf.String("log-level", "", "log level: debug, info, warn, error (env LOG_LEVEL)")

	rootCmd.AddCommand(registerCmd(a))
	rootCmd.AddCommand(showCmd(a))
	rootCmd.AddCommand(searchCmd(a))
	rootCmd.AddCommand(listCmd(a))
	rootCmd.AddCommand(statsCmd(a))
	rootCmd.AddCommand(historyCmd(a))
	rootCmd.AddCommand(exportCmd(a))
	rootCmd.AddCommand(seedCmd(a))
	return rootCmd
}

// setup loads configuration, builds the logger and opens the roster. A
// roster that cannot be loaded is reported and replaced by an empty one.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	logger := zerolog.New(a.errOut).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: a.errOut}).With().Timestamp().Logger()
	}
	a.logger = logger.Level(cfg.Level())

	repo := triage.NewFileRepository(a.fs, cfg.DataFile, cfg.ElderAge, a.logger)
	a.svc = triage.NewService(repo, cfg.ElderAge, a.logger)
	if err := a.svc.Open(cmd.Context()); err != nil {
		fmt.Fprintf(a.out, "Warning: %v. Starting with an empty roster.\n", err)
	}
	return nil
}

func (a *app) ui() *console.UI {
	return console.New(a.in, a.out)
}
