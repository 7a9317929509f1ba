// Package console is the operator-facing side of the intake tool: prompt
// loops that only return well-formed input, plain-text renderers and the
// interactive menu.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/ehr/triage/internal/domain/triage"
)

// ErrInputClosed is returned by every prompt once the input stream ends.
var ErrInputClosed = errors.New("input closed")

const (
	MaxAge        = 120
	MaxIntakeRate = 300
)

// UI reads operator answers line by line from in and writes prompts and
// reports to out.
type UI struct {
	in  *bufio.Scanner
	out io.Writer

	start   sync.Once
	lines   chan string
	readErr error
}

func New(in io.Reader, out io.Writer) *UI {
	return &UI{in: bufio.NewScanner(in), out: out, lines: make(chan string)}
}

// scan feeds input lines to Ask until the input ends. readErr is set before
// lines is closed.
func (u *UI) scan() {
	for u.in.Scan() {
		u.lines <- u.in.Text()
	}
	u.readErr = u.in.Err()
	close(u.lines)
}

// Ask writes prompt and returns the next input line with surrounding
// whitespace removed. It returns ctx.Err() as soon as ctx is done, even
// while the reader is blocked.
func (u *UI) Ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	u.start.Do(func() { go u.scan() })
	fmt.Fprint(u.out, prompt)
	select {
	case <-ctx.Done():
		fmt.Fprintln(u.out)
		return "", ctx.Err()
	case line, ok := <-u.lines:
		if !ok {
			if u.readErr != nil {
				return "", fmt.Errorf("read input: %w", u.readErr)
			}
			fmt.Fprintln(u.out)
			return "", ErrInputClosed
		}
		return strings.TrimSpace(line), nil
	}
}

// RequestPatientID prompts until a well-formed identity number is entered.
func (u *UI) RequestPatientID(ctx context.Context) (string, error) {
	for {
		raw, err := u.Ask(ctx, "Identity number (8 digits): ")
		if err != nil {
			return "", err
		}
		id, err := triage.ValidateID(raw)
		if err != nil {
			u.Error(err)
			continue
		}
		return id, nil
	}
}

// RequestPersonalDetails prompts for the demographic fields of a new patient.
func (u *UI) RequestPersonalDetails(ctx context.Context) (triage.PersonalDetails, error) {
	var d triage.PersonalDetails
	for {
		name, err := u.Ask(ctx, "Full name: ")
		if err != nil {
			return d, err
		}
		if d.Name = triage.NormalizeName(name); d.Name != "" {
			break
		}
		u.Message("The name cannot be empty.")
	}

	age, err := u.askInt(ctx, "Age: ", 0, MaxAge)
	if err != nil {
		return d, err
	}
	d.Age = age

	sex, err := askChoice(ctx, u, "Sex (M/F): ", map[string]triage.Sex{
		"M": triage.SexMale,
		"F": triage.SexFemale,
	})
	if err != nil {
		return d, err
	}
	d.Sex = sex
	return d, nil
}

// RequestVitals prompts for one set of vital signs. Only the shape of each
// answer is checked here; clinical bounds are enforced by the domain.
func (u *UI) RequestVitals(ctx context.Context) (triage.Vitals, error) {
	var (
		v   triage.Vitals
		err error
	)
	if v.WeightKg, err = u.askPositive(ctx, "Weight (kg): "); err != nil {
		return v, err
	}
	if v.HeightCm, err = u.askPositive(ctx, "Height (cm): "); err != nil {
		return v, err
	}
	if v.SystolicPressure, err = u.askPositive(ctx, "Systolic pressure (mmHg): "); err != nil {
		return v, err
	}
	if v.HeartRate, err = u.askInt(ctx, "Heart rate (bpm): ", 0, MaxIntakeRate); err != nil {
		return v, err
	}
	if v.OxygenSaturation, err = u.askInt(ctx, "Oxygen saturation (%): ", 0, 100); err != nil {
		return v, err
	}
	v.Consciousness, err = askChoice(ctx, u, "Consciousness (A=Alert, V=Verbal, P=Pain, U=Unresponsive): ", map[string]triage.Consciousness{
		"A": triage.ConsciousnessAlert,
		"V": triage.ConsciousnessVerbal,
		"P": triage.ConsciousnessPain,
		"U": triage.ConsciousnessUnresponsive,
	})
	return v, err
}

func (u *UI) askInt(ctx context.Context, prompt string, lo, hi int) (int, error) {
	for {
		raw, err := u.Ask(ctx, prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < lo || n > hi {
			u.Message("Enter a whole number between %d and %d.", lo, hi)
			continue
		}
		return n, nil
	}
}

// askPositive accepts a decimal comma as well as a decimal point.
func (u *UI) askPositive(ctx context.Context, prompt string) (float64, error) {
	for {
		raw, err := u.Ask(ctx, prompt)
		if err != nil {
			return 0, err
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil || !(f > 0) {
			u.Message("Enter a number greater than zero.")
			continue
		}
		return f, nil
	}
}

// askChoice prompts until the answer, compared case-insensitively, is one of
// the keys of options.
func askChoice[T any](ctx context.Context, u *UI, prompt string, options map[string]T) (T, error) {
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var zero T
	for {
		raw, err := u.Ask(ctx, prompt)
		if err != nil {
			return zero, err
		}
		if v, ok := options[strings.ToUpper(raw)]; ok {
			return v, nil
		}
		u.Message("Choose one of %s.", strings.Join(keys, "/"))
	}
}
