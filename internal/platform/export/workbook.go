// Package export renders a triage roster as an XLSX workbook with one sheet
// for the roster, one for every recorded attention and one for statistics.
package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ehr/triage/internal/domain/triage"
)

const (
	RosterSheet  = "Roster"
	HistorySheet = "History"
	StatsSheet   = "Statistics"
)

// RosterHeader is the header row of the roster sheet. Vital columns show the
// most recent attention.
var RosterHeader = []string{
	"ID",
	"Name",
	"Age",
	"Sex",
	"Bracket",
	"Registered",
	"Weight (kg)",
	"Height (cm)",
	"BMI",
	"BMI Class",
	"Pressure",
	"Heart Rate",
	"Saturation",
	"Consciousness",
	"Urgency",
	"Last Attention",
}

// HistoryHeader is the header row of the history sheet.
var HistoryHeader = []string{
	"Patient ID",
	"Patient Name",
	"Attention ID",
	"Timestamp",
	"Weight (kg)",
	"Height (cm)",
	"BMI",
	"BMI Class",
	"Pressure",
	"Heart Rate",
	"Saturation",
	"Consciousness",
	"Urgency",
}

// WriteRoster writes the workbook for patients to w. The statistics sheet is
// omitted when the roster is empty.
func WriteRoster(w io.Writer, patients []*triage.Patient) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RosterSheet); err != nil {
		return fmt.Errorf("failed to rename default sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeTable(f, RosterSheet, RosterHeader, rosterRows(patients), headerStyle); err != nil {
		return err
	}
	if _, err := f.NewSheet(HistorySheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", HistorySheet, err)
	}
	if err := writeTable(f, HistorySheet, HistoryHeader, historyRows(patients), headerStyle); err != nil {
		return err
	}

	r := triage.NewRoster()
	for _, p := range patients {
		if err := r.Add(p); err != nil {
			return err
		}
	}
	stats, err := triage.ComputeStats(r)
	if err != nil && !errors.Is(err, triage.ErrNoData) {
		return err
	}
	if err == nil {
		if _, err := f.NewSheet(StatsSheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", StatsSheet, err)
		}
		if err := writeTable(f, StatsSheet, []string{"Metric", "Value"}, statsRows(stats), headerStyle); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, header []string, rows [][]interface{}, headerStyle int) error {
	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &cells); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+2, sheet, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return fmt.Errorf("failed to convert column number: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze panes: %w", err)
	}
	return nil
}

func rosterRows(patients []*triage.Patient) [][]interface{} {
	rows := make([][]interface{}, 0, len(patients))
	for _, p := range patients {
		row := []interface{}{p.ID, p.Name, p.Age, string(p.Sex), string(p.Bracket), p.RegisteredAt}
		if a := p.LastAttention(); a != nil {
			row = append(row, vitalCells(a)...)
			row = append(row, a.Timestamp)
		}
		rows = append(rows, row)
	}
	return rows
}

func historyRows(patients []*triage.Patient) [][]interface{} {
	var rows [][]interface{}
	for _, p := range patients {
		for _, a := range p.History() {
			row := []interface{}{p.ID, p.Name, a.ID.String(), a.Timestamp}
			rows = append(rows, append(row, vitalCells(a)...))
		}
	}
	return rows
}

func vitalCells(a *triage.Attention) []interface{} {
	return []interface{}{
		a.WeightKg,
		a.HeightCm,
		a.BMI,
		string(a.BMIClass),
		a.SystolicPressure,
		a.HeartRate,
		a.OxygenSaturation,
		string(a.Consciousness),
		string(a.UrgencyLevel),
	}
}

func statsRows(s triage.Stats) [][]interface{} {
	rows := [][]interface{}{
		{"Total patients", s.Total},
		{"Average age", s.AverageAge},
	}
	for _, u := range triage.UrgencyLevels {
		rows = append(rows, []interface{}{"Urgency: " + string(u), s.ByUrgency[u]})
	}
	for _, c := range triage.BMIClasses {
		rows = append(rows, []interface{}{"BMI: " + string(c), s.ByBMIClass[c]})
	}
	return rows
}
