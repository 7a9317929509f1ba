package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ehr/triage/internal/domain/triage"
)

func patient(t *testing.T, id, name string, age int, vitals ...triage.Vitals) *triage.Patient {
	t.Helper()
	p, err := triage.NewPatient(id, triage.PersonalDetails{Name: name, Age: age, Sex: triage.SexFemale}, "14-10-2026 09:00", triage.DefaultElderAge)
	require.NoError(t, err)
	for _, v := range vitals {
		a, err := triage.NewAttention(v, "14-10-2026 09:15")
		require.NoError(t, err)
		p.AddAttention(a)
		p.Classify(a)
	}
	return p
}

func vitals(saturation int) triage.Vitals {
	return triage.Vitals{
		WeightKg:         80,
		HeightCm:         180,
		SystolicPressure: 120,
		HeartRate:        80,
		Consciousness:    triage.ConsciousnessAlert,
		OxygenSaturation: saturation,
	}
}

func openWorkbook(t *testing.T, patients []*triage.Patient) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteRoster(&buf, patients))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestWriteRoster(t *testing.T) {
	patients := []*triage.Patient{
		patient(t, "12345678", "ana torres", 30, vitals(98), vitals(90)),
		patient(t, "87654321", "jorge ruiz", 80, vitals(97)),
		patient(t, "11112222", "sin historia", 45),
	}
	f := openWorkbook(t, patients)

	assert.Equal(t, []string{RosterSheet, HistorySheet, StatsSheet}, f.GetSheetList())

	rows, err := f.GetRows(RosterSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4, "header plus one row per patient")
	assert.Equal(t, RosterHeader, rows[0])
	assert.Equal(t, "12345678", rows[1][0])
	assert.Equal(t, "Ana Torres", rows[1][1])
	assert.Equal(t, "Urgent", rows[1][14], "roster shows the most recent attention")
	assert.Equal(t, "elder", rows[2][4])
	assert.Equal(t, "Normal", rows[2][14])
	assert.Len(t, rows[3], 6, "patients without attentions have no vital columns")

	history, err := f.GetRows(HistorySheet)
	require.NoError(t, err)
	require.Len(t, history, 4, "header plus one row per attention")
	assert.Equal(t, HistoryHeader, history[0])
	assert.Equal(t, patients[0].History()[0].ID.String(), history[1][2])
	assert.Equal(t, "24.69", history[1][6])
}

func TestWriteRoster_Statistics(t *testing.T) {
	f := openWorkbook(t, []*triage.Patient{
		patient(t, "12345678", "ana", 30, vitals(90)),
		patient(t, "87654321", "jorge", 41, vitals(98)),
	})

	rows, err := f.GetRows(StatsSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Total patients", "2"}, rows[1])
	assert.Equal(t, []string{"Average age", "35.5"}, rows[2])
	assert.Equal(t, []string{"Urgency: Urgent", "1"}, rows[3])
	assert.Equal(t, []string{"Urgency: Normal", "1"}, rows[4])
	assert.Len(t, rows, 1+2+len(triage.UrgencyLevels)+len(triage.BMIClasses))
}

func TestWriteRoster_Empty(t *testing.T) {
	f := openWorkbook(t, nil)

	assert.Equal(t, []string{RosterSheet, HistorySheet}, f.GetSheetList())
	rows, err := f.GetRows(RosterSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, RosterHeader, rows[0])
}

func TestWriteRoster_DuplicateIDs(t *testing.T) {
	p := patient(t, "12345678", "ana", 30)
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteRoster(&buf, []*triage.Patient{p, p}), triage.ErrDuplicatePatient)
}
