package triage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDocPath = "/data/triage.json"

func newTestRepo(fs afero.Fs, elderAge int) *FileRepository {
	repo := NewFileRepository(fs, testDocPath, elderAge, zerolog.Nop())
	repo.now = func() time.Time { return time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC) }
	return repo
}

func sampleRoster(t *testing.T) *Roster {
	t.Helper()
	r := NewRoster()

	young := namedPatient(t, "12345678", "ana torres", 30)
	young.RegisteredAt = "13-10-2026 08:00"
	a := mustAttention(t, baseVitals())
	young.AddAttention(a)
	young.Classify(a)
	v := baseVitals()
	v.OxygenSaturation = 91
	b := mustAttention(t, v)
	young.AddAttention(b)
	young.Classify(b)

	elder := namedPatient(t, "87654321", "jorge ruiz", 80)
	v = baseVitals()
	v.OxygenSaturation = 93
	c := mustAttention(t, v)
	elder.AddAttention(c)
	elder.Classify(c)

	require.NoError(t, r.Add(young))
	require.NoError(t, r.Add(elder))
	require.NoError(t, r.Add(namedPatient(t, "11112222", "sin historia", 45)))
	return r
}

func TestFileRepository_LoadMissingFile(t *testing.T) {
	repo := newTestRepo(afero.NewMemMapFs(), DefaultElderAge)

	r, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, 0, r.Len())
}

func TestFileRepository_RoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	repo := newTestRepo(fs, DefaultElderAge)
	saved := sampleRoster(t)

	require.NoError(t, repo.Save(context.Background(), saved))

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, saved.Len(), loaded.Len())

	for i, want := range saved.Patients() {
		got := loaded.Patients()[i]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.Age, got.Age)
		assert.Equal(t, want.Sex, got.Sex)
		assert.Equal(t, want.RegisteredAt, got.RegisteredAt)
		assert.Equal(t, want.Bracket, got.Bracket)

		wantHistory, gotHistory := want.History(), got.History()
		require.Len(t, gotHistory, len(wantHistory))
		for j := range wantHistory {
			assert.Equal(t, wantHistory[j].ID, gotHistory[j].ID)
			assert.Equal(t, wantHistory[j].Vitals, gotHistory[j].Vitals)
			assert.Equal(t, wantHistory[j].BMI, gotHistory[j].BMI)
			assert.Equal(t, wantHistory[j].BMIClass, gotHistory[j].BMIClass)
			assert.Equal(t, wantHistory[j].UrgencyLevel, gotHistory[j].UrgencyLevel)
			assert.Equal(t, wantHistory[j].Timestamp, gotHistory[j].Timestamp)
		}
	}
}

func TestFileRepository_SaveReplacesDocument(t *testing.T) {
	fs := afero.NewMemMapFs()
	repo := newTestRepo(fs, DefaultElderAge)
	require.NoError(t, repo.Save(context.Background(), sampleRoster(t)))
	require.NoError(t, repo.Save(context.Background(), NewRoster()))

	data, err := afero.ReadFile(fs, testDocPath)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	entries, err := afero.ReadDir(fs, "/data")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFileRepository_SaveDocumentMode(t *testing.T) {
	fs := afero.NewMemMapFs()
	repo := newTestRepo(fs, DefaultElderAge)

	require.NoError(t, repo.Save(context.Background(), sampleRoster(t)))
	info, err := fs.Stat(testDocPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	require.NoError(t, fs.Chmod(testDocPath, 0o640))
	require.NoError(t, repo.Save(context.Background(), NewRoster()))
	info, err = fs.Stat(testDocPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm(), "existing mode is kept")
}

func TestFileRepository_DocumentShape(t *testing.T) {
	fs := afero.NewMemMapFs()
	repo := newTestRepo(fs, DefaultElderAge)
	require.NoError(t, repo.Save(context.Background(), sampleRoster(t)))

	data, err := afero.ReadFile(fs, testDocPath)
	require.NoError(t, err)

	var doc []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc, 3)
	for _, key := range []string{"id", "name", "age", "sex", "registered_at", "history"} {
		assert.Contains(t, doc[0], key)
	}
	assert.NotContains(t, doc[0], "bracket", "the bracket is derived on load, never stored")

	history := doc[0]["history"].([]interface{})
	require.Len(t, history, 2)
	first := history[0].(map[string]interface{})
	for _, key := range []string{"id", "weight_kg", "height_cm", "systolic_pressure", "heart_rate",
		"consciousness", "oxygen_saturation", "bmi", "bmi_class", "urgency_level", "timestamp"} {
		assert.Contains(t, first, key)
	}
	assert.Equal(t, 24.69, first["bmi"])
	assert.Equal(t, "Normal", first["urgency_level"])

	empty := doc[2]["history"].([]interface{})
	assert.Empty(t, empty)
}

func TestFileRepository_StoredValuesWin(t *testing.T) {
	fs := afero.NewMemMapFs()
	doc := `[
		{"id": "12345678", "name": "ana torres", "age": 30, "sex": "Female",
		 "history": [
			{"weight_kg": 80, "height_cm": 180, "systolic_pressure": 120, "heart_rate": 80,
			 "consciousness": "Alert", "oxygen_saturation": 98,
			 "bmi": 99.99, "bmi_class": "Obese", "urgency_level": "Urgent", "timestamp": "01-02-2020 10:00"}
		 ]}
	]`
	require.NoError(t, afero.WriteFile(fs, testDocPath, []byte(doc), 0o644))

	r, err := newTestRepo(fs, DefaultElderAge).Load(context.Background())
	require.NoError(t, err)

	p, ok := r.Find("12345678")
	require.True(t, ok)
	assert.Equal(t, "Ana Torres", p.Name)
	assert.Equal(t, "", p.RegisteredAt, "missing registered_at defaults to empty")

	a := p.LastAttention()
	require.NotNil(t, a)
	assert.Equal(t, 99.99, a.BMI)
	assert.Equal(t, BMIObese, a.BMIClass)
	assert.Equal(t, UrgencyUrgent, a.UrgencyLevel)
	assert.Equal(t, "01-02-2020 10:00", a.Timestamp)
	assert.NotEqual(t, uuid.Nil, a.ID, "a missing attention id is replaced")
}

func TestFileRepository_MissingDerivedFields(t *testing.T) {
	fs := afero.NewMemMapFs()
	doc := `[{"id": "87654321", "name": "jorge", "age": 80, "sex": "Male",
		"history": [{"weight_kg": 70, "height_cm": 165, "systolic_pressure": 120, "heart_rate": 80,
		             "consciousness": "Alert", "oxygen_saturation": 93}]}]`
	require.NoError(t, afero.WriteFile(fs, testDocPath, []byte(doc), 0o644))

	r, err := newTestRepo(fs, DefaultElderAge).Load(context.Background())
	require.NoError(t, err)

	p, _ := r.Find("87654321")
	a := p.LastAttention()
	assert.Equal(t, 25.71, a.BMI)
	assert.Equal(t, BMIOverweight, a.BMIClass)
	assert.Equal(t, UrgencyUrgent, a.UrgencyLevel, "unclassified attentions are classified on load")
	assert.Equal(t, "", a.Timestamp)
}

func TestFileRepository_BracketRederivedOnLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, newTestRepo(fs, DefaultElderAge).Save(context.Background(), sampleRoster(t)))

	r, err := newTestRepo(fs, 90).Load(context.Background())
	require.NoError(t, err)

	p, _ := r.Find("87654321")
	assert.Equal(t, BracketStandard, p.Bracket)
	assert.Equal(t, UrgencyUrgent, p.LastAttention().UrgencyLevel, "historical classification is preserved")
}

func TestFileRepository_CorruptDocument(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"not json", "{{{ nope", "parse document"},
		{"wrong shape", `{"id": "12345678"}`, "parse document"},
		{"bad identity", `[{"id": "12", "name": "x", "age": 3, "sex": "Male"}]`, "invalid identity"},
		{"bad vitals", `[{"id": "12345678", "name": "x", "age": 3, "sex": "Male",
			"history": [{"weight_kg": 80, "height_cm": 1.8, "consciousness": "Alert"}]}]`, "height_cm"},
		{"duplicate ids", `[{"id": "12345678", "name": "x", "age": 3, "sex": "Male"},
			{"id": "12345678", "name": "y", "age": 4, "sex": "Female"}]`, "already registered"},
		{"bad attention id", `[{"id": "12345678", "name": "x", "age": 3, "sex": "Male",
			"history": [{"id": "zzz", "weight_kg": 80, "height_cm": 180, "consciousness": "Alert"}]}]`, "id:"},
		{"unknown urgency", `[{"id": "12345678", "name": "x", "age": 3, "sex": "Male",
			"history": [{"weight_kg": 80, "height_cm": 180, "consciousness": "Alert", "urgency_level": "Bogus"}]}]`, "urgency_level"},
		{"unknown bmi class", `[{"id": "12345678", "name": "x", "age": 3, "sex": "Male",
			"history": [{"weight_kg": 80, "height_cm": 180, "consciousness": "Alert", "bmi": 24.7, "bmi_class": "Nonsense"}]}]`, "bmi_class"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, testDocPath, []byte(tt.doc), 0o644))

			r, err := newTestRepo(fs, DefaultElderAge).Load(context.Background())
			require.NotNil(t, r)
			assert.Equal(t, 0, r.Len())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrPersistence))
			assert.Contains(t, err.Error(), tt.want)

			exists, _ := afero.Exists(fs, testDocPath)
			assert.False(t, exists, "corrupt document is moved aside")
			quarantined, _ := afero.Exists(fs, testDocPath+".corrupt-20261014-093000")
			assert.True(t, quarantined)
		})
	}
}

// deniedFs refuses to open one path, as a permission problem would.
type deniedFs struct {
	afero.Fs
	path string
}

func (d deniedFs) Open(name string) (afero.File, error) {
	if name == d.path {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return d.Fs.Open(name)
}

func TestFileRepository_UnreadableDocument(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, testDocPath, []byte("[]"), 0o644))
	repo := newTestRepo(deniedFs{Fs: mem, path: testDocPath}, DefaultElderAge)

	r, err := repo.Load(context.Background())
	require.NotNil(t, r)
	assert.Equal(t, 0, r.Len())
	assert.True(t, errors.Is(err, ErrPersistence))
	assert.True(t, errors.Is(err, os.ErrPermission))

	exists, _ := afero.Exists(mem, testDocPath+".unreadable-20261014-093000")
	assert.True(t, exists, "unreadable document is moved aside")

	require.NoError(t, repo.Save(context.Background(), NewRoster()))
	kept, err := afero.ReadFile(mem, testDocPath+".unreadable-20261014-093000")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(kept))
}

func TestFileRepository_ReportsEveryBadRecord(t *testing.T) {
	fs := afero.NewMemMapFs()
	doc := `[{"id": "1", "name": "a", "age": 1, "sex": "Male"},
		{"id": "12345678", "name": "b", "age": 1, "sex": "Male"},
		{"id": "87654321", "name": "", "age": 1, "sex": "Male"}]`
	require.NoError(t, afero.WriteFile(fs, testDocPath, []byte(doc), 0o644))

	_, err := newTestRepo(fs, DefaultElderAge).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "patient #1")
	assert.Contains(t, err.Error(), "patient #3")
	assert.False(t, strings.Contains(err.Error(), "patient #2"))
}

func TestFileRepository_SaveFailure(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	repo := newTestRepo(fs, DefaultElderAge)

	err := repo.Save(context.Background(), sampleRoster(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPersistence))

	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "save", perr.Op)
	assert.Equal(t, testDocPath, perr.Path)
}

func TestFileRepository_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repo := newTestRepo(afero.NewMemMapFs(), DefaultElderAge)

	r, err := repo.Load(ctx)
	assert.Equal(t, 0, r.Len())
	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, errors.Is(repo.Save(ctx, NewRoster()), context.Canceled))
}
