package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/bisect/internal/bisect"
	"github.com/san-kum/bisect/internal/function"
)

func recordRun(t *testing.T, cfg bisect.RunConfig) Run {
	t.Helper()
	e := bisect.New(nil)
	rec := NewRecorder(e.Function().String(), cfg)
	e.AddObserver(rec)

	if err := e.Configure(cfg); err != nil {
		t.Fatalf("configure failed: %v", err)
	}
	for !e.State().Terminal() {
		if _, err := e.Step(); err != nil {
			t.Fatalf("step failed: %v", err)
		}
	}
	if !rec.Finished() {
		t.Fatal("recorder did not see the end of the run")
	}
	return rec.Run()
}

func defaultRun(t *testing.T) Run {
	return recordRun(t, bisect.RunConfig{Low: 0, High: 3, MaxIterations: 10, Delay: 250 * time.Millisecond, StepMode: true})
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	run := defaultRun(t)
	runID, err := st.Save(run)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Function != function.NewQuadratic().String() {
		t.Errorf("unexpected function %q", meta.Function)
	}
	if meta.Outcome != "exhausted" {
		t.Errorf("expected outcome exhausted, got %s", meta.Outcome)
	}
	if meta.Iterations != 10 || meta.MaxIterations != 10 {
		t.Errorf("expected 10 iterations, got %d of %d", meta.Iterations, meta.MaxIterations)
	}
	if meta.DelaySeconds != 0.25 || !meta.StepMode {
		t.Errorf("unexpected delay/mode %v/%v", meta.DelaySeconds, meta.StepMode)
	}
	if meta.Root != run.Steps[9].Root() {
		t.Errorf("expected root %v, got %v", run.Steps[9].Root(), meta.Root)
	}

	steps, err := st.LoadSteps(runID)
	if err != nil {
		t.Fatalf("load steps failed: %v", err)
	}
	if len(steps) != len(run.Steps) {
		t.Fatalf("expected %d steps, got %d", len(run.Steps), len(steps))
	}
	for i := range steps {
		if steps[i] != run.Steps[i] {
			t.Errorf("step %d mismatch:\n got %+v\nwant %+v", i+1, steps[i], run.Steps[i])
		}
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	first, err := st.Save(defaultRun(t))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	second, err := st.Save(recordRun(t, bisect.RunConfig{Low: -3, High: 0, MaxIterations: 5, Delay: time.Second, StepMode: true}))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != first || runs[1].ID != second {
		t.Errorf("expected oldest first, got %s, %s", runs[0].ID, runs[1].ID)
	}

	latest, err := st.Latest()
	if err != nil {
		t.Fatalf("latest failed: %v", err)
	}
	if latest != second {
		t.Errorf("expected latest %s, got %s", second, latest)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
	if _, err := st.Latest(); err == nil {
		t.Error("expected error for empty store")
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(defaultRun(t))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	if _, err := os.Stat(filepath.Join(runDir, "metadata.json")); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}

	data, err := os.ReadFile(filepath.Join(runDir, "steps.csv"))
	if err != nil {
		t.Fatalf("steps.csv not readable: %v", err)
	}
	header := "iteration,low,high,midpoint,f_low,f_high,f_mid,error\n"
	if !bytes.HasPrefix(data, []byte(header)) {
		t.Errorf("unexpected steps.csv header: %q", data)
	}
	if !bytes.Contains(data, []byte("\n1,1.5,3,1.5,-1.75,5,-1.75,0.75\n")) {
		t.Errorf("first step row missing:\n%s", data)
	}
}

func TestLoadStepsMalformed(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := os.MkdirAll(filepath.Join(tmpDir, "broken"), 0755); err != nil {
		t.Fatal(err)
	}
	csv := "iteration,low,high,midpoint,f_low,f_high,f_mid,error\n1,x,3,1.5,-1.75,5,-1.75,0.75\n"
	if err := os.WriteFile(st.StepsPath("broken"), []byte(csv), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := st.LoadSteps("broken"); err == nil {
		t.Error("expected parse error")
	}
}

func TestWriteJSON(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(defaultRun(t))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var buf bytes.Buffer
	if err := st.WriteJSON(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.ID != runID || len(got.Steps) != 10 {
		t.Errorf("unexpected export: id=%s steps=%d", got.ID, len(got.Steps))
	}
	if got.Steps[0].Midpoint != 1.5 || got.Steps[0].Error != 0.75 {
		t.Errorf("unexpected first step %+v", got.Steps[0])
	}

	path := filepath.Join(t.TempDir(), "run.json")
	if err := st.ExportJSON(path, runID); err != nil {
		t.Fatalf("export to file failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("export file missing: %v", err)
	}
}

func TestRecorderRestartsOnNewRun(t *testing.T) {
	cfg := bisect.RunConfig{Low: 0, High: 3, MaxIterations: 3, Delay: time.Second, StepMode: true}
	e := bisect.New(nil)
	rec := NewRecorder("f", cfg)
	e.AddObserver(rec)

	if err := e.Configure(cfg); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if _, err := e.Step(); err != nil {
			t.Fatal(err)
		}
	}
	e.Reset()
	if _, err := e.Step(); err != nil {
		t.Fatal(err)
	}

	run := rec.Run()
	if len(run.Steps) != 1 || run.Steps[0].Iteration != 1 {
		t.Errorf("expected a single fresh step, got %+v", run.Steps)
	}
	if rec.Finished() {
		t.Error("recorder should not be finished mid-run")
	}
}
