package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/bisect/internal/bisect"
	"github.com/san-kum/bisect/internal/function"
)

func manualRun(t *testing.T, iterations int) []bisect.StepResult {
	t.Helper()
	e := bisect.New(nil)
	if err := e.Configure(bisect.RunConfig{Low: 0, High: 3, MaxIterations: iterations, Delay: time.Second, StepMode: true}); err != nil {
		t.Fatal(err)
	}
	var steps []bisect.StepResult
	for !e.State().Terminal() {
		r, err := e.Step()
		if err != nil {
			t.Fatal(err)
		}
		steps = append(steps, r)
	}
	return steps
}

func TestRunToSVG(t *testing.T) {
	steps := manualRun(t, 7)
	svg := RunToSVG(function.NewQuadratic(), steps, DefaultSVGOptions())

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("output is not a complete svg document")
	}
	if n := strings.Count(svg, `class="curve"`); n != 1 {
		t.Errorf("expected one curve path, got %d", n)
	}
	if n := strings.Count(svg, `class="bracket"`); n != len(steps) {
		t.Errorf("expected %d brackets, got %d", len(steps), n)
	}
	if n := strings.Count(svg, `class="midpoint"`); n != len(steps) {
		t.Errorf("expected %d midpoints, got %d", len(steps), n)
	}
	if !strings.Contains(svg, "<title>f(x) = x² - 4</title>") {
		t.Error("missing function title")
	}
}

func TestRunToSVGEmpty(t *testing.T) {
	if svg := RunToSVG(function.NewQuadratic(), nil, DefaultSVGOptions()); svg != "" {
		t.Error("expected empty output for an empty run")
	}
	var buf bytes.Buffer
	if err := WriteSVG(&buf, function.NewQuadratic(), nil, DefaultSVGOptions()); err == nil {
		t.Error("expected error for an empty run")
	}
}

func TestSaveSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.svg")
	if err := SaveSVG(path, function.NewQuadratic(), manualRun(t, 3), DefaultSVGOptions()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Error("file does not contain svg")
	}
}

func TestViewport(t *testing.T) {
	v := viewport{minX: 0, maxX: 10, minY: -5, maxY: 5, width: 100, height: 50}
	if v.x(5) != 50 || v.y(0) != 25 || v.y(5) != 0 {
		t.Errorf("unexpected mapping: x(5)=%v y(0)=%v y(5)=%v", v.x(5), v.y(0), v.y(5))
	}
}
