package storage

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/san-kum/bisect/internal/bisect"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteStepsCSV writes the header and one row per step. Values use the
// shortest exact representation so a reload reproduces them bit for bit.
func WriteStepsCSV(out io.Writer, steps []bisect.StepResult) error {
	w := csv.NewWriter(out)
	if err := w.Write(stepsHeader); err != nil {
		return err
	}
	for _, s := range steps {
		row := []string{
			strconv.Itoa(s.Iteration),
			formatFloat(s.Low),
			formatFloat(s.High),
			formatFloat(s.Midpoint),
			formatFloat(s.FLow),
			formatFloat(s.FHigh),
			formatFloat(s.FMid),
			formatFloat(s.Error),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
