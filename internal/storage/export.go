package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/san-kum/lagrange/internal/dynamo"
)

type ExportData struct {
	Run    RunMetadata `json:"run"`
	Steps  int         `json:"steps"`
	Times  []float64   `json:"times"`
	States [][]float64 `json:"states"`
}

// ExportJSON writes the run metadata together with every sample.
func ExportJSON(w io.Writer, meta RunMetadata, tr *dynamo.Trajectory) error {
	data := ExportData{
		Run:    meta,
		Steps:  tr.Len(),
		Times:  tr.Times(),
		States: make([][]float64, tr.Len()),
	}
	tr.Each(func(i int, _ float64, x dynamo.State) {
		data.States[i] = x
	})

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes a "time,x0,x1,..." table. Values use the shortest
// representation that parses back to the same float64.
func WriteCSV(w io.Writer, tr *dynamo.Trajectory) error {
	cw := csv.NewWriter(w)

	header := []string{"time"}
	for j := 0; j < tr.Dim(); j++ {
		header = append(header, fmt.Sprintf("x%d", j))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	var err error
	tr.Each(func(_ int, t float64, x dynamo.State) {
		if err != nil {
			return
		}
		row := make([]string, 0, len(x)+1)
		row = append(row, formatFloat(t))
		for _, v := range x {
			row = append(row, formatFloat(v))
		}
		err = cw.Write(row)
	})
	if err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

// WriteDegrees writes time, angle and angular rate in degrees for systems
// whose first two state components are (θ, θ̇).
func WriteDegrees(w io.Writer, tr *dynamo.Trajectory) error {
	if tr.Dim() < 2 {
		return fmt.Errorf("%w: degrees need (θ, θ̇), state has %d values", dynamo.ErrDimensionMismatch, tr.Dim())
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "theta_deg", "theta_dot_deg"}); err != nil {
		return err
	}

	var err error
	tr.Each(func(_ int, t float64, x dynamo.State) {
		if err != nil {
			return
		}
		err = cw.Write([]string{
			formatFloat(t),
			formatFloat(rad2deg(x[0])),
			formatFloat(rad2deg(x[1])),
		})
	})
	if err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

func rad2deg(v float64) float64 {
	return v * 180 / math.Pi
}
