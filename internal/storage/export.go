package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
)

type ExportData struct {
	RunMetadata
	Steps  int         `json:"steps"`
	Times  []float64   `json:"times"`
	States [][]float64 `json:"states"`
}

func ExportJSON(w io.Writer, meta *RunMetadata, states [][]float64, times []float64) error {
	data := ExportData{
		RunMetadata: *meta,
		Steps:       len(times),
		Times:       times,
		States:      states,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func ExportCSV(w io.Writer, states [][]float64, times []float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(stateHeader); err != nil {
		return err
	}

	for i := range states {
		row := []string{strconv.FormatFloat(times[i], 'f', 6, 64)}
		for _, val := range states[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
