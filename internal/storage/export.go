package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/san-kum/bouncesim/internal/dynamo"
)

type ExportData struct {
	Run    RunMetadata       `json:"run"`
	Frames []dynamo.Frame    `json:"frames"`
	Events []dynamo.Event    `json:"events"`
	Final  []dynamo.BodyView `json:"final"`
}

// Export gathers everything stored for one run.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return nil, err
	}
	events, err := s.LoadEvents(runID)
	if err != nil {
		return nil, err
	}
	final, err := s.LoadFinal(runID)
	if err != nil {
		return nil, err
	}
	return &ExportData{Run: *meta, Frames: frames, Events: events, Final: final}, nil
}

func ExportJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportCSV writes the frame series.
func ExportCSV(w io.Writer, frames []dynamo.Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(frameRows(frames)); err != nil {
		return err
	}
	return cw.Error()
}
