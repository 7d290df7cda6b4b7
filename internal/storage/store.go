package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/bouncesim/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
	eventsFile   = "events.csv"
	finalFile    = "final.json"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Scene      string             `json:"scene"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	FrameDt    float64            `json:"frame_dt"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	BroadPhase string             `json:"broadphase"`
	Params     dynamo.Params      `json:"params"`
	StepsTaken int                `json:"steps_taken"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes one run directory: metadata.json, frames.csv, events.csv and
// the final snapshot. ID and Timestamp are filled in.
func (s *Store) Save(meta RunMetadata, result *dynamo.Result) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Scene, now.UnixNano())
	meta.Timestamp = now
	meta.StepsTaken = result.StepsTaken
	meta.Metrics = result.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, finalFile), result.Final); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, framesFile), frameRows(result.Frames)); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, eventsFile), eventRows(result.Events)); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return w.Error()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }

func frameRows(frames []dynamo.Frame) [][]string {
	rows := [][]string{{"time", "bodies", "energy", "momentum", "collisions"}}
	for _, f := range frames {
		rows = append(rows, []string{
			formatFloat(f.Time),
			strconv.Itoa(f.Bodies),
			formatFloat(f.Energy),
			formatFloat(f.Momentum),
			strconv.Itoa(f.Collisions),
		})
	}
	return rows
}

func eventRows(events []dynamo.Event) [][]string {
	rows := [][]string{{"time", "kind", "a", "b"}}
	for _, e := range events {
		row := []string{strconv.FormatFloat(e.Time, 'f', 9, 64), e.Kind.String(), "", ""}
		// boundary hits leave the b column empty
		for i, id := range e.Participants() {
			row[2+i] = strconv.FormatUint(uint64(id), 10)
		}
		rows = append(rows, row)
	}
	return rows
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadFinal(runID string) ([]dynamo.BodyView, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, finalFile))
	if err != nil {
		return nil, err
	}

	var bodies []dynamo.BodyView
	if err := json.Unmarshal(data, &bodies); err != nil {
		return nil, err
	}
	return bodies, nil
}

func (s *Store) readCSV(runID, name string) ([][]string, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}
	return records[1:], nil
}

// LoadFrames reads frames.csv. Malformed rows are skipped.
func (s *Store) LoadFrames(runID string) ([]dynamo.Frame, error) {
	records, err := s.readCSV(runID, framesFile)
	if err != nil {
		return nil, err
	}

	frames := make([]dynamo.Frame, 0, len(records))
	for _, record := range records {
		if len(record) < 5 {
			continue
		}
		var f dynamo.Frame
		var perr error
		parse := func(s string) float64 {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				perr = err
			}
			return v
		}
		f.Time = parse(record[0])
		f.Bodies = int(parse(record[1]))
		f.Energy = parse(record[2])
		f.Momentum = parse(record[3])
		f.Collisions = int(parse(record[4]))
		if perr != nil {
			continue
		}
		frames = append(frames, f)
	}

	return frames, nil
}

// LoadEvents reads events.csv. Malformed rows are skipped.
func (s *Store) LoadEvents(runID string) ([]dynamo.Event, error) {
	records, err := s.readCSV(runID, eventsFile)
	if err != nil {
		return nil, err
	}

	events := make([]dynamo.Event, 0, len(records))
	for _, record := range records {
		if len(record) < 4 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		kind, err := dynamo.ParseEventKind(record[1])
		if err != nil {
			continue
		}
		a, errA := strconv.ParseUint(record[2], 10, 64)
		var b uint64
		var errB error
		if record[3] != "" || kind != dynamo.BoundaryHit {
			b, errB = strconv.ParseUint(record[3], 10, 64)
		}
		if errA != nil || errB != nil {
			continue
		}
		events = append(events, dynamo.Event{Kind: kind, A: dynamo.ID(a), B: dynamo.ID(b), Time: t})
	}

	return events, nil
}
