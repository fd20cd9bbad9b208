package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/chaosynth/internal/dynamo"
	"github.com/san-kum/chaosynth/internal/mapping"
	"github.com/san-kum/chaosynth/internal/physics"
)

// ErrRunNotFound indicates a run id with no directory under the store.
var ErrRunNotFound = errors.New("storage: run not found")

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
	controlsFile   = "controls.csv"
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
	ID            string               `json:"id"`
	Timestamp     time.Time            `json:"timestamp"`
	Seed          int64                `json:"seed"`
	System        physics.LorenzParams `json:"system"`
	Steps         int                  `json:"steps"`
	Dt            float64              `json:"dt"`
	Mapping       mapping.Params       `json:"mapping"`
	BPM           float64              `json:"bpm"`
	StepsPerCycle int                  `json:"steps_per_cycle"`
	Engine        string               `json:"engine"`
	Voice         string               `json:"voice"`
	Output        string               `json:"output,omitempty"`
	Diverged      bool                 `json:"diverged"`
}

// Save writes the run under a new id and returns it. meta.ID and
// meta.Timestamp are filled in.
func (s *Store) Save(meta RunMetadata, traj dynamo.Trajectory, controls *mapping.Controls) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%d_%d_%s", meta.Seed, now.Unix(), uuid.New().String()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, trajectoryFile), func(w *csv.Writer) error {
		return WriteTrajectoryCSV(w, traj)
	}); err != nil {
		return "", err
	}
	if controls != nil {
		if err := writeCSV(filepath.Join(runDir, controlsFile), func(w *csv.Writer) error {
			return WriteControlsCSV(w, controls)
		}); err != nil {
			return "", err
		}
	}

	return runID, nil
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

func writeCSV(path string, fill func(*csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := fill(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteTrajectoryCSV writes a step,x,y,z header followed by one row per state.
func WriteTrajectoryCSV(w *csv.Writer, traj dynamo.Trajectory) error {
	header := []string{"step", "x", "y", "z"}
	if d := traj.Dim(); d > 0 && d != 3 {
		header = header[:1]
		for i := 0; i < d; i++ {
			header = append(header, fmt.Sprintf("x%d", i))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, st := range traj {
		row := []string{strconv.Itoa(i)}
		for _, v := range st {
			row = append(row, formatFloat(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

var controlsHeader = []string{"step", "note", "cutoff", "pan", "gain", "kick", "snare", "hat"}

func WriteControlsCSV(w *csv.Writer, c *mapping.Controls) error {
	if err := w.Write(controlsHeader); err != nil {
		return err
	}
	for i := 0; i < c.Len(); i++ {
		row := []string{
			strconv.Itoa(i),
			strconv.Itoa(c.Notes[i]),
			formatFloat(c.Cutoff[i]),
			formatFloat(c.Pan[i]),
			formatFloat(c.Gain[i]),
			c.Kick[i],
			c.Snare[i],
			c.Hat[i],
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// List returns every readable run, newest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) open(runID, name string) (*os.File, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	return f, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	f, err := s.open(runID, metadataFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var meta RunMetadata
	if err := json.NewDecoder(f).Decode(&meta); err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", runID, err)
	}
	return &meta, nil
}

func readRecords(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}
	return records[1:], nil
}

func (s *Store) LoadTrajectory(runID string) (dynamo.Trajectory, error) {
	f, err := s.open(runID, trajectoryFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := readRecords(f)
	if err != nil {
		return nil, err
	}

	traj := make(dynamo.Trajectory, 0, len(records))
	for _, record := range records {
		if len(record) < 2 {
			continue
		}
		st := make(dynamo.State, 0, len(record)-1)
		for _, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("parse trajectory value %q: %w", field, err)
			}
			st = append(st, v)
		}
		traj = append(traj, st)
	}
	return traj, nil
}

func (s *Store) LoadControls(runID string) (*mapping.Controls, error) {
	f, err := s.open(runID, controlsFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := readRecords(f)
	if err != nil {
		return nil, err
	}

	c := &mapping.Controls{}
	for _, record := range records {
		if len(record) != len(controlsHeader) {
			return nil, fmt.Errorf("controls row has %d fields, want %d", len(record), len(controlsHeader))
		}
		note, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, fmt.Errorf("parse note %q: %w", record[1], err)
		}
		vals := make([]float64, 3)
		for k := range vals {
			if vals[k], err = strconv.ParseFloat(record[2+k], 64); err != nil {
				return nil, fmt.Errorf("parse %s %q: %w", controlsHeader[2+k], record[2+k], err)
			}
		}
		c.Notes = append(c.Notes, note)
		c.Cutoff = append(c.Cutoff, vals[0])
		c.Pan = append(c.Pan, vals[1])
		c.Gain = append(c.Gain, vals[2])
		c.Kick = append(c.Kick, mapping.SanitizeHit(record[5]))
		c.Snare = append(c.Snare, mapping.SanitizeHit(record[6]))
		c.Hat = append(c.Hat, mapping.SanitizeHit(record[7]))
	}
	return c, nil
}
