package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	signalPrefix = "signal"
	labelPrefix  = "label"
	csvExt       = ".csv"
)

// signalColumns are the amplitude column names written by the converters,
// in order of preference.
var signalColumns = []string{"PPGG", "PPG_Amplitude", "PPG"}

// CSV is a recording stored as a CSV file. A file with a header row is read
// from its amplitude column; a headerless file is read as a flat list of
// numbers, row by row.
type CSV struct {
	Name string
	Path string
}

// ID implements Recording.
func (r *CSV) ID() string { return r.Name }

// Samples implements Recording.
func (r *CSV) Samples() ([]float64, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open signal: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadSignalCSV(f)
}

// ReadSignalCSV parses signal samples from CSV text.
func ReadSignalCSV(in io.Reader) ([]float64, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	first, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: no rows", ErrMalformedSignal)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSignal, err)
	}

	column := -1
	var out []float64
	if vals, ok := parseRow(first); ok {
		out = append(out, vals...)
	} else {
		column = findColumn(first)
		if column < 0 {
			return nil, fmt.Errorf("%w: no amplitude column in header %v", ErrMalformedSignal, first)
		}
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedSignal, line, err)
		}
		if column < 0 {
			vals, ok := parseRow(rec)
			if !ok {
				return nil, fmt.Errorf("%w: line %d: non-numeric value", ErrMalformedSignal, line)
			}
			out = append(out, vals...)
			continue
		}
		if column >= len(rec) {
			return nil, fmt.Errorf("%w: line %d has %d fields", ErrMalformedSignal, line, len(rec))
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[column]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedSignal, line, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseRow(rec []string) ([]float64, bool) {
	vals := make([]float64, 0, len(rec))
	for _, field := range rec {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, false
		}
		vals = append(vals, v)
	}
	return vals, true
}

func findColumn(header []string) int {
	for _, want := range signalColumns {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), want) {
				return i
			}
		}
	}
	return -1
}

// LabeledCSV pairs a signal file with its label file.
type LabeledCSV struct {
	Signal    *CSV
	LabelPath string
}

// DiscoverCSV pairs every signal*.csv in signalDir with the label*.csv of
// the same suffix in labelDir. Signal files without a label file are
// returned in orphans. Both directories must exist.
func DiscoverCSV(signalDir, labelDir string) (pairs []LabeledCSV, orphans []string, err error) {
	if err := requireDir(signalDir); err != nil {
		return nil, nil, fmt.Errorf("signal folder: %w", err)
	}
	if err := requireDir(labelDir); err != nil {
		return nil, nil, fmt.Errorf("label folder: %w", err)
	}

	entries, err := os.ReadDir(signalDir)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", signalDir, err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, signalPrefix) || !strings.HasSuffix(name, csvExt) {
			continue
		}
		suffix := strings.TrimPrefix(name, signalPrefix)
		labelPath := filepath.Join(labelDir, labelPrefix+suffix)
		if !isFile(labelPath) {
			orphans = append(orphans, name)
			continue
		}
		pairs = append(pairs, LabeledCSV{
			Signal:    &CSV{Name: strings.TrimSuffix(name, csvExt), Path: filepath.Join(signalDir, name)},
			LabelPath: labelPath,
		})
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Signal.Name < pairs[j].Signal.Name })
	sort.Strings(orphans)
	return pairs, orphans, nil
}
