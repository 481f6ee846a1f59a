// Package dataset persists labelled, conditioned PPG signals. The default
// gob encoding keeps full float64 precision; the CSV encoding is meant for
// inspection with spreadsheet and dataframe tools.
package dataset

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/nigm-lab/ppgprep/internal/labels"
)

// Format selects the on-disk encoding.
type Format string

const (
	FormatGob Format = "gob"
	FormatCSV Format = "csv"
)

// fileVersion is bumped when the gob layout changes incompatibly.
const fileVersion = 1

// Errors returned by Save and Load.
var (
	ErrUnknownFormat = errors.New("unknown dataset format")
	ErrVersion       = errors.New("unsupported dataset version")
)

// Row is one labelled recording: the conditioned signal and its labels.
type Row struct {
	ID      string
	Signal  []float64
	Glucose float64
	Age     float64
	Gender  labels.Gender
}

// ParseFormat converts a format name. The empty string selects FormatGob.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatGob, "":
		return FormatGob, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatForPath picks the format from a file extension: .csv is CSV,
// anything else gob.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return FormatCSV
	}
	return FormatGob
}

type gobFile struct {
	Version int
	Rows    []Row
}

// Save writes rows to w.
func Save(w io.Writer, rows []Row, format Format) error {
	switch format {
	case FormatGob, "":
		if err := gob.NewEncoder(w).Encode(gobFile{Version: fileVersion, Rows: rows}); err != nil {
			return fmt.Errorf("failed to encode dataset: %w", err)
		}
		return nil
	case FormatCSV:
		out := make([]csvRow, len(rows))
		for i, r := range rows {
			out[i] = csvRow{ID: r.ID, Signal: samples(r.Signal), Glucose: r.Glucose, Age: r.Age, Gender: r.Gender}
		}
		if err := gocsv.Marshal(&out, w); err != nil {
			return fmt.Errorf("failed to write dataset CSV: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Load reads rows written by Save.
func Load(r io.Reader, format Format) ([]Row, error) {
	switch format {
	case FormatGob, "":
		var f gobFile
		if err := gob.NewDecoder(r).Decode(&f); err != nil {
			return nil, fmt.Errorf("failed to decode dataset: %w", err)
		}
		if f.Version != fileVersion {
			return nil, fmt.Errorf("%w: %d", ErrVersion, f.Version)
		}
		return f.Rows, nil
	case FormatCSV:
		var in []csvRow
		if err := gocsv.Unmarshal(r, &in); err != nil {
			return nil, fmt.Errorf("failed to read dataset CSV: %w", err)
		}
		rows := make([]Row, len(in))
		for i, c := range in {
			rows[i] = Row{ID: c.ID, Signal: []float64(c.Signal), Glucose: c.Glucose, Age: c.Age, Gender: c.Gender}
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// SaveFile writes rows to path. An empty format is chosen from the path's
// extension.
func SaveFile(path string, rows []Row, format Format) (err error) {
	if format == "" {
		format = FormatForPath(path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dataset file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return Save(f, rows, format)
}

// LoadFile reads rows from path. An empty format is chosen from the path's
// extension.
func LoadFile(path string, format Format) ([]Row, error) {
	if format == "" {
		format = FormatForPath(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f, format)
}

// csvRow mirrors Row with column names matching the dataframe layout.
type csvRow struct {
	ID      string        `csv:"ID"`
	Signal  samples       `csv:"PPG_Signal"`
	Glucose float64       `csv:"Glucose_Level"`
	Age     float64       `csv:"Age"`
	Gender  labels.Gender `csv:"Gender"`
}

// samples encodes a signal as one space-separated CSV field.
type samples []float64

// MarshalCSV implements gocsv.TypeMarshaller.
func (s samples) MarshalCSV() (string, error) {
	var b strings.Builder
	for i, v := range s {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return b.String(), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (s *samples) UnmarshalCSV(field string) error {
	fields := strings.Fields(field)
	out := make(samples, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		out[i] = v
	}
	*s = out
	return nil
}
