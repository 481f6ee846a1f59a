// Package labels adapts tabular clinical label files into typed label
// records. A table is keyed by recording identifier and exposes at least the
// Glucose, Age and Gender columns.
package labels

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
)

// Errors returned while reading or looking up labels.
var (
	// ErrMissingLabel indicates no label exists for a recording.
	ErrMissingLabel = errors.New("missing label")

	// ErrInvalidLabel indicates a label row that cannot be interpreted.
	ErrInvalidLabel = errors.New("invalid label")
)

// Gender is the encoded gender label: Male is 1, Female is 0.
type Gender int

// Gender encodings.
const (
	Female Gender = 0
	Male   Gender = 1
)

// ParseGender accepts "Male"/"Female" and "M"/"F" in any case.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return Male, nil
	case "female", "f":
		return Female, nil
	default:
		return 0, fmt.Errorf("%w: gender %q", ErrInvalidLabel, s)
	}
}

func (g Gender) String() string {
	switch g {
	case Male:
		return "Male"
	case Female:
		return "Female"
	default:
		return fmt.Sprintf("Gender(%d)", int(g))
	}
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (g *Gender) UnmarshalCSV(s string) error {
	v, err := ParseGender(s)
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// MarshalCSV implements gocsv.TypeMarshaller.
func (g Gender) MarshalCSV() (string, error) {
	return g.String(), nil
}

// Record is the label set paired with one recording.
type Record struct {
	Glucose float64 // mg/dL
	Age     float64 // years
	Gender  Gender
}

// Validate rejects non-finite or negative values.
func (r Record) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"glucose", r.Glucose}, {"age", r.Age}} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return fmt.Errorf("%w: %s %g", ErrInvalidLabel, f.name, f.v)
		}
	}
	if r.Gender != Male && r.Gender != Female {
		return fmt.Errorf("%w: %v", ErrInvalidLabel, r.Gender)
	}
	return nil
}

// row is the on-disk layout. Columns other than these are ignored.
type row struct {
	ID      string  `csv:"ID"`
	Glucose float64 `csv:"Glucose"`
	Age     float64 `csv:"Age"`
	Gender  Gender  `csv:"Gender"`
}

func (r row) record() Record {
	return Record{Glucose: r.Glucose, Age: r.Age, Gender: r.Gender}
}

func readRows(r io.Reader) ([]row, error) {
	var rows []row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLabel, err)
	}
	return rows, nil
}

// Table holds labels keyed by recording identifier.
type Table struct {
	byID map[string]Record
}

// ReadTable reads a label table with an ID column. Duplicate or empty
// identifiers are rejected.
func ReadTable(r io.Reader) (*Table, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	t := &Table{byID: make(map[string]Record, len(rows))}
	for i, rw := range rows {
		id := strings.TrimSpace(rw.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: row %d has no ID", ErrInvalidLabel, i+1)
		}
		if _, dup := t.byID[id]; dup {
			return nil, fmt.Errorf("%w: duplicate ID %q", ErrInvalidLabel, id)
		}
		rec := rw.record()
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("row %d (ID %s): %w", i+1, id, err)
		}
		t.byID[id] = rec
	}
	return t, nil
}

// ReadFirst reads the first row of a per-recording label file. The ID
// column is optional.
func ReadFirst(r io.Reader) (Record, error) {
	rows, err := readRows(r)
	if err != nil {
		return Record{}, err
	}
	if len(rows) == 0 {
		return Record{}, fmt.Errorf("%w: label file has no rows", ErrMissingLabel)
	}
	rec := rows[0].record()
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Lookup returns the label for id.
func (t *Table) Lookup(id string) (Record, error) {
	rec, ok := t.byID[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: recording %s", ErrMissingLabel, id)
	}
	return rec, nil
}

// Len returns the number of labelled recordings.
func (t *Table) Len() int {
	return len(t.byID)
}

// IDs returns the identifiers in ascending order.
func (t *Table) IDs() []string {
	ids := make([]string, 0, len(t.byID))
	for id := range t.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
