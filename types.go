package ppgprep

import (
	"github.com/nigm-lab/ppgprep/internal/dataset"
	"github.com/nigm-lab/ppgprep/internal/labels"
)

// Gender is the encoded gender label.
type Gender = labels.Gender

// Gender encodings: Male is 1, Female is 0.
const (
	Male   = labels.Male
	Female = labels.Female
)

// LabelRecord holds the clinical labels of one recording.
type LabelRecord = labels.Record

// DatasetRow is one conditioned signal with its labels.
type DatasetRow = dataset.Row

// ParseGender accepts "Male"/"Female" and "M"/"F" in any case.
func ParseGender(s string) (Gender, error) {
	return labels.ParseGender(s)
}
