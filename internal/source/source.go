// Package source discovers and loads raw PPG recordings from disk. Three
// layouts are supported: WFDB subject directories (<id>/<id>_PPG.hea and
// .dat), per-recording signal CSV files paired with label CSV files, and EDF
// files.
package source

import (
	"errors"
	"fmt"
	"os"
)

// ErrMissingInput indicates an input directory or file that does not exist.
// It is a setup error: no recording below it can be processed.
var ErrMissingInput = errors.New("missing input")

// ErrMalformedSignal indicates a signal file whose samples cannot be read.
var ErrMalformedSignal = errors.New("malformed signal file")

// Recording is one raw signal addressed by a stable identifier.
type Recording interface {
	// ID identifies the recording, e.g. the subject directory name.
	ID() string

	// Samples loads the signal in physical units.
	Samples() ([]float64, error)
}

func requireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMissingInput, path)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrMissingInput, path)
	}
	return nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
