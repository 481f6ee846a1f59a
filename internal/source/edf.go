package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/OpenPSG/edf"
)

// edfChunk is the number of samples requested per SignalReader.Read call.
const edfChunk = 4096

// EDF is one signal of an EDF/EDF+ file. Physical scaling is taken from the
// file's signal header.
type EDF struct {
	Name   string
	Path   string
	Signal int
}

// NewEDF returns the recording for signal index of the file at path, named
// after the file.
func NewEDF(path string, signal int) *EDF {
	return &EDF{
		Name:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Path:   path,
		Signal: signal,
	}
}

// ID implements Recording.
func (r *EDF) ID() string { return r.Name }

// Samples implements Recording.
func (r *EDF) Samples() ([]float64, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open EDF: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadEDFSignal(f, r.Signal)
}

// ReadEDFSignal reads every sample of one signal.
func ReadEDFSignal(rs io.ReadSeeker, signal int) ([]float64, error) {
	er, err := edf.Open(rs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSignal, err)
	}
	sr, err := er.Signal(signal)
	if err != nil {
		return nil, fmt.Errorf("%w: signal %d: %v", ErrMalformedSignal, signal, err)
	}

	var out []float64
	buf := make([]float64, edfChunk)
	for {
		n, err := sr.Read(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedSignal, err)
		}
	}
	return out, nil
}
