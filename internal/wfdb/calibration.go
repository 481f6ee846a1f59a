// Package wfdb reads the subset of the WFDB record format used by the PPG
// recordings: the textual .hea header that carries per-channel gain and
// baseline, and the interleaved 16-bit .dat waveform file.
package wfdb

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// Header field layout constants
const (
	// calibrationField is the zero-based whitespace field holding "gain(baseline)".
	calibrationField = 2

	offsetOpen  = "("
	offsetClose = ")"
	unitSep     = "/"
)

// Errors returned while reading headers and waveform files.
var (
	// ErrCalibrationNotFound indicates no header line mentions the channel.
	ErrCalibrationNotFound = errors.New("calibration not found")

	// ErrMalformedCalibration indicates the channel line exists but its
	// gain field cannot be parsed. Callers skip the recording.
	ErrMalformedCalibration = errors.New("malformed calibration")

	// ErrTruncatedRecording indicates the waveform byte count is not a whole
	// number of interleaved frames.
	ErrTruncatedRecording = errors.New("truncated recording")

	// ErrInvalidChannel indicates an impossible channel count or index.
	ErrInvalidChannel = errors.New("invalid channel selection")
)

// Calibration is the linear transform from stored integers to physical
// units: value = (raw + Offset) / Scale. Offset is meaningful only when
// HasOffset is set.
type Calibration struct {
	Scale     float64
	Offset    float64
	HasOffset bool
}

// Apply converts raw samples into physical values. The transform is applied
// exactly once; the input is not modified.
func (c Calibration) Apply(raw []int16) []float64 {
	out := make([]float64, len(raw))
	offset := 0.0
	if c.HasOffset {
		offset = c.Offset
	}
	for i, v := range raw {
		out[i] = (float64(v) + offset) / c.Scale
	}
	return out
}

// String renders the calibration in header notation.
func (c Calibration) String() string {
	s := strconv.FormatFloat(c.Scale, 'g', -1, 64)
	if c.HasOffset {
		s += offsetOpen + strconv.FormatFloat(c.Offset, 'g', -1, 64) + offsetClose
	}
	return s
}

// ParseCalibration finds the line for channel and parses its gain field.
// The first line carrying channel as a whitespace-separated token wins;
// failing that, the first line containing channel as a substring.
//
// The field is "<scale>(<offset>)" or "<scale>", optionally followed by a
// "/<unit>" suffix as written by WFDB tools.
func ParseCalibration(lines []string, channel string) (Calibration, error) {
	line, ok := channelLine(lines, channel)
	if !ok {
		return Calibration{}, fmt.Errorf("%w: channel %q", ErrCalibrationNotFound, channel)
	}
	return parseCalibrationLine(line)
}

// ReadCalibration scans a header stream line by line for channel.
func ReadCalibration(r io.Reader, channel string) (Calibration, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return Calibration{}, fmt.Errorf("reading header: %w", err)
	}
	return ParseCalibration(lines, channel)
}

func channelLine(lines []string, channel string) (string, bool) {
	if channel == "" {
		return "", false
	}
	fallback, found := "", false
	for _, line := range lines {
		if slices.Contains(strings.Fields(line), channel) {
			return line, true
		}
		if !found && strings.Contains(line, channel) {
			fallback, found = line, true
		}
	}
	return fallback, found
}

func parseCalibrationLine(line string) (Calibration, error) {
	fields := strings.Fields(line)
	if len(fields) <= calibrationField {
		return Calibration{}, fmt.Errorf("%w: line %q has no gain field", ErrMalformedCalibration, line)
	}
	field := fields[calibrationField]

	// Drop the unit suffix: "500(10)/mV" -> "500(10)"
	if i := strings.Index(field, unitSep); i >= 0 {
		field = field[:i]
	}

	scaleText, rest, hasOffset := strings.Cut(field, offsetOpen)
	scale, err := strconv.ParseFloat(scaleText, 64)
	if err != nil {
		return Calibration{}, fmt.Errorf("%w: scale %q: %v", ErrMalformedCalibration, scaleText, err)
	}
	if scale == 0 {
		return Calibration{}, fmt.Errorf("%w: zero scale", ErrMalformedCalibration)
	}

	cal := Calibration{Scale: scale}
	if !hasOffset {
		return cal, nil
	}

	offsetText, ok := strings.CutSuffix(rest, offsetClose)
	if !ok {
		return Calibration{}, fmt.Errorf("%w: unterminated offset in %q", ErrMalformedCalibration, field)
	}
	offset, err := strconv.ParseFloat(offsetText, 64)
	if err != nil {
		return Calibration{}, fmt.Errorf("%w: offset %q: %v", ErrMalformedCalibration, offsetText, err)
	}
	cal.Offset = offset
	cal.HasOffset = true
	return cal, nil
}
