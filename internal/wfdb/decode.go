package wfdb

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// bytesPerSample is the width of one stored sample (WFDB format 16).
const bytesPerSample = 2

// ChannelSpec selects one channel of an interleaved recording.
type ChannelSpec struct {
	// Name is the header token identifying the channel, e.g. "PPG_G".
	Name string

	// Count is the number of interleaved channels in the .dat file.
	Count int

	// Index is the zero-based position of the channel inside each frame.
	Index int
}

// Validate checks that Index addresses one of Count channels.
func (s ChannelSpec) Validate() error {
	if s.Count < 1 {
		return fmt.Errorf("%w: channel count %d", ErrInvalidChannel, s.Count)
	}
	if s.Index < 0 || s.Index >= s.Count {
		return fmt.Errorf("%w: index %d outside [0, %d)", ErrInvalidChannel, s.Index, s.Count)
	}
	return nil
}

// DecodeChannel extracts channel index from little-endian int16 samples
// interleaved across channels. Each group of channels consecutive samples
// is one frame; the index-th sample of every frame is returned.
func DecodeChannel(data []byte, channels, index int) ([]int16, error) {
	spec := ChannelSpec{Count: channels, Index: index}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	if len(data)%bytesPerSample != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of samples", ErrTruncatedRecording, len(data))
	}
	samples := len(data) / bytesPerSample
	if samples%channels != 0 {
		return nil, fmt.Errorf("%w: %d samples is not a multiple of %d channels", ErrTruncatedRecording, samples, channels)
	}

	frames := samples / channels
	frameBytes := channels * bytesPerSample
	out := make([]int16, frames)
	for f := range frames {
		pos := f*frameBytes + index*bytesPerSample
		out[f] = int16(binary.LittleEndian.Uint16(data[pos : pos+bytesPerSample]))
	}
	return out, nil
}

// ReadChannel parses the calibration for spec.Name from header, decodes the
// selected channel from data and returns it in physical units.
func ReadChannel(header io.Reader, data []byte, spec ChannelSpec) ([]float64, error) {
	cal, err := ReadCalibration(header, spec.Name)
	if err != nil {
		return nil, err
	}
	raw, err := DecodeChannel(data, spec.Count, spec.Index)
	if err != nil {
		return nil, err
	}
	return cal.Apply(raw), nil
}

// ReadRecord loads a header/data file pair from disk.
func ReadRecord(headerPath, dataPath string, spec ChannelSpec) ([]float64, error) {
	hf, err := os.Open(headerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open header: %w", err)
	}
	defer func() { _ = hf.Close() }()

	data, err := os.ReadFile(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read waveform: %w", err)
	}

	return ReadChannel(hf, data, spec)
}
