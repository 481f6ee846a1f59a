package inspect

import (
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavBitDepth  = 16
	wavChannels  = 1
	wavPCMFormat = 1
	maxInt16     = 32767.0

	// Peak level after scaling, leaving headroom below full scale.
	wavPeak = 0.9 * maxInt16
)

// WriteWAV writes values as 16-bit mono PCM at rateHz (rounded to whole
// hertz), scaled so the largest magnitude sits just below full scale.
// Play it back at a higher rate to hear a pulse train.
func WriteWAV(ws io.WriteSeeker, values []float64, rateHz float64) error {
	if len(values) == 0 {
		return fmt.Errorf("%w: empty signal", ErrNoData)
	}
	rate := int(math.Round(rateHz))
	if rate < 1 {
		return fmt.Errorf("invalid sample rate %g Hz", rateHz)
	}

	var peak float64
	for _, v := range values {
		peak = max(peak, math.Abs(v))
	}
	gain := 0.0
	if peak > 0 {
		gain = wavPeak / peak
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: wavChannels, SampleRate: rate},
		Data:           make([]int, len(values)),
		SourceBitDepth: wavBitDepth,
	}
	for i, v := range values {
		buf.Data[i] = int(math.Round(v * gain))
	}

	enc := wav.NewEncoder(ws, rate, wavBitDepth, wavChannels, wavPCMFormat)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalise WAV: %w", err)
	}
	return nil
}

// ReadWAV reads the first channel of a PCM WAV file as values in [-1, 1]
// together with its sample rate.
func ReadWAV(rs io.ReadSeeker) ([]float64, int, error) {
	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read WAV data: %w", err)
	}

	channels := max(buf.Format.NumChannels, 1)
	scale := 1 / (math.Exp2(float64(dec.BitDepth-1)) - 1)
	out := make([]float64, len(buf.Data)/channels)
	for i := range out {
		out[i] = float64(buf.Data[i*channels]) * scale
	}
	return out, buf.Format.SampleRate, nil
}
