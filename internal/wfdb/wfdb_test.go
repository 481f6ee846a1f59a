package wfdb

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testChannel   = "PPG_G"
	testTolerance = 1e-12
)

// encodeInt16 packs samples as little-endian int16.
func encodeInt16(samples []int16) []byte {
	buf := make([]byte, len(samples)*bytesPerSample)
	for i, v := range samples {
		binary.LittleEndian.PutUint16(buf[i*bytesPerSample:], uint16(v))
	}
	return buf
}

func TestParseCalibration(t *testing.T) {
	tests := []struct {
		name       string
		lines      []string
		wantScale  float64
		wantOffset float64
		hasOffset  bool
	}{
		{
			name:       "scale_and_offset",
			lines:      []string{"PPG_G 2 500(10) 16 0 0 0 PPG_G"},
			wantScale:  500,
			wantOffset: 10,
			hasOffset:  true,
		},
		{
			name:      "scale_only",
			lines:     []string{"100001_PPG.dat 16 250 16 0 0 0 0 PPG_G"},
			wantScale: 250,
		},
		{
			name:       "negative_offset_with_unit",
			lines:      []string{"x.dat 16 1000(-32)/mV 16 0 0 0 0 PPG_G"},
			wantScale:  1000,
			wantOffset: -32,
			hasOffset:  true,
		},
		{
			name: "first_matching_line_wins",
			lines: []string{
				"100001_PPG 3 30 1000",
				"100001_PPG.dat 16 2(1) 16 0 0 0 0 PPG_R",
				"100001_PPG.dat 16 4(3) 16 0 0 0 0 PPG_G",
				"100001_PPG.dat 16 8(5) 16 0 0 0 0 PPG_G",
			},
			wantScale:  4,
			wantOffset: 3,
			hasOffset:  true,
		},
		{
			name: "exact_token_beats_earlier_substring",
			lines: []string{
				"100001_PPG.dat 16 2(1) 16 0 0 0 0 PPG_GX",
				"100001_PPG.dat 16 4(3) 16 0 0 0 0 PPG_G",
			},
			wantScale:  4,
			wantOffset: 3,
			hasOffset:  true,
		},
		{
			name:       "substring_fallback",
			lines:      []string{"100001_PPG.dat 16 6(2) 16 0 0 0 0 green:PPG_G"},
			wantScale:  6,
			wantOffset: 2,
			hasOffset:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal, err := ParseCalibration(tt.lines, testChannel)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantScale, cal.Scale, testTolerance)
			assert.InDelta(t, tt.wantOffset, cal.Offset, testTolerance)
			assert.Equal(t, tt.hasOffset, cal.HasOffset)
		})
	}
}

func TestParseCalibration_Errors(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  error
	}{
		{"no_lines", nil, ErrCalibrationNotFound},
		{"other_channels_only", []string{"a.dat 16 500(0) 16 0 0 0 0 PPG_R"}, ErrCalibrationNotFound},
		{"missing_field", []string{"PPG_G 2"}, ErrMalformedCalibration},
		{"not_a_number", []string{"PPG_G 2 abc(10) 16"}, ErrMalformedCalibration},
		{"bad_offset", []string{"PPG_G 2 500(ten) 16"}, ErrMalformedCalibration},
		{"unterminated_offset", []string{"PPG_G 2 500(10 16"}, ErrMalformedCalibration},
		{"zero_scale", []string{"PPG_G 2 0(10) 16"}, ErrMalformedCalibration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCalibration(tt.lines, testChannel)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReadCalibration(t *testing.T) {
	header := strings.Join([]string{
		"100001_PPG 3 30 300",
		"100001_PPG.dat 16 500(10) 16 0 0 0 0 PPG_R",
		"100001_PPG.dat 16 400(20) 16 0 0 0 0 PPG_G",
		"100001_PPG.dat 16 300(30) 16 0 0 0 0 PPG_B",
	}, "\n")

	cal, err := ReadCalibration(strings.NewReader(header), testChannel)
	require.NoError(t, err)
	assert.Equal(t, Calibration{Scale: 400, Offset: 20, HasOffset: true}, cal)
	assert.Equal(t, "400(20)", cal.String())
}

func TestCalibration_Apply(t *testing.T) {
	raw := []int16{-10, 0, 490, 1000}

	withOffset := Calibration{Scale: 500, Offset: 10, HasOffset: true}
	got := withOffset.Apply(raw)
	assert.InDeltaSlice(t, []float64{0, 0.02, 1, 2.02}, got, testTolerance)

	plain := Calibration{Scale: 500}
	got = plain.Apply(raw)
	assert.InDeltaSlice(t, []float64{-0.02, 0, 0.98, 2}, got, testTolerance)

	assert.Equal(t, []int16{-10, 0, 490, 1000}, raw, "input must not be modified")
}

func TestDecodeChannel_ThreeChannels(t *testing.T) {
	const frames = 5
	flat := make([]int16, 3*frames)
	for i := range flat {
		flat[i] = int16(i*7 - 20)
	}

	got, err := DecodeChannel(encodeInt16(flat), 3, 1)
	require.NoError(t, err)
	require.Len(t, got, frames)
	for i, v := range got {
		assert.Equal(t, flat[1+3*i], v, "frame %d", i)
	}
}

func TestDecodeChannel_NegativeValues(t *testing.T) {
	got, err := DecodeChannel(encodeInt16([]int16{-32768, 32767, -1, 1}), 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []int16{-32768, -1}, got)
}

func TestDecodeChannel_Errors(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		channels int
		index    int
		want     error
	}{
		{"odd_byte_count", make([]byte, 7), 3, 1, ErrTruncatedRecording},
		{"partial_frame", make([]byte, 10), 3, 1, ErrTruncatedRecording},
		{"zero_channels", make([]byte, 6), 0, 0, ErrInvalidChannel},
		{"index_out_of_range", make([]byte, 6), 3, 3, ErrInvalidChannel},
		{"negative_index", make([]byte, 6), 3, -1, ErrInvalidChannel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeChannel(tt.data, tt.channels, tt.index)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeChannel_Empty(t *testing.T) {
	got, err := DecodeChannel(nil, 3, 1)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadRecord(t *testing.T) {
	dir := t.TempDir()
	headerPath := filepath.Join(dir, "100001_PPG.hea")
	dataPath := filepath.Join(dir, "100001_PPG.dat")

	header := "100001_PPG 3 30 2\n" +
		"100001_PPG.dat 16 100(0) 16 0 0 0 0 PPG_R\n" +
		"100001_PPG.dat 16 50(50) 16 0 0 0 0 PPG_G\n" +
		"100001_PPG.dat 16 100(0) 16 0 0 0 0 PPG_B\n"
	require.NoError(t, os.WriteFile(headerPath, []byte(header), 0o600))
	require.NoError(t, os.WriteFile(dataPath, encodeInt16([]int16{1, 50, 3, 4, 150, 6}), 0o600))

	got, err := ReadRecord(headerPath, dataPath, ChannelSpec{Name: testChannel, Count: 3, Index: 1})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2, 4}, got, testTolerance)
}

func TestReadRecord_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadRecord(filepath.Join(dir, "x.hea"), filepath.Join(dir, "x.dat"),
		ChannelSpec{Name: testChannel, Count: 3, Index: 1})
	require.Error(t, err)
}
