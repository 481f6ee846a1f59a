package ppgprep

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nigm-lab/ppgprep/internal/spectrum"
	"github.com/nigm-lab/ppgprep/internal/testutil"
)

const (
	pulseHz       = 1.2 // 72 BPM
	recordSeconds = 20
)

var testLabel = LabelRecord{Glucose: 98, Age: 35, Gender: Male}

// syntheticRecording is a pulse-rate sine with baseline offset and
// broadband noise at the source rate.
func syntheticRecording() []float64 {
	n := recordSeconds * int(DefaultSourceRateHz)
	x := testutil.Sine(pulseHz, DefaultSourceRateHz, 1, n)
	return testutil.Offset(testutil.Noisy(x, 0.5, 7), 300)
}

func TestNew_StageOrder(t *testing.T) {
	p, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{StageLowPass, StageResample, StageBandPass, StageNormalize}, p.Stages())
	assert.Equal(t, DefaultChannelName, p.Channel().Name)
	assert.Equal(t, DefaultChannelIndex, p.Channel().Index)
}

func TestCondition_EndToEnd(t *testing.T) {
	for _, method := range []ResampleMethod{ResampleFourier, ResamplePolyphase} {
		t.Run(string(method), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.ResampleMethod = method
			p, err := New(cfg)
			require.NoError(t, err)

			x := syntheticRecording()
			y, err := p.Condition(x)
			require.NoError(t, err)

			require.Len(t, y, recordSeconds*int(DefaultTargetRateHz))
			testutil.AssertNoNaNOrInf(t, y)
			testutil.AssertMeanStd(t, y, 0, 1, testutil.MomentTolerance)

			freq, err := spectrum.DominantFrequency(y, DefaultTargetRateHz)
			require.NoError(t, err)
			resolution := DefaultTargetRateHz / float64(len(y))
			assert.InDelta(t, pulseHz, freq, resolution)

			bpm, err := spectrum.HeartRate(y, DefaultTargetRateHz)
			require.NoError(t, err)
			assert.InDelta(t, 72, bpm, 4)
		})
	}
}

func TestCondition_DoesNotModifyInput(t *testing.T) {
	p, err := New(DefaultConfig())
	require.NoError(t, err)

	x := syntheticRecording()
	orig := append([]float64(nil), x...)
	_, err = p.Condition(x)
	require.NoError(t, err)
	assert.Equal(t, orig, x)
}

func TestProcess_Row(t *testing.T) {
	p, err := New(DefaultConfig())
	require.NoError(t, err)

	row, err := p.Process("100001", syntheticRecording(), testLabel)
	require.NoError(t, err)

	assert.Equal(t, "100001", row.ID)
	assert.InDelta(t, 98.0, row.Glucose, 0)
	assert.InDelta(t, 35.0, row.Age, 0)
	assert.Equal(t, Male, row.Gender)
	assert.Len(t, row.Signal, 600)
}

func TestProcess_Failures(t *testing.T) {
	tests := []struct {
		name      string
		x         []float64
		label     LabelRecord
		wantStage string
		want      error
	}{
		{"empty", nil, testLabel, StageLowPass, ErrEmptySignal},
		{"shorter_than_lowpass_pad", make([]float64, 10), testLabel, StageLowPass, ErrSignalTooShort},
		{"no_target_samples", make([]float64, 20), testLabel, StageResample, ErrEmptySignal},
		{"shorter_than_bandpass_pad", make([]float64, 1000), testLabel, StageBandPass, ErrSignalTooShort},
		{"flat_line", make([]float64, 4350), testLabel, StageNormalize, ErrDegenerateSignal},
		{"bad_gender", syntheticRecording(), LabelRecord{Glucose: 90, Age: 40, Gender: Gender(5)}, StageLabel, ErrInvalidLabel},
		{"negative_glucose", syntheticRecording(), LabelRecord{Glucose: -1, Age: 40}, StageLabel, ErrInvalidLabel},
	}

	p, err := New(DefaultConfig())
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, err := p.Process("rec-1", tt.x, tt.label)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, DatasetRow{}, row, "no partial row")

			var rerr *RecordingError
			require.True(t, errors.As(err, &rerr))
			assert.Equal(t, "rec-1", rerr.ID)
			assert.Equal(t, tt.wantStage, rerr.Stage)
			assert.Contains(t, err.Error(), "recording rec-1")
		})
	}
}

func TestCondition_ErrorNamesStage(t *testing.T) {
	p, err := New(DefaultConfig())
	require.NoError(t, err)

	_, err = p.Condition(make([]float64, 20))
	require.ErrorIs(t, err, ErrEmptySignal)
	assert.Contains(t, err.Error(), StageResample)
}

func BenchmarkCondition(b *testing.B) {
	p, err := New(DefaultConfig())
	if err != nil {
		b.Fatalf("Failed to create pipeline: %v", err)
	}
	x := syntheticRecording()

	b.ResetTimer()
	b.ReportAllocs()
	for b.Loop() {
		if _, err := p.Condition(x); err != nil {
			b.Fatalf("Condition failed: %v", err)
		}
	}
}
