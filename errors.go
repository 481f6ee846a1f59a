package ppgprep

import (
	"errors"
	"fmt"

	"github.com/nigm-lab/ppgprep/internal/filter"
	"github.com/nigm-lab/ppgprep/internal/labels"
	"github.com/nigm-lab/ppgprep/internal/normalize"
	"github.com/nigm-lab/ppgprep/internal/resample"
	"github.com/nigm-lab/ppgprep/internal/source"
	"github.com/nigm-lab/ppgprep/internal/wfdb"
)

// Errors returned while preparing recordings. Per-recording errors arrive
// wrapped in a *RecordingError; test them with errors.Is.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrCalibrationNotFound indicates the header has no line for the channel.
	ErrCalibrationNotFound = wfdb.ErrCalibrationNotFound

	// ErrMalformedCalibration indicates an unparseable gain field. The
	// recording is skipped.
	ErrMalformedCalibration = wfdb.ErrMalformedCalibration

	// ErrTruncatedRecording indicates a waveform that is not a whole number
	// of frames.
	ErrTruncatedRecording = wfdb.ErrTruncatedRecording

	// ErrInvalidFilterBand indicates a cutoff outside (0, Nyquist) or an
	// empty band.
	ErrInvalidFilterBand = filter.ErrInvalidFilterBand

	// ErrEmptySignal indicates an empty signal, or one too short to yield
	// any sample at the target rate.
	ErrEmptySignal = filter.ErrEmptySignal

	// ErrSignalTooShort indicates a signal no longer than a filter's edge
	// padding at the rate it is filtered.
	ErrSignalTooShort = filter.ErrSignalTooShort

	// ErrDegenerateSignal indicates a constant signal that cannot be
	// normalised.
	ErrDegenerateSignal = normalize.ErrDegenerateSignal

	// ErrNonFiniteSample indicates NaN or Inf in a signal.
	ErrNonFiniteSample = normalize.ErrNonFinite

	// ErrUnsupportedRatio indicates rates the polyphase resampler cannot
	// express as a small integer ratio.
	ErrUnsupportedRatio = resample.ErrUnsupportedRatio

	// ErrMissingLabel indicates no label row for a recording.
	ErrMissingLabel = labels.ErrMissingLabel

	// ErrInvalidLabel indicates a label row that cannot be interpreted.
	ErrInvalidLabel = labels.ErrInvalidLabel

	// ErrMissingInput indicates a missing input directory. It is a setup
	// error and halts a batch before any recording is processed.
	ErrMissingInput = source.ErrMissingInput
)

// RecordingError reports the failure of one recording.
type RecordingError struct {
	// ID identifies the recording.
	ID string

	// Stage is the step that failed, one of the Stage constants.
	Stage string

	// Err is the underlying cause.
	Err error
}

func (e *RecordingError) Error() string {
	return fmt.Sprintf("recording %s: %s: %v", e.ID, e.Stage, e.Err)
}

func (e *RecordingError) Unwrap() error {
	return e.Err
}
