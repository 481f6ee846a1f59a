package ppgprep

// Default conditioning parameters.
const (
	DefaultSourceRateHz    = 2175.0
	DefaultTargetRateHz    = 30.0
	DefaultLowPassCutoffHz = 15.0
	DefaultBandPassLowHz   = 0.5
	DefaultBandPassHighHz  = 8.0
	DefaultFilterOrder     = 4
)

// Default channel selection: green PPG, the middle of three channels.
const (
	DefaultChannelName  = "PPG_G"
	DefaultChannelIndex = 1
	DefaultChannelCount = 3
)

// Filter order limits
const (
	minFilterOrder = 1
	maxFilterOrder = 16
)

// Stage names reported in RecordingError.
const (
	StageLoad      = "load"
	StageLabel     = "label"
	StageLowPass   = "lowpass"
	StageResample  = "resample"
	StageBandPass  = "bandpass"
	StageNormalize = "normalize"
)
