// Package ppgprep prepares photoplethysmography (PPG) recordings for
// machine-learning use.
//
// A raw recording is decoded from its interleaved 16-bit waveform file,
// rescaled with the calibration in its header, and conditioned to a
// canonical form:
//
//	raw (2175 Hz) -> zero-phase low-pass (15 Hz) -> resample (30 Hz)
//	              -> zero-phase band-pass (0.5-8 Hz) -> z-score
//
// The conditioned signal is paired with the subject's clinical labels
// (glucose, age, gender) to form a [DatasetRow].
//
// # Quick Start
//
// Conditioning a single signal:
//
//	p, err := ppgprep.New(ppgprep.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	row, err := p.Process("100001", samples, ppgprep.LabelRecord{
//	    Glucose: 98, Age: 35, Gender: ppgprep.Male,
//	})
//
// Processing many recordings in parallel:
//
//	report, err := ppgprep.NewBatch(p).Run(ctx, jobs)
//	if err != nil {
//	    log.Fatal(err) // cancelled
//	}
//	for _, f := range report.Failures {
//	    log.Printf("skipped %s: %v", f.ID, f)
//	}
//
// # Errors
//
// Every per-recording failure is reported as a [*RecordingError] naming the
// recording and the stage that failed. The underlying cause can be tested
// with errors.Is against the exported sentinels, for example
// [ErrTruncatedRecording] or [ErrDegenerateSignal]. A failure never aborts
// the rest of a batch; only cancellation does.
//
// # Concurrency
//
// A [Pipeline] is immutable after [New] and safe for concurrent use. Every
// stage allocates its own output, so no buffer is shared between stages or
// between recordings.
package ppgprep
