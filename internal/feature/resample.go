package feature

import (
	"github.com/pkg/errors"
	resampling "github.com/tphakala/go-audio-resampling"
)

// Resample converts a to the given rate. Audio already at rate is returned
// unchanged.
func Resample(a *Audio, rate int) (*Audio, error) {
	if rate <= 0 {
		return nil, errors.Errorf("resample: invalid target rate %d", rate)
	}
	if a.SampleRate == rate {
		return a, nil
	}

	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(a.SampleRate),
		OutputRate: float64(rate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, errors.Wrap(err, "create resampler")
	}

	input := make([]float64, len(a.Samples))
	for i, s := range a.Samples {
		input[i] = float64(s)
	}
	output, err := r.Process(input)
	if err != nil {
		return nil, errors.Wrapf(err, "resample %d Hz to %d Hz", a.SampleRate, rate)
	}
	// The filter holds the end of the utterance until flushed.
	tail, err := r.Flush()
	if err != nil {
		return nil, errors.Wrapf(err, "flush %d Hz to %d Hz", a.SampleRate, rate)
	}
	output = append(output, tail...)

	samples := make([]float32, len(output))
	for i, s := range output {
		samples[i] = float32(s)
	}
	return &Audio{SampleRate: rate, Samples: samples}, nil
}
