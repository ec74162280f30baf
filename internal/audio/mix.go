package audio

import (
	"fmt"
	"time"
)

// MixSpec sets how loud the original audio stays under the synthetic track.
type MixSpec struct {
	OriginalRatio float64
}

// DefaultMix keeps the original at 30% volume.
func DefaultMix() MixSpec {
	return MixSpec{OriginalRatio: 0.3}
}

func (m MixSpec) Validate() error {
	if m.OriginalRatio < 0 || m.OriginalRatio > 1 {
		return fmt.Errorf("original ratio must be within [0,1], got %v", m.OriginalRatio)
	}
	return nil
}

// Mixer combines the original and synthetic tracks into one of length total.
// Implementations may reuse the synthetic track's buffer for the result.
type Mixer interface {
	Mix(original, synthetic *Track, spec MixSpec, total time.Duration) (*Track, error)
}

// AdditiveMixer computes out = original*ratio + synthetic in place: the
// synthetic track is fitted to total and becomes the result, the original is
// only read. A nil original is treated as silence.
type AdditiveMixer struct{}

func (AdditiveMixer) Mix(original, synthetic *Track, spec MixSpec, total time.Duration) (*Track, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if synthetic == nil {
		return nil, fmt.Errorf("mix: synthetic track is required")
	}

	out := synthetic
	out.Fit(total)

	if original == nil || spec.OriginalRatio == 0 {
		return out, nil
	}

	bed := original
	if bed.Rate != out.Rate {
		bed = bed.Resample(out.Rate)
	}
	ratio := spec.OriginalRatio
	n := min(len(bed.Samples), len(out.Samples))
	for i := 0; i < n; i++ {
		out.Samples[i][0] += bed.Samples[i][0] * ratio
		out.Samples[i][1] += bed.Samples[i][1] * ratio
	}
	return out, nil
}
