package audio

import (
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep"
)

// DefaultRate is the rate speech tracks are assembled at.
const DefaultRate beep.SampleRate = 24000

// Track is a fixed-rate stereo sample buffer with values in [-1, 1].
// Values outside that range are kept; clipping happens on export.
type Track struct {
	Rate    beep.SampleRate
	Samples [][2]float64
}

// Silence returns a zeroed track of length d.
func Silence(rate beep.SampleRate, d time.Duration) *Track {
	n := 0
	if d > 0 {
		n = rate.N(d)
	}
	return &Track{Rate: rate, Samples: make([][2]float64, n)}
}

func (t *Track) Len() int {
	return len(t.Samples)
}

func (t *Track) Duration() time.Duration {
	return t.Rate.D(len(t.Samples))
}

func (t *Track) Clone() *Track {
	samples := make([][2]float64, len(t.Samples))
	copy(samples, t.Samples)
	return &Track{Rate: t.Rate, Samples: samples}
}

// Overlay adds clip into t starting at offset. Samples past the end of t are
// dropped. Overlapping content sums without limiting.
func (t *Track) Overlay(clip *Track, offset time.Duration) error {
	if clip == nil || clip.Len() == 0 {
		return nil
	}
	if offset < 0 {
		return fmt.Errorf("negative overlay offset %s", offset)
	}
	if clip.Rate != t.Rate {
		clip = clip.Resample(t.Rate)
	}

	start := t.Rate.N(offset)
	for i, s := range clip.Samples {
		j := start + i
		if j >= len(t.Samples) {
			break
		}
		t.Samples[j][0] += s[0]
		t.Samples[j][1] += s[1]
	}
	return nil
}

// Scale multiplies every sample by ratio.
func (t *Track) Scale(ratio float64) {
	for i := range t.Samples {
		t.Samples[i][0] *= ratio
		t.Samples[i][1] *= ratio
	}
}

// Truncate shortens t to at most d.
func (t *Track) Truncate(d time.Duration) {
	n := t.Rate.N(d)
	if n < 0 {
		n = 0
	}
	if n < len(t.Samples) {
		t.Samples = t.Samples[:n]
	}
}

// Fit pads with silence or truncates so t lasts exactly d.
func (t *Track) Fit(d time.Duration) {
	n := t.Rate.N(d)
	if n <= len(t.Samples) {
		t.Truncate(d)
		return
	}
	t.Samples = append(t.Samples, make([][2]float64, n-len(t.Samples))...)
}

// Fade applies linear gain ramps over the first in and last out of t.
func (t *Track) Fade(in, out time.Duration) {
	total := len(t.Samples)
	if n := min(t.Rate.N(in), total); n > 0 {
		for i := 0; i < n; i++ {
			g := float64(i) / float64(n)
			t.Samples[i][0] *= g
			t.Samples[i][1] *= g
		}
	}
	if n := min(t.Rate.N(out), total); n > 0 {
		for i := 0; i < n; i++ {
			g := float64(i) / float64(n)
			k := total - 1 - i
			t.Samples[k][0] *= g
			t.Samples[k][1] *= g
		}
	}
}

// Peak returns the largest absolute sample value.
func (t *Track) Peak() float64 {
	var peak float64
	for _, s := range t.Samples {
		peak = math.Max(peak, math.Max(math.Abs(s[0]), math.Abs(s[1])))
	}
	return peak
}

// Streamer exposes the track to beep consumers.
func (t *Track) Streamer() beep.Streamer {
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= len(t.Samples) {
			return 0, false
		}
		n := copy(samples, t.Samples[pos:])
		pos += n
		return n, true
	})
}

// FromStreamer drains s into a track at rate.
func FromStreamer(s beep.Streamer, rate beep.SampleRate) (*Track, error) {
	t := &Track{Rate: rate}
	buf := make([][2]float64, 4096)
	for {
		n, ok := s.Stream(buf)
		t.Samples = append(t.Samples, buf[:n]...)
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("read samples: %w", err)
	}
	return t, nil
}

// Resample converts t to rate.
func (t *Track) Resample(rate beep.SampleRate) *Track {
	if rate == t.Rate {
		return t.Clone()
	}
	out, err := FromStreamer(beep.Resample(4, t.Rate, rate, t.Streamer()), rate)
	if err != nil {
		// in-memory streamers never report errors
		return Silence(rate, t.Duration())
	}
	return out
}
