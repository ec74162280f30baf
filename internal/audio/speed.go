package audio

import (
	"errors"
	"time"
)

// ErrTooShort is returned by SpeedUp when the track has fewer than two chunks.
var ErrTooShort = errors.New("track too short to speed up")

const (
	speedChunk     = 150 * time.Millisecond
	speedCrossfade = 25 * time.Millisecond
)

// SpeedUp shortens t by ratio without changing pitch. It drops a slice from
// every chunk and crossfades the seams, the same granular method pydub uses,
// so the result is close to, but not exactly, Duration()/ratio.
func (t *Track) SpeedUp(ratio float64) (*Track, error) {
	if ratio <= 1 {
		return t.Clone(), nil
	}

	atk := 1 / ratio
	chunk := t.Rate.N(speedChunk)
	var remove int
	if ratio < 2 {
		remove = int(float64(chunk) * (1 - atk) / atk)
	} else {
		remove = chunk
		chunk = int(atk * float64(chunk) / (1 - atk))
	}
	crossfade := min(t.Rate.N(speedCrossfade), remove-1)
	if crossfade < 0 {
		crossfade = 0
	}

	step := chunk + remove
	if step <= 0 || len(t.Samples) <= step {
		return nil, ErrTooShort
	}

	keep := step - (remove - crossfade)
	out := &Track{Rate: t.Rate, Samples: make([][2]float64, 0, len(t.Samples)/int(ratio)+step)}

	first := true
	for pos := 0; pos < len(t.Samples); pos += step {
		end := pos + step
		last := end >= len(t.Samples)
		if last {
			end = len(t.Samples)
		}
		piece := t.Samples[pos:end]
		if !last {
			piece = piece[:keep]
		}

		// the final chunk is appended whole, without a crossfade
		if first || last {
			out.Samples = append(out.Samples, piece...)
			first = false
			continue
		}
		out.Samples = appendCrossfade(out.Samples, piece, crossfade)
	}
	return out, nil
}

// appendCrossfade blends the tail of dst with the head of src over n samples.
func appendCrossfade(dst, src [][2]float64, n int) [][2]float64 {
	n = min(n, len(dst), len(src))
	base := len(dst) - n
	for i := 0; i < n; i++ {
		g := float64(i) / float64(n)
		dst[base+i][0] = dst[base+i][0]*(1-g) + src[i][0]*g
		dst[base+i][1] = dst[base+i][1]*(1-g) + src[i][1]*g
	}
	return append(dst, src[n:]...)
}
