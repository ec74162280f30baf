package audio

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// WriteWAV encodes t as 16-bit stereo PCM. Samples are clipped to [-1, 1].
func WriteWAV(path string, t *Track) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}

	format := beep.Format{SampleRate: t.Rate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, t.Streamer(), format); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("close wav: %w", err)
	}
	return nil
}

// DecodePCM16 reads interleaved signed 16-bit little-endian samples, the raw
// format returned by the speech APIs and by ffmpeg's s16le muxer.
func DecodePCM16(data []byte, rate beep.SampleRate, channels int) (*Track, error) {
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("unsupported channel count %d", channels)
	}
	frame := 2 * channels
	n := len(data) / frame

	t := &Track{Rate: rate, Samples: make([][2]float64, n)}
	for i := 0; i < n; i++ {
		off := i * frame
		left := pcmToFloat(binary.LittleEndian.Uint16(data[off:]))
		right := left
		if channels == 2 {
			right = pcmToFloat(binary.LittleEndian.Uint16(data[off+2:]))
		}
		t.Samples[i] = [2]float64{left, right}
	}
	return t, nil
}

func pcmToFloat(v uint16) float64 {
	return float64(int16(v)) / 32768
}
