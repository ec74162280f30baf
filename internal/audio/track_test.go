package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep"
)

const testRate = 8000

func tone(d time.Duration, amp float64) *Track {
	t := Silence(testRate, d)
	for i := range t.Samples {
		v := amp * math.Sin(2*math.Pi*440*float64(i)/testRate)
		t.Samples[i] = [2]float64{v, v}
	}
	return t
}

func constant(d time.Duration, v float64) *Track {
	t := Silence(testRate, d)
	for i := range t.Samples {
		t.Samples[i] = [2]float64{v, v}
	}
	return t
}

func TestSilence(t *testing.T) {
	tr := Silence(testRate, 3*time.Second)
	if tr.Len() != 3*testRate {
		t.Fatalf("len = %d, want %d", tr.Len(), 3*testRate)
	}
	if tr.Duration() != 3*time.Second {
		t.Errorf("duration = %v", tr.Duration())
	}
	if tr.Peak() != 0 {
		t.Errorf("silence has energy %v", tr.Peak())
	}
	if Silence(testRate, -time.Second).Len() != 0 {
		t.Errorf("negative duration should give an empty track")
	}
}

func TestOverlayIsAdditive(t *testing.T) {
	base := constant(time.Second, 0.25)
	clip := constant(500*time.Millisecond, 0.5)

	if err := base.Overlay(clip, 250*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if got := base.Samples[0][0]; got != 0.25 {
		t.Errorf("before offset = %v", got)
	}
	if got := base.Samples[testRate/2][0]; got != 0.75 {
		t.Errorf("inside overlay = %v, want 0.75", got)
	}

	// overlapping clips sum past full scale
	if err := base.Overlay(clip, 250*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if got := base.Samples[testRate/2][0]; got != 1.25 {
		t.Errorf("double overlay = %v, want 1.25", got)
	}
}

func TestOverlayPastEndIsDropped(t *testing.T) {
	base := Silence(testRate, time.Second)
	if err := base.Overlay(constant(time.Second, 0.5), 900*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if base.Len() != testRate {
		t.Errorf("overlay grew the track to %d", base.Len())
	}
	if err := base.Overlay(constant(time.Second, 0.5), 5*time.Second); err != nil {
		t.Fatal(err)
	}
	if err := base.Overlay(constant(time.Second, 0.5), -time.Second); err == nil {
		t.Error("expected error for negative offset")
	}
}

func TestOverlayResamples(t *testing.T) {
	base := Silence(testRate, time.Second)
	clip := &Track{Rate: 2 * testRate, Samples: constant(time.Second, 0.5).Samples}
	clip.Samples = append(clip.Samples, clip.Samples...)
	if err := base.Overlay(clip, 0); err != nil {
		t.Fatal(err)
	}
	if math.Abs(base.Samples[testRate/2][0]-0.5) > 0.01 {
		t.Errorf("resampled overlay = %v", base.Samples[testRate/2][0])
	}
}

func TestFitAndTruncate(t *testing.T) {
	tr := constant(time.Second, 1)
	tr.Fit(2 * time.Second)
	if tr.Len() != 2*testRate || tr.Samples[tr.Len()-1][0] != 0 {
		t.Errorf("Fit did not pad with silence")
	}
	tr.Truncate(500 * time.Millisecond)
	if tr.Duration() != 500*time.Millisecond {
		t.Errorf("Truncate left %v", tr.Duration())
	}
	tr.Fit(100 * time.Millisecond)
	if tr.Duration() != 100*time.Millisecond {
		t.Errorf("Fit left %v", tr.Duration())
	}
}

func TestFade(t *testing.T) {
	tr := constant(time.Second, 1)
	tr.Fade(100*time.Millisecond, 100*time.Millisecond)

	if tr.Samples[0][0] != 0 {
		t.Errorf("first sample = %v, want 0", tr.Samples[0][0])
	}
	if tr.Samples[tr.Len()-1][0] != 0 {
		t.Errorf("last sample = %v, want 0", tr.Samples[tr.Len()-1][0])
	}
	if tr.Samples[testRate/2][0] != 1 {
		t.Errorf("middle sample = %v, want 1", tr.Samples[testRate/2][0])
	}
	if g := tr.Samples[testRate/20][0]; g < 0.45 || g > 0.55 {
		t.Errorf("halfway through fade-in = %v", g)
	}
}

func TestSpeedUp(t *testing.T) {
	clip := tone(4*time.Second, 0.5)

	fast, err := clip.SpeedUp(2)
	if err != nil {
		t.Fatalf("SpeedUp returned error: %v", err)
	}
	d := fast.Duration()
	if d < 1900*time.Millisecond || d > 2200*time.Millisecond {
		t.Errorf("2x speed-up of 4s gave %v", d)
	}
	if fast.Peak() > 0.5+1e-9 {
		t.Errorf("speed-up amplified the signal: %v", fast.Peak())
	}

	mild, err := clip.SpeedUp(1.5)
	if err != nil {
		t.Fatalf("SpeedUp returned error: %v", err)
	}
	if d := mild.Duration(); d < 2500*time.Millisecond || d > 2900*time.Millisecond {
		t.Errorf("1.5x speed-up of 4s gave %v", d)
	}

	same, err := clip.SpeedUp(1)
	if err != nil || same.Len() != clip.Len() {
		t.Errorf("ratio 1 should copy the track")
	}

	if _, err := tone(100*time.Millisecond, 0.5).SpeedUp(2); err != ErrTooShort {
		t.Errorf("expected ErrTooShort, got %v", err)
	}
}

func TestAdditiveMixer(t *testing.T) {
	original := constant(2*time.Second, 0.5)
	synthetic := func() *Track {
		tr := Silence(testRate, time.Second)
		if err := tr.Overlay(constant(500*time.Millisecond, 0.25), 0); err != nil {
			t.Fatal(err)
		}
		return tr
	}

	var m AdditiveMixer

	only, err := m.Mix(original, synthetic(), MixSpec{OriginalRatio: 0}, 2*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if only.Duration() != 2*time.Second {
		t.Errorf("mix length = %v, want total", only.Duration())
	}
	if only.Samples[0][0] != 0.25 || only.Samples[testRate][0] != 0 {
		t.Errorf("ratio 0 leaked original audio: %v %v", only.Samples[0][0], only.Samples[testRate][0])
	}

	sum, err := m.Mix(original, synthetic(), MixSpec{OriginalRatio: 1}, 2*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Samples[0][0] != 0.75 {
		t.Errorf("ratio 1 overlay region = %v, want 0.75", sum.Samples[0][0])
	}
	if sum.Samples[testRate][0] != 0.5 {
		t.Errorf("ratio 1 outside overlay = %v, want 0.5", sum.Samples[testRate][0])
	}

	noOriginal, err := m.Mix(nil, synthetic(), DefaultMix(), 500*time.Millisecond)
	if err != nil || noOriginal.Duration() != 500*time.Millisecond {
		t.Errorf("nil original mix = %v, %v", noOriginal, err)
	}

	if _, err := m.Mix(original, synthetic(), MixSpec{OriginalRatio: 1.5}, time.Second); err == nil {
		t.Error("expected error for ratio outside [0,1]")
	}
}

func TestAdditiveMixerInPlace(t *testing.T) {
	original := constant(time.Second, 0.5)
	synthetic := constant(time.Second, 0.25)

	out, err := AdditiveMixer{}.Mix(original, synthetic, MixSpec{OriginalRatio: 0.5}, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if &out.Samples[0] != &synthetic.Samples[0] {
		t.Error("mix allocated a new buffer instead of reusing the synthetic track")
	}
	if out.Samples[10][1] != 0.5 {
		t.Errorf("mixed sample = %v, want 0.5", out.Samples[10][1])
	}
	for i, s := range original.Samples {
		if s != [2]float64{0.5, 0.5} {
			t.Fatalf("original sample %d modified to %v", i, s)
		}
	}

	resampled := Silence(2*testRate, time.Second)
	other := constant(time.Second, 0.5)
	if _, err := (AdditiveMixer{}).Mix(other, resampled, MixSpec{OriginalRatio: 1}, time.Second); err != nil {
		t.Fatal(err)
	}
	if other.Rate != testRate || other.Samples[0][0] != 0.5 {
		t.Errorf("resampling changed the original: rate %d sample %v", other.Rate, other.Samples[0][0])
	}
}

func TestPCM16(t *testing.T) {
	data := []byte{0x00, 0x40, 0x00, 0xC0} // 16384, -16384
	mono, err := DecodePCM16(data, testRate, 1)
	if err != nil {
		t.Fatal(err)
	}
	if mono.Len() != 2 || mono.Samples[0] != [2]float64{0.5, 0.5} || mono.Samples[1][1] != -0.5 {
		t.Errorf("mono decode = %v", mono.Samples)
	}

	stereo, err := DecodePCM16(data, testRate, 2)
	if err != nil {
		t.Fatal(err)
	}
	if stereo.Len() != 1 || stereo.Samples[0] != [2]float64{0.5, -0.5} {
		t.Errorf("stereo decode = %v", stereo.Samples)
	}

	if _, err := DecodePCM16(data, testRate, 6); err == nil {
		t.Error("expected error for 6 channels")
	}

	if got := pcmToFloat(0x8000); got != -1 {
		t.Errorf("full-scale negative = %v, want -1", got)
	}
}

// readPCM returns the 16-bit stereo samples of a canonical WAV file.
func readPCM(t *testing.T, path string) *Track {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("%s is not a RIFF/WAVE file", path)
	}
	i := bytes.Index(data[12:], []byte("data"))
	if i < 0 {
		t.Fatalf("%s has no data chunk", path)
	}
	body := data[12+i+8:]
	size := int(binary.LittleEndian.Uint32(data[12+i+4:]))
	rate := beep.SampleRate(binary.LittleEndian.Uint32(data[24:28]))
	tr, err := DecodePCM16(body[:min(size, len(body))], rate, 2)
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tone.wav")
	src := tone(250*time.Millisecond, 0.5)

	if err := WriteWAV(path, src); err != nil {
		t.Fatalf("WriteWAV returned error: %v", err)
	}
	got := readPCM(t, path)
	if got.Rate != testRate || got.Len() != src.Len() {
		t.Fatalf("read back rate=%d len=%d, want %d/%d", got.Rate, got.Len(), testRate, src.Len())
	}
	for i := 0; i < src.Len(); i += 97 {
		if math.Abs(got.Samples[i][0]-src.Samples[i][0]) > 1e-3 {
			t.Fatalf("sample %d = %v, want %v", i, got.Samples[i][0], src.Samples[i][0])
		}
	}
	if peak := got.Peak(); math.Abs(peak-src.Peak()) > 1e-3 {
		t.Errorf("written peak = %v, want %v", peak, src.Peak())
	}
}
