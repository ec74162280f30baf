package timecode

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/apperr"
)

func mustSeconds(seconds float64) time.Duration {
	d, err := FromSeconds(seconds)
	if err != nil {
		panic(err)
	}
	return d
}

func TestFormatSRT(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{3661.234, "01:01:01,234"},
		{1.9999, "00:00:01,999"},
		{59.5, "00:00:59,500"},
		{90000.001, "25:00:00,001"},
		{0.0005, "00:00:00,000"},
	}

	for _, tt := range tests {
		got, err := FormatSRT(tt.seconds)
		if err != nil {
			t.Fatalf("FormatSRT(%v) returned error: %v", tt.seconds, err)
		}
		if got != tt.want {
			t.Errorf("FormatSRT(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatVTT(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0.0, "00:00:00.000"},
		{3661.234, "01:01:01.234"},
		{7.1, "00:00:07.100"},
	}

	for _, tt := range tests {
		got, err := FormatVTT(tt.seconds)
		if err != nil {
			t.Fatalf("FormatVTT(%v) returned error: %v", tt.seconds, err)
		}
		if got != tt.want {
			t.Errorf("FormatVTT(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestASS(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00:00.00"},
		{mustSeconds(3661.234), "1:01:01.23"},
		{mustSeconds(5.999), "0:00:05.99"},
	}
	for _, tt := range tests {
		got, err := ASS(tt.d)
		if err != nil {
			t.Fatalf("ASS(%v) returned error: %v", tt.d, err)
		}
		if got != tt.want {
			t.Errorf("ASS(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}

	legacy, err := LegacyASS(mustSeconds(2))
	if err != nil {
		t.Fatal(err)
	}
	if legacy != "00:00:02,000" {
		t.Errorf("LegacyASS(2s) = %q", legacy)
	}
}

func TestInvalidInput(t *testing.T) {
	for _, v := range []float64{-0.001, -10, math.NaN(), math.Inf(1)} {
		if _, err := FormatSRT(v); !errors.Is(err, apperr.InvalidTimestamp) {
			t.Errorf("FormatSRT(%v) error = %v, want InvalidTimestamp", v, err)
		}
	}
	if _, err := SRT(-time.Second); !errors.Is(err, ErrInvalidTimestamp) {
		t.Errorf("SRT(-1s) error = %v, want InvalidTimestamp", err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"01:01:01,234", time.Hour + time.Minute + time.Second + 234*time.Millisecond},
		{"00:00:00.000", 0},
		{"02:03.500", 2*time.Minute + 3500*time.Millisecond},
		{"1:01:01.23", time.Hour + time.Minute + time.Second + 230*time.Millisecond},
		{"100:00:00,001", 100*time.Hour + time.Millisecond},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "1:2:3", "00:61:00,000", "aa:bb:cc,ddd", "00:00:00"} {
		if _, err := Parse(bad); !errors.Is(err, ErrInvalidTimestamp) {
			t.Errorf("Parse(%q) error = %v, want InvalidTimestamp", bad, err)
		}
	}
}

func TestRoundTripWithinMillisecond(t *testing.T) {
	values := []float64{0, 0.001, 0.5, 1.25, 59.999, 61.0005, 3599.9994, 3661.234, 86399.999, 123456.789}
	for _, x := range values {
		formatted, err := FormatSRT(x)
		if err != nil {
			t.Fatalf("FormatSRT(%v): %v", x, err)
		}
		parsed, err := Parse(formatted)
		if err != nil {
			t.Fatalf("Parse(%q): %v", formatted, err)
		}
		back := parsed.Seconds()
		if diff := math.Abs(back - x); diff >= 0.001 {
			t.Errorf("round trip %v -> %q -> %v differs by %v", x, formatted, back, diff)
		}

		vtt, _ := FormatVTT(x)
		parsedVTT, err := Parse(vtt)
		if err != nil {
			t.Fatalf("Parse(%q): %v", vtt, err)
		}
		backVTT := parsedVTT.Seconds()
		if backVTT != back {
			t.Errorf("SRT and VTT disagree for %v: %v vs %v", x, back, backVTT)
		}
	}
}
