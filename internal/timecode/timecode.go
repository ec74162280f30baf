// Package timecode converts between durations and subtitle timestamps.
package timecode

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/apperr"
)

// ErrInvalidTimestamp is returned for negative, non-finite or malformed values.
var ErrInvalidTimestamp = apperr.InvalidTimestamp

// FromSeconds converts a float second count to a duration rounded to the
// microsecond, so 3661.234 becomes exactly 3661.234000s.
func FromSeconds(seconds float64) (time.Duration, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, apperr.Newf(apperr.InvalidTimestamp, "", "non-finite value %v", seconds)
	}
	if seconds < 0 {
		return 0, apperr.Newf(apperr.InvalidTimestamp, "", "negative value %v", seconds)
	}
	micros := math.Round(seconds * 1e6)
	if micros > float64(math.MaxInt64/int64(time.Microsecond)) {
		return 0, apperr.Newf(apperr.InvalidTimestamp, "", "value %v out of range", seconds)
	}
	return time.Duration(micros) * time.Microsecond, nil
}

type parts struct {
	hours, minutes, seconds int64
	millis                  int64
}

func split(d time.Duration) (parts, error) {
	if d < 0 {
		return parts{}, apperr.Newf(apperr.InvalidTimestamp, "", "negative duration %s", d)
	}
	ms := int64(d / time.Millisecond)
	return parts{
		hours:   ms / 3_600_000,
		minutes: ms / 60_000 % 60,
		seconds: ms / 1000 % 60,
		millis:  ms % 1000,
	}, nil
}

// SRT formats d as HH:MM:SS,mmm. Sub-millisecond precision is truncated.
func SRT(d time.Duration) (string, error) {
	p, err := split(d)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d:%02d,%03d", p.hours, p.minutes, p.seconds, p.millis), nil
}

// VTT formats d as HH:MM:SS.mmm.
func VTT(d time.Duration) (string, error) {
	p, err := split(d)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d:%02d.%03d", p.hours, p.minutes, p.seconds, p.millis), nil
}

// ASS formats d in the native SubStation grammar H:MM:SS.cc.
func ASS(d time.Duration) (string, error) {
	p, err := split(d)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d:%02d:%02d.%02d", p.hours, p.minutes, p.seconds, p.millis/10), nil
}

// LegacyASS reproduces the older writer that emitted HH:MM:SS,mmm in ASS
// dialogue lines.
func LegacyASS(d time.Duration) (string, error) {
	return SRT(d)
}

// FormatSRT formats a float second count as an SRT timestamp.
func FormatSRT(seconds float64) (string, error) {
	d, err := FromSeconds(seconds)
	if err != nil {
		return "", err
	}
	return SRT(d)
}

// FormatVTT formats a float second count as a VTT timestamp.
func FormatVTT(seconds float64) (string, error) {
	d, err := FromSeconds(seconds)
	if err != nil {
		return "", err
	}
	return VTT(d)
}

var (
	fullPattern  = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2})[,.](\d{1,3})$`)
	shortPattern = regexp.MustCompile(`^(\d{2}):(\d{2})[,.](\d{3})$`)
)

// Parse reads HH:MM:SS,mmm, HH:MM:SS.mmm, MM:SS.mmm and H:MM:SS.cc.
// A two digit fraction is read as centiseconds.
func Parse(s string) (time.Duration, error) {
	if m := fullPattern.FindStringSubmatch(s); m != nil {
		return assemble(m[1], m[2], m[3], m[4])
	}
	if m := shortPattern.FindStringSubmatch(s); m != nil {
		return assemble("0", m[1], m[2], m[3])
	}
	return 0, apperr.Newf(apperr.InvalidTimestamp, "", "malformed timestamp %q", s)
}

func assemble(h, m, s, frac string) (time.Duration, error) {
	hours, err := strconv.ParseInt(h, 10, 64)
	if err != nil {
		return 0, apperr.New(apperr.InvalidTimestamp, "", err)
	}
	minutes, _ := strconv.ParseInt(m, 10, 64)
	seconds, _ := strconv.ParseInt(s, 10, 64)
	if minutes > 59 || seconds > 59 {
		return 0, apperr.Newf(apperr.InvalidTimestamp, "", "field out of range in %s:%s:%s", h, m, s)
	}

	value, _ := strconv.ParseInt(frac, 10, 64)
	var fraction time.Duration
	switch len(frac) {
	case 1:
		fraction = time.Duration(value) * 100 * time.Millisecond
	case 2:
		fraction = time.Duration(value) * 10 * time.Millisecond
	default:
		fraction = time.Duration(value) * time.Millisecond
	}

	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		fraction, nil
}
