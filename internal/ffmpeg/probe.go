package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Stream is one stream entry of ffprobe's JSON output.
type Stream struct {
	Index        int    `json:"index"`
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	SampleRate   string `json:"sample_rate"`
	Channels     int    `json:"channels"`
	AvgFrameRate string `json:"avg_frame_rate"`
	Duration     string `json:"duration"`
}

type format struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
}

// ProbeResult is the parsed subset of ffprobe output used here.
type ProbeResult struct {
	Streams []Stream `json:"streams"`
	Format  format   `json:"format"`
}

// Probe runs ffprobe on path.
func (r *Runner) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	out, err := r.Output(ctx,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	if err != nil {
		return nil, err
	}
	return ParseProbe(out)
}

// ParseProbe decodes ffprobe JSON.
func ParseProbe(data []byte) (*ProbeResult, error) {
	var result ProbeResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	return &result, nil
}

// Duration is the container duration.
func (p *ProbeResult) Duration() (time.Duration, error) {
	seconds, err := strconv.ParseFloat(strings.TrimSpace(p.Format.Duration), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration %q: %w", p.Format.Duration, err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func (p *ProbeResult) HasAudio() bool {
	return p.firstOf("audio") != nil
}

func (p *ProbeResult) HasVideo() bool {
	return p.firstOf("video") != nil
}

// VideoStream returns the first video stream, or nil.
func (p *ProbeResult) VideoStream() *Stream {
	return p.firstOf("video")
}

// AudioStream returns the first audio stream, or nil.
func (p *ProbeResult) AudioStream() *Stream {
	return p.firstOf("audio")
}

func (p *ProbeResult) firstOf(kind string) *Stream {
	for i := range p.Streams {
		if strings.EqualFold(p.Streams[i].CodecType, kind) {
			return &p.Streams[i]
		}
	}
	return nil
}

// FrameRate parses ffprobe's "num/den" rate notation.
func (s Stream) FrameRate() float64 {
	num, den, ok := strings.Cut(s.AvgFrameRate, "/")
	if !ok {
		v, _ := strconv.ParseFloat(s.AvgFrameRate, 64)
		return v
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}
