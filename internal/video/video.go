// Package video muxes speech tracks and burns subtitles into video files.
package video

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/apperr"
	ffmpegbin "github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/ffmpeg"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/logging"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/style"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/subtitle"
)

// video file information
type Info struct {
	Path      string
	Duration  time.Duration
	Width     int
	Height    int
	FrameRate float64
	Codec     string
	HasAudio  bool
}

// defines interface for video processing operations
type Processor interface {
	// retrieves video file information
	GetInfo(ctx context.Context, videoPath string) (*Info, error)

	// renders a subtitle file onto the picture
	BurnSubtitles(ctx context.Context, videoPath, subtitlePath, outputPath string, cfg style.Config) error

	// swaps the audio track, copying the video stream
	ReplaceAudio(ctx context.Context, videoPath, audioPath, outputPath string) error
}

// EncodeOptions are the x264 settings used when re-encoding for burn-in.
type EncodeOptions struct {
	Preset string
	CRF    int
}

func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{Preset: "medium", CRF: 23}
}

// default implementation using ffmpeg
type DefaultProcessor struct {
	runner *ffmpegbin.Runner
	encode EncodeOptions
	logger *logging.Logger
}

func NewProcessor(runner *ffmpegbin.Runner, encode EncodeOptions, logger *logging.Logger) *DefaultProcessor {
	if encode.Preset == "" {
		encode.Preset = DefaultEncodeOptions().Preset
	}
	if encode.CRF <= 0 {
		encode.CRF = DefaultEncodeOptions().CRF
	}
	return &DefaultProcessor{runner: runner, encode: encode, logger: logging.OrNop(logger)}
}

// retrieves video file information
func (p *DefaultProcessor) GetInfo(ctx context.Context, videoPath string) (*Info, error) {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return nil, apperr.Newf(apperr.Input, videoPath, "video file not found")
	}

	probe, err := p.runner.Probe(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	info := &Info{Path: videoPath, HasAudio: probe.HasAudio()}
	if d, err := probe.Duration(); err == nil {
		info.Duration = d
	}
	if v := probe.VideoStream(); v != nil {
		info.Width = v.Width
		info.Height = v.Height
		info.FrameRate = v.FrameRate()
		info.Codec = v.CodecName
	}
	return info, nil
}

// BurnSubtitles re-encodes videoPath with the subtitles drawn in. ASS files
// keep their own styling; SRT and VTT are styled with cfg. Failures are
// reported as mux errors.
func (p *DefaultProcessor) BurnSubtitles(
	ctx context.Context,
	videoPath, subtitlePath, outputPath string,
	cfg style.Config,
) error {
	filter, err := subtitle.BurnFilter(subtitlePath, cfg)
	if err != nil {
		return apperr.New(apperr.Mux, videoPath, err)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	p.logger.Debugw("burning subtitles",
		"video", videoPath,
		"subtitles", subtitlePath,
		"output", outputPath,
	)

	stream := ffmpeg.Input(videoPath).
		Output(outputPath, ffmpeg.KwArgs{
			"vf":       filter,
			"c:v":      "libx264",
			"preset":   p.encode.Preset,
			"crf":      p.encode.CRF,
			"c:a":      "copy",
			"movflags": "+faststart",
		}).
		OverWriteOutput()
	if err := p.runner.RunStream(ctx, ffmpegbin.Mux, outputPath, stream); err != nil {
		return apperr.New(apperr.Mux, filepath.Base(videoPath), err)
	}
	return nil
}

// ReplaceAudio writes videoPath's picture with audioPath as the only audio
// track. The output ends with the shorter input.
func (p *DefaultProcessor) ReplaceAudio(ctx context.Context, videoPath, audioPath, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	v := ffmpeg.Input(videoPath)
	a := ffmpeg.Input(audioPath)
	stream := ffmpeg.Output(
		[]*ffmpeg.Stream{v.Video(), a.Audio()},
		outputPath,
		ffmpeg.KwArgs{
			"c:v":      "copy",
			"c:a":      "aac",
			"b:a":      "192k",
			"shortest": "",
		},
	).OverWriteOutput()

	if err := p.runner.RunStream(ctx, ffmpegbin.Mux, outputPath, stream); err != nil {
		return apperr.New(apperr.Mux, filepath.Base(videoPath), err)
	}
	return nil
}
