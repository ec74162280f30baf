// Package audio extracts, probes and chunks media audio through ffmpeg and
// provides the in-memory Track used to assemble speech tracks.
package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gopxl/beep"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"golang.org/x/sync/errgroup"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/apperr"
	ffmpegbin "github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/ffmpeg"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/logging"
)

// filter chain applied before speech recognition
const enhanceFilters = "highpass=f=80,lowpass=f=8000,dynaudnorm=p=0.5,aresample=async=1000,volume=1.2," +
	"compand=attacks=0:decays=0.3:points=-80/-80|-12/-12|0/-3"

// audio chunk info
type ChunkInfo struct {
	Path  string
	Index int
	Start time.Duration
	End   time.Duration
}

// settings for audio compression
type CompressionOptions struct {
	Format     string // Output format (mp3, aac, etc.)
	SampleRate int    // Sample rate in Hz
	Channels   int    // Number of channels (1=mono, 2=stereo)
	Bitrate    string // Bitrate (e.g., "64k", "128k")
}

// defaults for transcription uploads
func DefaultCompressionOptions() CompressionOptions {
	return CompressionOptions{
		Format:     "mp3",
		SampleRate: 16000,
		Channels:   1,
		Bitrate:    "64k",
	}
}

// ExtractOptions controls speech extraction from a media file.
type ExtractOptions struct {
	SampleRate int
	Channels   int
	Enhance    bool
}

// 16 kHz mono with the enhancement chain
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{SampleRate: 16000, Channels: 1, Enhance: true}
}

// Processor runs the ffmpeg side of audio handling.
type Processor struct {
	runner *ffmpegbin.Runner
	logger *logging.Logger
}

func NewProcessor(runner *ffmpegbin.Runner, logger *logging.Logger) *Processor {
	return &Processor{runner: runner, logger: logging.OrNop(logger)}
}

// duration of an audio/video file
func (p *Processor) GetDuration(ctx context.Context, filePath string) (time.Duration, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return 0, apperr.Newf(apperr.Input, filePath, "file not found")
	}

	probe, err := p.runner.Probe(ctx, filePath)
	if err != nil {
		return 0, err
	}
	return probe.Duration()
}

// ExtractAudio writes a PCM WAV suitable for speech recognition. Video input
// without an audio stream is rejected before ffmpeg runs.
func (p *Processor) ExtractAudio(ctx context.Context, inputPath, outputPath string, opts ExtractOptions) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return apperr.Newf(apperr.Input, inputPath, "file not found")
	}

	if IsVideoFile(inputPath) {
		probe, err := p.runner.Probe(ctx, inputPath)
		if err != nil {
			return err
		}
		if !probe.HasAudio() {
			return apperr.Newf(apperr.Input, inputPath, "video has no audio stream")
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if opts.SampleRate <= 0 {
		opts.SampleRate = 16000
	}
	if opts.Channels <= 0 {
		opts.Channels = 1
	}

	kwargs := ffmpeg.KwArgs{
		"vn":     "",
		"acodec": "pcm_s16le",
		"ar":     opts.SampleRate,
		"ac":     opts.Channels,
		"fflags": "+genpts",
		"f":      "wav",
	}
	if opts.Enhance {
		kwargs["af"] = enhanceFilters
	}

	p.logger.Debugw("extracting audio",
		"input", inputPath,
		"output", outputPath,
		"enhance", opts.Enhance,
	)

	stream := ffmpeg.Input(inputPath).
		Output(outputPath, kwargs).
		OverWriteOutput()
	if err := p.runner.RunStream(ctx, ffmpegbin.Extract, outputPath, stream); err != nil {
		return fmt.Errorf("audio extraction failed: %w", err)
	}
	return nil
}

// compresses an audio file with the given options
func (p *Processor) CompressAudio(
	ctx context.Context,
	inputPath, outputPath string,
	opts CompressionOptions,
) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return apperr.Newf(apperr.Input, inputPath, "input file not found")
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	kwargs := ffmpeg.KwArgs{
		"vn": "",
		"ar": opts.SampleRate,
		"ac": opts.Channels,
	}
	switch opts.Format {
	case "aac":
		kwargs["acodec"] = "aac"
	case "flac":
		kwargs["acodec"] = "flac"
	case "wav":
		kwargs["acodec"] = "pcm_s16le"
	default:
		kwargs["acodec"] = "libmp3lame"
	}
	if opts.Bitrate != "" {
		kwargs["b:a"] = opts.Bitrate
	}

	stream := ffmpeg.Input(inputPath).
		Output(outputPath, kwargs).
		OverWriteOutput()
	if err := p.runner.RunStream(ctx, ffmpegbin.Extract, outputPath, stream); err != nil {
		return fmt.Errorf("compression failed: %w", err)
	}
	return nil
}

// EncodeMP3 writes t as an MP3 at the given bitrate through a temporary WAV.
func (p *Processor) EncodeMP3(ctx context.Context, t *Track, outputPath, bitrate string) error {
	tmp, err := os.MkdirTemp("", "altyazi-mp3-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(tmp)
	}()

	wavPath := filepath.Join(tmp, "track.wav")
	if err := WriteWAV(wavPath, t); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	stream := ffmpeg.Input(wavPath).
		Output(outputPath, ffmpeg.KwArgs{"acodec": "libmp3lame", "b:a": bitrate}).
		OverWriteOutput()
	if err := p.runner.RunStream(ctx, ffmpegbin.Extract, outputPath, stream); err != nil {
		return fmt.Errorf("mp3 encoding failed: %w", err)
	}
	return nil
}

// Decode reads any ffmpeg-readable audio file into a stereo track at rate.
func (p *Processor) Decode(ctx context.Context, path string, rate beep.SampleRate) (*Track, error) {
	stream := ffmpeg.Input(path).Output("pipe:", ffmpeg.KwArgs{
		"f":      "s16le",
		"acodec": "pcm_s16le",
		"ar":     int(rate),
		"ac":     2,
	})
	raw, err := p.runner.Capture(ctx, ffmpegbin.Extract, stream)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return DecodePCM16(raw, rate, 2)
}

// splits an audio file into chunks of specified duration
func (p *Processor) ChunkAudio(
	ctx context.Context,
	audioPath string,
	chunkDuration time.Duration,
	outputDir string,
	concurrency int,
) ([]ChunkInfo, error) {
	if chunkDuration <= 0 {
		return nil, fmt.Errorf("chunk duration must be positive, got %v", chunkDuration)
	}
	if concurrency <= 0 {
		concurrency = 4
	}

	totalDuration, err := p.GetDuration(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get audio duration: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	ext := filepath.Ext(audioPath)
	chunks := PlanChunks(totalDuration, chunkDuration, func(i int) string {
		return filepath.Join(outputDir, fmt.Sprintf("%s_chunk_%03d%s", baseName, i, ext))
	})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, c := range chunks {
		g.Go(func() error {
			stream := ffmpeg.Input(audioPath).
				Output(c.Path, ffmpeg.KwArgs{
					"ss": c.Start.Seconds(),
					"t":  (c.End - c.Start).Seconds(),
					"c":  "copy",
				}).
				OverWriteOutput()
			if err := p.runner.RunStream(gctx, ffmpegbin.Extract, c.Path, stream); err != nil {
				return fmt.Errorf("failed to create chunk %d: %w", c.Index, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		_ = CleanupChunks(chunks)
		return nil, err
	}
	return chunks, nil
}

// PlanChunks cuts total into consecutive windows of size chunk.
func PlanChunks(total, chunk time.Duration, pathFor func(i int) string) []ChunkInfo {
	var chunks []ChunkInfo
	for i := 0; ; i++ {
		start := time.Duration(i) * chunk
		if start >= total {
			break
		}
		end := min(start+chunk, total)
		chunks = append(chunks, ChunkInfo{Path: pathFor(i), Index: i, Start: start, End: end})
	}
	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].Index < chunks[j].Index
	})
	return chunks
}

var videoExts = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
	".flv":  true,
	".m4v":  true,
	".mpg":  true,
	".mpeg": true,
}

var audioExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".aac":  true,
	".ogg":  true,
	".m4a":  true,
	".opus": true,
}

// checks if the file is a video based on extension
func IsVideoFile(path string) bool {
	return videoExts[strings.ToLower(filepath.Ext(path))]
}

// checks if the file is an audio file based on extension
func IsAudioFile(path string) bool {
	return audioExts[strings.ToLower(filepath.Ext(path))]
}

// checks if the file is either audio or video
func IsMediaFile(path string) bool {
	return IsAudioFile(path) || IsVideoFile(path)
}

// removes all chunk files
func CleanupChunks(chunks []ChunkInfo) error {
	var lastErr error
	for _, chunk := range chunks {
		if err := os.Remove(chunk.Path); err != nil && !os.IsNotExist(err) {
			lastErr = err
		}
	}
	return lastErr
}
