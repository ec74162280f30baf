package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/audio"
)

var extractCmd = &cobra.Command{
	Use:   "extract [video_file]",
	Short: "Extract audio from a video file",
	Long: `Extract the audio track from a video file and save it as a separate audio file.

Supports multiple output formats: wav, mp3, aac, flac.
With --enhance the WAV gets the same loudness and noise filters used before
transcription.

Examples:
  altyazi extract video.mp4
  altyazi extract video.mp4 -o audio.mp3 -f mp3
  altyazi extract video.mp4 --format wav --sample-rate 44100 --channels 2`,
	Args:        cobra.ExactArgs(1),
	Annotations: needsFFmpeg,
	RunE:        runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().
		StringP("format", "f", "wav", "Output audio format (wav, mp3, aac, flac)")
	extractCmd.Flags().
		IntP("sample-rate", "r", 16000, "Sample rate in Hz (e.g., 16000, 44100, 48000)")
	extractCmd.Flags().
		IntP("channels", "c", 1, "Number of audio channels (1=mono, 2=stereo)")
	extractCmd.Flags().
		StringP("bitrate", "b", "", "Bitrate for lossy formats (e.g., 128k, 320k)")
	extractCmd.Flags().
		Bool("enhance", false, "Apply speech enhancement filters (wav only)")
}

var extractFormats = map[string]bool{
	"wav":  true,
	"mp3":  true,
	"aac":  true,
	"flac": true,
}

func extractOutputPath(input, format string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
}

func runExtract(cmd *cobra.Command, args []string) error {
	videoPath := args[0]

	format, _ := cmd.Flags().GetString("format")
	sampleRate, _ := cmd.Flags().GetInt("sample-rate")
	channels, _ := cmd.Flags().GetInt("channels")
	bitrate, _ := cmd.Flags().GetString("bitrate")
	enhance, _ := cmd.Flags().GetBool("enhance")
	outputPath, _ := cmd.Flags().GetString("output")

	if !fileExists(videoPath) {
		return fmt.Errorf("input file not found: %s", videoPath)
	}
	if !audio.IsMediaFile(videoPath) {
		return fmt.Errorf("unsupported media file: %s", videoPath)
	}
	format = strings.ToLower(format)
	if !extractFormats[format] {
		return fmt.Errorf(
			"invalid format %q: supported formats are wav, mp3, aac, flac",
			format,
		)
	}
	if enhance && format != "wav" {
		return fmt.Errorf("--enhance is only supported for wav output")
	}
	if outputPath == "" {
		outputPath = extractOutputPath(videoPath, format)
	}

	logger.Infow("extracting audio",
		"input", videoPath,
		"output", outputPath,
		"format", format,
		"sample_rate", sampleRate,
		"channels", channels,
	)

	a := tools
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	if enhance {
		err = a.audio.ExtractAudio(ctx, videoPath, outputPath, audio.ExtractOptions{
			SampleRate: sampleRate,
			Channels:   channels,
			Enhance:    true,
		})
	} else {
		err = a.audio.CompressAudio(ctx, videoPath, outputPath, audio.CompressionOptions{
			Format:     format,
			SampleRate: sampleRate,
			Channels:   channels,
			Bitrate:    bitrate,
		})
	}
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Audio extracted: %s\n", absPath(outputPath))
	return nil
}
