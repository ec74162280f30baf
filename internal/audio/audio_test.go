package audio

import (
	"fmt"
	"testing"
	"time"
)

func TestPlanChunks(t *testing.T) {
	chunks := PlanChunks(25*time.Second, 10*time.Second, func(i int) string {
		return fmt.Sprintf("chunk_%03d.mp3", i)
	})
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	last := chunks[2]
	if last.Start != 20*time.Second || last.End != 25*time.Second || last.Path != "chunk_002.mp3" {
		t.Errorf("unexpected last chunk: %+v", last)
	}
	if len(PlanChunks(0, time.Second, func(int) string { return "" })) != 0 {
		t.Error("zero duration should plan no chunks")
	}
}

func TestMediaExtensions(t *testing.T) {
	tests := []struct {
		path         string
		video, audio bool
	}{
		{"talk.MP4", true, false},
		{"clip.webm", true, false},
		{"voice.opus", false, true},
		{"song.flac", false, true},
		{"notes.txt", false, false},
		{"legacy.wmv", false, false},
	}
	for _, tt := range tests {
		if got := IsVideoFile(tt.path); got != tt.video {
			t.Errorf("IsVideoFile(%q) = %v", tt.path, got)
		}
		if got := IsAudioFile(tt.path); got != tt.audio {
			t.Errorf("IsAudioFile(%q) = %v", tt.path, got)
		}
		if got := IsMediaFile(tt.path); got != (tt.video || tt.audio) {
			t.Errorf("IsMediaFile(%q) = %v", tt.path, got)
		}
	}
}
