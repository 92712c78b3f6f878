// Package whispercpp transcribes the input video with whisper.cpp.
//
// The audio track is first extracted with ffmpeg as 16 kHz mono PCM, then
// whisper-cli writes its JSON output, which is converted to transcript
// segments in seconds.
package whispercpp

import "time"

// Config captures runtime settings for a transcription.
type Config struct {
	// FFmpegBin extracts the audio track.
	FFmpegBin string
	// WhisperBin is the whisper.cpp CLI (whisper-cli).
	WhisperBin string
	// Model is the ggml model path.
	Model string
	// Timeout bounds each external command; zero waits indefinitely.
	Timeout time.Duration
}

// Audio extraction constants.
const (
	SampleRate   = "16000"
	Channels     = "1"
	AudioCodec   = "pcm_s16le"
	AudioName    = "audio.wav"
	OutputPrefix = "transcript"
)
