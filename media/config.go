package media

import "time"

const (
	defaultMaxUploadBytes = 100 * 1024 * 1024
	defaultFetchTimeout   = 60 * time.Second
	defaultFFmpegBinary   = "ffmpeg"

	// denoiseFilter trims rumble and hiss outside the speech band before
	// recognition. Matched to the 16 kHz mono target.
	denoiseFilter = "highpass=f=80,lowpass=f=8000,afftdn=nf=-20"
)

// AllowedSuffixes are the audio and video container extensions accepted
// for uploads and remote fetches.
var AllowedSuffixes = []string{".wav", ".mp3", ".m4a", ".flac", ".aac", ".ogg", ".mp4"}

// Config holds media preparation settings.
type Config struct {
	// WorkDir is the root under which per-request workspaces are created.
	// Defaults to the OS temp directory.
	WorkDir string `mapstructure:"work_dir" json:"work_dir"`
	// MaxUploadBytes caps the accepted input size. Defaults to 100MB.
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" json:"max_upload_bytes"`
	// FFmpegBinary is the ffmpeg executable. Defaults to "ffmpeg" on PATH.
	FFmpegBinary string `mapstructure:"ffmpeg_binary" json:"ffmpeg_binary"`
	// Denoise applies a speech-band filter chain during conversion.
	Denoise bool `mapstructure:"denoise" json:"denoise"`
	// FetchTimeout bounds a single remote download attempt.
	FetchTimeout time.Duration `mapstructure:"fetch_timeout" json:"fetch_timeout"`
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = defaultMaxUploadBytes
	}
	if c.FFmpegBinary == "" {
		c.FFmpegBinary = defaultFFmpegBinary
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = defaultFetchTimeout
	}
}
