package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/skillsenselab/asrd/errors"
	"github.com/skillsenselab/asrd/logger"
	"github.com/skillsenselab/asrd/process"
)

// Preparer stages and normalizes input audio for the pipeline.
type Preparer struct {
	cfg    Config
	client *http.Client
	log    *logger.Logger
}

// NewPreparer creates a Preparer from config.
func NewPreparer(cfg Config) *Preparer {
	cfg.ApplyDefaults()
	return &Preparer{
		cfg:    cfg,
		client: &http.Client{},
		log:    logger.WithComponent("media"),
	}
}

// Convert transcodes the staged input to mono 16 kHz PCM WAV, the format
// all model backends expect. Unreadable or corrupt audio surfaces as an
// input error, not an internal one.
func (p *Preparer) Convert(ctx context.Context, ws *Workspace, inputPath string) (string, error) {
	out := ws.Path("normalized.wav")

	args := []string{"-hide_banner", "-nostdin", "-y", "-i", inputPath, "-ac", "1", "-ar", "16000"}
	if p.cfg.Denoise {
		args = append(args, "-af", denoiseFilter)
	}
	args = append(args, out)

	res, err := process.Run(ctx, process.Command{
		Binary: p.cfg.FFmpegBinary,
		Args:   args,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		p.log.Warn("ffmpeg conversion failed", logger.Fields(
			"input", inputPath, "exit_code", exitCode(res), "stderr", tail(res, 400)))
		return "", errors.InvalidInput("audio could not be decoded")
	}

	info, err := os.Stat(out)
	if err != nil || info.Size() == 0 {
		return "", errors.InvalidInput("audio could not be decoded")
	}
	return out, nil
}

// Prepare stages the request input (uploaded file or remote URL) and
// returns the normalized WAV path. Exactly one source must be given.
func (p *Preparer) Prepare(ctx context.Context, ws *Workspace, upload *Upload, audioURL string) (string, error) {
	var staged string
	var err error

	switch {
	case upload != nil && audioURL != "":
		return "", errors.InvalidInput("provide exactly one of file or audio_url")
	case upload != nil:
		staged, err = p.SaveUpload(ws, upload.Filename, upload.Reader)
	case audioURL != "":
		staged, err = p.Fetch(ctx, ws, audioURL)
	default:
		return "", errors.InvalidInput("provide exactly one of file or audio_url")
	}
	if err != nil {
		if _, ok := errors.AsAppError(err); ok {
			return "", err
		}
		return "", errors.InvalidInput(fmt.Sprintf("audio source unavailable: %v", err))
	}

	return p.Convert(ctx, ws, staged)
}

// Upload describes an uploaded file to stage.
type Upload struct {
	Filename string
	Reader   io.Reader
}

func exitCode(res *process.Result) int {
	if res == nil {
		return -1
	}
	return res.ExitCode
}

func tail(res *process.Result, n int) string {
	if res == nil {
		return ""
	}
	s := string(res.Stderr)
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}
