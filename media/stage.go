package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/skillsenselab/asrd/errors"
	"github.com/skillsenselab/asrd/logger"
	"github.com/skillsenselab/asrd/resilience"
	"github.com/skillsenselab/asrd/util"
	"github.com/skillsenselab/asrd/validation"
)

// copyChunkSize is the buffer size for staged copies.
const copyChunkSize = 1024 * 1024

// SaveUpload streams an uploaded file into the workspace, enforcing the
// size ceiling and allowed extensions. The returned path is inside ws.
func (p *Preparer) SaveUpload(ws *Workspace, filename string, r io.Reader) (string, error) {
	if err := checkSuffix("file", filename); err != nil {
		return "", err
	}

	dst := ws.Path("input" + strings.ToLower(filepath.Ext(filename)))
	f, err := os.Create(dst) //nolint:gosec // path is workspace-internal
	if err != nil {
		return "", errors.Internal(err)
	}
	defer f.Close()

	// Read one byte past the ceiling so oversized input is detected even
	// when the client omits Content-Length.
	limited := io.LimitReader(r, p.cfg.MaxUploadBytes+1)
	n, err := io.CopyBuffer(f, limited, make([]byte, copyChunkSize))
	if err != nil {
		return "", errors.Internal(fmt.Errorf("stage upload: %w", err))
	}
	if n > p.cfg.MaxUploadBytes {
		return "", errors.PayloadTooLarge(util.FormatSize(p.cfg.MaxUploadBytes))
	}
	if n == 0 {
		return "", errors.InvalidInput("uploaded file is empty")
	}
	return dst, nil
}

// Fetch downloads a remote audio file into the workspace. Transient
// download failures are retried once.
func (p *Preparer) Fetch(ctx context.Context, ws *Workspace, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", errors.InvalidInput("audio_url must be a valid http(s) URL")
	}
	if err := checkSuffix("audio_url", path.Base(u.Path)); err != nil {
		return "", err
	}

	cfg := resilience.RetryConfig{
		MaxAttempts:    2,
		InitialBackoff: 500 * time.Millisecond,
		OnRetry: func(attempt int, err error, _ time.Duration) {
			p.log.Warn("retrying audio download", logger.Fields("url", rawURL, "attempt", attempt, "error", err.Error()))
		},
	}

	return resilience.Retry(ctx, cfg, func() (string, error) {
		return p.download(ctx, ws, u)
	})
}

func (p *Preparer) download(ctx context.Context, ws *Workspace, u *url.URL) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, p.cfg.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", errors.InvalidInput("audio_url must be a valid http(s) URL")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch audio: status %d", resp.StatusCode)
	}
	if resp.ContentLength > p.cfg.MaxUploadBytes {
		return "", errors.PayloadTooLarge(util.FormatSize(p.cfg.MaxUploadBytes))
	}

	dst := ws.Path("input" + strings.ToLower(path.Ext(u.Path)))
	f, err := os.Create(dst) //nolint:gosec // path is workspace-internal
	if err != nil {
		return "", errors.Internal(err)
	}
	defer f.Close()

	limited := io.LimitReader(resp.Body, p.cfg.MaxUploadBytes+1)
	n, err := io.CopyBuffer(f, limited, make([]byte, copyChunkSize))
	if err != nil {
		return "", fmt.Errorf("fetch audio: %w", err)
	}
	if n > p.cfg.MaxUploadBytes {
		return "", errors.PayloadTooLarge(util.FormatSize(p.cfg.MaxUploadBytes))
	}
	if n == 0 {
		return "", errors.InvalidInput("downloaded file is empty")
	}
	return dst, nil
}

// checkSuffix validates the file extension against the accepted containers.
func checkSuffix(field, name string) error {
	v := validation.New().Suffix(field, name, AllowedSuffixes)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
