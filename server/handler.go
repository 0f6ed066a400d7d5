package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/asrd/asr"
	"github.com/skillsenselab/asrd/errors"
	"github.com/skillsenselab/asrd/media"
	"github.com/skillsenselab/asrd/provider"
	"github.com/skillsenselab/asrd/server/endpoint"
	"github.com/skillsenselab/asrd/transcript"
	"github.com/skillsenselab/asrd/util"
)

// Transcriber runs a transcription request end to end. Implemented by
// asr.Orchestrator.
type Transcriber interface {
	Transcribe(ctx context.Context, req asr.Request) (*transcript.Result, error)
}

// Deps bundles everything the route handlers need.
type Deps struct {
	Orchestrator Transcriber
	// Backends are the model providers reported by /health, keyed by role
	// (e.g. "vad", "asr", "punc", "spk").
	Backends map[string]provider.Provider
	Models   endpoint.ModelsInfo
}

// RegisterRoutes mounts all service routes on the engine.
func (s *Server) RegisterRoutes(deps Deps) {
	s.engine.GET("/health", endpoint.Health(deps.Models.Device, deps.Backends))
	s.engine.GET("/models", endpoint.Models(deps.Models))
	s.engine.GET("/info", endpoint.Info("asrd"))
	s.engine.GET("/metrics", endpoint.Metrics())
	s.engine.POST("/asr/transcribe", transcribeHandler(deps.Orchestrator))
}

// transcribeHandler accepts a multipart form with either an uploaded
// file or an audio_url and responds with the assembled transcript.
func transcribeHandler(orch Transcriber) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, cleanup, err := parseTranscribeForm(c)
		if cleanup != nil {
			defer cleanup()
		}
		if err != nil {
			RespondWithError(c, err)
			return
		}

		res, err := orch.Transcribe(c.Request.Context(), *req)
		if err != nil {
			RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"result": res,
			"text":   res.Text(),
		})
	}
}

// parseTranscribeForm maps the multipart form onto an asr.Request.
// Boolean knobs default to true when absent; batch_size_s and language
// defaults are applied by the orchestrator.
func parseTranscribeForm(c *gin.Context) (*asr.Request, func(), error) {
	req := &asr.Request{
		AudioURL:          c.PostForm("audio_url"),
		Language:          c.PostForm("language"),
		Device:            c.PostForm("device"),
		UseITN:            util.ParseBool(c.PostForm("use_itn"), true),
		EnablePostprocess: util.ParseBool(c.PostForm("enable_postprocess"), true),
		MergeVAD:          util.ParseBool(c.PostForm("merge_vad"), true),
		BatchSizeS:        util.ParseInt(c.PostForm("batch_size_s"), 0),
		NumSpeakers:       util.ParseInt(c.PostForm("num_speakers"), 0),
	}

	if raw := c.PostForm("hotword"); raw != "" {
		req.Hotwords = asr.ParseHotwords(raw)
	} else if raw := c.PostForm("hotwords"); raw != "" {
		req.Hotwords = asr.ParseHotwords(raw)
	}

	// A missing file part is not an error here; the exactly-one-of
	// validation on the request reports it uniformly.
	header, err := c.FormFile("file")
	if err != nil {
		return req, nil, nil
	}
	file, err := header.Open()
	if err != nil {
		return nil, nil, errors.InvalidInput("uploaded file could not be read").WithCause(err)
	}
	req.Upload = &media.Upload{Filename: header.Filename, Reader: file}
	return req, func() { file.Close() }, nil
}
