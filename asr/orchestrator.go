package asr

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"time"

	"github.com/skillsenselab/asrd/diarize"
	"github.com/skillsenselab/asrd/errors"
	"github.com/skillsenselab/asrd/logger"
	"github.com/skillsenselab/asrd/media"
	"github.com/skillsenselab/asrd/observability"
	"github.com/skillsenselab/asrd/punctuate"
	"github.com/skillsenselab/asrd/recognition"
	"github.com/skillsenselab/asrd/resilience"
	"github.com/skillsenselab/asrd/transcript"
	"github.com/skillsenselab/asrd/vad"
)

// AudioPreparer stages and normalizes request audio. Implemented by
// media.Preparer; narrowed to an interface so pipeline tests can fake it.
type AudioPreparer interface {
	Prepare(ctx context.Context, ws *media.Workspace, upload *media.Upload, audioURL string) (string, error)
}

// Config holds orchestrator settings.
type Config struct {
	// WorkDir is the root for per-request workspaces.
	WorkDir string `mapstructure:"work_dir" json:"work_dir"`
	// Concurrency bounds each request's recognition fan-out.
	Concurrency int `mapstructure:"concurrency" json:"concurrency"`
	// NonReentrant serializes all inference calls through a single slot,
	// for model backends that cannot serve concurrent requests.
	NonReentrant bool `mapstructure:"non_reentrant" json:"non_reentrant"`
	// MergeGapMS is the maximum silence between same-speaker segments
	// that still merges them. Defaults to 2000.
	MergeGapMS int64 `mapstructure:"merge_gap_ms" json:"merge_gap_ms"`
	// PipelineTimeout bounds a whole transcription call.
	PipelineTimeout time.Duration `mapstructure:"pipeline_timeout" json:"pipeline_timeout"`
	// Model and Device are reported in result metadata.
	Model  string `mapstructure:"model" json:"model"`
	Device string `mapstructure:"device" json:"device"`
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.MergeGapMS <= 0 {
		c.MergeGapMS = 2000
	}
	if c.PipelineTimeout <= 0 {
		c.PipelineTimeout = 10 * time.Minute
	}
	if c.Device == "" {
		c.Device = "cpu"
	}
}

// Orchestrator runs the transcription pipeline.
type Orchestrator struct {
	cfg        Config
	preparer   AudioPreparer
	detector   vad.Provider
	recognizer recognition.Provider
	postproc   punctuate.Provider
	diarizer   diarize.Provider

	// reentrySlot is the shared single inference slot when NonReentrant;
	// nil otherwise, and each request fans out over its own pool.
	reentrySlot chan struct{}
	log         *logger.Logger
	metrics     *observability.PipelineMetrics
}

// New creates an Orchestrator. postproc and diarizer may be nil; their
// stages are skipped (diarizer) or degrade to raw text (postproc).
func New(cfg Config, preparer AudioPreparer, detector vad.Provider, recognizer recognition.Provider, postproc punctuate.Provider, diarizer diarize.Provider) *Orchestrator {
	cfg.ApplyDefaults()
	o := &Orchestrator{
		cfg:        cfg,
		preparer:   preparer,
		detector:   detector,
		recognizer: recognizer,
		postproc:   postproc,
		diarizer:   diarizer,
		log:        logger.WithComponent("asr"),
		metrics:    observability.NewPipelineMetrics(),
	}
	if cfg.NonReentrant {
		o.reentrySlot = make(chan struct{}, 1)
	}
	return o
}

// Transcribe runs the full pipeline for one request. The error, when
// non-nil, is always an *errors.AppError; no partial result accompanies
// a failure.
func (o *Orchestrator) Transcribe(ctx context.Context, req Request) (*transcript.Result, error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.PipelineTimeout)
	defer cancel()

	start := time.Now()
	res, err := o.run(ctx, req)
	o.metrics.ObserveRequest(ctx, time.Since(start), err == nil)
	if err != nil {
		return nil, o.classify(ctx, err)
	}
	return res, nil
}

func (o *Orchestrator) run(ctx context.Context, req Request) (*transcript.Result, error) {
	ws, err := media.NewWorkspace(o.cfg.WorkDir)
	if err != nil {
		return nil, errors.Internal(err)
	}
	defer func() {
		if cleanupErr := ws.Cleanup(); cleanupErr != nil {
			o.log.Warn("workspace cleanup failed", logger.Fields("dir", ws.Dir(), "error", cleanupErr.Error()))
		}
	}()

	audioPath, err := o.preparer.Prepare(ctx, ws, req.Upload, req.AudioURL)
	if err != nil {
		return nil, err
	}

	spans, err := o.detectSpans(ctx, req, audioPath)
	if err != nil {
		return nil, err
	}
	if len(spans) == 0 {
		// No detectable speech. A valid empty transcript, not an error.
		return transcript.Assemble(nil, "", nil, o.cfg.Model, o.device(req)), nil
	}
	if req.MergeVAD {
		spans = mergeSpans(spans, o.cfg.MergeGapMS)
	}

	segments, err := o.recognizeSpans(ctx, req, audioPath, spans)
	if err != nil {
		return nil, err
	}

	processed := o.postprocess(ctx, req, segments)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.attributeSpeakers(ctx, req, audioPath, segments)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := transcript.Merge(segments, o.cfg.MergeGapMS)
	return transcript.Assemble(merged, "", processed, o.cfg.Model, o.device(req)), nil
}

// device resolves the compute device reported in result metadata,
// honoring the per-request override.
func (o *Orchestrator) device(req Request) string {
	if req.Device != "" {
		return req.Device
	}
	return o.cfg.Device
}

// detectSpans asks the activity detector for speech spans, capped at the
// request batch size.
func (o *Orchestrator) detectSpans(ctx context.Context, req Request, audioPath string) ([]vad.Span, error) {
	spans, err := o.detector.DetectSpans(ctx, vad.Request{
		AudioPath: audioPath,
		MaxSpanMS: int64(req.BatchSizeS) * 1000,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.ServiceUnavailable("voice activity detector").WithCause(err)
	}
	return spans, nil
}

// recognizeSpans fans spans out to the recognizer over a per-request
// worker pool and re-assembles results in span order. One slow request
// cannot stall another's spans; only NonReentrant routes every request
// through the shared single slot. A span that fails once is retried with
// default parameters (no hotwords); a span that fails twice degrades to
// an empty-text segment and never aborts the request.
func (o *Orchestrator) recognizeSpans(ctx context.Context, req Request, audioPath string, spans []vad.Span) ([]transcript.Segment, error) {
	segments := make([]transcript.Segment, len(spans))

	slots := o.reentrySlot
	if slots == nil {
		slots = make(chan struct{}, o.cfg.Concurrency)
	}

	var wg sync.WaitGroup
	for i, span := range spans {
		select {
		case slots <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		}

		wg.Add(1)
		go func(i int, span vad.Span) {
			defer wg.Done()
			defer func() { <-slots }()
			segments[i] = o.recognizeOne(ctx, req, audioPath, span)
		}(i, span)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return segments, nil
}

// recognizeOne transcribes a single span with the one-retry policy.
func (o *Orchestrator) recognizeOne(ctx context.Context, req Request, audioPath string, span vad.Span) transcript.Segment {
	attempt := 0
	resp, err := resilience.Retry(ctx, resilience.RetryConfig{
		MaxAttempts:    2,
		InitialBackoff: 200 * time.Millisecond,
		OnRetry: func(_ int, err error, _ time.Duration) {
			o.log.Warn("span recognition failed, retrying with default parameters",
				logger.Fields(logger.FieldSpan, span, "error", err.Error()))
		},
	}, func() (*recognition.Response, error) {
		attempt++
		recReq := recognition.Request{
			AudioPath: audioPath,
			StartMS:   span.StartMS,
			EndMS:     span.EndMS,
			Language:  req.Language,
			UseITN:    req.UseITN,
		}
		if attempt == 1 {
			recReq.Hotwords = req.Hotwords
		}
		return o.recognizer.Recognize(ctx, recReq)
	})

	seg := transcript.Segment{StartMS: span.StartMS, EndMS: span.EndMS}
	if err != nil {
		// Deadline expiry surfaces through ctx at the fan-in barrier.
		if ctx.Err() == nil {
			o.log.Error("span recognition failed after retry, emitting empty segment",
				logger.Fields(logger.FieldSpan, span, "error", err.Error()))
			o.metrics.CountSpanFailure(ctx)
		}
		return seg
	}

	seg.Text = strings.TrimSpace(resp.Text)
	seg.Confidence = resp.Confidence
	for _, w := range resp.Words {
		seg.WordTimestamps = append(seg.WordTimestamps, [2]int64{w.StartMS, w.EndMS})
	}
	return seg
}

// postprocess cleans the concatenated raw text. Failure degrades to a nil
// processed text; the raw transcript still flows to the caller.
func (o *Orchestrator) postprocess(ctx context.Context, req Request, segments []transcript.Segment) *string {
	if !req.EnablePostprocess || o.postproc == nil {
		return nil
	}

	raw := joinTexts(segments)
	if raw == "" {
		return nil
	}

	out, err := o.postproc.Process(ctx, punctuate.Request{Text: raw, UseITN: req.UseITN})
	if err != nil {
		if ctx.Err() == nil {
			o.log.Warn("post-processing failed, returning raw transcript",
				logger.Fields("error", err.Error()))
			o.metrics.CountDegradation(ctx, "postprocess")
		}
		return nil
	}
	return &out
}

// attributeSpeakers assigns a speaker to each segment by overlap with the
// diarizer's turns. No diarizer, or a diarizer failure, leaves speakers
// nil.
func (o *Orchestrator) attributeSpeakers(ctx context.Context, req Request, audioPath string, segments []transcript.Segment) {
	if o.diarizer == nil {
		return
	}

	resp, err := o.diarizer.Diarize(ctx, diarize.Request{
		AudioPath:   audioPath,
		NumSpeakers: req.NumSpeakers,
	})
	if err != nil {
		if ctx.Err() == nil {
			o.log.Warn("diarization failed, segments carry no speaker",
				logger.Fields("error", err.Error()))
			o.metrics.CountDegradation(ctx, "diarize")
		}
		return
	}

	for i := range segments {
		segments[i].Speaker = diarize.AssignSpeaker(resp.Turns, segments[i].StartMS, segments[i].EndMS)
	}
}

// classify maps pipeline errors to the caller-facing AppError set.
func (o *Orchestrator) classify(ctx context.Context, err error) error {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Timeout("transcribe")
	}
	return errors.Internal(err)
}

// mergeSpans applies the merge policy to raw speech spans before
// recognition, reusing the segment merger on span-shaped segments.
func mergeSpans(spans []vad.Span, maxGapMS int64) []vad.Span {
	segs := make([]transcript.Segment, len(spans))
	for i, s := range spans {
		segs[i] = transcript.Segment{StartMS: s.StartMS, EndMS: s.EndMS}
	}
	merged := transcript.Merge(segs, maxGapMS)
	out := make([]vad.Span, len(merged))
	for i, s := range merged {
		out[i] = vad.Span{StartMS: s.StartMS, EndMS: s.EndMS}
	}
	return out
}

// joinTexts concatenates segment texts with the canonical separator,
// matching the raw-text join used at assembly.
func joinTexts(segments []transcript.Segment) string {
	texts := make([]string, len(segments))
	for i, s := range segments {
		texts[i] = s.Text
	}
	return strings.TrimSpace(strings.Join(texts, transcript.Separator))
}
