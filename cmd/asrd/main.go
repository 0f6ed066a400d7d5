// Command asrd runs the speech transcription service: it stages audio,
// detects speech, recognizes it span by span against the configured
// model backends, and serves the result over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skillsenselab/asrd/asr"
	"github.com/skillsenselab/asrd/config"
	"github.com/skillsenselab/asrd/diarize"
	"github.com/skillsenselab/asrd/diarize/campp"
	"github.com/skillsenselab/asrd/logger"
	"github.com/skillsenselab/asrd/media"
	"github.com/skillsenselab/asrd/observability"
	"github.com/skillsenselab/asrd/provider"
	"github.com/skillsenselab/asrd/punctuate"
	"github.com/skillsenselab/asrd/punctuate/rules"
	"github.com/skillsenselab/asrd/recognition"
	"github.com/skillsenselab/asrd/recognition/funasr"
	"github.com/skillsenselab/asrd/server"
	"github.com/skillsenselab/asrd/server/endpoint"
	"github.com/skillsenselab/asrd/vad"
	"github.com/skillsenselab/asrd/vad/energy"
	"github.com/skillsenselab/asrd/vad/fsmn"
	"github.com/skillsenselab/asrd/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "asrd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg.Logging)
	log := logger.WithComponent("main")
	log.Info("Starting asrd", logger.Fields(
		"version", version.GetShortVersion(),
		"environment", cfg.Environment,
	))

	ctx := context.Background()

	if cfg.Observability.Enabled {
		shutdownObs, err := initObservability(ctx, cfg)
		if err != nil {
			return fmt.Errorf("init observability: %w", err)
		}
		defer shutdownObs()
	}

	registerFactories()

	detector, err := vad.Registry.Create(cfg.Providers.VAD.Name, cfg.Providers.VAD.Settings)
	if err != nil {
		return fmt.Errorf("create vad provider: %w", err)
	}
	recognizer, err := recognition.Registry.Create(cfg.Providers.Recognizer.Name, cfg.Providers.Recognizer.Settings)
	if err != nil {
		return fmt.Errorf("create recognition provider: %w", err)
	}

	var postproc punctuate.Provider
	if cfg.Providers.Postprocess.Name != "" {
		postproc, err = punctuate.Registry.Create(cfg.Providers.Postprocess.Name, cfg.Providers.Postprocess.Settings)
		if err != nil {
			return fmt.Errorf("create postprocess provider: %w", err)
		}
	}

	var diarizer diarize.Provider
	if cfg.Providers.Diarizer.Name != "" {
		diarizer, err = diarize.Registry.Create(cfg.Providers.Diarizer.Name, cfg.Providers.Diarizer.Settings)
		if err != nil {
			return fmt.Errorf("create diarize provider: %w", err)
		}
	}

	cfg.Pipeline.WorkDir = cfg.Media.WorkDir
	preparer := media.NewPreparer(cfg.Media)
	orchestrator := asr.New(cfg.Pipeline, preparer, detector, recognizer, postproc, diarizer)

	srv := server.New(cfg.Server)
	srv.ApplyMiddleware()
	srv.RegisterRoutes(server.Deps{
		Orchestrator: orchestrator,
		Backends:     backends(detector, recognizer, postproc, diarizer),
		Models: endpoint.ModelsInfo{
			ASRModel:  cfg.Models.ASRModel,
			VADModel:  cfg.Models.VADModel,
			PuncModel: cfg.Models.PuncModel,
			SpkModel:  cfg.Models.SpkModel,
			Device:    cfg.Pipeline.Device,
			EnableSpk: diarizer != nil,
		},
	})

	if err := srv.Start(ctx); err != nil {
		return err
	}

	waitForSignal(log)
	return srv.Stop(ctx)
}

// registerFactories makes every built-in backend available by name.
func registerFactories() {
	vad.Registry.RegisterFactory(fsmn.ProviderName, fsmn.Factory())
	vad.Registry.RegisterFactory(energy.ProviderName, energy.Factory())
	recognition.Registry.RegisterFactory(funasr.ProviderName, funasr.Factory())
	punctuate.Registry.RegisterFactory(rules.ProviderName, rules.Factory())
	diarize.Registry.RegisterFactory(campp.ProviderName, campp.Factory())
}

// backends collects the non-nil providers for health reporting.
func backends(detector vad.Provider, recognizer recognition.Provider, postproc punctuate.Provider, diarizer diarize.Provider) map[string]provider.Provider {
	m := map[string]provider.Provider{
		"vad": detector,
		"asr": recognizer,
	}
	if postproc != nil {
		m["punc"] = postproc
	}
	if diarizer != nil {
		m["spk"] = diarizer
	}
	return m
}

// initObservability starts OTLP trace and metric export and returns a
// shutdown function flushing both.
func initObservability(ctx context.Context, cfg *config.Config) (func(), error) {
	tracerCfg := observability.DefaultTracerConfig(cfg.Name)
	tracerCfg.Environment = cfg.Environment
	tracerCfg.Endpoint = cfg.Observability.Endpoint
	tracerCfg.Insecure = cfg.Observability.Insecure
	tracerCfg.SampleRate = cfg.Observability.SampleRate

	tp, err := observability.InitTracer(ctx, tracerCfg)
	if err != nil {
		return nil, err
	}

	meterCfg := observability.DefaultMeterConfig(cfg.Name)
	meterCfg.Environment = cfg.Environment
	meterCfg.Endpoint = cfg.Observability.Endpoint
	meterCfg.Insecure = cfg.Observability.Insecure

	mp, err := observability.InitMeter(ctx, meterCfg)
	if err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
		return nil, err
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
		_ = mp.Shutdown(shutdownCtx)
	}, nil
}

// waitForSignal blocks until SIGINT or SIGTERM.
func waitForSignal(log *logger.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	sig := <-sigCh
	log.Info("Received shutdown signal", logger.Fields("signal", sig.String()))
}
