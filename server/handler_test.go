package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/skillsenselab/asrd/asr"
	"github.com/skillsenselab/asrd/errors"
	"github.com/skillsenselab/asrd/provider"
	"github.com/skillsenselab/asrd/server"
	"github.com/skillsenselab/asrd/server/endpoint"
	"github.com/skillsenselab/asrd/server/middleware"
	"github.com/skillsenselab/asrd/transcript"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeTranscriber struct {
	lastReq asr.Request
	result  *transcript.Result
	err     error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, req asr.Request) (*transcript.Result, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	// Mirror the real pipeline: validate then return a fixed transcript.
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	segs := []transcript.Segment{{StartMS: 0, EndMS: 1000, Text: "hello world"}}
	return transcript.Assemble(segs, "", nil, "test-model", "cpu"), nil
}

type fakeBackend struct {
	name      string
	available bool
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) IsAvailable(_ context.Context) bool { return f.available }

func newTestServer(t *testing.T, orch server.Transcriber, cfg server.Config) *server.Server {
	t.Helper()
	srv := server.New(cfg)
	srv.ApplyMiddleware()
	srv.RegisterRoutes(server.Deps{
		Orchestrator: orch,
		Backends: map[string]provider.Provider{
			"asr": &fakeBackend{name: "funasr", available: true},
			"vad": &fakeBackend{name: "fsmn", available: true},
		},
		Models: endpoint.ModelsInfo{
			ASRModel:  "paraformer-zh",
			VADModel:  "fsmn-vad",
			PuncModel: "ct-punc",
			Device:    "cpu",
			EnableSpk: false,
		},
	})
	return srv
}

func multipartBody(t *testing.T, fields map[string]string, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return buf, mw.FormDataContentType()
}

func TestTranscribe_MissingInput(t *testing.T) {
	srv := newTestServer(t, &fakeTranscriber{}, server.Config{})

	body, contentType := multipartBody(t, map[string]string{"language": "auto"}, "", nil)
	req := httptest.NewRequest("POST", "/asr/transcribe", body)
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp errors.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if resp.Code != errors.ErrCodeInvalidInput {
		t.Fatalf("expected code %s, got %s", errors.ErrCodeInvalidInput, resp.Code)
	}
	if resp.Retryable {
		t.Error("validation errors must not be retryable")
	}
}

func TestTranscribe_FileUpload(t *testing.T) {
	orch := &fakeTranscriber{}
	srv := newTestServer(t, orch, server.Config{})

	body, contentType := multipartBody(t, map[string]string{
		"hotword":      "天气:5 上海",
		"use_itn":      "false",
		"batch_size_s": "60",
	}, "meeting.wav", []byte("RIFFfake"))
	req := httptest.NewRequest("POST", "/asr/transcribe", body)
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	if orch.lastReq.Upload == nil || orch.lastReq.Upload.Filename != "meeting.wav" {
		t.Fatalf("upload not forwarded: %+v", orch.lastReq.Upload)
	}
	if len(orch.lastReq.Hotwords) != 2 {
		t.Fatalf("expected 2 hotwords, got %d", len(orch.lastReq.Hotwords))
	}
	if orch.lastReq.Hotwords[0].Word != "天气" || orch.lastReq.Hotwords[0].Weight != 5 {
		t.Fatalf("hotword weight not parsed: %+v", orch.lastReq.Hotwords[0])
	}
	if orch.lastReq.UseITN {
		t.Error("use_itn=false not honored")
	}
	if orch.lastReq.BatchSizeS != 60 {
		t.Fatalf("expected batch_size_s 60, got %d", orch.lastReq.BatchSizeS)
	}

	var resp struct {
		Result *transcript.Result `json:"result"`
		Text   string             `json:"text"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if resp.Text != "hello world" {
		t.Fatalf("expected text 'hello world', got %q", resp.Text)
	}
	if resp.Result == nil || resp.Result.RawText != "hello world" {
		t.Fatalf("unexpected result: %+v", resp.Result)
	}
}

func TestTranscribe_AudioURL(t *testing.T) {
	orch := &fakeTranscriber{}
	srv := newTestServer(t, orch, server.Config{})

	body, contentType := multipartBody(t, map[string]string{
		"audio_url": "https://example.com/audio.wav",
		"device":    "cuda:0",
	}, "", nil)
	req := httptest.NewRequest("POST", "/asr/transcribe", body)
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if orch.lastReq.AudioURL != "https://example.com/audio.wav" {
		t.Fatalf("audio_url not forwarded: %q", orch.lastReq.AudioURL)
	}
	if orch.lastReq.Device != "cuda:0" {
		t.Errorf("device override not forwarded: %q", orch.lastReq.Device)
	}
	if !orch.lastReq.UseITN || !orch.lastReq.EnablePostprocess || !orch.lastReq.MergeVAD {
		t.Error("boolean knobs must default to true when absent")
	}
}

func TestTranscribe_TimeoutMapsTo504(t *testing.T) {
	orch := &fakeTranscriber{err: errors.Timeout("transcribe")}
	srv := newTestServer(t, orch, server.Config{})

	body, contentType := multipartBody(t, map[string]string{
		"audio_url": "https://example.com/audio.wav",
	}, "", nil)
	req := httptest.NewRequest("POST", "/asr/transcribe", body)
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rr, req)

	if rr.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", rr.Code)
	}
	var resp errors.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if !resp.Retryable {
		t.Error("timeouts must be retryable")
	}
}

func TestHealth_Ready(t *testing.T) {
	srv := newTestServer(t, &fakeTranscriber{}, server.Config{})

	rr := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rr, httptest.NewRequest("GET", "/health", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if resp["status"] != "ready" {
		t.Fatalf("expected status ready, got %v", resp["status"])
	}
	if resp["device"] != "cpu" {
		t.Fatalf("expected device cpu, got %v", resp["device"])
	}
}

func TestHealth_BackendDown(t *testing.T) {
	srv := server.New(server.Config{})
	srv.RegisterRoutes(server.Deps{
		Orchestrator: &fakeTranscriber{},
		Backends: map[string]provider.Provider{
			"asr": &fakeBackend{name: "funasr", available: false},
		},
		Models: endpoint.ModelsInfo{Device: "cpu"},
	})

	rr := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rr, httptest.NewRequest("GET", "/health", http.NoBody))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if resp["status"] != "error" {
		t.Fatalf("expected status error, got %v", resp["status"])
	}
}

func TestModels(t *testing.T) {
	srv := newTestServer(t, &fakeTranscriber{}, server.Config{})

	rr := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rr, httptest.NewRequest("GET", "/models", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp endpoint.ModelsInfo
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if resp.ASRModel != "paraformer-zh" || resp.VADModel != "fsmn-vad" {
		t.Fatalf("unexpected models: %+v", resp)
	}
}

func TestAuth_APIKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret-key"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	cfg := server.Config{
		Auth: middleware.AuthConfig{
			Enabled:    true,
			APIKeyHash: string(hash),
		},
	}
	srv := newTestServer(t, &fakeTranscriber{}, cfg)

	// Unauthenticated request to a protected route.
	body, contentType := multipartBody(t, map[string]string{"audio_url": "https://example.com/a.wav"}, "", nil)
	req := httptest.NewRequest("POST", "/asr/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}

	// With the API key.
	body, contentType = multipartBody(t, map[string]string{"audio_url": "https://example.com/a.wav"}, "", nil)
	req = httptest.NewRequest("POST", "/asr/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-API-Key", "secret-key")
	rr = httptest.NewRecorder()
	srv.Engine().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with API key, got %d: %s", rr.Code, rr.Body.String())
	}

	// Health bypasses auth via skip paths.
	rr = httptest.NewRecorder()
	srv.Engine().ServeHTTP(rr, httptest.NewRequest("GET", "/health", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for skipped path, got %d", rr.Code)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := server.Config{Port: 70000}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "port") {
		t.Fatalf("expected port error, got %v", err)
	}

	cfg = server.Config{Auth: middleware.AuthConfig{Enabled: true}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for auth without credentials")
	}
}
