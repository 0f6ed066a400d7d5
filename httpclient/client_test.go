package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPostMultipart_FieldsAndFile(t *testing.T) {
	var gotField, gotFile string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotField = r.FormValue("use_itn")
		f, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		gotFile = header.Filename + ":" + string(data)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"ok"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	var out struct {
		Text string `json:"text"`
	}
	err := c.PostMultipart(context.Background(), "/asr/recognize", MultipartBody{
		Fields: map[string]string{"use_itn": "true"},
		Files:  []FileField{{FieldName: "file", FileName: "audio.wav", Data: []byte("RIFF")}},
	}, &out)
	if err != nil {
		t.Fatalf("PostMultipart: %v", err)
	}

	if gotField != "true" {
		t.Errorf("expected use_itn=true, got %q", gotField)
	}
	if gotFile != "audio.wav:RIFF" {
		t.Errorf("unexpected file part: %q", gotFile)
	}
	if out.Text != "ok" {
		t.Errorf("expected decoded text 'ok', got %q", out.Text)
	}
}

func TestPostMultipart_ReaderUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if string(data) != "streamed" {
			t.Errorf("expected streamed content, got %q", data)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	err := c.PostMultipart(context.Background(), "/upload", MultipartBody{
		Files: []FileField{{FieldName: "file", FileName: "a.wav", Reader: strings.NewReader("streamed")}},
	}, nil)
	if err != nil {
		t.Fatalf("PostMultipart: %v", err)
	}
}

func TestPostMultipart_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	err := c.PostMultipart(context.Background(), "/asr/recognize", MultipartBody{}, nil)
	if err == nil {
		t.Fatal("expected error for 503")
	}
	if !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "model not loaded") {
		t.Errorf("error should carry status and body: %v", err)
	}
}

func TestHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	if !c.Healthy(context.Background()) {
		t.Error("expected healthy sidecar")
	}

	down := New("http://127.0.0.1:1", 500*time.Millisecond)
	if down.Healthy(context.Background()) {
		t.Error("expected unhealthy for unreachable sidecar")
	}
}

func TestEscapeQuotes(t *testing.T) {
	if got := escapeQuotes(`a"b\c`); got != `a\"b\\c` {
		t.Errorf("unexpected escape: %q", got)
	}
}
