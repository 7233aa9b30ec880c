package elevenlabs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"voxsmith/internal/services"
	"voxsmith/internal/version"
)

func noSleep(context.Context, time.Duration) error { return nil }

func newTestClient(t *testing.T, server *httptest.Server, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithHTTPClient(server.Client()), withSleep(noSleep)}, opts...)
	client, err := New("test-key", server.URL, 5*time.Second, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return client
}

func TestSynthesizeSuccess(t *testing.T) {
	var gotPath, gotKey, gotAgent string
	var gotBody synthesisRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		gotAgent = r.Header.Get("User-Agent")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Write([]byte("audio-bytes"))
	}))
	defer server.Close()

	client := newTestClient(t, server,
		WithOutputFormat("mp3_44100_128"),
		WithVoiceSettings(VoiceSettings{Stability: 0.5, SimilarityBoost: 0.75}),
	)
	result, err := client.Synthesize(context.Background(), "voice123", "Hello there")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if result.HTTPStatus != http.StatusOK {
		t.Fatalf("status = %d", result.HTTPStatus)
	}
	if result.Attempts != 1 {
		t.Fatalf("attempts = %d, want 1", result.Attempts)
	}
	if string(result.Audio) != "audio-bytes" {
		t.Fatalf("audio = %q", result.Audio)
	}
	if gotPath != "/v1/text-to-speech/voice123" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("xi-api-key = %q", gotKey)
	}
	if gotAgent != "Voxsmith/"+version.Version {
		t.Fatalf("user agent = %q", gotAgent)
	}
	if gotBody.Text != "Hello there" || gotBody.OutputFormat != "mp3_44100_128" {
		t.Fatalf("request body = %+v", gotBody)
	}
	if gotBody.VoiceSettings == nil || gotBody.VoiceSettings.Stability != 0.5 {
		t.Fatalf("voice settings = %+v", gotBody.VoiceSettings)
	}
}

func TestSynthesizeRetriesServerErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "upstream sad", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.Synthesize(context.Background(), "voice123", "Hello")
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	var synthErr *SynthesisError
	if !errors.As(err, &synthErr) {
		t.Fatalf("error type = %T, want SynthesisError", err)
	}
	if synthErr.Result.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("status = %d", synthErr.Result.HTTPStatus)
	}
	if synthErr.Result.Attempts != 3 {
		t.Fatalf("attempts = %d, want 3", synthErr.Result.Attempts)
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("error kind = %v, want transient", err)
	}
}

func TestSynthesizeRecoveryMidRetry(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "upstream sad", http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok-audio"))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	result, err := client.Synthesize(context.Background(), "voice123", "Hello")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if string(result.Audio) != "ok-audio" {
		t.Fatalf("audio = %q", result.Audio)
	}
	if result.Attempts != 3 {
		t.Fatalf("attempts = %d, want 3", result.Attempts)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestSynthesizeClientErrorNotRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"detail": map[string]string{"status": "invalid_request", "message": "text too long"},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.Synthesize(context.Background(), "voice123", "Hello")
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (no retries on 4xx)", calls)
	}
	var synthErr *SynthesisError
	if !errors.As(err, &synthErr) {
		t.Fatalf("error type = %T, want SynthesisError", err)
	}
	if synthErr.Result.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("status = %d", synthErr.Result.HTTPStatus)
	}
	if !errors.Is(err, services.ErrAPI) {
		t.Fatalf("error kind = %v, want api error", err)
	}
	if got := err.Error(); !strings.Contains(got, "text too long") {
		t.Fatalf("error %q missing detail message", got)
	}
}

func TestSynthesizeValidation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called")
	}))
	defer server.Close()

	client := newTestClient(t, server)
	if _, err := client.Synthesize(context.Background(), "", "Hello"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("empty voice error = %v, want validation", err)
	}
	if _, err := client.Synthesize(context.Background(), "voice123", "  "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("empty text error = %v, want validation", err)
	}
}

func TestNewRequiresCredential(t *testing.T) {
	if _, err := New("   ", "https://api.example", time.Second); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("New error = %v, want validation", err)
	}
}

func TestVoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/voices" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(voicesResponse{Voices: []Voice{
			{ID: "v1", Name: "Amelia", Category: "premade"},
			{ID: "v2", Name: "Brandon", Category: "cloned"},
		}})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	voices, err := client.Voices(context.Background())
	if err != nil {
		t.Fatalf("Voices failed: %v", err)
	}
	if len(voices) != 2 || voices[0].Name != "Amelia" || voices[1].ID != "v2" {
		t.Fatalf("voices = %+v", voices)
	}
}
