// Package elevenlabs provides access to the ElevenLabs text-to-speech API.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"voxsmith/internal/allowlist"
	"voxsmith/internal/services"
	"voxsmith/internal/version"
)

const (
	// maxAttempts bounds each synthesis request; only 5xx responses and
	// transport errors consume retries.
	maxAttempts    = 3
	initialBackoff = 750 * time.Millisecond
)

// VoiceSettings tunes the synthesis model per request.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Voice is one entry from the voice catalog.
type Voice struct {
	ID       string `json:"voice_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type voicesResponse struct {
	Voices []Voice `json:"voices"`
}

type synthesisRequest struct {
	Text          string         `json:"text"`
	OutputFormat  string         `json:"output_format,omitempty"`
	VoiceSettings *VoiceSettings `json:"voice_settings,omitempty"`
}

// apiError models the structured failure body the API may return.
type apiError struct {
	Detail struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"detail"`
}

// Client calls the ElevenLabs API over the allow-listed transport.
type Client struct {
	apiKey       string
	baseURL      string
	outputFormat string
	settings     *VoiceSettings
	userAgent    string
	httpClient   *http.Client
	sleep        func(context.Context, time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default allow-listed HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithVoiceSettings attaches per-request voice settings to every synthesis call.
func WithVoiceSettings(settings VoiceSettings) Option {
	return func(c *Client) {
		c.settings = &settings
	}
}

// WithOutputFormat requests a specific audio encoding from the API.
func WithOutputFormat(format string) Option {
	return func(c *Client) {
		c.outputFormat = strings.TrimSpace(format)
	}
}

// withSleep replaces the backoff timer; tests use it to avoid real delays.
func withSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(c *Client) {
		c.sleep = sleep
	}
}

// New creates an ElevenLabs client. The API key must be non-empty; a
// missing credential is a validation failure surfaced before any slide
// work begins.
func New(apiKey, baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrValidation, "preflight", "client-init", "api credential required", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrValidation, "preflight", "client-init", "base url required", nil)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &Client{
		apiKey:    apiKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "Voxsmith/" + version.Version,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: allowlist.New(),
		},
		sleep: sleepContext,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SynthesisResult carries the audio bytes plus the request accounting
// that manifest entries record.
type SynthesisResult struct {
	Audio      []byte
	HTTPStatus int
	Attempts   int
}

// Synthesize converts text to speech with the given voice and returns the
// raw audio bytes. Up to three attempts are made; 5xx responses and
// transport errors are retried with exponential backoff starting at
// 750ms, 4xx responses fail immediately.
func (c *Client) Synthesize(ctx context.Context, voiceID, text string) (*SynthesisResult, error) {
	voiceID = strings.TrimSpace(voiceID)
	if voiceID == "" {
		return nil, services.Wrap(services.ErrValidation, "synthesis", "synthesize", "voice id required", nil)
	}
	if strings.TrimSpace(text) == "" {
		return nil, services.Wrap(services.ErrValidation, "synthesis", "synthesize", "text must not be empty", nil)
	}

	payload := synthesisRequest{Text: text, OutputFormat: c.outputFormat, VoiceSettings: c.settings}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode synthesis request: %w", err)
	}
	endpoint := c.baseURL + "/v1/text-to-speech/" + voiceID

	backoff := initialBackoff
	result := &SynthesisResult{}
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, backoff); err != nil {
				return nil, services.Wrap(services.ErrTransient, "synthesis", "synthesize", "cancelled during backoff", err)
			}
			backoff *= 2
		}
		result.Attempts = attempt

		audio, status, err := c.postSynthesis(ctx, endpoint, body)
		if status != 0 {
			result.HTTPStatus = status
		}
		if err == nil {
			result.Audio = audio
			return result, nil
		}
		lastErr = err
		if !retryable(status, err) {
			break
		}
	}
	return nil, &SynthesisError{Result: *result, Err: lastErr}
}

// SynthesisError reports a failed synthesis together with the attempt
// accounting for manifest entries.
type SynthesisError struct {
	Result SynthesisResult
	Err    error
}

func (e *SynthesisError) Error() string { return e.Err.Error() }

func (e *SynthesisError) Unwrap() error { return e.Err }

func (c *Client) postSynthesis(ctx context.Context, endpoint string, body []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, 0, services.Wrap(services.ErrTransient, "synthesis", "synthesize",
			fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, c.statusError(resp, "synthesis", "synthesize", latency)
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, services.Wrap(services.ErrTransient, "synthesis", "synthesize", "read audio body", err)
	}
	return audio, resp.StatusCode, nil
}

// Voices fetches the account's voice catalog.
func (c *Client) Voices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "voices", "list-voices",
			fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp, "voices", "list-voices", latency)
	}
	var payload voicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode voices response: %w", err)
	}
	return payload.Voices, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "*/*")
}

func (c *Client) statusError(resp *http.Response, stage, operation string, latency time.Duration) error {
	marker := services.ErrAPI
	if resp.StatusCode >= 500 {
		marker = services.ErrTransient
	}
	message := fmt.Sprintf("api returned %d (latency=%v)", resp.StatusCode, latency)
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err == nil {
		var detail apiError
		if json.Unmarshal(body, &detail) == nil && detail.Detail.Message != "" {
			message = fmt.Sprintf("api returned %d: %s", resp.StatusCode, detail.Detail.Message)
		}
	}
	return services.Wrap(marker, stage, operation, message, nil)
}

func retryable(status int, err error) bool {
	if status >= 500 {
		return true
	}
	if status == 0 {
		// Transport-level failure, no response received.
		return err != nil
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
