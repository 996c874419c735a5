package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lingovia/lingovia-backend/internal/platform/logger"
)

// SpeechRequest describes a single synthesis call. Voice and speed are
// resolved by the caller; the client only knows the wire format.
type SpeechRequest struct {
	Text  string
	Voice string
	Speed float64
}

// SpeechClient synthesizes audio from text.
type SpeechClient interface {
	Synthesize(ctx context.Context, req SpeechRequest) ([]byte, error)
}

type speechClient struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	maxRetries int
}

func NewSpeechClient(log *logger.Logger) (SpeechClient, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}

	baseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	model := strings.TrimSpace(os.Getenv("OPENAI_TTS_MODEL"))
	if model == "" {
		model = "tts-1"
	}

	timeoutSec := 30
	if v := os.Getenv("OPENAI_TTS_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	maxRetries := 2
	if v := os.Getenv("OPENAI_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= 0 {
			maxRetries = parsed
		}
	}

	return &speechClient{
		log:        log.With("service", "SpeechClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: maxRetries,
	}, nil
}

type speechAPIError struct {
	StatusCode int
	Body       string
}

func (e *speechAPIError) Error() string {
	return fmt.Sprintf("openai speech http %d: %s", e.StatusCode, e.Body)
}

func retryableSpeechError(err error) bool {
	if apiErr, ok := err.(*speechAPIError); ok {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	// Transport errors (timeouts, resets) are worth one more try.
	return true
}

type speechRequestBody struct {
	Model string  `json:"model"`
	Input string  `json:"input"`
	Voice string  `json:"voice"`
	Speed float64 `json:"speed,omitempty"`
}

func (c *speechClient) Synthesize(ctx context.Context, req SpeechRequest) ([]byte, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("speech input required")
	}
	voice := strings.TrimSpace(req.Voice)
	if voice == "" {
		voice = "alloy"
	}

	body := speechRequestBody{
		Model: c.model,
		Input: text,
		Voice: voice,
		Speed: req.Speed,
	}

	backoff := 1 * time.Second
	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		audio, err := c.synthesizeOnce(ctx, body)
		if err == nil {
			return audio, nil
		}
		if attempt == c.maxRetries || !retryableSpeechError(err) {
			return nil, err
		}

		c.log.Warn("speech request retrying",
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", backoff.String(),
			"error", err.Error(),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

func (c *speechClient) synthesizeOnce(ctx context.Context, body speechRequestBody) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/audio/speech", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &speechAPIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("speech response empty")
	}
	return raw, nil
}
