package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/lingovia/lingovia-backend/internal/platform/logger"
	"github.com/lingovia/lingovia-backend/internal/platform/mediastore"
	"github.com/lingovia/lingovia-backend/internal/platform/openai"
	"github.com/lingovia/lingovia-backend/internal/repos"
	"github.com/lingovia/lingovia-backend/internal/types"
)

const (
	speechSpeed = 0.75

	backfillMaxRetries = 3
	backfillRetryDelay = 1 * time.Second
	backfillPacing     = 500 * time.Millisecond
)

// voiceByLanguage maps a course language to the voice used for its audio.
// Unknown languages fall back to "alloy".
var voiceByLanguage = map[string]string{
	"es": "nova",
	"fr": "echo",
	"jp": "shimmer",
	"cn": "onyx",
	"hr": "fable",
}

func voiceFor(languageCode string) string {
	if v, ok := voiceByLanguage[languageCode]; ok {
		return v
	}
	return "alloy"
}

// AudioResult is a per-text outcome. A synthesis failure is reported in
// Error rather than failing the whole call, so batch callers can keep going.
type AudioResult struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}

type BackfillReport struct {
	Total     int `json:"total"`
	Generated int `json:"generated"`
	Cached    int `json:"cached"`
	Failed    int `json:"failed"`
}

type AudioService interface {
	// ResolveAudio returns a playable URL for the text, synthesizing and
	// caching it on first request. Concurrent requests for the same
	// (text, language) pair share one synthesis.
	ResolveAudio(ctx context.Context, text, languageCode string) AudioResult
	// BackfillMissingAudio resolves audio for every challenge option that
	// still lacks one. Failures are counted, not fatal.
	BackfillMissingAudio(ctx context.Context) (BackfillReport, error)
}

type audioService struct {
	log        *logger.Logger
	speech     openai.SpeechClient
	store      mediastore.Store
	cacheRepo  repos.AudioCacheRepo
	optionRepo repos.ChallengeOptionRepo
	group      singleflight.Group
}

func NewAudioService(
	log *logger.Logger,
	speech openai.SpeechClient,
	store mediastore.Store,
	cacheRepo repos.AudioCacheRepo,
	optionRepo repos.ChallengeOptionRepo,
) AudioService {
	return &audioService{
		log:        log.With("service", "AudioService"),
		speech:     speech,
		store:      store,
		cacheRepo:  cacheRepo,
		optionRepo: optionRepo,
	}
}

func (s *audioService) ResolveAudio(ctx context.Context, text, languageCode string) AudioResult {
	text = strings.TrimSpace(text)
	languageCode = strings.TrimSpace(languageCode)
	if text == "" || languageCode == "" {
		return AudioResult{Success: false, Error: "text and language code required"}
	}

	key := languageCode + "\x00" + text
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.resolveOnce(ctx, text, languageCode)
	})
	if err != nil {
		s.log.Warn("audio resolve failed", "language", languageCode, "text", text, "error", err)
		return AudioResult{Success: false, Error: err.Error()}
	}
	return AudioResult{Success: true, URL: v.(string)}
}

func (s *audioService) resolveOnce(ctx context.Context, text, languageCode string) (string, error) {
	entry, err := s.cacheRepo.Get(ctx, nil, text, languageCode)
	if err != nil {
		return "", fmt.Errorf("audio cache lookup: %w", err)
	}
	if entry != nil {
		return entry.URL, nil
	}

	if s.speech == nil {
		return "", fmt.Errorf("speech synthesis unavailable")
	}
	audio, err := s.speech.Synthesize(ctx, openai.SpeechRequest{
		Text:  text,
		Voice: voiceFor(languageCode),
		Speed: speechSpeed,
	})
	if err != nil {
		return "", fmt.Errorf("synthesize speech: %w", err)
	}

	fileName := audioFileName(text, languageCode)
	url, err := s.store.SaveAudio(ctx, languageCode, fileName, audio)
	if err != nil {
		return "", fmt.Errorf("save audio: %w", err)
	}

	if err := s.cacheRepo.Insert(ctx, nil, &types.AudioCacheEntry{
		Text:         text,
		LanguageCode: languageCode,
		URL:          url,
	}); err != nil {
		return "", fmt.Errorf("record audio cache entry: %w", err)
	}
	// The insert is first-write-wins across processes; re-read so every
	// caller hands out the same URL.
	entry, err = s.cacheRepo.Get(ctx, nil, text, languageCode)
	if err != nil {
		return "", fmt.Errorf("audio cache re-read: %w", err)
	}
	if entry != nil {
		url = entry.URL
	}

	if _, err := s.optionRepo.BackfillAudioSrc(ctx, nil, text, url); err != nil {
		s.log.Warn("option audio backfill failed", "text", text, "error", err)
	}
	return url, nil
}

func (s *audioService) BackfillMissingAudio(ctx context.Context) (BackfillReport, error) {
	pending, err := s.optionRepo.ListPendingAudio(ctx, nil)
	if err != nil {
		return BackfillReport{}, fmt.Errorf("list pending audio: %w", err)
	}

	report := BackfillReport{Total: len(pending)}
	for i, item := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		entry, err := s.cacheRepo.Get(ctx, nil, item.Text, item.LanguageCode)
		if err == nil && entry != nil {
			if _, err := s.optionRepo.BackfillAudioSrc(ctx, nil, item.Text, entry.URL); err != nil {
				s.log.Warn("option audio backfill failed", "text", item.Text, "error", err)
			}
			report.Cached++
			continue
		}

		if ok := s.resolveWithRetries(ctx, item.Text, item.LanguageCode); ok {
			report.Generated++
		} else {
			report.Failed++
		}

		if i < len(pending)-1 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(backfillPacing):
			}
		}
	}

	s.log.Info("audio backfill finished",
		"total", report.Total,
		"generated", report.Generated,
		"cached", report.Cached,
		"failed", report.Failed,
	)
	return report, nil
}

func (s *audioService) resolveWithRetries(ctx context.Context, text, languageCode string) bool {
	for attempt := 1; attempt <= backfillMaxRetries; attempt++ {
		if _, err := s.resolveOnce(ctx, text, languageCode); err == nil {
			return true
		} else {
			s.log.Warn("audio backfill attempt failed",
				"text", text,
				"language", languageCode,
				"attempt", attempt,
				"error", err,
			)
		}
		if attempt == backfillMaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(backfillRetryDelay):
		}
	}
	return false
}

var (
	whitespaceRun   = regexp.MustCompile(`\s+`)
	filenamePunct   = regexp.MustCompile(`[?？.,。!！:：;"'“”‘’]`)
	filenameUnsafeR = regexp.MustCompile(`[/\\]`)
)

// sanitizeTextForFilename lowercases the text, collapses whitespace runs to
// underscores and strips punctuation, so the same phrase always lands on the
// same file.
func sanitizeTextForFilename(text string) string {
	out := strings.ToLower(strings.TrimSpace(text))
	out = whitespaceRun.ReplaceAllString(out, "_")
	out = filenamePunct.ReplaceAllString(out, "")
	out = filenameUnsafeR.ReplaceAllString(out, "")
	return out
}

func audioFileName(text, languageCode string) string {
	return languageCode + "_" + sanitizeTextForFilename(text) + ".mp3"
}
