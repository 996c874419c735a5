package mediastore

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/lingovia/lingovia-backend/internal/platform/logger"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCS   Mode = "gcs"
)

// Store persists synthesized audio and returns the public URL clients play
// it from. Saves are idempotent; writing the same object twice is fine.
type Store interface {
	SaveAudio(ctx context.Context, languageCode string, fileName string, data []byte) (string, error)
}

// NewFromEnv picks the backing store from MEDIA_STORAGE_MODE. Local disk is
// the default so the server runs without cloud credentials.
func NewFromEnv(log *logger.Logger) (Store, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(os.Getenv("MEDIA_STORAGE_MODE"))))
	switch mode {
	case "", ModeLocal:
		return NewLocalStore(log)
	case ModeGCS:
		return NewGCSStore(log)
	default:
		return nil, fmt.Errorf("invalid MEDIA_STORAGE_MODE=%q; expected %q or %q", mode, ModeLocal, ModeGCS)
	}
}
