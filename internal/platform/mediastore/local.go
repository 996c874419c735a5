package mediastore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lingovia/lingovia-backend/internal/platform/logger"
	"github.com/lingovia/lingovia-backend/internal/utils"
)

// localStore writes audio under {root}/audio/{lang}/ and serves it from the
// app's static file root.
type localStore struct {
	log  *logger.Logger
	root string
}

func NewLocalStore(log *logger.Logger) (Store, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	slog := log.With("service", "LocalMediaStore")
	root := utils.GetEnv("MEDIA_ROOT", "./public", slog)
	if err := os.MkdirAll(filepath.Join(root, "audio"), 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &localStore{log: slog, root: root}, nil
}

func (s *localStore) SaveAudio(ctx context.Context, languageCode string, fileName string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	languageCode = strings.TrimSpace(languageCode)
	fileName = strings.TrimSpace(fileName)
	if languageCode == "" || fileName == "" {
		return "", fmt.Errorf("language code and file name required")
	}

	dir := filepath.Join(s.root, "audio", languageCode)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create audio dir: %w", err)
	}

	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write audio file: %w", err)
	}

	s.log.Debug("audio file written", "path", path, "bytes", len(data))
	return "/audio/" + languageCode + "/" + fileName, nil
}
