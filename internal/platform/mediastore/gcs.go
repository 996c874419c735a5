package mediastore

import (
	"context"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/lingovia/lingovia-backend/internal/platform/logger"
)

// gcsStore writes audio objects to a bucket under audio/{lang}/{file} and
// returns either a CDN URL or the public storage URL.
type gcsStore struct {
	log       *logger.Logger
	client    *storage.Client
	bucket    string
	cdnDomain string
}

func NewGCSStore(log *logger.Logger) (Store, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	slog := log.With("service", "GCSMediaStore")

	bucket := strings.TrimSpace(os.Getenv("AUDIO_GCS_BUCKET_NAME"))
	if bucket == "" {
		return nil, fmt.Errorf("missing env var AUDIO_GCS_BUCKET_NAME")
	}
	cdnDomain := strings.TrimSpace(os.Getenv("AUDIO_CDN_DOMAIN"))

	var opts []option.ClientOption
	if creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))

	client, err := storage.NewClient(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	slog.Info("GCS media store initialized", "bucket", bucket, "cdn_domain", cdnDomain)
	return &gcsStore{log: slog, client: client, bucket: bucket, cdnDomain: cdnDomain}, nil
}

func (s *gcsStore) SaveAudio(ctx context.Context, languageCode string, fileName string, data []byte) (string, error) {
	languageCode = strings.TrimSpace(languageCode)
	fileName = strings.TrimSpace(fileName)
	if languageCode == "" || fileName == "" {
		return "", fmt.Errorf("language code and file name required")
	}

	key := "audio/" + languageCode + "/" + fileName
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "audio/mpeg"
	w.CacheControl = "public, max-age=31536000"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload audio object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize audio object: %w", err)
	}

	if s.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", s.cdnDomain, key), nil
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, key), nil
}
