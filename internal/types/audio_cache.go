package types

import (
	"time"

	"github.com/google/uuid"
)

// AudioCacheEntry memoizes generated speech assets by (text, language code).
// Entries are append-only: once a key resolves to a URL, readers always see
// that URL. The unique index makes concurrent generation for the same key
// collapse to one row.
type AudioCacheEntry struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Text         string    `gorm:"not null;index:idx_audio_text_lang,unique;column:text" json:"text"`
	LanguageCode string    `gorm:"not null;index:idx_audio_text_lang,unique;column:language_code" json:"language_code"`
	URL          string    `gorm:"not null;column:url" json:"url"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (AudioCacheEntry) TableName() string { return "audio_cache" }
