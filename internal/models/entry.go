// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

package models

import (
	"time"
)

// Entry kinds.
const (
	EntryKindAnime = "ANIME"
	EntryKindManga = "MANGA"
	EntryKindGame  = "GAME"
	EntryKindMusic = "MUSIC"
	EntryKindOther = "OTHER"
)

// Entry is a rated media entry.
type Entry struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Kind      string    `db:"kind" json:"kind"`
	Score     *float64  `db:"score" json:"score"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ValidEntryKind reports whether kind is one of the known entry kinds.
func ValidEntryKind(kind string) bool {
	switch kind {
	case EntryKindAnime, EntryKindManga, EntryKindGame, EntryKindMusic, EntryKindOther:
		return true
	}
	return false
}
