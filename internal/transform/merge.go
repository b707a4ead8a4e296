package transform

import "zipcaster/internal/domain"

// Merge attaches the reconstructed metadata for rec, if any. Battles with no
// entry keep a nil SeriesMetadata.
func Merge(rec domain.BattleRecord, meta map[string]domain.ModeMetadata) domain.BattleRecord {
	if m, ok := meta[rec.ID]; ok {
		rec.SeriesMetadata = m
	}
	return rec
}
