package domain

import (
	"encoding/json"
	"fmt"
)

type MetadataKind string

const (
	MetadataAnarchySeries MetadataKind = "anarchy_series"
	MetadataAnarchyOpen   MetadataKind = "anarchy_open"
	MetadataX             MetadataKind = "x"
)

// ModeMetadata is the per-battle progression state rebuilt from an overview
// group. The set of implementations is closed; a nil value means the battle
// has no series metadata.
type ModeMetadata interface {
	Kind() MetadataKind
	isModeMetadata()
}

type AnarchySeriesMetadata struct {
	RankBefore      Rank  `json:"rank_before"`
	RankAfter       Rank  `json:"rank_after"`
	RankBeforeSPlus *int  `json:"rank_before_s_plus,omitempty"`
	RankAfterSPlus  *int  `json:"rank_after_s_plus,omitempty"`
	RankExpChange   *int  `json:"rank_exp_change,omitempty"`
	IsRankUp        *bool `json:"is_rank_up,omitempty"`
	SeriesWinCount  int   `json:"series_win_count"`
	SeriesLoseCount int   `json:"series_lose_count"`
}

type AnarchyOpenMetadata struct {
	RankBefore      Rank `json:"rank_before"`
	RankAfter       Rank `json:"rank_after"`
	RankBeforeSPlus *int `json:"rank_before_s_plus,omitempty"`
	RankAfterSPlus  *int `json:"rank_after_s_plus,omitempty"`
	RankExpChange   int  `json:"rank_exp_change"`
}

type XMetadata struct {
	XPowerAfter     *float64 `json:"x_power_after,omitempty"`
	SeriesWinCount  int      `json:"series_win_count"`
	SeriesLoseCount int      `json:"series_lose_count"`
}

func (*AnarchySeriesMetadata) Kind() MetadataKind { return MetadataAnarchySeries }
func (*AnarchyOpenMetadata) Kind() MetadataKind   { return MetadataAnarchyOpen }
func (*XMetadata) Kind() MetadataKind             { return MetadataX }

func (*AnarchySeriesMetadata) isModeMetadata() {}
func (*AnarchyOpenMetadata) isModeMetadata()   {}
func (*XMetadata) isModeMetadata()             {}

func (m *AnarchySeriesMetadata) MarshalJSON() ([]byte, error) {
	type alias AnarchySeriesMetadata
	return json.Marshal(struct {
		Kind MetadataKind `json:"kind"`
		*alias
	}{m.Kind(), (*alias)(m)})
}

func (m *AnarchyOpenMetadata) MarshalJSON() ([]byte, error) {
	type alias AnarchyOpenMetadata
	return json.Marshal(struct {
		Kind MetadataKind `json:"kind"`
		*alias
	}{m.Kind(), (*alias)(m)})
}

func (m *XMetadata) MarshalJSON() ([]byte, error) {
	type alias XMetadata
	return json.Marshal(struct {
		Kind MetadataKind `json:"kind"`
		*alias
	}{m.Kind(), (*alias)(m)})
}

// UnmarshalModeMetadata restores a ModeMetadata from its tagged JSON form.
// JSON null yields a nil ModeMetadata.
func UnmarshalModeMetadata(data []byte) (ModeMetadata, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var tag struct {
		Kind MetadataKind `json:"kind"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("failed to read metadata kind: %w", err)
	}

	var out ModeMetadata
	switch tag.Kind {
	case MetadataAnarchySeries:
		out = &AnarchySeriesMetadata{}
	case MetadataAnarchyOpen:
		out = &AnarchyOpenMetadata{}
	case MetadataX:
		out = &XMetadata{}
	default:
		return nil, fmt.Errorf("unknown metadata kind %q", tag.Kind)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("failed to decode %s metadata: %w", tag.Kind, err)
	}
	return out, nil
}
