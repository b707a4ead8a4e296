package db

import (
	"time"
)

type Battle struct {
	ID              string    `json:"id"`
	Mode            string    `json:"mode"`
	Rule            string    `json:"rule"`
	Stage           string    `json:"stage"`
	Result          string    `json:"result"`
	StartTime       time.Time `json:"start_time"`
	DurationSeconds int64     `json:"duration_seconds"`
	MatchPower      *float64  `json:"match_power"`
	Record          string    `json:"record"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type SeriesMetadatum struct {
	ID              string    `json:"id"`
	BattleID        string    `json:"battle_id"`
	Kind            string    `json:"kind"`
	RankBefore      *string   `json:"rank_before"`
	RankAfter       *string   `json:"rank_after"`
	XPowerAfter     *float64  `json:"x_power_after"`
	SeriesWinCount  *int64    `json:"series_win_count"`
	SeriesLoseCount *int64    `json:"series_lose_count"`
	Metadata        string    `json:"metadata"`
	CreatedAt       time.Time `json:"created_at"`
}

type ImportRun struct {
	ID         string     `json:"id"`
	Mode       string     `json:"mode"`
	Status     string     `json:"status"`
	Fetched    int64      `json:"fetched"`
	Imported   int64      `json:"imported"`
	Skipped    int64      `json:"skipped"`
	Failed     int64      `json:"failed"`
	Warnings   int64      `json:"warnings"`
	Error      *string    `json:"error"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
}
