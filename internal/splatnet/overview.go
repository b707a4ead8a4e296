package splatnet

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// HistoryKind names the battle-history query an overview came from.
type HistoryKind string

const (
	HistoryLatest  HistoryKind = "latest"
	HistoryRegular HistoryKind = "regular"
	HistoryAnarchy HistoryKind = "bankara"
	HistoryX       HistoryKind = "x"
	HistoryLeague  HistoryKind = "event"
	HistoryPrivate HistoryKind = "private"
)

const historiesSuffix = "BattleHistories"

var historyKinds = map[string]HistoryKind{
	"latest":  HistoryLatest,
	"regular": HistoryRegular,
	"bankara": HistoryAnarchy,
	"x":       HistoryX,
	"event":   HistoryLeague,
	"private": HistoryPrivate,
}

type BankaraMatchChallenge struct {
	State             string  `json:"state"`
	WinCount          int     `json:"winCount"`
	LoseCount         int     `json:"loseCount"`
	MaxWinCount       int     `json:"maxWinCount"`
	MaxLoseCount      int     `json:"maxLoseCount"`
	IsPromo           bool    `json:"isPromo"`
	IsUdemaeUp        *bool   `json:"isUdemaeUp"`
	UdemaeAfter       *string `json:"udemaeAfter"`
	EarnedUdemaePoint *int    `json:"earnedUdemaePoint"`
}

type XMatchMeasurement struct {
	State       string   `json:"state"`
	XPowerAfter *float64 `json:"xPowerAfter"`
	IsInitial   bool     `json:"isInitial"`
	WinCount    int      `json:"winCount"`
	LoseCount   int      `json:"loseCount"`
}

type NodeBankaraMatch struct {
	EarnedUdemaePoint *int `json:"earnedUdemaePoint"`
}

// HistoryNode is one battle inside an overview group. Only the fields the
// series reconstruction reads are decoded.
type HistoryNode struct {
	ID           string            `json:"id"`
	VsMode       VsMode            `json:"vsMode"`
	Judgement    string            `json:"judgement"`
	Udemae       *string           `json:"udemae"`
	BankaraMatch *NodeBankaraMatch `json:"bankaraMatch"`
	PlayedTime   string            `json:"playedTime"`
}

type HistoryDetails struct {
	Nodes []HistoryNode `json:"nodes"`
}

// HistoryGroup is one overview group. Nodes are ordered newest first.
type HistoryGroup struct {
	BankaraMatchChallenge *BankaraMatchChallenge `json:"bankaraMatchChallenge"`
	XMatchMeasurement     *XMatchMeasurement     `json:"xMatchMeasurement"`
	HistoryDetails        HistoryDetails         `json:"historyDetails"`
}

// Overview is a decoded *BattleHistories response.
type Overview struct {
	Kind   HistoryKind
	Groups []HistoryGroup
}

// ParseOverview finds the single <kind>BattleHistories object in data, with
// or without the GraphQL "data" wrapper, and decodes its groups.
func ParseOverview(data []byte) (*Overview, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("overview payload is not valid JSON")
	}

	root := locate(data, []string{"data"})
	if !root.IsObject() {
		return nil, fmt.Errorf("overview payload is not an object")
	}

	var (
		key   string
		found gjson.Result
	)
	root.ForEach(func(k, v gjson.Result) bool {
		if strings.HasSuffix(k.String(), historiesSuffix) && v.IsObject() {
			key, found = k.String(), v
			return false
		}
		return true
	})
	if key == "" {
		return nil, fmt.Errorf("overview payload has no %s object", historiesSuffix)
	}

	kind, ok := historyKinds[strings.TrimSuffix(key, historiesSuffix)]
	if !ok {
		return nil, fmt.Errorf("unsupported overview history %q", key)
	}

	ov := &Overview{Kind: kind}
	nodes := found.Get("historyGroups.nodes")
	if !nodes.Exists() {
		return ov, nil
	}
	if err := json.Unmarshal([]byte(nodes.Raw), &ov.Groups); err != nil {
		return nil, fmt.Errorf("failed to decode %s history groups: %w", kind, err)
	}
	return ov, nil
}
