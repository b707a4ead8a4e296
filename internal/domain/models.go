package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Ability is a gear ability key such as "ink_saver_main". The empty value is
// an unused slot and is written as JSON null.
type Ability string

// AbilityUnknown is used when an ability image hash is missing from the
// lookup table.
const AbilityUnknown Ability = "Unknown"

func (a Ability) IsNone() bool { return a == "" }

func (a Ability) MarshalJSON() ([]byte, error) {
	if a.IsNone() {
		return []byte("null"), nil
	}
	return json.Marshal(string(a))
}

func (a *Ability) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*a = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*a = Ability(s)
	return nil
}

const AdditionalAbilitySlots = 3

type GearItem struct {
	Name                string                          `json:"name"`
	Brand               string                          `json:"brand"`
	PrimaryAbility      Ability                         `json:"primary_ability"`
	AdditionalAbilities [AdditionalAbilitySlots]Ability `json:"additional_abilities"`
}

type Gear struct {
	Headgear GearItem `json:"headgear"`
	Clothing GearItem `json:"clothing"`
	Shoes    GearItem `json:"shoes"`
}

type Nameplate struct {
	// Badges holds the three badge slots; nil is an empty slot.
	Badges       [3]*string `json:"badges"`
	TextColor    string     `json:"text_color"`
	BackgroundID string     `json:"background_id"`
}

type Weapon struct {
	Name        string `json:"weapon_name"`
	ID          int    `json:"weapon_id"`
	SubName     string `json:"sub_name"`
	SpecialName string `json:"special_name"`
}

type PlayerResult struct {
	KillsOrAssists int  `json:"kills_or_assists"`
	Kills          int  `json:"kills"`
	Assists        int  `json:"assists"`
	Deaths         int  `json:"deaths"`
	Specials       int  `json:"specials"`
	Signals        *int `json:"signals,omitempty"`
}

type Player struct {
	Name               string        `json:"name"`
	NplnID             string        `json:"npln_id"`
	Me                 bool          `json:"me"`
	Discriminator      string        `json:"player_number,omitempty"`
	Splashtag          string        `json:"splashtag"`
	Species            Species       `json:"species"`
	Weapon             Weapon        `json:"weapon"`
	Nameplate          Nameplate     `json:"nameplate"`
	Inked              int           `json:"inked"`
	ScoreboardPosition int           `json:"scoreboard_position"` // zero-based, within the team
	Gear               Gear          `json:"gear"`
	Disconnected       bool          `json:"disconnected"`
	Result             *PlayerResult `json:"result,omitempty"`
	Crown              bool          `json:"crown"`
	CrownType          *CrownType    `json:"crown_type,omitempty"`
}

type TeamResult struct {
	PaintRatio *float64 `json:"paint_ratio,omitempty"`
	Score      *int     `json:"score,omitempty"`
	Noroshi    *int     `json:"noroshi,omitempty"`
	TeamResult Result   `json:"team_result"`
}

type SplatfestTeam struct {
	TeamName     string        `json:"team_name"`
	SynergyBonus *float64      `json:"synergy_bonus,omitempty"`
	SynergyName  *string       `json:"synergy_name,omitempty"`
	TricolorRole *TricolorRole `json:"tricolor_role,omitempty"`
}

type Team struct {
	Players   []Player       `json:"players"`
	Color     string         `json:"color"`
	Order     int            `json:"order"`
	Result    *TeamResult    `json:"result,omitempty"`
	Splatfest *SplatfestTeam `json:"splatfest,omitempty"`
}

// HasMe reports whether the scraping account's player is on this team.
func (t Team) HasMe() bool {
	for _, p := range t.Players {
		if p.Me {
			return true
		}
	}
	return false
}

type Award struct {
	Name string    `json:"name"`
	Rank AwardRank `json:"rank"`
}

type SplatfestMetadata struct {
	MatchMultiplier int `json:"match_multiplier"`
	Clout           int `json:"clout"`
	Jewel           int `json:"jewel"`
}

const RequiredAwards = 3

// BattleRecord is one normalized battle. Values are built once by the
// transform package and not modified afterwards.
type BattleRecord struct {
	ID                string
	Mode              Mode
	Rule              Rule
	Stage             string
	Result            Result
	Knockout          *Knockout
	StartTime         time.Time
	Duration          time.Duration
	Teams             []Team
	Awards            []Award
	SeriesMetadata    ModeMetadata
	MatchPower        *float64
	ChallengeID       *string
	SplatfestMetadata *SplatfestMetadata
}

type battleRecordJSON struct {
	ID                string             `json:"id"`
	Mode              Mode               `json:"mode"`
	Rule              Rule               `json:"rule"`
	Stage             string             `json:"stage"`
	Result            Result             `json:"result"`
	Knockout          *Knockout          `json:"knockout"`
	StartTime         string             `json:"start_time"`
	Duration          int64              `json:"duration"`
	Teams             []Team             `json:"teams"`
	Awards            []Award            `json:"awards"`
	SeriesMetadata    json.RawMessage    `json:"series_metadata,omitempty"`
	MatchPower        *float64           `json:"match_power,omitempty"`
	ChallengeID       *string            `json:"challenge_id,omitempty"`
	SplatfestMetadata *SplatfestMetadata `json:"splatfest_metadata,omitempty"`
}

func (r BattleRecord) MarshalJSON() ([]byte, error) {
	out := battleRecordJSON{
		ID:                r.ID,
		Mode:              r.Mode,
		Rule:              r.Rule,
		Stage:             r.Stage,
		Result:            r.Result,
		Knockout:          r.Knockout,
		StartTime:         r.StartTime.UTC().Format(time.RFC3339),
		Duration:          int64(r.Duration / time.Second),
		Teams:             r.Teams,
		Awards:            r.Awards,
		MatchPower:        r.MatchPower,
		ChallengeID:       r.ChallengeID,
		SplatfestMetadata: r.SplatfestMetadata,
	}
	if r.SeriesMetadata != nil {
		raw, err := json.Marshal(r.SeriesMetadata)
		if err != nil {
			return nil, fmt.Errorf("failed to encode series metadata: %w", err)
		}
		out.SeriesMetadata = raw
	}
	return json.Marshal(out)
}

func (r *BattleRecord) UnmarshalJSON(b []byte) error {
	var in battleRecordJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}

	start, err := time.Parse(time.RFC3339, in.StartTime)
	if err != nil {
		return fmt.Errorf("invalid start_time: %w", err)
	}
	meta, err := UnmarshalModeMetadata(in.SeriesMetadata)
	if err != nil {
		return err
	}

	*r = BattleRecord{
		ID:                in.ID,
		Mode:              in.Mode,
		Rule:              in.Rule,
		Stage:             in.Stage,
		Result:            in.Result,
		Knockout:          in.Knockout,
		StartTime:         start,
		Duration:          time.Duration(in.Duration) * time.Second,
		Teams:             in.Teams,
		Awards:            in.Awards,
		SeriesMetadata:    meta,
		MatchPower:        in.MatchPower,
		ChallengeID:       in.ChallengeID,
		SplatfestMetadata: in.SplatfestMetadata,
	}
	return nil
}

// MyTeam returns the team containing the scraping account, if any.
func (r BattleRecord) MyTeam() (Team, bool) {
	for _, t := range r.Teams {
		if t.HasMe() {
			return t, true
		}
	}
	return Team{}, false
}
