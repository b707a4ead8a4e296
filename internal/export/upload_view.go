package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"zipcaster/internal/codec"
	"zipcaster/internal/domain"
)

var uploadModes = map[domain.Mode]string{
	domain.ModeTurfWar:           "REGULAR",
	domain.ModeAnarchySeries:     "BANKARA",
	domain.ModeAnarchyOpen:       "BANKARA",
	domain.ModeXBattle:           "X_MATCH",
	domain.ModeSplatfestOpen:     "FEST",
	domain.ModeSplatfestPro:      "FEST",
	domain.ModeSplatfestTricolor: "FEST",
	domain.ModePrivate:           "PRIVATE",
	domain.ModeChallenge:         "CHALLENGE",
}

var uploadRules = map[domain.Rule]string{
	domain.RuleSplatZones:   "AREA",
	domain.RuleTowerControl: "LOFT",
	domain.RuleTricolor:     "TRI_COLOR",
	domain.RuleTurfWar:      "TURF_WAR",
	domain.RuleRainmaker:    "GOAL",
	domain.RuleClamBlitz:    "CLAM",
}

var uploadMultipliers = map[int]string{
	1:   "NONE",
	10:  "DECUPLE",
	100: "DRAGON",
	333: "DOUBLE_DRAGON",
}

type uploadBattle struct {
	SplatnetID string           `json:"splatnetId"`
	VsMode     string           `json:"vsMode"`
	VsRule     string           `json:"vsRule"`
	VsStageID  int              `json:"vsStageId"`
	PlayedTime string           `json:"playedTime"`
	Duration   int64            `json:"duration"`
	Judgement  string           `json:"judgement"`
	Knockout   string           `json:"knockout,omitempty"`
	Awards     []string         `json:"awards"`
	Teams      []uploadTeam     `json:"teams"`
	Splatfest  *uploadSplatfest `json:"splatfest,omitempty"`
	Challenge  *uploadChallenge `json:"challenge,omitempty"`
	XBattle    *uploadXBattle   `json:"xBattle,omitempty"`
	Anarchy    *uploadAnarchy   `json:"anarchy,omitempty"`
}

type uploadTeam struct {
	IsMyTeam             bool           `json:"isMyTeam"`
	Color                codec.Color    `json:"color"`
	Order                int            `json:"order"`
	Score                *int           `json:"score,omitempty"`
	Noroshi              *int           `json:"noroshi,omitempty"`
	PaintRatio           *float64       `json:"paintRatio,omitempty"`
	Judgement            string         `json:"judgement,omitempty"`
	FestTeamName         string         `json:"festTeamName,omitempty"`
	FestUniformBonusRate *float64       `json:"festUniformBonusRate,omitempty"`
	FestUniformName      *string        `json:"festUniformName,omitempty"`
	TricolorRole         string         `json:"tricolorRole,omitempty"`
	Players              []uploadPlayer `json:"players"`
}

type uploadPlayer struct {
	IsMe                  bool       `json:"isMe"`
	Disconnected          bool       `json:"disconnected"`
	Species               string     `json:"species"`
	NplnID                string     `json:"nplnId"`
	Name                  string     `json:"name"`
	NameID                string     `json:"nameId,omitempty"`
	Title                 string     `json:"title"`
	SplashtagBackgroundID int        `json:"splashtagBackgroundId"`
	WeaponID              int        `json:"weaponId"`
	Paint                 int        `json:"paint"`
	HeadGear              uploadGear `json:"headGear"`
	ClothingGear          uploadGear `json:"clothingGear"`
	ShoesGear             uploadGear `json:"shoesGear"`
	Badges                []*int     `json:"badges"`
	Kills                 *int       `json:"kills,omitempty"`
	Assists               *int       `json:"assists,omitempty"`
	Deaths                *int       `json:"deaths,omitempty"`
	Specials              *int       `json:"specials,omitempty"`
	NoroshiTry            *int       `json:"noroshiTry,omitempty"`
}

type uploadGear struct {
	Name               string   `json:"name"`
	PrimaryAbility     string   `json:"primaryAbility"`
	SecondaryAbilities []string `json:"secondaryAbilities"`
}

type uploadSplatfest struct {
	Mode            string   `json:"mode"`
	CloutMultiplier string   `json:"cloutMultiplier"`
	Power           *float64 `json:"power,omitempty"`
}

type uploadChallenge struct {
	ID    string   `json:"id"`
	Power *float64 `json:"power,omitempty"`
}

type uploadXBattle struct {
	XPower *float64 `json:"xPower,omitempty"`
}

type uploadAnarchy struct {
	Mode        string   `json:"mode"`
	Rank        string   `json:"rank,omitempty"`
	Power       *float64 `json:"power,omitempty"`
	PointChange *int     `json:"pointChange,omitempty"`
	SPlusNumber *int     `json:"sPlusNumber,omitempty"`
}

// uploadID is the last colon separated segment of a battle id.
func uploadID(battleID string) string {
	return battleID[strings.LastIndex(battleID, ":")+1:]
}

func newUploadBattle(rec domain.BattleRecord) (*uploadBattle, error) {
	mode, ok := uploadModes[rec.Mode]
	if !ok {
		return nil, fmt.Errorf("no upload mode for %q", rec.Mode)
	}
	rule, ok := uploadRules[rec.Rule]
	if !ok {
		return nil, fmt.Errorf("no upload rule for %q", rec.Rule)
	}
	stage, err := strconv.Atoi(rec.Stage)
	if err != nil {
		return nil, fmt.Errorf("stage id %q is not numeric", rec.Stage)
	}

	out := &uploadBattle{
		SplatnetID: uploadID(rec.ID),
		VsMode:     mode,
		VsRule:     rule,
		VsStageID:  stage,
		PlayedTime: rec.StartTime.UTC().Format(time.RFC3339),
		Duration:   int64(rec.Duration / time.Second),
		Judgement:  strings.ToUpper(string(rec.Result)),
		Awards:     make([]string, 0, len(rec.Awards)),
	}
	if rec.Knockout != nil {
		out.Knockout = strings.ToUpper(string(*rec.Knockout))
	}
	for _, a := range rec.Awards {
		out.Awards = append(out.Awards, a.Name)
	}

	for _, t := range rec.Teams {
		team, err := newUploadTeam(t)
		if err != nil {
			return nil, err
		}
		out.Teams = append(out.Teams, team)
	}

	switch {
	case rec.Mode.IsSplatfest():
		out.Splatfest = newUploadSplatfest(rec)
	case rec.Mode == domain.ModeChallenge:
		out.Challenge = &uploadChallenge{Power: rec.MatchPower}
		if rec.ChallengeID != nil {
			out.Challenge.ID = *rec.ChallengeID
		}
	case rec.Mode == domain.ModeXBattle:
		out.XBattle = &uploadXBattle{XPower: rec.MatchPower}
	case rec.Mode.IsAnarchy():
		out.Anarchy = newUploadAnarchy(rec)
	}
	return out, nil
}

func newUploadSplatfest(rec domain.BattleRecord) *uploadSplatfest {
	out := &uploadSplatfest{Mode: "OPEN", CloutMultiplier: uploadMultipliers[1], Power: rec.MatchPower}
	if rec.Mode == domain.ModeSplatfestPro {
		out.Mode = "PRO"
	}
	if rec.SplatfestMetadata != nil {
		if m, ok := uploadMultipliers[rec.SplatfestMetadata.MatchMultiplier]; ok {
			out.CloutMultiplier = m
		}
	}
	return out
}

func newUploadAnarchy(rec domain.BattleRecord) *uploadAnarchy {
	out := &uploadAnarchy{Mode: "SERIES", Power: rec.MatchPower}
	if rec.Mode == domain.ModeAnarchyOpen {
		out.Mode = "OPEN"
	}

	switch m := rec.SeriesMetadata.(type) {
	case *domain.AnarchySeriesMetadata:
		out.Rank = string(m.RankAfter.Letter)
		out.PointChange = m.RankExpChange
		out.SPlusNumber = m.RankAfterSPlus
	case *domain.AnarchyOpenMetadata:
		out.Rank = string(m.RankAfter.Letter)
		change := m.RankExpChange
		out.PointChange = &change
		out.SPlusNumber = m.RankAfterSPlus
	}
	return out
}

func newUploadTeam(t domain.Team) (uploadTeam, error) {
	color, err := codec.ColorFromHex(t.Color)
	if err != nil {
		return uploadTeam{}, err
	}

	out := uploadTeam{
		IsMyTeam: t.HasMe(),
		Color:    color,
		Order:    t.Order,
	}
	if t.Result != nil {
		out.Score = t.Result.Score
		out.Noroshi = t.Result.Noroshi
		out.PaintRatio = t.Result.PaintRatio
		out.Judgement = strings.ToUpper(string(t.Result.TeamResult))
	}
	if t.Splatfest != nil {
		out.FestTeamName = t.Splatfest.TeamName
		out.FestUniformBonusRate = t.Splatfest.SynergyBonus
		out.FestUniformName = t.Splatfest.SynergyName
		if t.Splatfest.TricolorRole != nil {
			out.TricolorRole = strings.ToUpper(string(*t.Splatfest.TricolorRole))
		}
	}

	for _, p := range t.Players {
		player, err := newUploadPlayer(p)
		if err != nil {
			return uploadTeam{}, err
		}
		out.Players = append(out.Players, player)
	}
	return out, nil
}

func newUploadPlayer(p domain.Player) (uploadPlayer, error) {
	background, err := strconv.Atoi(p.Nameplate.BackgroundID)
	if err != nil {
		return uploadPlayer{}, fmt.Errorf("player %s: background id %q is not numeric", p.NplnID, p.Nameplate.BackgroundID)
	}

	out := uploadPlayer{
		IsMe:                  p.Me,
		Disconnected:          p.Disconnected,
		Species:               strings.ToUpper(string(p.Species)),
		NplnID:                p.NplnID,
		Name:                  p.Name,
		NameID:                p.Discriminator,
		Title:                 p.Splashtag,
		SplashtagBackgroundID: background,
		WeaponID:              p.Weapon.ID,
		Paint:                 p.Inked,
		HeadGear:              newUploadGear(p.Gear.Headgear),
		ClothingGear:          newUploadGear(p.Gear.Clothing),
		ShoesGear:             newUploadGear(p.Gear.Shoes),
		Badges:                make([]*int, 0, len(p.Nameplate.Badges)),
	}

	for _, b := range p.Nameplate.Badges {
		if b == nil {
			out.Badges = append(out.Badges, nil)
			continue
		}
		n, err := strconv.Atoi(*b)
		if err != nil {
			return uploadPlayer{}, fmt.Errorf("player %s: badge id %q is not numeric", p.NplnID, *b)
		}
		out.Badges = append(out.Badges, &n)
	}

	if !p.Disconnected && p.Result != nil {
		r := *p.Result
		out.Kills = &r.KillsOrAssists
		out.Assists = &r.Assists
		out.Deaths = &r.Deaths
		out.Specials = &r.Specials
		out.NoroshiTry = r.Signals
	}
	return out, nil
}

func newUploadGear(g domain.GearItem) uploadGear {
	out := uploadGear{
		Name:               g.Name,
		PrimaryAbility:     codec.DisplayName(g.PrimaryAbility),
		SecondaryAbilities: make([]string, 0, len(g.AdditionalAbilities)),
	}
	for _, a := range g.AdditionalAbilities {
		out.SecondaryAbilities = append(out.SecondaryAbilities, codec.DisplayName(a))
	}
	return out
}
