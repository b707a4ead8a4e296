package splatnet

import (
	"encoding/json"
	"fmt"

	"zipcaster/internal/codec"

	"github.com/tidwall/gjson"
)

// Candidate locations of the battle object inside a saved detail payload.
// The scraper may store the raw GraphQL response, its data member, or the
// bare vsHistoryDetail object.
var detailRoots = []string{"data.vsHistoryDetail", "vsHistoryDetail"}

type Image struct {
	URL string `json:"url"`
}

type VsMode struct {
	ID   string `json:"id"`
	Mode string `json:"mode"`
}

type VsRule struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Rule string `json:"rule"`
}

type VsStage struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Badge struct {
	ID    string `json:"id"`
	Image Image  `json:"image"`
}

type Background struct {
	ID        string      `json:"id"`
	TextColor codec.Color `json:"textColor"`
}

type Nameplate struct {
	Badges     []*Badge   `json:"badges"`
	Background Background `json:"background"`
}

type NamedItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Weapon struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	SubWeapon     NamedItem `json:"subWeapon"`
	SpecialWeapon NamedItem `json:"specialWeapon"`
}

type GearPower struct {
	Name  string `json:"name"`
	Image Image  `json:"image"`
}

type Gear struct {
	Name                 string      `json:"name"`
	Brand                NamedItem   `json:"brand"`
	PrimaryGearPower     GearPower   `json:"primaryGearPower"`
	AdditionalGearPowers []GearPower `json:"additionalGearPowers"`
}

type PlayerResult struct {
	Kill       int  `json:"kill"`
	Death      int  `json:"death"`
	Assist     int  `json:"assist"`
	Special    int  `json:"special"`
	NoroshiTry *int `json:"noroshiTry"`
}

type Player struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	NameID         string        `json:"nameId"`
	Byname         string        `json:"byname"`
	IsMyself       bool          `json:"isMyself"`
	Species        string        `json:"species"`
	Paint          int           `json:"paint"`
	Crown          bool          `json:"crown"`
	FestDragonCert *string       `json:"festDragonCert"`
	Nameplate      Nameplate     `json:"nameplate"`
	Weapon         Weapon        `json:"weapon"`
	HeadGear       Gear          `json:"headGear"`
	ClothingGear   Gear          `json:"clothingGear"`
	ShoesGear      Gear          `json:"shoesGear"`
	Result         *PlayerResult `json:"result"`
}

type TeamResult struct {
	PaintRatio *float64 `json:"paintRatio"`
	Score      *int     `json:"score"`
	Noroshi    *int     `json:"noroshi"`
}

type Team struct {
	Color                codec.Color `json:"color"`
	Order                int         `json:"order"`
	Judgement            *string     `json:"judgement"`
	Result               *TeamResult `json:"result"`
	TricolorRole         *string     `json:"tricolorRole"`
	FestTeamName         *string     `json:"festTeamName"`
	FestUniformName      *string     `json:"festUniformName"`
	FestUniformBonusRate *float64    `json:"festUniformBonusRate"`
	Players              []Player    `json:"players"`
}

type Award struct {
	Name string `json:"name"`
	Rank string `json:"rank"`
}

// BankaraPower is sent either as {"power": n} or as a bare number.
type BankaraPower struct {
	Power float64
}

func (p *BankaraPower) UnmarshalJSON(b []byte) error {
	r := gjson.ParseBytes(b)
	switch {
	case r.Type == gjson.Number:
		p.Power = r.Float()
	case r.IsObject() && r.Get("power").Type == gjson.Number:
		p.Power = r.Get("power").Float()
	default:
		return fmt.Errorf("unexpected bankaraPower %s", r.Raw)
	}
	return nil
}

func (p BankaraPower) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]float64{"power": p.Power})
}

type BankaraMatch struct {
	Mode              string        `json:"mode"`
	EarnedUdemaePoint *int          `json:"earnedUdemaePoint"`
	BankaraPower      *BankaraPower `json:"bankaraPower"`
}

type LeagueMatch struct {
	LeagueMatchEvent NamedItem `json:"leagueMatchEvent"`
	MyLeaguePower    *float64  `json:"myLeaguePower"`
}

type XMatch struct {
	LastXPower *float64 `json:"lastXPower"`
}

type FestMatch struct {
	DragonMatchType string   `json:"dragonMatchType"`
	Contribution    int      `json:"contribution"`
	Jewel           int      `json:"jewel"`
	MyFestPower     *float64 `json:"myFestPower"`
}

// Detail is one battle as returned by the VsHistoryDetail query.
type Detail struct {
	ID           string        `json:"id"`
	VsMode       VsMode        `json:"vsMode"`
	VsRule       VsRule        `json:"vsRule"`
	VsStage      VsStage       `json:"vsStage"`
	Judgement    string        `json:"judgement"`
	Knockout     *string       `json:"knockout"`
	PlayedTime   string        `json:"playedTime"`
	Duration     int           `json:"duration"`
	Player       Player        `json:"player"`
	MyTeam       Team          `json:"myTeam"`
	OtherTeams   []Team        `json:"otherTeams"`
	Awards       []Award       `json:"awards"`
	BankaraMatch *BankaraMatch `json:"bankaraMatch"`
	LeagueMatch  *LeagueMatch  `json:"leagueMatch"`
	XMatch       *XMatch       `json:"xMatch"`
	FestMatch    *FestMatch    `json:"festMatch"`
}

// Teams returns my team followed by the other teams in payload order.
func (d *Detail) Teams() []Team {
	teams := make([]Team, 0, 1+len(d.OtherTeams))
	teams = append(teams, d.MyTeam)
	return append(teams, d.OtherTeams...)
}

// ParseDetail decodes one saved detail payload.
func ParseDetail(data []byte) (*Detail, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("detail payload is not valid JSON")
	}

	root := locate(data, detailRoots)
	if !root.IsObject() || !root.Get("id").Exists() {
		return nil, fmt.Errorf("detail payload has no vsHistoryDetail object")
	}

	var d Detail
	if err := json.Unmarshal([]byte(root.Raw), &d); err != nil {
		return nil, fmt.Errorf("failed to decode vsHistoryDetail: %w", err)
	}
	return &d, nil
}

// locate returns the first candidate path that exists, falling back to the
// document itself.
func locate(data []byte, paths []string) gjson.Result {
	for _, p := range paths {
		if r := gjson.GetBytes(data, p); r.Exists() {
			return r
		}
	}
	return gjson.ParseBytes(data)
}
