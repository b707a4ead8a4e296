package transform

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"zipcaster/internal/codec"
	"zipcaster/internal/splatnet"

	"github.com/stretchr/testify/require"
)

const (
	inkSaverMainURL = "https://api.lp1.av5ja.srv.nintendo.net/resources/prod/skill_img/5c98cc37d2ce56291a7e430459dc9c44d53ca98b8426718192da9ec7a6a8c8f1_0.png"
	quickRespawnURL = "https://api.lp1.av5ja.srv.nintendo.net/resources/prod/skill_img/aaa9b7e95a61bfd869aaa9beb836c74f9b8d4e5d4186768a27d6e443c64f33ce_0.png"
)

var unknownAbilityURL = "https://api.lp1.av5ja.srv.nintendo.net/resources/prod/skill_img/" + strings.Repeat("0", 64) + "_0.png"

func enc(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func strPtr(s string) *string      { return &s }
func intPtr(v int) *int            { return &v }
func floatPtr(v float64) *float64  { return &v }
func boolPtr(v bool) *bool         { return &v }
func battleToken(id string) string { return enc(codec.PrefixBattle + id) }

func newTestAssembler(t *testing.T) *Assembler {
	t.Helper()
	table, err := codec.DefaultAbilityTable()
	require.NoError(t, err)
	return NewAssembler(codec.NewAbilityResolver(table))
}

func testGear(additional ...string) splatnet.Gear {
	g := splatnet.Gear{
		Name:             "Squid Hairclip",
		Brand:            splatnet.NamedItem{Name: "Zink"},
		PrimaryGearPower: splatnet.GearPower{Name: "Ink Saver (Main)", Image: splatnet.Image{URL: inkSaverMainURL}},
	}
	for _, url := range additional {
		g.AdditionalGearPowers = append(g.AdditionalGearPowers, splatnet.GearPower{Image: splatnet.Image{URL: url}})
	}
	return g
}

func testPlayer(battle string, n int, me bool) splatnet.Player {
	return splatnet.Player{
		ID:       enc(fmt.Sprintf("VsPlayer-%s:u-player%d", battle, n)),
		Name:     fmt.Sprintf("player%d", n),
		NameID:   fmt.Sprintf("%04d", n),
		Byname:   "Fresh Squid",
		IsMyself: me,
		Species:  "INKLING",
		Paint:    1000 + n,
		Nameplate: splatnet.Nameplate{
			Badges: []*splatnet.Badge{{ID: enc("Badge-5000010")}, nil, nil},
			Background: splatnet.Background{
				ID:        enc("NameplateBackground-3"),
				TextColor: codec.Color{R: 1, G: 1, B: 1, A: 1},
			},
		},
		Weapon: splatnet.Weapon{
			ID:            enc("Weapon-40"),
			Name:          "Splattershot",
			SubWeapon:     splatnet.NamedItem{Name: "Suction Bomb"},
			SpecialWeapon: splatnet.NamedItem{Name: "Trizooka"},
		},
		HeadGear:     testGear(quickRespawnURL, quickRespawnURL, inkSaverMainURL),
		ClothingGear: testGear(quickRespawnURL),
		ShoesGear:    testGear(),
		Result:       &splatnet.PlayerResult{Kill: 7, Assist: 2, Death: 4, Special: 3},
	}
}

func testTeam(battle string, order int, me bool, judgement string) splatnet.Team {
	first := order * 10
	players := []splatnet.Player{testPlayer(battle, first, me)}
	for i := 1; i < 4; i++ {
		players = append(players, testPlayer(battle, first+i, false))
	}
	return splatnet.Team{
		Color:     codec.Color{R: 0.5, G: 0.2, B: 0.8, A: 1},
		Order:     order,
		Judgement: strPtr(judgement),
		Result:    &splatnet.TeamResult{Score: intPtr(100 - order)},
		Players:   players,
	}
}

// testDetail builds a well-formed detail of the given VsMode id.
func testDetail(battle string, modeID int) *splatnet.Detail {
	d := &splatnet.Detail{
		ID:         battleToken(battle),
		VsMode:     splatnet.VsMode{ID: enc(fmt.Sprintf("VsMode-%d", modeID))},
		VsRule:     splatnet.VsRule{Rule: "AREA"},
		VsStage:    splatnet.VsStage{ID: enc("VsStage-12"), Name: "Mahi-Mahi Resort"},
		Judgement:  "WIN",
		Knockout:   strPtr("NEITHER"),
		PlayedTime: "2023-03-04T05:06:07Z",
		Duration:   300,
		MyTeam:     testTeam(battle, 1, true, "WIN"),
		OtherTeams: []splatnet.Team{testTeam(battle, 2, false, "LOSE")},
		Awards: []splatnet.Award{
			{Name: "#1 Splatter", Rank: "GOLD"},
			{Name: "#2 Turf Inker", Rank: "SILVER"},
			{Name: "Most Specials", Rank: "SILVER"},
		},
	}

	switch modeID {
	case 1, 5:
		d.VsRule.Rule = "TURF_WAR"
		d.Knockout = nil
	case 2:
		d.BankaraMatch = &splatnet.BankaraMatch{Mode: "CHALLENGE"}
	case 51:
		d.BankaraMatch = &splatnet.BankaraMatch{
			Mode:              "OPEN",
			EarnedUdemaePoint: intPtr(8),
			BankaraPower:      &splatnet.BankaraPower{Power: 1834.5},
		}
	case 3:
		d.XMatch = &splatnet.XMatch{LastXPower: floatPtr(2104.7)}
	case 4:
		d.LeagueMatch = &splatnet.LeagueMatch{
			LeagueMatchEvent: splatnet.NamedItem{ID: enc("LeagueMatchEvent-SpecialRush"), Name: "Special Rush"},
			MyLeaguePower:    floatPtr(1987.2),
		}
	case 6, 7, 8:
		d.VsRule.Rule = "TURF_WAR"
		d.FestMatch = &splatnet.FestMatch{DragonMatchType: "DECUPLE", Contribution: 120, Jewel: 4}
		d.MyTeam.FestTeamName = strPtr("Grass")
		d.OtherTeams[0].FestTeamName = strPtr("Fire")
		if modeID == 8 {
			d.VsRule.Rule = "TRICOLOR"
			d.MyTeam.TricolorRole = strPtr("ATTACK1")
			d.OtherTeams[0].TricolorRole = strPtr("DEFENSE")
			third := testTeam(battle, 3, false, "LOSE")
			third.FestTeamName = strPtr("Water")
			third.TricolorRole = strPtr("ATTACK2")
			d.OtherTeams = append(d.OtherTeams, third)
		}
	}
	return d
}

func marshalDetail(t *testing.T, d *splatnet.Detail) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"data": map[string]any{"vsHistoryDetail": d}})
	require.NoError(t, err)
	return raw
}

func historyNode(battle, judgement, udemae string) splatnet.HistoryNode {
	n := splatnet.HistoryNode{ID: battleToken(battle), Judgement: judgement}
	if udemae != "" {
		n.Udemae = strPtr(udemae)
	}
	return n
}
