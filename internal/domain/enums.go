package domain

// Mode is the battle family a record belongs to. Values match the keys the
// exporters have always written.
type Mode string

const (
	ModeTurfWar           Mode = "regular"
	ModeAnarchySeries     Mode = "bankara_challenge"
	ModeAnarchyOpen       Mode = "bankara_open"
	ModeXBattle           Mode = "xbattle"
	ModePrivate           Mode = "private"
	ModeChallenge         Mode = "league"
	ModeSplatfestOpen     Mode = "splatfest_open"
	ModeSplatfestPro      Mode = "splatfest_challenge"
	ModeSplatfestTricolor Mode = "splatfest_tricolor"
)

// Modes lists every mode in a stable order.
var Modes = []Mode{
	ModeTurfWar,
	ModeAnarchySeries,
	ModeAnarchyOpen,
	ModeXBattle,
	ModePrivate,
	ModeChallenge,
	ModeSplatfestOpen,
	ModeSplatfestPro,
	ModeSplatfestTricolor,
}

func (m Mode) IsSplatfest() bool {
	return m == ModeSplatfestOpen || m == ModeSplatfestPro || m == ModeSplatfestTricolor
}

func (m Mode) IsAnarchy() bool {
	return m == ModeAnarchySeries || m == ModeAnarchyOpen
}

// HasMatchPower reports whether records of this mode carry a match_power value.
func (m Mode) HasMatchPower() bool {
	return m == ModeAnarchyOpen || m == ModeChallenge || m == ModeXBattle
}

func (m Mode) Valid() bool {
	for _, v := range Modes {
		if v == m {
			return true
		}
	}
	return false
}

type Rule string

const (
	RuleTurfWar      Rule = "turf_war"
	RuleSplatZones   Rule = "splat_zones"
	RuleTowerControl Rule = "tower_control"
	RuleRainmaker    Rule = "rainmaker"
	RuleClamBlitz    Rule = "clam_blitz"
	RuleTricolor     Rule = "tricolor"
)

type Result string

const (
	ResultWin          Result = "win"
	ResultLose         Result = "lose"
	ResultDraw         Result = "draw"
	ResultExemptedLose Result = "exempted_lose"
	ResultDeemedLose   Result = "deemed_lose"
)

// IsLoss is true for every losing judgement, including the exempted and
// deemed variants.
func (r Result) IsLoss() bool {
	return r == ResultLose || r == ResultExemptedLose || r == ResultDeemedLose
}

type Knockout string

const (
	KnockoutWin     Knockout = "win"
	KnockoutLose    Knockout = "lose"
	KnockoutNeither Knockout = "neither"
)

type Species string

const (
	SpeciesInkling  Species = "inkling"
	SpeciesOctoling Species = "octoling"
)

type CrownType string

const (
	CrownDragon       CrownType = "dragon"
	CrownDoubleDragon CrownType = "double_dragon"
)

type TricolorRole string

const (
	TricolorDefense TricolorRole = "defense"
	TricolorAttack1 TricolorRole = "attack1"
	TricolorAttack2 TricolorRole = "attack2"
)

type AwardRank string

const (
	AwardGold   AwardRank = "gold"
	AwardSilver AwardRank = "silver"
)

// MatchMultipliers are the clout multipliers a Splatfest battle can roll.
var MatchMultipliers = []int{1, 10, 100, 333}
