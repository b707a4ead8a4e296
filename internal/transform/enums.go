package transform

import (
	"zipcaster/internal/codec"
	"zipcaster/internal/domain"
)

var (
	ruleTable = map[string]domain.Rule{
		"TURF_WAR": domain.RuleTurfWar,
		"AREA":     domain.RuleSplatZones,
		"LOFT":     domain.RuleTowerControl,
		"GOAL":     domain.RuleRainmaker,
		"CLAM":     domain.RuleClamBlitz,
		"TRICOLOR": domain.RuleTricolor,
	}
	resultTable = map[string]domain.Result{
		"WIN":           domain.ResultWin,
		"LOSE":          domain.ResultLose,
		"DRAW":          domain.ResultDraw,
		"EXEMPTED_LOSE": domain.ResultExemptedLose,
		"DEEMED_LOSE":   domain.ResultDeemedLose,
	}
	knockoutTable = map[string]domain.Knockout{
		"WIN":     domain.KnockoutWin,
		"LOSE":    domain.KnockoutLose,
		"NEITHER": domain.KnockoutNeither,
	}
	speciesTable = map[string]domain.Species{
		"INKLING":  domain.SpeciesInkling,
		"OCTOLING": domain.SpeciesOctoling,
	}
	awardRankTable = map[string]domain.AwardRank{
		"GOLD":   domain.AwardGold,
		"SILVER": domain.AwardSilver,
	}
	// NONE maps to the empty crown type: no crown.
	crownTable = map[string]domain.CrownType{
		"NONE":          "",
		"DRAGON":        domain.CrownDragon,
		"DOUBLE_DRAGON": domain.CrownDoubleDragon,
	}
	tricolorTable = map[string]domain.TricolorRole{
		"DEFENSE": domain.TricolorDefense,
		"ATTACK1": domain.TricolorAttack1,
		"ATTACK2": domain.TricolorAttack2,
	}
	multiplierTable = map[string]int{
		"NORMAL":        1,
		"DECUPLE":       10,
		"DRAGON":        100,
		"DOUBLE_DRAGON": 333,
	}
)

func lookup[T any](table map[string]T, field, raw string) (T, error) {
	v, ok := table[raw]
	if !ok {
		var zero T
		return zero, &codec.DecodeError{Field: field, Value: raw, Reason: "unknown value"}
	}
	return v, nil
}
