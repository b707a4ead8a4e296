package transform

import (
	"fmt"
	"time"

	"zipcaster/internal/codec"
	"zipcaster/internal/domain"
	"zipcaster/internal/splatnet"
)

// Assembler turns decoded detail payloads into battle records without series
// metadata.
type Assembler struct {
	Abilities *codec.AbilityResolver
}

func NewAssembler(abilities *codec.AbilityResolver) *Assembler {
	return &Assembler{Abilities: abilities}
}

// Assemble builds the record for d. The warnings are non-fatal, the error
// is fatal for this record only.
func (a *Assembler) Assemble(d *splatnet.Detail) (domain.BattleRecord, []error, error) {
	id, err := codec.DecodeField("id", d.ID, codec.PrefixBattle)
	if err != nil {
		return domain.BattleRecord{}, nil, err
	}

	modeID, err := codec.DecodeIntID("vsMode.id", d.VsMode.ID, codec.PrefixMode)
	if err != nil {
		return domain.BattleRecord{}, nil, err
	}
	mode, err := ClassifyMode(modeID, ModeHints{
		HasChallengeEvent: d.LeagueMatch != nil && d.LeagueMatch.LeagueMatchEvent.ID != "",
		HasSplatfest:      d.FestMatch != nil,
	})
	if err != nil {
		return domain.BattleRecord{}, nil, err
	}

	rule, err := lookup(ruleTable, "vsRule.rule", d.VsRule.Rule)
	if err != nil {
		return domain.BattleRecord{}, nil, err
	}
	stage, err := codec.DecodeField("vsStage.id", d.VsStage.ID, codec.PrefixStage)
	if err != nil {
		return domain.BattleRecord{}, nil, err
	}
	result, err := lookup(resultTable, "judgement", d.Judgement)
	if err != nil {
		return domain.BattleRecord{}, nil, err
	}

	start, err := time.Parse(time.RFC3339, d.PlayedTime)
	if err != nil {
		return domain.BattleRecord{}, nil, &codec.DecodeError{Field: "playedTime", Value: d.PlayedTime, Reason: err.Error()}
	}
	if d.Duration < 0 {
		return domain.BattleRecord{}, nil, &codec.DecodeError{Field: "duration", Value: fmt.Sprint(d.Duration), Reason: "negative"}
	}

	rec := domain.BattleRecord{
		ID:        id,
		Mode:      mode,
		Rule:      rule,
		Stage:     stage,
		Result:    result,
		StartTime: start.UTC(),
		Duration:  time.Duration(d.Duration) * time.Second,
	}

	if d.Knockout != nil {
		ko, err := lookup(knockoutTable, "knockout", *d.Knockout)
		if err != nil {
			return domain.BattleRecord{}, nil, err
		}
		rec.Knockout = &ko
	}

	b := &playerBuilder{abilities: a.Abilities}
	for i, t := range d.Teams() {
		team, err := b.team(i, t)
		if err != nil {
			return domain.BattleRecord{}, nil, err
		}
		rec.Teams = append(rec.Teams, team)
	}

	for i, aw := range d.Awards {
		rank, err := lookup(awardRankTable, fmt.Sprintf("awards[%d].rank", i), aw.Rank)
		if err != nil {
			return domain.BattleRecord{}, nil, err
		}
		rec.Awards = append(rec.Awards, domain.Award{Name: aw.Name, Rank: rank})
	}

	if err := attachSideBlocks(&rec, modeID, d); err != nil {
		return domain.BattleRecord{}, nil, err
	}
	if err := rec.Validate(); err != nil {
		return domain.BattleRecord{}, nil, err
	}
	return rec, b.warnings, nil
}

// attachSideBlocks copies the mode-specific blocks of the detail payload.
func attachSideBlocks(rec *domain.BattleRecord, modeID int, d *splatnet.Detail) error {
	switch rec.Mode {
	case domain.ModeAnarchyOpen:
		if d.BankaraMatch == nil {
			return &ModeMismatchError{ModeID: modeID, Reason: "anarchy open battle without a bankaraMatch block"}
		}
		if p := d.BankaraMatch.BankaraPower; p != nil {
			power := p.Power
			rec.MatchPower = &power
		}
	case domain.ModeChallenge:
		rec.MatchPower = copyFloat(d.LeagueMatch.MyLeaguePower)
		challenge, err := codec.DecodeField("leagueMatch.leagueMatchEvent.id", d.LeagueMatch.LeagueMatchEvent.ID, codec.PrefixChallenge)
		if err != nil {
			return err
		}
		rec.ChallengeID = &challenge
	case domain.ModeXBattle:
		if d.XMatch == nil {
			return &ModeMismatchError{ModeID: modeID, Reason: "x battle without an xMatch block"}
		}
		rec.MatchPower = copyFloat(d.XMatch.LastXPower)
	case domain.ModeSplatfestOpen, domain.ModeSplatfestPro, domain.ModeSplatfestTricolor:
		mult, err := lookup(multiplierTable, "festMatch.dragonMatchType", d.FestMatch.DragonMatchType)
		if err != nil {
			return err
		}
		rec.SplatfestMetadata = &domain.SplatfestMetadata{
			MatchMultiplier: mult,
			Clout:           d.FestMatch.Contribution,
			Jewel:           d.FestMatch.Jewel,
		}
	case domain.ModeTurfWar, domain.ModeAnarchySeries, domain.ModePrivate:
	}
	return nil
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
