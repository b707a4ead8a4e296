package transform

import (
	"fmt"

	"zipcaster/internal/codec"
	"zipcaster/internal/domain"
	"zipcaster/internal/splatnet"
)

func (b *playerBuilder) team(idx int, t splatnet.Team) (domain.Team, error) {
	field := fmt.Sprintf("teams[%d]", idx)

	out := domain.Team{
		Color:   codec.ColorToHex(t.Color),
		Order:   t.Order,
		Players: make([]domain.Player, 0, len(t.Players)),
	}
	for i, p := range t.Players {
		player, err := b.player(fmt.Sprintf("%s.players[%d]", field, i), i, p)
		if err != nil {
			return domain.Team{}, err
		}
		out.Players = append(out.Players, player)
	}

	if t.Result != nil && t.Judgement != nil {
		result, err := lookup(resultTable, field+".judgement", *t.Judgement)
		if err != nil {
			return domain.Team{}, err
		}
		out.Result = &domain.TeamResult{
			PaintRatio: t.Result.PaintRatio,
			Score:      t.Result.Score,
			Noroshi:    t.Result.Noroshi,
			TeamResult: result,
		}
	}

	if t.FestTeamName != nil {
		fest := &domain.SplatfestTeam{
			TeamName:     *t.FestTeamName,
			SynergyBonus: t.FestUniformBonusRate,
			SynergyName:  t.FestUniformName,
		}
		if t.TricolorRole != nil {
			role, err := lookup(tricolorTable, field+".tricolorRole", *t.TricolorRole)
			if err != nil {
				return domain.Team{}, err
			}
			fest.TricolorRole = &role
		}
		out.Splatfest = fest
	}
	return out, nil
}
