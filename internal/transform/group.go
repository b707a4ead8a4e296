package transform

import (
	"fmt"

	"zipcaster/internal/codec"
	"zipcaster/internal/domain"
	"zipcaster/internal/splatnet"
)

// seriesCounter is the running (win, lose) state threaded through the
// reverse fold. It starts at the group's final totals and walks back to the
// state before the oldest battle.
type seriesCounter struct {
	win  int
	lose int
}

// undo removes one battle's judgement from the counter.
func (c seriesCounter) undo(battleID string, result domain.Result) (seriesCounter, error) {
	switch {
	case result == domain.ResultWin:
		c.win--
	case result.IsLoss():
		c.lose--
	}
	if c.win < 0 || c.lose < 0 {
		return c, &MetadataReconstructionError{
			BattleID: battleID,
			Win:      c.win,
			Lose:     c.lose,
			Reason:   "more judgements than the group totals",
		}
	}
	return c, nil
}

func (c seriesCounter) settled() error {
	if c.win != 0 || c.lose != 0 {
		return &MetadataReconstructionError{
			Win:    c.win,
			Lose:   c.lose,
			Reason: "group totals exceed the observed judgements",
		}
	}
	return nil
}

// groupKind decides which metadata a group produces. Groups of other modes
// produce none.
func groupKind(kind splatnet.HistoryKind, g splatnet.HistoryGroup) (domain.MetadataKind, bool) {
	switch {
	case g.BankaraMatchChallenge != nil:
		return domain.MetadataAnarchySeries, true
	case g.XMatchMeasurement != nil:
		return domain.MetadataX, true
	case kind == splatnet.HistoryAnarchy:
		return domain.MetadataAnarchyOpen, true
	default:
		return "", false
	}
}

// ReconstructGroup rebuilds the per-battle metadata of one overview group,
// keyed by decoded battle id. Any error invalidates the whole group.
func ReconstructGroup(kind splatnet.HistoryKind, idx int, g splatnet.HistoryGroup) (map[string]domain.ModeMetadata, error) {
	mk, ok := groupKind(kind, g)
	if !ok {
		return nil, nil
	}

	var (
		out map[string]domain.ModeMetadata
		err error
	)
	switch mk {
	case domain.MetadataAnarchySeries:
		out, err = reconstructSeries(g)
	case domain.MetadataX:
		out, err = reconstructX(g)
	case domain.MetadataAnarchyOpen:
		out, err = reconstructOpen(g)
	}
	if err != nil {
		return nil, &GroupError{Index: idx, Kind: mk, Err: err}
	}
	return out, nil
}

// ReconstructOverview runs ReconstructGroup over every group. A failed group
// is reported and skipped; the others are still returned.
func ReconstructOverview(ov *splatnet.Overview) (map[string]domain.ModeMetadata, []error) {
	out := make(map[string]domain.ModeMetadata)
	var errs []error
	for i, g := range ov.Groups {
		meta, err := ReconstructGroup(ov.Kind, i, g)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for id, m := range meta {
			out[id] = m
		}
	}
	return out, errs
}

func nodeField(i int, name string) string {
	return fmt.Sprintf("historyDetails.nodes[%d].%s", i, name)
}

func decodeNode(i int, n splatnet.HistoryNode) (string, domain.Result, error) {
	id, err := codec.DecodeField(nodeField(i, "id"), n.ID, codec.PrefixBattle)
	if err != nil {
		return "", "", err
	}
	result, err := lookup(resultTable, nodeField(i, "judgement"), n.Judgement)
	if err != nil {
		return "", "", err
	}
	return id, result, nil
}

func nodeRank(n splatnet.HistoryNode) (domain.Rank, error) {
	if n.Udemae == nil {
		return domain.Rank{}, &domain.RankParseError{Reason: "missing udemae"}
	}
	return domain.ParseRank(*n.Udemae)
}

func reconstructSeries(g splatnet.HistoryGroup) (map[string]domain.ModeMetadata, error) {
	ch := g.BankaraMatchChallenge

	var (
		final    domain.Rank
		complete bool
	)
	if ch.UdemaeAfter != nil {
		r, err := domain.ParseRank(*ch.UdemaeAfter)
		if err != nil {
			return nil, err
		}
		final, complete = r, true
	}

	acc := seriesCounter{win: ch.WinCount, lose: ch.LoseCount}
	out := make(map[string]domain.ModeMetadata, len(g.HistoryDetails.Nodes))
	for i, n := range g.HistoryDetails.Nodes {
		id, result, err := decodeNode(i, n)
		if err != nil {
			return nil, err
		}
		before, err := nodeRank(n)
		if err != nil {
			return nil, err
		}

		m := &domain.AnarchySeriesMetadata{
			RankBefore:      before,
			RankAfter:       before,
			RankBeforeSPlus: before.SPlus(),
			RankAfterSPlus:  before.SPlus(),
			SeriesWinCount:  acc.win,
			SeriesLoseCount: acc.lose,
		}
		if i == 0 && complete {
			m.RankAfter = final
			m.RankAfterSPlus = final.SPlus()
			m.RankExpChange = ch.EarnedUdemaePoint
			m.IsRankUp = ch.IsUdemaeUp
		}
		out[id] = m

		if acc, err = acc.undo(id, result); err != nil {
			return nil, err
		}
	}
	if err := acc.settled(); err != nil {
		return nil, err
	}
	return out, nil
}

func reconstructX(g splatnet.HistoryGroup) (map[string]domain.ModeMetadata, error) {
	ms := g.XMatchMeasurement

	acc := seriesCounter{win: ms.WinCount, lose: ms.LoseCount}
	out := make(map[string]domain.ModeMetadata, len(g.HistoryDetails.Nodes))
	for i, n := range g.HistoryDetails.Nodes {
		id, result, err := decodeNode(i, n)
		if err != nil {
			return nil, err
		}

		m := &domain.XMetadata{
			SeriesWinCount:  acc.win,
			SeriesLoseCount: acc.lose,
		}
		if i == 0 && ms.XPowerAfter != nil {
			p := *ms.XPowerAfter
			m.XPowerAfter = &p
		}
		out[id] = m

		if acc, err = acc.undo(id, result); err != nil {
			return nil, err
		}
	}
	if err := acc.settled(); err != nil {
		return nil, err
	}
	return out, nil
}

func reconstructOpen(g splatnet.HistoryGroup) (map[string]domain.ModeMetadata, error) {
	out := make(map[string]domain.ModeMetadata, len(g.HistoryDetails.Nodes))
	for i, n := range g.HistoryDetails.Nodes {
		id, err := codec.DecodeField(nodeField(i, "id"), n.ID, codec.PrefixBattle)
		if err != nil {
			return nil, err
		}
		rank, err := nodeRank(n)
		if err != nil {
			return nil, err
		}
		if n.BankaraMatch == nil || n.BankaraMatch.EarnedUdemaePoint == nil {
			return nil, &codec.DecodeError{Field: nodeField(i, "bankaraMatch.earnedUdemaePoint"), Reason: "missing"}
		}

		out[id] = &domain.AnarchyOpenMetadata{
			RankBefore:      rank,
			RankAfter:       rank,
			RankBeforeSPlus: rank.SPlus(),
			RankAfterSPlus:  rank.SPlus(),
			RankExpChange:   *n.BankaraMatch.EarnedUdemaePoint,
		}
	}
	return out, nil
}
