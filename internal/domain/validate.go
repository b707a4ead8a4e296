package domain

import (
	"fmt"
	"slices"
)

// ValidationError reports a record that breaks a structural invariant.
type ValidationError struct {
	BattleID string
	Field    string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("battle %s: invalid %s: %s", e.BattleID, e.Field, e.Reason)
}

func (r BattleRecord) invalid(field, format string, args ...any) error {
	return &ValidationError{BattleID: r.ID, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the invariants every exported record must satisfy.
func (r BattleRecord) Validate() error {
	if r.ID == "" {
		return r.invalid("id", "empty")
	}
	if !r.Mode.Valid() {
		return r.invalid("mode", "unknown mode %q", r.Mode)
	}
	if len(r.Teams) < 2 {
		return r.invalid("teams", "need at least 2 teams, got %d", len(r.Teams))
	}
	if len(r.Awards) != RequiredAwards {
		return r.invalid("awards", "need exactly %d awards, got %d", RequiredAwards, len(r.Awards))
	}
	if r.Duration < 0 {
		return r.invalid("duration", "negative")
	}

	for i, t := range r.Teams {
		if err := r.validateTeam(i, t); err != nil {
			return err
		}
	}

	if err := r.validateSideBlocks(); err != nil {
		return err
	}
	return r.validateSeriesMetadata()
}

func (r BattleRecord) validateTeam(idx int, t Team) error {
	field := fmt.Sprintf("teams[%d]", idx)
	if len(t.Players) == 0 {
		return r.invalid(field, "no players")
	}
	if t.Order < 1 {
		return r.invalid(field+".order", "must be 1-based, got %d", t.Order)
	}
	if !isHexColor(t.Color) {
		return r.invalid(field+".color", "want #rrggbbaa, got %q", t.Color)
	}

	for j, p := range t.Players {
		pf := fmt.Sprintf("%s.players[%d]", field, j)
		if p.Disconnected && p.Result != nil {
			return r.invalid(pf+".result", "present for a disconnected player")
		}
		if !p.Disconnected && p.Result == nil {
			return r.invalid(pf+".result", "missing for a connected player")
		}
		if !isHexColor(p.Nameplate.TextColor) {
			return r.invalid(pf+".nameplate.text_color", "want #rrggbbaa, got %q", p.Nameplate.TextColor)
		}
	}
	return nil
}

func (r BattleRecord) validateSideBlocks() error {
	if r.MatchPower != nil && !r.Mode.HasMatchPower() {
		return r.invalid("match_power", "not defined for mode %s", r.Mode)
	}
	if (r.ChallengeID != nil) != (r.Mode == ModeChallenge) {
		return r.invalid("challenge_id", "must be set only for challenge battles")
	}
	if (r.SplatfestMetadata != nil) != r.Mode.IsSplatfest() {
		return r.invalid("splatfest_metadata", "must be set only for splatfest battles")
	}
	if r.SplatfestMetadata != nil && !slices.Contains(MatchMultipliers, r.SplatfestMetadata.MatchMultiplier) {
		return r.invalid("splatfest_metadata.match_multiplier", "unsupported multiplier %d", r.SplatfestMetadata.MatchMultiplier)
	}
	return nil
}

func (r BattleRecord) validateSeriesMetadata() error {
	switch m := r.SeriesMetadata.(type) {
	case nil:
		return nil
	case *AnarchySeriesMetadata:
		if r.Mode != ModeAnarchySeries {
			return r.invalid("series_metadata", "anarchy series metadata on %s battle", r.Mode)
		}
		if m.SeriesWinCount < 0 || m.SeriesLoseCount < 0 {
			return r.invalid("series_metadata", "negative series counters")
		}
		return validateRanks(r, m.RankBefore, m.RankAfter, m.RankBeforeSPlus, m.RankAfterSPlus)
	case *AnarchyOpenMetadata:
		if r.Mode != ModeAnarchyOpen {
			return r.invalid("series_metadata", "anarchy open metadata on %s battle", r.Mode)
		}
		return validateRanks(r, m.RankBefore, m.RankAfter, m.RankBeforeSPlus, m.RankAfterSPlus)
	case *XMetadata:
		if r.Mode != ModeXBattle {
			return r.invalid("series_metadata", "x metadata on %s battle", r.Mode)
		}
		if m.SeriesWinCount < 0 || m.SeriesLoseCount < 0 {
			return r.invalid("series_metadata", "negative series counters")
		}
		return nil
	default:
		return r.invalid("series_metadata", "unsupported metadata %T", m)
	}
}

func validateRanks(r BattleRecord, before, after Rank, beforeSPlus, afterSPlus *int) error {
	if !before.Letter.Valid() {
		return r.invalid("series_metadata.rank_before", "%q is not on the rank ladder", before.Letter)
	}
	if !after.Letter.Valid() {
		return r.invalid("series_metadata.rank_after", "%q is not on the rank ladder", after.Letter)
	}
	if beforeSPlus != nil && (!before.IsSPlus() || *beforeSPlus < 0 || *beforeSPlus > MaxSubRank) {
		return r.invalid("series_metadata.rank_before_s_plus", "only 0..%d at S+", MaxSubRank)
	}
	if afterSPlus != nil && (!after.IsSPlus() || *afterSPlus < 0 || *afterSPlus > MaxSubRank) {
		return r.invalid("series_metadata.rank_after_s_plus", "only 0..%d at S+", MaxSubRank)
	}
	return nil
}

func isHexColor(s string) bool {
	if len(s) != 9 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}
