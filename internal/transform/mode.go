package transform

import (
	"slices"

	"zipcaster/internal/domain"
)

const (
	propertyPro      = "pro"
	propertyTricolor = "tricolor"
)

type modeEntry struct {
	mode       domain.Mode
	properties []string
}

// modeTable is keyed by the numeric part of the decoded VsMode id.
var modeTable = map[int]modeEntry{
	1:  {mode: domain.ModeTurfWar, properties: []string{"turf_war"}},
	2:  {mode: domain.ModeAnarchySeries, properties: []string{"anarchy"}},
	3:  {mode: domain.ModeXBattle, properties: []string{"xbattle"}},
	4:  {mode: domain.ModeChallenge, properties: []string{"challenge"}},
	5:  {mode: domain.ModePrivate, properties: []string{"private"}},
	51: {mode: domain.ModeAnarchyOpen, properties: []string{"anarchy"}},
	6:  {mode: domain.ModeSplatfestOpen, properties: []string{"splatfest", "turf_war"}},
	7:  {mode: domain.ModeSplatfestPro, properties: []string{"splatfest", "turf_war", propertyPro}},
	8:  {mode: domain.ModeSplatfestTricolor, properties: []string{"splatfest", "turf_war", propertyTricolor}},
}

// ModeHints carries the auxiliary detail blocks that disambiguate a mode id.
type ModeHints struct {
	HasChallengeEvent bool
	HasSplatfest      bool
}

// ClassifyMode maps a VsMode id onto one of the nine modes.
func ClassifyMode(modeID int, aux ModeHints) (domain.Mode, error) {
	entry, ok := modeTable[modeID]
	if !ok {
		return "", &ModeMismatchError{ModeID: modeID, Reason: "unknown mode id"}
	}

	switch {
	case entry.mode == domain.ModeChallenge:
		if !aux.HasChallengeEvent {
			return "", &ModeMismatchError{ModeID: modeID, Reason: "challenge battle without a challenge event"}
		}
		return domain.ModeChallenge, nil
	case slices.Contains(entry.properties, "splatfest"):
		if !aux.HasSplatfest {
			return "", &ModeMismatchError{ModeID: modeID, Reason: "splatfest battle without a festMatch block"}
		}
		switch {
		case slices.Contains(entry.properties, propertyPro):
			return domain.ModeSplatfestPro, nil
		case slices.Contains(entry.properties, propertyTricolor):
			return domain.ModeSplatfestTricolor, nil
		default:
			return domain.ModeSplatfestOpen, nil
		}
	default:
		return entry.mode, nil
	}
}

// ModeIDs returns the VsMode id of every mode, in ascending order.
func ModeIDs() []int {
	ids := make([]int, 0, len(modeTable))
	for id := range modeTable {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
