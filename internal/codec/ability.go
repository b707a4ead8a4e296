package codec

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"path"

	"zipcaster/internal/domain"
)

const abilityHashLen = 64

//go:embed assets/abilities.json
var defaultAbilities []byte

// UnknownAbilityHashError is a non-fatal warning: the ability resolved to
// domain.AbilityUnknown.
type UnknownAbilityHashError struct {
	URL  string
	Hash string
}

func (e *UnknownAbilityHashError) Error() string {
	if e.Hash == "" {
		return fmt.Sprintf("no ability hash in %q", e.URL)
	}
	return fmt.Sprintf("unknown ability hash %s", e.Hash)
}

// AbilityTable maps gear-power image hashes to ability keys. It is built once
// and never mutated.
type AbilityTable struct {
	byHash map[string]domain.Ability
}

// LoadAbilityTable reads a JSON object of hash -> ability key.
func LoadAbilityTable(r io.Reader) (*AbilityTable, error) {
	var raw map[string]string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode ability table: %w", err)
	}

	t := &AbilityTable{byHash: make(map[string]domain.Ability, len(raw))}
	for hash, key := range raw {
		if len(hash) != abilityHashLen {
			return nil, fmt.Errorf("ability table: hash %q is not %d characters", hash, abilityHashLen)
		}
		if key == "" {
			return nil, fmt.Errorf("ability table: empty ability for hash %s", hash)
		}
		t.byHash[hash] = domain.Ability(key)
	}
	return t, nil
}

// DefaultAbilityTable returns the table shipped with the binary.
func DefaultAbilityTable() (*AbilityTable, error) {
	return LoadAbilityTable(bytes.NewReader(defaultAbilities))
}

func (t *AbilityTable) Lookup(hash string) (domain.Ability, bool) {
	a, ok := t.byHash[hash]
	return a, ok
}

func (t *AbilityTable) Len() int {
	return len(t.byHash)
}

type AbilityResolver struct {
	table *AbilityTable
}

func NewAbilityResolver(table *AbilityTable) *AbilityResolver {
	return &AbilityResolver{table: table}
}

// Resolve maps a gear-power image URL to its ability. Unknown images resolve
// to domain.AbilityUnknown together with an *UnknownAbilityHashError.
func (r *AbilityResolver) Resolve(imageURL string) (domain.Ability, error) {
	u, err := url.Parse(imageURL)
	if err != nil {
		return domain.AbilityUnknown, &UnknownAbilityHashError{URL: imageURL}
	}

	name := path.Base(u.Path)
	if len(name) < abilityHashLen {
		return domain.AbilityUnknown, &UnknownAbilityHashError{URL: imageURL}
	}

	hash := name[:abilityHashLen]
	if a, ok := r.table.Lookup(hash); ok {
		return a, nil
	}
	return domain.AbilityUnknown, &UnknownAbilityHashError{URL: imageURL, Hash: hash}
}

// AbilityDisplayNames are the in-game names used by upload targets.
var AbilityDisplayNames = map[domain.Ability]string{
	"ink_saver_main":    "Ink Saver (Main)",
	"ink_saver_sub":     "Ink Saver (Sub)",
	"ink_recovery_up":   "Ink Recovery Up",
	"run_speed_up":      "Run Speed Up",
	"swim_speed_up":     "Swim Speed Up",
	"special_charge_up": "Special Charge Up",
	"special_saver":     "Special Saver",
	"special_power_up":  "Special Power Up",
	"quick_respawn":     "Quick Respawn",
	"quick_super_jump":  "Quick Super Jump",
	"sub_power_up":      "Sub Power Up",
	"ink_resistance_up": "Ink Resistance Up",
	"sub_resistance_up": "Sub Resistance Up",
	"intensify_action":  "Intensify Action",
	"opening_gambit":    "Opening Gambit",
	"last_ditch_effort": "Last-Ditch Effort",
	"tenacity":          "Tenacity",
	"comeback":          "Comeback",
	"ninja_squid":       "Ninja Squid",
	"haunt":             "Haunt",
	"thermal_ink":       "Thermal Ink",
	"respawn_punisher":  "Respawn Punisher",
	"ability_doubler":   "Ability Doubler",
	"stealth_jump":      "Stealth Jump",
	"object_shredder":   "Object Shredder",
	"drop_roller":       "Drop Roller",
}

// DisplayName returns the in-game name, or "Unknown" for abilities outside
// the known set.
func DisplayName(a domain.Ability) string {
	if name, ok := AbilityDisplayNames[a]; ok {
		return name
	}
	return string(domain.AbilityUnknown)
}
