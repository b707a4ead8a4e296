package codec

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// Prefixes carried by the decoded SplatNet identifiers.
const (
	PrefixBattle      = "VsHistoryDetail-"
	PrefixStage       = "VsStage-"
	PrefixMode        = "VsMode-"
	PrefixWeapon      = "Weapon-"
	PrefixBadge       = "Badge-"
	PrefixBackground  = "NameplateBackground-"
	PrefixChallenge   = "LeagueMatchEvent-"
	PrefixPlayer      = "VsPlayer-"
	playerIDSeparator = ":"
)

// DecodeError is returned when an identifier or enumeration in a raw payload
// does not have the expected shape.
type DecodeError struct {
	Field  string
	Value  string
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("decode %q: %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("decode %s %q: %s", e.Field, e.Value, e.Reason)
}

// DecodeID base64-decodes token and strips prefix from the result.
func DecodeID(token, prefix string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", &DecodeError{Value: token, Reason: fmt.Sprintf("not base64: %v", err)}
	}

	decoded := string(raw)
	rest, ok := strings.CutPrefix(decoded, prefix)
	if !ok {
		return "", &DecodeError{Value: decoded, Reason: fmt.Sprintf("missing prefix %q", prefix)}
	}
	return rest, nil
}

// DecodeField is DecodeID with the offending field recorded on failure.
func DecodeField(field, token, prefix string) (string, error) {
	id, err := DecodeID(token, prefix)
	if err != nil {
		if de, ok := err.(*DecodeError); ok {
			de.Field = field
		}
		return "", err
	}
	return id, nil
}

// DecodeIntID decodes an identifier whose remainder is numeric, such as
// weapon and stage ids.
func DecodeIntID(field, token, prefix string) (int, error) {
	id, err := DecodeField(field, token, prefix)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(id)
	if err != nil {
		return 0, &DecodeError{Field: field, Value: id, Reason: "not an integer"}
	}
	return n, nil
}

// PlayerNPLN extracts the account id from a decoded player identifier, the
// last colon separated segment.
func PlayerNPLN(token string) (string, error) {
	id, err := DecodeField("player.id", token, PrefixPlayer)
	if err != nil {
		return "", err
	}
	parts := strings.Split(id, playerIDSeparator)
	last := parts[len(parts)-1]
	if last == "" {
		return "", &DecodeError{Field: "player.id", Value: id, Reason: "empty account segment"}
	}
	return last, nil
}
