package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type RankLetter string

const (
	RankCMinus RankLetter = "C-"
	RankC      RankLetter = "C"
	RankCPlus  RankLetter = "C+"
	RankBMinus RankLetter = "B-"
	RankB      RankLetter = "B"
	RankBPlus  RankLetter = "B+"
	RankAMinus RankLetter = "A-"
	RankA      RankLetter = "A"
	RankAPlus  RankLetter = "A+"
	RankS      RankLetter = "S"
	RankSPlus  RankLetter = "S+"
)

// RankLadder is ordered from lowest to highest.
var RankLadder = []RankLetter{
	RankCMinus, RankC, RankCPlus,
	RankBMinus, RankB, RankBPlus,
	RankAMinus, RankA, RankAPlus,
	RankS, RankSPlus,
}

const MaxSubRank = 50

var rankPattern = regexp.MustCompile(`^([cbas][+-]?)(\d{1,2})?$`)

func (l RankLetter) Valid() bool {
	for _, v := range RankLadder {
		if v == l {
			return true
		}
	}
	return false
}

// Rank is a ladder letter with the optional numeric tier that follows it in
// the raw string. Only S+ tiers are exported as s_plus fields.
type Rank struct {
	Letter  RankLetter
	SubRank *int
}

type RankParseError struct {
	Input  string
	Reason string
}

func (e *RankParseError) Error() string {
	return fmt.Sprintf("invalid rank %q: %s", e.Input, e.Reason)
}

// ParseRank parses strings such as "a+", "S+", "s+12". Matching is case
// insensitive and the tier must be within 0..50.
func ParseRank(s string) (Rank, error) {
	m := rankPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return Rank{}, &RankParseError{Input: s, Reason: "does not match rank grammar"}
	}

	letter := RankLetter(strings.ToUpper(m[1]))
	if !letter.Valid() {
		return Rank{}, &RankParseError{Input: s, Reason: fmt.Sprintf("%s is not on the rank ladder", letter)}
	}

	r := Rank{Letter: letter}
	if m[2] != "" {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return Rank{}, &RankParseError{Input: s, Reason: err.Error()}
		}
		if n < 0 || n > MaxSubRank {
			return Rank{}, &RankParseError{Input: s, Reason: fmt.Sprintf("sub-rank %d outside 0..%d", n, MaxSubRank)}
		}
		r.SubRank = &n
	}
	return r, nil
}

func (r Rank) IsSPlus() bool {
	return r.Letter == RankSPlus
}

// SPlus returns the S+ tier, or nil for any other letter.
func (r Rank) SPlus() *int {
	if !r.IsSPlus() || r.SubRank == nil {
		return nil
	}
	v := *r.SubRank
	return &v
}

func (r Rank) String() string {
	if r.SubRank == nil {
		return string(r.Letter)
	}
	return string(r.Letter) + strconv.Itoa(*r.SubRank)
}

func (r Rank) IsZero() bool {
	return r.Letter == ""
}

func (r Rank) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Rank) UnmarshalText(b []byte) error {
	parsed, err := ParseRank(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
