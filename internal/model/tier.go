package model

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Tier is the depth of an answer, chosen by the caller.
type Tier int

const (
	TierBeginner     Tier = 1
	TierIntermediate Tier = 2
	TierExpert       Tier = 3
)

// ErrUnknownTier is returned for tiers outside 1..3.
var ErrUnknownTier = eris.New("unknown tier")

var tierNames = map[Tier]string{
	TierBeginner:     "beginner",
	TierIntermediate: "intermediate",
	TierExpert:       "expert",
}

// AllTiers returns the tiers in ascending depth.
func AllTiers() []Tier {
	return []Tier{TierBeginner, TierIntermediate, TierExpert}
}

// ParseTier accepts "1".."3" or the tier names.
func ParseTier(s string) (Tier, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	for t, name := range tierNames {
		if raw == name {
			return t, nil
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, eris.Wrapf(ErrUnknownTier, "tier %q", s)
	}
	t := Tier(n)
	if err := t.Validate(); err != nil {
		return 0, err
	}
	return t, nil
}

// Validate returns ErrUnknownTier when t is outside 1..3.
func (t Tier) Validate() error {
	if _, ok := tierNames[t]; !ok {
		return eris.Wrapf(ErrUnknownTier, "tier %d", int(t))
	}
	return nil
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return "tier(" + strconv.Itoa(int(t)) + ")"
}

// UnmarshalJSON accepts a tier number or name. null leaves the tier unset
// so callers can report it as missing.
func (t *Tier) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		*t = 0
		return nil
	}
	v, err := ParseTier(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}
