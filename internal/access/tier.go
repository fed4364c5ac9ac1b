// AngelaMos | 2026
// tier.go

package access

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownTier = errors.New("unknown tier")

// Tier is a subscription level. The numeric value is the rank: a higher
// tier can see everything a lower one can. The zero value is the lowest
// tier, so an unset tier is open to everyone.
type Tier int

const (
	TierExplorer Tier = iota
	TierBuilder
	TierInnovator
)

// legacyBuilderName is how some older records and clients spell Builder.
const legacyBuilderName = "Voyager"

var tierNames = [...]string{
	TierExplorer:  "Explorer",
	TierBuilder:   "Builder",
	TierInnovator: "Innovator",
}

func LowestTier() Tier {
	return TierExplorer
}

// Tiers returns every tier in ascending order.
func Tiers() []Tier {
	return []Tier{TierExplorer, TierBuilder, TierInnovator}
}

func (t Tier) Valid() bool {
	return t >= TierExplorer && t <= TierInnovator
}

func (t Tier) Rank() int {
	return int(t)
}

func (t Tier) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Tier(%d)", int(t))
	}
	return tierNames[t]
}

// AtLeast reports whether t ranks at or above other.
func (t Tier) AtLeast(other Tier) bool {
	return t.Rank() >= other.Rank()
}

// ParseTier maps a tier name to a Tier. Matching is case-insensitive and
// "Voyager" is accepted as Builder. Anything else is ErrUnknownTier.
func ParseTier(name string) (Tier, error) {
	trimmed := strings.TrimSpace(name)

	if strings.EqualFold(trimmed, legacyBuilderName) {
		return TierBuilder, nil
	}

	for i, n := range tierNames {
		if strings.EqualFold(trimmed, n) {
			return Tier(i), nil
		}
	}

	return TierExplorer, fmt.Errorf("%w: %q", ErrUnknownTier, name)
}

// ResolveTierRank is the lenient lookup used where a tier name comes from
// data that cannot be rejected: unknown or empty names rank lowest.
func ResolveTierRank(name string) int {
	t, err := ParseTier(name)
	if err != nil {
		return LowestTier().Rank()
	}
	return t.Rank()
}

func (t Tier) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTier, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText treats an empty value as the lowest tier.
func (t *Tier) UnmarshalText(text []byte) error {
	if len(strings.TrimSpace(string(text))) == 0 {
		*t = LowestTier()
		return nil
	}

	parsed, err := ParseTier(string(text))
	if err != nil {
		return err
	}

	*t = parsed
	return nil
}

func (t Tier) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTier, int(t))
	}
	return t.String(), nil
}

// Scan reads a tier column. NULL is the lowest tier; an unrecognised name
// is an error so malformed rows are noticed instead of silently opened up.
func (t *Tier) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = LowestTier()
		return nil
	case string:
		return t.UnmarshalText([]byte(v))
	case []byte:
		return t.UnmarshalText(v)
	default:
		return fmt.Errorf("scan tier: unsupported type %T", src)
	}
}
