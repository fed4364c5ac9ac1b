// AngelaMos | 2026
// decision.go

package access

// State is the visibility of one content item for one principal. It is
// recomputed on every request; nothing is cached per item.
type State string

const (
	StateVisible                State = "visible"
	StateHiddenNotAuthenticated State = "hidden_not_authenticated"
	StateHiddenInsufficientTier State = "hidden_insufficient_tier"
)

type Decision struct {
	State        State
	RequiredTier Tier
	CurrentTier  Tier
}

func (d Decision) Visible() bool {
	return d.State == StateVisible
}

// HasAccess reports whether p may see content gated at required. Admins
// always pass. A principal without a resolved tier carries the zero Tier,
// which is the lowest one.
func HasAccess(p Principal, required Tier) bool {
	if p.Admin {
		return true
	}
	return p.Tier.AtLeast(required)
}

func Decide(p Principal, required Tier) Decision {
	d := Decision{RequiredTier: required, CurrentTier: p.Tier}

	switch {
	case p.Admin:
		d.State = StateVisible
	case !p.Authenticated:
		d.State = StateHiddenNotAuthenticated
	case !HasAccess(p, required):
		d.State = StateHiddenInsufficientTier
	default:
		d.State = StateVisible
	}

	return d
}
