// AngelaMos | 2026
// principal.go

package access

import "context"

// Principal is the identity an access decision is made for.
type Principal struct {
	UserID        string `json:"user_id,omitempty"`
	Authenticated bool   `json:"authenticated"`
	Admin         bool   `json:"admin"`
	Tier          Tier   `json:"tier"`
}

func Anonymous() Principal {
	return Principal{Tier: LowestTier()}
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the request principal, or the anonymous principal
// when none was attached.
func FromContext(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey{}).(Principal); ok {
		return p
	}
	return Anonymous()
}
