// AngelaMos | 2026
// gate.go

package access

import (
	"fmt"

	"github.com/carterperez-dev/prepvault/internal/metrics"
)

const (
	ActionSignIn  = "sign_in"
	ActionUpgrade = "upgrade"
)

// Placeholder is what a client renders instead of gated content.
type Placeholder struct {
	State        State  `json:"state"`
	Message      string `json:"message"`
	RequiredTier Tier   `json:"required_tier"`
	CurrentTier  *Tier  `json:"current_tier,omitempty"`
	Action       string `json:"action"`
	ActionURL    string `json:"action_url,omitempty"`
}

type GateConfig struct {
	SignInURL  string
	UpgradeURL string
}

// Gate turns access decisions into placeholders for the content views.
type Gate struct {
	cfg GateConfig
}

func NewGate(cfg GateConfig) *Gate {
	return &Gate{cfg: cfg}
}

func (g *Gate) Decide(p Principal, required Tier) Decision {
	d := Decide(p, required)
	metrics.AccessDecisions.WithLabelValues(string(d.State)).Inc()
	return d
}

// Placeholder returns nil for visible decisions.
func (g *Gate) Placeholder(d Decision) *Placeholder {
	switch d.State {
	case StateHiddenNotAuthenticated:
		return &Placeholder{
			State:        d.State,
			Message:      "Sign in to view this content",
			RequiredTier: d.RequiredTier,
			Action:       ActionSignIn,
			ActionURL:    g.cfg.SignInURL,
		}
	case StateHiddenInsufficientTier:
		current := d.CurrentTier
		return &Placeholder{
			State: d.State,
			Message: fmt.Sprintf(
				"This content requires the %s plan; you are on %s",
				d.RequiredTier,
				current,
			),
			RequiredTier: d.RequiredTier,
			CurrentTier:  &current,
			Action:       ActionUpgrade,
			ActionURL:    g.cfg.UpgradeURL,
		}
	default:
		return nil
	}
}
