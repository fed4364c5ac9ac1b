// AngelaMos | 2026
// decision_test.go

package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func member(tier Tier) Principal {
	return Principal{UserID: "u1", Authenticated: true, Tier: tier}
}

func TestHasAccessAdminOverride(t *testing.T) {
	for _, tier := range Tiers() {
		for _, required := range Tiers() {
			p := Principal{Authenticated: true, Admin: true, Tier: tier}
			assert.True(t, HasAccess(p, required), "%s -> %s", tier, required)
		}
	}

	assert.True(t, HasAccess(Principal{Admin: true}, TierInnovator))
}

func TestHasAccessByRank(t *testing.T) {
	for _, have := range Tiers() {
		for _, need := range Tiers() {
			got := HasAccess(member(have), need)
			assert.Equal(t, have.Rank() >= need.Rank(), got, "%s -> %s", have, need)
		}
	}
}

func TestUnresolvedTierActsAsLowest(t *testing.T) {
	unresolved := Principal{UserID: "u1", Authenticated: true}
	explorer := member(TierExplorer)

	for _, need := range Tiers() {
		assert.Equal(t, HasAccess(explorer, need), HasAccess(unresolved, need))
		assert.Equal(t, Decide(explorer, need).State, Decide(unresolved, need).State)
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name      string
		principal Principal
		required  Tier
		want      State
	}{
		{
			name:      "admin sees everything",
			principal: Principal{Admin: true, Authenticated: true},
			required:  TierInnovator,
			want:      StateVisible,
		},
		{
			name:      "anonymous needs sign in",
			principal: Anonymous(),
			required:  TierExplorer,
			want:      StateHiddenNotAuthenticated,
		},
		{
			name:      "builder on innovator content",
			principal: member(TierBuilder),
			required:  TierInnovator,
			want:      StateHiddenInsufficientTier,
		},
		{
			name:      "innovator on builder content",
			principal: member(TierInnovator),
			required:  TierBuilder,
			want:      StateVisible,
		},
		{
			name:      "explorer on open content",
			principal: member(TierExplorer),
			required:  TierExplorer,
			want:      StateVisible,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.principal, tt.required)
			assert.Equal(t, tt.want, d.State)
			assert.Equal(t, tt.want == StateVisible, d.Visible())
		})
	}
}

func TestGatePlaceholderNamesTiers(t *testing.T) {
	gate := NewGate(GateConfig{SignInURL: "/login", UpgradeURL: "/pricing"})

	d := gate.Decide(member(TierBuilder), TierInnovator)
	ph := gate.Placeholder(d)
	require.NotNil(t, ph)

	assert.Equal(t, StateHiddenInsufficientTier, ph.State)
	assert.Equal(t, TierInnovator, ph.RequiredTier)
	require.NotNil(t, ph.CurrentTier)
	assert.Equal(t, TierBuilder, *ph.CurrentTier)
	assert.Equal(t, ActionUpgrade, ph.Action)
	assert.Equal(t, "/pricing", ph.ActionURL)
	assert.Contains(t, ph.Message, "Innovator")
	assert.Contains(t, ph.Message, "Builder")
}

func TestGatePlaceholderSignIn(t *testing.T) {
	gate := NewGate(GateConfig{SignInURL: "/login", UpgradeURL: "/pricing"})

	ph := gate.Placeholder(gate.Decide(Anonymous(), TierExplorer))
	require.NotNil(t, ph)
	assert.Equal(t, ActionSignIn, ph.Action)
	assert.Equal(t, "/login", ph.ActionURL)
	assert.Nil(t, ph.CurrentTier)

	assert.Nil(t, gate.Placeholder(gate.Decide(member(TierInnovator), TierBuilder)))
}
