package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questline-rpg/engine/pkg/content"
)

func TestResistanceFactor(t *testing.T) {
	res := map[string]float64{
		content.DamageFire: 0.5,
		content.DamageIce:  -0.25,
		"holy":             1.5,
	}

	assert.Equal(t, 0.5, ResistanceFactor(res, content.DamageFire))
	assert.Equal(t, 1.25, ResistanceFactor(res, content.DamageIce))
	assert.Equal(t, 1.0, ResistanceFactor(res, content.DamagePhysical), "unlisted type takes full damage")
	assert.Equal(t, 0.0, ResistanceFactor(res, "holy"), "over-capped resistance floors at zero")
}

func TestResolveStaysInVarianceWindow(t *testing.T) {
	r := NewResolver(SeededRNG(7))

	// attack 20, mult 1.5, no resistance: mean 30, window [24, 36]
	for i := 0; i < 500; i++ {
		dmg := r.Resolve(20, 1.5, content.DamagePhysical, nil)
		assert.GreaterOrEqual(t, dmg, 24)
		assert.LessOrEqual(t, dmg, 36)
	}
}

func TestResolveAppliesResistance(t *testing.T) {
	r := NewResolver(SeededRNG(7))
	res := map[string]float64{content.DamageFire: 0.5}

	// attack 20, mult 2.0, fire resist 0.5: mean 20, window [16, 24]
	for i := 0; i < 200; i++ {
		dmg := r.Resolve(20, 2.0, content.DamageFire, res)
		assert.GreaterOrEqual(t, dmg, 16)
		assert.LessOrEqual(t, dmg, 24)
	}
}

func TestResolveNeverBelowOne(t *testing.T) {
	r := NewResolver(SeededRNG(1))
	res := map[string]float64{content.DamagePhysical: 1.0}

	for i := 0; i < 50; i++ {
		assert.Equal(t, 1, r.Resolve(100, 1.0, content.DamagePhysical, res), "fully resisted hits still deal 1")
	}
}

func TestResolveDeterministicWithSeed(t *testing.T) {
	a := NewResolver(SeededRNG(42))
	b := NewResolver(SeededRNG(42))

	for i := 0; i < 100; i++ {
		require.Equal(t, a.Resolve(15, 1.3, content.DamageFire, nil), b.Resolve(15, 1.3, content.DamageFire, nil))
	}
}

func TestDoTDamageSnapshot(t *testing.T) {
	res := map[string]float64{content.DamagePoison: 0.5}

	assert.Equal(t, 4, DoTDamage(20, 0.4, content.DamagePoison, res))
	assert.Equal(t, 8, DoTDamage(20, 0.4, content.DamagePoison, nil))
	assert.Equal(t, 1, DoTDamage(1, 0.1, content.DamagePoison, res), "per-tick damage floors at 1")
}

func TestEnemyStrike(t *testing.T) {
	r := NewResolver(SeededRNG(3))

	// attack 20, defense 8: base 12, window [10, 13] after truncation
	for i := 0; i < 500; i++ {
		dmg := r.EnemyStrike(20, 8)
		assert.GreaterOrEqual(t, dmg, 10)
		assert.LessOrEqual(t, dmg, 13)
	}

	// Defense above attack floors the base at 1 before variance.
	for i := 0; i < 100; i++ {
		assert.LessOrEqual(t, r.EnemyStrike(5, 50), 1)
	}
}
