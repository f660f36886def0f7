package combat

// Resolver computes damage instances. It holds no state beyond its
// randomness source and is shared by every session.
type Resolver struct {
	rng RNG
}

// NewResolver creates a resolver around the given randomness source.
func NewResolver(rng RNG) *Resolver {
	if rng == nil {
		rng = DefaultRNG()
	}
	return &Resolver{rng: rng}
}

// ResistanceFactor converts a resistance value into a damage multiplier.
// Resistance is the blocked fraction: 1 means immune, negative values
// are weaknesses and amplify damage. Values above 1 only ever floor the
// factor at zero.
func ResistanceFactor(resistances map[string]float64, dmgType string) float64 {
	f := 1.0 - resistances[dmgType]
	if f < 0 {
		return 0
	}
	return f
}

// Resolve computes one damage instance: attack scaled by the ability
// multiplier, reduced by the target's resistance to the damage type, with
// a uniform ±20% variance. Damage is never less than 1.
func (r *Resolver) Resolve(baseAttack int, mult float64, dmgType string, resistances map[string]float64) int {
	mean := float64(baseAttack) * mult * ResistanceFactor(resistances, dmgType)

	lo := int(mean * 0.8)
	hi := int(mean * 1.2)
	dmg := lo
	if hi > lo {
		dmg = lo + r.rng.IntN(hi-lo+1)
	}
	if dmg < 1 {
		return 1
	}
	return dmg
}

// DoTDamage computes the per-tick damage of a damage-over-time effect.
// It is a snapshot: resistance is applied once at cast time and the value
// never rescales on later ticks. No variance, minimum 1.
func DoTDamage(baseAttack int, mult float64, dmgType string, resistances map[string]float64) int {
	dmg := int(float64(baseAttack) * mult * ResistanceFactor(resistances, dmgType))
	if dmg < 1 {
		return 1
	}
	return dmg
}

// EnemyStrike computes the enemy's counterattack: attack minus defense,
// floored at 1 before variance, scaled by a uniform factor in [0.9, 1.1]
// and truncated to an integer.
func (r *Resolver) EnemyStrike(enemyAttack, playerDefense int) int {
	base := enemyAttack - playerDefense
	if base < 1 {
		base = 1
	}
	factor := 0.9 + r.rng.Float64()*0.2
	return int(float64(base) * factor)
}
