package combat

import (
	"fmt"

	"github.com/questline-rpg/engine/pkg/content"
)

// DoT is an active damage-over-time effect on the enemy. Damage is fixed
// at cast time; Remaining counts ticks left.
type DoT struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Damage    int    `json:"damage"`
	Remaining int    `json:"remaining"`
}

// Snapshot is the ephemeral working state of one battle. The enemy fields
// are copies and may be overwritten on phase transitions; the originals in
// the content tables are never touched.
type Snapshot struct {
	EnemyID          string             `json:"enemy_id"`
	EnemyName        string             `json:"enemy_name"`
	EnemyImage       string             `json:"enemy_image,omitempty"`
	EnemyHealth      int                `json:"enemy_health"`
	EnemyAttack      int                `json:"enemy_attack"`
	EnemyExperience  int                `json:"enemy_experience"`
	EnemyResistances map[string]float64 `json:"enemy_resistances,omitempty"`
	IsBoss           bool               `json:"is_boss,omitempty"`
	Phases           []content.Phase    `json:"phases,omitempty"`

	PlayerHealth int `json:"player_health"`

	// Phase is 1-based; phase 1 is the base enemy definition.
	Phase     int            `json:"phase"`
	SkillUses map[string]int `json:"skill_uses,omitempty"`
	DoTs      []DoT          `json:"dots,omitempty"`
}

// NewSnapshot copies an enemy definition and the player's current health
// into a fresh battle working state.
func NewSnapshot(enemy content.Enemy, playerHealth int) *Snapshot {
	res := make(map[string]float64, len(enemy.Resistances))
	for k, v := range enemy.Resistances {
		res[k] = v
	}
	return &Snapshot{
		EnemyID:          enemy.ID,
		EnemyName:        enemy.Name,
		EnemyImage:       enemy.Image,
		EnemyHealth:      enemy.Health,
		EnemyAttack:      enemy.Attack,
		EnemyExperience:  enemy.Experience,
		EnemyResistances: res,
		IsBoss:           enemy.IsBoss,
		Phases:           enemy.Phases,
		PlayerHealth:     playerHealth,
		Phase:            1,
		SkillUses:        make(map[string]int),
	}
}

// EnemyDefeated reports whether the current phase's health is exhausted.
func (s *Snapshot) EnemyDefeated() bool {
	return s.EnemyHealth <= 0
}

// NextPhase advances to the next declared phase, overwriting the enemy
// working copy, and reports whether a transition happened. Reward state
// (experience, boss flag) is carried over from the base definition.
func (s *Snapshot) NextPhase() (content.Phase, bool) {
	if s.Phase > len(s.Phases) {
		return content.Phase{}, false
	}
	phase := s.Phases[s.Phase-1]
	s.Phase++
	s.EnemyHealth = phase.Health
	s.EnemyAttack = phase.Attack
	s.EnemyName = phase.Name
	if phase.Image != "" {
		s.EnemyImage = phase.Image
	}
	if phase.Resistances != nil {
		s.EnemyResistances = phase.Resistances
	}
	return phase, true
}

// ApplyDoT records a damage-over-time effect on the enemy. Re-applying a
// DoT that is already active refreshes its duration and damage instead of
// stacking a second instance; DoTs are matched by name.
func (s *Snapshot) ApplyDoT(dot DoT) (refreshed bool) {
	for i := range s.DoTs {
		if s.DoTs[i].Name == dot.Name {
			s.DoTs[i].Damage = dot.Damage
			s.DoTs[i].Remaining = dot.Remaining
			return true
		}
	}
	s.DoTs = append(s.DoTs, dot)
	return false
}

// TickDoTs applies every active DoT to the enemy, decrements the tick
// counters and drops expired effects. It returns one narration line per
// tick applied.
func (s *Snapshot) TickDoTs() []string {
	if len(s.DoTs) == 0 {
		return nil
	}
	lines := make([]string, 0, len(s.DoTs))
	kept := s.DoTs[:0]
	for _, dot := range s.DoTs {
		s.EnemyHealth -= dot.Damage
		lines = append(lines, fmt.Sprintf("%s %s: %d", content.DamageIcons[dot.Type], dot.Name, dot.Damage))
		dot.Remaining--
		if dot.Remaining > 0 {
			kept = append(kept, dot)
		}
	}
	s.DoTs = kept
	return lines
}
