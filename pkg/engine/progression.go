package engine

import (
	"fmt"

	"github.com/questline-rpg/engine/pkg/content"
	"github.com/questline-rpg/engine/pkg/player"
)

const (
	// A level costs level*expPerLevel experience.
	expPerLevel = 100

	levelAttackBonus = 2
	levelHealthBonus = 10
)

// applyRewards credits a reward bundle and returns the narration lines.
// Level-up is not evaluated here; callers run it once after all bundles
// of an event have been credited.
func (e *Engine) applyRewards(p *player.Player, r content.Rewards) []string {
	var lines []string
	if r.Experience > 0 {
		p.Experience += r.Experience
		lines = append(lines, fmt.Sprintf("✨ +%d experience", r.Experience))
	}
	if r.Gold > 0 {
		p.Gold += r.Gold
		lines = append(lines, fmt.Sprintf("💰 +%d gold", r.Gold))
	}
	for _, id := range r.Items {
		p.AddItem(id)
		name := id
		if item, ok := e.tables.Item(id); ok {
			name = item.Name
		}
		lines = append(lines, fmt.Sprintf("🎁 %s added to your bag", name))
	}
	return lines
}

// evaluateQuests completes every active quest whose kill objectives are
// all met, paying each quest's rewards exactly once.
func (e *Engine) evaluateQuests(p *player.Player) []string {
	var lines []string
	remaining := p.ActiveQuests[:0]
	for _, qid := range p.ActiveQuests {
		q, ok := e.tables.Quest(qid)
		if !ok || !questComplete(p, q) {
			remaining = append(remaining, qid)
			continue
		}
		p.CompletedQuests = append(p.CompletedQuests, qid)
		e.log.Info("quest completed", "user_id", p.UserID, "quest", qid)
		lines = append(lines, fmt.Sprintf("📜 Quest complete: %s", q.Name))
		lines = append(lines, e.applyRewards(p, q.Rewards)...)
	}
	p.ActiveQuests = remaining
	return lines
}

func questComplete(p *player.Player, q content.Quest) bool {
	if len(q.Objectives) == 0 {
		return false
	}
	for enemyID, need := range q.Objectives {
		if p.KillCount[enemyID] < need {
			return false
		}
	}
	return true
}

// levelUp advances the player at most one level, raising attack and
// health and surfacing any abilities unlocked at the new level. Surplus
// experience carries over toward the next level.
func (e *Engine) levelUp(p *player.Player) []string {
	need := p.Level * expPerLevel
	if p.Experience < need {
		return nil
	}
	p.Experience -= need
	p.Level++
	p.BaseStats[content.StatAttack] += levelAttackBonus
	p.Heal(e.tables, levelHealthBonus)

	e.log.Info("level up", "user_id", p.UserID, "level", p.Level)

	lines := []string{fmt.Sprintf("🎉 Level up! You are now level %d.", p.Level)}
	if c, ok := e.tables.Class(p.ClassID); ok {
		for _, name := range c.Unlocks[p.Level] {
			lines = append(lines, fmt.Sprintf("💥 New ability unlocked: %s", name))
		}
	}
	return lines
}
