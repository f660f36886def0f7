package engine

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/questline-rpg/engine/pkg/combat"
	"github.com/questline-rpg/engine/pkg/content"
	"github.com/questline-rpg/engine/pkg/narration"
	"github.com/questline-rpg/engine/pkg/player"
	"github.com/questline-rpg/engine/pkg/session"
)

// startBattle snapshots an enemy and the player's health into a fresh
// battle. Story and event cursors riding on the session are moved onto
// the battle so victory can resume the script.
func (e *Engine) startBattle(sess *session.Session, enemyID string, origin session.BattleOrigin) ([]narration.Narration, error) {
	enemy, ok := e.tables.Enemy(enemyID)
	if !ok {
		return nil, fmt.Errorf("start battle: %w: enemy %q", player.ErrNotFound, enemyID)
	}

	story := sess.Story
	event := sess.Event
	sess.SetMode(session.ModeBattle)
	sess.Battle = &session.BattleState{
		Snapshot: combat.NewSnapshot(enemy, sess.Player.Health()),
		Origin:   origin,
		Story:    story,
		Event:    event,
	}

	e.log.Info("battle started", "user_id", sess.Player.UserID, "enemy", enemyID, "origin", origin)

	n := narration.Narration{
		Text:    fmt.Sprintf("⚔️ %s blocks your path!", enemy.Name),
		Image:   enemy.Image,
		Actions: e.battleActions(sess),
	}
	return []narration.Narration{n}, nil
}

// battleActions builds the player's turn menu: basic attack, every known
// ability with its remaining uses, potions when any are carried, flee.
func (e *Engine) battleActions(sess *session.Session) []narration.Action {
	p := sess.Player
	s := sess.Battle.Snapshot

	acts := []narration.Action{{ID: actBattleAttack, Label: "🗡 Attack"}}
	for _, name := range p.AllAbilities(e.tables) {
		ab, ok := e.tables.Ability(name)
		if !ok {
			continue
		}
		label := "💥 " + name
		if ab.MaxUses > 0 {
			label = fmt.Sprintf("💥 %s (%d/%d)", name, ab.MaxUses-s.SkillUses[name], ab.MaxUses)
		}
		acts = append(acts, narration.Action{ID: actBattleSkill + name, Label: label})
	}
	if len(e.carriedConsumables(p)) > 0 {
		acts = append(acts, narration.Action{ID: actBattlePotions, Label: "🧪 Potions"})
	}
	return append(acts, narration.Action{ID: actBattleFlee, Label: "🏃 Flee"})
}

// carriedConsumables returns the distinct consumable items in the
// inventory, in inventory order.
func (e *Engine) carriedConsumables(p *player.Player) []content.Item {
	var items []content.Item
	seen := map[string]bool{}
	for _, id := range p.Inventory {
		if seen[id] {
			continue
		}
		seen[id] = true
		if item, ok := e.tables.Item(id); ok && item.Type == content.ItemConsumable {
			items = append(items, item)
		}
	}
	return items
}

func (e *Engine) handleBattle(sess *session.Session, action string) ([]narration.Narration, error) {
	if sess.Battle == nil || sess.Battle.Snapshot == nil {
		sess.SetMode(session.ModeExploring)
		return e.locationView(sess), nil
	}
	p := sess.Player
	b := sess.Battle

	switch {
	case action == actBattleFlee:
		return e.fleeBattle(sess), nil

	case action == actBattlePotions:
		b.PotionMenu = true
		return []narration.Narration{e.potionMenu(sess)}, nil

	case action == actBattleBack:
		b.PotionMenu = false
		return []narration.Narration{e.battleStatus(sess)}, nil

	case strings.HasPrefix(action, actBattlePotion):
		return e.usePotionInBattle(sess, strings.TrimPrefix(action, actBattlePotion))

	case action == actBattleAttack:
		basic := content.Ability{Name: "Attack", Layers: []content.Layer{{Mult: 1, Type: content.DamagePhysical}}}
		return e.playerTurn(sess, basic)

	case strings.HasPrefix(action, actBattleSkill):
		name := strings.TrimPrefix(action, actBattleSkill)
		ab, ok := e.tables.Ability(name)
		if !ok || !slices.Contains(p.AllAbilities(e.tables), name) {
			// Unknown or unlearned ability: the turn is not consumed.
			return []narration.Narration{e.battleStatus(sess)}, nil
		}
		if !ab.UsesLeft(b.Snapshot.SkillUses[name]) {
			out := narration.Text(fmt.Sprintf("❌ No uses of %s left this battle.", name))
			return []narration.Narration{out, e.battleStatus(sess)}, nil
		}
		b.Snapshot.SkillUses[name]++
		return e.playerTurn(sess, ab)
	}
	return []narration.Narration{e.battleStatus(sess)}, nil
}

// battleStatus re-displays the current standings and turn menu.
func (e *Engine) battleStatus(sess *session.Session) narration.Narration {
	p := sess.Player
	s := sess.Battle.Snapshot
	text := fmt.Sprintf("❤️ You: %d/%d\n👹 %s: %d",
		s.PlayerHealth, p.MaxHealth(e.tables), s.EnemyName, s.EnemyHealth)
	return narration.Narration{Text: text, Actions: e.battleActions(sess)}
}

// playerTurn executes one offensive turn with the given ability, then
// runs DoT ticks and the enemy's counterattack unless the enemy fell.
func (e *Engine) playerTurn(sess *session.Session, ab content.Ability) ([]narration.Narration, error) {
	p := sess.Player
	s := sess.Battle.Snapshot
	atk := p.TotalStats(e.tables)[content.StatAttack]

	var lines []string
	total := 0
	layers := ab.Layers
	if len(layers) == 0 && ab.DmgMult > 0 {
		layers = []content.Layer{{Mult: ab.DmgMult, Type: content.DamagePhysical}}
	}
	for _, layer := range layers {
		dmg := e.resolver.Resolve(atk, layer.Mult, layer.Type, s.EnemyResistances)
		total += dmg
		lines = append(lines, fmt.Sprintf("%s %s: %d damage", content.DamageIcons[layer.Type], ab.Name, dmg))
	}
	s.EnemyHealth -= total

	if ab.DoT != nil {
		dmg := combat.DoTDamage(atk, ab.DoT.Mult, ab.DoT.Type, s.EnemyResistances)
		dot := combat.DoT{Name: ab.DoT.Name, Type: ab.DoT.Type, Damage: dmg, Remaining: ab.DoT.Duration}
		if s.ApplyDoT(dot) {
			lines = append(lines, fmt.Sprintf("🔁 %s refreshed.", ab.DoT.Name))
		} else {
			lines = append(lines, fmt.Sprintf("%s %s: %d damage per turn for %d turns",
				content.DamageIcons[ab.DoT.Type], ab.DoT.Name, dmg, ab.DoT.Duration))
		}
	}
	if ab.Heal > 0 && total > 0 {
		if healed := e.healInBattle(sess, int(float64(total)*ab.Heal)); healed > 0 {
			lines = append(lines, fmt.Sprintf("💚 Restored %d health.", healed))
		}
	}
	if ab.HealFlat > 0 {
		if healed := e.healInBattle(sess, ab.HealFlat); healed > 0 {
			lines = append(lines, fmt.Sprintf("💚 Restored %d health.", healed))
		}
	}
	if ab.DefenseBuff > 0 {
		p.AddEffect(ab.Name, map[string]int{content.StatDefense: ab.DefenseBuff}, 1)
		lines = append(lines, fmt.Sprintf("🛡 Defense +%d for this battle.", ab.DefenseBuff))
	}

	if s.EnemyDefeated() {
		return e.enemyDown(sess, lines)
	}
	lines = append(lines, s.TickDoTs()...)
	if s.EnemyDefeated() {
		return e.enemyDown(sess, lines)
	}
	return e.enemyTurn(sess, lines)
}

// healInBattle raises the battle health snapshot, capped at max health,
// and returns the amount actually restored.
func (e *Engine) healInBattle(sess *session.Session, amount int) int {
	s := sess.Battle.Snapshot
	before := s.PlayerHealth
	s.PlayerHealth = min(s.PlayerHealth+amount, sess.Player.MaxHealth(e.tables))
	return s.PlayerHealth - before
}

func (e *Engine) potionMenu(sess *session.Session) narration.Narration {
	p := sess.Player
	n := narration.Narration{Text: "🧪 Which potion?"}
	for _, item := range e.carriedConsumables(p) {
		label := fmt.Sprintf("%s x%d", item.Name, p.CountOf(item.ID))
		n.Actions = append(n.Actions, narration.Action{ID: actBattlePotion + item.ID, Label: label})
	}
	n.Actions = append(n.Actions, narration.Action{ID: actBattleBack, Label: "↩️ Back"})
	return n
}

// usePotionInBattle drinks a consumable mid-fight. Drinking a healing
// potion at full health is rejected without consuming the turn or the
// potion; a successful drink costs the turn.
func (e *Engine) usePotionInBattle(sess *session.Session, itemID string) ([]narration.Narration, error) {
	p := sess.Player
	s := sess.Battle.Snapshot

	item, ok := e.tables.Item(itemID)
	if !ok || item.Type != content.ItemConsumable || !p.Owns(itemID) {
		return []narration.Narration{e.potionMenu(sess)}, nil
	}

	heals := item.Stats[content.StatHealth]
	if heals > 0 && item.Buff == nil && s.PlayerHealth >= p.MaxHealth(e.tables) {
		out := narration.Text("❤️ You are already at full health.")
		return []narration.Narration{out, e.potionMenu(sess)}, nil
	}

	p.RemoveItem(itemID)
	sess.Battle.PotionMenu = false

	var lines []string
	if heals > 0 {
		healed := e.healInBattle(sess, heals)
		lines = append(lines, fmt.Sprintf("🧪 %s restores %d health.", item.Name, healed))
	}
	if item.Buff != nil {
		p.AddEffect(item.Name, item.Buff.Stats, item.Buff.Duration)
		lines = append(lines, fmt.Sprintf("🌀 %s takes effect for %d battles.", item.Name, item.Buff.Duration))
	}
	if len(lines) == 0 {
		lines = append(lines, fmt.Sprintf("🧪 You drink the %s.", item.Name))
	}

	lines = append(lines, s.TickDoTs()...)
	if s.EnemyDefeated() {
		return e.enemyDown(sess, lines)
	}
	return e.enemyTurn(sess, lines)
}

// enemyTurn applies the counterattack and either continues the battle or
// ends in defeat.
func (e *Engine) enemyTurn(sess *session.Session, lines []string) ([]narration.Narration, error) {
	p := sess.Player
	s := sess.Battle.Snapshot

	def := p.TotalStats(e.tables)[content.StatDefense]
	dmg := e.resolver.EnemyStrike(s.EnemyAttack, def)
	s.PlayerHealth -= dmg
	lines = append(lines, fmt.Sprintf("💥 %s hits you for %d.", s.EnemyName, dmg))

	if s.PlayerHealth <= 0 {
		return e.defeat(sess, lines), nil
	}
	lines = append(lines, "", fmt.Sprintf("❤️ You: %d/%d   👹 %s: %d",
		s.PlayerHealth, p.MaxHealth(e.tables), s.EnemyName, s.EnemyHealth))
	return []narration.Narration{joinLines(lines, e.battleActions(sess))}, nil
}

// enemyDown handles the enemy's health reaching zero: either the next
// declared phase takes over, or the battle is won. A phase transition
// absorbs the enemy's turn.
func (e *Engine) enemyDown(sess *session.Session, lines []string) ([]narration.Narration, error) {
	s := sess.Battle.Snapshot
	if phase, ok := s.NextPhase(); ok {
		msg := phase.Message
		if msg == "" {
			msg = fmt.Sprintf("⚡ %s rises again!", phase.Name)
		}
		lines = append(lines, "", msg)
		n := narration.Narration{
			Text:    strings.Join(lines, "\n"),
			Image:   s.EnemyImage,
			Actions: e.battleActions(sess),
		}
		return []narration.Narration{n}, nil
	}
	return e.victory(sess, lines)
}

// fleeBattle abandons the fight. Damage taken sticks, timed effects tick
// as for any completed battle, and no rewards are paid.
func (e *Engine) fleeBattle(sess *session.Session) []narration.Narration {
	p := sess.Player
	s := sess.Battle.Snapshot

	p.SetHealth(e.tables, s.PlayerHealth)
	expired := p.TickEffects()
	sess.SetMode(session.ModeExploring)

	lines := []string{fmt.Sprintf("🏃 You flee from the %s.", s.EnemyName)}
	if expired {
		lines = append(lines, "🌀 Some of your effects wore off.")
	}
	out := []narration.Narration{narration.Text(strings.Join(lines, "\n"))}
	return append(out, e.locationView(sess)...)
}

// victory settles a won battle: health write-back and the post-battle
// heal, effect ticks, rewards, kill bookkeeping, quest evaluation and
// level-up, then hands control back to whatever started the fight.
func (e *Engine) victory(sess *session.Session, lines []string) ([]narration.Narration, error) {
	p := sess.Player
	s := sess.Battle.Snapshot
	origin := sess.Battle.Origin
	storyCursor := sess.Battle.Story
	eventCursor := sess.Battle.Event

	lines = append(lines, "", fmt.Sprintf("🏆 %s defeated!", s.EnemyName))

	p.SetHealth(e.tables, s.PlayerHealth)
	if healed := p.Heal(e.tables, p.MaxHealth(e.tables)*30/100); healed > 0 {
		lines = append(lines, fmt.Sprintf("💚 You catch your breath and recover %d health.", healed))
	}
	if p.TickEffects() {
		lines = append(lines, "🌀 Some of your effects wore off.")
	}

	rewards := content.Rewards{
		Experience: s.EnemyExperience,
		Gold:       int(float64(s.EnemyExperience) * 0.8),
	}
	if s.IsBoss {
		rewards.Gold += 100
	}
	lines = append(lines, e.applyRewards(p, rewards)...)

	if s.IsBoss && !p.HasDefeatedBoss(s.EnemyID) {
		p.ArtifactSlots++
		lines = append(lines, "🔮 You can now equip one more artifact.")
	}
	p.RecordKill(s.EnemyID)
	if s.IsBoss {
		p.RecordBoss(s.EnemyID)
	}

	lines = append(lines, e.evaluateQuests(p)...)
	lines = append(lines, e.levelUp(p)...)

	e.log.Info("battle won", "user_id", p.UserID, "enemy", s.EnemyID, "level", p.Level)

	out := []narration.Narration{narration.Text(strings.Join(lines, "\n"))}
	switch origin {
	case session.OriginStory:
		if storyCursor != nil {
			sess.SetMode(session.ModeStory)
			sess.Story = storyCursor
			next, err := e.advanceStory(sess)
			return append(out, next...), err
		}
	case session.OriginEvent:
		if eventCursor != nil {
			sess.SetMode(session.ModeRandomEvent)
			sess.Event = eventCursor
			return append(out, e.playEventScene(sess)...), nil
		}
	}
	sess.SetMode(session.ModeExploring)
	return append(out, e.locationView(sess)...), nil
}

// defeat drags the player to the recovery camp for the rest. Active
// effects are lost; progression, gold and inventory are untouched. Play
// resumes where the player fell once the deadline passes.
func (e *Engine) defeat(sess *session.Session, lines []string) []narration.Narration {
	p := sess.Player

	p.ClearEffects()
	p.SetHealth(e.tables, 0)

	resume := p.Location
	if _, ok := e.tables.Location(resume); !ok {
		resume = p.CurrentCity
	}
	sess.SetMode(session.ModeRecovering)
	sess.RecoverUntil = e.now().Add(e.recoveryDelay)
	sess.ResumeLocation = resume

	p.LastLocation = p.Location
	p.Location = content.RecoveryLocation
	p.VisitLocation(content.RecoveryLocation)

	e.log.Info("player defeated", "user_id", p.UserID, "recover_until", sess.RecoverUntil, "resume", resume)

	lines = append(lines, "",
		"💀 Everything goes dark.",
		fmt.Sprintf("⛺ Someone drags you to a camp. You need %s to recover.", e.recoveryDelay.Round(time.Second)))
	return []narration.Narration{narration.Text(strings.Join(lines, "\n"))}
}
