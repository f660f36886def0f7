package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/questline-rpg/engine/pkg/content"
	"github.com/questline-rpg/engine/pkg/narration"
	"github.com/questline-rpg/engine/pkg/player"
	"github.com/questline-rpg/engine/pkg/session"
)

// handleExploring dispatches an action against the current location's
// declared actions plus the navigation footer. Anything else re-displays
// the location.
func (e *Engine) handleExploring(sess *session.Session, action string) ([]narration.Narration, error) {
	p := sess.Player

	switch action {
	case actStats:
		return e.statsView(sess), nil
	case actInventory:
		return e.openInventory(sess), nil
	case actTeleport:
		return e.openTeleport(sess), nil
	case actToCity:
		return e.moveTo(sess, p.CurrentCity), nil
	}

	loc, ok := e.tables.Location(p.Location)
	if !ok {
		return nil, fmt.Errorf("exploring: %w: location %q", player.ErrNotFound, p.Location)
	}
	for _, a := range loc.Actions {
		if a.ID != action || !e.actionVisible(p, a) {
			continue
		}
		switch a.Type {
		case content.ActionLocation:
			return e.moveTo(sess, a.Target), nil
		case content.ActionBattle:
			return e.startBattle(sess, a.Target, session.OriginExploration)
		case content.ActionQuest:
			return e.acceptQuest(sess, a.Target), nil
		case content.ActionStory:
			return e.startStory(sess)
		case content.ActionShop:
			return e.openShop(sess, a.ShopItems), nil
		case content.ActionRandomEvents:
			return e.rollEvent(sess)
		}
	}
	return e.locationView(sess), nil
}

// actionVisible filters declared actions by player state: finished
// storylines and entrances to cities not yet unlocked are hidden, as are
// already-completed quests.
func (e *Engine) actionVisible(p *player.Player, a content.Action) bool {
	switch a.Type {
	case content.ActionStory:
		return !p.HasCompletedStory(e.tables, p.CurrentCity)
	case content.ActionLocation:
		if target, ok := e.tables.Location(a.Target); ok && target.IsCity {
			return p.HasUnlockedCity(a.Target)
		}
	case content.ActionQuest:
		return !slices.Contains(p.CompletedQuests, a.Target)
	}
	return true
}

// locationView renders the player's current location with every action
// available there.
func (e *Engine) locationView(sess *session.Session) []narration.Narration {
	p := sess.Player
	loc, ok := e.tables.Location(p.Location)
	if !ok {
		// Content changed underneath a stored session; fall back to the
		// starting city rather than stranding the player.
		p.Location = content.StartingCity
		p.CurrentCity = content.StartingCity
		loc, _ = e.tables.Location(p.Location)
	}

	n := narration.Narration{
		Text:  fmt.Sprintf("📍 %s\n%s", loc.Name, loc.Description),
		Image: loc.Image,
	}
	for _, a := range loc.Actions {
		if e.actionVisible(p, a) {
			n.Actions = append(n.Actions, narration.Action{ID: a.ID, Label: a.Label})
		}
	}
	if loc.IsCity && len(p.UnlockedCities) > 1 {
		n.Actions = append(n.Actions, narration.Action{ID: actTeleport, Label: "🌀 Teleport"})
	}
	n.Actions = append(n.Actions,
		narration.Action{ID: actStats, Label: "📊 Stats"},
		narration.Action{ID: actInventory, Label: "🎒 Inventory"},
	)
	if !loc.IsCity {
		n.Actions = append(n.Actions, narration.Action{ID: actToCity, Label: "🏙 Back to the city"})
	}
	return []narration.Narration{n}
}

// moveTo relocates the player and resets any mode state.
func (e *Engine) moveTo(sess *session.Session, target string) []narration.Narration {
	p := sess.Player
	sess.SetMode(session.ModeExploring)
	p.LastLocation = p.Location
	p.Location = target
	if loc, ok := e.tables.Location(target); ok && loc.IsCity {
		p.CurrentCity = target
	}
	p.VisitLocation(target)
	return e.locationView(sess)
}

// statsView renders the character sheet followed by the location view.
func (e *Engine) statsView(sess *session.Session) []narration.Narration {
	p := sess.Player
	stats := p.TotalStats(e.tables)

	var b strings.Builder
	if c, ok := e.tables.Class(p.ClassID); ok {
		fmt.Fprintf(&b, "📊 %s, level %d\n", c.Name, p.Level)
	} else {
		fmt.Fprintf(&b, "📊 Level %d\n", p.Level)
	}
	fmt.Fprintf(&b, "✨ Experience: %d/%d\n", p.Experience, p.Level*expPerLevel)
	fmt.Fprintf(&b, "❤️ Health: %d/%d\n", p.Health(), p.MaxHealth(e.tables))
	fmt.Fprintf(&b, "⚔️ Attack: %d\n", stats[content.StatAttack])
	fmt.Fprintf(&b, "🛡 Defense: %d\n", stats[content.StatDefense])
	fmt.Fprintf(&b, "💰 Gold: %d\n", p.Gold)
	fmt.Fprintf(&b, "⚡ Fatigue: %.0f/100\n", p.Fatigue)
	fmt.Fprintf(&b, "🔮 Artifact slots: %d/%d", len(p.EquippedArtifacts), p.ArtifactSlots)

	for _, eff := range p.ActiveEffects {
		fmt.Fprintf(&b, "\n🌀 %s (%d battles left)", eff.Name, eff.Duration)
	}
	for _, qid := range p.ActiveQuests {
		q, ok := e.tables.Quest(qid)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n📜 %s", q.Name)
		for enemyID, need := range q.Objectives {
			name := enemyID
			if en, ok := e.tables.Enemy(enemyID); ok {
				name = en.Name
			}
			fmt.Fprintf(&b, " (%s %d/%d)", name, min(p.KillCount[enemyID], need), need)
		}
	}

	out := []narration.Narration{narration.Text(b.String())}
	return append(out, e.locationView(sess)...)
}

// acceptQuest activates a quest, or reports progress if it is already
// running.
func (e *Engine) acceptQuest(sess *session.Session, questID string) []narration.Narration {
	p := sess.Player
	q, ok := e.tables.Quest(questID)
	if !ok {
		return e.locationView(sess)
	}
	if slices.Contains(p.CompletedQuests, questID) {
		out := []narration.Narration{narration.Text(fmt.Sprintf("📜 %s is already done.", q.Name))}
		return append(out, e.locationView(sess)...)
	}
	if slices.Contains(p.ActiveQuests, questID) {
		var b strings.Builder
		fmt.Fprintf(&b, "📜 %s is in progress.", q.Name)
		for enemyID, need := range q.Objectives {
			name := enemyID
			if en, ok := e.tables.Enemy(enemyID); ok {
				name = en.Name
			}
			fmt.Fprintf(&b, "\n• %s: %d/%d", name, min(p.KillCount[enemyID], need), need)
		}
		out := []narration.Narration{narration.Text(b.String())}
		return append(out, e.locationView(sess)...)
	}

	p.ActiveQuests = append(p.ActiveQuests, questID)
	e.log.Info("quest accepted", "user_id", p.UserID, "quest", questID)
	out := []narration.Narration{narration.Text(fmt.Sprintf("📜 New quest: %s\n%s", q.Name, q.Description))}
	return append(out, e.locationView(sess)...)
}

// openTeleport lists the unlocked cities the player is not already in.
func (e *Engine) openTeleport(sess *session.Session) []narration.Narration {
	p := sess.Player
	sess.SetMode(session.ModeTeleport)

	n := narration.Narration{Text: "🌀 Where to?"}
	for _, city := range p.UnlockedCities {
		if city == p.CurrentCity {
			continue
		}
		label := city
		if loc, ok := e.tables.Location(city); ok {
			label = loc.Name
		}
		n.Actions = append(n.Actions, narration.Action{ID: actTeleportTo + city, Label: label})
	}
	n.Actions = append(n.Actions, narration.Action{ID: actTeleportCancel, Label: "↩️ Stay here"})
	return []narration.Narration{n}
}

func (e *Engine) handleTeleport(sess *session.Session, action string) ([]narration.Narration, error) {
	p := sess.Player
	if action == actTeleportCancel {
		sess.SetMode(session.ModeExploring)
		return e.locationView(sess), nil
	}
	if city, ok := strings.CutPrefix(action, actTeleportTo); ok {
		if p.HasUnlockedCity(city) && city != p.CurrentCity {
			return e.moveTo(sess, city), nil
		}
	}
	return e.openTeleport(sess), nil
}
