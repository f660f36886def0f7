package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/questline-rpg/engine/pkg/content"
	"github.com/questline-rpg/engine/pkg/narration"
	"github.com/questline-rpg/engine/pkg/player"
	"github.com/questline-rpg/engine/pkg/session"
)

// openInventory enters the bag view.
func (e *Engine) openInventory(sess *session.Session) []narration.Narration {
	sess.SetMode(session.ModeInventory)
	sess.InventoryView = &session.InventoryState{}
	return []narration.Narration{e.inventoryList(sess)}
}

func (e *Engine) inventoryList(sess *session.Session) narration.Narration {
	p := sess.Player

	if len(p.Inventory) == 0 {
		return narration.Narration{
			Text:    "🎒 Your bag is empty.",
			Actions: []narration.Action{{ID: actInvClose, Label: "↩️ Close"}},
		}
	}

	n := narration.Narration{Text: "🎒 Your bag:"}
	seen := map[string]bool{}
	for _, id := range p.Inventory {
		if seen[id] {
			continue
		}
		seen[id] = true
		item, ok := e.tables.Item(id)
		if !ok {
			continue
		}
		label := fmt.Sprintf("%s x%d", item.Name, p.CountOf(id))
		if p.IsEquipped(id) {
			label += " ⚡"
		}
		n.Actions = append(n.Actions, narration.Action{ID: actInvItem + id, Label: label})
	}
	n.Actions = append(n.Actions, narration.Action{ID: actInvClose, Label: "↩️ Close"})
	return n
}

func (e *Engine) itemDetail(sess *session.Session, item content.Item) narration.Narration {
	p := sess.Player

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s", item.Name, item.Description)
	for stat, v := range item.Stats {
		fmt.Fprintf(&b, "\n%s: %+d", stat, v)
	}
	if item.Buff != nil {
		fmt.Fprintf(&b, "\n🌀 Effect lasts %d battles", item.Buff.Duration)
	}
	fmt.Fprintf(&b, "\n💰 Sells for %d gold", item.SellPrice())

	n := narration.Narration{Text: b.String(), Image: item.Image}
	switch item.Type {
	case content.ItemConsumable:
		n.Actions = append(n.Actions, narration.Action{ID: actInvUse, Label: "🧪 Use"})
	case content.ItemArtifact:
		if p.IsEquipped(item.ID) {
			n.Actions = append(n.Actions, narration.Action{ID: actInvUnequip, Label: "⚡ Unequip"})
		} else {
			n.Actions = append(n.Actions, narration.Action{ID: actInvEquip, Label: "⚡ Equip"})
		}
	}
	n.Actions = append(n.Actions, narration.Action{ID: actInvBack, Label: "↩️ Back"})
	return n
}

func (e *Engine) handleInventory(sess *session.Session, action string) ([]narration.Narration, error) {
	p := sess.Player
	if sess.InventoryView == nil {
		sess.InventoryView = &session.InventoryState{}
	}
	view := sess.InventoryView

	switch {
	case action == actInvClose:
		sess.SetMode(session.ModeExploring)
		return e.locationView(sess), nil

	case action == actInvBack:
		view.ViewingItem = ""
		return []narration.Narration{e.inventoryList(sess)}, nil

	case strings.HasPrefix(action, actInvItem):
		id := strings.TrimPrefix(action, actInvItem)
		if item, ok := e.tables.Item(id); ok && p.Owns(id) {
			view.ViewingItem = id
			return []narration.Narration{e.itemDetail(sess, item)}, nil
		}

	case action == actInvUse && view.ViewingItem != "":
		return e.useConsumable(sess, view.ViewingItem), nil

	case action == actInvEquip && view.ViewingItem != "":
		return e.equip(sess, view.ViewingItem), nil

	case action == actInvUnequip && view.ViewingItem != "":
		if err := p.UnequipArtifact(view.ViewingItem); err == nil {
			if item, ok := e.tables.Item(view.ViewingItem); ok {
				out := narration.Text(fmt.Sprintf("⚡ %s unequipped.", item.Name))
				return []narration.Narration{out, e.itemDetail(sess, item)}, nil
			}
		}
	}
	return []narration.Narration{e.inventoryList(sess)}, nil
}

// useConsumable drinks an item outside battle. A healing potion at full
// health is refused and kept.
func (e *Engine) useConsumable(sess *session.Session, itemID string) []narration.Narration {
	p := sess.Player
	view := sess.InventoryView

	item, ok := e.tables.Item(itemID)
	if !ok || item.Type != content.ItemConsumable || !p.Owns(itemID) {
		return []narration.Narration{e.inventoryList(sess)}
	}

	heals := item.Stats[content.StatHealth]
	if heals > 0 && item.Buff == nil && p.Health() >= p.MaxHealth(e.tables) {
		out := narration.Text("❤️ You are already at full health.")
		return []narration.Narration{out, e.itemDetail(sess, item)}
	}

	p.RemoveItem(itemID)
	var lines []string
	if heals > 0 {
		healed := p.Heal(e.tables, heals)
		lines = append(lines, fmt.Sprintf("🧪 %s restores %d health.", item.Name, healed))
	}
	if item.Buff != nil {
		p.AddEffect(item.Name, item.Buff.Stats, item.Buff.Duration)
		lines = append(lines, fmt.Sprintf("🌀 %s takes effect for %d battles.", item.Name, item.Buff.Duration))
	}
	if len(lines) == 0 {
		lines = append(lines, fmt.Sprintf("🧪 You use the %s.", item.Name))
	}

	out := []narration.Narration{joinLines(lines, nil)}
	if p.Owns(itemID) {
		return append(out, e.itemDetail(sess, item))
	}
	view.ViewingItem = ""
	return append(out, e.inventoryList(sess))
}

func (e *Engine) equip(sess *session.Session, itemID string) []narration.Narration {
	p := sess.Player
	item, ok := e.tables.Item(itemID)
	if !ok {
		return []narration.Narration{e.inventoryList(sess)}
	}

	err := p.EquipArtifact(e.tables, itemID)
	var text string
	switch {
	case err == nil:
		text = fmt.Sprintf("⚡ %s equipped.", item.Name)
	case errors.Is(err, player.ErrNoFreeSlot):
		text = fmt.Sprintf("🔮 All %d artifact slots are in use.", p.ArtifactSlots)
	case errors.Is(err, player.ErrNotAnArtifact):
		text = fmt.Sprintf("❌ %s cannot be equipped.", item.Name)
	default:
		text = "❌ " + err.Error()
	}
	return []narration.Narration{narration.Text(text), e.itemDetail(sess, item)}
}
