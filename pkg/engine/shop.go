package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/questline-rpg/engine/pkg/content"
	"github.com/questline-rpg/engine/pkg/narration"
	"github.com/questline-rpg/engine/pkg/session"
)

// openShop enters shop mode with the location's declared stock.
func (e *Engine) openShop(sess *session.Session, stock []string) []narration.Narration {
	sess.SetMode(session.ModeShop)
	sess.Shop = &session.ShopState{Items: stock}
	return []narration.Narration{e.shopView(sess)}
}

// shopView renders either the buy or the sell counter.
func (e *Engine) shopView(sess *session.Session) narration.Narration {
	p := sess.Player
	shop := sess.Shop

	if shop.Selling {
		n := narration.Narration{Text: fmt.Sprintf("🏪 What are you selling?\n💰 Your gold: %d", p.Gold)}
		for _, item := range e.sellableItems(sess) {
			label := fmt.Sprintf("%s x%d (%d gold)", item.Name, p.CountOf(item.ID), item.SellPrice())
			n.Actions = append(n.Actions, narration.Action{ID: actShopSellItem + item.ID, Label: label})
		}
		n.Actions = append(n.Actions,
			narration.Action{ID: actShopBuyMode, Label: "🛒 Browse wares"},
			narration.Action{ID: actShopLeave, Label: "↩️ Leave"},
		)
		return n
	}

	n := narration.Narration{Text: fmt.Sprintf("🏪 Welcome! Take a look.\n💰 Your gold: %d", p.Gold)}
	for _, id := range shop.Items {
		item, ok := e.tables.Item(id)
		if !ok {
			continue
		}
		label := fmt.Sprintf("%s (%d gold)", item.Name, item.Price)
		n.Actions = append(n.Actions, narration.Action{ID: actShopItem + id, Label: label})
	}
	n.Actions = append(n.Actions,
		narration.Action{ID: actShopSellMode, Label: "💰 Sell items"},
		narration.Action{ID: actShopLeave, Label: "↩️ Leave"},
	)
	return n
}

// sellableItems lists distinct inventory items the shop will take.
// Equipped artifacts stay off the counter.
func (e *Engine) sellableItems(sess *session.Session) []content.Item {
	p := sess.Player
	var items []content.Item
	seen := map[string]bool{}
	for _, id := range p.Inventory {
		if seen[id] || p.IsEquipped(id) {
			continue
		}
		seen[id] = true
		if item, ok := e.tables.Item(id); ok {
			items = append(items, item)
		}
	}
	return items
}

func (e *Engine) handleShop(sess *session.Session, action string) ([]narration.Narration, error) {
	if sess.Shop == nil {
		sess.SetMode(session.ModeExploring)
		return e.locationView(sess), nil
	}
	shop := sess.Shop

	// Pending confirmations swallow everything except yes/no.
	if shop.ConfirmBuy != "" || shop.ConfirmSell != "" {
		switch action {
		case actShopYes:
			return e.confirmShopDeal(sess), nil
		case actShopNo:
			shop.ConfirmBuy, shop.ConfirmSell = "", ""
			return []narration.Narration{e.shopView(sess)}, nil
		default:
			return []narration.Narration{e.confirmPrompt(sess)}, nil
		}
	}

	switch {
	case action == actShopLeave:
		sess.SetMode(session.ModeExploring)
		out := []narration.Narration{narration.Text("🏪 Come back soon!")}
		return append(out, e.locationView(sess)...), nil

	case action == actShopSellMode:
		shop.Selling = true

	case action == actShopBuyMode:
		shop.Selling = false

	case strings.HasPrefix(action, actShopItem):
		return e.offerBuy(sess, strings.TrimPrefix(action, actShopItem)), nil

	case strings.HasPrefix(action, actShopSellItem):
		return e.offerSell(sess, strings.TrimPrefix(action, actShopSellItem)), nil
	}
	return []narration.Narration{e.shopView(sess)}, nil
}

func (e *Engine) offerBuy(sess *session.Session, itemID string) []narration.Narration {
	p := sess.Player
	shop := sess.Shop

	item, ok := e.tables.Item(itemID)
	if !ok || !slices.Contains(shop.Items, itemID) {
		return []narration.Narration{e.shopView(sess)}
	}
	if p.Gold < item.Price {
		out := narration.Text(fmt.Sprintf("💰 You need %d gold for the %s, but carry only %d.", item.Price, item.Name, p.Gold))
		return []narration.Narration{out, e.shopView(sess)}
	}
	shop.ConfirmBuy = itemID
	return []narration.Narration{e.confirmPrompt(sess)}
}

func (e *Engine) offerSell(sess *session.Session, itemID string) []narration.Narration {
	p := sess.Player
	if _, ok := e.tables.Item(itemID); !ok || !p.Owns(itemID) || p.IsEquipped(itemID) {
		return []narration.Narration{e.shopView(sess)}
	}
	sess.Shop.ConfirmSell = itemID
	return []narration.Narration{e.confirmPrompt(sess)}
}

func (e *Engine) confirmPrompt(sess *session.Session) narration.Narration {
	shop := sess.Shop
	var text string
	if shop.ConfirmBuy != "" {
		if item, ok := e.tables.Item(shop.ConfirmBuy); ok {
			text = fmt.Sprintf("🛒 Buy %s for %d gold?", item.Name, item.Price)
		}
	} else if shop.ConfirmSell != "" {
		if item, ok := e.tables.Item(shop.ConfirmSell); ok {
			text = fmt.Sprintf("💰 Sell %s for %d gold?", item.Name, item.SellPrice())
		}
	}
	return narration.Narration{
		Text: text,
		Actions: []narration.Action{
			{ID: actShopYes, Label: "✅ Yes"},
			{ID: actShopNo, Label: "❌ No"},
		},
	}
}

// confirmShopDeal executes the pending purchase or sale. Funds and
// ownership are re-checked at execution time.
func (e *Engine) confirmShopDeal(sess *session.Session) []narration.Narration {
	p := sess.Player
	shop := sess.Shop

	if id := shop.ConfirmBuy; id != "" {
		shop.ConfirmBuy = ""
		item, ok := e.tables.Item(id)
		if !ok || p.Gold < item.Price {
			return []narration.Narration{e.shopView(sess)}
		}
		p.Gold -= item.Price
		p.AddItem(id)
		e.log.Info("item bought", "user_id", p.UserID, "item", id, "price", item.Price)
		out := narration.Text(fmt.Sprintf("🛒 %s is yours.", item.Name))
		return []narration.Narration{out, e.shopView(sess)}
	}

	if id := shop.ConfirmSell; id != "" {
		shop.ConfirmSell = ""
		item, ok := e.tables.Item(id)
		if !ok || !p.Owns(id) || p.IsEquipped(id) {
			return []narration.Narration{e.shopView(sess)}
		}
		p.RemoveItem(id)
		p.Gold += item.SellPrice()
		e.log.Info("item sold", "user_id", p.UserID, "item", id, "price", item.SellPrice())
		out := narration.Text(fmt.Sprintf("💰 Sold %s for %d gold.", item.Name, item.SellPrice()))
		return []narration.Narration{out, e.shopView(sess)}
	}
	return []narration.Narration{e.shopView(sess)}
}
