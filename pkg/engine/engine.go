// Package engine is the game rules core. It receives one player event at
// a time, mutates the session, and returns the narrations to send back.
// The engine holds no per-player state of its own and is shared by every
// session; callers must serialize events per user.
package engine

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/questline-rpg/engine/pkg/combat"
	"github.com/questline-rpg/engine/pkg/content"
	"github.com/questline-rpg/engine/pkg/narration"
	"github.com/questline-rpg/engine/pkg/session"
)

// DefaultRecoveryDelay is how long a defeated player rests at the
// recovery camp before play resumes at the pre-battle location.
const DefaultRecoveryDelay = 15 * time.Second

// Stable action ids. Clients echo these back verbatim; labels may change
// without breaking them. Location-declared actions use the ids from the
// content tables instead.
const (
	actClassPrefix  = "class:"
	actClassConfirm = "class.confirm"
	actClassBack    = "class.back"

	actStats     = "nav.stats"
	actInventory = "nav.inventory"
	actTeleport  = "nav.teleport"
	actToCity    = "nav.city"

	actBattleAttack  = "battle.attack"
	actBattleFlee    = "battle.flee"
	actBattlePotions = "battle.potions"
	actBattleBack    = "battle.back"
	actBattleSkill   = "battle.skill:"
	actBattlePotion  = "battle.potion:"

	actStoryContinue = "story.continue"

	actEventNext  = "event.next"
	actEventAgain = "event.again"
	actEventLeave = "event.leave"

	actShopItem     = "shop.item:"
	actShopSellItem = "shop.sellitem:"
	actShopSellMode = "shop.sell"
	actShopBuyMode  = "shop.buy"
	actShopYes      = "shop.yes"
	actShopNo       = "shop.no"
	actShopLeave    = "shop.leave"

	actInvItem    = "inv.item:"
	actInvUse     = "inv.use"
	actInvEquip   = "inv.equip"
	actInvUnequip = "inv.unequip"
	actInvBack    = "inv.back"
	actInvClose   = "inv.close"

	actTeleportTo     = "tp:"
	actTeleportCancel = "tp.cancel"
)

// Engine evaluates events against the content tables.
type Engine struct {
	tables        *content.Tables
	resolver      *combat.Resolver
	rng           combat.RNG
	log           *slog.Logger
	now           func() time.Time
	recoveryDelay time.Duration
}

// Option customizes an Engine.
type Option func(*Engine)

// WithRNG replaces the randomness source, used by tests for determinism.
func WithRNG(rng combat.RNG) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithClock replaces the wall clock, used by tests for fatigue and
// recovery timing.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRecoveryDelay overrides the post-defeat rest duration.
func WithRecoveryDelay(d time.Duration) Option {
	return func(e *Engine) { e.recoveryDelay = d }
}

// New creates an engine over the given content tables.
func New(tables *content.Tables, log *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		tables:        tables,
		log:           log,
		now:           time.Now,
		recoveryDelay: DefaultRecoveryDelay,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if e.rng == nil {
		e.rng = combat.DefaultRNG()
	}
	e.resolver = combat.NewResolver(e.rng)
	return e
}

// RecoveryDelay returns the configured post-defeat rest duration.
func (e *Engine) RecoveryDelay() time.Duration {
	return e.recoveryDelay
}

// HandleEvent processes one inbound player action. Invalid or stale
// actions never fail the event; they re-display the current view. The
// returned error is reserved for content inconsistencies.
func (e *Engine) HandleEvent(sess *session.Session, action string) ([]narration.Narration, error) {
	now := e.now()
	sess.UpdatedAt = now
	sess.Player.UpdateFatigue(now)

	if sess.Mode == session.ModeRecovering {
		if now.Before(sess.RecoverUntil) {
			left := sess.RecoverUntil.Sub(now).Round(time.Second)
			return []narration.Narration{
				narration.Text(fmt.Sprintf("😴 You are still recovering. %s to go.", left)),
			}, nil
		}
		return e.finishRecovery(sess), nil
	}

	if !sess.Player.HasClass() {
		return e.handleClassSelection(sess, action)
	}

	switch sess.Mode {
	case session.ModeBattle:
		return e.handleBattle(sess, action)
	case session.ModeStory:
		return e.handleStory(sess, action)
	case session.ModeShop:
		return e.handleShop(sess, action)
	case session.ModeInventory:
		return e.handleInventory(sess, action)
	case session.ModeTeleport:
		return e.handleTeleport(sess, action)
	case session.ModeRandomEvent:
		return e.handleRandomEvent(sess, action)
	default:
		sess.SetMode(session.ModeExploring)
		return e.handleExploring(sess, action)
	}
}

// ResumeIfRecovered ends the recovery rest once its deadline has passed.
// It reports whether the session changed, so callers know to persist it
// and notify the player.
func (e *Engine) ResumeIfRecovered(sess *session.Session) ([]narration.Narration, bool) {
	if sess.Mode != session.ModeRecovering || e.now().Before(sess.RecoverUntil) {
		return nil, false
	}
	sess.UpdatedAt = e.now()
	return e.finishRecovery(sess), true
}

func (e *Engine) finishRecovery(sess *session.Session) []narration.Narration {
	p := sess.Player
	resume := sess.ResumeLocation
	if resume == "" {
		resume = content.RecoveryLocation
	}
	sess.SetMode(session.ModeExploring)

	p.LastLocation = p.Location
	p.Location = resume
	p.VisitLocation(resume)
	p.SetHealth(e.tables, p.MaxHealth(e.tables))

	e.log.Info("player recovered", "user_id", p.UserID, "location", resume)

	out := []narration.Narration{narration.Text("⛺ You wake up rested and fully healed.")}
	return append(out, e.locationView(sess)...)
}

// joinLines folds battle-log style lines into one narration.
func joinLines(lines []string, actions []narration.Action) narration.Narration {
	return narration.Narration{Text: strings.Join(lines, "\n"), Actions: actions}
}
