// Package session holds the ephemeral per-interaction state of one
// player: the current UI mode plus exactly one mode-specific payload.
// Mode state is reset whenever the player's location changes.
package session

import (
	"time"

	"github.com/questline-rpg/engine/pkg/combat"
	"github.com/questline-rpg/engine/pkg/content"
	"github.com/questline-rpg/engine/pkg/player"
)

// Mode identifies which interaction the session is in. Exactly one
// payload field matching the mode is populated; switching modes clears
// the others.
type Mode string

const (
	ModeClassSelection Mode = "class_selection"
	ModeExploring      Mode = "exploring"
	ModeStory          Mode = "story"
	ModeShop           Mode = "shop"
	ModeInventory      Mode = "inventory"
	ModeTeleport       Mode = "teleport"
	ModeRandomEvent    Mode = "random_event"
	ModeBattle         Mode = "battle"
	ModeRecovering     Mode = "recovering"
)

// BattleOrigin records which flow started a battle, so victory can hand
// control back to it.
type BattleOrigin string

const (
	OriginExploration BattleOrigin = "exploration"
	OriginStory       BattleOrigin = "story"
	OriginEvent       BattleOrigin = "event"
)

// BattleState is the battle-mode payload. Battles started from a
// storyline or a chain event carry the script cursor with them so
// victory can resume the script where it left off.
type BattleState struct {
	Snapshot   *combat.Snapshot `json:"snapshot"`
	Origin     BattleOrigin     `json:"origin"`
	PotionMenu bool             `json:"potion_menu,omitempty"`
	Story      *StoryCursor     `json:"story,omitempty"`
	Event      *EventCursor     `json:"event,omitempty"`
}

// StoryCursor is the story-mode payload: which city storyline is playing
// and which scene is current.
type StoryCursor struct {
	City    string `json:"city"`
	SceneID string `json:"scene_id"`

	// Granted is the last scene whose payout was applied. Re-rendering a
	// scene after stale input must not pay twice.
	Granted string `json:"granted,omitempty"`
}

// EventCursor is the random-event payload. For chain events Scenes holds
// the remaining script and Index the next scene to play; for one-shot
// reward events both stay empty.
type EventCursor struct {
	City   string               `json:"city"`
	Scenes []content.EventScene `json:"scenes,omitempty"`
	Index  int                  `json:"index"`

	// Granted counts the scenes whose payout was applied; a scene at
	// Index < Granted re-renders without paying again.
	Granted int `json:"granted,omitempty"`
}

// ShopState is the shop-mode payload, including the two-step buy/sell
// confirmations.
type ShopState struct {
	Items       []string `json:"items"`
	Selling     bool     `json:"selling,omitempty"`
	ConfirmBuy  string   `json:"confirm_buy,omitempty"`
	ConfirmSell string   `json:"confirm_sell,omitempty"`
}

// InventoryState is the inventory-mode payload.
type InventoryState struct {
	ViewingItem string `json:"viewing_item,omitempty"`
}

// Session is one user's complete game state: the persistent player
// aggregate plus the ephemeral mode state.
type Session struct {
	Player *player.Player `json:"player"`
	Mode   Mode           `json:"mode"`

	Battle        *BattleState    `json:"battle,omitempty"`
	Story         *StoryCursor    `json:"story,omitempty"`
	Event         *EventCursor    `json:"event,omitempty"`
	Shop          *ShopState      `json:"shop,omitempty"`
	InventoryView *InventoryState `json:"inventory_view,omitempty"`

	// SelectedClass is the class-selection payload: the class whose
	// detail view is awaiting confirmation.
	SelectedClass string `json:"selected_class,omitempty"`

	// RecoverUntil is the recovering-mode payload: the deadline after
	// which the player resumes at ResumeLocation.
	RecoverUntil   time.Time `json:"recover_until,omitempty"`
	ResumeLocation string    `json:"resume_location,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a session for a first-contact user, starting in class
// selection.
func New(userID string, now time.Time) *Session {
	return &Session{
		Player: player.New(userID, now),
		Mode:   ModeClassSelection,
	}
}

// UserID returns the owning user's id.
func (s *Session) UserID() string {
	return s.Player.UserID
}

// SetMode switches mode and clears every payload that does not belong to
// the new mode, keeping "one mode, one payload" true by construction.
func (s *Session) SetMode(m Mode) {
	s.Mode = m
	if m != ModeBattle {
		s.Battle = nil
	}
	if m != ModeStory {
		s.Story = nil
	}
	if m != ModeRandomEvent {
		s.Event = nil
	}
	if m != ModeShop {
		s.Shop = nil
	}
	if m != ModeInventory {
		s.InventoryView = nil
	}
	if m != ModeClassSelection {
		s.SelectedClass = ""
	}
	if m != ModeRecovering {
		s.RecoverUntil = time.Time{}
		s.ResumeLocation = ""
	}
}

// Recovering reports whether the session is still inside the post-defeat
// recovery window.
func (s *Session) Recovering(now time.Time) bool {
	return s.Mode == ModeRecovering && now.Before(s.RecoverUntil)
}
