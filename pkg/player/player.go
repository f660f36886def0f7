package player

import (
	"slices"
	"time"

	"github.com/questline-rpg/engine/pkg/content"
)

const (
	startingGold          = 50
	startingArtifactSlots = 1
	defaultMaxHealth      = 100
	healthPerLevel        = 10

	// Fatigue regenerates from 0 to full over one hour of real time.
	fatigueMax       = 100.0
	fatiguePerSecond = fatigueMax / 3600.0
)

// Effect is a timed stat bonus on the player. Duration counts battles;
// it is decremented once per completed battle (win or flee).
type Effect struct {
	Name     string         `json:"name"`
	Stats    map[string]int `json:"stats"`
	Duration int            `json:"duration"`
}

// Player is one user's persistent progression. It is mutated only through
// its own operations and only by one event at a time.
type Player struct {
	UserID string `json:"user_id"`

	ClassID   string         `json:"class_id,omitempty"`
	BaseStats map[string]int `json:"base_stats,omitempty"`

	Inventory         []string `json:"inventory,omitempty"`
	EquippedArtifacts []string `json:"equipped_artifacts,omitempty"`
	ArtifactSlots     int      `json:"artifact_slots"`

	Gold       int `json:"gold"`
	Level      int `json:"level"`
	Experience int `json:"experience"`

	ActiveEffects   []Effect       `json:"active_effects,omitempty"`
	ActiveQuests    []string       `json:"active_quests,omitempty"`
	CompletedQuests []string       `json:"completed_quests,omitempty"`
	KillCount       map[string]int `json:"kill_count,omitempty"`

	Location     string `json:"location"`
	CurrentCity  string `json:"current_city"`
	LastLocation string `json:"last_location"`

	UnlockedCities   []string          `json:"unlocked_cities,omitempty"`
	VisitedLocations []string          `json:"visited_locations,omitempty"`
	StoryProgress    map[string]string `json:"story_progress,omitempty"` // city -> last seen scene id
	DefeatedBosses   []string          `json:"defeated_bosses,omitempty"`

	Fatigue           float64   `json:"fatigue"`
	LastFatigueUpdate time.Time `json:"last_fatigue_update"`
}

// New creates a fresh player who has not yet picked a class.
func New(userID string, now time.Time) *Player {
	return &Player{
		UserID:            userID,
		ArtifactSlots:     startingArtifactSlots,
		Gold:              startingGold,
		Level:             1,
		KillCount:         make(map[string]int),
		StoryProgress:     make(map[string]string),
		CurrentCity:       content.StartingCity,
		LastLocation:      content.StartingCity,
		UnlockedCities:    []string{content.StartingCity},
		Fatigue:           fatigueMax,
		LastFatigueUpdate: now,
	}
}

// HasClass reports whether the player has finished class selection.
func (p *Player) HasClass() bool {
	return p.ClassID != ""
}

// SetClass assigns a class and copies its base stats and abilities.
func (p *Player) SetClass(c content.Class) {
	p.ClassID = c.ID
	p.BaseStats = make(map[string]int, len(c.BaseStats))
	for k, v := range c.BaseStats {
		p.BaseStats[k] = v
	}
}

// TotalStats sums base stats, equipped artifact bonuses and active effect
// deltas. It is recomputed on every call, never cached.
func (p *Player) TotalStats(tables *content.Tables) map[string]int {
	stats := make(map[string]int, len(p.BaseStats))
	for k, v := range p.BaseStats {
		stats[k] = v
	}
	for _, itemID := range p.EquippedArtifacts {
		item, ok := tables.Item(itemID)
		if !ok {
			continue
		}
		for stat, v := range item.Stats {
			stats[stat] += v
		}
	}
	for _, e := range p.ActiveEffects {
		for stat, v := range e.Stats {
			stats[stat] += v
		}
	}
	return stats
}

// MaxHealth derives the health cap from the class base and level.
func (p *Player) MaxHealth(tables *content.Tables) int {
	c, ok := tables.Class(p.ClassID)
	if !ok {
		return defaultMaxHealth
	}
	return c.BaseStats[content.StatHealth] + (p.Level-1)*healthPerLevel
}

// Health returns current health, which is modeled as the health entry of
// the base stats.
func (p *Player) Health() int {
	return p.BaseStats[content.StatHealth]
}

// SetHealth writes current health clamped to [0, MaxHealth].
func (p *Player) SetHealth(tables *content.Tables, hp int) {
	if max := p.MaxHealth(tables); hp > max {
		hp = max
	}
	if hp < 0 {
		hp = 0
	}
	if p.BaseStats == nil {
		p.BaseStats = make(map[string]int)
	}
	p.BaseStats[content.StatHealth] = hp
}

// Heal raises current health by amount, clamped, and returns the amount
// actually restored.
func (p *Player) Heal(tables *content.Tables, amount int) int {
	before := p.Health()
	p.SetHealth(tables, before+amount)
	return p.Health() - before
}

// AddEffect appends a timed stat bonus.
func (p *Player) AddEffect(name string, stats map[string]int, duration int) {
	p.ActiveEffects = append(p.ActiveEffects, Effect{Name: name, Stats: stats, Duration: duration})
}

// TickEffects decrements every effect's remaining battles and removes
// expired ones. It reports whether anything expired, so callers can
// surface a narration line.
func (p *Player) TickEffects() bool {
	kept := p.ActiveEffects[:0]
	expired := false
	for _, e := range p.ActiveEffects {
		e.Duration--
		if e.Duration > 0 {
			kept = append(kept, e)
		} else {
			expired = true
		}
	}
	p.ActiveEffects = kept
	return expired
}

// ClearEffects drops every active effect.
func (p *Player) ClearEffects() {
	p.ActiveEffects = nil
}

// AllAbilities returns the class starting abilities plus every ability
// unlocked at or below the current level.
func (p *Player) AllAbilities(tables *content.Tables) []string {
	c, ok := tables.Class(p.ClassID)
	if !ok {
		return nil
	}
	abilities := slices.Clone(c.StartingAbilities)
	for lvl, names := range c.Unlocks {
		if p.Level < lvl {
			continue
		}
		for _, name := range names {
			if !slices.Contains(abilities, name) {
				abilities = append(abilities, name)
			}
		}
	}
	slices.Sort(abilities[len(c.StartingAbilities):])
	return abilities
}

// Owns reports whether the inventory holds at least one of the item.
func (p *Player) Owns(itemID string) bool {
	return slices.Contains(p.Inventory, itemID)
}

// CountOf returns how many copies of an item the inventory holds.
func (p *Player) CountOf(itemID string) int {
	n := 0
	for _, id := range p.Inventory {
		if id == itemID {
			n++
		}
	}
	return n
}

// AddItem appends an item to the inventory.
func (p *Player) AddItem(itemID string) {
	p.Inventory = append(p.Inventory, itemID)
}

// RemoveItem removes one copy of an item and reports whether one existed.
func (p *Player) RemoveItem(itemID string) bool {
	if i := slices.Index(p.Inventory, itemID); i >= 0 {
		p.Inventory = slices.Delete(p.Inventory, i, i+1)
		return true
	}
	return false
}

// IsEquipped reports whether the artifact is currently worn.
func (p *Player) IsEquipped(itemID string) bool {
	return slices.Contains(p.EquippedArtifacts, itemID)
}

// EquipArtifact tags an owned artifact as worn. Equipping never moves or
// duplicates the item in the inventory.
func (p *Player) EquipArtifact(tables *content.Tables, itemID string) error {
	if !p.Owns(itemID) {
		return ErrNotOwned
	}
	if p.IsEquipped(itemID) {
		return ErrAlreadyEquipped
	}
	item, ok := tables.Item(itemID)
	if !ok || item.Type != content.ItemArtifact {
		return ErrNotAnArtifact
	}
	if len(p.EquippedArtifacts) >= p.ArtifactSlots {
		return ErrNoFreeSlot
	}
	p.EquippedArtifacts = append(p.EquippedArtifacts, itemID)
	return nil
}

// UnequipArtifact removes the worn tag.
func (p *Player) UnequipArtifact(itemID string) error {
	if i := slices.Index(p.EquippedArtifacts, itemID); i >= 0 {
		p.EquippedArtifacts = slices.Delete(p.EquippedArtifacts, i, i+1)
		return nil
	}
	return ErrNotEquipped
}

// UnlockCity makes a city available for teleportation.
func (p *Player) UnlockCity(cityID string) {
	if !slices.Contains(p.UnlockedCities, cityID) {
		p.UnlockedCities = append(p.UnlockedCities, cityID)
	}
}

// HasUnlockedCity reports whether a city is available.
func (p *Player) HasUnlockedCity(cityID string) bool {
	return slices.Contains(p.UnlockedCities, cityID)
}

// VisitLocation records a location in the visit history.
func (p *Player) VisitLocation(locID string) {
	if !slices.Contains(p.VisitedLocations, locID) {
		p.VisitedLocations = append(p.VisitedLocations, locID)
	}
}

// RecordKill increments the kill counter for an enemy.
func (p *Player) RecordKill(enemyID string) {
	if p.KillCount == nil {
		p.KillCount = make(map[string]int)
	}
	p.KillCount[enemyID]++
}

// HasDefeatedBoss reports whether a boss was already beaten. Repeat
// victories still pay rewards but do not re-record the boss.
func (p *Player) HasDefeatedBoss(bossID string) bool {
	return slices.Contains(p.DefeatedBosses, bossID)
}

// RecordBoss marks a boss as defeated.
func (p *Player) RecordBoss(bossID string) {
	if !p.HasDefeatedBoss(bossID) {
		p.DefeatedBosses = append(p.DefeatedBosses, bossID)
	}
}

// HasCompletedStory reports whether the player has seen the final scene of
// a city's storyline.
func (p *Player) HasCompletedStory(tables *content.Tables, city string) bool {
	final := tables.FinalSceneID(city)
	if final == "" {
		return false
	}
	return p.StoryProgress[city] == final
}

// UpdateFatigue lazily applies fatigue regeneration for the wall-clock
// time elapsed since the last update, capped at the maximum. It must run
// before every fatigue read or spend.
func (p *Player) UpdateFatigue(now time.Time) {
	elapsed := now.Sub(p.LastFatigueUpdate).Seconds()
	if elapsed <= 0 {
		return
	}
	p.Fatigue = min(fatigueMax, p.Fatigue+elapsed*fatiguePerSecond)
	p.LastFatigueUpdate = now
}

// SpendFatigue consumes fatigue, flooring at zero.
func (p *Player) SpendFatigue(now time.Time, amount float64) {
	p.UpdateFatigue(now)
	p.Fatigue = max(0, p.Fatigue-amount)
	p.LastFatigueUpdate = now
}

// CanAfford reports whether the player has at least cost fatigue after
// regeneration.
func (p *Player) CanAfford(now time.Time, cost float64) bool {
	p.UpdateFatigue(now)
	return p.Fatigue >= cost
}
