package content

// Stat names used in base stats, item bonuses and effect deltas.
const (
	StatHealth  = "health"
	StatAttack  = "attack"
	StatDefense = "defense"
)

// Damage types recognized by the damage resolver.
const (
	DamagePhysical  = "physical"
	DamageFire      = "fire"
	DamageIce       = "ice"
	DamagePoison    = "poison"
	DamageMagic     = "magic"
	DamageLightning = "lightning"
	DamageLight     = "light"
	DamageEarth     = "earth"
	DamageDark      = "dark"
)

// DamageIcons maps damage types to the glyphs used in narration text.
var DamageIcons = map[string]string{
	DamagePhysical:  "⚔️",
	DamageFire:      "🔥",
	DamageIce:       "❄️",
	DamagePoison:    "☠️",
	DamageMagic:     "✨",
	DamageLightning: "⚡",
	DamageLight:     "☀️",
	DamageEarth:     "🪨",
	DamageDark:      "🌑",
}

// Class is a playable character class.
type Class struct {
	ID                string           `json:"id,omitempty" yaml:"id,omitempty"` // set from table key on load
	Name              string           `json:"name" yaml:"name"`
	Description       string           `json:"description,omitempty" yaml:"description,omitempty"`
	Image             string           `json:"image,omitempty" yaml:"image,omitempty"`
	BaseStats         map[string]int   `json:"base_stats" yaml:"base_stats"`
	StartingAbilities []string         `json:"starting_abilities,omitempty" yaml:"starting_abilities,omitempty"`
	Unlocks           map[int][]string `json:"unlocks,omitempty" yaml:"unlocks,omitempty"` // level -> ability names
}

// Action types declared on locations.
const (
	ActionLocation     = "location"
	ActionBattle       = "battle"
	ActionQuest        = "quest"
	ActionStory        = "story"
	ActionShop         = "shop"
	ActionRandomEvents = "random_events"
)

// Action is one player-selectable option declared by a location.
// ID is the stable identifier matched against inbound events; Label is
// presentation only and may change without breaking clients.
type Action struct {
	ID        string   `json:"id" yaml:"id"`
	Label     string   `json:"label" yaml:"label"`
	Type      string   `json:"type" yaml:"type"`
	Target    string   `json:"target,omitempty" yaml:"target,omitempty"`
	ShopItems []string `json:"shop_items,omitempty" yaml:"shop_items,omitempty"`
}

// Location is a place the player can occupy.
type Location struct {
	ID          string   `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Image       string   `json:"image,omitempty" yaml:"image,omitempty"`
	IsCity      bool     `json:"is_city,omitempty" yaml:"is_city,omitempty"`
	Actions     []Action `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// Phase is one strength tier of a multi-stage enemy, entered when the
// previous tier's health is exhausted.
type Phase struct {
	Name        string             `json:"name" yaml:"name"`
	Image       string             `json:"image,omitempty" yaml:"image,omitempty"`
	Health      int                `json:"health" yaml:"health"`
	Attack      int                `json:"attack" yaml:"attack"`
	Message     string             `json:"message,omitempty" yaml:"message,omitempty"`
	Resistances map[string]float64 `json:"resistances,omitempty" yaml:"resistances,omitempty"`
}

// Enemy describes a combat encounter. Bosses live in a separate table but
// share the shape; IsBoss marks them for reward purposes.
type Enemy struct {
	ID          string             `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string             `json:"name" yaml:"name"`
	Image       string             `json:"image,omitempty" yaml:"image,omitempty"`
	Health      int                `json:"health" yaml:"health"`
	Attack      int                `json:"attack" yaml:"attack"`
	Experience  int                `json:"experience" yaml:"experience"`
	Resistances map[string]float64 `json:"resistances,omitempty" yaml:"resistances,omitempty"`
	Phases      []Phase            `json:"phases,omitempty" yaml:"phases,omitempty"`
	IsBoss      bool               `json:"is_boss,omitempty" yaml:"is_boss,omitempty"`
}

// Item types.
const (
	ItemArtifact   = "artifact"
	ItemConsumable = "consumable"
)

// Buff is a timed stat bonus granted by a consumable.
type Buff struct {
	Stats    map[string]int `json:"stats" yaml:"stats"`
	Duration int            `json:"duration" yaml:"duration"` // battles
}

// Item is anything that can live in an inventory.
type Item struct {
	ID          string         `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Image       string         `json:"image,omitempty" yaml:"image,omitempty"`
	Type        string         `json:"type" yaml:"type"`
	Price       int            `json:"price,omitempty" yaml:"price,omitempty"`
	Stats       map[string]int `json:"stats,omitempty" yaml:"stats,omitempty"`
	Buff        *Buff          `json:"buffs,omitempty" yaml:"buffs,omitempty"`
}

// SellPrice is what a shop pays for an item, never less than one gold.
func (i *Item) SellPrice() int {
	p := i.Price / 2
	if p < 1 {
		return 1
	}
	return p
}

// Layer is one damage component of an ability.
type Layer struct {
	Mult float64 `json:"mult" yaml:"mult"`
	Type string  `json:"type" yaml:"type"`
}

// DoTSpec declares a damage-over-time effect applied by an ability.
type DoTSpec struct {
	Name     string  `json:"name" yaml:"name"`
	Type     string  `json:"type" yaml:"type"`
	Mult     float64 `json:"mult" yaml:"mult"`
	Duration int     `json:"duration" yaml:"duration"` // ticks
}

// Ability is an active combat skill. Either Layers or the legacy DmgMult
// carries the damage; the rest are optional riders.
type Ability struct {
	Name        string   `json:"name,omitempty" yaml:"name,omitempty"`
	Layers      []Layer  `json:"layers,omitempty" yaml:"layers,omitempty"`
	DmgMult     float64  `json:"dmg_mult,omitempty" yaml:"dmg_mult,omitempty"`
	DoT         *DoTSpec `json:"dot,omitempty" yaml:"dot,omitempty"`
	Heal        float64  `json:"heal,omitempty" yaml:"heal,omitempty"` // fraction of dealt damage
	HealFlat    int      `json:"heal_flat,omitempty" yaml:"heal_flat,omitempty"`
	DefenseBuff int      `json:"defense_buff,omitempty" yaml:"defense_buff,omitempty"` // one-battle caster buff
	MaxUses     int      `json:"max_uses,omitempty" yaml:"max_uses,omitempty"`         // 0 = unlimited
}

// UsesLeft reports whether the ability can still be used given how many
// times it was already cast this battle.
func (a *Ability) UsesLeft(used int) bool {
	return a.MaxUses <= 0 || used < a.MaxUses
}

// Rewards is a bundle of experience, gold and item grants.
type Rewards struct {
	Experience int      `json:"experience,omitempty" yaml:"experience,omitempty"`
	Gold       int      `json:"gold,omitempty" yaml:"gold,omitempty"`
	Items      []string `json:"items,omitempty" yaml:"items,omitempty"`
}

// IsZero reports whether the bundle grants nothing.
func (r Rewards) IsZero() bool {
	return r.Experience == 0 && r.Gold == 0 && len(r.Items) == 0
}

// Quest tracks kill objectives and pays out on completion.
type Quest struct {
	ID          string         `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Objectives  map[string]int `json:"objectives,omitempty" yaml:"objectives,omitempty"` // enemy id -> kills
	Rewards     Rewards        `json:"rewards,omitempty" yaml:"rewards,omitempty"`
}

// Story scene types. Chain-event scenes reuse SceneDialogue and
// SceneBattle, and add SceneReward.
const (
	SceneDialogue = "dialogue"
	SceneBattle   = "battle"
	SceneLocation = "location"
	SceneReward   = "reward"
)

// StoryScene is one step of a city storyline.
type StoryScene struct {
	ID         string   `json:"id" yaml:"id"`
	Type       string   `json:"type" yaml:"type"`
	Title      string   `json:"title,omitempty" yaml:"title,omitempty"`
	Text       string   `json:"text,omitempty" yaml:"text,omitempty"`
	Image      string   `json:"image,omitempty" yaml:"image,omitempty"`
	Enemy      string   `json:"enemy,omitempty" yaml:"enemy,omitempty"`
	NextScene  string   `json:"next_scene,omitempty" yaml:"next_scene,omitempty"`
	Rewards    *Rewards `json:"rewards,omitempty" yaml:"rewards,omitempty"`
	UnlockCity string   `json:"unlock_city,omitempty" yaml:"unlock_city,omitempty"`
	Target     string   `json:"target,omitempty" yaml:"target,omitempty"`
}

// EventScene is one step of a chain random event.
type EventScene struct {
	Type    string   `json:"type" yaml:"type"`
	Text    string   `json:"text,omitempty" yaml:"text,omitempty"`
	Image   string   `json:"image,omitempty" yaml:"image,omitempty"`
	Enemy   string   `json:"enemy,omitempty" yaml:"enemy,omitempty"`
	Rewards *Rewards `json:"rewards,omitempty" yaml:"rewards,omitempty"`
}

// Random event types.
const (
	EventReward = "reward"
	EventChain  = "chain"
)

// RandomEvent is a fatigue-gated encounter drawn from a city pool.
type RandomEvent struct {
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Image       string       `json:"image,omitempty" yaml:"image,omitempty"`
	Type        string       `json:"type" yaml:"type"`
	FatigueCost float64      `json:"fatigue_cost,omitempty" yaml:"fatigue_cost,omitempty"`
	Rewards     *Rewards     `json:"rewards,omitempty" yaml:"rewards,omitempty"`
	Scenes      []EventScene `json:"scenes,omitempty" yaml:"scenes,omitempty"`
}
