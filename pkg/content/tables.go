package content

import (
	"fmt"
	"strings"
)

// Well-known location ids. The starting city doubles as the initial
// respawn anchor; the recovery camp is where defeated players rest.
const (
	StartingCity     = "village_square"
	RecoveryLocation = "player_camp"
	IntroQuest       = "first_steps"
)

// Tables is the full set of static game content, loaded once at startup
// and treated as read-only afterwards.
type Tables struct {
	Classes   map[string]Class
	Locations map[string]Location
	Enemies   map[string]Enemy
	Bosses    map[string]Enemy
	Items     map[string]Item
	Abilities map[string]Ability
	Quests    map[string]Quest

	// Storylines keyed "<city>_storyline", event pools keyed
	// "<cityroot>_small_events" / "<cityroot>_medium_events".
	Storylines map[string][]StoryScene
	Events     map[string][]RandomEvent
}

// Class returns a class by id.
func (t *Tables) Class(id string) (Class, bool) {
	c, ok := t.Classes[id]
	return c, ok
}

// Location returns a location by id.
func (t *Tables) Location(id string) (Location, bool) {
	l, ok := t.Locations[id]
	return l, ok
}

// Enemy looks up an encounter by id, falling back to the boss table.
func (t *Tables) Enemy(id string) (Enemy, bool) {
	if e, ok := t.Enemies[id]; ok {
		return e, ok
	}
	e, ok := t.Bosses[id]
	return e, ok
}

// Item returns an item by id.
func (t *Tables) Item(id string) (Item, bool) {
	i, ok := t.Items[id]
	return i, ok
}

// Quest returns a quest by id.
func (t *Tables) Quest(id string) (Quest, bool) {
	q, ok := t.Quests[id]
	return q, ok
}

// Ability returns an ability by its display name, which is how classes
// and unlock tables reference abilities.
func (t *Tables) Ability(name string) (Ability, bool) {
	a, ok := t.Abilities[name]
	if ok && a.Name == "" {
		a.Name = name
	}
	return a, ok
}

// Storyline returns the ordered scene list for a city, if it has one.
func (t *Tables) Storyline(city string) []StoryScene {
	return t.Storylines[city+"_storyline"]
}

// FinalSceneID returns the id of a storyline's last scene, used to detect
// completion. Empty when the city has no storyline.
func (t *Tables) FinalSceneID(city string) string {
	sl := t.Storyline(city)
	if len(sl) == 0 {
		return ""
	}
	return sl[len(sl)-1].ID
}

// Scene finds a scene by id within a city's storyline.
func (t *Tables) Scene(city, sceneID string) (StoryScene, bool) {
	for _, s := range t.Storyline(city) {
		if s.ID == sceneID {
			return s, true
		}
	}
	return StoryScene{}, false
}

// cityRoot strips the naming suffixes used by event pool keys, so
// "village_square" and "capital_city" both resolve their pools.
func cityRoot(city string) string {
	city = strings.TrimSuffix(city, "_square")
	return strings.TrimSuffix(city, "_city")
}

// EventPool returns a city's combined small and medium event pools.
func (t *Tables) EventPool(city string) []RandomEvent {
	root := cityRoot(city)
	var pool []RandomEvent
	pool = append(pool, t.Events[root+"_small_events"]...)
	pool = append(pool, t.Events[root+"_medium_events"]...)
	return pool
}

// Validate checks cross-table references. It returns every problem found
// rather than stopping at the first, so content authors get a full report.
func (t *Tables) Validate() []error {
	var errs []error

	if _, ok := t.Locations[StartingCity]; !ok {
		errs = append(errs, fmt.Errorf("locations: missing starting city %q", StartingCity))
	}

	for id, c := range t.Classes {
		if c.BaseStats[StatHealth] <= 0 {
			errs = append(errs, fmt.Errorf("class %s: base health must be positive", id))
		}
		for _, name := range c.StartingAbilities {
			if _, ok := t.Abilities[name]; !ok {
				errs = append(errs, fmt.Errorf("class %s: unknown starting ability %q", id, name))
			}
		}
		for lvl, names := range c.Unlocks {
			for _, name := range names {
				if _, ok := t.Abilities[name]; !ok {
					errs = append(errs, fmt.Errorf("class %s: unknown ability %q unlocked at level %d", id, name, lvl))
				}
			}
		}
	}

	for id, loc := range t.Locations {
		for _, a := range loc.Actions {
			if a.ID == "" {
				errs = append(errs, fmt.Errorf("location %s: action %q has no stable id", id, a.Label))
			}
			switch a.Type {
			case ActionLocation:
				if _, ok := t.Locations[a.Target]; !ok {
					errs = append(errs, fmt.Errorf("location %s: action %s targets unknown location %q", id, a.ID, a.Target))
				}
			case ActionBattle:
				if _, ok := t.Enemy(a.Target); !ok {
					errs = append(errs, fmt.Errorf("location %s: action %s targets unknown enemy %q", id, a.ID, a.Target))
				}
			case ActionQuest:
				if _, ok := t.Quests[a.Target]; !ok {
					errs = append(errs, fmt.Errorf("location %s: action %s targets unknown quest %q", id, a.ID, a.Target))
				}
			case ActionShop:
				for _, itemID := range a.ShopItems {
					if _, ok := t.Items[itemID]; !ok {
						errs = append(errs, fmt.Errorf("location %s: shop action %s sells unknown item %q", id, a.ID, itemID))
					}
				}
			case ActionStory, ActionRandomEvents:
				// Targets are city ids; storylines and pools may be absent.
			default:
				errs = append(errs, fmt.Errorf("location %s: action %s has unknown type %q", id, a.ID, a.Type))
			}
		}
	}

	for key, scenes := range t.Storylines {
		for _, s := range scenes {
			if s.Type == SceneBattle {
				if _, ok := t.Enemy(s.Enemy); !ok {
					errs = append(errs, fmt.Errorf("storyline %s: scene %s references unknown enemy %q", key, s.ID, s.Enemy))
				}
			}
			if s.Type == SceneLocation && s.Target != "" {
				if _, ok := t.Locations[s.Target]; !ok {
					errs = append(errs, fmt.Errorf("storyline %s: scene %s targets unknown location %q", key, s.ID, s.Target))
				}
			}
			if s.NextScene != "" {
				if _, ok := findScene(scenes, s.NextScene); !ok {
					errs = append(errs, fmt.Errorf("storyline %s: scene %s links to unknown scene %q", key, s.ID, s.NextScene))
				}
			}
		}
	}

	for key, pool := range t.Events {
		for i, ev := range pool {
			if ev.Type != EventReward && ev.Type != EventChain {
				errs = append(errs, fmt.Errorf("events %s[%d]: unknown event type %q", key, i, ev.Type))
			}
			for j, sc := range ev.Scenes {
				if sc.Type == SceneBattle {
					if _, ok := t.Enemy(sc.Enemy); !ok {
						errs = append(errs, fmt.Errorf("events %s[%d]: scene %d references unknown enemy %q", key, i, j, sc.Enemy))
					}
				}
			}
		}
	}

	for id, q := range t.Quests {
		for enemyID := range q.Objectives {
			if _, ok := t.Enemy(enemyID); !ok {
				errs = append(errs, fmt.Errorf("quest %s: objective references unknown enemy %q", id, enemyID))
			}
		}
	}

	return errs
}

func findScene(scenes []StoryScene, id string) (StoryScene, bool) {
	for _, s := range scenes {
		if s.ID == id {
			return s, true
		}
	}
	return StoryScene{}, false
}
