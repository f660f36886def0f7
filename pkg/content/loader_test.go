package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644))
}

func TestLoadBackfillsIDs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "classes.json", `{
		"warrior": {
			"name": "Warrior",
			"base_stats": {"health": 120, "attack": 12, "defense": 8},
			"starting_abilities": ["Power Strike"],
			"unlocks": {"3": ["Shield Wall"]}
		}
	}`)
	writeFile(t, dir, "enemies.json", `{
		"wolf": {"name": "Wolf", "health": 30, "attack": 8, "experience": 25}
	}`)
	writeFile(t, dir, "bosses.json", `{
		"guardian": {
			"name": "Guardian", "health": 200, "attack": 20, "experience": 300,
			"phases": [{"name": "Enraged Guardian", "health": 120, "attack": 28, "message": "It rises!"}]
		}
	}`)
	writeFile(t, dir, "items.json", `{
		"potion": {"name": "Potion", "type": "consumable", "price": 30, "stats": {"health": 40}}
	}`)
	writeFile(t, dir, "abilities.json", `{
		"Power Strike": {"layers": [{"mult": 1.5, "type": "physical"}], "max_uses": 2},
		"Shield Wall": {"defense_buff": 6}
	}`)

	tables, err := Load(dir)
	require.NoError(t, err)

	c, ok := tables.Class("warrior")
	require.True(t, ok)
	assert.Equal(t, "warrior", c.ID, "table key becomes the entity id")
	assert.Equal(t, 120, c.BaseStats[StatHealth])
	assert.Equal(t, []string{"Shield Wall"}, c.Unlocks[3])

	wolf, ok := tables.Enemy("wolf")
	require.True(t, ok)
	assert.Equal(t, "wolf", wolf.ID)
	assert.False(t, wolf.IsBoss)

	// Bosses resolve through the same lookup and are marked on load.
	guardian, ok := tables.Enemy("guardian")
	require.True(t, ok)
	assert.True(t, guardian.IsBoss)
	require.Len(t, guardian.Phases, 1)
	assert.Equal(t, 120, guardian.Phases[0].Health)

	ab, ok := tables.Ability("Power Strike")
	require.True(t, ok)
	assert.Equal(t, "Power Strike", ab.Name, "display name backfilled from the key")
	assert.Equal(t, 2, ab.MaxUses)
}

func TestLoadReadsYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "quests.yaml", `
first_steps:
  name: First Steps
  objectives:
    wolf: 3
  rewards:
    experience: 50
    gold: 40
`)
	writeFile(t, dir, "random_events.yml", `
village_small_events:
  - name: Dropped Purse
    type: reward
    fatigue_cost: 5
    rewards:
      gold: 15
`)

	tables, err := Load(dir)
	require.NoError(t, err)

	q, ok := tables.Quest("first_steps")
	require.True(t, ok)
	assert.Equal(t, "first_steps", q.ID)
	assert.Equal(t, 3, q.Objectives["wolf"])
	assert.Equal(t, 40, q.Rewards.Gold)

	pool := tables.EventPool("village_square")
	require.Len(t, pool, 1)
	assert.Equal(t, "Dropped Purse", pool[0].Name)
	assert.Equal(t, 5.0, pool[0].FatigueCost)
}

func TestLoadMissingFilesYieldEmptyTables(t *testing.T) {
	tables, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Empty(t, tables.Classes)
	assert.Empty(t, tables.Storyline("village_square"))
	assert.Empty(t, tables.EventPool("village_square"))
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "items.json", `{"potion": `)

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "items.json")
}

func TestEventPoolStripsCitySuffixes(t *testing.T) {
	tables := &Tables{Events: map[string][]RandomEvent{
		"village_small_events":  {{Name: "a", Type: EventReward}},
		"village_medium_events": {{Name: "b", Type: EventChain}},
		"capital_small_events":  {{Name: "c", Type: EventReward}},
	}}

	pool := tables.EventPool("village_square")
	require.Len(t, pool, 2)
	assert.Equal(t, "a", pool[0].Name, "small events come before medium")
	assert.Equal(t, "b", pool[1].Name)

	assert.Len(t, tables.EventPool("capital_city"), 1)
	assert.Empty(t, tables.EventPool("nowhere"))
}

func TestStorylineLookups(t *testing.T) {
	tables := &Tables{Storylines: map[string][]StoryScene{
		"village_square_storyline": {
			{ID: "s1", Type: SceneDialogue},
			{ID: "s2", Type: SceneBattle, Enemy: "wolf"},
		},
	}}

	assert.Len(t, tables.Storyline("village_square"), 2)
	assert.Equal(t, "s2", tables.FinalSceneID("village_square"))
	assert.Empty(t, tables.FinalSceneID("capital_city"))

	s, ok := tables.Scene("village_square", "s2")
	require.True(t, ok)
	assert.Equal(t, "wolf", s.Enemy)

	_, ok = tables.Scene("village_square", "s9")
	assert.False(t, ok)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	tables := &Tables{
		Classes: map[string]Class{
			"warrior": {
				BaseStats:         map[string]int{StatHealth: 0},
				StartingAbilities: []string{"Ghost Strike"},
			},
		},
		Locations: map[string]Location{
			"village_square": {Name: "Village Square", IsCity: true, Actions: []Action{
				{ID: "v.fight", Type: ActionBattle, Target: "nobody"},
				{Label: "unnamed", Type: ActionShop},
				{ID: "v.shop", Type: ActionShop, ShopItems: []string{"ghost_item"}},
				{ID: "v.go", Type: ActionLocation, Target: "nowhere"},
				{ID: "v.quest", Type: ActionQuest, Target: "ghost_quest"},
				{ID: "v.weird", Type: "dance"},
			}},
		},
		Enemies:   map[string]Enemy{},
		Bosses:    map[string]Enemy{},
		Items:     map[string]Item{},
		Abilities: map[string]Ability{},
		Quests: map[string]Quest{
			"hunt": {Objectives: map[string]int{"nobody": 3}},
		},
		Storylines: map[string][]StoryScene{
			"village_square_storyline": {
				{ID: "s1", Type: SceneBattle, Enemy: "nobody"},
				{ID: "s2", Type: SceneLocation, Target: "nowhere"},
				{ID: "s3", Type: SceneDialogue, NextScene: "s99"},
			},
		},
		Events: map[string][]RandomEvent{
			"village_small_events": {
				{Name: "odd", Type: "mystery"},
				{Name: "fight", Type: EventChain, Scenes: []EventScene{{Type: SceneBattle, Enemy: "nobody"}}},
			},
		},
	}

	errs := tables.Validate()
	require.NotEmpty(t, errs)

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	joined := ""
	for _, m := range msgs {
		joined += m + "\n"
	}

	assert.Len(t, errs, 14)
	assert.Contains(t, joined, "base health must be positive")
	assert.Contains(t, joined, "unknown starting ability")
	assert.Contains(t, joined, "no stable id")
	assert.Contains(t, joined, "unknown enemy")
	assert.Contains(t, joined, "unknown location")
	assert.Contains(t, joined, "unknown quest")
	assert.Contains(t, joined, "unknown item")
	assert.Contains(t, joined, "unknown type")
	assert.Contains(t, joined, "links to unknown scene")
	assert.Contains(t, joined, "unknown event type")
}

func TestValidateAcceptsCompleteTables(t *testing.T) {
	tables := &Tables{
		Classes: map[string]Class{
			"warrior": {BaseStats: map[string]int{StatHealth: 100}, StartingAbilities: []string{"Slam"}},
		},
		Locations: map[string]Location{
			StartingCity: {Name: "Village Square", IsCity: true, Actions: []Action{
				{ID: "v.fight", Type: ActionBattle, Target: "wolf"},
			}},
		},
		Enemies:   map[string]Enemy{"wolf": {Name: "Wolf", Health: 30}},
		Bosses:    map[string]Enemy{},
		Items:     map[string]Item{},
		Abilities: map[string]Ability{"Slam": {Layers: []Layer{{Mult: 1.5, Type: DamagePhysical}}}},
		Quests:    map[string]Quest{},
	}

	assert.Empty(t, tables.Validate())
}

func TestItemSellPrice(t *testing.T) {
	assert.Equal(t, 20, (&Item{Price: 40}).SellPrice())
	assert.Equal(t, 10, (&Item{Price: 21}).SellPrice())
	assert.Equal(t, 1, (&Item{Price: 1}).SellPrice())
	assert.Equal(t, 1, (&Item{Price: 0}).SellPrice(), "worthless items still fetch a coin")
}

func TestAbilityUsesLeft(t *testing.T) {
	unlimited := &Ability{}
	assert.True(t, unlimited.UsesLeft(99))

	limited := &Ability{MaxUses: 2}
	assert.True(t, limited.UsesLeft(1))
	assert.False(t, limited.UsesLeft(2))
}

func TestMissingStartingCityIsFatal(t *testing.T) {
	tables := &Tables{
		Classes:   map[string]Class{},
		Locations: map[string]Location{},
	}

	errs := tables.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), StartingCity)
}
