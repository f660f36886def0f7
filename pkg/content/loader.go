package content

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads every content table from dir. Each table lives in its own
// file (classes, locations, enemies, bosses, items, abilities, quests,
// story, random_events) with a .json or .yaml/.yml extension. Missing
// files yield empty tables; the validator decides what is fatal.
func Load(dir string) (*Tables, error) {
	t := &Tables{
		Classes:    make(map[string]Class),
		Locations:  make(map[string]Location),
		Enemies:    make(map[string]Enemy),
		Bosses:     make(map[string]Enemy),
		Items:      make(map[string]Item),
		Abilities:  make(map[string]Ability),
		Quests:     make(map[string]Quest),
		Storylines: make(map[string][]StoryScene),
		Events:     make(map[string][]RandomEvent),
	}

	if err := loadTable(dir, "classes", &t.Classes); err != nil {
		return nil, err
	}
	if err := loadTable(dir, "locations", &t.Locations); err != nil {
		return nil, err
	}
	if err := loadTable(dir, "enemies", &t.Enemies); err != nil {
		return nil, err
	}
	if err := loadTable(dir, "bosses", &t.Bosses); err != nil {
		return nil, err
	}
	if err := loadTable(dir, "items", &t.Items); err != nil {
		return nil, err
	}
	if err := loadTable(dir, "abilities", &t.Abilities); err != nil {
		return nil, err
	}
	if err := loadTable(dir, "quests", &t.Quests); err != nil {
		return nil, err
	}
	if err := loadTable(dir, "story", &t.Storylines); err != nil {
		return nil, err
	}
	if err := loadTable(dir, "random_events", &t.Events); err != nil {
		return nil, err
	}

	// Table keys double as entity ids.
	for id, c := range t.Classes {
		c.ID = id
		t.Classes[id] = c
	}
	for id, l := range t.Locations {
		l.ID = id
		t.Locations[id] = l
	}
	for id, e := range t.Enemies {
		e.ID = id
		t.Enemies[id] = e
	}
	for id, b := range t.Bosses {
		b.ID = id
		b.IsBoss = true
		t.Bosses[id] = b
	}
	for id, it := range t.Items {
		it.ID = id
		t.Items[id] = it
	}
	for name, a := range t.Abilities {
		if a.Name == "" {
			a.Name = name
			t.Abilities[name] = a
		}
	}
	for id, q := range t.Quests {
		q.ID = id
		t.Quests[id] = q
	}

	return t, nil
}

// loadTable finds <name>.json, <name>.yaml or <name>.yml under dir and
// unmarshals it into out. A missing file is not an error.
func loadTable(dir, name string, out any) error {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(dir, name+ext)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		switch ext {
		case ".json":
			if err := json.Unmarshal(data, out); err != nil {
				return fmt.Errorf("failed to parse %s: %w", path, err)
			}
		default:
			if err := yaml.Unmarshal(data, out); err != nil {
				return fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
		return nil
	}
	return nil
}
