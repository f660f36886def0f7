package main

import (
	"fmt"
	"os"
	"regexp"

	"github.com/questline-rpg/engine/pkg/content"
)

// validate loads a content directory and reports every cross-reference
// problem, so content authors get a full report before deploying.
func main() {
	dir := "./data"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	fmt.Printf("Validating content in %s...\n", dir)

	tables, err := content.Load(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load content: %v\n", err)
		os.Exit(1)
	}

	var problems []string
	for _, err := range tables.Validate() {
		problems = append(problems, "  - "+err.Error())
	}
	problems = append(problems, checkIDFormats(tables)...)

	if len(problems) > 0 {
		fmt.Fprintln(os.Stderr, "Validation errors:")
		for _, p := range problems {
			fmt.Fprintln(os.Stderr, p)
		}
		os.Exit(1)
	}

	fmt.Printf("Content is valid: %d classes, %d locations, %d enemies, %d bosses, %d items, %d abilities, %d quests\n",
		len(tables.Classes), len(tables.Locations),
		len(tables.Enemies), len(tables.Bosses),
		len(tables.Items), len(tables.Abilities), len(tables.Quests))
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

// checkIDFormats enforces lowercase snake_case ids across every table.
func checkIDFormats(t *content.Tables) []string {
	var problems []string
	check := func(kind, id string) {
		if !validIDRegex.MatchString(id) {
			problems = append(problems, fmt.Sprintf("  - %s id %q should be lowercase snake_case", kind, id))
		}
	}
	for id := range t.Classes {
		check("class", id)
	}
	for id, loc := range t.Locations {
		check("location", id)
		for _, a := range loc.Actions {
			if a.ID == "" {
				continue
			}
			// Action ids allow a namespace prefix like "shop.weapons".
			for _, part := range regexp.MustCompile(`[.:]`).Split(a.ID, -1) {
				check("action", part)
			}
		}
	}
	for id := range t.Enemies {
		check("enemy", id)
	}
	for id := range t.Bosses {
		check("boss", id)
	}
	for id := range t.Items {
		check("item", id)
	}
	for id := range t.Quests {
		check("quest", id)
	}
	return problems
}
