package engine

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/questline-rpg/engine/pkg/content"
	"github.com/questline-rpg/engine/pkg/narration"
	"github.com/questline-rpg/engine/pkg/session"
)

// handleClassSelection runs the first-contact flow: class list, class
// detail, confirmation. Any unrecognized action re-displays the list.
func (e *Engine) handleClassSelection(sess *session.Session, action string) ([]narration.Narration, error) {
	sess.SetMode(session.ModeClassSelection)

	switch {
	case action == actClassConfirm && sess.SelectedClass != "":
		return e.confirmClass(sess)
	case action == actClassBack:
		sess.SelectedClass = ""
	case strings.HasPrefix(action, actClassPrefix):
		id := strings.TrimPrefix(action, actClassPrefix)
		if c, ok := e.tables.Class(id); ok {
			sess.SelectedClass = id
			return []narration.Narration{e.classDetail(c)}, nil
		}
	}
	return []narration.Narration{e.classList()}, nil
}

func (e *Engine) classList() narration.Narration {
	n := narration.Narration{Text: "🧭 Welcome, adventurer! Choose your class:"}
	for _, id := range slices.Sorted(maps.Keys(e.tables.Classes)) {
		c := e.tables.Classes[id]
		n.Actions = append(n.Actions, narration.Action{ID: actClassPrefix + id, Label: c.Name})
	}
	return n
}

func (e *Engine) classDetail(c content.Class) narration.Narration {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", c.Name, c.Description)
	fmt.Fprintf(&b, "❤️ Health: %d\n", c.BaseStats[content.StatHealth])
	fmt.Fprintf(&b, "⚔️ Attack: %d\n", c.BaseStats[content.StatAttack])
	fmt.Fprintf(&b, "🛡 Defense: %d\n", c.BaseStats[content.StatDefense])
	if len(c.StartingAbilities) > 0 {
		fmt.Fprintf(&b, "💥 Abilities: %s", strings.Join(c.StartingAbilities, ", "))
	}
	return narration.Narration{
		Text:  b.String(),
		Image: c.Image,
		Actions: []narration.Action{
			{ID: actClassConfirm, Label: "✅ Choose " + c.Name},
			{ID: actClassBack, Label: "↩️ Back"},
		},
	}
}

func (e *Engine) confirmClass(sess *session.Session) ([]narration.Narration, error) {
	p := sess.Player
	c, ok := e.tables.Class(sess.SelectedClass)
	if !ok {
		sess.SelectedClass = ""
		return []narration.Narration{e.classList()}, nil
	}

	p.SetClass(c)
	p.Location = content.StartingCity
	p.CurrentCity = content.StartingCity
	p.VisitLocation(content.StartingCity)
	sess.SetMode(session.ModeExploring)

	e.log.Info("class selected", "user_id", p.UserID, "class", c.ID)

	out := []narration.Narration{
		narration.Text(fmt.Sprintf("🎉 You are now a %s. Your journey begins!", c.Name)),
	}
	if q, ok := e.tables.Quest(content.IntroQuest); ok {
		p.ActiveQuests = append(p.ActiveQuests, content.IntroQuest)
		out = append(out, narration.Text(fmt.Sprintf("📜 New quest: %s\n%s", q.Name, q.Description)))
	}
	return append(out, e.locationView(sess)...), nil
}
