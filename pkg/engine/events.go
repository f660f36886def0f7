package engine

import (
	"fmt"

	"github.com/questline-rpg/engine/pkg/content"
	"github.com/questline-rpg/engine/pkg/narration"
	"github.com/questline-rpg/engine/pkg/session"
)

// rollEvent draws a random encounter from the current city's pool,
// filtered down to what the player's fatigue can pay for. The fatigue
// cost is spent up front, win or lose.
func (e *Engine) rollEvent(sess *session.Session) ([]narration.Narration, error) {
	p := sess.Player
	now := e.now()

	pool := e.tables.EventPool(p.CurrentCity)
	if len(pool) == 0 {
		out := []narration.Narration{narration.Text("🌫 Nothing stirs here.")}
		return append(out, e.locationView(sess)...), nil
	}

	affordable := pool[:0:0]
	for _, ev := range pool {
		if p.CanAfford(now, ev.FatigueCost) {
			affordable = append(affordable, ev)
		}
	}
	if len(affordable) == 0 {
		out := []narration.Narration{narration.Text("😮‍💨 You are too exhausted to wander. Rest a while.")}
		return append(out, e.locationView(sess)...), nil
	}

	ev := affordable[e.rng.IntN(len(affordable))]
	p.SpendFatigue(now, ev.FatigueCost)
	e.log.Info("random event", "user_id", p.UserID, "event", ev.Name, "type", ev.Type)

	switch ev.Type {
	case content.EventChain:
		sess.SetMode(session.ModeRandomEvent)
		sess.Event = &session.EventCursor{City: p.CurrentCity, Scenes: ev.Scenes}
		out := []narration.Narration{}
		if ev.Description != "" {
			out = append(out, narration.Narration{Text: fmt.Sprintf("❗ %s\n%s", ev.Name, ev.Description), Image: ev.Image})
		}
		return append(out, e.playEventScene(sess)...), nil

	default:
		// One-shot reward events show their payout and offer another roll.
		sess.SetMode(session.ModeRandomEvent)
		lines := []string{fmt.Sprintf("❗ %s", ev.Name)}
		if ev.Description != "" {
			lines = append(lines, ev.Description)
		}
		if ev.Rewards != nil {
			lines = append(lines, e.applyRewards(p, *ev.Rewards)...)
			lines = append(lines, e.levelUp(p)...)
		}
		n := joinLines(lines, eventEndActions())
		n.Image = ev.Image
		return []narration.Narration{n}, nil
	}
}

func eventEndActions() []narration.Action {
	return []narration.Action{
		{ID: actEventAgain, Label: "🔍 Keep exploring"},
		{ID: actEventLeave, Label: "↩️ Return"},
	}
}

func (e *Engine) handleRandomEvent(sess *session.Session, action string) ([]narration.Narration, error) {
	switch action {
	case actEventLeave:
		sess.SetMode(session.ModeExploring)
		return e.locationView(sess), nil
	case actEventAgain:
		return e.rollEvent(sess)
	case actEventNext:
		if sess.Event != nil {
			sess.Event.Index++
			return e.playEventScene(sess), nil
		}
	}
	if sess.Event != nil {
		return e.playEventScene(sess), nil
	}
	return []narration.Narration{joinLines([]string{"❗ The moment passes."}, eventEndActions())}, nil
}

// playEventScene renders the chain scene under the cursor, or closes the
// chain when the script is exhausted.
func (e *Engine) playEventScene(sess *session.Session) []narration.Narration {
	p := sess.Player
	cur := sess.Event
	if cur == nil || cur.Index >= len(cur.Scenes) {
		return []narration.Narration{joinLines([]string{"🌄 The path ends here."}, eventEndActions())}
	}
	scene := cur.Scenes[cur.Index]

	switch scene.Type {
	case content.SceneBattle:
		// Victory resumes at the scene after this one.
		cur.Index++
		out, err := e.startBattle(sess, scene.Enemy, session.OriginEvent)
		if err != nil {
			// Broken content reference; skip the scene instead of
			// stranding the player.
			e.log.Error("event battle scene skipped", "user_id", p.UserID, "enemy", scene.Enemy, "error", err)
			sess.SetMode(session.ModeRandomEvent)
			sess.Event = cur
			return e.playEventScene(sess)
		}
		return out

	case content.SceneReward:
		var lines []string
		if scene.Text != "" {
			lines = append(lines, scene.Text)
		}
		// Pay out once; a re-rendered scene shows its text only.
		if scene.Rewards != nil && cur.Index >= cur.Granted {
			lines = append(lines, e.applyRewards(p, *scene.Rewards)...)
			lines = append(lines, e.levelUp(p)...)
			cur.Granted = cur.Index + 1
		}
		n := joinLines(lines, []narration.Action{{ID: actEventNext, Label: "▶️ Continue"}})
		n.Image = scene.Image
		return []narration.Narration{n}

	default:
		n := narration.Narration{
			Text:    scene.Text,
			Image:   scene.Image,
			Actions: []narration.Action{{ID: actEventNext, Label: "▶️ Continue"}},
		}
		return []narration.Narration{n}
	}
}
