package engine

import (
	"fmt"

	"github.com/questline-rpg/engine/pkg/content"
	"github.com/questline-rpg/engine/pkg/narration"
	"github.com/questline-rpg/engine/pkg/session"
)

// startStory begins or resumes the current city's storyline. Story
// progress records the last completed scene; resuming picks up at the
// scene after it.
func (e *Engine) startStory(sess *session.Session) ([]narration.Narration, error) {
	p := sess.Player
	city := p.CurrentCity

	scenes := e.tables.Storyline(city)
	if len(scenes) == 0 {
		out := []narration.Narration{narration.Text("📖 There is no tale to follow here.")}
		return append(out, e.locationView(sess)...), nil
	}

	start := scenes[0]
	if last := p.StoryProgress[city]; last != "" {
		done, ok := e.tables.Scene(city, last)
		if ok {
			next, more := nextScene(scenes, done)
			if !more {
				// Storyline finished; the entry action should be hidden,
				// but a stale client may still send it.
				out := []narration.Narration{narration.Text("📖 You have already seen this tale through.")}
				return append(out, e.locationView(sess)...), nil
			}
			start = next
		}
	}

	sess.SetMode(session.ModeStory)
	sess.Story = &session.StoryCursor{City: city, SceneID: start.ID}
	return e.playScene(sess)
}

func (e *Engine) handleStory(sess *session.Session, action string) ([]narration.Narration, error) {
	if sess.Story == nil {
		sess.SetMode(session.ModeExploring)
		return e.locationView(sess), nil
	}
	if action == actStoryContinue {
		return e.advanceStory(sess)
	}
	return e.playScene(sess)
}

// playScene renders the scene under the cursor. Dialogue and reward
// scenes wait for a continue; battle scenes hand off to combat; location
// scenes pay out, move the player and end the story session.
func (e *Engine) playScene(sess *session.Session) ([]narration.Narration, error) {
	p := sess.Player
	cur := sess.Story
	scene, ok := e.tables.Scene(cur.City, cur.SceneID)
	if !ok {
		sess.SetMode(session.ModeExploring)
		return e.locationView(sess), nil
	}

	switch scene.Type {
	case content.SceneBattle:
		// Victory resumes after this scene; the cursor travels with the
		// battle state.
		return e.startBattle(sess, scene.Enemy, session.OriginStory)

	case content.SceneLocation:
		p.StoryProgress[cur.City] = scene.ID
		target := scene.Target
		out := []narration.Narration{}
		if scene.Text != "" {
			out = append(out, narration.Narration{Text: scene.Text, Image: scene.Image})
		}
		out = append(out, e.grantScene(sess, scene)...)
		return append(out, e.moveTo(sess, target)...), nil

	default:
		// Dialogue and reward scenes.
		n := narration.Narration{Text: sceneText(scene), Image: scene.Image}
		extra := e.grantScene(sess, scene)
		n.Actions = []narration.Action{{ID: actStoryContinue, Label: "▶️ Continue"}}
		return append([]narration.Narration{n}, extra...), nil
	}
}

// grantScene applies a scene's payout: rewards, level-up checks and the
// city unlock. The cursor remembers the last paid scene, so stale input
// that re-renders a scene cannot pay twice.
func (e *Engine) grantScene(sess *session.Session, scene content.StoryScene) []narration.Narration {
	p := sess.Player
	cur := sess.Story

	var out []narration.Narration
	if scene.Rewards != nil && cur.Granted != scene.ID {
		lines := e.applyRewards(p, *scene.Rewards)
		lines = append(lines, e.levelUp(p)...)
		if len(lines) > 0 {
			out = append(out, joinLines(lines, nil))
		}
	}
	cur.Granted = scene.ID

	if scene.UnlockCity != "" && !p.HasUnlockedCity(scene.UnlockCity) {
		p.UnlockCity(scene.UnlockCity)
		name := scene.UnlockCity
		if loc, ok := e.tables.Location(scene.UnlockCity); ok {
			name = loc.Name
		}
		out = append(out, narration.Text(fmt.Sprintf("🗺 A new city is open to you: %s!", name)))
	}
	return out
}

// advanceStory marks the cursor's scene completed and moves to the next
// one, or closes the storyline when there is none.
func (e *Engine) advanceStory(sess *session.Session) ([]narration.Narration, error) {
	p := sess.Player
	cur := sess.Story
	scenes := e.tables.Storyline(cur.City)
	scene, ok := e.tables.Scene(cur.City, cur.SceneID)
	if !ok {
		sess.SetMode(session.ModeExploring)
		return e.locationView(sess), nil
	}

	p.StoryProgress[cur.City] = scene.ID

	next, more := nextScene(scenes, scene)
	if !more {
		sess.SetMode(session.ModeExploring)
		e.log.Info("storyline completed", "user_id", p.UserID, "city", cur.City)
		out := []narration.Narration{narration.Text("📖 The tale of this city is complete.")}
		return append(out, e.locationView(sess)...), nil
	}
	cur.SceneID = next.ID
	return e.playScene(sess)
}

// nextScene resolves the scene following s: an explicit next_scene link
// wins, otherwise declaration order.
func nextScene(scenes []content.StoryScene, s content.StoryScene) (content.StoryScene, bool) {
	if s.NextScene != "" {
		for _, c := range scenes {
			if c.ID == s.NextScene {
				return c, true
			}
		}
		return content.StoryScene{}, false
	}
	for i, c := range scenes {
		if c.ID == s.ID {
			if i+1 < len(scenes) {
				return scenes[i+1], true
			}
			return content.StoryScene{}, false
		}
	}
	return content.StoryScene{}, false
}

func sceneText(s content.StoryScene) string {
	if s.Title != "" {
		return fmt.Sprintf("📖 %s\n\n%s", s.Title, s.Text)
	}
	return s.Text
}
