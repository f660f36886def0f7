// Package narration defines the payloads the engine hands to the
// transport layer. The engine never depends on a rendering format; a
// transport is free to turn actions into keyboards, buttons or plain
// text menus.
package narration

// Action is one option the player may take next. ID is the stable
// identifier the transport must echo back; Label is display text only.
type Action struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Narration is one outbound message: text, an optional image reference
// and the set of actions now available. A single inbound event may
// produce several narrations (battle log lines, reward summaries, the
// next location view).
type Narration struct {
	Text    string   `json:"text"`
	Image   string   `json:"image,omitempty"`
	Actions []Action `json:"actions,omitempty"`
}

// Text is a convenience constructor for an action-less narration.
func Text(text string) Narration {
	return Narration{Text: text}
}
