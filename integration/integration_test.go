//go:build integration

// Package integration plays a full game against a running API instance.
// Start the stack first (docker compose up or cmd/api against a local
// Redis), then:
//
//	go test -tags integration ./integration/
//
// API_BASE_URL overrides the default http://localhost:8080.
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type action struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type narration struct {
	Text    string   `json:"text"`
	Actions []action `json:"actions,omitempty"`
}

type eventRequest struct {
	UserID string `json:"user_id"`
	Action string `json:"action"`
}

type eventResponse struct {
	Narrations []narration `json:"narrations"`
}

func baseURL() string {
	if u := os.Getenv("API_BASE_URL"); u != "" {
		return u
	}
	return "http://localhost:8080"
}

type client struct {
	t      *testing.T
	http   *http.Client
	base   string
	userID string
}

func newClient(t *testing.T) *client {
	t.Helper()
	c := &client{
		t:      t,
		http:   &http.Client{Timeout: 10 * time.Second},
		base:   baseURL(),
		userID: "itest-" + uuid.NewString()[:8],
	}
	t.Cleanup(c.deleteSession)
	return c
}

// send posts one action and returns the narrations.
func (c *client) send(act string) []narration {
	c.t.Helper()
	body, err := json.Marshal(eventRequest{UserID: c.userID, Action: act})
	require.NoError(c.t, err)

	resp, err := c.http.Post(c.base+"/v1/event", "application/json", bytes.NewReader(body))
	require.NoError(c.t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(c.t, http.StatusOK, resp.StatusCode)

	var out eventResponse
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(c.t, out.Narrations)
	return out.Narrations
}

func (c *client) deleteSession() {
	req, err := http.NewRequest(http.MethodDelete, c.base+"/v1/session/"+c.userID, nil)
	if err != nil {
		return
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return
	}
	_ = resp.Body.Close()
}

// actionIDs flattens every offered action id.
func actionIDs(ns []narration) []string {
	var ids []string
	for _, n := range ns {
		for _, a := range n.Actions {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// firstWithPrefix returns the first offered action id with the prefix.
func firstWithPrefix(ns []narration, prefix string) (string, bool) {
	for _, id := range actionIDs(ns) {
		if len(id) >= len(prefix) && id[:len(prefix)] == prefix {
			return id, true
		}
	}
	return "", false
}

func TestHealth(t *testing.T) {
	resp, err := http.Get(baseURL() + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClassSelectionAndExploration(t *testing.T) {
	c := newClient(t)

	// First contact offers the class list.
	out := c.send("")
	classID, ok := firstWithPrefix(out, "class:")
	require.True(t, ok, "expected class options, got %v", actionIDs(out))

	out = c.send(classID)
	require.Contains(t, actionIDs(out), "class.confirm")

	out = c.send("class.confirm")
	assert.Contains(t, actionIDs(out), "nav.stats")
	assert.Contains(t, actionIDs(out), "nav.inventory")

	// The stored session is readable over the API.
	resp, err := http.Get(baseURL() + "/v1/session/" + c.userID)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sess struct {
		Mode   string `json:"mode"`
		Player struct {
			Gold     int    `json:"gold"`
			Location string `json:"location"`
		} `json:"player"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sess))
	assert.Equal(t, "exploring", sess.Mode)
	assert.Equal(t, 50, sess.Player.Gold)
	assert.NotEmpty(t, sess.Player.Location)
}

func TestStatsView(t *testing.T) {
	c := newClient(t)

	out := c.send("")
	classID, ok := firstWithPrefix(out, "class:")
	require.True(t, ok)
	c.send(classID)
	c.send("class.confirm")

	out = c.send("nav.stats")
	var text string
	for _, n := range out {
		text += n.Text + "\n"
	}
	assert.Contains(t, text, "Gold")
	assert.Contains(t, text, "Fatigue")
}

func TestBattleRoundTrip(t *testing.T) {
	c := newClient(t)

	out := c.send("")
	classID, ok := firstWithPrefix(out, "class:")
	require.True(t, ok)
	c.send(classID)
	out = c.send("class.confirm")

	// Walk until a battle is offered, up to a few hops deep.
	for range 3 {
		if _, ok := firstWithPrefix(out, "battle."); ok {
			break
		}
		// Prefer stepping into a sub-location where the fights are.
		next := ""
		for _, id := range actionIDs(out) {
			if len(id) > 4 && id[:4] != "nav." && id[:3] != "tp:" {
				next = id
				break
			}
		}
		if next == "" {
			t.Skip("no explorable actions offered by the loaded content")
		}
		out = c.send(next)
	}

	if _, ok := firstWithPrefix(out, "battle."); !ok {
		t.Skip("no battle reachable from the starting location")
	}

	// One attack round: either the fight continues, ends in victory, or
	// the player falls; all are valid narrations.
	out = c.send("battle.attack")
	require.NotEmpty(t, out)

	// Flee if the fight is still on so the session ends clean.
	if ids := actionIDs(out); len(ids) > 0 {
		for _, id := range ids {
			if id == "battle.flee" {
				c.send(id)
				break
			}
		}
	}
}

func TestSessionRestart(t *testing.T) {
	c := newClient(t)

	out := c.send("")
	classID, ok := firstWithPrefix(out, "class:")
	require.True(t, ok)
	c.send(classID)
	c.send("class.confirm")

	req, err := http.NewRequest(http.MethodDelete, baseURL()+"/v1/session/"+c.userID, nil)
	require.NoError(t, err)
	resp, err := c.http.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// A fresh session is back in class selection.
	out = c.send("")
	_, ok = firstWithPrefix(out, "class:")
	assert.True(t, ok, "restarted user should pick a class again")
}

func TestUnknownActionsNeverError(t *testing.T) {
	c := newClient(t)

	for _, act := range []string{"", "garbage", "battle.attack", "shop.yes", fmt.Sprintf("inv.item:%d", time.Now().Unix())} {
		out := c.send(act)
		require.NotEmpty(t, out, "action %q must narrate something", act)
	}
}
