package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questline-rpg/engine/pkg/combat"
	"github.com/questline-rpg/engine/pkg/content"
)

func TestNewStartsInClassSelection(t *testing.T) {
	s := New("user-1", time.Now())

	assert.Equal(t, ModeClassSelection, s.Mode)
	assert.Equal(t, "user-1", s.UserID())
	require.NotNil(t, s.Player)
	assert.False(t, s.Player.HasClass())
}

func TestSetModeClearsForeignPayloads(t *testing.T) {
	s := New("user-1", time.Now())

	s.SetMode(ModeBattle)
	s.Battle = &BattleState{
		Snapshot: combat.NewSnapshot(content.Enemy{ID: "wolf", Health: 20}, 90),
		Origin:   OriginExploration,
	}

	s.SetMode(ModeShop)
	assert.Nil(t, s.Battle, "battle payload dropped on mode change")
	s.Shop = &ShopState{Items: []string{"potion"}, ConfirmBuy: "potion"}

	s.SetMode(ModeExploring)
	assert.Nil(t, s.Shop)
	assert.Nil(t, s.Story)
	assert.Nil(t, s.Event)
	assert.Nil(t, s.InventoryView)
	assert.Empty(t, s.SelectedClass)
}

func TestSetModeKeepsMatchingPayload(t *testing.T) {
	s := New("user-1", time.Now())

	s.Story = &StoryCursor{City: "village_square", SceneID: "s2"}
	s.SetMode(ModeStory)
	require.NotNil(t, s.Story)
	assert.Equal(t, "s2", s.Story.SceneID)
}

func TestSetModeClearsRecoveryState(t *testing.T) {
	s := New("user-1", time.Now())

	s.SetMode(ModeRecovering)
	s.RecoverUntil = time.Now().Add(time.Minute)
	s.ResumeLocation = "player_camp"

	s.SetMode(ModeExploring)
	assert.True(t, s.RecoverUntil.IsZero())
	assert.Empty(t, s.ResumeLocation)
}

func TestRecovering(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := New("user-1", now)

	assert.False(t, s.Recovering(now), "not in recovery mode")

	s.SetMode(ModeRecovering)
	s.RecoverUntil = now.Add(10 * time.Second)
	assert.True(t, s.Recovering(now))
	assert.False(t, s.Recovering(now.Add(11*time.Second)), "deadline passed")
}
