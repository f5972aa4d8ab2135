package tables

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedTables(t *testing.T) {
	tb, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 60, tb.MaxLevel())
	assert.Equal(t, 1, tb.LevelFor(0))
	assert.Equal(t, 1, tb.LevelFor(149))
	assert.Equal(t, 2, tb.LevelFor(150))
	assert.Equal(t, 60, tb.LevelFor(1_000_000))
	assert.Equal(t, 150, tb.ExperienceFor(2))

	reward, ok := tb.MissionReward(5)
	require.True(t, ok)
	assert.Equal(t, 50, reward)
	_, ok = tb.MissionReward(1)
	assert.False(t, ok)

	b, ok := tb.ItemBonus(2)
	require.True(t, ok)
	assert.Equal(t, 25, b.ExperiencePercent)

	n, ok := tb.QuestTarget(1)
	require.True(t, ok)
	assert.Equal(t, 3, n)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	doc := "levels: [0, 10, 30]\nmissions:\n  - map: 1\n    reward: 7\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	tb, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, tb.MaxLevel())
	assert.Equal(t, 3, tb.LevelFor(30))
	r, ok := tb.MissionReward(1)
	assert.True(t, ok)
	assert.Equal(t, 7, r)
}

func TestParseRejectsInvalidTables(t *testing.T) {
	_, err := Parse([]byte("levels: []"))
	assert.Error(t, err)

	_, err = Parse([]byte("levels: [0, 50, 20]"))
	assert.Error(t, err)

	_, err = Parse([]byte("levels: [0]\nitem_bonuses:\n  - id: 1\n  - id: 1\n"))
	assert.Error(t, err)
}
