// Package tables loads the static game-balance data (level thresholds, mission rewards,
// consumable item bonuses and quest targets) from YAML.
package tables

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTables []byte

// ItemBonus describes the effect of one consumable bonus id.
type ItemBonus struct {
	ID                int    `yaml:"id"`
	Name              string `yaml:"name"`
	ExperiencePercent int    `yaml:"experience_percent"`
	PointsPercent     int    `yaml:"points_percent"`
	ExperienceFlat    int    `yaml:"experience_flat"`
	PointsFlat        int    `yaml:"points_flat"`
}

type mission struct {
	Map    int `yaml:"map"`
	Reward int `yaml:"reward"`
}

type quest struct {
	ID      int `yaml:"id"`
	Matches int `yaml:"matches"`
}

type document struct {
	Levels      []int       `yaml:"levels"`
	Missions    []mission   `yaml:"missions"`
	ItemBonuses []ItemBonus `yaml:"item_bonuses"`
	Quests      []quest     `yaml:"quests"`
}

// Tables is immutable after Load and safe for concurrent reads.
type Tables struct {
	levels   []int
	missions map[int]int
	bonuses  map[int]ItemBonus
	quests   map[int]int
}

// Load parses the tables file at path, or the embedded defaults when path is empty.
func Load(path string) (*Tables, error) {
	raw := defaultTables
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read tables file: %w", err)
		}
		raw = b
	}
	return Parse(raw)
}

// Parse builds Tables from a YAML document.
func Parse(raw []byte) (*Tables, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse tables: %w", err)
	}
	if len(doc.Levels) == 0 {
		return nil, fmt.Errorf("tables: at least one level threshold is required")
	}
	if !sort.IntsAreSorted(doc.Levels) {
		return nil, fmt.Errorf("tables: level thresholds must be ascending")
	}

	t := &Tables{
		levels:   doc.Levels,
		missions: make(map[int]int, len(doc.Missions)),
		bonuses:  make(map[int]ItemBonus, len(doc.ItemBonuses)),
		quests:   make(map[int]int, len(doc.Quests)),
	}
	for _, m := range doc.Missions {
		t.missions[m.Map] = m.Reward
	}
	for _, b := range doc.ItemBonuses {
		if _, dup := t.bonuses[b.ID]; dup {
			return nil, fmt.Errorf("tables: duplicate item bonus id %d", b.ID)
		}
		t.bonuses[b.ID] = b
	}
	for _, q := range doc.Quests {
		t.quests[q.ID] = q.Matches
	}
	return t, nil
}

// MaxLevel is the highest reachable level.
func (t *Tables) MaxLevel() int { return len(t.levels) }

// LevelFor returns the level a player with the given total experience has reached.
func (t *Tables) LevelFor(experience int) int {
	// first threshold strictly greater than experience
	i := sort.Search(len(t.levels), func(i int) bool { return t.levels[i] > experience })
	if i == 0 {
		return 1
	}
	return i
}

// ExperienceFor returns the total experience required to reach level.
func (t *Tables) ExperienceFor(level int) int {
	switch {
	case level <= 1:
		return t.levels[0]
	case level > len(t.levels):
		return t.levels[len(t.levels)-1]
	}
	return t.levels[level-1]
}

// MissionReward returns the fixed mission reward for matches played on mapID.
func (t *Tables) MissionReward(mapID int) (int, bool) {
	r, ok := t.missions[mapID]
	return r, ok
}

// ItemBonus looks up a consumable bonus effect by id.
func (t *Tables) ItemBonus(id int) (ItemBonus, bool) {
	b, ok := t.bonuses[id]
	return b, ok
}

// QuestTarget returns how many matches quest id requires, or false once no such quest exists.
func (t *Tables) QuestTarget(id int) (int, bool) {
	n, ok := t.quests[id]
	return n, ok
}
