package match

import "context"

// levelCache memoizes player levels for the lifetime of one handler run.
type levelCache struct {
	levels map[int]int
}

func newLevelCache() *levelCache {
	return &levelCache{levels: make(map[int]int)}
}

func (c *levelCache) level(ctx context.Context, repo Repository, playerID int) (int, error) {
	if l, ok := c.levels[playerID]; ok {
		return l, nil
	}
	l, err := repo.PlayerLevel(ctx, playerID)
	if err != nil {
		return 0, err
	}
	c.levels[playerID] = l
	return l, nil
}
