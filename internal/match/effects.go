package match

import "github.com/walejandromt/KicksEmu/internal/tables"

// BonusEffect applies one consumable bonus to a reward in place. base is the base
// reward before match bonuses.
type BonusEffect func(base int, experience, points *int)

// BonusEffects resolves a bonus id from an inventory item to its effect.
type BonusEffects interface {
	Effect(id int) (BonusEffect, bool)
}

type tableEffects struct {
	t *tables.Tables
}

// TableEffects resolves bonus ids through the item bonus table.
func TableEffects(t *tables.Tables) BonusEffects {
	return tableEffects{t: t}
}

func (e tableEffects) Effect(id int) (BonusEffect, bool) {
	b, ok := e.t.ItemBonus(id)
	if !ok {
		return nil, false
	}
	return func(base int, experience, points *int) {
		onePercent := base / 100
		*experience += onePercent*b.ExperiencePercent + b.ExperienceFlat
		*points += onePercent*b.PointsPercent + b.PointsFlat
	}, true
}
