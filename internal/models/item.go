package models

import "time"

// Expiration describes how an inventory item runs out.
type Expiration int

const (
	ExpirationUsage     Expiration = iota // consumed by a number of usages
	ExpirationDays                        // expires at a timestamp
	ExpirationPermanent                   // never expires
)

// Item is one entry of a player's inventory.
type Item struct {
	InventoryID   int        `json:"inventory_id"`
	ItemID        int        `json:"item_id"`
	BonusOne      int        `json:"bonus_one"`
	BonusTwo      int        `json:"bonus_two"`
	SelectedUsage bool       `json:"selected_usage"`
	Expiration    Expiration `json:"expiration"`
	Usages        int        `json:"usages"`
	ExpiresAt     time.Time  `json:"expires_at"`
}

// Expired reports whether the item can no longer be used at now.
func (i Item) Expired(now time.Time) bool {
	switch i.Expiration {
	case ExpirationUsage:
		return i.Usages <= 0
	case ExpirationDays:
		return !i.ExpiresAt.After(now)
	default:
		return false
	}
}

// Inventory is an insertion-ordered snapshot of a player's items.
type Inventory []Item

// Usable returns the non-expired items without modifying the inventory.
func (inv Inventory) Usable(now time.Time) Inventory {
	out := make(Inventory, 0, len(inv))
	for _, it := range inv {
		if !it.Expired(now) {
			out = append(out, it)
		}
	}
	return out
}

// Prune drops expired entries in place and returns the shortened inventory.
func (inv Inventory) Prune(now time.Time) Inventory {
	n := 0
	for _, it := range inv {
		if !it.Expired(now) {
			inv[n] = it
			n++
		}
	}
	return inv[:n]
}

// SelectedForUse returns the usable items the player marked for consumption.
func (inv Inventory) SelectedForUse(now time.Time) Inventory {
	var out Inventory
	for _, it := range inv.Usable(now) {
		if it.SelectedUsage {
			out = append(out, it)
		}
	}
	return out
}
