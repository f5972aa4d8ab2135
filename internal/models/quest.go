package models

// Quest is a player's active quest and how many qualifying matches it still needs.
type Quest struct {
	ID        int `json:"id"`
	Remaining int `json:"remaining"`
}
