package match

import (
	"context"

	"github.com/walejandromt/KicksEmu/internal/models"
)

// Repository is the player persistence used while rewarding one match. Every call made
// through it during a match runs inside the same transaction.
type Repository interface {
	Player(ctx context.Context, playerID int) (models.Player, error)
	PlayerLevel(ctx context.Context, playerID int) (int, error)
	Inventory(ctx context.Context, playerID int) (models.Inventory, error)
	SumRewards(ctx context.Context, playerID, experience, points int) error
	SetPlayerLevel(ctx context.Context, playerID, level int) error
	ActiveQuest(ctx context.Context, playerID int) (models.Quest, bool, error)
	SetQuest(ctx context.Context, playerID int, q models.Quest) error
}

// TxRunner runs fn inside one transaction, committing if fn returns nil and rolling
// back otherwise.
type TxRunner interface {
	InTx(ctx context.Context, fn func(Repository) error) error
}

// TxFunc adapts a function to TxRunner.
type TxFunc func(ctx context.Context, fn func(Repository) error) error

func (f TxFunc) InTx(ctx context.Context, fn func(Repository) error) error { return f(ctx, fn) }

// Publisher receives the record of every rewarded match.
type Publisher interface {
	PublishMatch(ctx context.Context, rec models.MatchRecord) error
}

// Events reports server-wide bonus windows.
type Events interface {
	IsGoldenTime(ctx context.Context) bool
}
