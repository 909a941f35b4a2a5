package ports

import (
	"context"

	"github.com/ark-network/raffle/internal/core/domain"
)

type RepoManager interface {
	Events() domain.RaffleEventRepository
	Accounts() domain.AccountRepository
	Winners() domain.WinnerRepository
	// RunInTx runs fn in a single store transaction shared by every repository
	// call made with the ctx given to fn. The transaction commits only if fn
	// returns nil.
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	Close()
}
