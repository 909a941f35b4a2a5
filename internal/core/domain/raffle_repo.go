package domain

import (
	"context"
	"math/big"
)

type RaffleEventRepository interface {
	Save(ctx context.Context, id string, events ...RaffleEvent) (*Raffle, error)
	// Load returns nil if no event was ever saved for the given raffle.
	Load(ctx context.Context, id string) (*Raffle, error)
	Close()
}

type Account struct {
	Address    string
	Balance    *big.Int
	NotPayable bool
}

type AccountRepository interface {
	// GetAccount returns an empty payable account for unknown addresses.
	GetAccount(ctx context.Context, address string) (*Account, error)
	Credit(ctx context.Context, address string, amount *big.Int) error
	Debit(ctx context.Context, address string, amount *big.Int) error
	SetPayable(ctx context.Context, address string, payable bool) error
	Close()
}

type Winner struct {
	RoundId    string
	Address    string
	Prize      *big.Int
	RequestId  uint64
	NumPlayers int
	Timestamp  int64
}

type WinnerRepository interface {
	AddWinner(ctx context.Context, winner Winner) error
	// GetWinners returns the most recent winners first.
	GetWinners(ctx context.Context, limit int) ([]Winner, error)
	GetWinnerByRound(ctx context.Context, roundId string) (*Winner, error)
	Close()
}
