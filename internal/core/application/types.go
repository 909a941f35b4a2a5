package application

import (
	"math/big"

	"github.com/ark-network/raffle/internal/core/domain"
	"github.com/ark-network/raffle/internal/core/ports"
)

type Config struct {
	EntranceFee *big.Int
	Interval    int64
	// KeeperInterval is how often, in seconds, the automation job checks
	// whether the round can be closed. Zero disables the job.
	KeeperInterval int64
	// RequestTimeout is how long, in seconds, a randomness request can stay
	// unanswered before the operator can reissue it.
	RequestTimeout    int64
	OperatorAddress   string
	RandomnessRequest ports.RandomnessRequest
}

type RaffleInfo struct {
	State              domain.RaffleState
	RoundId            string
	EntranceFee        *big.Int
	Interval           int64
	StartTimestamp     int64
	Delta              int64
	NumPlayers         int
	CollectedValue     *big.Int
	RecentWinner       string
	Rounds             uint64
	PendingRequest     *domain.PendingRequest
	UpkeepNeeded       bool
	CoordinatorAddress string
	CoordinatorPubKey  string
	Timestamp          int64
}
