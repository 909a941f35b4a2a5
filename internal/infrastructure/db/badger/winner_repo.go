package badgerdb

import (
	"context"
	"fmt"
	"math/big"
	"path/filepath"

	"github.com/ark-network/raffle/internal/core/domain"
	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

const winnerStoreDir = "winners"

type winnerDTO struct {
	RoundId    string
	Address    string
	Prize      string
	RequestId  uint64
	NumPlayers int
	Timestamp  int64
}

type winnerRepository struct {
	store *badgerhold.Store
}

func NewWinnerRepository(config ...interface{}) (domain.WinnerRepository, error) {
	if len(config) != 2 {
		return nil, fmt.Errorf("invalid config")
	}
	baseDir, ok := config[0].(string)
	if !ok {
		return nil, fmt.Errorf("invalid base directory")
	}
	var logger badger.Logger
	if config[1] != nil {
		logger, ok = config[1].(badger.Logger)
		if !ok {
			return nil, fmt.Errorf("invalid logger")
		}
	}

	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, winnerStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open winner store: %s", err)
	}

	return &winnerRepository{store}, nil
}

func (r *winnerRepository) AddWinner(
	ctx context.Context, winner domain.Winner,
) error {
	dto := winnerDTO{
		RoundId:    winner.RoundId,
		Address:    winner.Address,
		Prize:      winner.Prize.String(),
		RequestId:  winner.RequestId,
		NumPlayers: winner.NumPlayers,
		Timestamp:  winner.Timestamp,
	}
	if err := r.store.Upsert(winner.RoundId, dto); err != nil {
		return fmt.Errorf("failed to add winner of round %s: %s", winner.RoundId, err)
	}
	return nil
}

func (r *winnerRepository) GetWinners(
	ctx context.Context, limit int,
) ([]domain.Winner, error) {
	query := badgerhold.Where("Timestamp").Ge(int64(0)).SortBy("Timestamp").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}
	return r.findWinners(query)
}

func (r *winnerRepository) GetWinnerByRound(
	ctx context.Context, roundId string,
) (*domain.Winner, error) {
	winners, err := r.findWinners(badgerhold.Where("RoundId").Eq(roundId))
	if err != nil {
		return nil, err
	}
	if len(winners) <= 0 {
		return nil, fmt.Errorf("winner of round %s not found", roundId)
	}
	return &winners[0], nil
}

func (r *winnerRepository) Close() {
	r.store.Close()
}

func (r *winnerRepository) findWinners(
	query *badgerhold.Query,
) ([]domain.Winner, error) {
	var dtos []winnerDTO
	if err := r.store.Find(&dtos, query); err != nil {
		return nil, err
	}

	winners := make([]domain.Winner, 0, len(dtos))
	for _, dto := range dtos {
		prize, ok := new(big.Int).SetString(dto.Prize, 10)
		if !ok {
			return nil, fmt.Errorf("invalid stored prize for round %s", dto.RoundId)
		}
		winners = append(winners, domain.Winner{
			RoundId:    dto.RoundId,
			Address:    dto.Address,
			Prize:      prize,
			RequestId:  dto.RequestId,
			NumPlayers: dto.NumPlayers,
			Timestamp:  dto.Timestamp,
		})
	}
	return winners, nil
}
