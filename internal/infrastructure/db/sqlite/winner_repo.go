package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"

	"github.com/ark-network/raffle/internal/core/domain"
)

const (
	insertWinner = `
INSERT INTO winner (round_id, address, prize, request_id, num_players, timestamp)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(round_id) DO UPDATE SET
    address = excluded.address,
    prize = excluded.prize,
    request_id = excluded.request_id,
    num_players = excluded.num_players,
    timestamp = excluded.timestamp`

	selectWinners = `
SELECT round_id, address, prize, request_id, num_players, timestamp
FROM winner ORDER BY timestamp DESC, rowid DESC`

	selectWinnerByRound = `
SELECT round_id, address, prize, request_id, num_players, timestamp
FROM winner WHERE round_id = ?`
)

type winnerRepository struct {
	db *sql.DB
}

func NewWinnerRepository(config ...interface{}) (domain.WinnerRepository, error) {
	if len(config) != 1 {
		return nil, fmt.Errorf("invalid config")
	}
	db, ok := config[0].(*sql.DB)
	if !ok {
		return nil, fmt.Errorf("cannot open winner repository: invalid config, expected db at 0")
	}

	return &winnerRepository{db}, nil
}

func (r *winnerRepository) AddWinner(ctx context.Context, winner domain.Winner) error {
	if _, err := r.db.ExecContext(
		ctx, insertWinner,
		winner.RoundId, winner.Address, winner.Prize.String(),
		int64(winner.RequestId), winner.NumPlayers, winner.Timestamp,
	); err != nil {
		return fmt.Errorf("failed to add winner of round %s: %w", winner.RoundId, err)
	}
	return nil
}

func (r *winnerRepository) GetWinners(ctx context.Context, limit int) ([]domain.Winner, error) {
	query := selectWinners
	args := make([]interface{}, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get winners: %w", err)
	}
	defer rows.Close()

	winners := make([]domain.Winner, 0)
	for rows.Next() {
		winner, err := scanWinner(rows)
		if err != nil {
			return nil, err
		}
		winners = append(winners, *winner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get winners: %w", err)
	}
	return winners, nil
}

func (r *winnerRepository) GetWinnerByRound(
	ctx context.Context, roundId string,
) (*domain.Winner, error) {
	row := r.db.QueryRowContext(ctx, selectWinnerByRound, roundId)
	winner, err := scanWinner(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("winner of round %s not found", roundId)
	}
	if err != nil {
		return nil, err
	}
	return winner, nil
}

func (r *winnerRepository) Close() {
	_ = r.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanWinner(row scanner) (*domain.Winner, error) {
	var (
		winner    domain.Winner
		prize     string
		requestId int64
	)
	if err := row.Scan(
		&winner.RoundId, &winner.Address, &prize, &requestId,
		&winner.NumPlayers, &winner.Timestamp,
	); err != nil {
		return nil, err
	}

	amount, ok := new(big.Int).SetString(prize, 10)
	if !ok {
		return nil, fmt.Errorf("invalid stored prize for round %s", winner.RoundId)
	}
	winner.Prize = amount
	winner.RequestId = uint64(requestId)
	return &winner, nil
}
