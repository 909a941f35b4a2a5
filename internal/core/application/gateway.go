package application

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ark-network/raffle/internal/core/domain"
	"github.com/ark-network/raffle/pkg/oracle"
)

// requestRandomness issues the randomness request for the round being closed.
func (s *service) requestRandomness(
	ctx context.Context, raffle *domain.Raffle,
) (uint64, error) {
	if raffle.PendingRequest != nil {
		return 0, domain.InvariantError{
			Reason: fmt.Sprintf(
				"duplicate request, %d is still outstanding",
				raffle.PendingRequest.RequestId,
			),
		}
	}

	requestId, err := s.coordinator.RequestRandomWords(ctx, s.cfg.RandomnessRequest)
	if err != nil {
		return 0, fmt.Errorf("failed to request random words: %w", err)
	}
	return requestId, nil
}

// authorizeFulfiller checks that the words were delivered by the oracle,
// whatever transport they came through.
func (s *service) authorizeFulfiller(
	requestId uint64, words []*big.Int, signature []byte,
) error {
	if len(words) <= 0 {
		return domain.ErrMissingRandomWords
	}
	if err := oracle.VerifyFulfillment(
		s.coordinator.PubKey(), requestId, words, signature,
	); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrUnauthorizedFulfiller, err)
	}
	return nil
}

// consumeRandomWords matches the fulfillment against the pending request and
// selects the winner. Nothing is mutated if they don't match.
func (s *service) consumeRandomWords(
	raffle *domain.Raffle, requestId uint64, words []*big.Int,
) (*domain.Draw, error) {
	draw, err := raffle.PickWinner(requestId, words)
	if err != nil {
		return nil, err
	}
	if draw.RoundId != raffle.PendingRequest.RoundId {
		return nil, domain.InvariantError{
			Reason: fmt.Sprintf(
				"request %d was issued for round %s, current round is %s",
				requestId, raffle.PendingRequest.RoundId, draw.RoundId,
			),
		}
	}
	return draw, nil
}
