package application

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ark-network/raffle/internal/core/domain"
)

// payout moves amount from the raffle custody to recipient. It must run in
// the same transaction as the state change it settles.
func (s *service) payout(ctx context.Context, recipient string, amount *big.Int) error {
	accounts := s.repoManager.Accounts()

	if err := accounts.Debit(ctx, custodyAccount, amount); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransferFailed, err)
	}
	if err := accounts.Credit(ctx, recipient, amount); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransferFailed, err)
	}
	return nil
}
