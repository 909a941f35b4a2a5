package badgerdb

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ark-network/raffle/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type accountDTO struct {
	Address    string
	Balance    string
	NotPayable bool
}

type accountRepository struct {
	store *badgerhold.Store
}

// NewAccountRepository expects the ledger store as the only config entry.
func NewAccountRepository(config ...interface{}) (domain.AccountRepository, error) {
	store, err := storeFromConfig(config)
	if err != nil {
		return nil, err
	}
	return &accountRepository{store}, nil
}

func (r *accountRepository) GetAccount(
	ctx context.Context, address string,
) (*domain.Account, error) {
	return r.get(ctx, address)
}

func (r *accountRepository) Credit(
	ctx context.Context, address string, amount *big.Int,
) error {
	if err := domain.ValidateAmount(amount); err != nil {
		return err
	}
	account, err := r.get(ctx, address)
	if err != nil {
		return err
	}
	if account.NotPayable {
		return fmt.Errorf("%w: %s", domain.ErrNotPayable, address)
	}

	balance := new(big.Int).Add(account.Balance, amount)
	if balance.Cmp(domain.MaxUint256) > 0 {
		return fmt.Errorf("%w: balance of %s overflows uint256", domain.ErrInvalidAmount, address)
	}
	account.Balance = balance
	return r.upsert(ctx, account)
}

func (r *accountRepository) Debit(
	ctx context.Context, address string, amount *big.Int,
) error {
	if err := domain.ValidateAmount(amount); err != nil {
		return err
	}
	account, err := r.get(ctx, address)
	if err != nil {
		return err
	}
	if account.Balance.Cmp(amount) < 0 {
		return fmt.Errorf(
			"%w: %s has %s, needs %s",
			domain.ErrInsufficientFunds, address, account.Balance, amount,
		)
	}

	account.Balance = new(big.Int).Sub(account.Balance, amount)
	return r.upsert(ctx, account)
}

func (r *accountRepository) SetPayable(
	ctx context.Context, address string, payable bool,
) error {
	account, err := r.get(ctx, address)
	if err != nil {
		return err
	}
	account.NotPayable = !payable
	return r.upsert(ctx, account)
}

// Close is a no-op, the ledger store is owned by the repo manager.
func (r *accountRepository) Close() {}

func (r *accountRepository) get(
	ctx context.Context, address string,
) (*domain.Account, error) {
	dto := accountDTO{}
	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxGet(tx, address, &dto)
	} else {
		err = r.store.Get(address, &dto)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return &domain.Account{Address: address, Balance: new(big.Int)}, nil
		}
		return nil, fmt.Errorf("failed to get account %s: %s", address, err)
	}

	balance, ok := new(big.Int).SetString(dto.Balance, 10)
	if !ok {
		return nil, fmt.Errorf("invalid stored balance for account %s", address)
	}
	return &domain.Account{
		Address:    dto.Address,
		Balance:    balance,
		NotPayable: dto.NotPayable,
	}, nil
}

func (r *accountRepository) upsert(
	ctx context.Context, account *domain.Account,
) error {
	dto := &accountDTO{
		Address:    account.Address,
		Balance:    account.Balance.String(),
		NotPayable: account.NotPayable,
	}
	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxUpsert(tx, account.Address, dto)
	} else {
		err = r.store.Upsert(account.Address, dto)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert account %s: %s", account.Address, err)
	}
	return nil
}
