package db

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ark-network/raffle/internal/core/domain"
	"github.com/ark-network/raffle/internal/core/ports"
	badgerdb "github.com/ark-network/raffle/internal/infrastructure/db/badger"
	sqlitedb "github.com/ark-network/raffle/internal/infrastructure/db/sqlite"
	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

var (
	ledgerStoreTypes = map[string]func(string, badger.Logger) (*badgerhold.Store, error){
		"badger": badgerdb.NewLedgerStore,
	}
	winnerStoreTypes = map[string]func(...interface{}) (domain.WinnerRepository, error){
		"badger": badgerdb.NewWinnerRepository,
		"sqlite": newSqliteWinnerRepository,
	}
)

const (
	sqliteDbFile = "sqlite.db"
)

type ServiceConfig struct {
	EventStoreType string
	DataStoreType  string

	// EventStoreConfig is the base directory and the badger logger.
	EventStoreConfig []interface{}
	// DataStoreConfig is the base directory and, for badger, the logger.
	DataStoreConfig []interface{}
}

type service struct {
	ledger       *badgerhold.Store
	eventStore   domain.RaffleEventRepository
	accountStore domain.AccountRepository
	winnerStore  domain.WinnerRepository
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	ledgerFactory, ok := ledgerStoreTypes[config.EventStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid event store type: %s", config.EventStoreType)
	}
	winnerStoreFactory, ok := winnerStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}

	baseDir, logger, err := parseBadgerConfig(config.EventStoreConfig)
	if err != nil {
		return nil, err
	}
	ledger, err := ledgerFactory(baseDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create event store: %w", err)
	}

	eventStore, err := badgerdb.NewRaffleEventRepository(ledger)
	if err != nil {
		ledger.Close()
		return nil, fmt.Errorf("failed to create event store: %w", err)
	}
	accountStore, err := badgerdb.NewAccountRepository(ledger)
	if err != nil {
		ledger.Close()
		return nil, fmt.Errorf("failed to create account store: %w", err)
	}

	winnerStore, err := winnerStoreFactory(config.DataStoreConfig...)
	if err != nil {
		ledger.Close()
		return nil, fmt.Errorf("failed to create winner store: %w", err)
	}

	return &service{
		ledger:       ledger,
		eventStore:   eventStore,
		accountStore: accountStore,
		winnerStore:  winnerStore,
	}, nil
}

func (s *service) Events() domain.RaffleEventRepository {
	return s.eventStore
}

func (s *service) Accounts() domain.AccountRepository {
	return s.accountStore
}

func (s *service) Winners() domain.WinnerRepository {
	return s.winnerStore
}

func (s *service) RunInTx(
	ctx context.Context, fn func(ctx context.Context) error,
) error {
	if ctx.Value("tx") != nil {
		return fn(ctx)
	}

	tx := s.ledger.Badger().NewTransaction(true)
	defer tx.Discard()

	if err := fn(context.WithValue(ctx, "tx", tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *service) Close() {
	s.eventStore.Close()
	s.accountStore.Close()
	s.winnerStore.Close()
	s.ledger.Close()
}

func parseBadgerConfig(config []interface{}) (string, badger.Logger, error) {
	if len(config) != 2 {
		return "", nil, fmt.Errorf("invalid config")
	}
	baseDir, ok := config[0].(string)
	if !ok {
		return "", nil, fmt.Errorf("invalid base directory")
	}
	var logger badger.Logger
	if config[1] != nil {
		logger, ok = config[1].(badger.Logger)
		if !ok {
			return "", nil, fmt.Errorf("invalid logger")
		}
	}
	return baseDir, logger, nil
}

func newSqliteWinnerRepository(config ...interface{}) (domain.WinnerRepository, error) {
	if len(config) != 1 {
		return nil, fmt.Errorf("invalid config")
	}
	baseDir, ok := config[0].(string)
	if !ok {
		return nil, fmt.Errorf("invalid base directory")
	}

	db, err := sqlitedb.OpenDb(filepath.Join(baseDir, sqliteDbFile))
	if err != nil {
		return nil, err
	}
	if err := sqlitedb.MigrateDb(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate sqlite: %w", err)
	}
	return sqlitedb.NewWinnerRepository(db)
}
