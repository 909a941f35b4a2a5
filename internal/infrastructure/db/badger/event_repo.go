package badgerdb

import (
	"context"
	"fmt"

	"github.com/ark-network/raffle/internal/core/domain"
	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

// raffleDTO is the raffle-level record, rewritten every time a round starts.
type raffleDTO struct {
	Id             string
	EntranceFee    string
	Interval       int64
	RoundId        string
	Rounds         uint64
	RecentWinner   string
	StartTimestamp int64
	Version        uint
}

type eventsDTO struct {
	Events []byte
}

// eventRepository stores the events of every round under their own key.
// Closed rounds are never read back, so restoring the raffle only replays
// the events of the current round on top of the raffle record.
type eventRepository struct {
	store *badgerhold.Store
}

// NewRaffleEventRepository expects the ledger store as the only config entry.
func NewRaffleEventRepository(config ...interface{}) (domain.RaffleEventRepository, error) {
	store, err := storeFromConfig(config)
	if err != nil {
		return nil, err
	}
	return &eventRepository{store}, nil
}

// Save writes the round events and, whenever a round starts, the raffle
// record in a single transaction.
func (r *eventRepository) Save(
	ctx context.Context, id string, events ...domain.RaffleEvent,
) (*domain.Raffle, error) {
	if txFromContext(ctx) != nil {
		return r.save(ctx, id, events...)
	}

	var raffle *domain.Raffle
	err := r.store.Badger().Update(func(tx *badger.Txn) error {
		var err error
		raffle, err = r.save(context.WithValue(ctx, "tx", tx), id, events...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return raffle, nil
}

func (r *eventRepository) save(
	ctx context.Context, id string, events ...domain.RaffleEvent,
) (*domain.Raffle, error) {
	snapshot, err := r.getSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}

	var raffle *domain.Raffle
	var roundEvents []domain.RaffleEvent
	if snapshot != nil {
		if roundEvents, err = r.getRound(ctx, id, snapshot.RoundId); err != nil {
			return nil, err
		}
		raffle = domain.NewRaffleFromSnapshot(*snapshot, roundEvents)
	} else {
		if len(events) <= 0 {
			return nil, nil
		}
		if _, ok := events[0].(domain.RaffleInitialized); !ok {
			return nil, fmt.Errorf("raffle %s is not initialized", id)
		}
		raffle = domain.NewRaffleFromEvents(nil)
	}

	for _, event := range events {
		roundId := raffle.RoundId
		raffle.On(event, true)

		switch event.(type) {
		case domain.RaffleInitialized:
			roundEvents = nil
		case domain.WinnerSelected:
			// The closing event belongs to the round it closes.
			roundEvents = append(roundEvents, event)
			if err := r.upsertRound(ctx, id, roundId, roundEvents); err != nil {
				return nil, err
			}
			roundEvents = nil
		default:
			roundEvents = append(roundEvents, event)
			continue
		}

		next := raffle.Snapshot()
		if err := r.upsertSnapshot(ctx, next); err != nil {
			return nil, err
		}
		snapshot = &next
	}

	if len(roundEvents) > 0 {
		if err := r.upsertRound(ctx, id, snapshot.RoundId, roundEvents); err != nil {
			return nil, err
		}
	}

	return domain.NewRaffleFromSnapshot(*snapshot, roundEvents), nil
}

func (r *eventRepository) Load(
	ctx context.Context, id string,
) (*domain.Raffle, error) {
	snapshot, err := r.getSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, nil
	}

	events, err := r.getRound(ctx, id, snapshot.RoundId)
	if err != nil {
		return nil, err
	}
	return domain.NewRaffleFromSnapshot(*snapshot, events), nil
}

// Close is a no-op, the ledger store is owned by the repo manager.
func (r *eventRepository) Close() {}

func (r *eventRepository) getSnapshot(
	ctx context.Context, id string,
) (*domain.RaffleSnapshot, error) {
	dto := raffleDTO{}
	if err := r.get(ctx, raffleKey(id), &dto); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get raffle with id %s: %s", id, err)
	}

	entranceFee, err := domain.ParseAmount(dto.EntranceFee)
	if err != nil {
		return nil, fmt.Errorf("invalid entrance fee of raffle %s: %s", id, err)
	}
	return &domain.RaffleSnapshot{
		Id:             dto.Id,
		EntranceFee:    entranceFee,
		Interval:       dto.Interval,
		RoundId:        dto.RoundId,
		Rounds:         dto.Rounds,
		RecentWinner:   dto.RecentWinner,
		StartTimestamp: dto.StartTimestamp,
		Version:        dto.Version,
	}, nil
}

func (r *eventRepository) upsertSnapshot(
	ctx context.Context, snapshot domain.RaffleSnapshot,
) error {
	dto := &raffleDTO{
		Id:             snapshot.Id,
		EntranceFee:    snapshot.EntranceFee.String(),
		Interval:       snapshot.Interval,
		RoundId:        snapshot.RoundId,
		Rounds:         snapshot.Rounds,
		RecentWinner:   snapshot.RecentWinner,
		StartTimestamp: snapshot.StartTimestamp,
		Version:        snapshot.Version,
	}
	if err := r.upsert(ctx, raffleKey(snapshot.Id), dto); err != nil {
		return fmt.Errorf("failed to upsert raffle with id %s: %s", snapshot.Id, err)
	}
	return nil
}

func (r *eventRepository) getRound(
	ctx context.Context, id, roundId string,
) ([]domain.RaffleEvent, error) {
	dto := eventsDTO{}
	if err := r.get(ctx, eventsKey(id, roundId), &dto); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get events of round %s: %s", roundId, err)
	}

	return domain.UnmarshalEvents(dto.Events)
}

func (r *eventRepository) upsertRound(
	ctx context.Context, id, roundId string, events []domain.RaffleEvent,
) error {
	buf, err := domain.MarshalEvents(events)
	if err != nil {
		return err
	}
	if err := r.upsert(ctx, eventsKey(id, roundId), &eventsDTO{buf}); err != nil {
		return fmt.Errorf("failed to upsert events of round %s: %s", roundId, err)
	}
	return nil
}

func (r *eventRepository) get(ctx context.Context, key string, result interface{}) error {
	if tx := txFromContext(ctx); tx != nil {
		return r.store.TxGet(tx, key, result)
	}
	return r.store.Get(key, result)
}

func (r *eventRepository) upsert(ctx context.Context, key string, data interface{}) error {
	if tx := txFromContext(ctx); tx != nil {
		return r.store.TxUpsert(tx, key, data)
	}
	return r.store.Upsert(key, data)
}

func raffleKey(id string) string {
	return "raffle:" + id
}

func eventsKey(id, roundId string) string {
	return "raffle-events:" + id + ":" + roundId
}
