package ports

import (
	"context"

	"github.com/ark-network/raffle/internal/core/domain"
)

type EventBus interface {
	Publish(ctx context.Context, events ...domain.RaffleEvent) error
	// RegisterEventsHandler must be called before publishing any event.
	RegisterEventsHandler(handler func(events []domain.RaffleEvent))
	Close()
}
