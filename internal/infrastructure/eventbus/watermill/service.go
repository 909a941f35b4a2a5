package watermillbus

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/ark-network/raffle/internal/core/domain"
	"github.com/ark-network/raffle/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

const outputChannelBuffer = 64

type eventBus struct {
	pubsub *gochannel.GoChannel

	handlers    []func(events []domain.RaffleEvent)
	handlerLock *sync.RWMutex

	wg sync.WaitGroup
}

// NewEventBus returns an in-process bus that delivers the published events to
// the registered handlers in publishing order.
func NewEventBus() (ports.EventBus, error) {
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            outputChannelBuffer,
			BlockPublishUntilSubscriberAck: true,
		},
		newLogger(log.StandardLogger()),
	)

	messages, err := pubsub.Subscribe(context.Background(), domain.RaffleTopic)
	if err != nil {
		//nolint:errcheck
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to topic %s: %s", domain.RaffleTopic, err)
	}

	bus := &eventBus{
		pubsub:      pubsub,
		handlers:    make([]func(events []domain.RaffleEvent), 0),
		handlerLock: &sync.RWMutex{},
	}

	bus.wg.Add(1)
	go bus.listen(messages)

	return bus, nil
}

func (b *eventBus) Publish(ctx context.Context, events ...domain.RaffleEvent) error {
	if len(events) <= 0 {
		return nil
	}

	payload, err := domain.MarshalEvents(events)
	if err != nil {
		return fmt.Errorf("failed to encode events: %s", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("topic", events[0].GetTopic())
	msg.SetContext(ctx)

	return b.pubsub.Publish(domain.RaffleTopic, msg)
}

func (b *eventBus) RegisterEventsHandler(handler func(events []domain.RaffleEvent)) {
	b.handlerLock.Lock()
	defer b.handlerLock.Unlock()

	b.handlers = append(b.handlers, handler)
}

func (b *eventBus) Close() {
	//nolint:errcheck
	b.pubsub.Close()
	b.wg.Wait()
}

func (b *eventBus) listen(messages <-chan *message.Message) {
	defer b.wg.Done()

	for msg := range messages {
		events, err := domain.UnmarshalEvents(msg.Payload)
		if err != nil {
			log.WithError(err).Warnf("failed to decode message %s", msg.UUID)
			msg.Ack()
			continue
		}

		b.handlerLock.RLock()
		for _, handler := range b.handlers {
			handler(events)
		}
		b.handlerLock.RUnlock()

		msg.Ack()
	}
}
