package handlers

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

const listenerBufferSize = 32

type listener[T any] struct {
	id string
	ch chan T
}

func newListener[T any](id string) *listener[T] {
	return &listener[T]{id: id, ch: make(chan T, listenerBufferSize)}
}

// broker fans out the events of the app service to every stream listener.
type broker[T any] struct {
	lock      *sync.Mutex
	listeners []*listener[T]
}

func newBroker[T any]() *broker[T] {
	return &broker[T]{
		lock:      &sync.Mutex{},
		listeners: make([]*listener[T], 0),
	}
}

func (h *broker[T]) pushListener(l *listener[T]) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.listeners = append(h.listeners, l)
}

// removeListener drops the listener and closes its channel.
func (h *broker[T]) removeListener(id string) {
	h.lock.Lock()
	defer h.lock.Unlock()

	for i, listener := range h.listeners {
		if listener.id == id {
			close(listener.ch)
			h.listeners = append(h.listeners[:i], h.listeners[i+1:]...)
			return
		}
	}
}

// broadcast never blocks: a listener that does not keep up loses the events
// that do not fit its buffer.
func (h *broker[T]) broadcast(events ...T) {
	h.lock.Lock()
	defer h.lock.Unlock()

	for _, l := range h.listeners {
		for _, ev := range events {
			select {
			case l.ch <- ev:
			default:
				log.Warnf("listener %s is too slow, dropped event", l.id)
			}
		}
	}
}

func (h *broker[T]) numListeners() int {
	h.lock.Lock()
	defer h.lock.Unlock()

	return len(h.listeners)
}

// closeAll closes the channels of every listener.
func (h *broker[T]) closeAll() {
	h.lock.Lock()
	defer h.lock.Unlock()

	for _, l := range h.listeners {
		close(l.ch)
	}
	h.listeners = make([]*listener[T], 0)
}
