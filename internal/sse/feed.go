package sse

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dimitrije/taskhub-api/internal/models"
	"github.com/dimitrije/taskhub-api/pkg/dto"
	"github.com/google/uuid"
)

const (
	EventProjectCreated = "project_created"
	EventSnapshot       = "snapshot"

	subscriberBuffer = 64
)

type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type Subscriber struct {
	ID     string
	UserID uuid.UUID
	Send   chan []byte
}

// ProjectFeed fans project-created events out to live subscribers. It keeps
// no history; a subscriber whose buffer is full misses that event.
type ProjectFeed struct {
	subscribers map[string]*Subscriber
	register    chan *Subscriber
	unregister  chan *Subscriber
	broadcast   chan []byte
	done        chan struct{}
	mu          sync.RWMutex
}

func NewProjectFeed() *ProjectFeed {
	return &ProjectFeed{
		subscribers: make(map[string]*Subscriber),
		register:    make(chan *Subscriber),
		unregister:  make(chan *Subscriber),
		broadcast:   make(chan []byte, 256),
		done:        make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is done. Remaining
// subscribers are closed on exit.
func (f *ProjectFeed) Run(ctx context.Context) {
	for {
		select {
		case sub := <-f.register:
			f.mu.Lock()
			f.subscribers[sub.ID] = sub
			f.mu.Unlock()

		case sub := <-f.unregister:
			f.mu.Lock()
			if _, ok := f.subscribers[sub.ID]; ok {
				delete(f.subscribers, sub.ID)
				close(sub.Send)
			}
			f.mu.Unlock()

		case data := <-f.broadcast:
			f.mu.RLock()
			for _, sub := range f.subscribers {
				select {
				case sub.Send <- data:
				default:
				}
			}
			f.mu.RUnlock()

		case <-ctx.Done():
			close(f.done)
			f.mu.Lock()
			for id, sub := range f.subscribers {
				delete(f.subscribers, id)
				close(sub.Send)
			}
			f.mu.Unlock()
			return
		}
	}
}

func (f *ProjectFeed) Subscribe(userID uuid.UUID) *Subscriber {
	sub := &Subscriber{
		ID:     uuid.New().String(),
		UserID: userID,
		Send:   make(chan []byte, subscriberBuffer),
	}
	select {
	case f.register <- sub:
	case <-f.done:
		close(sub.Send)
	}
	return sub
}

func (f *ProjectFeed) Unsubscribe(sub *Subscriber) {
	select {
	case f.unregister <- sub:
	case <-f.done:
	}
}

// SubscriberCount is mainly useful to tests and health output.
func (f *ProjectFeed) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers)
}

// PublishProjectCreated never blocks the caller. When the broadcast queue is
// saturated the event is dropped. The payload has the same shape as the
// snapshot entries.
func (f *ProjectFeed) PublishProjectCreated(project models.Project) {
	data, err := json.Marshal(Event{Type: EventProjectCreated, Data: dto.NewProjectResponse(&project)})
	if err != nil {
		return
	}
	select {
	case f.broadcast <- data:
	default:
	}
}
