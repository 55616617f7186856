// Package fanout turns mutations into per-recipient notification records.
// Delivery is best-effort: a failed insert is logged and never fails the
// request that produced the event.
package fanout

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/appforge-dev/chirper/backend/internal/models"
	"github.com/appforge-dev/chirper/backend/internal/repositories"
)

// Event is one triggering mutation. Exactly one notification record is
// appended per event; nothing is retried or batched.
type Event struct {
	Type        string
	ActorID     uint
	RecipientID uint
	PostID      string
}

// Emitter is what handlers depend on.
type Emitter interface {
	Emit(event Event)
}

// Bus is an in-process event bus with a single consumer goroutine.
type Bus struct {
	queue         chan Event
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	logger        *zap.Logger

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewBus creates a bus with the given queue capacity.
func NewBus(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository, logger *zap.Logger, capacity int) *Bus {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Bus{
		queue:         make(chan Event, capacity),
		notifications: notifRepo,
		users:         userRepo,
		logger:        logger,
		quit:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start launches the consumer; returns a stop function that drains the
// queue before returning. The queue channel itself is never closed, so an
// Emit from a handler still in flight after shutdown cannot panic.
func (b *Bus) Start() func() {
	go b.loop()
	return func() {
		b.stopOnce.Do(func() { close(b.quit) })
		<-b.done
	}
}

// Emit enqueues an event. Self-notification is suppressed here; a full
// queue drops the event with a warning rather than blocking the request,
// and events emitted after shutdown are dropped silently.
func (b *Bus) Emit(event Event) {
	if event.ActorID == event.RecipientID {
		return
	}
	select {
	case <-b.quit:
		return
	default:
	}
	select {
	case b.queue <- event:
	default:
		b.logger.Warn("fanout queue full, dropping event",
			zap.String("type", event.Type),
			zap.Uint("actor", event.ActorID),
			zap.Uint("recipient", event.RecipientID))
	}
}

func (b *Bus) loop() {
	defer close(b.done)
	for {
		select {
		case event := <-b.queue:
			b.deliver(event)
		case <-b.quit:
			// Drain whatever is still buffered, then exit
			for {
				select {
				case event := <-b.queue:
					b.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (b *Bus) deliver(event Event) {
	if err := b.process(event); err != nil {
		b.logger.Warn("fanout delivery failed",
			zap.String("type", event.Type),
			zap.Uint("recipient", event.RecipientID),
			zap.Error(err))
	}
}

func (b *Bus) process(event Event) error {
	actor, err := b.users.GetUserByID(event.ActorID)
	if err != nil {
		return fmt.Errorf("resolving actor: %w", err)
	}

	notification := &models.Notification{
		Type:        event.Type,
		ActorID:     event.ActorID,
		RecipientID: event.RecipientID,
		PostID:      event.PostID,
		Message:     composeMessage(actor, event.Type),
	}
	return b.notifications.CreateNotification(notification)
}

func composeMessage(actor *models.User, eventType string) string {
	name := actor.DisplayName
	if name == "" {
		name = "@" + actor.Handle
	}
	switch eventType {
	case models.NotificationLike:
		return name + " liked your post"
	case models.NotificationRepost:
		return name + " reposted your post"
	case models.NotificationReply:
		return name + " replied to your post"
	case models.NotificationQuote:
		return name + " quoted your post"
	case models.NotificationFollow:
		return name + " started following you"
	case models.NotificationMention:
		return name + " mentioned you in a post"
	case models.NotificationDM:
		return name + " sent you a message"
	default:
		return name + " interacted with you"
	}
}
