package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/LouisaLyu/System-design-project-3/internal/database"
)

// ChangeEventType is the type marker every journal change notification
// carries. Listeners must ignore messages with any other type.
const ChangeEventType = "journal-change"

// changeChannel is the Redis pub/sub channel carrying change events
// between instances.
const changeChannel = "journal:changes"

// ChangeEvent is the payload broadcast over Redis and pushed to every
// connected listener when the journal collection changes.
type ChangeEvent struct {
	Type      string    `json:"type"`
	Action    string    `json:"action,omitempty"` // "create", "update" or "delete"
	EntryID   string    `json:"entryId,omitempty"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// ChangeHub is a registry of local push subscribers (SSE and WebSocket
// connections on this instance).
type ChangeHub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan ChangeEvent
}

var (
	changeHub    = &ChangeHub{subs: make(map[int]chan ChangeEvent)}
	redisStarted sync.Once
)

// SubscribeChanges registers a local listener. The returned cancel
// func must be called when the connection goes away.
func SubscribeChanges() (<-chan ChangeEvent, func()) {
	ch := make(chan ChangeEvent, 8)

	changeHub.mu.Lock()
	id := changeHub.nextID
	changeHub.nextID++
	changeHub.subs[id] = ch
	changeHub.mu.Unlock()

	cancel := func() {
		changeHub.mu.Lock()
		if _, ok := changeHub.subs[id]; ok {
			delete(changeHub.subs, id)
			close(ch)
		}
		changeHub.mu.Unlock()
	}
	return ch, cancel
}

// FanOutChange delivers an event to every local subscriber. Slow
// consumers are skipped rather than blocking the hub.
func FanOutChange(event ChangeEvent) {
	changeHub.mu.RLock()
	defer changeHub.mu.RUnlock()

	for _, ch := range changeHub.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// StartRedisChangeSubscriber ensures a single shared Redis listener
// per instance.
func StartRedisChangeSubscriber(ctx context.Context) {
	redisStarted.Do(func() {
		go runRedisChangeSubscriber(ctx)
	})
}

func runRedisChangeSubscriber(ctx context.Context) {
	client := database.RedisClient
	if client == nil {
		log.Println("Redis client not initialized; change subscriber not started")
		return
	}

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := client.Subscribe(ctx, changeChannel)
			defer pubsub.Close()

			log.Printf("✅ Journal change subscriber started (channel: %s)", changeChannel)

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					log.Printf("Redis subscriber error: %v", err)
					time.Sleep(backoff)
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				var event ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("failed to unmarshal change event: %v", err)
					continue
				}

				FanOutChange(event)
			}
		}()
	}
}

// PublishJournalChange publishes a change event to Redis; called after
// every successful create, update or delete. When Redis is not
// configured (tests, single instance dev) the event still reaches
// local subscribers directly.
func PublishJournalChange(ctx context.Context, action, entryID string) error {
	event := ChangeEvent{
		Type:      ChangeEventType,
		Action:    action,
		EntryID:   entryID,
		Timestamp: time.Now().UTC(),
	}

	if database.RedisClient == nil {
		FanOutChange(event)
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return database.RedisClient.Publish(ctx, changeChannel, data).Err()
}
