package content

import (
	"context"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Notifier signals that the site document changed. Listeners re-read the
// document on every signal; signals may be coalesced.
type Notifier interface {
	Publish(ctx context.Context) error
	Subscribe(ctx context.Context) (<-chan struct{}, error)
}

// Hub is an in-process Notifier.
type Hub struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan struct{}]struct{})}
}

func (h *Hub) Publish(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		signal(ch)
	}
	return nil
}

func (h *Hub) Subscribe(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, ch)
		close(ch)
		h.mu.Unlock()
	}()
	return ch, nil
}

// signal does a non-blocking send; a pending signal already covers this one.
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// RedisNotifier fans change signals out to every instance sharing the
// store, over a Redis pub/sub channel.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel}
}

func (r *RedisNotifier) Publish(ctx context.Context) error {
	return r.client.Publish(ctx, r.channel, "changed").Err()
}

func (r *RedisNotifier) Subscribe(ctx context.Context) (<-chan struct{}, error) {
	pubsub := r.client.Subscribe(ctx, r.channel)
	// wait for the subscription to be confirmed so no publish is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer pubsub.Close()
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					slog.Warn("redis change channel closed", "channel", r.channel)
					return
				}
				signal(out)
			}
		}
	}()
	return out, nil
}
