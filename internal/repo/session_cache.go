package repo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/raincoat98/bookmarkle-bridge/internal/domain"
)

// SessionCache is the credential store: it owns whether a live session
// exists for a relay client, and carries the session-changed event channel
// restoration waits on. Keyed by the opaque clientID the host process
// assigns to each relay surface.
type SessionCache struct {
	C *redis.Client
}

func NewSessionCache(addr string) *SessionCache {
	return &SessionCache{C: redis.NewClient(&redis.Options{Addr: addr})}
}

func (s *SessionCache) Ping(ctx context.Context) error { return s.C.Ping(ctx).Err() }
func (s *SessionCache) Close() error                   { return s.C.Close() }

func sessionKey(clientID string) string { return "session:" + clientID }
func eventChannel(clientID string) string {
	return "session.events." + clientID
}

// sessionEvent is the pub/sub payload. A nil Principal signals sign-out.
type sessionEvent struct {
	Principal *domain.Principal `json:"principal"`
}

// GetSession is the synchronous liveness check. (nil, nil) means no live
// session.
func (s *SessionCache) GetSession(ctx context.Context, clientID string) (*domain.Principal, error) {
	raw, err := s.C.Get(ctx, sessionKey(clientID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p domain.Principal
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SessionCache) PutSession(ctx context.Context, clientID string, p *domain.Principal, ttl time.Duration) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.C.Set(ctx, sessionKey(clientID), raw, ttl).Err()
}

func (s *SessionCache) DeleteSession(ctx context.Context, clientID string) error {
	return s.C.Del(ctx, sessionKey(clientID)).Err()
}

// PublishChange fans the new session state out to any restoration waiters.
// p == nil publishes a signed-out event.
func (s *SessionCache) PublishChange(ctx context.Context, clientID string, p *domain.Principal) error {
	raw, err := json.Marshal(sessionEvent{Principal: p})
	if err != nil {
		return err
	}
	return s.C.Publish(ctx, eventChannel(clientID), raw).Err()
}

// Subscribe returns a channel of session-state changes for the client and
// a stop function releasing the subscription. Undecodable payloads are
// skipped.
func (s *SessionCache) Subscribe(ctx context.Context, clientID string) (<-chan *domain.Principal, func(), error) {
	ps := s.C.Subscribe(ctx, eventChannel(clientID))
	// force the subscription onto the wire before the caller starts racing
	// it against a timer
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, err
	}

	out := make(chan *domain.Principal, 1)
	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			var ev sessionEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				continue
			}
			select {
			case out <- ev.Principal:
			case <-ctx.Done():
				return
			}
		}
	}()
	stop := func() { _ = ps.Close() }
	return out, stop, nil
}
