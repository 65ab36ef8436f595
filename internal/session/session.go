// Package session restores authenticated principals for relay clients.
//
// The credential store (Redis) owns whether a live session exists; this
// package layers the slow path on top: a one-shot wait for the
// session-changed event raced against a timer, with a trailing synchronous
// re-check when the timer fires. Two independent timeout tiers apply,
// depending on whether the caller supplied a bearer credential.
package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/raincoat98/bookmarkle-bridge/internal/domain"
	"github.com/raincoat98/bookmarkle-bridge/internal/metrics"
)

type Cache interface {
	GetSession(ctx context.Context, clientID string) (*domain.Principal, error)
	PutSession(ctx context.Context, clientID string, p *domain.Principal, ttl time.Duration) error
	DeleteSession(ctx context.Context, clientID string) error
	PublishChange(ctx context.Context, clientID string, p *domain.Principal) error
	Subscribe(ctx context.Context, clientID string) (<-chan *domain.Principal, func(), error)
}

type Verifier interface {
	Verify(ctx context.Context, bearer string) (*domain.Principal, error)
}

type Manager struct {
	cache    Cache
	verifier Verifier
	ttl      time.Duration

	// Distinct restoration budgets. Bearer callers wait longer because
	// priming may still be propagating when the no-bearer tier would
	// already have expired.
	waitNoBearer time.Duration
	waitBearer   time.Duration

	log *zap.Logger
}

func NewManager(cache Cache, verifier Verifier, ttl, waitNoBearer, waitBearer time.Duration, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		cache:        cache,
		verifier:     verifier,
		ttl:          ttl,
		waitNoBearer: waitNoBearer,
		waitBearer:   waitBearer,
		log:          log,
	}
}

// Resolve returns the authenticated principal for the client, or nil.
// It never returns an error: internal failures degrade to nil, which
// callers must treat as a hard auth failure for the current request.
//
//  1. live session in the cache -> returned immediately, zero wait;
//  2. bearer supplied -> best-effort priming kicked off in the background
//     (failures swallowed); priming does not itself satisfy this call;
//  3. race the session-changed subscription against the tier's timer; on
//     timer fire, one final synchronous re-check before giving up — it
//     closes the window between the step-1 check and the subscription.
func (m *Manager) Resolve(ctx context.Context, clientID, bearer string) *domain.Principal {
	tier := "no_bearer"
	wait := m.waitNoBearer
	if bearer != "" {
		tier = "bearer"
		wait = m.waitBearer
	}

	if p, err := m.cache.GetSession(ctx, clientID); err == nil && p != nil {
		metrics.SessionRestoreTotal.WithLabelValues(tier, "live").Inc()
		return p
	} else if err != nil {
		m.log.Warn("session cache read failed", zap.String("client_id", clientID), zap.Error(err))
	}

	if bearer != "" {
		go m.prime(clientID, bearer)
	}

	events, stop, err := m.cache.Subscribe(ctx, clientID)
	if err != nil {
		m.log.Warn("session event subscribe failed", zap.String("client_id", clientID), zap.Error(err))
		events = nil // timer-only wait, trailing re-check still applies
	} else {
		defer stop()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case p, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if p != nil {
				metrics.SessionRestoreTotal.WithLabelValues(tier, "restored").Inc()
				return p
			}
			// signed-out event; keep waiting, a sign-in may still land
		case <-timer.C:
			if p, err := m.cache.GetSession(ctx, clientID); err == nil && p != nil {
				metrics.SessionRestoreTotal.WithLabelValues(tier, "recheck").Inc()
				return p
			}
			metrics.SessionRestoreTotal.WithLabelValues(tier, "timeout").Inc()
			return nil
		case <-ctx.Done():
			metrics.SessionRestoreTotal.WithLabelValues(tier, "canceled").Inc()
			return nil
		}
	}
}

// prime verifies the bearer off the calling goroutine and, on success,
// writes the session and publishes the session-changed event the waiter is
// racing on. All failures are swallowed: priming is best-effort and must
// never fail a resolution that could still succeed another way.
func (m *Manager) prime(clientID, bearer string) {
	ctx, cancel := context.WithTimeout(context.Background(), m.waitBearer)
	defer cancel()

	p, err := m.verifier.Verify(ctx, bearer)
	if err != nil {
		m.log.Debug("bearer priming failed", zap.String("client_id", clientID), zap.Error(err))
		return
	}
	if err := m.cache.PutSession(ctx, clientID, p, m.ttl); err != nil {
		m.log.Debug("priming session write failed", zap.String("client_id", clientID), zap.Error(err))
		return
	}
	if err := m.cache.PublishChange(ctx, clientID, p); err != nil {
		m.log.Debug("priming session publish failed", zap.String("client_id", clientID), zap.Error(err))
	}
}

// Establish records a freshly signed-in session and wakes restoration
// waiters. Called by the OAuth callback after code exchange.
func (m *Manager) Establish(ctx context.Context, clientID string, p *domain.Principal) error {
	if err := m.cache.PutSession(ctx, clientID, p, m.ttl); err != nil {
		return err
	}
	if err := m.cache.PublishChange(ctx, clientID, p); err != nil {
		m.log.Warn("session change publish failed", zap.String("client_id", clientID), zap.Error(err))
	}
	return nil
}

// End removes the session and publishes a signed-out event.
func (m *Manager) End(ctx context.Context, clientID string) error {
	if err := m.cache.DeleteSession(ctx, clientID); err != nil {
		return err
	}
	if err := m.cache.PublishChange(ctx, clientID, nil); err != nil {
		m.log.Warn("sign-out publish failed", zap.String("client_id", clientID), zap.Error(err))
	}
	return nil
}
