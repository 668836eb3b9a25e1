package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/naran-storefront/internal/core/domain"
	"github.com/niksmo/naran-storefront/internal/core/port"
)

var _ port.Storefront = (*Storefront)(nil)

var (
	ErrUnknownAction   = errors.New("unknown action")
	ErrSessionNotFound = errors.New("session not found")
)

const (
	defaultCartKeyPrefix  = "naranCart"
	defaultPublishTimeout = time.Second
	mapRefreshDelay       = 400 * time.Millisecond
)

type Settings struct {
	CartKeyPrefix string
	Currency      string
	SupportURL    string
	SupportLabel  string
	Map           domain.MapWidget

	// PublishTimeout bounds how long an action waits for its client event.
	PublishTimeout time.Duration
}

type actionHandler func(context.Context, *Session, domain.Action) error

// A Storefront owns the catalog cache and the per-visitor sessions.
//
// Actions on one session never overlap: each runs to completion
// under the session lock before the next one starts.
type Storefront struct {
	fetcher  port.CatalogFetcher
	carts    port.CartStorage
	events   port.ClientEventsProducer
	activity port.CartActivityReader
	settings Settings
	catalog  catalog
	handlers map[domain.ActionType]actionHandler

	mu       sync.Mutex
	sessions map[string]*Session

	now   func() time.Time
	newID func() string
}

// New returns a Storefront. events and activity are optional and may be nil.
func New(
	fetcher port.CatalogFetcher,
	carts port.CartStorage,
	events port.ClientEventsProducer,
	activity port.CartActivityReader,
	settings Settings,
) *Storefront {
	if settings.CartKeyPrefix == "" {
		settings.CartKeyPrefix = defaultCartKeyPrefix
	}
	if settings.PublishTimeout <= 0 {
		settings.PublishTimeout = defaultPublishTimeout
	}

	s := &Storefront{
		fetcher:  fetcher,
		carts:    carts,
		events:   events,
		activity: activity,
		settings: settings,
		sessions: make(map[string]*Session),
		now:      time.Now,
		newID:    uuid.NewString,
	}

	s.handlers = map[domain.ActionType]actionHandler{
		domain.ActionNavigate:       s.handleNavigate,
		domain.ActionFilter:         s.handleFilter,
		domain.ActionAddToCart:      s.handleAddToCart,
		domain.ActionRemoveFromCart: s.handleRemoveFromCart,
		domain.ActionCheckout:       s.handleCheckout,
	}
	return s
}

// OpenSession returns the id of a live session, creating it when needed.
//
// An unknown but well-formed id is reopened with the cart persisted under it,
// anything else gets a fresh id.
func (s *Storefront) OpenSession(
	ctx context.Context, sessionID string,
) (string, error) {
	const op = "Storefront.OpenSession"

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if _, err := uuid.Parse(sessionID); err != nil {
		sessionID = s.newID()
	}

	if _, err := s.lookup(sessionID); err == nil {
		return sessionID, nil
	}

	items, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	sess := s.newSession(sessionID, items)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		s.sessions[sessionID] = sess
	}
	return sessionID, nil
}

func (s *Storefront) Dispatch(
	ctx context.Context, sessionID string, a domain.Action,
) error {
	const op = "Storefront.Dispatch"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	handle, ok := s.handlers[a.Type]
	if !ok {
		return fmt.Errorf("%s: %w: %q", op, ErrUnknownAction, a.Type)
	}

	sess, err := s.lookup(sessionID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sess.mu.Lock()
	err = handle(ctx, sess, a)
	sess.mu.Unlock()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.publish(ctx, sessionID, a)
	return nil
}

// EvictIdle forgets sessions not used for ttl. Their carts stay persisted.
func (s *Storefront) EvictIdle(ttl time.Duration) int {
	deadline := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(deadline) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// RunEvictor calls [Storefront.EvictIdle] every interval until ctx is done.
func (s *Storefront) RunEvictor(
	ctx context.Context, interval, ttl time.Duration,
) {
	const op = "Storefront.RunEvictor"
	log := slog.With("op", op)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.EvictIdle(ttl); n != 0 {
				log.Debug("idle sessions evicted", "nSessions", n)
			}
		}
	}
}

func (s *Storefront) lookup(sessionID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.lastSeen = s.now()
	return sess, nil
}

func (s *Storefront) newSession(id string, items []domain.CartItem) *Session {
	sess := &Session{
		id:       id,
		cart:     domain.Cart{Items: items},
		lastSeen: s.now(),
	}
	s.renderCategories(sess)
	s.navigate(sess, domain.PageCatalog)
	return sess
}

func (s *Storefront) publish(
	ctx context.Context, sessionID string, a domain.Action,
) {
	const op = "Storefront.publish"

	if s.events == nil {
		return
	}

	evt := domain.ClientEvent{
		SessionID:  sessionID,
		Action:     a,
		OccurredAt: s.now(),
	}

	// The action is already applied, a slow broker must not hold the request.
	ctx, cancel := context.WithTimeout(
		context.WithoutCancel(ctx), s.settings.PublishTimeout,
	)
	defer cancel()

	if err := s.events.ProduceEvent(ctx, evt); err != nil {
		slog.Warn(
			"failed to publish client event",
			"op", op, "action", a.Type, "err", err,
		)
	}
}
