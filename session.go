package adminauth

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// AuthenticatedUser is the profile carried by an authenticated session.
type AuthenticatedUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	DisplayName   string `json:"display_name,omitempty"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	Provider      string `json:"provider,omitempty"`
	ProviderID    string `json:"provider_id,omitempty"`
}

// TokenSet is the token material returned by a code exchange. ExpiresAt is a
// real time value; it serializes as RFC 3339 and must rehydrate as a time.
type TokenSet struct {
	AccessToken  string    `json:"access_token"`
	IDToken      string    `json:"id_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthSession is the authentication snapshot for the browser session. It is
// replaced wholesale on every transition, never field-patched, so observers
// always see a consistent value.
type AuthSession struct {
	IsAuthenticated  bool               `json:"is_authenticated"`
	User             *AuthenticatedUser `json:"user,omitempty"`
	Tokens           *TokenSet          `json:"tokens,omitempty"`
	Loading          bool               `json:"loading"`
	Error            string             `json:"error,omitempty"`
	SessionStartedAt *time.Time         `json:"session_started_at,omitempty"`
	LastActivityAt   *time.Time         `json:"last_activity_at,omitempty"`
}

// DefaultSession is the unauthenticated snapshot.
func DefaultSession() AuthSession {
	return AuthSession{}
}

// SessionObserver is notified synchronously whenever the snapshot changes.
type SessionObserver func(AuthSession)

// SessionStore holds the current AuthSession, persists every replacement
// through the storage port, and notifies observers.
type SessionStore struct {
	mu        sync.RWMutex
	current   AuthSession
	storage   SessionStorage
	observers map[int]SessionObserver
	nextID    int
	logger    Logger
}

// NewSessionStore creates a store and rehydrates any durable snapshot. A
// snapshot that fails to decode is logged and treated as no session so
// startup never crashes on stale data.
func NewSessionStore(storage SessionStorage, logger Logger) *SessionStore {
	if logger == nil {
		logger = defLogger{}
	}

	s := &SessionStore{
		storage:   storage,
		observers: map[int]SessionObserver{},
		current:   DefaultSession(),
		logger:    logger,
	}

	s.restore()

	return s
}

func (s *SessionStore) restore() {
	if s.storage == nil {
		return
	}

	payload, err := s.storage.Load(context.Background())
	if err != nil {
		s.logger.Error("failed to load persisted session: %v", err)
		return
	}
	if len(payload) == 0 {
		return
	}

	session := AuthSession{}
	if err := json.Unmarshal(payload, &session); err != nil {
		s.logger.Error("failed to decode persisted session, discarding: %v", err)
		return
	}

	s.current = session
}

// Current returns the current snapshot.
func (s *SessionStore) Current() AuthSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe registers an observer and returns its unsubscribe function.
// Observers run synchronously on the replacing goroutine.
func (s *SessionStore) Subscribe(observer SessionObserver) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = observer
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Replace swaps the snapshot atomically, persists it, and notifies all
// observers.
func (s *SessionStore) Replace(ctx context.Context, session AuthSession) error {
	s.mu.Lock()
	s.current = session
	observers := make([]SessionObserver, 0, len(s.observers))
	for _, observer := range s.observers {
		observers = append(observers, observer)
	}
	s.mu.Unlock()

	for _, observer := range observers {
		observer(session)
	}

	if s.storage == nil {
		return nil
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}

	return s.storage.Save(ctx, payload)
}

// Clear resets the store to the unauthenticated default and removes the
// durable record.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.Replace(ctx, DefaultSession()); err != nil {
		return err
	}

	if s.storage == nil {
		return nil
	}
	return s.storage.Delete(ctx)
}

// Touch replaces the snapshot with an updated last-activity timestamp.
func (s *SessionStore) Touch(ctx context.Context) error {
	session := s.Current()
	if !session.IsAuthenticated {
		return nil
	}

	now := time.Now()
	session.LastActivityAt = &now
	return s.Replace(ctx, session)
}

// DefaultExpiryThreshold is the lead time used by IsTokenExpiringSoon when
// the caller passes zero.
const DefaultExpiryThreshold = 60 * time.Second

// IsTokenExpiringSoon reports whether the access token is inside the expiry
// window. A session without tokens always counts as expiring.
func (s *SessionStore) IsTokenExpiringSoon(threshold time.Duration) bool {
	if threshold <= 0 {
		threshold = DefaultExpiryThreshold
	}

	session := s.Current()
	if session.Tokens == nil {
		return true
	}

	return time.Now().After(session.Tokens.ExpiresAt.Add(-threshold))
}

// IsSessionStale reports whether the session has been idle longer than the
// given duration pattern, e.g. "30m". Unauthenticated sessions are never
// stale; an authenticated session without an activity timestamp always is.
func (s *SessionStore) IsSessionStale(maxIdle string) (bool, error) {
	session := s.Current()
	if !session.IsAuthenticated {
		return false, nil
	}
	if session.LastActivityAt == nil {
		return true, nil
	}
	return IsOutsideThresholdPeriod(*session.LastActivityAt, maxIdle)
}

// Refresh would renew the token set through the backend proxy. The proxy
// contract is not built yet, so callers get a hard failure instead of a
// silently stale session.
func (s *SessionStore) Refresh(ctx context.Context) error {
	return ErrNotImplemented
}
