// Package session keeps the identity of the current user and mirrors it to
// local storage so it survives restarts.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"harcama/internal/core"
	"harcama/internal/log"
)

// DefaultKey is the storage key holding the serialized user.
const DefaultKey = "expense_tracker_user"

// Storage is a string key/value store.
type Storage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Listener is called with the new user after every change; nil means
// logged out.
type Listener func(user *core.User)

// Store holds at most one user. It is loading from construction until
// Init returns.
type Store struct {
	storage Storage
	key     string
	logger  *log.Logger

	mu        sync.RWMutex
	user      *core.User
	loading   bool
	nextID    int
	listeners map[int]Listener

	initOnce sync.Once
}

func New(storage Storage, key string, logger *log.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Store{
		storage:   storage,
		key:       key,
		logger:    logger.WithComponent(log.ComponentSession),
		loading:   true,
		listeners: make(map[int]Listener),
	}
}

// Init hydrates the store from storage once. Unreadable or corrupt state
// is treated as no session; corrupt values are removed.
func (s *Store) Init(ctx context.Context) {
	s.initOnce.Do(func() {
		user := s.hydrate(ctx)

		s.mu.Lock()
		s.user = user
		s.loading = false
		s.mu.Unlock()
	})
}

func (s *Store) hydrate(ctx context.Context) *core.User {
	raw, ok, err := s.storage.GetItem(ctx, s.key)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to read stored session",
			log.FieldStorageKey, s.key,
			log.FieldErrorType, log.ErrorTypeDatabase,
			log.FieldError, err.Error())
		return nil
	}
	if !ok {
		return nil
	}

	var u core.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.Validate() != nil {
		s.logger.WarnContext(ctx, "Discarding corrupt stored session",
			log.FieldStorageKey, s.key,
			log.FieldErrorType, log.ErrorTypeCorruptState)
		if rmErr := s.storage.RemoveItem(ctx, s.key); rmErr != nil {
			s.logger.WarnContext(ctx, "Failed to remove corrupt session",
				log.FieldStorageKey, s.key,
				log.FieldError, rmErr.Error())
		}
		return nil
	}

	s.logger.DebugContext(ctx, "Session restored", log.FieldUserID, u.ID.String())
	return &u
}

// Reload re-reads the stored session, picking up a login or logout made
// by another process sharing the storage. Listeners are notified when the
// user changed.
func (s *Store) Reload(ctx context.Context) (core.User, bool) {
	user := s.hydrate(ctx)

	s.mu.Lock()
	changed := !sameUser(s.user, user)
	s.user = user
	s.loading = false
	listeners := make([]Listener, 0, len(s.listeners))
	if changed {
		for _, l := range s.listeners {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(copyUser(user))
	}

	if user == nil {
		return core.User{}, false
	}
	return *user, true
}

// Loading reports whether Init has not completed yet.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// User returns the current user, if any.
func (s *Store) User() (core.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return core.User{}, false
	}
	return *s.user, true
}

// SetUser replaces the current user and persists the change. A nil user
// logs out. Memory is updated even when persisting fails.
func (s *Store) SetUser(ctx context.Context, user *core.User) error {
	var (
		stored *core.User
		raw    []byte
	)
	if user != nil {
		u := *user
		stored = &u
		var err error
		raw, err = json.Marshal(u)
		if err != nil {
			return fmt.Errorf("encode session: %w", err)
		}
	}

	s.mu.Lock()
	s.user = stored
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	var persistErr error
	if stored == nil {
		persistErr = s.storage.RemoveItem(ctx, s.key)
	} else {
		persistErr = s.storage.SetItem(ctx, s.key, string(raw))
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(copyUser(stored))
	}

	if persistErr != nil {
		return fmt.Errorf("persist session: %w", persistErr)
	}
	return nil
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func copyUser(u *core.User) *core.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func sameUser(a, b *core.User) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID && a.Email == b.Email
}
