package session

import (
	"context"
	"sync"
	"time"

	"shop-service/internal/models"
	"shop-service/internal/util"
)

// User is the slice of account state kept in the session.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

// Session is the server-side state behind one opaque cookie: the signed-in
// user (nil for guests) and the cart.
type Session struct {
	ID        string            `json:"id"`
	User      *User             `json:"user,omitempty"`
	Cart      []models.CartItem `json:"cart"`
	CreatedAt time.Time         `json:"createdAt"`
}

// New creates an empty session with a fresh opaque ID.
func New() *Session {
	return &Session{
		ID:        util.NewID(),
		Cart:      []models.CartItem{},
		CreatedAt: util.Now(),
	}
}

// IsAdmin reports whether the session belongs to a signed-in admin.
func (s *Session) IsAdmin() bool {
	return s.User != nil && s.User.Role == models.RoleAdmin
}

// Store persists sessions keyed by their opaque ID.
type Store interface {
	// Get returns the session for id, or nil if absent or expired.
	Get(ctx context.Context, id string) (*Session, error)
	// Save persists the session, refreshing its TTL.
	Save(ctx context.Context, sess *Session) error
	// Delete removes the session.
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	sess      *Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Suitable for a single
// instance and for tests; entries expire lazily on Get.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	entry, ok := m.entries[id]
	m.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, id)
		m.mu.Unlock()
		return nil, nil
	}
	return entry.sess, nil
}

func (m *MemoryStore) Save(ctx context.Context, sess *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[sess.ID] = memoryEntry{sess: sess, expiresAt: time.Now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}
