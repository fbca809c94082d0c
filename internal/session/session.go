// Package session manages the anonymous reader identity stored on this
// device.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blackwell-systems/readshelf/internal/kv"
	"github.com/blackwell-systems/readshelf/internal/reactive"
	"github.com/blackwell-systems/readshelf/internal/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Storage keys.
const (
	CurrentKey  = "school-library-session"
	RegistryKey = "all-sessions"
)

// ErrNoIdentity is returned by Update when nobody is signed in.
var ErrNoIdentity = errors.New("no current identity")

// Identity is a locally generated reader identity. StudentID namespaces all
// per-reader data and may carry a "-<n>" suffix that is never displayed.
type Identity struct {
	SessionID string    `json:"sessionId"`
	StudentID string    `json:"studentId"`
	Name      string    `json:"name" validate:"required,max=40"`
	Class     string    `json:"class,omitempty" validate:"max=40"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsZero reports whether i is the empty identity.
func (i Identity) IsZero() bool {
	return i.SessionID == "" && i.StudentID == ""
}

// Manager owns the current identity and the registry of every identity
// created on this device.
type Manager struct {
	store    kv.Store
	current  *reactive.Value[Identity]
	validate *validation.Validator
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for storage warnings.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDGenerator overrides the random UUID source.
func WithIDGenerator(gen func() string) Option {
	return func(m *Manager) { m.newID = gen }
}

// NewManager creates a Manager over store. A nil store runs in memory only.
func NewManager(store kv.Store, opts ...Option) *Manager {
	if store == nil {
		store = kv.Nop{}
	}
	m := &Manager{
		store:    store,
		current:  reactive.New(Identity{}),
		validate: validation.New(),
		logger:   zap.NewNop(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Current exposes the signed-in identity; the zero Identity means nobody.
func (m *Manager) Current() reactive.Readable[Identity] {
	return m.current
}

// Load restores the current identity from storage. A malformed record is
// logged, removed, and treated as absent.
func (m *Manager) Load() (Identity, bool) {
	var id Identity
	err := kv.GetJSON(m.store, CurrentKey, &id)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		m.current.Set(Identity{})
		return Identity{}, false
	case err != nil:
		m.logger.Warn("discarding unreadable session", zap.Error(err))
		if derr := m.store.Delete(CurrentKey); derr != nil {
			m.logger.Warn("failed to remove session", zap.Error(derr))
		}
		m.current.Set(Identity{})
		return Identity{}, false
	case id.IsZero():
		m.current.Set(Identity{})
		return Identity{}, false
	}

	m.current.Set(id)
	return id, true
}

// Create generates a new identity, records it in the registry and makes it
// current. Readers sharing a name and class with earlier identities get a
// numbered StudentID so their shelves stay separate. The only error is
// invalid input; storage failures are logged and the identity still applies
// for this process.
func (m *Manager) Create(name, class string) (Identity, error) {
	id := Identity{
		SessionID: m.newID(),
		StudentID: m.newID(),
		Name:      strings.TrimSpace(name),
		Class:     strings.TrimSpace(class),
		CreatedAt: m.now().UTC(),
	}
	if err := m.validate.Validate(id); err != nil {
		return Identity{}, fmt.Errorf("create identity: %w", err)
	}

	registry := m.registry()
	if n := countSame(registry, id.Name, id.Class); n > 0 {
		id.StudentID = fmt.Sprintf("%s-%d", id.StudentID, n+1)
	}

	m.persist(CurrentKey, id)
	m.persist(RegistryKey, append(registry, id))

	m.current.Set(id)
	m.logger.Info("identity created", zap.String("student_id", id.StudentID))
	return id, nil
}

// Update applies fn to the current identity and persists the result. The
// identifiers cannot be changed this way.
func (m *Manager) Update(fn func(Identity) Identity) (Identity, error) {
	cur := m.current.Get()
	if cur.IsZero() {
		return Identity{}, ErrNoIdentity
	}

	next := fn(cur)
	next.SessionID = cur.SessionID
	next.StudentID = cur.StudentID
	next.CreatedAt = cur.CreatedAt
	next.Name = strings.TrimSpace(next.Name)
	next.Class = strings.TrimSpace(next.Class)
	if err := m.validate.Validate(next); err != nil {
		return cur, fmt.Errorf("update identity: %w", err)
	}

	m.current.Set(next)
	m.persist(CurrentKey, next)
	return next, nil
}

// Clear signs out. The registry and every shelf are left in place.
func (m *Manager) Clear() {
	if err := m.store.Delete(CurrentKey); err != nil {
		m.logger.Warn("failed to remove session", zap.Error(err))
	}
	m.current.Set(Identity{})
}

// Registry returns every identity created on this device, oldest first.
func (m *Manager) Registry() []Identity {
	return m.registry()
}

func (m *Manager) registry() []Identity {
	var all []Identity
	err := kv.GetJSON(m.store, RegistryKey, &all)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		m.logger.Warn("ignoring unreadable identity registry", zap.Error(err))
		return nil
	}
	return all
}

func (m *Manager) persist(key string, v any) {
	if err := kv.SetJSON(m.store, key, v); err != nil {
		m.logger.Warn("failed to persist", zap.String("key", key), zap.Error(err))
	}
}

func countSame(all []Identity, name, class string) int {
	n := 0
	for _, other := range all {
		if strings.TrimSpace(other.Name) == name && strings.TrimSpace(other.Class) == class {
			n++
		}
	}
	return n
}
