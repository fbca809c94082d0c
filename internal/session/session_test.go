package session_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/blackwell-systems/readshelf/internal/kv"
	"github.com/blackwell-systems/readshelf/internal/session"
	"github.com/blackwell-systems/readshelf/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}
}

func newManager(store kv.Store, opts ...session.Option) *session.Manager {
	base := []session.Option{
		session.WithClock(func() time.Time { return fixedNow }),
		session.WithIDGenerator(sequentialIDs()),
	}
	return session.NewManager(store, append(base, opts...)...)
}

type failingStore struct{ kv.Nop }

func (failingStore) Set(string, []byte) error { return errors.New("disk full") }

func TestCreate(t *testing.T) {
	store := kv.NewMemory()
	m := newManager(store)

	id, err := m.Create("  Alex ", " 3B ")
	require.NoError(t, err)
	assert.Equal(t, session.Identity{
		SessionID: "id1",
		StudentID: "id2",
		Name:      "Alex",
		Class:     "3B",
		CreatedAt: fixedNow,
	}, id)
	assert.Equal(t, id, m.Current().Get())

	var stored session.Identity
	require.NoError(t, kv.GetJSON(store, session.CurrentKey, &stored))
	assert.Equal(t, id, stored)
	assert.Len(t, m.Registry(), 1)
}

func TestCreate_DisambiguatesDuplicates(t *testing.T) {
	m := newManager(kv.NewMemory())

	first, err := m.Create("Alex", "")
	require.NoError(t, err)
	second, err := m.Create("Alex", "")
	require.NoError(t, err)
	third, err := m.Create(" Alex", "  ")
	require.NoError(t, err)
	other, err := m.Create("Alex", "3B")
	require.NoError(t, err)

	assert.Equal(t, "id2", first.StudentID)
	assert.Equal(t, "id4-2", second.StudentID)
	assert.Equal(t, "id6-3", third.StudentID)
	assert.Equal(t, "id8", other.StudentID, "different class is not a duplicate")

	assert.Equal(t, "Alex", second.Name, "display name keeps no suffix")
	assert.Len(t, m.Registry(), 4)
}

func TestCreate_RejectsEmptyName(t *testing.T) {
	m := newManager(kv.NewMemory())
	_, err := m.Create("   ", "3B")
	assert.ErrorIs(t, err, validation.ErrInvalid)
	assert.True(t, m.Current().Get().IsZero())
	assert.Empty(t, m.Registry())
}

func TestCreate_StorageFailureKeepsIdentity(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	m := newManager(failingStore{}, session.WithLogger(zap.New(core)))

	id, err := m.Create("Sam", "")
	require.NoError(t, err)
	assert.Equal(t, id, m.Current().Get())
	assert.Equal(t, 2, logs.FilterMessage("failed to persist").Len())
}

func TestCreate_NilStore(t *testing.T) {
	m := session.NewManager(nil)
	id, err := m.Create("Sam", "")
	require.NoError(t, err)
	assert.NotEmpty(t, id.SessionID)
	assert.NotEqual(t, id.SessionID, id.StudentID)

	_, ok := m.Load()
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	store := kv.NewMemory()
	created, err := newManager(store).Create("Alex", "3B")
	require.NoError(t, err)

	m := newManager(store)
	id, ok := m.Load()
	require.True(t, ok)
	assert.Equal(t, created, id)
	assert.Equal(t, created, m.Current().Get())
}

func TestLoad_MalformedIsDiscarded(t *testing.T) {
	store := kv.NewMemory()
	require.NoError(t, store.Set(session.CurrentKey, []byte("{oops")))

	core, logs := observer.New(zapcore.WarnLevel)
	m := newManager(store, session.WithLogger(zap.New(core)))

	id, ok := m.Load()
	assert.False(t, ok)
	assert.True(t, id.IsZero())
	assert.Equal(t, 1, logs.FilterMessage("discarding unreadable session").Len())

	_, err := store.Get(session.CurrentKey)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestCreate_MalformedRegistryCountsAsEmpty(t *testing.T) {
	store := kv.NewMemory()
	require.NoError(t, store.Set(session.RegistryKey, []byte("not a list")))

	m := newManager(store)
	id, err := m.Create("Alex", "")
	require.NoError(t, err)
	assert.Equal(t, "id2", id.StudentID)
	assert.Len(t, m.Registry(), 1)
}

func TestClear(t *testing.T) {
	store := kv.NewMemory()
	m := newManager(store)
	id, err := m.Create("Alex", "")
	require.NoError(t, err)
	require.NoError(t, store.Set("shelf-"+id.StudentID, []byte(`{}`)))

	var seen []session.Identity
	unsub := m.Current().Subscribe(func(i session.Identity) { seen = append(seen, i) })
	defer unsub()

	m.Clear()
	assert.True(t, m.Current().Get().IsZero())
	require.Len(t, seen, 2)
	assert.True(t, seen[1].IsZero())

	_, err = store.Get(session.CurrentKey)
	assert.ErrorIs(t, err, kv.ErrNotFound)
	_, err = store.Get("shelf-" + id.StudentID)
	assert.NoError(t, err, "shelf must survive sign-out")
	assert.Len(t, m.Registry(), 1, "registry must survive sign-out")
}

func TestUpdate(t *testing.T) {
	store := kv.NewMemory()
	m := newManager(store)

	_, err := m.Update(func(i session.Identity) session.Identity { return i })
	assert.ErrorIs(t, err, session.ErrNoIdentity)

	id, err := m.Create("Alex", "")
	require.NoError(t, err)

	next, err := m.Update(func(i session.Identity) session.Identity {
		i.Class = " 4C "
		i.StudentID = "hijacked"
		return i
	})
	require.NoError(t, err)
	assert.Equal(t, "4C", next.Class)
	assert.Equal(t, id.StudentID, next.StudentID)

	reloaded, ok := newManager(store).Load()
	require.True(t, ok)
	assert.Equal(t, next, reloaded)

	_, err = m.Update(func(i session.Identity) session.Identity {
		i.Name = ""
		return i
	})
	assert.ErrorIs(t, err, validation.ErrInvalid)
	assert.Equal(t, next, m.Current().Get())
}
