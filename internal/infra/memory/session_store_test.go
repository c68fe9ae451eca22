package memory

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wwwizards/leadflow/internal/entity"
)

func newSession(userID int64) *entity.Session {
	return &entity.Session{
		UserID:    userID,
		Flow:      "order_quiz",
		Answers:   make(map[string]string),
		StartedAt: time.Now(),
	}
}

func TestWithUserCreateMutateClear(t *testing.T) {
	store := NewSessionStore()

	store.WithUser(1, func(s *entity.Session) *entity.Session {
		require.Nil(t, s)
		return newSession(1)
	})
	assert.Equal(t, 1, store.Len())

	store.WithUser(1, func(s *entity.Session) *entity.Session {
		require.NotNil(t, s)
		s.Answers["budget"] = "over_1m"
		s.StepIndex++
		return s
	})

	store.WithUser(1, func(s *entity.Session) *entity.Session {
		assert.Equal(t, "over_1m", s.Answers["budget"])
		assert.Equal(t, 1, s.StepIndex)
		return nil
	})
	assert.Equal(t, 0, store.Len())
}

func TestClearedSlotsAreDropped(t *testing.T) {
	store := NewSessionStore()

	for id := int64(1); id <= 50; id++ {
		store.WithUser(id, func(_ *entity.Session) *entity.Session {
			return newSession(id)
		})
		store.WithUser(id, func(_ *entity.Session) *entity.Session {
			return nil
		})
	}

	assert.Equal(t, 0, store.Len())
	assert.Empty(t, store.slots)
}

func TestSameUserTransitionsAreSerialized(t *testing.T) {
	store := NewSessionStore()
	store.WithUser(1, func(_ *entity.Session) *entity.Session {
		return newSession(1)
	})

	const events = 200
	var wg sync.WaitGroup
	for i := 0; i < events; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.WithUser(1, func(s *entity.Session) *entity.Session {
				// Read-modify-write: lost updates would show up as a
				// final count below the event count.
				s.Answers[strconv.Itoa(s.StepIndex)] = "x"
				s.StepIndex++
				return s
			})
		}(i)
	}
	wg.Wait()

	store.WithUser(1, func(s *entity.Session) *entity.Session {
		assert.Equal(t, events, s.StepIndex)
		assert.Len(t, s.Answers, events)
		return s
	})
}

func TestReclaimedSlotIsNeverWrittenAgain(t *testing.T) {
	store := NewSessionStore()
	store.WithUser(1, func(_ *entity.Session) *entity.Session {
		return newSession(1)
	})

	// A caller that looked up the slot before a concurrent clear would
	// otherwise resume on this stale pointer.
	store.mu.Lock()
	stale := store.slots[1]
	store.mu.Unlock()

	store.WithUser(1, func(_ *entity.Session) *entity.Session {
		return nil
	})

	stale.mu.Lock()
	dead := stale.dead
	stale.mu.Unlock()
	require.True(t, dead, "a slot removed from the registry must refuse further writes")

	// The next event gets a fresh slot and the session sticks.
	store.WithUser(1, func(s *entity.Session) *entity.Session {
		assert.Nil(t, s)
		return newSession(1)
	})
	store.mu.Lock()
	fresh := store.slots[1]
	store.mu.Unlock()
	assert.NotSame(t, stale, fresh)
	assert.Equal(t, 1, store.Len())
}

func TestConcurrentClearAndCreateNeverLoseTheSession(t *testing.T) {
	store := NewSessionStore()

	for i := 0; i < 2000; i++ {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.WithUser(1, func(_ *entity.Session) *entity.Session {
				return nil
			})
		}()
		go func() {
			defer wg.Done()
			store.WithUser(1, func(_ *entity.Session) *entity.Session {
				return newSession(1)
			})
		}()
		wg.Wait()

		// Whatever order the pair ran in, a follow-up write must land in
		// the live slot and be visible to the next event.
		store.WithUser(1, func(_ *entity.Session) *entity.Session {
			return newSession(1)
		})
		var found bool
		store.WithUser(1, func(s *entity.Session) *entity.Session {
			found = s != nil
			return nil
		})
		require.True(t, found, "iteration %d: session vanished", i)
	}
}

func TestUsersDoNotShareSessions(t *testing.T) {
	store := NewSessionStore()

	store.WithUser(1, func(_ *entity.Session) *entity.Session {
		s := newSession(1)
		s.Answers["service_type"] = "shop"
		return s
	})

	store.WithUser(2, func(s *entity.Session) *entity.Session {
		assert.Nil(t, s)
		return nil
	})
}
