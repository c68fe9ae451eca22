package memory

import (
	"sync"

	"github.com/wwwizards/leadflow/internal/entity"
)

// SessionStore is the process-wide registry of active conversations,
// one slot per user. Each slot carries its own mutex so transitions for
// one user serialize without blocking anyone else; the registry lock is
// only held long enough to find or create a slot.
type SessionStore struct {
	mu    sync.Mutex
	slots map[int64]*slot
}

type slot struct {
	mu      sync.Mutex
	session *entity.Session
	dead    bool // set when the slot is removed from the registry
}

func NewSessionStore() *SessionStore {
	return &SessionStore{slots: make(map[int64]*slot)}
}

// WithUser runs fn under the user's slot lock. fn receives the current
// session (nil if none) and returns the session to keep; returning nil
// clears it. Empty slots are dropped from the registry so cancelled
// users do not accumulate.
func (st *SessionStore) WithUser(userID int64, fn func(s *entity.Session) *entity.Session) {
	for {
		st.mu.Lock()
		sl, ok := st.slots[userID]
		if !ok {
			sl = &slot{}
			st.slots[userID] = sl
		}
		st.mu.Unlock()

		sl.mu.Lock()
		// A concurrent clear may have reclaimed the slot between the
		// registry lookup and acquiring its lock; writing into it would
		// lose the session. Dead slots never come back: retry the lookup.
		if sl.dead {
			sl.mu.Unlock()
			continue
		}
		sl.session = fn(sl.session)
		cleared := sl.session == nil
		sl.mu.Unlock()

		if cleared {
			st.mu.Lock()
			// Re-check under both locks: another event may have started a
			// new session in this slot meanwhile.
			if cur, ok := st.slots[userID]; ok && cur == sl {
				sl.mu.Lock()
				if sl.session == nil {
					sl.dead = true
					delete(st.slots, userID)
				}
				sl.mu.Unlock()
			}
			st.mu.Unlock()
		}
		return
	}
}

// Len reports the number of users with an active session.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for _, sl := range st.slots {
		sl.mu.Lock()
		if sl.session != nil {
			n++
		}
		sl.mu.Unlock()
	}
	return n
}
