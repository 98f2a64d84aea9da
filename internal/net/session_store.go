package net

import (
	"slices"

	"github.com/infinia/server/internal/world"
)

// SessionStore tracks live sessions by ID and identity.
// Game loop only.
type SessionStore struct {
	byID       map[uint64]*Session
	byIdentity map[world.Identity]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		byID:       make(map[uint64]*Session),
		byIdentity: make(map[world.Identity]*Session),
	}
}

// Add registers sess. It returns false, and stores nothing, when another
// live session already holds the same identity.
func (st *SessionStore) Add(sess *Session) bool {
	if other, ok := st.byIdentity[sess.Identity]; ok && other.ID != sess.ID {
		return false
	}
	st.byID[sess.ID] = sess
	st.byIdentity[sess.Identity] = sess
	return true
}

func (st *SessionStore) Remove(id uint64) {
	sess, ok := st.byID[id]
	if !ok {
		return
	}
	delete(st.byID, id)
	if st.byIdentity[sess.Identity] == sess {
		delete(st.byIdentity, sess.Identity)
	}
}

func (st *SessionStore) ByIdentity(id world.Identity) *Session {
	return st.byIdentity[id]
}

func (st *SessionStore) Count() int {
	return len(st.byID)
}

// ForEach visits sessions in ascending ID order.
func (st *SessionStore) ForEach(fn func(*Session)) {
	ids := make([]uint64, 0, len(st.byID))
	for id := range st.byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if sess := st.byID[id]; sess != nil {
			fn(sess)
		}
	}
}
