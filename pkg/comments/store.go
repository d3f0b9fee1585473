package comments

import (
	"sync"
	"time"
)

// Attribute is the name of the entity attribute that holds the comments,
// as passed to the entity's touch function.
const Attribute = "comments"

// Store is the ordered collection of comments owned by exactly one entity.
// Every mutation calls the touch function passed to NewStore once,
// after the store's lock has been released.
type Store struct {
	mu       sync.RWMutex
	comments []*Comment
	byID     map[string]*Comment
	touch    func()
}

// NewStore returns an empty Store. touch may be nil.
func NewStore(touch func()) *Store {
	if touch == nil {
		touch = func() {}
	}

	return &Store{
		byID:  make(map[string]*Comment),
		touch: touch,
	}
}

// Add appends the comment to the store and touches it.
// A comment with the same ID is replaced.
func (s *Store) Add(c *Comment) {
	s.mu.Lock()
	s.put(c.clone())
	s.mu.Unlock()

	s.touch()
}

// Load fills the store with persisted comments without touching it.
func (s *Store) Load(comments []*Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range comments {
		s.put(c.clone())
	}
}

// Get returns a copy of the comment with the given ID.
func (s *Store) Get(id string) (*Comment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.byID[id]; ok {
		return c.clone(), true
	}

	return nil, false
}

// Comments returns copies of all comments in insertion order.
func (s *Store) Comments() []*Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comments := make([]*Comment, 0, len(s.comments))
	for _, c := range s.comments {
		comments = append(comments, c.clone())
	}

	return comments
}

// Len returns the number of comments.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.comments)
}

// Remove removes the comments with the given IDs and returns how many were removed.
// The store is touched once if anything has been removed.
func (s *Store) Remove(ids ...string) int {
	s.mu.Lock()
	removed := s.remove(ids)
	s.mu.Unlock()

	if removed > 0 {
		s.touch()
	}

	return removed
}

// RemoveAll clears the store, touches it and returns the IDs of the removed comments.
func (s *Store) RemoveAll() []string {
	s.mu.Lock()
	ids := make([]string, 0, len(s.comments))
	for _, c := range s.comments {
		ids = append(ids, c.ID)
	}

	s.comments = nil
	s.byID = make(map[string]*Comment)
	s.mu.Unlock()

	s.touch()

	return ids
}

// RemoveExpired removes all comments expired at now as one batch and returns their IDs.
// The store is touched once if anything has expired.
func (s *Store) RemoveExpired(now time.Time) []string {
	s.mu.Lock()
	var expired []string
	for _, c := range s.comments {
		if c.IsExpired(now) {
			expired = append(expired, c.ID)
		}
	}

	s.remove(expired)
	s.mu.Unlock()

	if len(expired) > 0 {
		s.touch()
	}

	return expired
}

// update calls f for every comment in insertion order while holding the lock.
// f may modify the comment and reports whether it did so.
// The store is touched once if any comment has been modified.
func (s *Store) update(f func(*Comment) bool) {
	s.mu.Lock()
	var modified bool
	for _, c := range s.comments {
		if f(c) {
			modified = true
		}
	}
	s.mu.Unlock()

	if modified {
		s.touch()
	}
}

func (s *Store) put(c *Comment) {
	if _, ok := s.byID[c.ID]; ok {
		s.remove([]string{c.ID})
	}

	s.comments = append(s.comments, c)
	s.byID[c.ID] = c
}

func (s *Store) remove(ids []string) int {
	if len(ids) == 0 {
		return 0
	}

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.byID[id]; ok {
			drop[id] = struct{}{}
			delete(s.byID, id)
		}
	}

	if len(drop) == 0 {
		return 0
	}

	kept := s.comments[:0]
	for _, c := range s.comments {
		if _, ok := drop[c.ID]; !ok {
			kept = append(kept, c)
		}
	}

	// Release references in the now unused tail.
	for i := len(kept); i < len(s.comments); i++ {
		s.comments[i] = nil
	}

	s.comments = kept

	return len(drop)
}
