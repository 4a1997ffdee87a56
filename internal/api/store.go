package api

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/samcharles93/visualforge/internal/forge"
)

type sessionRecord struct {
	ID      string
	Path    string
	Session *forge.Session
}

// SessionStore tracks the open containers of a server.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionRecord
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*sessionRecord),
	}
}

func (s *SessionStore) Add(path string, session *forge.Session) *sessionRecord {
	rec := &sessionRecord{
		ID:      newSessionID(),
		Path:    path,
		Session: session,
	}
	s.mu.Lock()
	s.sessions[rec.ID] = rec
	s.mu.Unlock()
	return rec
}

func (s *SessionStore) Get(id string) (*sessionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[id]
	return rec, ok
}

// Remove drops the record without closing its session.
func (s *SessionStore) Remove(id string) (*sessionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	delete(s.sessions, id)
	return rec, true
}

// List returns records ordered by path, then id.
func (s *SessionStore) List() []*sessionRecord {
	s.mu.Lock()
	out := make([]*sessionRecord, 0, len(s.sessions))
	for _, rec := range s.sessions {
		out = append(out, rec)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// CloseAll closes and forgets every session.
func (s *SessionStore) CloseAll() error {
	s.mu.Lock()
	recs := s.sessions
	s.sessions = make(map[string]*sessionRecord)
	s.mu.Unlock()

	var errs []error
	for _, rec := range recs {
		if err := rec.Session.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func newSessionID() string {
	return "um_" + uuid.NewString()
}
