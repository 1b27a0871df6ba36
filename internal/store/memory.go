package store

import (
	"sync"
	"time"

	"github.com/engineers4hire/jobdesk/internal/models"
)

// MemoryStore keeps session state in process memory. Used when no
// database is configured; notes then last only for the process lifetime.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
	notes map[string]models.ApplicationNote
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{notes: make(map[string]models.ApplicationNote)}
}

func (s *MemoryStore) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *MemoryStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

func (s *MemoryStore) Note(jobID string) (models.ApplicationNote, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	note, ok := s.notes[jobID]
	return note, ok, nil
}

func (s *MemoryStore) SaveNote(note models.ApplicationNote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if existing, ok := s.notes[note.JobID]; ok {
		note.CreatedAt = existing.CreatedAt
	} else {
		note.CreatedAt = now
	}
	note.UpdatedAt = now
	s.notes[note.JobID] = note
	return nil
}

func (s *MemoryStore) Notes() (map[string]models.ApplicationNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.ApplicationNote, len(s.notes))
	for id, note := range s.notes {
		out[id] = note
	}
	return out, nil
}
