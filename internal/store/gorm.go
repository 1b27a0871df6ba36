package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/engineers4hire/jobdesk/internal/models"
)

// GormStore backs the persistence surface with the shared gorm database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Token() (string, error) {
	var entry models.SessionEntry
	err := s.db.First(&entry, "key = ?", tokenKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load session token: %w", err)
	}
	return entry.Value, nil
}

func (s *GormStore) SetToken(token string) error {
	entry := models.SessionEntry{Key: tokenKey, Value: token}
	err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("persist session token: %w", err)
	}
	return nil
}

func (s *GormStore) ClearToken() error {
	err := s.db.Delete(&models.SessionEntry{}, "key = ?", tokenKey).Error
	if err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}
	return nil
}

func (s *GormStore) Note(jobID string) (models.ApplicationNote, bool, error) {
	var note models.ApplicationNote
	err := s.db.First(&note, "job_id = ?", jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ApplicationNote{}, false, nil
	}
	if err != nil {
		return models.ApplicationNote{}, false, fmt.Errorf("load note %s: %w", jobID, err)
	}
	return note, true, nil
}

func (s *GormStore) SaveNote(note models.ApplicationNote) error {
	err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&note).Error
	if err != nil {
		return fmt.Errorf("save note %s: %w", note.JobID, err)
	}
	return nil
}

func (s *GormStore) Notes() (map[string]models.ApplicationNote, error) {
	var notes []models.ApplicationNote
	if err := s.db.Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("load notes: %w", err)
	}
	out := make(map[string]models.ApplicationNote, len(notes))
	for _, n := range notes {
		out[n.JobID] = n
	}
	return out, nil
}
