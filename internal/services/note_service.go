package services

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/engineers4hire/jobdesk/internal/dtos"
	"github.com/engineers4hire/jobdesk/internal/models"
	"github.com/engineers4hire/jobdesk/internal/store"
)

// NoteService manages per-job application notes. Notes are keyed by the
// canonical job id and survive job-list refreshes; entries referring to
// jobs that dropped out of the feed are kept on purpose.
type NoteService struct {
	store store.Store
	log   *zap.Logger
}

func NewNoteService(st store.Store, log *zap.Logger) *NoteService {
	if log == nil {
		log = zap.NewNop()
	}
	return &NoteService{store: st, log: log}
}

// Save upserts the note for a job.
func (s *NoteService) Save(jobID string, req dtos.NoteRequest) (models.ApplicationNote, error) {
	note := models.ApplicationNote{
		JobID:       jobID,
		CoverLetter: strings.TrimSpace(req.CoverLetter),
		Notes:       strings.TrimSpace(req.Notes),
	}
	if err := s.store.SaveNote(note); err != nil {
		return models.ApplicationNote{}, fmt.Errorf("save note: %w", err)
	}
	s.log.Info("application note saved", zap.String("job_id", jobID))
	return note, nil
}

// Get returns the note for a job, reporting whether one exists.
func (s *NoteService) Get(jobID string) (models.ApplicationNote, bool, error) {
	return s.store.Note(jobID)
}

// All returns the full note map.
func (s *NoteService) All() (map[string]models.ApplicationNote, error) {
	return s.store.Notes()
}
