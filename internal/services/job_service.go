package services

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/engineers4hire/jobdesk/internal/auth"
	"github.com/engineers4hire/jobdesk/internal/dtos"
	"github.com/engineers4hire/jobdesk/internal/filter"
	"github.com/engineers4hire/jobdesk/internal/models"
	"github.com/engineers4hire/jobdesk/internal/normalizer"
	"github.com/engineers4hire/jobdesk/internal/store"
)

// JobService fetches the job payload through the session, normalizes it
// and holds the current collection in memory. The collection is replaced
// wholesale on every refresh; it is never persisted.
type JobService struct {
	session *auth.Session
	store   store.Store
	norm    *normalizer.Normalizer
	log     *zap.Logger

	// Concurrent refresh triggers are coalesced into one upstream
	// fetch so the last-write-wins race between overlapping fetches
	// cannot occur.
	group singleflight.Group

	mu         sync.RWMutex
	jobs       []models.Job
	loaded     bool
	refreshing bool
	fetchErr   string
}

func NewJobService(session *auth.Session, st store.Store, norm *normalizer.Normalizer, log *zap.Logger) *JobService {
	if log == nil {
		log = zap.NewNop()
	}
	return &JobService{
		session: session,
		store:   st,
		norm:    norm,
		log:     log,
	}
}

// Refresh fetches and normalizes a new job collection. On failure the
// last-known list stays visible and the error is surfaced once through
// the view model. Callers racing into Refresh share a single fetch.
func (s *JobService) Refresh(ctx context.Context) error {
	_, err, _ := s.group.Do("refresh", func() (any, error) {
		return nil, s.doRefresh(ctx)
	})
	return err
}

func (s *JobService) doRefresh(ctx context.Context) error {
	s.mu.Lock()
	s.refreshing = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.refreshing = false
		s.mu.Unlock()
	}()

	payload, err := s.session.GetJobData(ctx)
	if err != nil {
		s.mu.Lock()
		s.fetchErr = "Could not refresh jobs. Showing the last loaded results."
		s.mu.Unlock()
		s.log.Warn("job fetch failed", zap.Error(err))
		return err
	}

	jobs := s.norm.Normalize(payload)
	s.mu.Lock()
	s.jobs = jobs
	s.loaded = true
	s.fetchErr = ""
	s.mu.Unlock()
	s.log.Info("job collection refreshed", zap.Int("jobs", len(jobs)))
	return nil
}

// View assembles the presentation view model: jobs filtered by the given
// criteria, facet options from the unfiltered collection, session state
// and the persisted note map.
func (s *JobService) View(criteria models.FilterCriteria) dtos.JobView {
	s.mu.RLock()
	jobs := s.jobs
	refreshing := s.refreshing
	fetchErr := s.fetchErr
	s.mu.RUnlock()

	notes, err := s.store.Notes()
	if err != nil {
		s.log.Warn("could not load note map", zap.Error(err))
		notes = map[string]models.ApplicationNote{}
	}

	visible := filter.Apply(jobs, criteria)
	notice := s.session.Notice()
	if notice == "" {
		notice = fetchErr
	}

	return dtos.JobView{
		Jobs:            visible,
		Total:           len(visible),
		Facets:          filter.Options(jobs),
		IsAuthenticated: s.session.IsAuthenticated(),
		IsLoading:       s.session.IsLoading(),
		IsRefreshing:    refreshing,
		Notice:          notice,
		NoteMap:         notes,
	}
}

// Loaded reports whether at least one fetch has completed.
func (s *JobService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Jobs returns the current unfiltered collection.
func (s *JobService) Jobs() []models.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobs
}
