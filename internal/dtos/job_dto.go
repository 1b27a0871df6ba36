package dtos

import (
	"github.com/engineers4hire/jobdesk/internal/models"
)

// NoteRequest is the body of PUT /jobs/:id/notes. The cover letter is
// required; saves without one are rejected at the boundary.
type NoteRequest struct {
	CoverLetter string `json:"cover_letter" binding:"required"`
	Notes       string `json:"notes"`
}

// JobView is the full view model handed to the presentation layer: the
// filtered jobs plus facets, session state and the note map.
type JobView struct {
	Jobs            []models.Job                      `json:"jobs"`
	Total           int                               `json:"total"`
	Facets          models.FacetOptions               `json:"facets"`
	IsAuthenticated bool                              `json:"is_authenticated"`
	IsLoading       bool                              `json:"is_loading"`
	IsRefreshing    bool                              `json:"is_refreshing"`
	Notice          string                            `json:"notice,omitempty"`
	NoteMap         map[string]models.ApplicationNote `json:"note_map"`
}

// AuthStatus describes the current session for GET /auth/status.
type AuthStatus struct {
	State           string `json:"state"`
	IsAuthenticated bool   `json:"is_authenticated"`
	IsLoading       bool   `json:"is_loading"`
	Notice          string `json:"notice,omitempty"`
}
