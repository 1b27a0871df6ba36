package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/engineers4hire/jobdesk/internal/auth"
	"github.com/engineers4hire/jobdesk/internal/dtos"
	"github.com/engineers4hire/jobdesk/internal/models"
	"github.com/engineers4hire/jobdesk/internal/services"
)

// JobHandler serves the job table view model and the per-job notes.
type JobHandler struct {
	JobService  *services.JobService
	NoteService *services.NoteService
}

func NewJobHandler(jobs *services.JobService, notes *services.NoteService) *JobHandler {
	return &JobHandler{
		JobService:  jobs,
		NoteService: notes,
	}
}

// HealthCheck is the GET /health endpoint.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListJobs is the GET /jobs endpoint. Search and facet selections come
// in as query parameters; absent or "all" leaves a facet unconstrained.
func (h *JobHandler) ListJobs(c *gin.Context) {
	criteria := models.FilterCriteria{
		SearchTerm:     c.Query("search"),
		Category:       c.Query("category"),
		Location:       c.Query("location"),
		EmploymentType: c.Query("type"),
		Source:         c.Query("source"),
	}
	view := h.JobService.View(criteria)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": view})
}

// RefreshJobs is the POST /jobs/refresh endpoint. Concurrent refreshes
// are coalesced by the service; the last-known list survives failures.
func (h *JobHandler) RefreshJobs(c *gin.Context) {
	err := h.JobService.Refresh(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true, "data": h.JobService.View(models.FilterCriteria{})})
	case errors.Is(err, auth.ErrSessionExpired), errors.Is(err, auth.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired or not authenticated: " + err.Error()})
	case errors.Is(err, auth.ErrAuthUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to refresh jobs: " + err.Error()})
	}
}

// GetNote is the GET /jobs/:id/notes endpoint.
func (h *JobHandler) GetNote(c *gin.Context) {
	note, ok, err := h.NoteService.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load note: " + err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No note for this job"})
		return
	}
	c.JSON(http.StatusOK, note)
}

// SaveNote is the PUT /jobs/:id/notes endpoint. A missing cover letter
// is rejected here at the boundary; it never reaches the store.
func (h *JobHandler) SaveNote(c *gin.Context) {
	var req dtos.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	note, err := h.NoteService.Save(c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save note: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Application notes saved!", "data": note})
}

// ListNotes is the GET /notes endpoint returning the full note map.
func (h *JobHandler) ListNotes(c *gin.Context) {
	notes, err := h.NoteService.All()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load notes: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, notes)
}
