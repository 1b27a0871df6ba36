package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engineers4hire/jobdesk/internal/auth"
	"github.com/engineers4hire/jobdesk/internal/normalizer"
	"github.com/engineers4hire/jobdesk/internal/services"
	"github.com/engineers4hire/jobdesk/internal/store"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "token": "tok-1"})
	})
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": []any{
				map[string]any{"id": "job-1", "title": "Senior Engineer", "company": "Acme"},
				map[string]any{"id": "job-2", "title": "Barista", "company": "Beanz"},
			},
		})
	})
	upstream := httptest.NewServer(mux)
	t.Cleanup(upstream.Close)

	st := store.NewMemoryStore()
	client := auth.NewClient(upstream.URL, nil)
	session := auth.NewSession(client, st, nil, auth.Config{RetryBase: time.Hour})
	t.Cleanup(session.Close)
	require.NoError(t, session.Login(context.Background()))

	jobService := services.NewJobService(session, st, normalizer.New(nil), nil)
	noteService := services.NewNoteService(st, nil)
	require.NoError(t, jobService.Refresh(context.Background()))

	jobHandler := NewJobHandler(jobService, noteService)
	authHandler := NewAuthHandler(session)

	r := gin.New()
	api := r.Group("/api/v1")
	api.GET("/health", HealthCheck)
	api.GET("/jobs", jobHandler.ListJobs)
	api.POST("/jobs/refresh", jobHandler.RefreshJobs)
	api.GET("/jobs/:id/notes", jobHandler.GetNote)
	api.PUT("/jobs/:id/notes", jobHandler.SaveNote)
	api.GET("/notes", jobHandler.ListNotes)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/auth/status", authHandler.Status)
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListJobs(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/api/v1/jobs", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Jobs            []map[string]any `json:"jobs"`
			Total           int              `json:"total"`
			IsAuthenticated bool             `json:"is_authenticated"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Data.Total)
	assert.True(t, resp.Data.IsAuthenticated)
}

func TestListJobsWithSearch(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/api/v1/jobs?search=engineer", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Jobs []struct {
				Title string `json:"title"`
			} `json:"jobs"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Jobs, 1)
	assert.Equal(t, "Senior Engineer", resp.Data.Jobs[0].Title)
}

func TestSaveNoteValidation(t *testing.T) {
	r := newTestRouter(t)

	// Missing cover letter is rejected at the boundary.
	w := doRequest(r, http.MethodPut, "/api/v1/jobs/job-1/notes", `{"notes": "no letter"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodPut, "/api/v1/jobs/job-1/notes", `{"cover_letter": "Dear team", "notes": "ping Friday"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodGet, "/api/v1/jobs/job-1/notes", "")
	require.Equal(t, http.StatusOK, w.Code)
	var note struct {
		CoverLetter string `json:"cover_letter"`
		Notes       string `json:"notes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &note))
	assert.Equal(t, "Dear team", note.CoverLetter)
	assert.Equal(t, "ping Friday", note.Notes)
}

func TestGetNoteNotFound(t *testing.T) {
	r := newTestRouter(t)
	w := doRequest(r, http.MethodGet, "/api/v1/jobs/missing/notes", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRefreshEndpoint(t *testing.T) {
	r := newTestRouter(t)
	w := doRequest(r, http.MethodPost, "/api/v1/jobs/refresh", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthStatusAndLogout(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/api/v1/auth/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	var status struct {
		State           string `json:"state"`
		IsAuthenticated bool   `json:"is_authenticated"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.True(t, status.IsAuthenticated)
	assert.Equal(t, "authenticated", status.State)

	w = doRequest(r, http.MethodPost, "/api/v1/auth/logout", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodGet, "/api/v1/auth/status", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.False(t, status.IsAuthenticated)
}
