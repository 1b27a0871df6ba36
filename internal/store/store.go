// Package store persists session state and per-job application notes.
// Jobs themselves are never stored; every load is a fresh fetch.
package store

import (
	"github.com/engineers4hire/jobdesk/internal/models"
)

// tokenKey is the session entry holding the persisted auth token.
const tokenKey = "auth_token"

// Store is the persistence surface for the auth token and the note map.
// Notes are keyed by canonical job id and are never deleted automatically,
// so ids from past batches may linger; that is intentional.
type Store interface {
	Token() (string, error)
	SetToken(token string) error
	ClearToken() error

	Note(jobID string) (models.ApplicationNote, bool, error)
	SaveNote(note models.ApplicationNote) error
	Notes() (map[string]models.ApplicationNote, error)
}
