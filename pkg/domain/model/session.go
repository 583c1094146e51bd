package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// SessionID is a UUID-based identifier for a loaded workbook session
type SessionID string

// NewSessionID generates a new UUID v4 SessionID
func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

// Validate checks the ID is a UUID
func (id SessionID) Validate() error {
	if _, err := uuid.Parse(string(id)); err != nil {
		return goerr.Wrap(ErrInvalidSession, "session ID must be a UUID", goerr.V(SessionIDKey, string(id)))
	}
	return nil
}

func (id SessionID) String() string {
	return string(id)
}

// Session owns the tables of one uploaded workbook. Loading another file
// creates a new session; tables are never edited in place.
type Session struct {
	ID       SessionID
	Source   string
	LoadedAt time.Time
	Tables   *TableSet
}
