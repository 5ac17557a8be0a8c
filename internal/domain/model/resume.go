package model

import (
	"encoding/json"
	"time"

	"pure-resume/internal/domain"

	"github.com/google/uuid"
)

// Resume is the write target guarded by the save-gate. Its content is an
// opaque JSON document assembled by the editor; this core never interprets
// it beyond validity.
type Resume struct {
	ID        string
	UserID    string
	Title     string
	Content   json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewResume(userID, title string, content json.RawMessage) (*Resume, error) {
	if userID == "" || title == "" {
		return nil, domain.ErrInvalidArgument
	}
	if len(content) > 0 && !json.Valid(content) {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Resume{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
