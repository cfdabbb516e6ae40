package classroom

import (
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/user"
)

// Comment is a timestamped note on an item or submission.
// Comments are immutable once created and are never deleted.
type Comment struct {
	ID        string    `json:"id"`
	Owner     user.User `json:"owner"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

func newComment(owner user.User, text string) Comment {
	return Comment{
		ID:        uuid.New().String(),
		Owner:     owner,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}
