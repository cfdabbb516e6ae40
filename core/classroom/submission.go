package classroom

import (
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/attachment"
	"github.com/trezcool/darasa/core/user"
)

// Submission is a student's turned-in work on a gradable item.
// It is owned by exactly one item; the owning item's classroom lock guards
// all access.
type Submission struct {
	id          string
	owner       user.User
	attachments []attachment.Attachment
	point       *int // nil: ungraded
	comments    []Comment
	createdAt   time.Time
}

func newSubmission(owner user.User, attachments []attachment.Attachment) *Submission {
	return &Submission{
		id:          uuid.New().String(),
		owner:       owner,
		attachments: attachments,
		createdAt:   time.Now().UTC(),
	}
}

func (s *Submission) ID() string                           { return s.id }
func (s *Submission) Owner() user.User                     { return s.owner }
func (s *Submission) CreatedAt() time.Time                 { return s.createdAt }
func (s *Submission) Attachments() []attachment.Attachment { return s.attachments }
func (s *Submission) Comments() []Comment                  { return s.comments }

// Point returns the score, or nil while ungraded.
func (s *Submission) Point() *int { return s.point }

func (s *Submission) SetAttachments(attachments []attachment.Attachment) {
	s.attachments = attachments
}

func (s *Submission) SetPoint(point *int) {
	s.point = point
}

// Graded reports whether a score has been set.
func (s *Submission) Graded() bool { return s.point != nil }

func (s *Submission) CreateComment(owner user.User, text string) Comment {
	comment := newComment(owner, text)
	s.comments = append(s.comments, comment)
	return comment
}

// SubmissionView is a point-in-time snapshot of a submission, built
// under the owning classroom's lock.
type SubmissionView struct {
	ID          string                  `json:"id"`
	Owner       user.User               `json:"owner"`
	Point       *int                    `json:"point"`
	Attachments []attachment.Attachment `json:"attachments"`
	Comments    []Comment               `json:"comments"`
	CreatedAt   time.Time               `json:"created_at"`
}

// view snapshots the submission. Callers must hold the classroom lock.
func (s *Submission) view() SubmissionView {
	return SubmissionView{
		ID:          s.id,
		Owner:       s.owner,
		Point:       s.point,
		Attachments: attachmentsOrEmpty(append([]attachment.Attachment(nil), s.attachments...)),
		Comments:    commentsOrEmpty(append([]Comment(nil), s.comments...)),
		CreatedAt:   s.createdAt,
	}
}

func attachmentsOrEmpty(atts []attachment.Attachment) []attachment.Attachment {
	if atts == nil {
		return []attachment.Attachment{}
	}
	return atts
}

func commentsOrEmpty(comments []Comment) []Comment {
	if comments == nil {
		return []Comment{}
	}
	return comments
}
