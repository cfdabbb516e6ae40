package classroom

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/attachment"
	"github.com/trezcool/darasa/core/user"
)

// Kind discriminates the five classroom content kinds.
type Kind string

const (
	KindAnnouncement           Kind = "Announcement"
	KindMaterial               Kind = "Material"
	KindAssignment             Kind = "Assignment"
	KindQuestion               Kind = "Question"
	KindMultipleChoiceQuestion Kind = "MultipleChoiceQuestion"
)

var (
	// errors
	ErrKindMismatch = errors.New("field not supported by this item type")
	ErrNotGradable  = errors.New("item type does not support submissions")
)

func (k Kind) Valid() bool {
	switch k {
	case KindAnnouncement, KindMaterial, KindAssignment, KindQuestion, KindMultipleChoiceQuestion:
		return true
	}
	return false
}

// Gradable reports whether this kind collects submissions and scores.
func (k Kind) Gradable() bool {
	switch k {
	case KindAssignment, KindQuestion, KindMultipleChoiceQuestion:
		return true
	}
	return false
}

// topical kinds carry topic/title/description.
func (k Kind) topical() bool {
	return k == KindMaterial || k.Gradable()
}

// Item is the tagged union over the five content kinds. The envelope
// (id, timestamps, attachments, audience, comments) is shared; the
// remaining fields are populated per kind and guarded by the setters.
// The owning Classroom's lock mediates all concurrent access.
type Item struct {
	id          string
	kind        Kind
	createdAt   time.Time
	editedAt    time.Time
	attachments []attachment.Attachment
	assignedTo  []user.User // nil: assigned to the entire roster
	comments    []Comment

	announcementText string
	topic            *Topic
	title            string
	description      string
	dueDate          *time.Time
	point            *int
	choices          []string
	submissions      []*Submission
}

func newItem(kind Kind, attachments []attachment.Attachment, assignedTo []user.User) *Item {
	now := time.Now().UTC()
	return &Item{
		id:          uuid.New().String(),
		kind:        kind,
		createdAt:   now,
		editedAt:    now,
		attachments: attachments,
		assignedTo:  assignedTo,
	}
}

func newAnnouncement(attachments []attachment.Attachment, assignedTo []user.User, text string) *Item {
	it := newItem(KindAnnouncement, attachments, assignedTo)
	it.announcementText = text
	return it
}

func newMaterial(topic *Topic, attachments []attachment.Attachment, assignedTo []user.User, title, description string) *Item {
	it := newItem(KindMaterial, attachments, assignedTo)
	it.topic = topic
	it.title = title
	it.description = description
	return it
}

func newGradable(
	kind Kind,
	topic *Topic,
	attachments []attachment.Attachment,
	assignedTo []user.User,
	title, description string,
	dueDate *time.Time,
	point *int,
) *Item {
	it := newItem(kind, attachments, assignedTo)
	it.topic = topic
	it.title = title
	it.description = description
	it.dueDate = dueDate
	it.point = point
	return it
}

func newMultipleChoiceQuestion(
	topic *Topic,
	attachments []attachment.Attachment,
	assignedTo []user.User,
	title, description string,
	dueDate *time.Time,
	point *int,
	choices []string,
) *Item {
	it := newGradable(KindMultipleChoiceQuestion, topic, attachments, assignedTo, title, description, dueDate, point)
	it.choices = choices
	return it
}

// Accessors

func (it *Item) ID() string                           { return it.id }
func (it *Item) Kind() Kind                           { return it.kind }
func (it *Item) CreatedAt() time.Time                 { return it.createdAt }
func (it *Item) EditedAt() time.Time                  { return it.editedAt }
func (it *Item) Attachments() []attachment.Attachment { return it.attachments }
func (it *Item) Comments() []Comment                  { return it.comments }
func (it *Item) AnnouncementText() string             { return it.announcementText }
func (it *Item) Topic() *Topic                        { return it.topic }
func (it *Item) Title() string                        { return it.title }
func (it *Item) Description() string                  { return it.description }
func (it *Item) DueDate() *time.Time                  { return it.dueDate }
func (it *Item) Point() *int                          { return it.point }
func (it *Item) Choices() []string                    { return it.choices }
func (it *Item) Submissions() []*Submission           { return it.submissions }

// AssignedTo returns the explicit audience, or nil when the item is
// assigned to the entire roster.
func (it *Item) AssignedTo() []user.User { return it.assignedTo }

// VisibleTo reports whether usr may see this item. Items with an explicit
// audience are hidden from everyone outside it; the classroom owner is
// checked separately by the caller.
func (it *Item) VisibleTo(usr user.User) bool {
	if it.assignedTo == nil {
		return true
	}
	for _, student := range it.assignedTo {
		if student.Is(usr) {
			return true
		}
	}
	return false
}

// Setters; every mutation bumps EditedAt. This is the only edited-at
// update path.

func (it *Item) touch() { it.editedAt = time.Now().UTC() }

func (it *Item) SetAttachments(attachments []attachment.Attachment) {
	it.touch()
	it.attachments = attachments
}

func (it *Item) SetAssignedTo(assignedTo []user.User) {
	it.touch()
	it.assignedTo = assignedTo
}

func (it *Item) SetAnnouncementText(text string) error {
	if it.kind != KindAnnouncement {
		return ErrKindMismatch
	}
	it.touch()
	it.announcementText = text
	return nil
}

func (it *Item) SetTopic(topic *Topic) error {
	if !it.kind.topical() {
		return ErrKindMismatch
	}
	it.touch()
	it.topic = topic
	return nil
}

func (it *Item) SetTitle(title string) error {
	if !it.kind.topical() {
		return ErrKindMismatch
	}
	it.touch()
	it.title = title
	return nil
}

func (it *Item) SetDescription(description string) error {
	if !it.kind.topical() {
		return ErrKindMismatch
	}
	it.touch()
	it.description = description
	return nil
}

func (it *Item) SetDueDate(dueDate *time.Time) error {
	if !it.kind.Gradable() {
		return ErrKindMismatch
	}
	it.touch()
	it.dueDate = dueDate
	return nil
}

func (it *Item) SetPoint(point *int) error {
	if !it.kind.Gradable() {
		return ErrKindMismatch
	}
	it.touch()
	it.point = point
	return nil
}

func (it *Item) SetChoices(choices []string) error {
	if it.kind != KindMultipleChoiceQuestion {
		return ErrKindMismatch
	}
	it.touch()
	it.choices = choices
	return nil
}

func (it *Item) CreateComment(owner user.User, text string) Comment {
	comment := newComment(owner, text)
	it.comments = append(it.comments, comment)
	return comment
}

// Submission collection; gradable kinds only. Callers are responsible for
// enforcing at-most-one submission per owner (Classroom.SubmitWork does).

func (it *Item) CreateSubmission(owner user.User, attachments []attachment.Attachment) (*Submission, error) {
	if !it.kind.Gradable() {
		return nil, ErrNotGradable
	}
	submission := newSubmission(owner, attachments)
	it.submissions = append(it.submissions, submission)
	return submission, nil
}

func (it *Item) SubmissionByID(id string) *Submission {
	for _, submission := range it.submissions {
		if submission.id == id {
			return submission
		}
	}
	return nil
}

// SubmissionByOwner returns owner's submission, or nil. With the
// at-most-one invariant held there is never more than one match.
func (it *Item) SubmissionByOwner(owner user.User) *Submission {
	for _, submission := range it.submissions {
		if submission.owner.Is(owner) {
			return submission
		}
	}
	return nil
}

func (it *Item) DeleteSubmission(submission *Submission) bool {
	for i, s := range it.submissions {
		if s == submission {
			it.submissions = append(it.submissions[:i], it.submissions[i+1:]...)
			return true
		}
	}
	return false
}

// ItemView is a point-in-time snapshot of an item, built under the
// owning classroom's lock. Views are what leave the domain package;
// holding or serializing one never races with the setters.
type ItemView struct {
	ID          string
	Type        Kind
	CreatedAt   time.Time
	EditedAt    time.Time
	Attachments []attachment.Attachment
	AssignedTo  []user.User // nil: assigned to the entire roster
	Comments    []Comment

	AnnouncementText string
	Topic            *Topic
	Title            string
	Description      string
	DueDate          *time.Time
	Point            *int
	Choices          []string
}

// view snapshots the item. Callers must hold the classroom lock.
func (it *Item) view() ItemView {
	return ItemView{
		ID:               it.id,
		Type:             it.kind,
		CreatedAt:        it.createdAt,
		EditedAt:         it.editedAt,
		Attachments:      append([]attachment.Attachment(nil), it.attachments...),
		AssignedTo:       append([]user.User(nil), it.assignedTo...),
		Comments:         append([]Comment(nil), it.comments...),
		AnnouncementText: it.announcementText,
		Topic:            it.topic,
		Title:            it.title,
		Description:      it.description,
		DueDate:          it.dueDate,
		Point:            it.point,
		Choices:          append([]string(nil), it.choices...),
	}
}

// MarshalJSON emits the discriminant "type" tag plus the fields of the
// item's kind, nested entities serialized recursively.
func (v ItemView) MarshalJSON() ([]byte, error) {
	payload := map[string]interface{}{
		"id":          v.ID,
		"type":        v.Type,
		"created_at":  v.CreatedAt,
		"edited_at":   v.EditedAt,
		"attachments": attachmentsOrEmpty(v.Attachments),
		"comments":    commentsOrEmpty(v.Comments),
	}

	switch {
	case v.Type == KindAnnouncement:
		payload["announcement_text"] = v.AnnouncementText
	case v.Type.topical():
		payload["topic"] = v.Topic
		payload["title"] = v.Title
		payload["description"] = v.Description
	}

	// submissions are deliberately not embedded; they are served through
	// their own endpoints with owner-only access
	if v.Type.Gradable() {
		payload["due_date"] = v.DueDate
		payload["point"] = v.Point
	}

	if v.Type == KindMultipleChoiceQuestion {
		choices := v.Choices
		if choices == nil {
			choices = []string{}
		}
		payload["choices"] = choices
	}

	return json.Marshal(payload)
}
