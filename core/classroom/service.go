package classroom

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attachment"
	"github.com/trezcool/darasa/core/user"
)

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// maxCodeAttempts bounds join-code regeneration on collision; with a
// 7-char alphanumeric code a collision is practically unreachable.
const maxCodeAttempts = 10

type (
	Repository interface {
		CreateClassroom(c *Classroom) error
		GetClassroomByID(id string) (*Classroom, error)
		GetClassroomByCode(code string) (*Classroom, error)
		// QueryClassroomsForUser returns classrooms where usr is owner or
		// student, in registry order.
		QueryClassroomsForUser(usr user.User) ([]*Classroom, error)
		CodeTaken(code string) (bool, error)
		DeleteClassroomByID(id string) error
	}

	// AttachmentResolver resolves attachment references supplied by id.
	AttachmentResolver interface {
		GetByID(id string) (attachment.Attachment, error)
	}

	Service interface {
		Create(owner user.User, nc NewClassroom) (*Classroom, error)
		GetByID(actor user.User, id string) (*Classroom, error)
		QueryForUser(usr user.User) ([]*Classroom, error)
		JoinByCode(usr user.User, code string) (*Classroom, error)
		Update(actor user.User, id string, uc UpdateClassroom) (*Classroom, error)
		Delete(actor user.User, id string) error

		CreateTopic(actor user.User, classroomID string, nt NewTopic) (*Topic, error)

		CreateItem(actor user.User, classroomID string, ni NewItem) (ItemView, error)
		GetItem(actor user.User, classroomID, itemID string) (ItemView, error)
		UpdateItem(actor user.User, classroomID, itemID string, ui UpdateItem) (ItemView, error)
		DeleteItem(actor user.User, classroomID, itemID string) error

		CreateSubmission(actor user.User, classroomID, itemID string, ns NewSubmission) (SubmissionView, error)
		UpdateOwnSubmission(actor user.User, classroomID, itemID string, ns NewSubmission) (SubmissionView, error)
		GetOwnSubmission(actor user.User, classroomID, itemID string) (SubmissionView, error)
		ListSubmissions(actor user.User, classroomID, itemID string) ([]SubmissionView, error)
		GradeSubmission(actor user.User, classroomID, itemID, submissionID string, gs GradeSubmission) (SubmissionView, error)

		CommentItem(actor user.User, classroomID, itemID string, nc NewComment) (Comment, error)
		CommentSubmission(actor user.User, classroomID, itemID, submissionID string, nc NewComment) (Comment, error)

		TasksForUser(usr user.User, kind TaskKind) ([]Task, error)
	}

	service struct {
		repo        Repository
		attachments AttachmentResolver
		catalog     *BannerCatalog
		codeLen     int
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, attachments AttachmentResolver, catalog *BannerCatalog, conf *core.Config) Service {
	return &service{
		repo:        repo,
		attachments: attachments,
		catalog:     catalog,
		codeLen:     conf.ClassroomCodeLength,
	}
}

// Classrooms

func (svc *service) Create(owner user.User, nc NewClassroom) (*Classroom, error) {
	code, err := svc.generateCode()
	if err != nil {
		return nil, err
	}
	c := newClassroom(owner, nc, code, svc.catalog)
	if err := svc.repo.CreateClassroom(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (svc *service) generateCode() (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := make([]byte, svc.codeLen)
		for i := range code {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
			if err != nil {
				return "", err
			}
			code[i] = codeAlphabet[n.Int64()]
		}
		taken, err := svc.repo.CodeTaken(string(code))
		if err != nil {
			return "", err
		}
		if !taken {
			return string(code), nil
		}
	}
	return "", errors.New("could not generate a unique classroom code")
}

func (svc *service) GetByID(actor user.User, id string) (*Classroom, error) {
	c, err := svc.repo.GetClassroomByID(id)
	if err != nil {
		return nil, err
	}
	if !c.IsMember(actor) {
		return nil, ErrNotMember
	}
	return c, nil
}

func (svc *service) QueryForUser(usr user.User) ([]*Classroom, error) {
	return svc.repo.QueryClassroomsForUser(usr)
}

func (svc *service) JoinByCode(usr user.User, code string) (*Classroom, error) {
	c, err := svc.repo.GetClassroomByCode(code)
	if err != nil {
		return nil, err
	}
	if c.IsMember(usr) {
		return nil, ErrAlreadyJoined
	}
	c.AddStudent(usr)
	return c, nil
}

func (svc *service) Update(actor user.User, id string, uc UpdateClassroom) (*Classroom, error) {
	c, err := svc.ownedClassroom(actor, id)
	if err != nil {
		return nil, err
	}
	if err := c.applyUpdate(uc, svc.catalog); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes the classroom from the registry only; attachment blobs
// referenced by its items are orphaned on purpose.
func (svc *service) Delete(actor user.User, id string) error {
	if _, err := svc.ownedClassroom(actor, id); err != nil {
		return err
	}
	return svc.repo.DeleteClassroomByID(id)
}

// Topics

func (svc *service) CreateTopic(actor user.User, classroomID string, nt NewTopic) (*Topic, error) {
	c, err := svc.ownedClassroom(actor, classroomID)
	if err != nil {
		return nil, err
	}
	return c.CreateTopic(nt.Name), nil
}

// Items

func (svc *service) CreateItem(actor user.User, classroomID string, ni NewItem) (ItemView, error) {
	c, err := svc.ownedClassroom(actor, classroomID)
	if err != nil {
		return ItemView{}, err
	}

	var topic *Topic
	if ni.TopicID != "" {
		if topic = c.TopicByID(ni.TopicID); topic == nil {
			return ItemView{}, ErrTopicNotFound
		}
	}
	attachments, err := svc.resolveAttachments(ni.AttachmentIDs)
	if err != nil {
		return ItemView{}, err
	}
	var assignedTo []user.User
	if len(ni.AssignedToIDs) > 0 {
		if assignedTo, err = resolveStudents(c, ni.AssignedToIDs); err != nil {
			return ItemView{}, err
		}
	}

	var it *Item
	switch ni.Type {
	case KindAnnouncement:
		it, err = c.CreateAnnouncement(attachments, assignedTo, ni.AnnouncementText)
	case KindMaterial:
		it, err = c.CreateMaterial(topic, attachments, assignedTo, ni.Title, ni.Description)
	case KindAssignment:
		it, err = c.CreateAssignment(topic, attachments, assignedTo, ni.Title, ni.Description, ni.DueDate, ni.Point)
	case KindQuestion:
		it, err = c.CreateQuestion(topic, attachments, assignedTo, ni.Title, ni.Description, ni.DueDate, ni.Point)
	case KindMultipleChoiceQuestion:
		it, err = c.CreateMultipleChoiceQuestion(topic, attachments, assignedTo, ni.Title, ni.Description, ni.DueDate, ni.Point, ni.Choices)
	default:
		return ItemView{}, ErrKindMismatch
	}
	if err != nil {
		return ItemView{}, err
	}
	return c.ViewItem(it), nil
}

func (svc *service) GetItem(actor user.User, classroomID, itemID string) (ItemView, error) {
	c, it, err := svc.memberItem(actor, classroomID, itemID)
	if err != nil {
		return ItemView{}, err
	}
	// items targeted at a subset are invisible outside it
	if !c.ItemVisibleTo(it, actor) {
		return ItemView{}, ErrItemNotFound
	}
	return c.ViewItem(it), nil
}

func (svc *service) UpdateItem(actor user.User, classroomID, itemID string, ui UpdateItem) (ItemView, error) {
	c, err := svc.ownedClassroom(actor, classroomID)
	if err != nil {
		return ItemView{}, err
	}
	it := c.ItemByID(itemID)
	if it == nil {
		return ItemView{}, ErrItemNotFound
	}

	var attachments *[]attachment.Attachment
	if ui.AttachmentIDs != nil {
		resolved, err := svc.resolveAttachments(*ui.AttachmentIDs)
		if err != nil {
			return ItemView{}, err
		}
		attachments = &resolved
	}
	if err := c.UpdateItem(it, ui, attachments); err != nil {
		return ItemView{}, err
	}
	return c.ViewItem(it), nil
}

func (svc *service) DeleteItem(actor user.User, classroomID, itemID string) error {
	c, err := svc.ownedClassroom(actor, classroomID)
	if err != nil {
		return err
	}
	it := c.ItemByID(itemID)
	if it == nil {
		return ErrItemNotFound
	}
	c.DeleteItem(it)
	return nil
}

// Submissions

func (svc *service) CreateSubmission(actor user.User, classroomID, itemID string, ns NewSubmission) (SubmissionView, error) {
	c, it, err := svc.studentItem(actor, classroomID, itemID)
	if err != nil {
		return SubmissionView{}, err
	}
	if !c.ItemVisibleTo(it, actor) {
		return SubmissionView{}, ErrItemNotFound
	}
	attachments, err := svc.resolveAttachments(ns.AttachmentIDs)
	if err != nil {
		return SubmissionView{}, err
	}
	submission, err := c.SubmitWork(it, actor, attachments)
	if err != nil {
		return SubmissionView{}, err
	}
	return c.ViewSubmission(submission), nil
}

// UpdateOwnSubmission replaces the attachments of the actor's existing
// submission.
func (svc *service) UpdateOwnSubmission(actor user.User, classroomID, itemID string, ns NewSubmission) (SubmissionView, error) {
	c, it, err := svc.studentItem(actor, classroomID, itemID)
	if err != nil {
		return SubmissionView{}, err
	}
	attachments, err := svc.resolveAttachments(ns.AttachmentIDs)
	if err != nil {
		return SubmissionView{}, err
	}
	submission, err := c.ReviseSubmission(it, actor, attachments)
	if err != nil {
		return SubmissionView{}, err
	}
	return c.ViewSubmission(submission), nil
}

func (svc *service) GetOwnSubmission(actor user.User, classroomID, itemID string) (SubmissionView, error) {
	c, it, err := svc.studentItem(actor, classroomID, itemID)
	if err != nil {
		return SubmissionView{}, err
	}
	if !it.Kind().Gradable() {
		return SubmissionView{}, ErrNotGradable
	}
	submission, ok := c.OwnSubmission(it, actor)
	if !ok {
		return SubmissionView{}, ErrSubmissionNotFound
	}
	return submission, nil
}

func (svc *service) ListSubmissions(actor user.User, classroomID, itemID string) ([]SubmissionView, error) {
	c, err := svc.ownedClassroom(actor, classroomID)
	if err != nil {
		return nil, err
	}
	it := c.ItemByID(itemID)
	if it == nil {
		return nil, ErrItemNotFound
	}
	if !it.Kind().Gradable() {
		return nil, ErrNotGradable
	}
	return c.SubmissionViews(it), nil
}

func (svc *service) GradeSubmission(actor user.User, classroomID, itemID, submissionID string, gs GradeSubmission) (SubmissionView, error) {
	c, err := svc.ownedClassroom(actor, classroomID)
	if err != nil {
		return SubmissionView{}, err
	}
	it := c.ItemByID(itemID)
	if it == nil {
		return SubmissionView{}, ErrItemNotFound
	}
	submission, err := c.GradeSubmission(it, submissionID, *gs.Point)
	if err != nil {
		return SubmissionView{}, err
	}
	return c.ViewSubmission(submission), nil
}

// Comments

func (svc *service) CommentItem(actor user.User, classroomID, itemID string, nc NewComment) (Comment, error) {
	c, it, err := svc.memberItem(actor, classroomID, itemID)
	if err != nil {
		return Comment{}, err
	}
	if !c.ItemVisibleTo(it, actor) {
		return Comment{}, ErrItemNotFound
	}
	return c.CommentItem(it, actor, nc.Text), nil
}

// CommentSubmission allows the classroom owner and the submission's owner
// to discuss a submission privately.
func (svc *service) CommentSubmission(actor user.User, classroomID, itemID, submissionID string, nc NewComment) (Comment, error) {
	c, it, err := svc.memberItem(actor, classroomID, itemID)
	if err != nil {
		return Comment{}, err
	}
	if !it.Kind().Gradable() {
		return Comment{}, ErrNotGradable
	}
	submissionOwner, ok := c.SubmissionOwner(it, submissionID)
	if !ok {
		return Comment{}, ErrSubmissionNotFound
	}
	if !c.IsOwner(actor) && !submissionOwner.Is(actor) {
		return Comment{}, ErrNotOwner
	}
	return c.CommentSubmission(it, submissionID, actor, nc.Text)
}

// Tasks

func (svc *service) TasksForUser(usr user.User, kind TaskKind) ([]Task, error) {
	switch kind {
	case TaskToDo, TaskToReview:
	default:
		return nil, ErrInvalidTaskKind
	}

	classrooms, err := svc.repo.QueryClassroomsForUser(usr)
	if err != nil {
		return nil, err
	}

	tasks := make([]Task, 0)
	for _, c := range classrooms {
		switch kind {
		case TaskToDo:
			if c.IsOwner(usr) {
				continue
			}
			tasks = append(tasks, c.ToDoTasks(usr)...)
		case TaskToReview:
			if !c.IsOwner(usr) {
				continue
			}
			tasks = append(tasks, c.ToReviewTasks()...)
		}
	}
	return tasks, nil
}

// helpers

func (svc *service) ownedClassroom(actor user.User, id string) (*Classroom, error) {
	c, err := svc.repo.GetClassroomByID(id)
	if err != nil {
		return nil, err
	}
	if !c.IsMember(actor) {
		return nil, ErrNotMember
	}
	if !c.IsOwner(actor) {
		return nil, ErrNotOwner
	}
	return c, nil
}

func (svc *service) memberItem(actor user.User, classroomID, itemID string) (*Classroom, *Item, error) {
	c, err := svc.GetByID(actor, classroomID)
	if err != nil {
		return nil, nil, err
	}
	it := c.ItemByID(itemID)
	if it == nil {
		return nil, nil, ErrItemNotFound
	}
	return c, it, nil
}

// studentItem resolves classroom and item for a member who is not the
// owner; owners do not turn in work.
func (svc *service) studentItem(actor user.User, classroomID, itemID string) (*Classroom, *Item, error) {
	c, it, err := svc.memberItem(actor, classroomID, itemID)
	if err != nil {
		return nil, nil, err
	}
	if c.IsOwner(actor) {
		return nil, nil, ErrOwnerSubmission
	}
	return c, it, nil
}

// resolveAttachments resolves every supplied id; any unresolved id fails
// the whole operation rather than being silently dropped.
func (svc *service) resolveAttachments(ids []string) ([]attachment.Attachment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	attachments := make([]attachment.Attachment, 0, len(ids))
	for _, id := range ids {
		att, err := svc.attachments.GetByID(id)
		if err != nil {
			return nil, core.NewValidationError(
				err,
				core.FieldError{Field: "attachments_id", Error: "attachment " + id + " not found"},
			)
		}
		attachments = append(attachments, att)
	}
	return attachments, nil
}

func resolveStudents(c *Classroom, ids []string) ([]user.User, error) {
	students := make([]user.User, 0, len(ids))
	for _, id := range ids {
		student, ok := c.StudentByID(id)
		if !ok {
			return nil, ErrStudentNotEnrolled
		}
		students = append(students, student)
	}
	return students, nil
}

// Inputs

// NewItem is the kind-discriminated item creation payload.
type NewItem struct {
	Type             Kind       `json:"type" validate:"required"`
	TopicID          string     `json:"topic_id"`
	AttachmentIDs    []string   `json:"attachments_id"`
	AssignedToIDs    []string   `json:"assigned_to_students_id"`
	AnnouncementText string     `json:"announcement_text"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	DueDate          *time.Time `json:"due_date"`
	Point            *int       `json:"point" validate:"omitempty,gte=0"`
	Choices          []string   `json:"choices"`
}

func (ni *NewItem) Validate() error {
	ni.AnnouncementText = core.CleanString(ni.AnnouncementText)
	ni.Title = core.CleanString(ni.Title)
	ni.Description = core.CleanString(ni.Description)

	if err := core.Validate.Struct(ni); err != nil {
		return err
	}
	if !ni.Type.Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "type", Error: "invalid item type"})
	}
	if ni.Type == KindAnnouncement {
		if ni.AnnouncementText == "" {
			return core.NewValidationError(nil, core.FieldError{Field: "announcement_text", Error: "announcement text is required"})
		}
		return nil
	}
	if ni.Title == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "title", Error: "title is required"})
	}
	if ni.Type == KindMultipleChoiceQuestion && len(ni.Choices) == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "choices", Error: "at least one choice is required"})
	}
	return nil
}

// UpdateItem mutates set (non-nil) fields only. An empty TopicID clears
// the topic; an empty AssignedToIDs list re-assigns to the whole roster.
type UpdateItem struct {
	TopicID          *string    `json:"topic_id"`
	AttachmentIDs    *[]string  `json:"attachments_id"`
	AssignedToIDs    *[]string  `json:"assigned_to_students_id"`
	AnnouncementText *string    `json:"announcement_text"`
	Title            *string    `json:"title"`
	Description      *string    `json:"description"`
	DueDate          *time.Time `json:"due_date"`
	Point            *int       `json:"point"`
	Choices          *[]string  `json:"choices"`
}

// check rejects fields the item's kind does not carry, before any
// mutation is applied.
func (ui UpdateItem) check(kind Kind) error {
	if ui.AnnouncementText != nil && kind != KindAnnouncement {
		return ErrKindMismatch
	}
	if (ui.TopicID != nil || ui.Title != nil || ui.Description != nil) && !kind.topical() {
		return ErrKindMismatch
	}
	if (ui.DueDate != nil || ui.Point != nil) && !kind.Gradable() {
		return ErrKindMismatch
	}
	if ui.Choices != nil && kind != KindMultipleChoiceQuestion {
		return ErrKindMismatch
	}
	return nil
}

type NewSubmission struct {
	AttachmentIDs []string `json:"attachments_id"`
}

type GradeSubmission struct {
	Point *int `json:"point" validate:"required,gte=0"`
}

func (gs *GradeSubmission) Validate() error {
	return core.Validate.Struct(gs)
}

type NewComment struct {
	Text string `json:"text" validate:"required"`
}

func (nc *NewComment) Validate() error {
	nc.Text = core.CleanString(nc.Text)
	return core.Validate.Struct(nc)
}
