package classroom

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attachment"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotFound           = errors.New("classroom not found")
	ErrCodeNotFound       = errors.New("invalid classroom code")
	ErrAlreadyJoined      = errors.New("user is already in this classroom")
	ErrNotMember          = errors.New("user is not in this classroom")
	ErrNotOwner           = errors.New("user is not the classroom owner")
	ErrOwnerSubmission    = errors.New("classroom owner cannot submit work")
	ErrTopicNotFound      = errors.New("topic does not belong to this classroom")
	ErrItemNotFound       = errors.New("item not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrSubmissionExists   = errors.New("a submission already exists for this user")
	ErrStudentNotEnrolled = errors.New("student is not enrolled in this classroom")
	ErrInvalidBanner      = errors.New("invalid banner path")
	ErrInvalidTheme       = errors.New("invalid theme color")
)

// Topic is a classroom-scoped label for grouping items. Topics are owned
// by exactly one classroom and never shared.
type Topic struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Classroom is the aggregate root: it owns topics, items (and through
// them submissions and comments) and the student roster, and enforces
// every cross-entity referential check before constructing children.
// A single coarse lock covers the whole aggregate.
type Classroom struct {
	mu sync.RWMutex

	id         string
	owner      user.User
	name       string
	section    string
	subject    string
	room       string
	code       string
	students   []user.User
	topics     []*Topic
	items      []*Item
	bannerPath string
	themeColor string
	createdAt  time.Time
}

func newClassroom(owner user.User, nc NewClassroom, code string, catalog *BannerCatalog) *Classroom {
	banner := catalog.RandomGeneral()
	return &Classroom{
		id:         uuid.New().String(),
		owner:      owner,
		name:       nc.Name,
		section:    nc.Section,
		subject:    nc.Subject,
		room:       nc.Room,
		code:       code,
		bannerPath: banner,
		themeColor: themeForBanner(banner),
		createdAt:  time.Now().UTC(),
	}
}

func (c *Classroom) ID() string           { return c.id }
func (c *Classroom) Owner() user.User     { return c.owner }
func (c *Classroom) Code() string         { return c.code }
func (c *Classroom) CreatedAt() time.Time { return c.createdAt }

func (c *Classroom) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

func (c *Classroom) BannerPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bannerPath
}

func (c *Classroom) ThemeColor() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.themeColor
}

func (c *Classroom) Students() []user.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	students := make([]user.User, len(c.students))
	copy(students, c.students)
	return students
}

func (c *Classroom) Topics() []*Topic {
	c.mu.RLock()
	defer c.mu.RUnlock()
	topics := make([]*Topic, len(c.topics))
	copy(topics, c.topics)
	return topics
}

func (c *Classroom) Items() []*Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := make([]*Item, len(c.items))
	copy(items, c.items)
	return items
}

// Membership predicates. "Is this user in the classroom" and "does this
// entity belong to the classroom" are distinct relations; permission
// checks only ever use IsOwner/IsMember.

func (c *Classroom) IsOwner(usr user.User) bool {
	return c.owner.Is(usr)
}

// IsMember reports whether usr is the owner or an enrolled student.
func (c *Classroom) IsMember(usr user.User) bool {
	if c.IsOwner(usr) {
		return true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enrolled(usr)
}

func (c *Classroom) enrolled(usr user.User) bool {
	for _, student := range c.students {
		if student.Is(usr) {
			return true
		}
	}
	return false
}

func (c *Classroom) HasTopic(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.topicByID(id) != nil
}

func (c *Classroom) HasItem(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.itemByID(id) != nil
}

// AddStudent enrolls a student. The owner can never be enrolled and
// re-joining is a soft no-op; both return false.
func (c *Classroom) AddStudent(student user.User) bool {
	if c.IsOwner(student) {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.enrolled(student) {
		return false
	}
	c.students = append(c.students, student)
	return true
}

// CreateTopic appends a topic unconditionally; duplicate names are allowed.
func (c *Classroom) CreateTopic(name string) *Topic {
	topic := &Topic{ID: uuid.New().String(), Name: name}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics = append(c.topics, topic)
	return topic
}

func (c *Classroom) TopicByID(id string) *Topic {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.topicByID(id)
}

func (c *Classroom) topicByID(id string) *Topic {
	for _, topic := range c.topics {
		if topic.ID == id {
			return topic
		}
	}
	return nil
}

func (c *Classroom) ItemByID(id string) *Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.itemByID(id)
}

func (c *Classroom) itemByID(id string) *Item {
	for _, it := range c.items {
		if it.id == id {
			return it
		}
	}
	return nil
}

// checkItemRefs verifies, before any child is constructed, that a supplied
// topic belongs to this classroom and that every explicitly assigned
// student is on the roster. Callers must hold the lock.
func (c *Classroom) checkItemRefs(topic *Topic, assignedTo []user.User) error {
	if topic != nil {
		found := false
		for _, t := range c.topics {
			if t == topic || t.ID == topic.ID {
				found = true
				break
			}
		}
		if !found {
			return ErrTopicNotFound
		}
	}
	for _, student := range assignedTo {
		if !c.enrolled(student) {
			return ErrStudentNotEnrolled
		}
	}
	return nil
}

func (c *Classroom) CreateAnnouncement(
	attachments []attachment.Attachment,
	assignedTo []user.User,
	text string,
) (*Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkItemRefs(nil, assignedTo); err != nil {
		return nil, err
	}
	it := newAnnouncement(attachments, assignedTo, text)
	c.items = append(c.items, it)
	return it, nil
}

func (c *Classroom) CreateMaterial(
	topic *Topic,
	attachments []attachment.Attachment,
	assignedTo []user.User,
	title, description string,
) (*Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkItemRefs(topic, assignedTo); err != nil {
		return nil, err
	}
	it := newMaterial(topic, attachments, assignedTo, title, description)
	c.items = append(c.items, it)
	return it, nil
}

func (c *Classroom) CreateAssignment(
	topic *Topic,
	attachments []attachment.Attachment,
	assignedTo []user.User,
	title, description string,
	dueDate *time.Time,
	point *int,
) (*Item, error) {
	return c.createGradable(KindAssignment, topic, attachments, assignedTo, title, description, dueDate, point)
}

func (c *Classroom) CreateQuestion(
	topic *Topic,
	attachments []attachment.Attachment,
	assignedTo []user.User,
	title, description string,
	dueDate *time.Time,
	point *int,
) (*Item, error) {
	return c.createGradable(KindQuestion, topic, attachments, assignedTo, title, description, dueDate, point)
}

func (c *Classroom) createGradable(
	kind Kind,
	topic *Topic,
	attachments []attachment.Attachment,
	assignedTo []user.User,
	title, description string,
	dueDate *time.Time,
	point *int,
) (*Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkItemRefs(topic, assignedTo); err != nil {
		return nil, err
	}
	it := newGradable(kind, topic, attachments, assignedTo, title, description, dueDate, point)
	c.items = append(c.items, it)
	return it, nil
}

func (c *Classroom) CreateMultipleChoiceQuestion(
	topic *Topic,
	attachments []attachment.Attachment,
	assignedTo []user.User,
	title, description string,
	dueDate *time.Time,
	point *int,
	choices []string,
) (*Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkItemRefs(topic, assignedTo); err != nil {
		return nil, err
	}
	it := newMultipleChoiceQuestion(topic, attachments, assignedTo, title, description, dueDate, point, choices)
	c.items = append(c.items, it)
	return it, nil
}

// DeleteItem removes an item; false if it is not present.
func (c *Classroom) DeleteItem(it *Item) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.items {
		if existing == it {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// applyUpdate mutates the editable fields; empty fields are left
// unchanged. Banner and theme are validated against the catalog.
func (c *Classroom) applyUpdate(uc UpdateClassroom, catalog *BannerCatalog) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if uc.BannerPath != "" && !catalog.Valid(uc.BannerPath) {
		return ErrInvalidBanner
	}
	if uc.ThemeColor != "" && !validTheme(uc.ThemeColor) {
		return ErrInvalidTheme
	}
	if uc.Name != "" {
		c.name = uc.Name
	}
	if uc.Section != "" {
		c.section = uc.Section
	}
	if uc.Subject != "" {
		c.subject = uc.Subject
	}
	if uc.Room != "" {
		c.room = uc.Room
	}
	if uc.BannerPath != "" {
		c.bannerPath = uc.BannerPath
	}
	if uc.ThemeColor != "" {
		c.themeColor = uc.ThemeColor
	}
	return nil
}

// StudentByID resolves an enrolled student by id.
func (c *Classroom) StudentByID(id string) (user.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.studentByID(id)
}

func (c *Classroom) studentByID(id string) (user.User, bool) {
	for _, student := range c.students {
		if student.ID == id {
			return student, true
		}
	}
	return user.User{}, false
}

func (c *Classroom) studentsByIDs(ids []string) ([]user.User, error) {
	students := make([]user.User, 0, len(ids))
	for _, id := range ids {
		student, ok := c.studentByID(id)
		if !ok {
			return nil, ErrStudentNotEnrolled
		}
		students = append(students, student)
	}
	return students, nil
}

// Mediated child mutations. All submission/comment/item writes go through
// the aggregate so its single lock covers them.

// SubmitWork records owner's submission on it, enforcing the at-most-one
// submission per (item, owner) invariant.
func (c *Classroom) SubmitWork(it *Item, owner user.User, attachments []attachment.Attachment) (*Submission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !it.kind.Gradable() {
		return nil, ErrNotGradable
	}
	if it.SubmissionByOwner(owner) != nil {
		return nil, ErrSubmissionExists
	}
	return it.CreateSubmission(owner, attachments)
}

// ReviseSubmission replaces the attachments of owner's existing
// submission on it.
func (c *Classroom) ReviseSubmission(it *Item, owner user.User, attachments []attachment.Attachment) (*Submission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !it.kind.Gradable() {
		return nil, ErrNotGradable
	}
	submission := it.SubmissionByOwner(owner)
	if submission == nil {
		return nil, ErrSubmissionNotFound
	}
	submission.SetAttachments(attachments)
	return submission, nil
}

// GradeSubmission sets the score on a submission of it.
func (c *Classroom) GradeSubmission(it *Item, submissionID string, point int) (*Submission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !it.kind.Gradable() {
		return nil, ErrNotGradable
	}
	submission := it.SubmissionByID(submissionID)
	if submission == nil {
		return nil, ErrSubmissionNotFound
	}
	submission.SetPoint(&point)
	return submission, nil
}

func (c *Classroom) CommentItem(it *Item, owner user.User, text string) Comment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return it.CreateComment(owner, text)
}

func (c *Classroom) CommentSubmission(it *Item, submissionID string, owner user.User, text string) (Comment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !it.kind.Gradable() {
		return Comment{}, ErrNotGradable
	}
	submission := it.SubmissionByID(submissionID)
	if submission == nil {
		return Comment{}, ErrSubmissionNotFound
	}
	return submission.CreateComment(owner, text), nil
}

// UpdateItem applies the set fields of ui to it. The update is checked
// against the item's kind before anything mutates, so a rejected update
// leaves the item untouched. attachments, when non-nil, replace the
// item's attachment references (already resolved by the service).
func (c *Classroom) UpdateItem(it *Item, ui UpdateItem, attachments *[]attachment.Attachment) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ui.check(it.kind); err != nil {
		return err
	}

	// resolve every reference before anything mutates
	var topic *Topic
	if ui.TopicID != nil && *ui.TopicID != "" {
		if topic = c.topicByID(*ui.TopicID); topic == nil {
			return ErrTopicNotFound
		}
	}
	var students []user.User
	if ui.AssignedToIDs != nil && len(*ui.AssignedToIDs) > 0 {
		var err error
		if students, err = c.studentsByIDs(*ui.AssignedToIDs); err != nil {
			return err
		}
	}

	if ui.TopicID != nil {
		_ = it.SetTopic(topic)
	}
	if ui.AssignedToIDs != nil {
		it.SetAssignedTo(students)
	}
	if attachments != nil {
		it.SetAttachments(*attachments)
	}
	if ui.AnnouncementText != nil {
		_ = it.SetAnnouncementText(*ui.AnnouncementText)
	}
	if ui.Title != nil {
		_ = it.SetTitle(*ui.Title)
	}
	if ui.Description != nil {
		_ = it.SetDescription(*ui.Description)
	}
	if ui.DueDate != nil {
		_ = it.SetDueDate(ui.DueDate)
	}
	if ui.Point != nil {
		_ = it.SetPoint(ui.Point)
	}
	if ui.Choices != nil {
		_ = it.SetChoices(*ui.Choices)
	}
	return nil
}

// Snapshots. The mediators above hand live entities back to this
// package's service; everything that leaves the package is a value view
// built under the aggregate lock, so callers can hold and serialize it
// after the lock is released.

func (c *Classroom) ViewItem(it *Item) ItemView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return it.view()
}

func (c *Classroom) ViewSubmission(submission *Submission) SubmissionView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return submission.view()
}

// ItemVisibleTo reports whether usr may see it; owners see everything.
func (c *Classroom) ItemVisibleTo(it *Item, usr user.User) bool {
	if c.IsOwner(usr) {
		return true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return it.VisibleTo(usr)
}

// OwnSubmission snapshots owner's submission on it; false when nothing
// has been turned in.
func (c *Classroom) OwnSubmission(it *Item, owner user.User) (SubmissionView, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	submission := it.SubmissionByOwner(owner)
	if submission == nil {
		return SubmissionView{}, false
	}
	return submission.view(), true
}

// SubmissionViews snapshots every submission on it, in turn-in order.
func (c *Classroom) SubmissionViews(it *Item) []SubmissionView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	views := make([]SubmissionView, 0, len(it.submissions))
	for _, submission := range it.submissions {
		views = append(views, submission.view())
	}
	return views
}

// SubmissionOwner resolves the owner of a submission on it; false when
// the submission does not exist.
func (c *Classroom) SubmissionOwner(it *Item, submissionID string) (user.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	submission := it.SubmissionByID(submissionID)
	if submission == nil {
		return user.User{}, false
	}
	return submission.owner, true
}

// Projections

// Summary is the list-view projection: no join code, no child lists.
type Summary struct {
	ID         string    `json:"id"`
	Owner      user.User `json:"owner"`
	Name       string    `json:"name"`
	Section    string    `json:"section,omitempty"`
	Subject    string    `json:"subject,omitempty"`
	Room       string    `json:"room,omitempty"`
	BannerPath string    `json:"banner_path"`
	ThemeColor string    `json:"theme_color"`
}

// Detail adds the child lists, and the join code for the owner only.
type Detail struct {
	Summary
	Code     string      `json:"code,omitempty"`
	Students []user.User `json:"students"`
	Topics   []*Topic    `json:"topics"`
	Items    []ItemView  `json:"items"`
}

func (c *Classroom) Summarize() Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.summarize()
}

func (c *Classroom) summarize() Summary {
	return Summary{
		ID:         c.id,
		Owner:      c.owner,
		Name:       c.name,
		Section:    c.section,
		Subject:    c.subject,
		Room:       c.room,
		BannerPath: c.bannerPath,
		ThemeColor: c.themeColor,
	}
}

// DetailFor builds the detail projection as seen by usr: the join code is
// included for the owner only, and items with an explicit audience
// excluding usr are dropped for non-owners.
func (c *Classroom) DetailFor(usr user.User) Detail {
	c.mu.RLock()
	defer c.mu.RUnlock()

	detail := Detail{
		Summary:  c.summarize(),
		Students: append([]user.User{}, c.students...),
		Topics:   append([]*Topic{}, c.topics...),
		Items:    c.visibleItemViews(usr),
	}
	if c.IsOwner(usr) {
		detail.Code = c.code
	}
	return detail
}

// VisibleItems returns snapshots of the items usr may see, in creation
// order.
func (c *Classroom) VisibleItems(usr user.User) []ItemView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.visibleItemViews(usr)
}

func (c *Classroom) visibleItemViews(usr user.User) []ItemView {
	views := make([]ItemView, 0, len(c.items))
	for _, it := range c.items {
		if c.IsOwner(usr) || it.VisibleTo(usr) {
			views = append(views, it.view())
		}
	}
	return views
}

// Inputs

type NewClassroom struct {
	Name    string `json:"name" validate:"required"`
	Section string `json:"section"`
	Subject string `json:"subject"`
	Room    string `json:"room"`
}

func (nc *NewClassroom) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	nc.Section = core.CleanString(nc.Section)
	nc.Subject = core.CleanString(nc.Subject)
	nc.Room = core.CleanString(nc.Room)
	return core.Validate.Struct(nc)
}

// UpdateClassroom mutates set fields only.
type UpdateClassroom struct {
	Name       string `json:"name"`
	Section    string `json:"section"`
	Subject    string `json:"subject"`
	Room       string `json:"room"`
	BannerPath string `json:"banner_path"`
	ThemeColor string `json:"theme_color"`
}

type JoinClassroom struct {
	Code string `json:"code" validate:"required"`
}

func (jc *JoinClassroom) Validate() error {
	jc.Code = strings.ToUpper(core.CleanString(jc.Code))
	return core.Validate.Struct(jc)
}

type NewTopic struct {
	Name string `json:"name" validate:"required"`
}

func (nt *NewTopic) Validate() error {
	nt.Name = core.CleanString(nt.Name)
	return core.Validate.Struct(nt)
}
