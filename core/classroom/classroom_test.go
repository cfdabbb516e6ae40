package classroom

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/user"
)

var testCatalog = LoadBannerCatalog("testdata/does-not-exist")

func testUser(name string) user.User {
	return user.User{ID: uuid.New().String(), Username: name, Email: name + "@test.cd"}
}

func newTestClassroom(owner user.User) *Classroom {
	return newClassroom(owner, NewClassroom{Name: "Algebra"}, "ABC1234", testCatalog)
}

func TestNewClassroom_defaults(t *testing.T) {
	owner := testUser("teach")
	c := newTestClassroom(owner)

	assert.NotEmpty(t, c.ID())
	assert.Equal(t, "ABC1234", c.Code())
	assert.True(t, c.IsOwner(owner))
	assert.True(t, c.IsMember(owner))
	assert.False(t, c.CreatedAt().IsZero())

	assert.True(t, testCatalog.Valid(c.BannerPath()), "banner %q not in catalog", c.BannerPath())
	assert.True(t, validTheme(c.ThemeColor()), "theme %q not in palette", c.ThemeColor())
}

func TestClassroom_AddStudent(t *testing.T) {
	owner := testUser("teach")
	student := testUser("jane")
	c := newTestClassroom(owner)

	// the owner can never be enrolled
	assert.False(t, c.AddStudent(owner))
	assert.Empty(t, c.Students())

	assert.True(t, c.AddStudent(student))
	assert.True(t, c.IsMember(student))
	assert.False(t, c.IsOwner(student))

	// re-joining is a soft no-op
	assert.False(t, c.AddStudent(student))
	assert.Len(t, c.Students(), 1)
}

func TestClassroom_CreateTopic_duplicateNamesAllowed(t *testing.T) {
	c := newTestClassroom(testUser("teach"))

	t1 := c.CreateTopic("Fractions")
	t2 := c.CreateTopic("Fractions")

	assert.NotEqual(t, t1.ID, t2.ID)
	assert.Len(t, c.Topics(), 2)
	assert.True(t, c.HasTopic(t1.ID))
	assert.True(t, c.HasTopic(t2.ID))
}

func TestClassroom_CreateItem_refChecks(t *testing.T) {
	owner := testUser("teach")
	student := testUser("jane")
	outsider := testUser("joe")
	c := newTestClassroom(owner)
	c.AddStudent(student)

	foreignTopic := &Topic{ID: uuid.New().String(), Name: "Not ours"}
	_, err := c.CreateMaterial(foreignTopic, nil, nil, "Reading", "")
	assert.Equal(t, ErrTopicNotFound, err)

	_, err = c.CreateAnnouncement(nil, []user.User{outsider}, "hello")
	assert.Equal(t, ErrStudentNotEnrolled, err)
	assert.Empty(t, c.Items(), "no partial writes on failed ref checks")

	topic := c.CreateTopic("Fractions")
	it, err := c.CreateAssignment(topic, nil, []user.User{student}, "HW 1", "", nil, nil)
	require.NoError(t, err)
	assert.True(t, c.HasItem(it.ID()))
}

func TestClassroom_SubmitWork(t *testing.T) {
	owner := testUser("teach")
	student := testUser("jane")
	c := newTestClassroom(owner)
	c.AddStudent(student)

	it, err := c.CreateAssignment(nil, nil, nil, "HW 1", "", nil, nil)
	require.NoError(t, err)

	submission, err := c.SubmitWork(it, student, nil)
	require.NoError(t, err)
	assert.Equal(t, student.ID, submission.Owner().ID)
	assert.False(t, submission.Graded())

	// at most one submission per student and item
	_, err = c.SubmitWork(it, student, nil)
	assert.Equal(t, ErrSubmissionExists, err)
	assert.Len(t, it.Submissions(), 1)

	ann, err := c.CreateAnnouncement(nil, nil, "hello")
	require.NoError(t, err)
	_, err = c.SubmitWork(ann, student, nil)
	assert.Equal(t, ErrNotGradable, err)
}

func TestClassroom_GradeSubmission(t *testing.T) {
	owner := testUser("teach")
	student := testUser("jane")
	c := newTestClassroom(owner)
	c.AddStudent(student)

	it, err := c.CreateQuestion(nil, nil, nil, "Q1", "", nil, nil)
	require.NoError(t, err)
	submission, err := c.SubmitWork(it, student, nil)
	require.NoError(t, err)

	_, err = c.GradeSubmission(it, "nope", 10)
	assert.Equal(t, ErrSubmissionNotFound, err)

	graded, err := c.GradeSubmission(it, submission.ID(), 10)
	require.NoError(t, err)
	require.NotNil(t, graded.Point())
	assert.Equal(t, 10, *graded.Point())
	assert.True(t, graded.Graded())
}

func TestClassroom_CommentSubmission(t *testing.T) {
	owner := testUser("teach")
	student := testUser("jane")
	c := newTestClassroom(owner)
	c.AddStudent(student)

	it, err := c.CreateAssignment(nil, nil, nil, "HW 1", "", nil, nil)
	require.NoError(t, err)
	submission, err := c.SubmitWork(it, student, nil)
	require.NoError(t, err)

	comment, err := c.CommentSubmission(it, submission.ID(), owner, "see me after class")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, comment.Owner.ID)
	assert.Len(t, submission.Comments(), 1)

	_, err = c.CommentSubmission(it, "nope", owner, "lost")
	assert.Equal(t, ErrSubmissionNotFound, err)
}

func TestClassroom_UpdateItem_resolvesRefsFirst(t *testing.T) {
	owner := testUser("teach")
	student := testUser("jane")
	c := newTestClassroom(owner)
	c.AddStudent(student)

	topic := c.CreateTopic("Fractions")
	it, err := c.CreateAssignment(topic, nil, nil, "HW 1", "", nil, nil)
	require.NoError(t, err)
	before := it.EditedAt()

	// unknown topic fails the whole update; nothing is applied
	badTopic := uuid.New().String()
	title := "HW 2"
	err = c.UpdateItem(it, UpdateItem{TopicID: &badTopic, Title: &title}, nil)
	assert.Equal(t, ErrTopicNotFound, err)
	assert.Equal(t, "HW 1", it.Title())
	assert.Equal(t, before, it.EditedAt())

	// kind mismatch is rejected up front
	text := "hello"
	err = c.UpdateItem(it, UpdateItem{AnnouncementText: &text}, nil)
	assert.Equal(t, ErrKindMismatch, err)
	assert.Equal(t, before, it.EditedAt())

	// clearing the topic with an empty id
	empty := ""
	require.NoError(t, c.UpdateItem(it, UpdateItem{TopicID: &empty, Title: &title}, nil))
	assert.Nil(t, it.Topic())
	assert.Equal(t, "HW 2", it.Title())
	assert.True(t, it.EditedAt().After(before))
}

func TestClassroom_DetailFor(t *testing.T) {
	owner := testUser("teach")
	student := testUser("jane")
	other := testUser("joe")
	c := newTestClassroom(owner)
	c.AddStudent(student)
	c.AddStudent(other)

	_, err := c.CreateAnnouncement(nil, nil, "for everyone")
	require.NoError(t, err)
	_, err = c.CreateAssignment(nil, nil, []user.User{student}, "just for jane", "", nil, nil)
	require.NoError(t, err)

	ownerDetail := c.DetailFor(owner)
	assert.Equal(t, c.Code(), ownerDetail.Code, "owner sees the join code")
	assert.Len(t, ownerDetail.Items, 2)

	studentDetail := c.DetailFor(student)
	assert.Empty(t, studentDetail.Code)
	assert.Len(t, studentDetail.Items, 2)

	otherDetail := c.DetailFor(other)
	assert.Empty(t, otherDetail.Code)
	assert.Len(t, otherDetail.Items, 1, "targeted item is hidden from the rest of the roster")
}
