package inmemdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/user"
)

func TestClassroomRepository(t *testing.T) {
	db, err := Open()
	require.NoError(t, err)
	repo := NewClassroomRepository(db)

	// aggregates are only built through the service
	conf := &core.Config{ClassroomCodeLength: 7}
	svc := classroom.NewService(repo, nil, classroom.LoadBannerCatalog(""), conf)
	owner := user.User{ID: "u1", Username: "teach"}
	student := user.User{ID: "u2", Username: "jane"}

	c1, err := svc.Create(owner, classroom.NewClassroom{Name: "Algebra"})
	require.NoError(t, err)
	c2, err := svc.Create(owner, classroom.NewClassroom{Name: "Geometry"})
	require.NoError(t, err)
	c3, err := svc.Create(student, classroom.NewClassroom{Name: "Poetry"})
	require.NoError(t, err)

	got, err := repo.GetClassroomByID(c2.ID())
	require.NoError(t, err)
	assert.Same(t, c2, got, "the registry hands out the aggregate itself")
	_, err = repo.GetClassroomByID("nope")
	assert.Equal(t, classroom.ErrNotFound, err)

	got, err = repo.GetClassroomByCode(c1.Code())
	require.NoError(t, err)
	assert.Same(t, c1, got)
	_, err = repo.GetClassroomByCode("NOPE123")
	assert.Equal(t, classroom.ErrCodeNotFound, err)

	taken, err := repo.CodeTaken(c3.Code())
	require.NoError(t, err)
	assert.True(t, taken)

	// listings preserve creation order
	classrooms, err := repo.QueryClassroomsForUser(owner)
	require.NoError(t, err)
	require.Len(t, classrooms, 2)
	assert.Same(t, c1, classrooms[0])
	assert.Same(t, c2, classrooms[1])

	// deletion drops the code index entry too
	require.NoError(t, repo.DeleteClassroomByID(c1.ID()))
	_, err = repo.GetClassroomByCode(c1.Code())
	assert.Equal(t, classroom.ErrCodeNotFound, err)
	taken, err = repo.CodeTaken(c1.Code())
	require.NoError(t, err)
	assert.False(t, taken)

	classrooms, err = repo.QueryClassroomsForUser(owner)
	require.NoError(t, err)
	require.Len(t, classrooms, 1)
	assert.Same(t, c2, classrooms[0])

	assert.Equal(t, classroom.ErrNotFound, repo.DeleteClassroomByID(c1.ID()))
}

func TestUserRepository_CheckUniqueness(t *testing.T) {
	db, err := Open()
	require.NoError(t, err)
	repo := NewUserRepository(db)

	jane, err := repo.CreateUser(user.User{ID: "u1", Username: "jane", Email: "jane@test.cd"})
	require.NoError(t, err)

	assert.Equal(t, user.ErrUsernameExists, repo.CheckUniqueness("jane", "other@test.cd"))
	assert.Equal(t, user.ErrEmailExists, repo.CheckUniqueness("other", "jane@test.cd"))
	assert.NoError(t, repo.CheckUniqueness("other", "other@test.cd"))

	// self-exclusion for updates
	assert.NoError(t, repo.CheckUniqueness("jane", "jane@test.cd", jane))
}

func TestBlobStore_writeOnce(t *testing.T) {
	db, err := Open()
	require.NoError(t, err)
	store := NewBlobStore(db)

	require.NoError(t, store.Put("b1", []byte("data")))
	assert.Error(t, store.Put("b1", []byte("other")), "blobs are immutable")

	data, err := store.Get("b1")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), data)

	require.NoError(t, store.Delete("b1"))
	_, err = store.Get("b1")
	assert.Error(t, err)
}
