package inmemdb

import (
	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/user"
)

// classroomRepository hands out the registered *Classroom aggregates
// themselves; each aggregate synchronizes its own state.
type classroomRepository struct {
	db *classroomTable
}

var _ classroom.Repository = (*classroomRepository)(nil)

func NewClassroomRepository(db *DB) classroom.Repository {
	return &classroomRepository{db: db.classroom}
}

func (repo *classroomRepository) CreateClassroom(c *classroom.Classroom) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table = append(repo.db.table, c)
	repo.db.codeIndex[c.Code()] = c
	return nil
}

func (repo *classroomRepository) GetClassroomByID(id string) (*classroom.Classroom, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, c := range repo.db.table {
		if c.ID() == id {
			return c, nil
		}
	}
	return nil, classroom.ErrNotFound
}

func (repo *classroomRepository) GetClassroomByCode(code string) (*classroom.Classroom, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.codeIndex[code]; ok {
		return c, nil
	}
	return nil, classroom.ErrCodeNotFound
}

func (repo *classroomRepository) QueryClassroomsForUser(usr user.User) ([]*classroom.Classroom, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	classrooms := make([]*classroom.Classroom, 0)
	for _, c := range repo.db.table {
		if c.IsMember(usr) {
			classrooms = append(classrooms, c)
		}
	}
	return classrooms, nil
}

func (repo *classroomRepository) CodeTaken(code string) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	_, ok := repo.db.codeIndex[code]
	return ok, nil
}

func (repo *classroomRepository) DeleteClassroomByID(id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for i, c := range repo.db.table {
		if c.ID() == id {
			repo.db.table = append(repo.db.table[:i], repo.db.table[i+1:]...)
			delete(repo.db.codeIndex, c.Code())
			return nil
		}
	}
	return classroom.ErrNotFound
}
