package inmemdb

import (
	"sync"

	"github.com/trezcool/darasa/core/attachment"
	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/user"
)

type (
	DB struct {
		user       *userTable
		classroom  *classroomTable
		attachment *attachmentTable
		blob       *blobTable
	}

	userTable struct {
		mutex sync.RWMutex
		table map[string]*user.User
	}

	// classroomTable keeps a slice registry so listings preserve
	// creation order; the code index backs join-by-code lookups.
	classroomTable struct {
		mutex     sync.RWMutex
		table     []*classroom.Classroom
		codeIndex map[string]*classroom.Classroom
	}

	attachmentTable struct {
		mutex sync.RWMutex
		table map[string]*attachment.Attachment
	}

	blobTable struct {
		mutex sync.RWMutex
		table map[string][]byte
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		classroom:  &classroomTable{codeIndex: make(map[string]*classroom.Classroom)},
		attachment: &attachmentTable{table: make(map[string]*attachment.Attachment)},
		blob:       &blobTable{table: make(map[string][]byte)},
	}
	return db, nil
}
