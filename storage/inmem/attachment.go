package inmemdb

import (
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/attachment"
)

type attachmentRepository struct {
	db *attachmentTable
}

var _ attachment.Repository = (*attachmentRepository)(nil)

func NewAttachmentRepository(db *DB) attachment.Repository {
	return &attachmentRepository{db: db.attachment}
}

func (repo *attachmentRepository) CreateAttachment(att attachment.Attachment) (attachment.Attachment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[att.ID] = &att
	return att, nil
}

func (repo *attachmentRepository) GetAttachmentByID(id string) (attachment.Attachment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if att, ok := repo.db.table[id]; ok {
		return *att, nil
	}
	return attachment.Attachment{}, attachment.ErrNotFound
}

func (repo *attachmentRepository) DeleteAttachmentByID(id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.table, id)
	return nil
}

// blobStore holds raw attachment and avatar bytes. Ids are random, so a
// second Put under the same id can only be a programming error.
type blobStore struct {
	db *blobTable
}

var _ attachment.Store = (*blobStore)(nil)

func NewBlobStore(db *DB) attachment.Store {
	return &blobStore{db: db.blob}
}

func (store *blobStore) Put(id string, data []byte) error {
	store.db.mutex.Lock()
	defer store.db.mutex.Unlock()

	if _, ok := store.db.table[id]; ok {
		return errors.Errorf("blob %s already exists", id)
	}
	store.db.table[id] = data
	return nil
}

func (store *blobStore) Get(id string) ([]byte, error) {
	store.db.mutex.RLock()
	defer store.db.mutex.RUnlock()

	if data, ok := store.db.table[id]; ok {
		return data, nil
	}
	return nil, attachment.ErrNotFound
}

func (store *blobStore) Delete(id string) error {
	store.db.mutex.Lock()
	defer store.db.mutex.Unlock()
	delete(store.db.table, id)
	return nil
}
