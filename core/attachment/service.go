package attachment

import (
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("attachment not found")
)

type (
	Repository interface {
		CreateAttachment(att Attachment) (Attachment, error)
		GetAttachmentByID(id string) (Attachment, error)
		DeleteAttachmentByID(id string) error
	}

	// Store holds attachment bytes addressed by the attachment's random id.
	// Blobs are write-once-then-read-only; there is no deduplication.
	Store interface {
		Put(id string, data []byte) error
		Get(id string) ([]byte, error)
		Delete(id string) error
	}

	Service interface {
		Create(owner user.User, filename, contentType string, data io.Reader) (Attachment, error)
		GetByID(id string) (Attachment, error)
		// Blob returns the raw bytes stored under id (attachment or avatar).
		Blob(id string) ([]byte, error)
	}

	service struct {
		repo  Repository
		store Store
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, store Store) Service {
	return &service{repo: repo, store: store}
}

func (svc *service) Create(owner user.User, filename, contentType string, data io.Reader) (Attachment, error) {
	raw, err := io.ReadAll(data)
	if err != nil {
		return Attachment{}, err
	}

	att := Attachment{
		ID:          uuid.New().String(),
		Name:        filename,
		ContentType: contentType,
		OwnerID:     owner.ID,
		Size:        len(raw),
	}
	if err := svc.store.Put(att.ID, raw); err != nil {
		return Attachment{}, err
	}
	return svc.repo.CreateAttachment(att)
}

func (svc *service) GetByID(id string) (Attachment, error) {
	return svc.repo.GetAttachmentByID(id)
}

func (svc *service) Blob(id string) ([]byte, error) {
	return svc.store.Get(id)
}
