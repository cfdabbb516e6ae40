package avatarsvc

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
)

type memStore map[string][]byte

func (s memStore) Put(id string, data []byte) error {
	s[id] = data
	return nil
}

func (s memStore) Get(id string) ([]byte, error) {
	return s[id], nil
}

func (s memStore) Delete(id string) error {
	delete(s, id)
	return nil
}

func TestIdenticonGenerator_Generate(t *testing.T) {
	store := memStore{}
	gen := NewIdenticonGenerator(store, &core.Config{AvatarSize: 64})

	avatar, err := gen.Generate("user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, avatar.ID)
	assert.Equal(t, "image/png", avatar.ContentType)

	data, err := store.Get(avatar.ID)
	require.NoError(t, err)
	assert.Len(t, data, avatar.Size)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 64, img.Bounds().Dy())
}

func TestIdenticonGenerator_deterministicRender(t *testing.T) {
	store := memStore{}
	gen := NewIdenticonGenerator(store, &core.Config{AvatarSize: 32})

	a1, err := gen.Generate("user-1")
	require.NoError(t, err)
	a2, err := gen.Generate("user-1")
	require.NoError(t, err)
	b, err := gen.Generate("user-2")
	require.NoError(t, err)

	d1, _ := store.Get(a1.ID)
	d2, _ := store.Get(a2.ID)
	db, _ := store.Get(b.ID)

	assert.NotEqual(t, a1.ID, a2.ID, "every avatar gets its own blob id")
	assert.Equal(t, d1, d2, "same seed renders the same image")
	assert.NotEqual(t, d1, db)
}
