package avatarsvc

import (
	"bytes"
	"crypto/sha1"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attachment"
	"github.com/trezcool/darasa/core/user"
)

const (
	gridSize  = 5
	cellPx    = 20
	paddingPx = 10
)

var background = color.NRGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff}

// identiconGenerator renders a deterministic 5x5 identicon from a seed
// (the user's id), resized to the configured avatar size and stored as
// a PNG blob next to regular attachments.
type identiconGenerator struct {
	store attachment.Store
	size  int
}

var _ user.AvatarGenerator = (*identiconGenerator)(nil)

func NewIdenticonGenerator(store attachment.Store, conf *core.Config) user.AvatarGenerator {
	return &identiconGenerator{store: store, size: conf.AvatarSize}
}

func (gen *identiconGenerator) Generate(seed string) (user.Avatar, error) {
	img := render(sha1.Sum([]byte(seed)))
	resized := imaging.Resize(img, gen.size, gen.size, imaging.NearestNeighbor)

	var buf bytes.Buffer
	if err := png.Encode(&buf, resized); err != nil {
		return user.Avatar{}, errors.Wrap(err, "encoding avatar")
	}

	avatar := user.Avatar{
		ID:          uuid.New().String(),
		ContentType: "image/png",
		Size:        buf.Len(),
	}
	if err := gen.store.Put(avatar.ID, buf.Bytes()); err != nil {
		return user.Avatar{}, errors.Wrap(err, "storing avatar")
	}
	return avatar, nil
}

// render draws the mirrored cell grid. The first three hash bytes pick
// the foreground color; the remaining bits toggle the left half's cells,
// mirrored onto the right half.
func render(hash [sha1.Size]byte) *image.NRGBA {
	foreground := color.NRGBA{R: hash[0], G: hash[1], B: hash[2], A: 0xff}

	side := gridSize*cellPx + 2*paddingPx
	img := image.NewNRGBA(image.Rect(0, 0, side, side))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	half := (gridSize + 1) / 2
	for col := 0; col < half; col++ {
		for row := 0; row < gridSize; row++ {
			bit := col*gridSize + row
			if (hash[3+bit/8]>>(bit%8))&1 == 0 {
				continue
			}
			fillCell(img, col, row, foreground)
			fillCell(img, gridSize-1-col, row, foreground)
		}
	}
	return img
}

func fillCell(img *image.NRGBA, col, row int, c color.NRGBA) {
	x0 := paddingPx + col*cellPx
	y0 := paddingPx + row*cellPx
	rect := image.Rect(x0, y0, x0+cellPx, y0+cellPx)
	draw.Draw(img, rect, image.NewUniform(c), image.Point{}, draw.Src)
}
