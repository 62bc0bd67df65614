// internal/render/jpeg.go
//
// JPEG frame producer.
// Responsibilities:
//   - Rasterise a board snapshot (walls, uneaten fruits, Pac-Man) into an RGBA canvas.
//   - Encode the canvas as JPEG for the FRAME message.
//
// Notes:
//   - The canvas is the bounds plus their margin on each side (700x460 for the default board).
//   - Producers are safe for concurrent use; each call allocates its own canvas.

package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"

	"github.com/robalobadob/pacman/internal/game"
)

// DefaultQuality matches the 0.75 compression factor clients expect.
const DefaultQuality = 75

// pacmanRadius and fruitRadius are in pixels.
const (
	pacmanRadius = 12
	fruitRadius  = 7
)

var (
	background = color.RGBA{0, 0, 0, 255}
	wall       = color.RGBA{33, 33, 222, 255}
	pacman     = color.RGBA{255, 255, 0, 255}
)

var fruitColors = map[game.FruitType]color.RGBA{
	game.Cherry:     {222, 0, 0, 255},
	game.Strawberry: {255, 80, 120, 255},
	game.Orange:     {255, 165, 0, 255},
	game.Apple:      {60, 200, 60, 255},
	game.Melon:      {120, 220, 120, 255},
	game.Galaxian:   {80, 120, 255, 255},
	game.Bell:       {250, 220, 60, 255},
	game.Key:        {200, 200, 200, 255},
}

// MaxCanvasPixels bounds the image a snapshot may ask for.
const MaxCanvasPixels = 4096 * 4096

var (
	// ErrEmptyCanvas is returned for bounds that produce no pixels.
	ErrEmptyCanvas = errors.New("render: empty canvas")
	// ErrCanvasTooLarge is returned when the bounds exceed MaxCanvasPixels.
	ErrCanvasTooLarge = errors.New("render: canvas too large")
)

// Producer renders snapshots to JPEG.
type Producer struct {
	Quality int
}

// NewProducer returns a producer using DefaultQuality.
func NewProducer() *Producer { return &Producer{Quality: DefaultQuality} }

// Frame encodes snap as a JPEG image.
func (p *Producer) Frame(snap game.Snapshot) ([]byte, error) {
	img, err := Draw(snap)
	if err != nil {
		return nil, err
	}
	q := p.Quality
	if q <= 0 || q > 100 {
		q = DefaultQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Draw rasterises snap without encoding it.
func Draw(snap game.Snapshot) (*image.RGBA, error) {
	b := snap.Bounds
	w := int(b.MaxX) + int(b.MinX)
	h := int(b.MaxY) + int(b.MinY)
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyCanvas
	}
	if int64(w)*int64(h) > MaxCanvasPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrCanvasTooLarge, w, h)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{background}, image.Point{}, draw.Src)
	outline(img, image.Rect(int(b.MinX)-1, int(b.MinY)-1, int(b.MaxX)+2, int(b.MaxY)+2), wall)

	for _, f := range snap.Fruits {
		if f.Eaten {
			continue
		}
		c, ok := fruitColors[f.Type]
		if !ok {
			c = color.RGBA{255, 255, 255, 255}
		}
		disc(img, f.Pos, fruitRadius, c)
	}
	disc(img, snap.Pacman.Pos, pacmanRadius, pacman)
	return img, nil
}

func disc(img *image.RGBA, at game.Position, r int, c color.RGBA) {
	cx, cy := int(at.X), int(at.Y)
	rect := image.Rect(cx-r, cy-r, cx+r+1, cy+r+1).Intersect(img.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

func outline(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	u := &image.Uniform{c}
	draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
}
