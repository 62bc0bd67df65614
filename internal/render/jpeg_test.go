package render

import (
	"bytes"
	"errors"
	"image/jpeg"
	"testing"

	"github.com/robalobadob/pacman/internal/game"
)

func TestFrameDecodesAsJPEG(t *testing.T) {
	b := game.NewBoard(game.DefaultBounds, []game.Fruit{
		{Type: game.Cherry, Pos: game.Position{X: 100, Y: 100}},
	})
	data, err := NewProducer().Frame(b.Snapshot())
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Fatalf("missing JPEG SOI marker")
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := img.Bounds().Size(); got.X != 700 || got.Y != 460 {
		t.Fatalf("size = %v, want 700x460", got)
	}
}

func TestDrawPaintsPacmanAndSkipsEatenFruit(t *testing.T) {
	b := game.NewBoard(game.DefaultBounds, []game.Fruit{
		{Type: game.Cherry, Pos: game.Position{X: 100, Y: 100}, Eaten: true},
		{Type: game.Apple, Pos: game.Position{X: 200, Y: 100}},
	})
	img, err := Draw(b.Snapshot())
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if got := img.RGBAAt(350, 230); got != pacman {
		t.Fatalf("pacman pixel = %v", got)
	}
	if got := img.RGBAAt(100, 100); got != background {
		t.Fatalf("eaten fruit pixel = %v, want background", got)
	}
	if got := img.RGBAAt(200, 100); got != fruitColors[game.Apple] {
		t.Fatalf("apple pixel = %v", got)
	}
}

func TestEmptyCanvas(t *testing.T) {
	_, err := NewProducer().Frame(game.Snapshot{})
	if !errors.Is(err, ErrEmptyCanvas) {
		t.Fatalf("err = %v, want ErrEmptyCanvas", err)
	}
}

func TestHugeCanvasRefused(t *testing.T) {
	snap := game.Snapshot{Bounds: game.Bounds{MinX: 0, MinY: 0, MaxX: 1_000_000, MaxY: 1_000_000}}
	if _, err := NewProducer().Frame(snap); !errors.Is(err, ErrCanvasTooLarge) {
		t.Fatalf("err = %v, want ErrCanvasTooLarge", err)
	}
}
