package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"slices"
	"unicode/utf8"

	"github.com/robalobadob/pacman/internal/game"
)

// ErrMalformed marks bytes that cannot be a valid message: unknown tag,
// bad bool byte, unknown direction label, or an out-of-range length.
var ErrMalformed = errors.New("malformed message")

// ErrUnexpectedKind is returned by ReadKinds for a tag outside the allowed set.
// It wraps ErrMalformed.
var ErrUnexpectedKind = fmt.Errorf("%w: unexpected kind", ErrMalformed)

// Encode serializes m into a single buffer so it can be written in one call.
func Encode(m Message) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("trying to encode nil message")
	}
	var e encoder
	e.byte(byte(m.Kind()))
	switch v := m.(type) {
	case *AuthRequest:
		e.string(v.User)
		e.string(v.Password)
	case *AuthResponse:
		e.bool(v.OK)
		e.string(v.Message)
	case *MoveCommand:
		if !v.Direction.Valid() {
			return nil, fmt.Errorf("encode move: %w", game.ErrUnknownDirection)
		}
		e.string(v.Direction.Label())
	case *MoveResponse:
		e.int32(v.PacX)
		e.int32(v.PacY)
		e.int32(v.Score)
		e.bool(v.HitWall)
		e.bool(v.AteFruit)
		e.int32(v.PointsGained)
		e.bool(v.GameOver)
		e.int32(v.FruitsRemaining)
	case *Frame:
		if len(v.Data) > MaxFrameBytes {
			return nil, fmt.Errorf("encode frame: %d bytes exceeds limit", len(v.Data))
		}
		e.int32(int32(len(v.Data)))
		e.buf.Write(v.Data)
	case *FinalResponse:
		if len(v.FruitsEaten) > MaxFruitNames {
			return nil, fmt.Errorf("encode final: %d fruit names exceeds limit", len(v.FruitsEaten))
		}
		e.string(v.PlayerName)
		e.int32(v.TotalScore)
		e.int64(v.ElapsedMillis)
		e.int32(int32(len(v.FruitsEaten)))
		for _, name := range v.FruitsEaten {
			e.string(name)
		}
	default:
		return nil, fmt.Errorf("encode: unsupported message %T", m)
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.buf.Bytes(), nil
}

// Write encodes m and writes it to w.
func Write(w io.Writer, m Message) error {
	b, err := Encode(m)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Read decodes the next message from r.
//
// It returns io.EOF only when the stream ends cleanly before a tag byte;
// a stream ending inside a message yields io.ErrUnexpectedEOF.
func Read(r io.Reader) (Message, error) {
	return ReadKinds(r)
}

// ReadKinds is Read restricted to the given kinds. Any other tag fails with
// ErrUnexpectedKind before a single payload byte is consumed.
// With no kinds every known tag is accepted.
func ReadKinds(r io.Reader, kinds ...Kind) (Message, error) {
	d := decoder{r: r}
	var tag [1]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		return nil, err
	}
	if len(kinds) > 0 && !slices.Contains(kinds, Kind(tag[0])) {
		return nil, fmt.Errorf("%w: %s (tag %d)", ErrUnexpectedKind, Kind(tag[0]), tag[0])
	}

	var m Message
	switch Kind(tag[0]) {
	case KindAuthRequest:
		m = &AuthRequest{User: d.string(), Password: d.string()}
	case KindAuthResponse:
		m = &AuthResponse{OK: d.bool(), Message: d.string()}
	case KindMoveCommand:
		label := d.string()
		if d.err != nil {
			break
		}
		dir, err := game.ParseDirection(label)
		if err != nil {
			d.fail(fmt.Errorf("%w: %v", ErrMalformed, err))
			break
		}
		m = &MoveCommand{Direction: dir}
	case KindMoveResponse:
		v := &MoveResponse{}
		v.PacX = d.int32()
		v.PacY = d.int32()
		v.Score = d.int32()
		v.HitWall = d.bool()
		v.AteFruit = d.bool()
		v.PointsGained = d.int32()
		v.GameOver = d.bool()
		v.FruitsRemaining = d.int32()
		m = v
	case KindFrame:
		n := d.length(MaxFrameBytes)
		m = &Frame{Data: d.bytes(n)}
	case KindFinalResponse:
		v := &FinalResponse{}
		v.PlayerName = d.string()
		v.TotalScore = d.int32()
		v.ElapsedMillis = d.int64()
		n := d.length(MaxFruitNames)
		v.FruitsEaten = make([]string, 0, n)
		for i := 0; i < n && d.err == nil; i++ {
			v.FruitsEaten = append(v.FruitsEaten, d.string())
		}
		m = v
	default:
		return nil, fmt.Errorf("%w: unknown tag %d", ErrMalformed, tag[0])
	}
	if d.err != nil {
		return nil, d.err
	}
	return m, nil
}

type encoder struct {
	buf bytes.Buffer
	err error
}

func (e *encoder) byte(b byte) { e.buf.WriteByte(b) }

func (e *encoder) bool(v bool) {
	if v {
		e.byte(1)
		return
	}
	e.byte(0)
}

func (e *encoder) int32(v int32) {
	e.buf.Write(binary.BigEndian.AppendUint32(nil, uint32(v)))
}

func (e *encoder) int64(v int64) {
	e.buf.Write(binary.BigEndian.AppendUint64(nil, uint64(v)))
}

func (e *encoder) string(s string) {
	if len(s) > MaxStringBytes {
		if e.err == nil {
			e.err = fmt.Errorf("encode: string of %d bytes exceeds limit", len(s))
		}
		return
	}
	e.int32(int32(len(s)))
	e.buf.WriteString(s)
}

// decoder keeps the first error; later reads become no-ops returning zero values.
type decoder struct {
	r   io.Reader
	buf [8]byte
	err error
}

func (d *decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

func (d *decoder) full(p []byte) bool {
	if d.err != nil {
		return false
	}
	if _, err := io.ReadFull(d.r, p); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		d.fail(err)
		return false
	}
	return true
}

func (d *decoder) bool() bool {
	if !d.full(d.buf[:1]) {
		return false
	}
	switch d.buf[0] {
	case 0:
		return false
	case 1:
		return true
	}
	d.fail(fmt.Errorf("%w: bool byte %d", ErrMalformed, d.buf[0]))
	return false
}

func (d *decoder) int32() int32 {
	if !d.full(d.buf[:4]) {
		return 0
	}
	return int32(binary.BigEndian.Uint32(d.buf[:4]))
}

func (d *decoder) int64() int64 {
	if !d.full(d.buf[:8]) {
		return 0
	}
	return int64(binary.BigEndian.Uint64(d.buf[:8]))
}

func (d *decoder) length(max int) int {
	n := d.int32()
	if d.err != nil {
		return 0
	}
	if n < 0 || int(n) > max {
		d.fail(fmt.Errorf("%w: length %d outside [0,%d]", ErrMalformed, n, max))
		return 0
	}
	return int(n)
}

// readChunk is the largest payload allocated up front. Longer payloads grow
// with the bytes actually received.
const readChunk = 64 << 10

func (d *decoder) bytes(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n <= readChunk {
		p := make([]byte, n)
		if !d.full(p) {
			return nil
		}
		return p
	}
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, d.r, int64(n)); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		d.fail(err)
		return nil
	}
	return buf.Bytes()
}

func (d *decoder) string() string {
	p := d.bytes(d.length(MaxStringBytes))
	if d.err != nil {
		return ""
	}
	if !utf8.Valid(p) {
		d.fail(fmt.Errorf("%w: invalid UTF-8 string", ErrMalformed))
		return ""
	}
	return string(p)
}
