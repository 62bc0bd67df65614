// internal/ranking/record.go
//
// Fixed-size ranking records.
// Responsibilities:
//   - Build a Record from a finished game (name and fruit list truncated to 50 UTF-16 units).
//   - Encode/decode the 256-byte on-disk layout.
//   - Derive the rank (points per second) from score and elapsed time.
//
// Layout (big-endian):
//
//	  0  100  player name, UTF-16BE, space padded
//	100    4  total score (i32)
//	104    8  elapsed millis (i64)
//	112  100  fruits eaten, comma joined, UTF-16BE, space padded
//	212    8  year (i64)
//	220    4  month (i32)
//	224    4  day (i32)
//	228    4  hour (i32)
//	232    4  minute (i32)
//	236    8  rank (f64, recomputed on read)
//	244   12  zero padding

package ranking

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"

	"github.com/robalobadob/pacman/internal/wire"
)

const (
	// RecordSize is the exact size of one record on disk.
	RecordSize = 256
	// TextUnits is the capacity of each text field in UTF-16 code units.
	TextUnits = 50

	textBytes = TextUnits * 2

	offName    = 0
	offScore   = 100
	offElapsed = 104
	offFruits  = 112
	offYear    = 212
	offMonth   = 220
	offDay     = 224
	offHour    = 228
	offMinute  = 232
	offRank    = 236
	offPad     = 244
)

var utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// Record is one finished game.
type Record struct {
	PlayerName    string
	TotalScore    int32
	ElapsedMillis int64
	FruitsEaten   []string
	PlayedAt      time.Time // minute precision on disk
	Rank          float64
}

// Rank is points per second, or 0 when no time elapsed.
func Rank(score int32, elapsedMillis int64) float64 {
	if elapsedMillis <= 0 {
		return 0
	}
	return float64(score) / (float64(elapsedMillis) / 1000.0)
}

// NewRecord builds a record, truncating text fields to what fits on disk.
func NewRecord(player string, score int32, elapsedMillis int64, fruits []string, playedAt time.Time) Record {
	fs := make([]string, len(fruits))
	copy(fs, fruits)
	return Record{
		PlayerName:    truncateUnits(player, TextUnits),
		TotalScore:    score,
		ElapsedMillis: elapsedMillis,
		FruitsEaten:   fs,
		PlayedAt:      playedAt.Truncate(time.Minute),
		Rank:          Rank(score, elapsedMillis),
	}
}

// FromFinal converts a FINAL_RESPONSE received by the client.
func FromFinal(f *wire.FinalResponse, playedAt time.Time) Record {
	return NewRecord(f.PlayerName, f.TotalScore, f.ElapsedMillis, f.FruitsEaten, playedAt)
}

// MarshalBinary encodes r into exactly RecordSize bytes.
func (r Record) MarshalBinary() ([]byte, error) {
	buf := make([]byte, RecordSize)

	if err := putText(buf[offName:offName+textBytes], r.PlayerName); err != nil {
		return nil, fmt.Errorf("player name: %w", err)
	}
	binary.BigEndian.PutUint32(buf[offScore:], uint32(r.TotalScore))
	binary.BigEndian.PutUint64(buf[offElapsed:], uint64(r.ElapsedMillis))
	if err := putText(buf[offFruits:offFruits+textBytes], strings.Join(r.FruitsEaten, ",")); err != nil {
		return nil, fmt.Errorf("fruits: %w", err)
	}

	t := r.PlayedAt
	binary.BigEndian.PutUint64(buf[offYear:], uint64(int64(t.Year())))
	binary.BigEndian.PutUint32(buf[offMonth:], uint32(int32(t.Month())))
	binary.BigEndian.PutUint32(buf[offDay:], uint32(int32(t.Day())))
	binary.BigEndian.PutUint32(buf[offHour:], uint32(int32(t.Hour())))
	binary.BigEndian.PutUint32(buf[offMinute:], uint32(int32(t.Minute())))
	binary.BigEndian.PutUint64(buf[offRank:], math.Float64bits(Rank(r.TotalScore, r.ElapsedMillis)))
	// buf[offPad:] stays zero
	return buf, nil
}

// UnmarshalBinary decodes one record. The stored rank is ignored and recomputed.
func (r *Record) UnmarshalBinary(buf []byte) error {
	if len(buf) != RecordSize {
		return fmt.Errorf("%w: record is %d bytes", ErrCorrupt, len(buf))
	}
	name, err := getText(buf[offName : offName+textBytes])
	if err != nil {
		return fmt.Errorf("%w: player name: %v", ErrCorrupt, err)
	}
	fruits, err := getText(buf[offFruits : offFruits+textBytes])
	if err != nil {
		return fmt.Errorf("%w: fruits: %v", ErrCorrupt, err)
	}

	r.PlayerName = name
	r.TotalScore = int32(binary.BigEndian.Uint32(buf[offScore:]))
	r.ElapsedMillis = int64(binary.BigEndian.Uint64(buf[offElapsed:]))
	r.FruitsEaten = []string{}
	if fruits != "" {
		r.FruitsEaten = strings.Split(fruits, ",")
	}
	r.PlayedAt = time.Date(
		int(int64(binary.BigEndian.Uint64(buf[offYear:]))),
		time.Month(int32(binary.BigEndian.Uint32(buf[offMonth:]))),
		int(int32(binary.BigEndian.Uint32(buf[offDay:]))),
		int(int32(binary.BigEndian.Uint32(buf[offHour:]))),
		int(int32(binary.BigEndian.Uint32(buf[offMinute:]))),
		0, 0, time.Local)
	r.Rank = Rank(r.TotalScore, r.ElapsedMillis)
	return nil
}

// putText writes s as UTF-16BE into dst and pads the rest with spaces.
// s must already fit; callers truncate with truncateUnits.
func putText(dst []byte, s string) error {
	enc, err := utf16be.NewEncoder().Bytes([]byte(truncateUnits(s, len(dst)/2)))
	if err != nil {
		return err
	}
	n := copy(dst, enc)
	for i := n; i+1 < len(dst); i += 2 {
		dst[i], dst[i+1] = 0x00, ' '
	}
	return nil
}

func getText(src []byte) (string, error) {
	dec, err := utf16be.NewDecoder().Bytes(src)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(dec), " "), nil
}

// truncateUnits keeps the longest prefix of s that fits in max UTF-16 code
// units without splitting a surrogate pair.
func truncateUnits(s string, max int) string {
	units := 0
	for i, r := range s {
		n := 1
		if r >= 0x10000 {
			n = 2
		}
		if units+n > max {
			return s[:i]
		}
		units += n
	}
	return s
}
