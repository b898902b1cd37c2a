package fingerprint

import (
	"math/rand/v2"
	"strings"

	"github.com/zeebo/blake3"
)

const (
	// Height and Width are the grid dimensions inside the border.
	Height = 9
	Width  = 17
	// Rounds is the number of steps in the walk.
	Rounds = 72

	// Overflow marks a cell visited more often than the palette can express.
	Overflow = '?'

	// palette holds the cell symbols ordered by visit count, blank first.
	palette = " ~+=*oI0@OWMPSKLPA"

	seedContext = "prpass fingerprint walk v1"
)

type move struct{ dx, dy int }

var moves = [4]move{
	{-1, +1},
	{+1, +1},
	{-1, -1},
	{+1, -1},
}

// Render draws fp as a bordered Height x Width grid. Lines are separated by '\n' with no
// trailing newline.
func Render(fp []byte) string {
	var visits [Height][Width]int
	walk(fp, &visits)

	var b strings.Builder
	b.Grow((Width + 3) * (Height + 2) * 3)

	b.WriteRune('┌')
	b.WriteString(strings.Repeat("─", Width))
	b.WriteString("┐\n")

	for y := 0; y < Height; y++ {
		b.WriteRune('│')
		for x := 0; x < Width; x++ {
			b.WriteRune(symbol(visits[y][x]))
		}
		b.WriteString("│\n")
	}

	b.WriteRune('└')
	b.WriteString(strings.Repeat("─", Width))
	b.WriteRune('┘')

	return b.String()
}

func walk(fp []byte, visits *[Height][Width]int) {
	var seed [32]byte
	blake3.DeriveKey(seedContext, fp, seed[:])
	rng := rand.New(rand.NewChaCha8(seed))

	x, y := Width/2, Height/2
	for i := 0; i < Rounds; i++ {
		m := moves[rng.IntN(len(moves))]
		x = clamp(x+m.dx, Width)
		y = clamp(y+m.dy, Height)
		visits[y][x]++
	}
}

// clamp pulls a coordinate that left the grid back by one cell.
func clamp(v, size int) int {
	if v < 0 {
		return 0
	}
	if v > size-1 {
		return size - 1
	}
	return v
}

func symbol(count int) rune {
	if count < len(palette) {
		return rune(palette[count])
	}
	return Overflow
}
