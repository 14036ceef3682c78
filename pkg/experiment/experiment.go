// Package experiment measures a suggest index the way it is used: how many
// nodes a vocabulary costs, how fast it is inserted, and how many keystrokes
// the best-completion suggestion saves when replaying a text.
package experiment

import (
	"context"
	"unicode/utf8"
)

// checkEvery is how many words pass between context checks.
const checkEvery = 1 << 12

// MemoryResult is one checkpoint of the memory experiment.
type MemoryResult struct {
	WordsInserted int
	CharsInserted int
	NodeCount     int
	NodesPerChar  float64
}

// TimeResult is one batch of the insertion time experiment.
type TimeResult struct {
	WordsInserted int
	CharsInBatch  int
	TimeMs        float64
	TimePerCharMs float64
}

// TypingResult is one checkpoint of the typing simulation.
type TypingResult struct {
	WordsProcessed int
	TotalChars     int
	CharsTyped     int
	Percentage     float64
}

// Checkpoints returns 2^0, 2^1 .. 2^maxExp capped at n, followed by n itself.
// The list is strictly increasing and empty when n is 0.
func Checkpoints(maxExp, n int) []int {
	var points []int
	for i := 0; i <= maxExp; i++ {
		cp := 1 << i
		if cp > n {
			break
		}
		points = append(points, cp)
	}
	if n > 0 && (len(points) == 0 || points[len(points)-1] != n) {
		points = append(points, n)
	}
	return points
}

// charCount counts characters, not bytes.
func charCount(word string) int {
	return utf8.RuneCountInString(word)
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func checkContext(ctx context.Context, i int) error {
	if i%checkEvery != 0 {
		return nil
	}
	return ctx.Err()
}
