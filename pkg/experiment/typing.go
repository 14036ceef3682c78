package experiment

import (
	"context"
	"strings"

	"github.com/bastiangx/wordrank/pkg/suggest"
)

// TypeWord simulates typing w into index and returns how many characters
// had to be typed: the characters up to the first point where the suggestion
// is w itself, or all of w when that never happens. Afterwards w is
// confirmed when it is a word of index.
func TypeWord(index suggest.Index, w string) int {
	target := strings.ToLower(w)
	total := charCount(w)

	typed := total
	v := index.Root()
	n := 0
	for _, c := range w {
		n++
		v = index.Descend(v, c)
		if v == suggest.NoNode {
			break
		}
		if best := index.Autocomplete(v); best != suggest.NoNode {
			if word, _ := index.Word(best); word == target {
				typed = n
				break
			}
		}
	}

	if term := index.Terminal(w); term != suggest.NoNode {
		index.UpdatePriority(term)
	}
	return typed
}

// Typing replays text against index, word by word, and records at every
// checkpoint the share of characters that had to be typed. index is
// mutated: confirmed words gain priority.
func Typing(ctx context.Context, index suggest.Index, text []string, maxExp int) ([]TypingResult, error) {
	checkpoints := Checkpoints(maxExp, len(text))
	results := make([]TypingResult, 0, len(checkpoints))
	next, total, typed := 0, 0, 0

	for i, w := range text {
		if err := checkContext(ctx, i); err != nil {
			return results, err
		}
		total += charCount(w)
		typed += TypeWord(index, w)

		if next < len(checkpoints) && i+1 == checkpoints[next] {
			results = append(results, TypingResult{
				WordsProcessed: i + 1,
				TotalChars:     total,
				CharsTyped:     typed,
				Percentage:     ratio(100*float64(typed), float64(total)),
			})
			next++
		}
	}
	return results, nil
}
