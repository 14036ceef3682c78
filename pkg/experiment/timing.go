package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/bastiangx/wordrank/pkg/suggest"
)

// Timing inserts words into a fresh index in equal batches, the last
// batch taking the remainder, and times each batch.
func Timing(ctx context.Context, policy string, words []string, batches int) ([]TimeResult, error) {
	if batches < 1 {
		return nil, fmt.Errorf("batch count must be positive: %d", batches)
	}
	index, err := suggest.NewIndex(policy)
	if err != nil {
		return nil, err
	}

	n := len(words)
	size := n / batches
	results := make([]TimeResult, 0, batches)

	for b := 0; b < batches; b++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		start := b * size
		end := start + size
		if b == batches-1 {
			end = n
		}

		chars := 0
		for _, w := range words[start:end] {
			chars += charCount(w)
		}

		began := time.Now()
		for _, w := range words[start:end] {
			index.Insert(w)
		}
		elapsed := float64(time.Since(began).Microseconds()) / 1000

		results = append(results, TimeResult{
			WordsInserted: end,
			CharsInBatch:  chars,
			TimeMs:        elapsed,
			TimePerCharMs: ratio(elapsed, float64(chars)),
		})
	}
	return results, nil
}
